package service

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/api"
)

// ReceiptServiceName is the fully-qualified name of the receipt service.
const ReceiptServiceName = "receiptsplit.v1.ReceiptService"

// Procedure paths of ReceiptService.
const (
	CreateUploadURLProcedure = "/" + ReceiptServiceName + "/CreateUploadURL"
	CreateReceiptProcedure   = "/" + ReceiptServiceName + "/CreateReceipt"
	ScanReceiptProcedure     = "/" + ReceiptServiceName + "/ScanReceipt"
	GetReceiptProcedure      = "/" + ReceiptServiceName + "/GetReceipt"
	ListReceiptsProcedure    = "/" + ReceiptServiceName + "/ListReceipts"
	UpdateReceiptProcedure   = "/" + ReceiptServiceName + "/UpdateReceipt"
	CalculateSplitProcedure  = "/" + ReceiptServiceName + "/CalculateSplit"
	SaveSplitProcedure       = "/" + ReceiptServiceName + "/SaveSplit"
	GetSharedSplitProcedure  = "/" + ReceiptServiceName + "/GetSharedSplit"
	ExportSplitProcedure     = "/" + ReceiptServiceName + "/ExportSplit"
)

// PublicProcedures can be called without a bearer token.
var PublicProcedures = []string{GetSharedSplitProcedure}

// NewReceiptServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewReceiptServiceHandler(svc *ReceiptService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	handlers := map[string]http.Handler{
		CreateUploadURLProcedure: connect.NewUnaryHandler(CreateUploadURLProcedure, svc.CreateUploadURL, opts...),
		CreateReceiptProcedure:   connect.NewUnaryHandler(CreateReceiptProcedure, svc.CreateReceipt, opts...),
		ScanReceiptProcedure:     connect.NewUnaryHandler(ScanReceiptProcedure, svc.ScanReceipt, opts...),
		GetReceiptProcedure:      connect.NewUnaryHandler(GetReceiptProcedure, svc.GetReceipt, opts...),
		ListReceiptsProcedure:    connect.NewUnaryHandler(ListReceiptsProcedure, svc.ListReceipts, opts...),
		UpdateReceiptProcedure:   connect.NewUnaryHandler(UpdateReceiptProcedure, svc.UpdateReceipt, opts...),
		CalculateSplitProcedure:  connect.NewUnaryHandler(CalculateSplitProcedure, svc.CalculateSplit, opts...),
		SaveSplitProcedure:       connect.NewUnaryHandler(SaveSplitProcedure, svc.SaveSplit, opts...),
		GetSharedSplitProcedure:  connect.NewUnaryHandler(GetSharedSplitProcedure, svc.GetSharedSplit, opts...),
		ExportSplitProcedure:     connect.NewUnaryHandler(ExportSplitProcedure, svc.ExportSplit, opts...),
	}
	return "/" + ReceiptServiceName + "/", dispatch(handlers)
}

func dispatch(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// ReceiptServiceClient calls ReceiptService over Connect.
type ReceiptServiceClient struct {
	createUploadURL *connect.Client[api.CreateUploadURLRequest, api.CreateUploadURLResponse]
	createReceipt   *connect.Client[api.CreateReceiptRequest, api.CreateReceiptResponse]
	scanReceipt     *connect.Client[api.ScanReceiptRequest, api.ScanReceiptResponse]
	getReceipt      *connect.Client[api.GetReceiptRequest, api.GetReceiptResponse]
	listReceipts    *connect.Client[api.ListReceiptsRequest, api.ListReceiptsResponse]
	updateReceipt   *connect.Client[api.UpdateReceiptRequest, api.UpdateReceiptResponse]
	calculateSplit  *connect.Client[api.CalculateSplitRequest, api.CalculateSplitResponse]
	saveSplit       *connect.Client[api.SaveSplitRequest, api.SaveSplitResponse]
	getSharedSplit  *connect.Client[api.GetSharedSplitRequest, api.GetSharedSplitResponse]
	exportSplit     *connect.Client[api.ExportSplitRequest, api.ExportSplitResponse]
}

// NewReceiptServiceClient constructs a client for the service at baseURL.
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &ReceiptServiceClient{
		createUploadURL: connect.NewClient[api.CreateUploadURLRequest, api.CreateUploadURLResponse](httpClient, baseURL+CreateUploadURLProcedure, opts...),
		createReceipt:   connect.NewClient[api.CreateReceiptRequest, api.CreateReceiptResponse](httpClient, baseURL+CreateReceiptProcedure, opts...),
		scanReceipt:     connect.NewClient[api.ScanReceiptRequest, api.ScanReceiptResponse](httpClient, baseURL+ScanReceiptProcedure, opts...),
		getReceipt:      connect.NewClient[api.GetReceiptRequest, api.GetReceiptResponse](httpClient, baseURL+GetReceiptProcedure, opts...),
		listReceipts:    connect.NewClient[api.ListReceiptsRequest, api.ListReceiptsResponse](httpClient, baseURL+ListReceiptsProcedure, opts...),
		updateReceipt:   connect.NewClient[api.UpdateReceiptRequest, api.UpdateReceiptResponse](httpClient, baseURL+UpdateReceiptProcedure, opts...),
		calculateSplit:  connect.NewClient[api.CalculateSplitRequest, api.CalculateSplitResponse](httpClient, baseURL+CalculateSplitProcedure, opts...),
		saveSplit:       connect.NewClient[api.SaveSplitRequest, api.SaveSplitResponse](httpClient, baseURL+SaveSplitProcedure, opts...),
		getSharedSplit:  connect.NewClient[api.GetSharedSplitRequest, api.GetSharedSplitResponse](httpClient, baseURL+GetSharedSplitProcedure, opts...),
		exportSplit:     connect.NewClient[api.ExportSplitRequest, api.ExportSplitResponse](httpClient, baseURL+ExportSplitProcedure, opts...),
	}
}

func (c *ReceiptServiceClient) CreateUploadURL(ctx context.Context, req *connect.Request[api.CreateUploadURLRequest]) (*connect.Response[api.CreateUploadURLResponse], error) {
	return c.createUploadURL.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) CreateReceipt(ctx context.Context, req *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error) {
	return c.createReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) ScanReceipt(ctx context.Context, req *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error) {
	return c.scanReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	return c.getReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) ListReceipts(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	return c.listReceipts.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) UpdateReceipt(ctx context.Context, req *connect.Request[api.UpdateReceiptRequest]) (*connect.Response[api.UpdateReceiptResponse], error) {
	return c.updateReceipt.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) CalculateSplit(ctx context.Context, req *connect.Request[api.CalculateSplitRequest]) (*connect.Response[api.CalculateSplitResponse], error) {
	return c.calculateSplit.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) SaveSplit(ctx context.Context, req *connect.Request[api.SaveSplitRequest]) (*connect.Response[api.SaveSplitResponse], error) {
	return c.saveSplit.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) GetSharedSplit(ctx context.Context, req *connect.Request[api.GetSharedSplitRequest]) (*connect.Response[api.GetSharedSplitResponse], error) {
	return c.getSharedSplit.CallUnary(ctx, req)
}

func (c *ReceiptServiceClient) ExportSplit(ctx context.Context, req *connect.Request[api.ExportSplitRequest]) (*connect.Response[api.ExportSplitResponse], error) {
	return c.exportSplit.CallUnary(ctx, req)
}

// GroupServiceName is the fully-qualified name of the group service.
const GroupServiceName = "receiptsplit.v1.GroupService"

// Procedure paths of GroupService.
const (
	CreateGroupProcedure  = "/" + GroupServiceName + "/CreateGroup"
	ListGroupsProcedure   = "/" + GroupServiceName + "/ListGroups"
	GetGroupProcedure     = "/" + GroupServiceName + "/GetGroup"
	CreateInviteProcedure = "/" + GroupServiceName + "/CreateInvite"
	JoinGroupProcedure    = "/" + GroupServiceName + "/JoinGroup"
)

// NewGroupServiceHandler builds an HTTP handler for svc and returns the
// path to mount it on.
func NewGroupServiceHandler(svc *GroupService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	handlers := map[string]http.Handler{
		CreateGroupProcedure:  connect.NewUnaryHandler(CreateGroupProcedure, svc.CreateGroup, opts...),
		ListGroupsProcedure:   connect.NewUnaryHandler(ListGroupsProcedure, svc.ListGroups, opts...),
		GetGroupProcedure:     connect.NewUnaryHandler(GetGroupProcedure, svc.GetGroup, opts...),
		CreateInviteProcedure: connect.NewUnaryHandler(CreateInviteProcedure, svc.CreateInvite, opts...),
		JoinGroupProcedure:    connect.NewUnaryHandler(JoinGroupProcedure, svc.JoinGroup, opts...),
	}
	return "/" + GroupServiceName + "/", dispatch(handlers)
}

// GroupServiceClient calls GroupService over Connect.
type GroupServiceClient struct {
	createGroup  *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	listGroups   *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	getGroup     *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	createInvite *connect.Client[api.CreateInviteRequest, api.CreateInviteResponse]
	joinGroup    *connect.Client[api.JoinGroupRequest, api.JoinGroupResponse]
}

// NewGroupServiceClient constructs a client for the service at baseURL.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &GroupServiceClient{
		createGroup:  connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+CreateGroupProcedure, opts...),
		listGroups:   connect.NewClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL+ListGroupsProcedure, opts...),
		getGroup:     connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL+GetGroupProcedure, opts...),
		createInvite: connect.NewClient[api.CreateInviteRequest, api.CreateInviteResponse](httpClient, baseURL+CreateInviteProcedure, opts...),
		joinGroup:    connect.NewClient[api.JoinGroupRequest, api.JoinGroupResponse](httpClient, baseURL+JoinGroupProcedure, opts...),
	}
}

func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

func (c *GroupServiceClient) CreateInvite(ctx context.Context, req *connect.Request[api.CreateInviteRequest]) (*connect.Response[api.CreateInviteResponse], error) {
	return c.createInvite.CallUnary(ctx, req)
}

func (c *GroupServiceClient) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	return c.joinGroup.CallUnary(ctx, req)
}
