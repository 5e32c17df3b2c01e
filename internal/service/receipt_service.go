package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/receiptsplit/internal/api"
	"github.com/mmynk/receiptsplit/internal/events"
	"github.com/mmynk/receiptsplit/internal/extractor"
	"github.com/mmynk/receiptsplit/internal/metrics"
	"github.com/mmynk/receiptsplit/internal/middleware"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/ocr"
	"github.com/mmynk/receiptsplit/internal/storage"
)

var (
	errOCRDisabled     = errors.New("receipt scanning is not configured")
	errUploadsDisabled = errors.New("receipt uploads are not configured")
)

// uploadTypes are the content types accepted for receipt uploads, mapped to
// the extension used in the object key.
var uploadTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}

// ReceiptService implements the receiptsplit.v1.ReceiptService API.
type ReceiptService struct {
	store         storage.Store
	objects       storage.ObjectStorage
	analyzer      ocr.Analyzer
	publisher     events.Publisher
	metrics       *metrics.Metrics
	shareBaseURL  string
	presignExpiry time.Duration
}

// Option configures optional ReceiptService dependencies.
type Option func(*ReceiptService)

// WithObjectStorage enables CreateUploadURL and, with an analyzer, ScanReceipt.
func WithObjectStorage(objects storage.ObjectStorage, presignExpiry time.Duration) Option {
	return func(s *ReceiptService) {
		s.objects = objects
		s.presignExpiry = presignExpiry
	}
}

// WithAnalyzer sets the document analyzer used by ScanReceipt.
func WithAnalyzer(analyzer ocr.Analyzer) Option {
	return func(s *ReceiptService) { s.analyzer = analyzer }
}

// WithPublisher sets where split.saved events go.
func WithPublisher(publisher events.Publisher) Option {
	return func(s *ReceiptService) { s.publisher = publisher }
}

// WithMetrics records allocation, extraction and event metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ReceiptService) { s.metrics = m }
}

// WithShareBaseURL prefixes share links; without it they are relative.
func WithShareBaseURL(baseURL string) Option {
	return func(s *ReceiptService) { s.shareBaseURL = strings.TrimSuffix(baseURL, "/") }
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(store storage.Store, opts ...Option) *ReceiptService {
	s := &ReceiptService{
		store:         store,
		publisher:     events.Noop{},
		presignExpiry: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUploadURL returns a presigned PUT URL for a new receipt image.
func (s *ReceiptService) CreateUploadURL(
	ctx context.Context,
	req *connect.Request[api.CreateUploadURLRequest],
) (*connect.Response[api.CreateUploadURLResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if s.objects == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errUploadsDisabled)
	}

	contentType := strings.ToLower(strings.TrimSpace(req.Msg.ContentType))
	ext, ok := uploadTypes[contentType]
	if !ok {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unsupported content type %q", req.Msg.ContentType))
	}
	if e := strings.ToLower(path.Ext(req.Msg.Filename)); ext == ".jpg" && e == ".jpeg" {
		ext = e
	}

	key := fmt.Sprintf("receipts/%s/%s%s", userID, uuid.New().String(), ext)
	url, err := s.objects.PresignUpload(ctx, key, contentType, s.presignExpiry)
	if err != nil {
		slog.Error("CreateUploadURL failed", "key", key, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	slog.Info("Upload URL issued", "user_id", userID, "key", key)
	return connect.NewResponse(&api.CreateUploadURLResponse{
		URL:       url,
		ImageKey:  key,
		ExpiresAt: time.Now().Add(s.presignExpiry).Unix(),
	}), nil
}

// CreateReceipt registers an uploaded receipt image for the caller.
func (s *ReceiptService) CreateReceipt(
	ctx context.Context,
	req *connect.Request[api.CreateReceiptRequest],
) (*connect.Response[api.CreateReceiptResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateReceipt request received", "user_id", userID, "image_key", req.Msg.ImageKey)

	if req.Msg.ImageKey == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("image_key required"))
	}
	if !strings.HasPrefix(req.Msg.ImageKey, "receipts/"+userID+"/") {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("image_key does not belong to caller"))
	}
	if req.Msg.GroupID != "" {
		member, err := activeMembership(ctx, s.store, req.Msg.GroupID, userID)
		if err != nil {
			return nil, toConnectError("CreateReceipt", err)
		}
		if member == nil {
			return nil, connect.NewError(connect.CodePermissionDenied, errors.New("not a member of this group"))
		}
	}

	receipt := &models.Receipt{
		OwnerID:   userID,
		GroupID:   req.Msg.GroupID,
		ImageKey:  req.Msg.ImageKey,
		LineItems: []models.LineItem{},
	}
	if err := s.store.CreateReceipt(ctx, receipt); err != nil {
		return nil, toConnectError("CreateReceipt", err)
	}

	slog.Info("Receipt created", "receipt_id", receipt.ID)
	return connect.NewResponse(&api.CreateReceiptResponse{ReceiptID: receipt.ID}), nil
}

// ScanReceipt runs document analysis on the receipt image, extracts its
// fields and stores them on the receipt.
func (s *ReceiptService) ScanReceipt(
	ctx context.Context,
	req *connect.Request[api.ScanReceiptRequest],
) (*connect.Response[api.ScanReceiptResponse], error) {
	receipt, err := s.visibleReceipt(ctx, "ScanReceipt", req.Msg.ReceiptID)
	if err != nil {
		return nil, err
	}
	if s.analyzer == nil || s.objects == nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errOCRDisabled)
	}
	if receipt.ImageKey == "" {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("receipt has no image"))
	}

	start := time.Now()
	res, raw, err := s.analyzer.AnalyzeExpense(ctx, s.objects.Bucket(), receipt.ImageKey)
	if err != nil {
		s.metrics.ObserveExtraction(err, 0, time.Since(start))
		slog.Error("ScanReceipt analysis failed", "receipt_id", receipt.ID, "error", err)
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("document analysis failed"))
	}
	parsed := extractor.Extract(res)
	s.metrics.ObserveExtraction(nil, len(parsed.LineItems), time.Since(start))

	receipt.ApplyParsed(parsed)
	receipt.OCRJSON = raw
	if err := s.store.UpdateReceiptParse(ctx, receipt); err != nil {
		return nil, toConnectError("ScanReceipt", err)
	}

	slog.Info("Receipt scanned",
		"receipt_id", receipt.ID,
		"line_items", len(receipt.LineItems),
		"has_total", parsed.Total.Valid,
	)
	resp := &api.ScanReceiptResponse{
		Parsed:  parsed,
		Receipt: api.NewReceipt(receipt),
	}
	if req.Msg.Debug {
		resp.Raw = raw
	}
	return connect.NewResponse(resp), nil
}

// GetReceipt returns a receipt with its line items.
func (s *ReceiptService) GetReceipt(
	ctx context.Context,
	req *connect.Request[api.GetReceiptRequest],
) (*connect.Response[api.GetReceiptResponse], error) {
	receipt, err := s.visibleReceipt(ctx, "GetReceipt", req.Msg.ReceiptID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetReceiptResponse{Receipt: api.NewReceipt(receipt)}), nil
}

// UpdateReceipt applies a manual correction to a receipt and returns the
// stored result.
func (s *ReceiptService) UpdateReceipt(
	ctx context.Context,
	req *connect.Request[api.UpdateReceiptRequest],
) (*connect.Response[api.UpdateReceiptResponse], error) {
	receipt, err := s.visibleReceipt(ctx, "UpdateReceipt", req.Msg.ReceiptID)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateReceipt request received",
		"receipt_id", receipt.ID,
		"line_items", len(req.Msg.LineItems),
	)

	if err := receipt.ApplyEdit(req.Msg.Edit()); err != nil {
		return nil, toConnectError("UpdateReceipt", err)
	}
	if err := s.store.UpdateReceipt(ctx, receipt); err != nil {
		return nil, toConnectError("UpdateReceipt", err)
	}

	slog.Info("Receipt updated", "receipt_id", receipt.ID)
	return connect.NewResponse(&api.UpdateReceiptResponse{Receipt: api.NewReceipt(receipt)}), nil
}

// ListReceipts returns the caller's receipts, or a group's receipts for an
// active member, newest first and without line items.
func (s *ReceiptService) ListReceipts(
	ctx context.Context,
	req *connect.Request[api.ListReceiptsRequest],
) (*connect.Response[api.ListReceiptsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var receipts []*models.Receipt
	if groupID := req.Msg.GroupID; groupID != "" {
		var member *models.Membership
		if member, err = activeMembership(ctx, s.store, groupID, userID); err != nil {
			return nil, toConnectError("ListReceipts", err)
		}
		if member == nil {
			return nil, connect.NewError(connect.CodeNotFound, errGroupNotFound)
		}
		receipts, err = s.store.ListReceiptsByGroup(ctx, groupID)
	} else {
		receipts, err = s.store.ListReceiptsByOwner(ctx, userID)
	}
	if err != nil {
		return nil, toConnectError("ListReceipts", err)
	}

	out := make([]*api.Receipt, len(receipts))
	for i, r := range receipts {
		out[i] = api.NewReceipt(r)
	}
	slog.Info("ListReceipts successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&api.ListReceiptsResponse{Receipts: out}), nil
}

// CalculateSplit previews an allocation without persisting it.
func (s *ReceiptService) CalculateSplit(
	ctx context.Context,
	req *connect.Request[api.CalculateSplitRequest],
) (*connect.Response[api.CalculateSplitResponse], error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}
	slog.Info("CalculateSplit request received",
		"receipt_id", req.Msg.ReceiptID,
		"participants", len(req.Msg.Participants),
	)

	alloc, err := s.allocate(ctx, "CalculateSplit", *req.Msg)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(newCalculateResponse(req.Msg.Participants, alloc)), nil
}

// SaveSplit computes an allocation for a stored receipt, persists the
// snapshot and returns its public share URL.
func (s *ReceiptService) SaveSplit(
	ctx context.Context,
	req *connect.Request[api.SaveSplitRequest],
) (*connect.Response[api.SaveSplitResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SaveSplit request received", "receipt_id", req.Msg.ReceiptID, "user_id", userID)

	if req.Msg.ReceiptID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("receipt_id required"))
	}
	alloc, err := s.allocate(ctx, "SaveSplit", *req.Msg)
	if err != nil {
		return nil, err
	}

	split := &models.Split{
		ReceiptID:          req.Msg.ReceiptID,
		CreatedBy:          userID,
		Participants:       req.Msg.Participants,
		Assignment:         req.Msg.Assignment,
		ProportionalTaxTip: req.Msg.ProportionalTaxTip,
		Totals:             alloc.Totals(),
		Meta:               alloc.Meta.Decimal(),
	}
	if split.Participants == nil {
		split.Participants = []models.Participant{}
	}
	if split.Assignment == nil {
		split.Assignment = models.Assignment{}
	}
	if err := s.store.CreateSplit(ctx, split); err != nil {
		return nil, toConnectError("SaveSplit", err)
	}

	// The snapshot is already stored; a failed publish is logged and counted only.
	err = s.publisher.PublishSplitSaved(ctx, events.NewSplitSavedMessage(split))
	s.metrics.ObserveEvent(events.SplitSavedEvent, err)
	if err != nil {
		slog.Error("Failed to publish split event", "split_id", split.ID, "error", err)
	}

	slog.Info("Split saved", "split_id", split.ID, "receipt_id", split.ReceiptID)
	return connect.NewResponse(&api.SaveSplitResponse{
		Split:    split,
		ShareURL: s.shareBaseURL + "/share/" + split.ShareToken,
	}), nil
}

// GetSharedSplit returns a stored split snapshot by share token. No
// authentication is required.
func (s *ReceiptService) GetSharedSplit(
	ctx context.Context,
	req *connect.Request[api.GetSharedSplitRequest],
) (*connect.Response[api.GetSharedSplitResponse], error) {
	if req.Msg.ShareToken == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("share_token required"))
	}

	split, err := s.store.GetSplitByShareToken(ctx, req.Msg.ShareToken)
	if err != nil {
		return nil, toConnectError("GetSharedSplit", err)
	}
	return connect.NewResponse(&api.GetSharedSplitResponse{Split: split}), nil
}

func requireUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return userID, nil
}

// visibleReceipt loads a receipt the caller owns or shares through an active
// group membership. Any other receipt is reported as not found.
func (s *ReceiptService) visibleReceipt(ctx context.Context, op, receiptID string) (*models.Receipt, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if receiptID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("receipt_id required"))
	}

	receipt, err := s.store.GetReceipt(ctx, receiptID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if receipt.OwnerID == userID {
		return receipt, nil
	}
	member, err := activeMembership(ctx, s.store, receipt.GroupID, userID)
	if err != nil {
		return nil, toConnectError(op, err)
	}
	if member == nil {
		slog.Warn(op+" denied", "receipt_id", receiptID, "user_id", userID)
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound))
	}
	return receipt, nil
}
