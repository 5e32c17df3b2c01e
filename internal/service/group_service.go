package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/receiptsplit/internal/api"
	"github.com/mmynk/receiptsplit/internal/middleware"
	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
)

// inviteTTL is how long an invite token can be redeemed.
const inviteTTL = 7 * 24 * time.Hour

var (
	errGroupNotFound = errors.New("group not found")
	errInvalidInvite = errors.New("invalid invite")
)

// GroupService implements the receiptsplit.v1.GroupService API.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group owned by the caller.
func (s *GroupService) CreateGroup(
	ctx context.Context,
	req *connect.Request[api.CreateGroupRequest],
) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	slog.Info("CreateGroup request received", "user_id", userID, "name", name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("name required"))
	}

	group := &models.Group{Name: name, CreatedBy: userID}
	if err := s.store.CreateGroup(ctx, group, callerEmail(ctx)); err != nil {
		return nil, toConnectError("CreateGroup", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return connect.NewResponse(&api.CreateGroupResponse{Group: group}), nil
}

// ListGroups returns the groups the caller is an active member of.
func (s *GroupService) ListGroups(
	ctx context.Context,
	_ *connect.Request[api.ListGroupsRequest],
) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsByMember(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListGroups", err)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(groups))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: groups}), nil
}

// GetGroup returns a group and its members. Groups the caller is not an
// active member of are reported as not found.
func (s *GroupService) GetGroup(
	ctx context.Context,
	req *connect.Request[api.GetGroupRequest],
) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	member, err := activeMembership(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	if member == nil {
		return nil, connect.NewError(connect.CodeNotFound, errGroupNotFound)
	}

	group, err := s.store.GetGroup(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroup", err)
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: group}), nil
}

// CreateInvite issues a single-use invite token. Only the group owner may
// invite.
func (s *GroupService) CreateInvite(
	ctx context.Context,
	req *connect.Request[api.CreateInviteRequest],
) (*connect.Response[api.CreateInviteResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateInvite request received", "user_id", userID, "group_id", req.Msg.GroupID)

	member, err := activeMembership(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, toConnectError("CreateInvite", err)
	}
	if member == nil || member.Role != models.RoleOwner {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the group owner can invite"))
	}

	invite := &models.Invite{
		GroupID:   req.Msg.GroupID,
		Email:     strings.ToLower(strings.TrimSpace(req.Msg.Email)),
		CreatedBy: userID,
		ExpiresAt: time.Now().Add(inviteTTL).Unix(),
	}
	if err := s.store.CreateInvite(ctx, invite); err != nil {
		return nil, toConnectError("CreateInvite", err)
	}

	slog.Info("Invite created", "group_id", invite.GroupID, "email_locked", invite.Email != "")
	return connect.NewResponse(&api.CreateInviteResponse{
		Token:     invite.Token,
		ExpiresAt: invite.ExpiresAt,
	}), nil
}

// JoinGroup redeems an invite token and makes the caller an active member.
func (s *GroupService) JoinGroup(
	ctx context.Context,
	req *connect.Request[api.JoinGroupRequest],
) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Token == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("token required"))
	}

	invite, err := s.store.GetInvite(ctx, req.Msg.Token)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errInvalidInvite)
	}
	if err != nil {
		return nil, toConnectError("JoinGroup", err)
	}
	if time.Now().Unix() > invite.ExpiresAt {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("invite expired"))
	}
	email := callerEmail(ctx)
	if invite.Email != "" && !strings.EqualFold(invite.Email, email) {
		slog.Warn("JoinGroup denied", "group_id", invite.GroupID, "user_id", userID)
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("invite is locked to a different email"))
	}

	membership := &models.Membership{GroupID: invite.GroupID, UserID: userID, Email: email}
	err = s.store.AcceptInvite(ctx, invite.Token, membership)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errInvalidInvite)
	}
	if err != nil {
		return nil, toConnectError("JoinGroup", err)
	}

	slog.Info("Group joined", "group_id", invite.GroupID, "user_id", userID)
	return connect.NewResponse(&api.JoinGroupResponse{GroupID: invite.GroupID}), nil
}

// activeMembership returns the user's membership when it grants access,
// or nil when the user is not an active member.
func activeMembership(ctx context.Context, store storage.Store, groupID, userID string) (*models.Membership, error) {
	if groupID == "" {
		return nil, nil
	}
	m, err := store.GetMembership(ctx, groupID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !m.Active() {
		return nil, nil
	}
	return m, nil
}

func callerEmail(ctx context.Context) string {
	if user := middleware.GetUser(ctx); user != nil {
		return user.Email
	}
	return ""
}
