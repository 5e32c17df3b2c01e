package api

import "github.com/mmynk/receiptsplit/internal/models"

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *models.Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*models.Group `json:"groups"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *models.Group `json:"group"`
}

// CreateInviteRequest invites someone to a group. A non-empty Email locks
// the invite to that address.
type CreateInviteRequest struct {
	GroupID string `json:"groupId"`
	Email   string `json:"email,omitempty"`
}

type CreateInviteResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type JoinGroupRequest struct {
	Token string `json:"token"`
}

type JoinGroupResponse struct {
	GroupID string `json:"groupId"`
}
