package models

// Role is a member's role within a group.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// MembershipStatus tells whether a membership grants access.
type MembershipStatus string

// StatusActive is the only status that grants access.
const StatusActive MembershipStatus = "active"

// Group is a set of users who share receipts.
// Receipts created with a GroupID are readable, editable and splittable
// by every active member.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string `json:"name"`

	// CreatedBy is the user ID of the group's owner.
	CreatedBy string `json:"createdBy"`

	// Members lists memberships oldest first. Only populated by GetGroup.
	Members []Membership `json:"members,omitempty"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`
}

// Membership links a user to a group.
type Membership struct {
	GroupID   string           `json:"groupId"`
	UserID    string           `json:"userId"`
	Email     string           `json:"email"`
	Role      Role             `json:"role"`
	Status    MembershipStatus `json:"status"`
	CreatedAt int64            `json:"createdAt"`
}

// Active reports whether the membership grants access to the group.
func (m *Membership) Active() bool {
	return m != nil && m.Status == StatusActive
}

// Invite is a single-use token that adds its bearer to a group.
type Invite struct {
	Token   string `json:"token"`
	GroupID string `json:"groupId"`

	// Email, when set, restricts the invite to that address (case-insensitive).
	Email string `json:"email,omitempty"`

	CreatedBy string `json:"createdBy"`

	// ExpiresAt is the Unix timestamp after which the invite is rejected.
	ExpiresAt int64 `json:"expiresAt"`
}
