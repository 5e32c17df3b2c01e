// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/receiptsplit/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for receipt, split and group storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateReceipt persists a new receipt with its line items.
	// The receipt.ID, CreatedAt and line item IDs are populated by the store.
	CreateReceipt(ctx context.Context, receipt *models.Receipt) error

	// GetReceipt retrieves a receipt and its line items in extraction order.
	// Returns ErrNotFound if the receipt does not exist.
	GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error)

	// ListReceiptsByOwner returns the owner's receipts, newest first.
	// Line items are not loaded.
	ListReceiptsByOwner(ctx context.Context, ownerID string) ([]*models.Receipt, error)

	// UpdateReceiptParse stores extracted fields, replaces all line items and
	// records the raw OCR payload in one transaction. New line item IDs are
	// written back to receipt.LineItems.
	UpdateReceiptParse(ctx context.Context, receipt *models.Receipt) error

	// UpdateReceipt overwrites the receipt's merchant, date, totals and the
	// listed line items in one transaction. Line items are matched by ID and
	// keep it; ErrNotFound is returned if the receipt or any item is missing.
	UpdateReceipt(ctx context.Context, receipt *models.Receipt) error

	// ListReceiptsByGroup returns the group's receipts, newest first.
	// Line items are not loaded.
	ListReceiptsByGroup(ctx context.Context, groupID string) ([]*models.Receipt, error)

	// CreateSplit persists an immutable split snapshot.
	// The split.ID, ShareToken and CreatedAt fields are populated by the store.
	CreateSplit(ctx context.Context, split *models.Split) error

	// GetSplitByShareToken retrieves a snapshot by its public share token.
	// Returns ErrNotFound if no snapshot has the token.
	GetSplitByShareToken(ctx context.Context, token string) (*models.Split, error)

	// CreateGroup persists a group and an active owner membership for
	// group.CreatedBy. The owner's email is recorded on the membership.
	CreateGroup(ctx context.Context, group *models.Group, ownerEmail string) error

	// GetGroup retrieves a group with its members, oldest first.
	// Returns ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns the groups the user is an active member of,
	// newest first. Members are not loaded.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// GetMembership returns the user's membership in the group.
	// Returns ErrNotFound if the user was never a member.
	GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error)

	// CreateInvite persists an invite with a fresh random token.
	CreateInvite(ctx context.Context, invite *models.Invite) error

	// GetInvite retrieves an invite by token.
	// Returns ErrNotFound if the token is unknown or already used.
	GetInvite(ctx context.Context, token string) (*models.Invite, error)

	// AcceptInvite activates the membership and consumes the invite in one
	// transaction. Returns ErrNotFound if the invite was already used.
	AcceptInvite(ctx context.Context, token string, membership *models.Membership) error

	// Ping reports whether the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// ObjectStorage hands out short-lived upload URLs for receipt images.
type ObjectStorage interface {
	// PresignUpload returns a URL that accepts a single PUT of the object.
	PresignUpload(ctx context.Context, key, contentType string, expires time.Duration) (string, error)

	// Bucket is the bucket receipts are uploaded to.
	Bucket() string
}
