package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
)

// CreateGroup persists a new group together with its owner's membership.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group, ownerEmail string) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO user_groups (id, name, created_by, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CreatedBy, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	owner := models.Membership{
		GroupID:   group.ID,
		UserID:    group.CreatedBy,
		Email:     ownerEmail,
		Role:      models.RoleOwner,
		Status:    models.StatusActive,
		CreatedAt: group.CreatedAt,
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO memberships (group_id, user_id, email, role, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		owner.GroupID, owner.UserID, owner.Email, owner.Role, owner.Status, owner.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	group.Members = []models.Membership{owner}
	return nil
}

// GetGroup retrieves a group by ID, including its memberships.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_by, created_at FROM user_groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT group_id, user_id, email, role, status, created_at
		FROM memberships WHERE group_id = ?
		ORDER BY created_at, user_id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get memberships: %w", err)
	}
	defer rows.Close()

	group.Members = []models.Membership{}
	for rows.Next() {
		var m models.Membership
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Email, &m.Role, &m.Status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		group.Members = append(group.Members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}
	return group, nil
}

// ListGroupsByMember returns the user's active groups, newest first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.created_by, g.created_at
		FROM user_groups g
		JOIN memberships m ON m.group_id = g.id
		WHERE m.user_id = ? AND m.status = ?
		ORDER BY g.created_at DESC, g.id`,
		userID, models.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []*models.Group{}
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// GetMembership retrieves one user's membership in a group.
func (s *SQLiteStore) GetMembership(ctx context.Context, groupID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx, `
		SELECT group_id, user_id, email, role, status, created_at
		FROM memberships WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	).Scan(&m.GroupID, &m.UserID, &m.Email, &m.Role, &m.Status, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("membership %s/%s: %w", groupID, userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// CreateInvite persists an invite under a fresh token.
func (s *SQLiteStore) CreateInvite(ctx context.Context, invite *models.Invite) error {
	token, err := randomToken()
	if err != nil {
		return err
	}
	invite.Token = token

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO invites (token, group_id, email, created_by, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		invite.Token, invite.GroupID, invite.Email, invite.CreatedBy, invite.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetInvite retrieves an unused invite by token.
func (s *SQLiteStore) GetInvite(ctx context.Context, token string) (*models.Invite, error) {
	invite := &models.Invite{}
	err := s.db.QueryRowContext(ctx,
		"SELECT token, group_id, email, created_by, expires_at FROM invites WHERE token = ?",
		token,
	).Scan(&invite.Token, &invite.GroupID, &invite.Email, &invite.CreatedBy, &invite.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invite: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

// AcceptInvite consumes the invite and upserts an active membership.
// A returning member keeps their role; new members join as RoleMember.
func (s *SQLiteStore) AcceptInvite(ctx context.Context, token string, membership *models.Membership) error {
	if membership.CreatedAt == 0 {
		membership.CreatedAt = time.Now().Unix()
	}
	if membership.Role == "" {
		membership.Role = models.RoleMember
	}
	membership.Status = models.StatusActive

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM invites WHERE token = ? AND group_id = ?", token, membership.GroupID)
	if err != nil {
		return fmt.Errorf("failed to consume invite: %w", err)
	}
	if err := expectRow(result, "invite"); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO memberships (group_id, user_id, email, role, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (group_id, user_id) DO UPDATE SET status = excluded.status, email = excluded.email`,
		membership.GroupID, membership.UserID, membership.Email,
		membership.Role, membership.Status, membership.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
