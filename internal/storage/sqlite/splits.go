package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/receiptsplit/internal/models"
	"github.com/mmynk/receiptsplit/internal/storage"
)

// tokenBytes is the entropy of share and invite tokens before hex encoding.
const tokenBytes = 16

// CreateSplit persists a split snapshot with a fresh share token.
func (s *SQLiteStore) CreateSplit(ctx context.Context, split *models.Split) error {
	if split.ID == "" {
		split.ID = uuid.New().String()
	}
	if split.CreatedAt == 0 {
		split.CreatedAt = time.Now().Unix()
	}
	token, err := randomToken()
	if err != nil {
		return err
	}
	split.ShareToken = token

	snapshot, err := json.Marshal(split)
	if err != nil {
		return fmt.Errorf("failed to encode split snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO splits (id, receipt_id, created_by, share_token, snapshot, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		split.ID, split.ReceiptID, split.CreatedBy, split.ShareToken, string(snapshot), split.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert split: %w", err)
	}
	return nil
}

// GetSplitByShareToken retrieves a split snapshot by its share token.
func (s *SQLiteStore) GetSplitByShareToken(ctx context.Context, token string) (*models.Split, error) {
	var (
		split    models.Split
		snapshot string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, receipt_id, created_by, share_token, snapshot, created_at FROM splits WHERE share_token = ?",
		token,
	).Scan(&split.ID, &split.ReceiptID, &split.CreatedBy, &split.ShareToken, &snapshot, &split.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("split: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get split: %w", err)
	}

	var stored models.Split
	if err := json.Unmarshal([]byte(snapshot), &stored); err != nil {
		return nil, fmt.Errorf("failed to decode split snapshot: %w", err)
	}
	split.Participants = stored.Participants
	split.Assignment = stored.Assignment
	split.ProportionalTaxTip = stored.ProportionalTaxTip
	split.Totals = stored.Totals
	split.Meta = stored.Meta
	return &split, nil
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
