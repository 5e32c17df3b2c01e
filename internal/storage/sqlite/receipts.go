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

// CreateReceipt persists a new receipt and its line items.
func (s *SQLiteStore) CreateReceipt(ctx context.Context, receipt *models.Receipt) error {
	if receipt.ID == "" {
		receipt.ID = uuid.New().String()
	}
	if receipt.CreatedAt == 0 {
		receipt.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO receipts (id, owner_id, group_id, image_key, merchant_raw, purchase_date,
			subtotal, tax, tip, total, ocr_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		receipt.ID, receipt.OwnerID, receipt.GroupID, receipt.ImageKey,
		receipt.MerchantRaw, receipt.PurchaseDate,
		receipt.Subtotal, receipt.Tax, receipt.Tip, receipt.Total,
		receipt.OCRJSON, receipt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	if err := insertLineItems(ctx, tx, receipt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetReceipt retrieves a receipt by ID, including its line items.
func (s *SQLiteStore) GetReceipt(ctx context.Context, receiptID string) (*models.Receipt, error) {
	receipt := &models.Receipt{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, group_id, image_key, merchant_raw, purchase_date,
			subtotal, tax, tip, total, ocr_json, created_at
		FROM receipts WHERE id = ?`,
		receiptID,
	).Scan(
		&receipt.ID, &receipt.OwnerID, &receipt.GroupID, &receipt.ImageKey,
		&receipt.MerchantRaw, &receipt.PurchaseDate,
		&receipt.Subtotal, &receipt.Tax, &receipt.Tip, &receipt.Total,
		&receipt.OCRJSON, &receipt.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("receipt %s: %w", receiptID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, description_raw, qty, unit_price, line_total
		FROM line_items WHERE receipt_id = ? ORDER BY position`,
		receiptID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get line items: %w", err)
	}
	defer rows.Close()

	receipt.LineItems = []models.LineItem{}
	for rows.Next() {
		var (
			li  models.LineItem
			qty sql.NullInt64
		)
		if err := rows.Scan(&li.ID, &li.DescriptionRaw, &qty, &li.UnitPrice, &li.LineTotal); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		if qty.Valid {
			q := int(qty.Int64)
			li.Qty = &q
		}
		receipt.LineItems = append(receipt.LineItems, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate line items: %w", err)
	}

	return receipt, nil
}

// ListReceiptsByOwner returns the owner's receipts without line items, newest first.
func (s *SQLiteStore) ListReceiptsByOwner(ctx context.Context, ownerID string) ([]*models.Receipt, error) {
	return s.listReceipts(ctx, "owner_id", ownerID)
}

// ListReceiptsByGroup returns the group's receipts without line items, newest first.
func (s *SQLiteStore) ListReceiptsByGroup(ctx context.Context, groupID string) ([]*models.Receipt, error) {
	return s.listReceipts(ctx, "group_id", groupID)
}

// listReceipts filters on a fixed column name; it is never caller input.
func (s *SQLiteStore) listReceipts(ctx context.Context, column, value string) ([]*models.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, group_id, image_key, merchant_raw, purchase_date,
			subtotal, tax, tip, total, created_at
		FROM receipts WHERE `+column+` = ?
		ORDER BY created_at DESC, id`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer rows.Close()

	receipts := []*models.Receipt{}
	for rows.Next() {
		r := &models.Receipt{}
		if err := rows.Scan(
			&r.ID, &r.OwnerID, &r.GroupID, &r.ImageKey, &r.MerchantRaw, &r.PurchaseDate,
			&r.Subtotal, &r.Tax, &r.Tip, &r.Total, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate receipts: %w", err)
	}
	return receipts, nil
}

// UpdateReceipt overwrites the edited fields and line items in place.
func (s *SQLiteStore) UpdateReceipt(ctx context.Context, receipt *models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE receipts
		SET merchant_raw = ?, purchase_date = ?, subtotal = ?, tax = ?, tip = ?, total = ?
		WHERE id = ?`,
		receipt.MerchantRaw, receipt.PurchaseDate,
		receipt.Subtotal, receipt.Tax, receipt.Tip, receipt.Total,
		receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	if err := expectRow(result, "receipt "+receipt.ID); err != nil {
		return err
	}

	for _, li := range receipt.LineItems {
		var qty sql.NullInt64
		if li.Qty != nil {
			qty = sql.NullInt64{Int64: int64(*li.Qty), Valid: true}
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE line_items
			SET description_raw = ?, qty = ?, unit_price = ?, line_total = ?
			WHERE id = ? AND receipt_id = ?`,
			li.DescriptionRaw, qty, li.UnitPrice, li.LineTotal,
			li.ID, receipt.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update line item: %w", err)
		}
		if err := expectRow(result, "line item "+li.ID); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func expectRow(result sql.Result, what string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, storage.ErrNotFound)
	}
	return nil
}

// UpdateReceiptParse stores the extracted fields and replaces the line items.
func (s *SQLiteStore) UpdateReceiptParse(ctx context.Context, receipt *models.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE receipts
		SET merchant_raw = ?, purchase_date = ?, subtotal = ?, tax = ?, tip = ?, total = ?, ocr_json = ?
		WHERE id = ?`,
		receipt.MerchantRaw, receipt.PurchaseDate,
		receipt.Subtotal, receipt.Tax, receipt.Tip, receipt.Total,
		receipt.OCRJSON, receipt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update receipt: %w", err)
	}
	if err := expectRow(result, "receipt "+receipt.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM line_items WHERE receipt_id = ?", receipt.ID); err != nil {
		return fmt.Errorf("failed to delete line items: %w", err)
	}
	for i := range receipt.LineItems {
		receipt.LineItems[i].ID = ""
	}
	if err := insertLineItems(ctx, tx, receipt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertLineItems(ctx context.Context, tx *sql.Tx, receipt *models.Receipt) error {
	for i := range receipt.LineItems {
		li := &receipt.LineItems[i]
		if li.ID == "" {
			li.ID = uuid.New().String()
		}
		var qty sql.NullInt64
		if li.Qty != nil {
			qty = sql.NullInt64{Int64: int64(*li.Qty), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO line_items (id, receipt_id, position, description_raw, qty, unit_price, line_total)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			li.ID, receipt.ID, i, li.DescriptionRaw, qty, li.UnitPrice, li.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}
