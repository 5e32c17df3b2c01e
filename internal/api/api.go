// Package api defines the request and response messages of the
// receiptsplit.v1 Connect services. Messages travel as JSON.
package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/mmynk/receiptsplit/internal/models"
)

type CreateUploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type CreateUploadURLResponse struct {
	URL       string `json:"url"`
	ImageKey  string `json:"imageKey"`
	ExpiresAt int64  `json:"expiresAt"`
}

type CreateReceiptRequest struct {
	ImageKey string `json:"imageKey"`
	GroupID  string `json:"groupId,omitempty"`
}

type CreateReceiptResponse struct {
	ReceiptID string `json:"receiptId"`
}

type ScanReceiptRequest struct {
	ReceiptID string `json:"receiptId"`
	// Debug includes the raw document-analysis payload in the response.
	Debug bool `json:"debug,omitempty"`
}

type ScanReceiptResponse struct {
	Parsed  models.ParsedReceipt `json:"parsed"`
	Receipt *Receipt             `json:"receipt"`
	Raw     json.RawMessage      `json:"raw,omitempty"`
}

type GetReceiptRequest struct {
	ReceiptID string `json:"receiptId"`
}

type GetReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

// ListReceiptsRequest lists the caller's own receipts, or a group's receipts
// when GroupID is set.
type ListReceiptsRequest struct {
	GroupID string `json:"groupId,omitempty"`
}

type ListReceiptsResponse struct {
	Receipts []*Receipt `json:"receipts"`
}

// UpdateReceiptRequest corrects a receipt by hand. Omitted merchant, date and
// totals keep their stored values; listed line items are overwritten in full.
type UpdateReceiptRequest struct {
	ReceiptID    string              `json:"receiptId"`
	MerchantRaw  *string             `json:"merchantRaw,omitempty"`
	PurchaseDate *string             `json:"purchaseDate,omitempty"`
	Subtotal     decimal.NullDecimal `json:"subtotal"`
	Tax          decimal.NullDecimal `json:"tax"`
	Tip          decimal.NullDecimal `json:"tip"`
	Total        decimal.NullDecimal `json:"total"`
	LineItems    []models.LineItem   `json:"lineItems"`
}

// Edit returns the request as a models.ReceiptEdit.
func (r *UpdateReceiptRequest) Edit() models.ReceiptEdit {
	return models.ReceiptEdit{
		MerchantRaw:  r.MerchantRaw,
		PurchaseDate: r.PurchaseDate,
		Subtotal:     r.Subtotal,
		Tax:          r.Tax,
		Tip:          r.Tip,
		Total:        r.Total,
		LineItems:    r.LineItems,
	}
}

type UpdateReceiptResponse struct {
	Receipt *Receipt `json:"receipt"`
}

// Receipt is the wire form of models.Receipt without the raw OCR payload.
type Receipt struct {
	ID           string              `json:"id"`
	OwnerID      string              `json:"ownerId"`
	GroupID      string              `json:"groupId,omitempty"`
	ImageKey     string              `json:"imageKey"`
	MerchantRaw  string              `json:"merchantRaw"`
	PurchaseDate string              `json:"purchaseDate"`
	Subtotal     decimal.NullDecimal `json:"subtotal"`
	Tax          decimal.NullDecimal `json:"tax"`
	Tip          decimal.NullDecimal `json:"tip"`
	Total        decimal.NullDecimal `json:"total"`
	LineItems    []models.LineItem   `json:"lineItems"`
	CreatedAt    int64               `json:"createdAt"`
}

// NewReceipt converts a stored receipt for the wire.
func NewReceipt(r *models.Receipt) *Receipt {
	items := r.LineItems
	if items == nil {
		items = []models.LineItem{}
	}
	return &Receipt{
		ID:           r.ID,
		OwnerID:      r.OwnerID,
		GroupID:      r.GroupID,
		ImageKey:     r.ImageKey,
		MerchantRaw:  r.MerchantRaw,
		PurchaseDate: r.PurchaseDate,
		Subtotal:     r.Subtotal,
		Tax:          r.Tax,
		Tip:          r.Tip,
		Total:        r.Total,
		LineItems:    items,
		CreatedAt:    r.CreatedAt,
	}
}

// SplitRequest describes one allocation. Either ReceiptID names a stored
// receipt, or LineItems and the money fields are supplied inline.
type SplitRequest struct {
	ReceiptID string `json:"receiptId,omitempty"`

	LineItems []models.LineItem   `json:"lineItems,omitempty"`
	Subtotal  decimal.NullDecimal `json:"subtotal"`
	Tax       decimal.NullDecimal `json:"tax"`
	Tip       decimal.NullDecimal `json:"tip"`
	Total     decimal.NullDecimal `json:"total"`

	Participants       []models.Participant `json:"participants"`
	Assignment         models.Assignment    `json:"assign"`
	ProportionalTaxTip bool                 `json:"propTaxTip"`
}

type CalculateSplitRequest = SplitRequest

// Share is one participant's breakdown.
type Share struct {
	ParticipantID string          `json:"participantId"`
	Name          string          `json:"name"`
	Items         decimal.Decimal `json:"items"`
	Tax           decimal.Decimal `json:"tax"`
	Tip           decimal.Decimal `json:"tip"`
	Adjustment    decimal.Decimal `json:"adjustment"`
	Total         decimal.Decimal `json:"total"`
}

type CalculateSplitResponse struct {
	Totals map[string]decimal.Decimal `json:"totals"`
	Shares []Share                    `json:"shares"`
	Meta   models.SplitMeta           `json:"meta"`
}

type SaveSplitRequest = SplitRequest

type SaveSplitResponse struct {
	Split    *models.Split `json:"split"`
	ShareURL string        `json:"shareUrl"`
}

type GetSharedSplitRequest struct {
	ShareToken string `json:"shareToken"`
}

type GetSharedSplitResponse struct {
	Split *models.Split `json:"split"`
}

type ExportSplitRequest struct {
	SplitRequest
	// Format is "csv" (default) or "xlsx".
	Format string `json:"format,omitempty"`
}

type ExportSplitResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}
