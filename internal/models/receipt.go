package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidEdit is returned when a manual receipt edit cannot be applied.
var ErrInvalidEdit = errors.New("invalid receipt edit")

// ParsedReceipt is the flat result of extracting one document-analysis result.
// Every field may be absent; LineItems is empty (never nil) when no items were found.
type ParsedReceipt struct {
	MerchantRaw  *string             `json:"merchantRaw"`
	PurchaseDate *string             `json:"purchaseDate"` // verbatim, not parsed
	Subtotal     decimal.NullDecimal `json:"subtotal"`
	Tax          decimal.NullDecimal `json:"tax"`
	Tip          decimal.NullDecimal `json:"tip"`
	Total        decimal.NullDecimal `json:"total"`
	Savings      decimal.NullDecimal `json:"savings"`
	LineItems    []LineItem          `json:"lineItems"`
}

// LineItem represents a single purchased line on a receipt.
// Order within the receipt is the presentation and tie-break order for allocation.
type LineItem struct {
	// ID is the unique identifier for the line item (UUID format).
	// Empty for items that have not been persisted yet.
	ID string `json:"id,omitempty"`

	// DescriptionRaw is the OCR text describing the item; may be empty.
	DescriptionRaw string `json:"descriptionRaw"`

	// Qty is the purchased quantity. Nil means unset; callers treat it as 1.
	Qty *int `json:"qty,omitempty"`

	UnitPrice decimal.NullDecimal `json:"unitPrice"`
	LineTotal decimal.NullDecimal `json:"lineTotal"`
}

// EffectiveQty returns the quantity, defaulting to 1 when unset.
func (li LineItem) EffectiveQty() int {
	if li.Qty == nil {
		return 1
	}
	return *li.Qty
}

// Amount derives the line amount: the line total when present, otherwise
// quantity × unit price, otherwise zero. No rounding is applied here.
func (li LineItem) Amount() decimal.Decimal {
	if li.LineTotal.Valid {
		return li.LineTotal.Decimal
	}
	if li.UnitPrice.Valid {
		return li.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(li.EffectiveQty())))
	}
	return decimal.Zero
}

// Receipt is a persisted receipt owned by a user and optionally shared with a group.
type Receipt struct {
	// ID is the unique identifier for the receipt (UUID format).
	ID string

	// OwnerID is the user who uploaded the receipt.
	OwnerID string

	// GroupID is the group the receipt belongs to, empty when personal.
	GroupID string

	// ImageKey is the object storage key of the uploaded image or PDF.
	ImageKey string

	MerchantRaw  string
	PurchaseDate string
	Subtotal     decimal.NullDecimal
	Tax          decimal.NullDecimal
	Tip          decimal.NullDecimal
	Total        decimal.NullDecimal

	// LineItems are kept in extraction order.
	LineItems []LineItem

	// OCRJSON is the raw document-analysis payload, kept for debugging.
	OCRJSON []byte

	// CreatedAt is the Unix timestamp when the receipt was created.
	CreatedAt int64
}

// ApplyParsed merges an extraction result into the receipt.
// Present values overwrite, absent values keep what was stored before.
// Line items are replaced wholesale; an unset quantity is stored as 1.
func (r *Receipt) ApplyParsed(p ParsedReceipt) {
	if p.MerchantRaw != nil {
		r.MerchantRaw = *p.MerchantRaw
	}
	if p.PurchaseDate != nil {
		r.PurchaseDate = *p.PurchaseDate
	}
	r.Subtotal = pickDecimal(p.Subtotal, r.Subtotal)
	r.Tax = pickDecimal(p.Tax, r.Tax)
	r.Tip = pickDecimal(p.Tip, r.Tip)
	r.Total = pickDecimal(p.Total, r.Total)

	items := make([]LineItem, len(p.LineItems))
	for i, li := range p.LineItems {
		qty := li.EffectiveQty()
		items[i] = LineItem{
			DescriptionRaw: li.DescriptionRaw,
			Qty:            &qty,
			UnitPrice:      roundNull(li.UnitPrice),
			LineTotal:      roundNull(li.LineTotal),
		}
	}
	r.LineItems = items
}

// ReceiptEdit is a manual correction made after extraction.
// Nil or invalid receipt-level fields keep their stored values. Listed line
// items are matched by ID and overwritten in full: an absent price clears it
// and an unset quantity becomes 1.
type ReceiptEdit struct {
	MerchantRaw  *string
	PurchaseDate *string
	Subtotal     decimal.NullDecimal
	Tax          decimal.NullDecimal
	Tip          decimal.NullDecimal
	Total        decimal.NullDecimal
	LineItems    []LineItem
}

// ApplyEdit merges e into the receipt. Amounts are rounded to cents.
// The receipt is left unchanged when the edit is rejected.
func (r *Receipt) ApplyEdit(e ReceiptEdit) error {
	index := make(map[string]int, len(r.LineItems))
	for i, li := range r.LineItems {
		index[li.ID] = i
	}
	items := append([]LineItem(nil), r.LineItems...)
	for _, li := range e.LineItems {
		i, ok := index[li.ID]
		if li.ID == "" || !ok {
			return fmt.Errorf("%w: unknown line item %q", ErrInvalidEdit, li.ID)
		}
		qty := li.EffectiveQty()
		if qty < 1 {
			return fmt.Errorf("%w: line item %s qty %d", ErrInvalidEdit, li.ID, qty)
		}
		for _, d := range []decimal.NullDecimal{li.UnitPrice, li.LineTotal} {
			if d.Valid && d.Decimal.IsNegative() {
				return fmt.Errorf("%w: line item %s has a negative amount", ErrInvalidEdit, li.ID)
			}
		}
		items[i] = LineItem{
			ID:             li.ID,
			DescriptionRaw: li.DescriptionRaw,
			Qty:            &qty,
			UnitPrice:      roundNull(li.UnitPrice),
			LineTotal:      roundNull(li.LineTotal),
		}
	}
	for _, d := range []decimal.NullDecimal{e.Subtotal, e.Tax, e.Tip, e.Total} {
		if d.Valid && d.Decimal.IsNegative() {
			return fmt.Errorf("%w: negative amount %s", ErrInvalidEdit, d.Decimal)
		}
	}

	if e.MerchantRaw != nil {
		r.MerchantRaw = *e.MerchantRaw
	}
	if e.PurchaseDate != nil {
		r.PurchaseDate = *e.PurchaseDate
	}
	r.Subtotal = pickDecimal(e.Subtotal, r.Subtotal)
	r.Tax = pickDecimal(e.Tax, r.Tax)
	r.Tip = pickDecimal(e.Tip, r.Tip)
	r.Total = pickDecimal(e.Total, r.Total)
	r.LineItems = items
	return nil
}

func pickDecimal(parsed, previous decimal.NullDecimal) decimal.NullDecimal {
	if parsed.Valid {
		return roundNull(parsed)
	}
	return previous
}

func roundNull(d decimal.NullDecimal) decimal.NullDecimal {
	if !d.Valid {
		return d
	}
	return decimal.NewNullDecimal(d.Decimal.Round(2))
}
