package models

import "github.com/shopspring/decimal"

// Participant is one person sharing a receipt in a single split run.
// IDs are opaque and only need to be unique within the run.
type Participant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Assignment maps a line-item ID to the participant IDs sharing that item.
type Assignment map[string][]string

// SplitMeta explains how an allocation was derived. All amounts are in the
// receipt currency with two fractional digits.
type SplitMeta struct {
	ItemsSum         decimal.Decimal `json:"itemsSum"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Tax              decimal.Decimal `json:"tax"`
	Tip              decimal.Decimal `json:"tip"`
	Total            decimal.Decimal `json:"total"`
	PreTaxTarget     decimal.Decimal `json:"preTaxTarget"`
	Scaled           bool            `json:"scaled"`
	InferredDiscount decimal.Decimal `json:"inferredDiscount"`
}

// Split is a persisted snapshot of a computed allocation.
// Snapshots are immutable; recomputing creates a new one with a new share token.
type Split struct {
	// ID is the unique identifier for the split (UUID format).
	ID string `json:"id"`

	ReceiptID string `json:"receiptId"`

	// CreatedBy is the user ID who saved the split.
	CreatedBy string `json:"createdBy"`

	// ShareToken is the random hex token used in public share links.
	ShareToken string `json:"shareToken"`

	Participants       []Participant `json:"participants"`
	Assignment         Assignment    `json:"assign"`
	ProportionalTaxTip bool          `json:"propTaxTip"`

	// Totals holds each participant's final amount keyed by participant ID.
	Totals map[string]decimal.Decimal `json:"totals"`

	Meta SplitMeta `json:"meta"`

	// CreatedAt is the Unix timestamp when the snapshot was saved.
	CreatedAt int64 `json:"createdAt"`
}
