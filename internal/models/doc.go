// Package models defines the core domain records for receiptsplit.
//
// # Records
//
//   - ParsedReceipt: flat, typed output of OCR field extraction
//   - LineItem: one purchased line as extracted (or edited) on a receipt
//   - Receipt: persisted receipt, seeded from a ParsedReceipt
//   - Participant / Assignment: who shares which line item in one split run
//   - Split: persisted snapshot of a computed allocation with a share token
//
// # Money
//
// Monetary fields are decimal.Decimal values (decimal.NullDecimal when the
// value may be absent). Conversion to integer cents happens only inside the
// calculator package, once per value.
//
// # Relationships
//
// Records reference each other through ID strings rather than pointers.
// Participants are opaque IDs supplied by the caller; they are not user accounts.
package models
