package calculator

import "github.com/shopspring/decimal"

// MaxCents bounds the magnitude of every amount Allocate accepts, in cents.
// Sums of a receipt's amounts then stay far inside int64.
const MaxCents int64 = 1_000_000_000_000_000

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.New(MaxCents, -2)
)

// inRange reports whether d converts to cents without exceeding MaxCents.
func inRange(d decimal.Decimal) bool {
	return d.Abs().LessThan(maxAmount)
}

// ToCents converts a decimal amount to integer minor units, rounding half away
// from zero to the nearest cent. It is the only rounding point for inputs.
// Amounts at or beyond MaxCents do not fit; Allocate rejects them up front.
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromCents renders integer minor units back to a decimal with two fractional digits.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// centsOr converts an optional amount, returning fallback when it is absent.
func centsOr(d decimal.NullDecimal, fallback int64) int64 {
	if !d.Valid {
		return fallback
	}
	return ToCents(d.Decimal)
}
