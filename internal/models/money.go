package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money marshals a decimal as a JSON string with exactly two fractional
// digits. Records use it to render their amounts; arithmetic stays on
// decimal.Decimal.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(decimal.Decimal(m).StringFixed(2))
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return (*decimal.Decimal)(m).UnmarshalJSON(data)
}

// Decimal returns the amount for arithmetic.
func (m Money) Decimal() decimal.Decimal { return decimal.Decimal(m) }

// NullMoney is Money that marshals to null when the amount is absent.
type NullMoney decimal.NullDecimal

func (m NullMoney) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return Money(m.Decimal).MarshalJSON()
}

// MoneyMap converts per-participant amounts for rendering.
func MoneyMap(amounts map[string]decimal.Decimal) map[string]Money {
	if amounts == nil {
		return nil
	}
	out := make(map[string]Money, len(amounts))
	for k, v := range amounts {
		out[k] = Money(v)
	}
	return out
}

func (li LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		UnitPrice NullMoney `json:"unitPrice"`
		LineTotal NullMoney `json:"lineTotal"`
	}{plain(li), NullMoney(li.UnitPrice), NullMoney(li.LineTotal)})
}

func (p ParsedReceipt) MarshalJSON() ([]byte, error) {
	type plain ParsedReceipt
	return json.Marshal(struct {
		plain
		Subtotal NullMoney `json:"subtotal"`
		Tax      NullMoney `json:"tax"`
		Tip      NullMoney `json:"tip"`
		Total    NullMoney `json:"total"`
		Savings  NullMoney `json:"savings"`
	}{
		plain(p),
		NullMoney(p.Subtotal), NullMoney(p.Tax), NullMoney(p.Tip),
		NullMoney(p.Total), NullMoney(p.Savings),
	})
}

func (m SplitMeta) MarshalJSON() ([]byte, error) {
	type plain SplitMeta
	return json.Marshal(struct {
		plain
		ItemsSum         Money `json:"itemsSum"`
		Subtotal         Money `json:"subtotal"`
		Tax              Money `json:"tax"`
		Tip              Money `json:"tip"`
		Total            Money `json:"total"`
		PreTaxTarget     Money `json:"preTaxTarget"`
		InferredDiscount Money `json:"inferredDiscount"`
	}{
		plain(m),
		Money(m.ItemsSum), Money(m.Subtotal), Money(m.Tax), Money(m.Tip),
		Money(m.Total), Money(m.PreTaxTarget), Money(m.InferredDiscount),
	})
}

func (s Split) MarshalJSON() ([]byte, error) {
	type plain Split
	return json.Marshal(struct {
		plain
		Totals map[string]Money `json:"totals"`
	}{plain(s), MoneyMap(s.Totals)})
}
