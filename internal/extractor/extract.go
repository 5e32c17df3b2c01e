package extractor

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/receiptsplit/internal/models"
)

// accumulator carries running state for a single extraction pass.
type accumulator struct {
	merchant string
	date     string
	subtotal decimal.NullDecimal
	total    decimal.NullDecimal
	tip      decimal.NullDecimal
	taxSum   decimal.Decimal
	savings  decimal.NullDecimal
	freeText []string
}

// summaryRule applies a summary field to the accumulator when its type
// contains any of the keywords. Every rule is evaluated for every field, so
// one field can feed several categories (a SUBTOTAL also matches TOTAL).
type summaryRule struct {
	keywords []string
	apply    func(acc *accumulator, f Field)
}

// Per-category policies are tuned to OCR noise and intentionally differ:
// merchant first-wins, totals last-wins, tax sums, discounts take the maximum.
var summaryRules = []summaryRule{
	{
		keywords: []string{"VENDOR", "MERCHANT", "SUPPLIER", "RESTAURANT", "STORE"},
		apply: func(acc *accumulator, f Field) {
			if acc.merchant == "" {
				acc.merchant = f.ValueText
			}
		},
	},
	{
		keywords: []string{"DATE"},
		apply: func(acc *accumulator, f Field) {
			if f.ValueText != "" {
				acc.date = f.ValueText
			}
		},
	},
	{
		keywords: []string{"SUBTOTAL"},
		apply: func(acc *accumulator, f Field) {
			if v, ok := LastMoney(f.ValueText); ok {
				acc.subtotal = decimal.NewNullDecimal(v)
			}
		},
	},
	{
		keywords: []string{"TOTAL"},
		apply: func(acc *accumulator, f Field) {
			if v, ok := LastMoney(f.ValueText); ok {
				acc.total = decimal.NewNullDecimal(v)
			}
		},
	},
	{
		keywords: []string{"TAX"},
		apply: func(acc *accumulator, f Field) {
			if v, ok := LastMoney(f.ValueText); ok {
				acc.taxSum = acc.taxSum.Add(v)
			}
		},
	},
	{
		keywords: []string{"TIP"},
		apply: func(acc *accumulator, f Field) {
			if v, ok := LastMoney(f.ValueText); ok {
				acc.tip = decimal.NewNullDecimal(v)
			}
		},
	},
	{
		keywords: []string{"DISCOUNT", "SAVINGS", "PROMO", "COUPON"},
		apply: func(acc *accumulator, f Field) {
			if v, ok := LastMoney(f.ValueText); ok {
				acc.observeDiscount(v)
			}
		},
	},
}

// Free-text lines mentioning any of these words together with an amount are
// treated as store-wide savings.
var discountWords = []string{"OFF", "COUPON", "SAVE", "SAVINGS", "PROMO"}

// Extract flattens a document-analysis result into a ParsedReceipt.
// Documents and fields are visited in order; it never fails.
func Extract(res AnalysisResult) models.ParsedReceipt {
	acc := &accumulator{}

	for _, doc := range res.Documents {
		for _, f := range doc.SummaryFields {
			typ := strings.ToUpper(f.Type)
			for _, rule := range summaryRules {
				if containsAny(typ, rule.keywords...) {
					rule.apply(acc, f)
				}
			}
			if f.ValueText != "" {
				acc.freeText = append(acc.freeText, f.ValueText)
			}
		}
		for _, g := range doc.LineItemGroups {
			for _, it := range g.Items {
				for _, f := range it.Fields {
					if f.ValueText != "" {
						acc.freeText = append(acc.freeText, f.ValueText)
					}
				}
			}
		}
	}

	acc.scanFreeText()

	parsed := models.ParsedReceipt{
		Subtotal:  acc.subtotal,
		Tip:       acc.tip,
		Total:     acc.total,
		Savings:   acc.savings,
		LineItems: lineItems(res),
	}
	if acc.merchant != "" {
		parsed.MerchantRaw = &acc.merchant
	}
	if acc.date != "" {
		parsed.PurchaseDate = &acc.date
	}
	if !acc.taxSum.IsZero() {
		parsed.Tax = decimal.NewNullDecimal(acc.taxSum)
	}
	return parsed
}

// scanFreeText runs the fallback scans over every collected value.
// Tax lines are only summed when typed fields produced no tax; the discount
// scan always runs, so a typed discount echoed in free text is folded into
// the same maximum.
func (acc *accumulator) scanFreeText() {
	if acc.taxSum.IsZero() {
		for _, raw := range acc.freeText {
			line := strings.ToUpper(raw)
			if !strings.Contains(line, "TAX") {
				continue
			}
			if v, ok := LastMoney(line); ok {
				acc.taxSum = acc.taxSum.Add(v)
			}
		}
	}

	for _, raw := range acc.freeText {
		line := strings.ToUpper(raw)
		if !containsAny(line, discountWords...) {
			continue
		}
		if v, ok := LastMoney(line); ok {
			acc.observeDiscount(v)
		}
	}
}

// observeDiscount keeps the running maximum; the same discount is often
// detected more than once.
func (acc *accumulator) observeDiscount(v decimal.Decimal) {
	if !acc.savings.Valid || v.GreaterThan(acc.savings.Decimal) {
		acc.savings = decimal.NewNullDecimal(v)
	}
}
