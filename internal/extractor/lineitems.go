package extractor

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/receiptsplit/internal/models"
)

// fieldMatcher reports whether a line-item field carries a given attribute.
type fieldMatcher func(Field) bool

func typeContains(keyword string) fieldMatcher {
	return func(f Field) bool {
		return strings.Contains(strings.ToUpper(f.Type), keyword)
	}
}

func labelContains(keyword string) fieldMatcher {
	return func(f Field) bool {
		return strings.Contains(strings.ToUpper(f.Label), keyword)
	}
}

// Matchers are tried in order; the first field matching the earliest matcher
// wins. Typed matches beat label matches.
var (
	descriptionRules = []fieldMatcher{typeContains("ITEM"), labelContains("DESCRIPTION")}
	quantityRules    = []fieldMatcher{typeContains("QUANTITY"), labelContains("QTY")}
	unitPriceRules   = []fieldMatcher{typeContains("PRICE"), labelContains("UNIT")}
	lineTotalRules   = []fieldMatcher{
		typeContains("AMOUNT"),
		typeContains("TOTAL"),
		labelContains("AMOUNT"),
		labelContains("TOTAL"),
	}
)

// firstValue returns the value of the first field accepted by rules.
// Fields without a value never match.
func firstValue(fields []Field, rules []fieldMatcher) (string, bool) {
	for _, rule := range rules {
		for _, f := range fields {
			if f.ValueText != "" && rule(f) {
				return f.ValueText, true
			}
		}
	}
	return "", false
}

// lineItems builds one LineItem per detected item, in document order.
// Items are kept even when every attribute is missing so that the user can
// fill them in.
func lineItems(res AnalysisResult) []models.LineItem {
	items := []models.LineItem{}
	for _, doc := range res.Documents {
		for _, g := range doc.LineItemGroups {
			for _, it := range g.Items {
				items = append(items, lineItem(it.Fields))
			}
		}
	}
	return items
}

func lineItem(fields []Field) models.LineItem {
	var li models.LineItem

	if desc, ok := firstValue(fields, descriptionRules); ok {
		li.DescriptionRaw = desc
	} else {
		li.DescriptionRaw = joinValues(fields)
	}

	if raw, ok := firstValue(fields, quantityRules); ok {
		if n, ok := ParseNumber(raw); ok && n.IsPositive() && n.IsInteger() {
			qty := int(n.IntPart())
			li.Qty = &qty
		}
	}

	li.UnitPrice = parseAmount(fields, unitPriceRules)
	li.LineTotal = parseAmount(fields, lineTotalRules)
	return li
}

func parseAmount(fields []Field, rules []fieldMatcher) decimal.NullDecimal {
	raw, ok := firstValue(fields, rules)
	if !ok {
		return decimal.NullDecimal{}
	}
	d, ok := ParseNumber(raw)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func joinValues(fields []Field) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.ValueText != "" {
			parts = append(parts, f.ValueText)
		}
	}
	return strings.Join(parts, " ")
}
