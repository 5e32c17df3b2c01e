package extractor

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/receiptsplit/internal/models"
)

func field(typ, value string) Field {
	return Field{Type: typ, ValueText: value}
}

func labelled(label, value string) Field {
	return Field{Type: "OTHER", Label: label, ValueText: value}
}

func summary(fields ...Field) AnalysisResult {
	return AnalysisResult{Documents: []Document{{SummaryFields: fields}}}
}

func withItems(res AnalysisResult, items ...[]Field) AnalysisResult {
	group := LineItemGroup{}
	for _, fields := range items {
		group.Items = append(group.Items, LineItemFields{Fields: fields})
	}
	if len(res.Documents) == 0 {
		res.Documents = []Document{{}}
	}
	res.Documents[0].LineItemGroups = append(res.Documents[0].LineItemGroups, group)
	return res
}

// fixed renders an optional amount for comparison; absent renders as "".
func fixed(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func TestExtract_GroceryReceipt(t *testing.T) {
	res := withItems(
		summary(
			field("VENDOR_NAME", "Trader Joe's"),
			field("INVOICE_RECEIPT_DATE", "03/14/2024"),
			field("SUBTOTAL", "$10.00"),
			field("TAX", "$0.80"),
			field("TOTAL", "$10.80"),
		),
		[]Field{
			field("ITEM", "MILK"),
			field("QUANTITY", "2"),
			field("UNIT_PRICE", "1.50"),
			field("AMOUNT", "3.00"),
		},
		[]Field{
			labelled("Description", "Sourdough"),
			labelled("Total", "$7.00"),
		},
		[]Field{
			field("EXPENSE_ROW", "CHIPS 2.99"),
		},
	)

	got := Extract(res)

	require.NotNil(t, got.MerchantRaw)
	assert.Equal(t, "Trader Joe's", *got.MerchantRaw)
	require.NotNil(t, got.PurchaseDate)
	assert.Equal(t, "03/14/2024", *got.PurchaseDate)
	assert.Equal(t, "10.00", fixed(got.Subtotal))
	assert.Equal(t, "0.80", fixed(got.Tax))
	assert.Equal(t, "10.80", fixed(got.Total))
	assert.Equal(t, "", fixed(got.Tip))
	assert.Equal(t, "", fixed(got.Savings))

	require.Len(t, got.LineItems, 3)

	milk := got.LineItems[0]
	assert.Equal(t, "MILK", milk.DescriptionRaw)
	require.NotNil(t, milk.Qty)
	assert.Equal(t, 2, *milk.Qty)
	assert.Equal(t, "1.50", fixed(milk.UnitPrice))
	assert.Equal(t, "3.00", fixed(milk.LineTotal))

	bread := got.LineItems[1]
	assert.Equal(t, "Sourdough", bread.DescriptionRaw)
	assert.Nil(t, bread.Qty)
	assert.Equal(t, "", fixed(bread.UnitPrice))
	assert.Equal(t, "7.00", fixed(bread.LineTotal))

	chips := got.LineItems[2]
	assert.Equal(t, "CHIPS 2.99", chips.DescriptionRaw)
	assert.Equal(t, "", fixed(chips.LineTotal))
}

func TestExtract_SummaryFields(t *testing.T) {
	tests := []struct {
		name         string
		in           AnalysisResult
		validateFunc func(t *testing.T, got models.ParsedReceipt)
	}{
		{
			name: "first merchant wins and empty values are skipped",
			in: summary(
				field("VENDOR_NAME", ""),
				field("merchant_name", "Blue Bottle"),
				field("STORE_NAME", "Other Store"),
			),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				require.NotNil(t, got.MerchantRaw)
				assert.Equal(t, "Blue Bottle", *got.MerchantRaw)
			},
		},
		{
			name: "last non-empty date wins",
			in: summary(
				field("INVOICE_RECEIPT_DATE", "01/01/2024"),
				field("ORDER_DATE", "01/02/2024"),
				field("DUE_DATE", ""),
			),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				require.NotNil(t, got.PurchaseDate)
				assert.Equal(t, "01/02/2024", *got.PurchaseDate)
			},
		},
		{
			name: "subtotal field also sets total",
			in:   summary(field("SUBTOTAL", "$12.50")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "12.50", fixed(got.Subtotal))
				assert.Equal(t, "12.50", fixed(got.Total))
			},
		},
		{
			name: "subtotal after total overwrites total",
			in:   summary(field("TOTAL", "$13.00"), field("SUBTOTAL", "$12.00")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "12.00", fixed(got.Subtotal))
				assert.Equal(t, "12.00", fixed(got.Total))
			},
		},
		{
			name: "last money on a noisy line",
			in:   summary(field("TOTAL", "2 x 1.99 = $3.98")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "3.98", fixed(got.Total))
			},
		},
		{
			name: "total without a money amount is ignored",
			in:   summary(field("TOTAL", "see below")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.False(t, got.Total.Valid)
			},
		},
		{
			name: "tip last wins",
			in:   summary(field("TIP", "$1.00"), field("TIP", "$2.50")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "2.50", fixed(got.Tip))
			},
		},
		{
			name: "typed tax fields are summed",
			in:   summary(field("TAX", "STATE TAX: $1.20"), field("TAX", "CITY TAX: $0.30")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "1.50", fixed(got.Tax))
			},
		},
		{
			name: "tax falls back to free text",
			in:   summary(field("OTHER", "STATE TAX: $1.20"), field("OTHER", "City tax: $0.30")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "1.50", fixed(got.Tax))
			},
		},
		{
			name: "tax fallback reads line item text",
			in: withItems(summary(field("TOTAL", "$5.45")),
				[]Field{field("EXPENSE_ROW", "SALES TAX 0.45")},
			),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "0.45", fixed(got.Tax))
			},
		},
		{
			name: "typed tax suppresses the fallback scan",
			in:   summary(field("TAX", "$1.00"), field("OTHER", "STATE TAX $2.00")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "1.00", fixed(got.Tax))
			},
		},
		{
			// A zero typed tax counts as nothing found, so its own text is
			// scanned again; "TAX $0.00" contributes nothing either way.
			name: "zero tax is reported as absent",
			in:   summary(field("TAX", "TAX $0.00")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.False(t, got.Tax.Valid)
			},
		},
		{
			// A typed tax field without an amount leaves the fallback on.
			name: "typed tax without amount still scans free text",
			in:   summary(field("TAX", "n/a"), field("OTHER", "TAX 0.99")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "0.99", fixed(got.Tax))
			},
		},
		{
			name: "discounts keep the maximum across typed and free text",
			in: withItems(
				summary(field("DISCOUNT", "$2.00"), field("PROMO_CODE", "$1.00")),
				[]Field{field("EXPENSE_ROW", "COUPON SAVINGS 3.50")},
			),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "3.50", fixed(got.Savings))
			},
		},
		{
			name: "discount echoed in free text is not counted twice",
			in:   summary(field("DISCOUNT", "$2.00 OFF")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.Equal(t, "2.00", fixed(got.Savings))
			},
		},
		{
			name: "discount word without an amount is ignored",
			in:   summary(field("OTHER", "Save the receipt")),
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				assert.False(t, got.Savings.Valid)
			},
		},
		{
			name: "fields across documents are merged in order",
			in: AnalysisResult{Documents: []Document{
				{SummaryFields: []Field{field("VENDOR_NAME", "First"), field("TAX", "$1.00")}},
				{SummaryFields: []Field{field("VENDOR_NAME", "Second"), field("TAX", "$0.50")}},
			}},
			validateFunc: func(t *testing.T, got models.ParsedReceipt) {
				require.NotNil(t, got.MerchantRaw)
				assert.Equal(t, "First", *got.MerchantRaw)
				assert.Equal(t, "1.50", fixed(got.Tax))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, Extract(tt.in))
		})
	}
}

func TestExtract_LineItems(t *testing.T) {
	tests := []struct {
		name     string
		fields   []Field
		wantDesc string
		wantQty  *int
		wantUnit string
		wantLine string
	}{
		{
			name:     "item without fields is kept",
			wantDesc: "",
		},
		{
			name:     "description label beats concatenation",
			fields:   []Field{labelled("Item description", "Eggs"), field("OTHER", "12")},
			wantDesc: "Eggs",
		},
		{
			name:     "typed item beats description label",
			fields:   []Field{labelled("Description", "ignored"), field("ITEM", "Coffee")},
			wantDesc: "Coffee",
		},
		{
			name:     "whole quantity with noise",
			fields:   []Field{field("QUANTITY", "x3")},
			wantDesc: "x3",
			wantQty:  intPtr(3),
		},
		{
			name:     "quantity from label",
			fields:   []Field{field("ITEM", "Tea"), labelled("Qty", "4")},
			wantDesc: "Tea",
			wantQty:  intPtr(4),
		},
		{
			name:     "fractional quantity is dropped",
			fields:   []Field{field("ITEM", "Apples"), field("QUANTITY", "1.5")},
			wantDesc: "Apples",
		},
		{
			name:     "zero quantity is dropped",
			fields:   []Field{field("ITEM", "Bag"), field("QUANTITY", "0")},
			wantDesc: "Bag",
		},
		{
			name:     "unit price from label",
			fields:   []Field{field("ITEM", "Gum"), labelled("Unit", "$0.99")},
			wantDesc: "Gum",
			wantUnit: "0.99",
		},
		{
			name:     "amount type beats total type",
			fields:   []Field{field("ITEM", "Wine"), field("TOTAL", "20.00"), field("AMOUNT", "18.00")},
			wantDesc: "Wine",
			wantLine: "18.00",
		},
		{
			name:     "total type beats amount label",
			fields:   []Field{field("ITEM", "Beer"), labelled("Amount", "6.00"), field("LINE_TOTAL", "5.00")},
			wantDesc: "Beer",
			wantLine: "5.00",
		},
		{
			name:     "thousands separators are stripped",
			fields:   []Field{field("ITEM", "TV"), field("AMOUNT", "$1,299.00")},
			wantDesc: "TV",
			wantLine: "1299.00",
		},
		{
			name:     "malformed number is absent",
			fields:   []Field{field("ITEM", "Thing"), field("AMOUNT", "1.2.3")},
			wantDesc: "Thing",
		},
		{
			name:     "matching field without a value falls through",
			fields:   []Field{field("ITEM", ""), labelled("Description", "Bagel")},
			wantDesc: "Bagel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(withItems(AnalysisResult{}, tt.fields))
			require.Len(t, got.LineItems, 1)
			li := got.LineItems[0]
			assert.Equal(t, tt.wantDesc, li.DescriptionRaw)
			assert.Equal(t, tt.wantQty, li.Qty)
			assert.Equal(t, tt.wantUnit, fixed(li.UnitPrice))
			assert.Equal(t, tt.wantLine, fixed(li.LineTotal))
		})
	}
}

func TestExtract_Empty(t *testing.T) {
	for name, in := range map[string]AnalysisResult{
		"zero value":      {},
		"empty documents": {Documents: []Document{{}, {}}},
		"empty groups":    {Documents: []Document{{LineItemGroups: []LineItemGroup{{}}}}},
	} {
		t.Run(name, func(t *testing.T) {
			got := Extract(in)
			assert.Nil(t, got.MerchantRaw)
			assert.Nil(t, got.PurchaseDate)
			assert.False(t, got.Subtotal.Valid)
			assert.False(t, got.Tax.Valid)
			assert.False(t, got.Tip.Valid)
			assert.False(t, got.Total.Valid)
			assert.False(t, got.Savings.Valid)
			assert.NotNil(t, got.LineItems)
			assert.Empty(t, got.LineItems)
		})
	}
}

func intPtr(v int) *int { return &v }
