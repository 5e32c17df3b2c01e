package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestLineItemAmount(t *testing.T) {
	two := 2
	tests := []struct {
		name string
		item LineItem
		want string
	}{
		{"line total wins", LineItem{Qty: &two, UnitPrice: dec("1.00"), LineTotal: dec("3.50")}, "3.5"},
		{"qty times unit price", LineItem{Qty: &two, UnitPrice: dec("1.25")}, "2.5"},
		{"unset qty defaults to one", LineItem{UnitPrice: dec("4.10")}, "4.1"},
		{"nothing usable", LineItem{DescriptionRaw: "BAG"}, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.item.Amount().Equal(decimal.RequireFromString(tt.want)), "got %s", tt.item.Amount())
		})
	}
}

func TestReceiptApplyParsed(t *testing.T) {
	merchant := "TRADER JOE'S"
	r := &Receipt{
		MerchantRaw: "old",
		Tip:         dec("2.00"),
		Total:       dec("9.99"),
		LineItems:   []LineItem{{ID: "stale", DescriptionRaw: "stale"}},
	}

	r.ApplyParsed(ParsedReceipt{
		MerchantRaw: &merchant,
		Total:       dec("12.345"),
		LineItems: []LineItem{
			{DescriptionRaw: "Milk", LineTotal: dec("3.00")},
		},
	})

	assert.Equal(t, merchant, r.MerchantRaw)
	assert.Equal(t, "", r.PurchaseDate)
	assert.Equal(t, "2", r.Tip.Decimal.String(), "absent tip keeps the stored value")
	assert.Equal(t, "12.35", r.Total.Decimal.StringFixed(2))
	require.Len(t, r.LineItems, 1)
	assert.Empty(t, r.LineItems[0].ID)
	require.NotNil(t, r.LineItems[0].Qty)
	assert.Equal(t, 1, *r.LineItems[0].Qty)
}

func TestReceiptApplyEdit(t *testing.T) {
	stored := func() *Receipt {
		three := 3
		return &Receipt{
			ID:          "r-1",
			MerchantRaw: "CORNER DEL1",
			Subtotal:    dec("10.00"),
			Tax:         dec("0.80"),
			LineItems: []LineItem{
				{ID: "li-1", DescriptionRaw: "Bagel", Qty: &three, UnitPrice: dec("1.50")},
				{ID: "li-2", DescriptionRaw: "Coffee"},
			},
		}
	}

	t.Run("overwrites listed fields", func(t *testing.T) {
		r := stored()
		merchant := "Corner Deli"
		err := r.ApplyEdit(ReceiptEdit{
			MerchantRaw: &merchant,
			Total:       dec("10.804"),
			LineItems: []LineItem{
				{ID: "li-2", DescriptionRaw: "Coffee", LineTotal: dec("5.5")},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "Corner Deli", r.MerchantRaw)
		assert.Equal(t, "10.00", r.Subtotal.Decimal.StringFixed(2), "absent totals are kept")
		assert.True(t, r.Total.Decimal.Equal(decimal.RequireFromString("10.80")), r.Total.Decimal.String())
		assert.Equal(t, "4.50", r.LineItems[0].Amount().StringFixed(2), "unlisted items are kept")
		assert.Equal(t, "5.5", r.LineItems[1].LineTotal.Decimal.String())
		assert.Equal(t, 1, *r.LineItems[1].Qty)
	})

	t.Run("listed item is replaced in full", func(t *testing.T) {
		r := stored()
		require.NoError(t, r.ApplyEdit(ReceiptEdit{
			LineItems: []LineItem{{ID: "li-1", DescriptionRaw: "Bagels", LineTotal: dec("4.00")}},
		}))
		li := r.LineItems[0]
		assert.Equal(t, "Bagels", li.DescriptionRaw)
		assert.Equal(t, 1, li.EffectiveQty())
		assert.False(t, li.UnitPrice.Valid)
		assert.Equal(t, "4.00", li.Amount().StringFixed(2))
	})

	rejected := []struct {
		name string
		edit ReceiptEdit
	}{
		{"unknown item", ReceiptEdit{LineItems: []LineItem{{ID: "li-9"}}}},
		{"missing item id", ReceiptEdit{LineItems: []LineItem{{DescriptionRaw: "x"}}}},
		{"zero qty", ReceiptEdit{LineItems: []LineItem{{ID: "li-1", Qty: new(int)}}}},
		{"negative price", ReceiptEdit{LineItems: []LineItem{{ID: "li-1", UnitPrice: dec("-1")}}}},
		{"negative total", ReceiptEdit{Total: dec("-0.01")}},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			r := stored()
			before := stored()
			err := r.ApplyEdit(tt.edit)
			assert.ErrorIs(t, err, ErrInvalidEdit)
			assert.Equal(t, before, r)
		})
	}
}
