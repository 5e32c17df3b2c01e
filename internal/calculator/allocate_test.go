package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/receiptsplit/internal/models"
)

func amt(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func item(id, lineTotal string) models.LineItem {
	return models.LineItem{ID: id, DescriptionRaw: id, LineTotal: amt(lineTotal)}
}

func people(ids ...string) []models.Participant {
	out := make([]models.Participant, len(ids))
	for i, id := range ids {
		out[i] = models.Participant{ID: id, Name: id}
	}
	return out
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		in           AllocationInput
		want         map[string]int64
		validateFunc func(t *testing.T, a *Allocation)
	}{
		{
			name: "milk shared by two with proportional tax",
			in: AllocationInput{
				LineItems:          []models.LineItem{item("milk", "3.00")},
				Tax:                amt("0.24"),
				Tip:                amt("0"),
				Total:              amt("3.24"),
				Participants:       people("A", "B"),
				Assignment:         models.Assignment{"milk": {"A", "B"}},
				ProportionalTaxTip: true,
			},
			want: map[string]int64{"A": 162, "B": 162},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.False(t, a.Meta.Scaled)
				assert.Equal(t, int64(0), a.Meta.InferredDiscount)
				assert.Equal(t, int64(12), a.Shares[0].Tax)
				assert.Equal(t, int64(0), a.Shares[0].Adjustment)
			},
		},
		{
			name: "inferred store discount scales items down",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("shoes", "60.00"), item("socks", "50.00")},
				Tax:          amt("0"),
				Tip:          amt("0"),
				Total:        amt("100.00"),
				Participants: people("A", "B"),
				Assignment:   models.Assignment{"shoes": {"A"}, "socks": {"B"}},
			},
			want: map[string]int64{"A": 5455, "B": 4545},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.True(t, a.Meta.Scaled)
				assert.Equal(t, int64(11000), a.Meta.ItemsSum)
				assert.Equal(t, int64(10000), a.Meta.PreTaxTarget)
				assert.Equal(t, "10.00", a.Meta.Decimal().InferredDiscount.StringFixed(2))
			},
		},
		{
			name: "three way split of ten dollars",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("pizza", "10.00")},
				Participants: people("A", "B", "C"),
				Assignment:   models.Assignment{"pizza": {"A", "B", "C"}},
			},
			want: map[string]int64{"A": 334, "B": 333, "C": 333},
		},
		{
			name: "unassigned item falls back to first participant",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("bread", "5.00")},
				Participants: people("A", "B"),
			},
			want: map[string]int64{"A": 500, "B": 0},
		},
		{
			name: "unknown assignees are ignored",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("bread", "5.00")},
				Participants: people("A", "B"),
				Assignment:   models.Assignment{"bread": {"Z"}},
			},
			want: map[string]int64{"A": 500, "B": 0},
		},
		{
			name: "tax left to reconciliation when not proportional",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("steak", "10.00"), item("salad", "5.00")},
				Tax:          amt("1.50"),
				Total:        amt("16.50"),
				Participants: people("A", "B"),
				Assignment:   models.Assignment{"steak": {"A"}, "salad": {"B"}},
			},
			want: map[string]int64{"A": 1075, "B": 575},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, int64(75), a.Shares[0].Adjustment)
				assert.Equal(t, int64(0), a.Shares[0].Tax)
			},
		},
		{
			name: "tax and tip spread by item spend",
			in: AllocationInput{
				LineItems:          []models.LineItem{item("steak", "10.00"), item("salad", "5.00")},
				Tax:                amt("1.50"),
				Tip:                amt("3.00"),
				Total:              amt("19.50"),
				Participants:       people("A", "B"),
				Assignment:         models.Assignment{"steak": {"A"}, "salad": {"B"}},
				ProportionalTaxTip: true,
			},
			want: map[string]int64{"A": 1300, "B": 650},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, Share{ParticipantID: "A", Items: 1000, Tax: 100, Tip: 200, Total: 1300}, a.Shares[0])
			},
		},
		{
			name: "missing total falls back to items plus surcharges",
			in: AllocationInput{
				LineItems:          []models.LineItem{item("a", "4.00"), item("b", "2.00")},
				Tax:                amt("0.60"),
				Participants:       people("A", "B"),
				Assignment:         models.Assignment{"a": {"A"}, "b": {"B"}},
				ProportionalTaxTip: true,
			},
			want: map[string]int64{"A": 440, "B": 220},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Equal(t, int64(660), a.Meta.Total)
				assert.Equal(t, int64(600), a.Meta.Subtotal)
			},
		},
		{
			name: "recorded subtotal feeds the fallback total",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("a", "4.00")},
				Subtotal:     amt("5.00"),
				Total:        amt("0.00"),
				Participants: people("A"),
			},
			want: map[string]int64{"A": 500},
		},
		{
			name: "no line items leaves everything to reconciliation",
			in: AllocationInput{
				Tax:                amt("1.00"),
				Total:              amt("1.00"),
				Participants:       people("A", "B"),
				ProportionalTaxTip: true,
			},
			want: map[string]int64{"A": 50, "B": 50},
		},
		{
			name: "quantity times unit price rounds once",
			in: AllocationInput{
				LineItems: []models.LineItem{{
					ID:        "gum",
					Qty:       ptr(3),
					UnitPrice: amt("0.333"),
				}},
				Participants: people("A"),
			},
			want: map[string]int64{"A": 100},
		},
		{
			name: "negative line total counts as zero",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("coupon", "-2.00"), item("tea", "3.00")},
				Participants: people("A"),
			},
			want: map[string]int64{"A": 300},
		},
		{
			name: "odd cents are not biased across items",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("x", "0.01"), item("y", "0.01"), item("z", "0.01")},
				Participants: people("A", "B", "C"),
				Assignment: models.Assignment{
					"x": {"A", "B", "C"},
					"y": {"A", "B", "C"},
					"z": {"A", "B", "C"},
				},
			},
			want: map[string]int64{"A": 1, "B": 1, "C": 1},
		},
		{
			name: "one cent over the total is taken back from the top spender",
			in: AllocationInput{
				LineItems:    []models.LineItem{item("a", "60.01"), item("b", "40.00")},
				Total:        amt("100.00"),
				Participants: people("A", "B"),
				Assignment:   models.Assignment{"a": {"A"}, "b": {"B"}},
			},
			want: map[string]int64{"A": 6000, "B": 4000},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.False(t, a.Meta.Scaled)
				assert.Equal(t, int64(-1), a.Shares[0].Adjustment)
			},
		},
		{
			name: "zero participants",
			in: AllocationInput{
				LineItems: []models.LineItem{item("a", "1.00")},
				Total:     amt("1.00"),
			},
			want: map[string]int64{},
			validateFunc: func(t *testing.T, a *Allocation) {
				assert.Empty(t, a.Shares)
				assert.Equal(t, int64(100), a.Meta.Total)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Allocate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.PerParticipant)
			if len(tt.in.Participants) > 0 {
				var total int64
				for _, c := range got.PerParticipant {
					total += c
				}
				assert.Equal(t, got.Meta.Total, total, "allocation must sum to the total")
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, got)
			}
		})
	}
}

func TestAllocate_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   AllocationInput
	}{
		{"negative total", AllocationInput{Total: amt("-1.00"), Participants: people("A")}},
		{"negative tax", AllocationInput{Tax: amt("-0.10"), Participants: people("A")}},
		{"unknown line item", AllocationInput{
			LineItems:    []models.LineItem{item("a", "1.00")},
			Participants: people("A"),
			Assignment:   models.Assignment{"b": {"A"}},
		}},
		{"duplicate participant", AllocationInput{Participants: people("A", "A")}},
		{"empty participant id", AllocationInput{Participants: people("")}},
		{"total out of range", AllocationInput{Total: amt("10000000000000.00"), Participants: people("A")}},
		{"line item out of range", AllocationInput{
			LineItems:    []models.LineItem{item("a", "100000000000000000")},
			Total:        amt("100000000000000000"),
			Participants: people("A", "B"),
		}},
		{"quantity pushes item out of range", AllocationInput{
			LineItems:    []models.LineItem{{ID: "a", Qty: ptr(1_000_000_000), UnitPrice: amt("100000.00")}},
			Participants: people("A"),
		}},
		{"line items sum out of range", AllocationInput{
			LineItems:    []models.LineItem{item("a", "6000000000000.00"), item("b", "6000000000000.00")},
			Participants: people("A"),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestAllocate_SumInvariant(t *testing.T) {
	items := []models.LineItem{
		item("a", "12.99"), item("b", "0.01"), item("c", "7.33"),
		{ID: "d", Qty: ptr(4), UnitPrice: amt("1.17")},
		{ID: "e", DescriptionRaw: "no price"},
	}
	assignments := []models.Assignment{
		nil,
		{"a": {"A", "B", "C"}, "c": {"C"}},
		{"a": {"B"}, "b": {"B", "C"}, "c": {"A", "C"}, "d": {"A", "B", "C"}, "e": {"A"}},
	}
	totals := []decimal.NullDecimal{{}, amt("0"), amt("20.00"), amt("29.79"), amt("41.17"), amt("100.00")}

	for _, assign := range assignments {
		for _, total := range totals {
			for _, prop := range []bool{false, true} {
				in := AllocationInput{
					LineItems:          items,
					Tax:                amt("2.41"),
					Tip:                amt("3.05"),
					Total:              total,
					Participants:       people("A", "B", "C"),
					Assignment:         assign,
					ProportionalTaxTip: prop,
				}
				got, err := Allocate(in)
				require.NoError(t, err)

				var s int64
				for _, sh := range got.Shares {
					s += sh.Total
				}
				require.Equal(t, got.Meta.Total, s, "assign=%v total=%v prop=%v", assign, total, prop)

				again, err := Allocate(in)
				require.NoError(t, err)
				require.Equal(t, got, again, "allocation must be deterministic")
			}
		}
	}
}

func TestToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"3.24", 324},
		{"0.005", 1},
		{"1.004", 100},
		{"110", 11000},
		{"-0.015", -2},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCents(decimal.RequireFromString(tt.in)))
		})
	}
	assert.Equal(t, "1.62", FromCents(162).StringFixed(2))
}

func TestAllocate_LargeTotal(t *testing.T) {
	got, err := Allocate(AllocationInput{
		Total:        amt("20000000.01"),
		Participants: people("A", "B"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1_000_000_001), got.PerParticipant["A"])
	assert.Equal(t, int64(1_000_000_000), got.PerParticipant["B"])

	got, err = Allocate(AllocationInput{
		LineItems:    []models.LineItem{item("a", "9999999999999.99")},
		Participants: people("A", "B", "C"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(MaxCents-1), got.PerParticipant["A"])
}

func TestAllocate_EvenSplitTieGoesByInputOrder(t *testing.T) {
	got, err := Allocate(AllocationInput{
		LineItems:    []models.LineItem{item("a", "10.00")},
		Participants: people("A", "B", "C"),
		Assignment:   models.Assignment{"a": {"C", "A", "B"}},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{"A": 334, "B": 333, "C": 333}, got.PerParticipant,
		"the odd cent follows participant order, not assignee order")
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name  string
		delta int64
		spend []int64
		want  []int64
	}{
		{"nothing to move", 0, []int64{1, 2}, []int64{0, 0}},
		{"biggest spender first", 1, []int64{5, 9, 7}, []int64{0, 1, 0}},
		{"cycles in spend order", 5, []int64{5, 9, 7}, []int64{1, 2, 2}},
		{"ties keep input order", 1, []int64{3, 3}, []int64{1, 0}},
		{"negative delta", -4, []int64{5, 9, 7}, []int64{-1, -2, -1}},
		{"large delta", 1_000_000_000_001, []int64{5, 7, 7}, []int64{333_333_333_333, 333_333_333_334, 333_333_333_334}},
		{"no participants", 3, nil, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcile(tt.delta, tt.spend))
		})
	}
}

func ptr[T any](v T) *T { return &v }
