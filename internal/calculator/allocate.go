package calculator

import (
	"math/big"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/mmynk/receiptsplit/internal/models"
)

// AllocationInput carries everything needed to allocate one receipt.
type AllocationInput struct {
	// LineItems in receipt order. Only items with an ID can be assigned.
	LineItems []models.LineItem

	// Recorded receipt amounts; any of them may be absent.
	Subtotal decimal.NullDecimal
	Tax      decimal.NullDecimal
	Tip      decimal.NullDecimal
	Total    decimal.NullDecimal

	// Participants in input order. The first one receives unassigned items.
	Participants []models.Participant

	Assignment models.Assignment

	// ProportionalTaxTip spreads tax and tip by item spend instead of leaving
	// them to reconciliation.
	ProportionalTaxTip bool
}

// Share is one participant's breakdown in cents.
type Share struct {
	ParticipantID string
	Items         int64
	Tax           int64
	Tip           int64
	Adjustment    int64 // reconciliation pennies, may be negative
	Total         int64
}

// Meta explains how an allocation was derived. Amounts are in cents.
type Meta struct {
	ItemsSum         int64
	Subtotal         int64
	Tax              int64
	Tip              int64
	Total            int64
	PreTaxTarget     int64
	Scaled           bool
	InferredDiscount int64
}

// Allocation is the exact per-participant result of Allocate.
type Allocation struct {
	// PerParticipant maps participant ID to cents and sums to Meta.Total
	// whenever at least one participant was supplied.
	PerParticipant map[string]int64

	// Shares holds the breakdown in participant input order.
	Shares []Share

	Meta Meta
}

// Allocate computes each participant's exact share of a receipt in cents.
//
// Algorithm:
//   - item amounts are converted to cents once (negative amounts count as zero)
//   - the authoritative total is the recorded total, or subtotal + tax + tip
//   - items exceeding total - tax - tip by more than a cent are scaled down to it
//   - each item is split evenly among its assignees (first participant if none),
//     accumulated exactly and integerised once with the largest-remainder method;
//     equal fractional cents are broken by participant input order, not by the
//     order of an item's assignees
//   - tax and tip are optionally spread in proportion to item spend
//   - leftover pennies are spread evenly over all participants and the
//     remainder goes one cent each to the biggest spenders, so the
//     allocation matches the total exactly
//
// Allocate is a pure function and safe for concurrent use.
func Allocate(in AllocationInput) (*Allocation, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	base := make([]int64, len(in.LineItems))
	var itemsSum int64
	for i, li := range in.LineItems {
		base[i] = max(0, ToCents(li.Amount()))
		itemsSum += base[i]
	}

	tax := centsOr(in.Tax, 0)
	tip := centsOr(in.Tip, 0)
	subtotal := centsOr(in.Subtotal, itemsSum)
	total := centsOr(in.Total, 0)
	if total == 0 {
		total = subtotal + tax + tip
	}

	preTaxTarget := max(0, total-tax-tip)
	scaled := itemsSum > preTaxTarget+1
	adjusted := base
	if scaled {
		adjusted = ScaleToTarget(base, preTaxTarget)
	}

	itemCents := allocateItems(in, adjusted)

	var itemsTotal int64
	for _, c := range itemCents {
		itemsTotal += c
	}

	n := len(in.Participants)
	taxCents := make([]int64, n)
	tipCents := make([]int64, n)
	if in.ProportionalTaxTip && itemsTotal > 0 {
		taxCents = ScaleToTarget(itemCents, tax)
		tipCents = ScaleToTarget(itemCents, tip)
	}

	var sum int64
	for i := range n {
		sum += itemCents[i] + taxCents[i] + tipCents[i]
	}
	adjust := reconcile(total-sum, itemCents)

	out := &Allocation{
		PerParticipant: make(map[string]int64, n),
		Shares:         make([]Share, n),
		Meta: Meta{
			ItemsSum:         itemsSum,
			Subtotal:         subtotal,
			Tax:              tax,
			Tip:              tip,
			Total:            total,
			PreTaxTarget:     preTaxTarget,
			Scaled:           scaled,
			InferredDiscount: max(0, itemsSum-preTaxTarget),
		},
	}
	for i, p := range in.Participants {
		s := Share{
			ParticipantID: p.ID,
			Items:         itemCents[i],
			Tax:           taxCents[i],
			Tip:           tipCents[i],
			Adjustment:    adjust[i],
		}
		s.Total = s.Items + s.Tax + s.Tip + s.Adjustment
		out.Shares[i] = s
		out.PerParticipant[p.ID] = s.Total
	}
	return out, nil
}

// allocateItems splits every item among its assignees and integerises the
// accumulated per-participant weights in one pass. Ties between equal
// remainders go to the participant listed first in in.Participants.
func allocateItems(in AllocationInput, amounts []int64) []int64 {
	index := make(map[string]int, len(in.Participants))
	weights := make([]*big.Rat, len(in.Participants))
	for i, p := range in.Participants {
		index[p.ID] = i
		weights[i] = new(big.Rat)
	}
	if len(weights) == 0 {
		return nil
	}

	var allocated int64
	for i, li := range in.LineItems {
		amount := amounts[i]
		if amount <= 0 {
			continue
		}
		who := assignees(in.Assignment[li.ID], li.ID != "", index)
		if len(who) == 0 {
			who = []int{0}
		}
		share := big.NewRat(amount, int64(len(who)))
		for _, p := range who {
			weights[p].Add(weights[p], share)
		}
		allocated += amount
	}
	return largestRemainder(weights, allocated)
}

// assignees resolves assigned participant IDs to indexes, dropping unknown
// IDs and duplicates while keeping assignment order.
func assignees(ids []string, assignable bool, index map[string]int) []int {
	if !assignable {
		return nil
	}
	var out []int
	for _, id := range ids {
		i, ok := index[id]
		if ok && !slices.Contains(out, i) {
			out = append(out, i)
		}
	}
	return out
}

// reconcile spreads delta over participants ordered by descending item spend
// (ties by input order). Everyone gets delta/n cents and the remaining
// delta%n cents go one each in that order, as if handed out one at a time
// in cycles.
//
// Pennies can land on a participant who did not share the item that caused
// the gap; this is an accepted approximation.
func reconcile(delta int64, spend []int64) []int64 {
	adjust := make([]int64, len(spend))
	if delta == 0 || len(spend) == 0 {
		return adjust
	}

	order := make([]int, len(spend))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case spend[a] > spend[b]:
			return -1
		case spend[a] < spend[b]:
			return 1
		}
		return 0
	})

	sign := int64(1)
	if delta < 0 {
		sign, delta = -1, -delta
	}
	n := int64(len(order))
	q, r := delta/n, delta%n
	for k, i := range order {
		adjust[i] = sign * q
		if int64(k) < r {
			adjust[i] += sign
		}
	}
	return adjust
}

func validate(in AllocationInput) error {
	amounts := []struct {
		name  string
		value decimal.NullDecimal
	}{
		{"subtotal", in.Subtotal},
		{"tax", in.Tax},
		{"tip", in.Tip},
		{"total", in.Total},
	}
	for _, a := range amounts {
		if !a.value.Valid {
			continue
		}
		if a.value.Decimal.IsNegative() {
			return invalidInput("%s cannot be negative: %s", a.name, a.value.Decimal.StringFixed(2))
		}
		if !inRange(a.value.Decimal) {
			return invalidInput("%s out of range: %s", a.name, a.value.Decimal.String())
		}
	}

	var itemsSum int64
	for i, li := range in.LineItems {
		amount := li.Amount()
		if !inRange(amount) {
			return invalidInput("line item %d amount out of range: %s", i+1, amount.String())
		}
		itemsSum += max(0, ToCents(amount))
		if itemsSum >= MaxCents {
			return invalidInput("line items sum out of range")
		}
	}

	seen := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		if p.ID == "" {
			return invalidInput("participant id required")
		}
		if seen[p.ID] {
			return invalidInput("duplicate participant id %q", p.ID)
		}
		seen[p.ID] = true
	}

	items := make(map[string]bool, len(in.LineItems))
	for _, li := range in.LineItems {
		if li.ID != "" {
			items[li.ID] = true
		}
	}
	for itemID := range in.Assignment {
		if !items[itemID] {
			return invalidInput("assignment references unknown line item %q", itemID)
		}
	}
	return nil
}

// Totals renders PerParticipant as decimals with two fractional digits.
func (a *Allocation) Totals() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(a.PerParticipant))
	for id, c := range a.PerParticipant {
		out[id] = FromCents(c)
	}
	return out
}

// Decimal renders the metadata at the boundary.
func (m Meta) Decimal() models.SplitMeta {
	return models.SplitMeta{
		ItemsSum:         FromCents(m.ItemsSum),
		Subtotal:         FromCents(m.Subtotal),
		Tax:              FromCents(m.Tax),
		Tip:              FromCents(m.Tip),
		Total:            FromCents(m.Total),
		PreTaxTarget:     FromCents(m.PreTaxTarget),
		Scaled:           m.Scaled,
		InferredDiscount: FromCents(m.InferredDiscount),
	}
}
