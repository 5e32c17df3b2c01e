package calculator

import (
	"math/big"
	"slices"
)

// SplitEven divides a non-negative amount into n parts that differ by at most
// one cent. The first amount mod n parts receive the extra cent.
// n <= 0 is treated as a single part.
func SplitEven(amount int64, n int) []int64 {
	if n <= 0 {
		n = 1
	}
	base := amount / int64(n)
	extra := amount - base*int64(n)
	out := make([]int64, n)
	for i := range out {
		out[i] = base
		if int64(i) < extra {
			out[i]++
		}
	}
	return out
}

// ScaleToTarget distributes target across weights in proportion to each
// weight using the largest-remainder method. The result always sums to
// target for target >= 0 and non-negative weights.
//
// When every weight is zero the target is split evenly, so a zero target
// yields all zeros.
func ScaleToTarget(weights []int64, target int64) []int64 {
	rats := make([]*big.Rat, len(weights))
	for i, w := range weights {
		rats[i] = new(big.Rat).SetInt64(w)
	}
	return largestRemainder(rats, target)
}

type remainder struct {
	idx  int
	frac *big.Rat
}

// largestRemainder is ScaleToTarget over exact rational weights. Ties between
// equal remainders go to the earlier entry.
func largestRemainder(weights []*big.Rat, target int64) []int64 {
	out := make([]int64, len(weights))
	if len(weights) == 0 {
		return out
	}

	total := new(big.Rat)
	for _, w := range weights {
		total.Add(total, w)
	}
	if total.Sign() == 0 {
		if target == 0 {
			return out
		}
		return SplitEven(target, len(weights))
	}

	t := new(big.Rat).SetInt64(target)
	rems := make([]remainder, len(weights))
	var assigned int64
	for i, w := range weights {
		share := new(big.Rat).Mul(w, t)
		share.Quo(share, total)
		floor := new(big.Int).Quo(share.Num(), share.Denom())
		out[i] = floor.Int64()
		assigned += out[i]
		rems[i] = remainder{idx: i, frac: share.Sub(share, new(big.Rat).SetInt(floor))}
	}

	slices.SortStableFunc(rems, func(a, b remainder) int {
		return b.frac.Cmp(a.frac)
	})
	for k := int64(0); k < target-assigned; k++ {
		out[rems[k%int64(len(rems))].idx]++
	}
	return out
}
