// Package prorata apportions an integer amount across weighted parties
// without losing value to integer rounding.
package prorata

import (
	"errors"
	"math/big"
	"sort"
)

var (
	ErrNegativeAmount = errors.New("prorata: amount must not be negative")
	ErrNoWeights      = errors.New("prorata: at least one positive weight required")
	ErrNegativeWeight = errors.New("prorata: weights must not be negative")
)

// Distribute splits amount across parties proportionally to weights using the
// largest-remainder method: each party first receives floor(amount*w/total),
// then the leftover units are handed out one at a time to the parties with the
// largest fractional remainder. Ties are broken by ascending index, so the
// result is fully deterministic. The returned shares always sum to amount
// exactly.
func Distribute(amount int64, weights []int64) ([]int64, error) {
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	if len(weights) == 0 {
		return nil, ErrNoWeights
	}

	total := new(big.Int)
	for _, w := range weights {
		if w < 0 {
			return nil, ErrNegativeWeight
		}
		total.Add(total, big.NewInt(w))
	}
	if total.Sign() == 0 {
		return nil, ErrNoWeights
	}

	// Products amount*w may overflow int64, so the division runs on big.Int.
	shares := make([]int64, len(weights))
	remainders := make([]*big.Int, len(weights))
	distributed := int64(0)
	amt := big.NewInt(amount)
	for i, w := range weights {
		product := new(big.Int).Mul(amt, big.NewInt(w))
		quo, rem := new(big.Int).QuoRem(product, total, new(big.Int))
		shares[i] = quo.Int64()
		remainders[i] = rem
		distributed += shares[i]
	}

	leftover := amount - distributed
	if leftover == 0 {
		return shares, nil
	}

	order := make([]int, len(weights))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].Cmp(remainders[order[b]]) > 0
	})
	for i := int64(0); i < leftover; i++ {
		shares[order[i%int64(len(order))]]++
	}
	return shares, nil
}
