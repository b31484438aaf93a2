package prorata

import (
	"errors"
	"testing"
)

func sum(xs []int64) int64 {
	var s int64
	for _, x := range xs {
		s += x
	}
	return s
}

func TestDistribute(t *testing.T) {
	tests := []struct {
		name    string
		amount  int64
		weights []int64
		want    []int64
		wantErr error
	}{
		{name: "even split", amount: 1100, weights: []int64{600, 400}, want: []int64{660, 440}},
		{name: "single party", amount: 999, weights: []int64{1}, want: []int64{999}},
		{name: "remainder to largest fraction", amount: 100, weights: []int64{1, 1, 1}, want: []int64{34, 33, 33}},
		{name: "remainder tie broken by index", amount: 5, weights: []int64{1, 1}, want: []int64{3, 2}},
		{name: "amount smaller than parties", amount: 2, weights: []int64{10, 10, 10}, want: []int64{1, 1, 0}},
		{name: "zero amount", amount: 0, weights: []int64{3, 7}, want: []int64{0, 0}},
		{name: "zero-weight party", amount: 10, weights: []int64{5, 0, 5}, want: []int64{5, 0, 5}},
		{name: "negative amount", amount: -1, weights: []int64{1}, wantErr: ErrNegativeAmount},
		{name: "no weights", amount: 1, weights: nil, wantErr: ErrNoWeights},
		{name: "all zero weights", amount: 1, weights: []int64{0, 0}, wantErr: ErrNoWeights},
		{name: "negative weight", amount: 1, weights: []int64{1, -1}, wantErr: ErrNegativeWeight},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Distribute(tc.amount, tc.weights)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Distribute: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tc.want))
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("shares = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

// The no-fund-loss invariant: shares sum to the amount for every input,
// including ones where a floor-by-percentage split would drop units.
func TestDistribute_SumsExactly(t *testing.T) {
	weightSets := [][]int64{
		{600, 400},
		{1, 2, 3, 4, 5, 6, 7},
		{999_999_999_999, 1},
		{7, 7, 7},
		{123_456_789, 987_654_321, 555_555_555},
	}
	amounts := []int64{1, 2, 3, 10, 99, 100, 101, 1000, 1100, 7_777_777, 1_000_000_000_000}

	for _, ws := range weightSets {
		for _, amt := range amounts {
			got, err := Distribute(amt, ws)
			if err != nil {
				t.Fatalf("Distribute(%d, %v): %v", amt, ws, err)
			}
			if s := sum(got); s != amt {
				t.Fatalf("Distribute(%d, %v) sums to %d", amt, ws, s)
			}
		}
	}
}

// Splitting an amount across several calls must never drift from the split of
// the whole: cumulative payouts per party equal the one-shot distribution.
func TestDistribute_NoCumulativeDrift(t *testing.T) {
	weights := []int64{600, 400}
	parts := []int64{400, 400, 300}

	cumulative := make([]int64, len(weights))
	for _, p := range parts {
		shares, err := Distribute(p, weights)
		if err != nil {
			t.Fatalf("Distribute: %v", err)
		}
		if sum(shares) != p {
			t.Fatalf("partial call lost funds: %v vs %d", shares, p)
		}
		for i, s := range shares {
			cumulative[i] += s
		}
	}

	if cumulative[0] != 660 || cumulative[1] != 440 {
		t.Fatalf("cumulative = %v, want [660 440]", cumulative)
	}
}
