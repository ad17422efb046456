package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatingDelta(t *testing.T) {
	tests := []struct {
		name     string
		self     int
		opponent int
		actual   float64
		want     int
	}{
		{"equal ratings win", 1200, 1200, 1, 16},
		{"equal ratings loss", 1200, 1200, 0, -16},
		{"favourite wins", 1400, 1200, 1, 8},
		{"underdog loses", 1200, 1400, 0, -8},
		{"underdog wins", 1200, 1400, 1, 24},
		{"favourite loses", 1400, 1200, 0, -24},
		{"huge gap win", 2000, 1000, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RatingDelta(tt.self, tt.opponent, tt.actual))
		})
	}
}

func TestSettleHeadToHead(t *testing.T) {
	total, losers := Settle(1200, []int{1200})
	assert.Equal(t, 16, total)
	assert.Equal(t, []int{-16}, losers)
}

func TestSettleMultiplayerSumsWinnerTerms(t *testing.T) {
	total, losers := Settle(1300, []int{1200, 1500})

	want := RatingDelta(1300, 1200, 1) + RatingDelta(1300, 1500, 1)
	assert.Equal(t, want, total)
	assert.Equal(t, []int{RatingDelta(1200, 1300, 0), RatingDelta(1500, 1300, 0)}, losers)
}

func TestSettleNoLosers(t *testing.T) {
	total, losers := Settle(1200, nil)
	assert.Zero(t, total)
	assert.Empty(t, losers)
}

// A multiplayer settlement is not forced to be zero-sum, but each pair only
// breaks symmetry when 32 times the expectation lands exactly on a half. No
// integer rating gap in this range gets within 1e-3 of one, so every
// settlement here sums to zero.
func TestSettleZeroSumAcrossRatingGaps(t *testing.T) {
	for gap := -2000; gap <= 2000; gap++ {
		total, losers := Settle(1500, []int{1500 + gap, 1500 - gap/2})
		sum := total
		for _, delta := range losers {
			sum += delta
		}
		if !assert.Zero(t, sum, "gap %d", gap) {
			return
		}
	}
}
