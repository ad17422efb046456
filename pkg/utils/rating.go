package utils

import (
	"math"
)

// K-factor applied to every pairwise result
const KFactor = 32

// Expected score of self against opponent on the logistic Elo curve
func expectedScore(self, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-self)/400))
}

// RatingDelta returns the rating change for self after one result against
// opponent. actual is 1 for a win and 0 for a loss. Halves round up.
func RatingDelta(self, opponent int, actual float64) int {
	return int(math.Floor(KFactor*(actual-expectedScore(self, opponent)) + 0.5))
}

// Settle computes the rating changes of a finished match with one winner.
// The winner's total is the sum of its pairwise wins against every loser,
// each loser's change is computed on its own against the winner.
// The results are not forced to be zero-sum.
func Settle(winner int, losers []int) (int, []int) {
	var total int
	loserDeltas := make([]int, len(losers))
	for i, loser := range losers {
		total += RatingDelta(winner, loser, 1)
		loserDeltas[i] = RatingDelta(loser, winner, 0)
	}
	return total, loserDeltas
}
