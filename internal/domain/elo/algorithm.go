package elo

import (
	"math"

	"github.com/phrazzld/focal-api/internal/domain"
)

// kFactor selects the K-factor for a task based on its pre-update comparison
// count. Ratings move faster while a task is still provisional so a few
// judgments place it quickly; established ratings move more slowly.
func kFactor(comparisonCount int, params *Params) float64 {
	if comparisonCount < params.ProvisionalComparisons {
		return params.KProvisional
	}
	return params.KEstablished
}

// expectedScore computes the standard Elo win expectancy for a task with
// ownRating facing opponentRating: 1 / (1 + 10^((opponent-own)/spread)).
// Equal ratings yield 0.5.
func expectedScore(ownRating, opponentRating float64, params *Params) float64 {
	return 1.0 / (1.0 + math.Pow(10, (opponentRating-ownRating)/params.Spread))
}

// clampRating keeps a rating inside the domain bounds [1000, 2000].
func clampRating(rating float64) float64 {
	if rating < domain.RatingFloor {
		return domain.RatingFloor
	}
	if rating > domain.RatingCeiling {
		return domain.RatingCeiling
	}
	return rating
}

// updatedRating applies one comparison result to a single rating.
// actualScore is 1 for the winner and 0 for the loser. The K-factor is
// chosen from the task's own pre-update comparison count.
func updatedRating(
	ownRating, opponentRating float64,
	comparisonCount int,
	actualScore float64,
	params *Params,
) float64 {
	k := kFactor(comparisonCount, params)
	expected := expectedScore(ownRating, opponentRating, params)
	return clampRating(ownRating + k*(actualScore-expected))
}
