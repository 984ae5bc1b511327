package elo_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/domain/elo"
)

func newRatedTask(rating float64, comparisons int) *domain.Task {
	return &domain.Task{
		ID:              uuid.New(),
		Title:           "task",
		Tier:            domain.TierMedium,
		State:           domain.StateActive,
		EloRating:       rating,
		ComparisonCount: comparisons,
	}
}

func TestApplyComparison(t *testing.T) {
	t.Parallel()

	t.Run("equal provisional ratings move 16 points", func(t *testing.T) {
		t.Parallel()

		winner := newRatedTask(1500, 0)
		loser := newRatedTask(1500, 0)

		updatedWinner, updatedLoser, err := elo.NewDefaultService().ApplyComparison(winner, loser)
		require.NoError(t, err)

		assert.InDelta(t, 1516, updatedWinner.EloRating, 1e-9)
		assert.InDelta(t, 1484, updatedLoser.EloRating, 1e-9)
		assert.Equal(t, 1, updatedWinner.ComparisonCount)
		assert.Equal(t, 1, updatedLoser.ComparisonCount)
	})

	t.Run("established ratings move at half the rate", func(t *testing.T) {
		t.Parallel()

		winner := newRatedTask(1500, 10)
		loser := newRatedTask(1500, 10)

		updatedWinner, updatedLoser, err := elo.NewDefaultService().ApplyComparison(winner, loser)
		require.NoError(t, err)

		assert.InDelta(t, 1508, updatedWinner.EloRating, 1e-9)
		assert.InDelta(t, 1492, updatedLoser.EloRating, 1e-9)
	})

	t.Run("K-factor is chosen per task", func(t *testing.T) {
		t.Parallel()

		winner := newRatedTask(1500, 0)
		loser := newRatedTask(1500, 10)

		updatedWinner, updatedLoser, err := elo.NewDefaultService().ApplyComparison(winner, loser)
		require.NoError(t, err)

		assert.InDelta(t, 1516, updatedWinner.EloRating, 1e-9)
		assert.InDelta(t, 1492, updatedLoser.EloRating, 1e-9)
	})

	t.Run("upset win moves more than expected win", func(t *testing.T) {
		t.Parallel()

		svc := elo.NewDefaultService()

		underdog := newRatedTask(1300, 0)
		favorite := newRatedTask(1700, 0)
		upsetWinner, _, err := svc.ApplyComparison(underdog, favorite)
		require.NoError(t, err)
		upsetGain := upsetWinner.EloRating - 1300

		favorite2 := newRatedTask(1700, 0)
		underdog2 := newRatedTask(1300, 0)
		expectedWinner, _, err := svc.ApplyComparison(favorite2, underdog2)
		require.NoError(t, err)
		expectedGain := expectedWinner.EloRating - 1700

		assert.Greater(t, upsetGain, expectedGain)
	})

	t.Run("ratings clamp at the bounds", func(t *testing.T) {
		t.Parallel()

		winner := newRatedTask(domain.RatingCeiling, 0)
		loser := newRatedTask(domain.RatingFloor, 0)

		updatedWinner, updatedLoser, err := elo.NewDefaultService().ApplyComparison(winner, loser)
		require.NoError(t, err)

		assert.Equal(t, domain.RatingCeiling, updatedWinner.EloRating)
		assert.Equal(t, domain.RatingFloor, updatedLoser.EloRating)
	})

	t.Run("inputs are never mutated", func(t *testing.T) {
		t.Parallel()

		winner := newRatedTask(1500, 3)
		loser := newRatedTask(1400, 7)

		_, _, err := elo.NewDefaultService().ApplyComparison(winner, loser)
		require.NoError(t, err)

		assert.Equal(t, 1500.0, winner.EloRating)
		assert.Equal(t, 3, winner.ComparisonCount)
		assert.Equal(t, 1400.0, loser.EloRating)
		assert.Equal(t, 7, loser.ComparisonCount)
	})

	t.Run("nil task is rejected", func(t *testing.T) {
		t.Parallel()

		_, _, err := elo.NewDefaultService().ApplyComparison(nil, newRatedTask(1500, 0))
		assert.ErrorIs(t, err, elo.ErrNilTask)
	})

	t.Run("same task on both sides is rejected", func(t *testing.T) {
		t.Parallel()

		task := newRatedTask(1500, 0)
		_, _, err := elo.NewDefaultService().ApplyComparison(task, task)
		assert.ErrorIs(t, err, elo.ErrSamePair)
	})
}

func TestApplyComparisonCustomParams(t *testing.T) {
	t.Parallel()

	svc := elo.NewServiceWithParams(&elo.Params{
		KProvisional:           64,
		KEstablished:           8,
		ProvisionalComparisons: 5,
		Spread:                 400,
	})

	winner := newRatedTask(1500, 0)
	loser := newRatedTask(1500, 5)

	updatedWinner, updatedLoser, err := svc.ApplyComparison(winner, loser)
	require.NoError(t, err)

	assert.InDelta(t, 1532, updatedWinner.EloRating, 1e-9)
	assert.InDelta(t, 1496, updatedLoser.EloRating, 1e-9)
}
