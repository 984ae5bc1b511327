package elo

import (
	"errors"

	"github.com/phrazzld/focal-api/internal/domain"
)

// Common errors
var (
	ErrNilTask  = errors.New("task cannot be nil")
	ErrSamePair = errors.New("winner and loser must be distinct tasks")
)

// Service defines the interface for Elo rating operations
type Service interface {
	// ApplyComparison computes updated copies of both tasks after a decided
	// pairwise comparison. Both ratings move together and both comparison
	// counts increment; the inputs are never mutated.
	ApplyComparison(
		winner, loser *domain.Task,
	) (updatedWinner, updatedLoser *domain.Task, err error)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new Elo service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new Elo service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// ApplyComparison implements the Service interface.
func (s *defaultService) ApplyComparison(
	winner, loser *domain.Task,
) (*domain.Task, *domain.Task, error) {
	if winner == nil || loser == nil {
		return nil, nil, ErrNilTask
	}
	if winner.ID == loser.ID {
		return nil, nil, ErrSamePair
	}

	// Both K-factors are chosen from the pre-update counts before either
	// side is touched.
	newWinnerRating := updatedRating(
		winner.EloRating, loser.EloRating,
		winner.ComparisonCount, 1.0, s.params,
	)
	newLoserRating := updatedRating(
		loser.EloRating, winner.EloRating,
		loser.ComparisonCount, 0.0, s.params,
	)

	updatedWinner := *winner
	updatedWinner.EloRating = newWinnerRating
	updatedWinner.ComparisonCount++

	updatedLoser := *loser
	updatedLoser.EloRating = newLoserRating
	updatedLoser.ComparisonCount++

	return &updatedWinner, &updatedLoser, nil
}
