package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comparison validation errors
var (
	ErrComparisonSameTask = errors.New("comparison requires two distinct tasks")
	ErrWinnerNotInPair    = errors.New("winner must be one of the compared tasks")
)

// Comparison is an append-only record of a single pairwise judgment between
// two tied tasks. WinnerID is nil when the user skipped the pair.
type Comparison struct {
	ID        uuid.UUID  `json:"id"`
	TaskAID   uuid.UUID  `json:"task_a_id"`
	TaskBID   uuid.UUID  `json:"task_b_id"`
	WinnerID  *uuid.UUID `json:"winner_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewComparison creates a comparison record for a decided pair.
func NewComparison(taskAID, taskBID, winnerID uuid.UUID, now time.Time) (*Comparison, error) {
	if taskAID == taskBID {
		return nil, ErrComparisonSameTask
	}
	if winnerID != taskAID && winnerID != taskBID {
		return nil, ErrWinnerNotInPair
	}

	return &Comparison{
		ID:        uuid.New(),
		TaskAID:   taskAID,
		TaskBID:   taskBID,
		WinnerID:  &winnerID,
		CreatedAt: now,
	}, nil
}

// NewSkippedComparison creates a comparison record for a skipped pair.
func NewSkippedComparison(taskAID, taskBID uuid.UUID, now time.Time) (*Comparison, error) {
	if taskAID == taskBID {
		return nil, ErrComparisonSameTask
	}

	return &Comparison{
		ID:        uuid.New(),
		TaskAID:   taskAID,
		TaskBID:   taskBID,
		CreatedAt: now,
	}, nil
}
