// Package priority implements the pure scoring functions that turn a task's
// stored fields into the single importance scalar used for ranking.
//
// Urgency is relative: it is computed against the spread of due dates across
// the candidate set, so a Scorer is built from that set and then queried per
// task. Effective priority and importance depend only on the task itself.
package priority

import (
	"time"

	"github.com/phrazzld/focal-api/internal/domain"
)

// Urgency bounds. Tasks without a due date sit at the floor; the earliest
// due date in the set (including overdue) sits at the ceiling.
const (
	UrgencyFloor   = 1.0
	UrgencyCeiling = 3.0
)

// Scorer computes urgency, effective priority, and importance for tasks
// against a fixed candidate set. It captures the due-date window of the set
// at construction and performs no I/O.
type Scorer struct {
	earliestDue time.Time
	latestDue   time.Time
	hasDueDates bool
}

// NewScorer builds a Scorer over the given candidate set. The set determines
// the due-date window used for urgency interpolation.
func NewScorer(tasks []*domain.Task) *Scorer {
	s := &Scorer{}

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		if !s.hasDueDates {
			s.earliestDue = due
			s.latestDue = due
			s.hasDueDates = true
			continue
		}
		if due.Before(s.earliestDue) {
			s.earliestDue = due
		}
		if due.After(s.latestDue) {
			s.latestDue = due
		}
	}

	return s
}

// Urgency returns the task's urgency within the Scorer's due-date window.
// Tasks without a due date score the floor (1.0). Among dated tasks, the
// earliest due date maps to 3.0 and the latest to 1.0, linearly interpolated;
// a degenerate single-point window resolves to the ceiling. Overdue tasks are
// already the earliest end of the window and clamp at 3.0.
func (s *Scorer) Urgency(task *domain.Task) float64 {
	if task.DueDate == nil {
		return UrgencyFloor
	}

	window := s.latestDue.Sub(s.earliestDue)
	if window <= 0 {
		return UrgencyCeiling
	}

	fraction := float64(task.DueDate.Sub(s.earliestDue)) / float64(window)
	urgency := UrgencyCeiling - fraction*(UrgencyCeiling-UrgencyFloor)

	if urgency > UrgencyCeiling {
		urgency = UrgencyCeiling
	}
	if urgency < UrgencyFloor {
		urgency = UrgencyFloor
	}

	return urgency
}

// EffectivePriority maps the task's Elo rating into the numeric band fixed by
// its tier. The rating is normalized from [1000,2000] to [0,1] and placed
// affinely within the band, so the result always lies inside the tier's band.
func EffectivePriority(task *domain.Task) float64 {
	normalized := (task.EloRating - domain.RatingFloor) /
		(domain.RatingCeiling - domain.RatingFloor)

	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	low, high := task.Tier.Band()
	return low + normalized*(high-low)
}

// Importance is the single ranking scalar: effective priority multiplied by
// urgency. Range: [0, 9].
func (s *Scorer) Importance(task *domain.Task) float64 {
	return EffectivePriority(task) * s.Urgency(task)
}
