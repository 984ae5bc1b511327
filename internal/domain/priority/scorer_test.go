package priority_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/domain/priority"
)

func taskWithDue(rating float64, tier domain.PriorityTier, due *time.Time) *domain.Task {
	return &domain.Task{
		Tier:      tier,
		EloRating: rating,
		DueDate:   due,
	}
}

func TestEffectivePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rating float64
		tier   domain.PriorityTier
		want   float64
	}{
		{"high tier midpoint", 1500, domain.TierHigh, 2.5},
		{"high tier floor rating", 1000, domain.TierHigh, 2.0},
		{"high tier ceiling rating", 2000, domain.TierHigh, 3.0},
		{"medium tier midpoint", 1500, domain.TierMedium, 1.5},
		{"low tier midpoint", 1500, domain.TierLow, 0.5},
		{"low tier ceiling rating", 2000, domain.TierLow, 1.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			task := taskWithDue(tt.rating, tt.tier, nil)
			assert.InDelta(t, tt.want, priority.EffectivePriority(task), 1e-9)
		})
	}

	t.Run("maximal low tier stays below minimal high tier", func(t *testing.T) {
		t.Parallel()

		low := taskWithDue(2000, domain.TierLow, nil)
		high := taskWithDue(1000, domain.TierHigh, nil)
		assert.LessOrEqual(t,
			priority.EffectivePriority(low),
			priority.EffectivePriority(high))
	})
}

func TestScorerUrgency(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	soon := now.Add(24 * time.Hour)
	later := now.Add(10 * 24 * time.Hour)
	middle := now.Add(5*24*time.Hour + 12*time.Hour)

	t.Run("no due date scores the floor", func(t *testing.T) {
		t.Parallel()

		scorer := priority.NewScorer([]*domain.Task{
			taskWithDue(1500, domain.TierMedium, &soon),
			taskWithDue(1500, domain.TierMedium, nil),
		})
		assert.Equal(t, priority.UrgencyFloor,
			scorer.Urgency(taskWithDue(1500, domain.TierMedium, nil)))
	})

	t.Run("earliest due date scores the ceiling", func(t *testing.T) {
		t.Parallel()

		scorer := priority.NewScorer([]*domain.Task{
			taskWithDue(1500, domain.TierMedium, &soon),
			taskWithDue(1500, domain.TierMedium, &later),
		})
		assert.InDelta(t, priority.UrgencyCeiling,
			scorer.Urgency(taskWithDue(1500, domain.TierMedium, &soon)), 1e-9)
	})

	t.Run("latest due date scores the floor", func(t *testing.T) {
		t.Parallel()

		scorer := priority.NewScorer([]*domain.Task{
			taskWithDue(1500, domain.TierMedium, &soon),
			taskWithDue(1500, domain.TierMedium, &later),
		})
		assert.InDelta(t, priority.UrgencyFloor,
			scorer.Urgency(taskWithDue(1500, domain.TierMedium, &later)), 1e-9)
	})

	t.Run("midpoint interpolates linearly", func(t *testing.T) {
		t.Parallel()

		scorer := priority.NewScorer([]*domain.Task{
			taskWithDue(1500, domain.TierMedium, &soon),
			taskWithDue(1500, domain.TierMedium, &later),
		})
		assert.InDelta(t, 2.0,
			scorer.Urgency(taskWithDue(1500, domain.TierMedium, &middle)), 1e-9)
	})

	t.Run("single dated task scores the ceiling", func(t *testing.T) {
		t.Parallel()

		scorer := priority.NewScorer([]*domain.Task{
			taskWithDue(1500, domain.TierMedium, &soon),
		})
		assert.Equal(t, priority.UrgencyCeiling,
			scorer.Urgency(taskWithDue(1500, domain.TierMedium, &soon)))
	})

	t.Run("empty set floors dateless tasks", func(t *testing.T) {
		t.Parallel()

		scorer := priority.NewScorer(nil)
		assert.Equal(t, priority.UrgencyFloor,
			scorer.Urgency(taskWithDue(1500, domain.TierMedium, nil)))
	})
}

func TestScorerImportance(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	soon := now.Add(24 * time.Hour)
	later := now.Add(10 * 24 * time.Hour)

	urgent := taskWithDue(2000, domain.TierHigh, &soon)
	relaxed := taskWithDue(1000, domain.TierLow, &later)

	scorer := priority.NewScorer([]*domain.Task{urgent, relaxed})

	// Effective priority 3.0 at urgency 3.0 is the scale maximum.
	assert.InDelta(t, 9.0, scorer.Importance(urgent), 1e-9)
	// Effective priority 0.0 floors importance regardless of urgency.
	assert.InDelta(t, 0.0, scorer.Importance(relaxed), 1e-9)
}
