// Package ranking implements the ranking and tie resolver: it filters the
// task set down to actionable candidates, scores them, and either names a
// single focus task or surfaces the tied set for pairwise comparison.
package ranking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/domain/priority"
	"github.com/phrazzld/focal-api/internal/platform/clock"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/store"

	"github.com/google/uuid"
)

// DefaultEpsilon is the floating-point tolerance within which two importance
// scores count as tied.
const DefaultEpsilon = 0.01

// BlockedChecker answers whether a task currently has incomplete blockers.
// Implemented by the dependency manager.
type BlockedChecker interface {
	IsBlocked(ctx context.Context, taskID uuid.UUID) (bool, error)
}

// PairPicker selects the next comparison pair from a tied set, honoring the
// skip state of the current resolution pass. Implemented by the comparison
// service.
type PairPicker interface {
	NextPair(tied []*domain.Task) (a, b *domain.Task, ok bool)
}

// ScoredTask pairs a task with the score components behind its rank.
type ScoredTask struct {
	Task              *domain.Task `json:"task"`
	Importance        float64      `json:"importance"`
	Urgency           float64      `json:"urgency"`
	EffectivePriority float64      `json:"effective_priority"`
}

// Focus is the outcome of a focus-task request. Exactly one of the two shapes
// holds: a decided Task, or NeedsComparison with the tied set and the next
// pair to present. Callers must handle the needs-comparison outcome
// explicitly rather than silently picking a member.
type Focus struct {
	Task            *domain.Task   `json:"task,omitempty"`
	NeedsComparison bool           `json:"needs_comparison"`
	Tied            []*domain.Task `json:"tied,omitempty"`
	PairA           *domain.Task   `json:"pair_a,omitempty"`
	PairB           *domain.Task   `json:"pair_b,omitempty"`
}

// Resolver produces the ranked task list and the current focus task.
type Resolver struct {
	taskStore store.TaskStore
	blocked   BlockedChecker
	pairs     PairPicker
	clock     clock.Clock
	epsilon   float64
	logger    *slog.Logger
}

// NewResolver creates a ranking Resolver with the default epsilon.
func NewResolver(
	taskStore store.TaskStore,
	blocked BlockedChecker,
	pairs PairPicker,
	clk clock.Clock,
	logger *slog.Logger,
) *Resolver {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if blocked == nil {
		panic("blocked checker cannot be nil")
	}
	if pairs == nil {
		panic("pair picker cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		taskStore: taskStore,
		blocked:   blocked,
		pairs:     pairs,
		clock:     clk,
		epsilon:   DefaultEpsilon,
		logger:    logger.With(slog.String("component", "ranking_resolver")),
	}
}

// ActionableTasks returns the tasks eligible for focus consideration:
// Active, start date absent or reached, and not blocked by any incomplete
// dependency.
func (r *Resolver) ActionableTasks(ctx context.Context) ([]*domain.Task, error) {
	active, err := r.taskStore.FindByState(ctx, domain.StateActive)
	if err != nil {
		return nil, fmt.Errorf("failed to load active tasks: %w", err)
	}

	now := r.clock.Now()
	actionable := make([]*domain.Task, 0, len(active))
	for _, task := range active {
		if !task.IsActionableAt(now) {
			continue
		}
		isBlocked, err := r.blocked.IsBlocked(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check blockers for %s: %w", task.ID, err)
		}
		if isBlocked {
			continue
		}
		actionable = append(actionable, task)
	}

	return actionable, nil
}

// Rank scores the given tasks and returns them ordered by importance
// descending. Ties in score are ordered by id so the result is deterministic.
func (r *Resolver) Rank(tasks []*domain.Task) []ScoredTask {
	scorer := priority.NewScorer(tasks)

	scored := make([]ScoredTask, 0, len(tasks))
	for _, task := range tasks {
		scored = append(scored, ScoredTask{
			Task:              task,
			Importance:        scorer.Importance(task),
			Urgency:           scorer.Urgency(task),
			EffectivePriority: priority.EffectivePriority(task),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Importance != scored[j].Importance {
			return scored[i].Importance > scored[j].Importance
		}
		return scored[i].Task.ID.String() < scored[j].Task.ID.String()
	})

	return scored
}

// TopRanked returns every scored task whose importance is within epsilon of
// the maximum. The result is non-empty whenever the input is.
func (r *Resolver) TopRanked(scored []ScoredTask) []ScoredTask {
	if len(scored) == 0 {
		return nil
	}

	max := scored[0].Importance
	top := make([]ScoredTask, 0, 1)
	for _, s := range scored {
		if max-s.Importance <= r.epsilon {
			top = append(top, s)
		}
	}
	return top
}

// RankedTasks returns the full ordered candidate list.
func (r *Resolver) RankedTasks(ctx context.Context) ([]ScoredTask, error) {
	actionable, err := r.ActionableTasks(ctx)
	if err != nil {
		return nil, err
	}
	return r.Rank(actionable), nil
}

// NextFocus determines the current focus task. With a single top-ranked task
// the answer is direct. With a tie, the resolver surfaces the tied set along
// with the next leader-challenger pair; when every pair in the pass has been
// skipped, it falls back to the lowest task id for a stable deterministic
// answer.
func (r *Resolver) NextFocus(ctx context.Context) (*Focus, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	scored, err := r.RankedTasks(ctx)
	if err != nil {
		return nil, err
	}
	if len(scored) == 0 {
		return &Focus{}, nil
	}

	top := r.TopRanked(scored)
	if len(top) == 1 {
		return &Focus{Task: top[0].Task}, nil
	}

	tied := make([]*domain.Task, 0, len(top))
	for _, s := range top {
		tied = append(tied, s.Task)
	}

	a, b, ok := r.pairs.NextPair(tied)
	if !ok {
		// Every pair in this pass was skipped; settle on the lowest id.
		fallback := tied[0]
		for _, t := range tied[1:] {
			if t.ID.String() < fallback.ID.String() {
				fallback = t
			}
		}
		log.Debug("tie resolved by deterministic fallback",
			slog.Int("tied_count", len(tied)),
			slog.String("task_id", fallback.ID.String()))
		return &Focus{Task: fallback}, nil
	}

	log.Debug("focus requires comparison",
		slog.Int("tied_count", len(tied)),
		slog.String("pair_a", a.ID.String()),
		slog.String("pair_b", b.ID.String()))

	return &Focus{
		NeedsComparison: true,
		Tied:            tied,
		PairA:           a,
		PairB:           b,
	}, nil
}
