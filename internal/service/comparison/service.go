// Package comparison implements the Elo updater: it applies user judgments
// between tied tasks, appends the comparison log, and tracks skipped pairs
// within a resolution pass.
package comparison

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/domain/elo"
	"github.com/phrazzld/focal-api/internal/platform/clock"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/store"
)

// Common errors
var (
	// ErrSameTask is returned when both sides of a comparison are the same task.
	ErrSameTask = errors.New("cannot compare a task against itself")
)

// Result carries the updated tasks after a decided comparison.
type Result struct {
	Winner *domain.Task `json:"winner"`
	Loser  *domain.Task `json:"loser"`
}

// Service applies pairwise judgments. Rating updates for both tasks and the
// comparison log entry commit in a single transaction so a crash can never
// leave one side of the paired update applied.
type Service struct {
	taskStore       store.TaskStore
	comparisonStore store.ComparisonStore
	tx              store.Transactor
	elo             elo.Service
	clock           clock.Clock
	logger          *slog.Logger

	// skipped holds the pairs the user declined in the current resolution
	// pass. A recorded comparison changes ratings and therefore starts a
	// new pass, clearing the set.
	mu      sync.Mutex
	skipped map[pairKey]struct{}
}

type pairKey struct {
	low, high uuid.UUID
}

func newPairKey(a, b uuid.UUID) pairKey {
	if a.String() < b.String() {
		return pairKey{low: a, high: b}
	}
	return pairKey{low: b, high: a}
}

// NewService creates a comparison Service.
func NewService(
	taskStore store.TaskStore,
	comparisonStore store.ComparisonStore,
	tx store.Transactor,
	eloService elo.Service,
	clk clock.Clock,
	logger *slog.Logger,
) *Service {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if comparisonStore == nil {
		panic("comparisonStore cannot be nil")
	}
	if tx == nil {
		panic("tx cannot be nil")
	}
	if eloService == nil {
		eloService = elo.NewDefaultService()
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		taskStore:       taskStore,
		comparisonStore: comparisonStore,
		tx:              tx,
		elo:             eloService,
		clock:           clk,
		logger:          logger.With(slog.String("component", "comparison_service")),
		skipped:         make(map[pairKey]struct{}),
	}
}

// RecordComparison applies a decided judgment: the winner's and loser's
// ratings move together, both comparison counts increment, and a comparison
// event is appended, all in one transaction. Recording a result starts a
// new resolution pass.
func (s *Service) RecordComparison(ctx context.Context, winnerID, loserID uuid.UUID) (*Result, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if winnerID == loserID {
		return nil, ErrSameTask
	}

	var result *Result
	err := s.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		taskStore := s.taskStore.WithTx(tx)
		comparisonStore := s.comparisonStore.WithTx(tx)

		winner, err := taskStore.GetByID(ctx, winnerID)
		if err != nil {
			return fmt.Errorf("failed to load winner: %w", err)
		}
		loser, err := taskStore.GetByID(ctx, loserID)
		if err != nil {
			return fmt.Errorf("failed to load loser: %w", err)
		}

		now := s.clock.Now()
		updatedWinner, updatedLoser, err := s.elo.ApplyComparison(winner, loser)
		if err != nil {
			return fmt.Errorf("failed to apply comparison: %w", err)
		}

		if err := taskStore.Update(ctx, updatedWinner); err != nil {
			return fmt.Errorf("failed to update winner: %w", err)
		}
		if err := taskStore.Update(ctx, updatedLoser); err != nil {
			return fmt.Errorf("failed to update loser: %w", err)
		}

		comparison, err := domain.NewComparison(winnerID, loserID, winnerID, now)
		if err != nil {
			return err
		}
		if err := comparisonStore.Append(ctx, comparison); err != nil {
			return fmt.Errorf("failed to append comparison event: %w", err)
		}

		result = &Result{Winner: updatedWinner, Loser: updatedLoser}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Ratings changed, so any remembered skips belong to a finished pass.
	s.mu.Lock()
	s.skipped = make(map[pairKey]struct{})
	s.mu.Unlock()

	log.Debug("recorded comparison",
		slog.String("winner_id", winnerID.String()),
		slog.String("loser_id", loserID.String()),
		slog.Float64("winner_rating", result.Winner.EloRating),
		slog.Float64("loser_rating", result.Loser.EloRating))

	return result, nil
}

// SkipComparison records that the user declined to judge the pair. No rating
// changes; the pair is logged as skipped and not re-offered within the
// current resolution pass.
func (s *Service) SkipComparison(ctx context.Context, aID, bID uuid.UUID) error {
	if aID == bID {
		return ErrSameTask
	}

	err := s.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		comparison, err := domain.NewSkippedComparison(aID, bID, s.clock.Now())
		if err != nil {
			return err
		}
		if err := s.comparisonStore.WithTx(tx).Append(ctx, comparison); err != nil {
			return fmt.Errorf("failed to append skipped comparison: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.skipped[newPairKey(aID, bID)] = struct{}{}
	s.mu.Unlock()

	return nil
}

// NextPair implements the leader-challenger policy over a tied set: the
// current leader (head of the importance-ordered set) is paired against the
// next contender it has not been skipped against in this pass. Returns
// ok=false when every contender pair has been skipped.
func (s *Service) NextPair(tied []*domain.Task) (*domain.Task, *domain.Task, bool) {
	if len(tied) < 2 {
		return nil, nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	leader := tied[0]
	for _, contender := range tied[1:] {
		if _, skippedPair := s.skipped[newPairKey(leader.ID, contender.ID)]; skippedPair {
			continue
		}
		return leader, contender, true
	}

	return nil, nil, false
}
