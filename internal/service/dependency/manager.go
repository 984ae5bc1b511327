// Package dependency implements the dependency graph manager: it maintains
// the blocking relationships between tasks, rejects edges that would close a
// cycle, and answers actionability queries for the ranking layer.
package dependency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/focal-api/internal/domain"
	"github.com/phrazzld/focal-api/internal/domain/graph"
	"github.com/phrazzld/focal-api/internal/platform/clock"
	"github.com/phrazzld/focal-api/internal/platform/logger"
	"github.com/phrazzld/focal-api/internal/store"
)

// Manager maintains the directed acyclic graph of blocking relationships.
// All mutation goes through the shared transactional write path; the cycle
// check runs inside the same transaction as the insert so the acyclicity
// invariant holds at every observable instant.
type Manager struct {
	taskStore store.TaskStore
	depStore  store.DependencyStore
	tx        store.Transactor
	clock     clock.Clock
	logger    *slog.Logger
}

// NewManager creates a dependency Manager.
func NewManager(
	taskStore store.TaskStore,
	depStore store.DependencyStore,
	tx store.Transactor,
	clk clock.Clock,
	logger *slog.Logger,
) *Manager {
	if taskStore == nil {
		panic("taskStore cannot be nil")
	}
	if depStore == nil {
		panic("depStore cannot be nil")
	}
	if tx == nil {
		panic("tx cannot be nil")
	}
	if clk == nil {
		clk = clock.System{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		taskStore: taskStore,
		depStore:  depStore,
		tx:        tx,
		clock:     clk,
		logger:    logger.With(slog.String("component", "dependency_manager")),
	}
}

// AddDependency records that blockedID is blocked by blockingID.
// Returns domain.ErrSelfDependency when the ids are equal and
// domain.ErrCircularDependency when the edge would close a cycle; in both
// cases nothing is written. Adding an edge that already exists is a no-op.
func (m *Manager) AddDependency(ctx context.Context, blockedID, blockingID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if blockedID == blockingID {
		return domain.ErrSelfDependency
	}

	// Both endpoints must exist before an edge can reference them.
	if _, err := m.taskStore.GetByID(ctx, blockedID); err != nil {
		return fmt.Errorf("failed to load blocked task: %w", err)
	}
	if _, err := m.taskStore.GetByID(ctx, blockingID); err != nil {
		return fmt.Errorf("failed to load blocking task: %w", err)
	}

	err := m.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return m.addEdgeChecked(ctx, m.depStore.WithTx(tx), blockedID, blockingID)
	})
	if err != nil {
		return err
	}

	log.Debug("added dependency edge",
		slog.String("blocked_id", blockedID.String()),
		slog.String("blocking_id", blockingID.String()))
	return nil
}

// AddDependencyWithTx adds a cycle-checked edge inside the caller's
// transaction, so a larger workflow (e.g. a blocker deferral) can link a
// dependency atomically with its other writes. The same self-edge and cycle
// rejections apply; endpoints are resolved through the transaction so tasks
// created earlier in it are visible.
func (m *Manager) AddDependencyWithTx(
	ctx context.Context,
	tx *sql.Tx,
	blockedID, blockingID uuid.UUID,
) error {
	if blockedID == blockingID {
		return domain.ErrSelfDependency
	}

	taskStore := m.taskStore.WithTx(tx)
	if _, err := taskStore.GetByID(ctx, blockedID); err != nil {
		return fmt.Errorf("failed to load blocked task: %w", err)
	}
	if _, err := taskStore.GetByID(ctx, blockingID); err != nil {
		return fmt.Errorf("failed to load blocking task: %w", err)
	}

	return m.addEdgeChecked(ctx, m.depStore.WithTx(tx), blockedID, blockingID)
}

// addEdgeChecked performs the reachability check strictly before the insert:
// a rejected edge must leave the graph untouched.
func (m *Manager) addEdgeChecked(
	ctx context.Context,
	depStore store.DependencyStore,
	blockedID, blockingID uuid.UUID,
) error {
	edgeSet, err := m.loadEdgeSet(ctx, depStore)
	if err != nil {
		return err
	}

	if edgeSet.WouldCycle(blockedID, blockingID) {
		m.logger.Warn("rejected dependency edge that would create a cycle",
			slog.String("blocked_id", blockedID.String()),
			slog.String("blocking_id", blockingID.String()))
		return domain.ErrCircularDependency
	}

	edge, err := domain.NewDependencyEdge(blockedID, blockingID, m.clock.Now())
	if err != nil {
		return err
	}

	if err := depStore.AddEdge(ctx, edge); err != nil {
		if errors.Is(err, store.ErrEdgeExists) {
			return nil
		}
		return fmt.Errorf("failed to add dependency edge: %w", err)
	}
	return nil
}

// RemoveDependency deletes the edge (blocked ← blocking). Removing an edge
// that does not exist is a no-op.
func (m *Manager) RemoveDependency(ctx context.Context, blockedID, blockingID uuid.UUID) error {
	return m.tx.InTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if err := m.depStore.WithTx(tx).RemoveEdge(ctx, blockedID, blockingID); err != nil {
			return fmt.Errorf("failed to remove dependency edge: %w", err)
		}
		return nil
	})
}

// BlockingTasksOf returns the tasks directly blocking the given task whose
// state is not Completed. Completed blockers no longer block.
func (m *Manager) BlockingTasksOf(ctx context.Context, taskID uuid.UUID) ([]*domain.Task, error) {
	blockerIDs, err := m.depStore.ListBlockerIDs(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list blockers: %w", err)
	}

	blockers := make([]*domain.Task, 0, len(blockerIDs))
	for _, id := range blockerIDs {
		task, err := m.taskStore.GetByID(ctx, id)
		if err != nil {
			if store.IsNotFoundError(err) {
				// A dangling edge to a vanished task cannot block anything.
				continue
			}
			return nil, fmt.Errorf("failed to load blocker %s: %w", id, err)
		}
		if task.State == domain.StateCompleted {
			continue
		}
		blockers = append(blockers, task)
	}

	return blockers, nil
}

// IsBlocked reports whether the task has at least one incomplete blocker.
func (m *Manager) IsBlocked(ctx context.Context, taskID uuid.UUID) (bool, error) {
	blockers, err := m.BlockingTasksOf(ctx, taskID)
	if err != nil {
		return false, err
	}
	return len(blockers) > 0, nil
}

// BuildDependencyTree constructs the blocker tree rooted at the given task
// for visualization. Construction guards against revisiting a node already
// on the current path, so corrupted external data cannot hang it.
func (m *Manager) BuildDependencyTree(ctx context.Context, taskID uuid.UUID) (*graph.TreeNode, error) {
	edgeSet, err := m.loadEdgeSet(ctx, m.depStore)
	if err != nil {
		return nil, err
	}
	return edgeSet.BuildTree(taskID), nil
}

func (m *Manager) loadEdgeSet(
	ctx context.Context,
	depStore store.DependencyStore,
) (graph.EdgeSet, error) {
	edges, err := depStore.ListEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list dependency edges: %w", err)
	}

	edgeSet := graph.NewEdgeSet()
	for _, edge := range edges {
		edgeSet.Add(edge.BlockedTaskID, edge.BlockingTaskID)
	}
	return edgeSet, nil
}
