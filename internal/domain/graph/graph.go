// Package graph implements the pure directed-graph algorithms behind the
// dependency manager: an id-based edge set, reachability checks used for
// cycle prevention, and dependency tree construction.
//
// Edges point from a blocked task to the task blocking it, so traversal
// follows "depends on" chains. Cycle checks run strictly before insertion;
// the edge set is never allowed to contain a cycle.
package graph

import (
	"sort"

	"github.com/google/uuid"
)

// EdgeSet is an adjacency-set view of the dependency graph, keyed by blocked
// task id with the set of tasks blocking it as values.
type EdgeSet map[uuid.UUID]map[uuid.UUID]struct{}

// NewEdgeSet creates an empty EdgeSet.
func NewEdgeSet() EdgeSet {
	return make(EdgeSet)
}

// Add inserts the edge (blocked ← blocking). It performs no cycle checking;
// callers must check WouldCycle first.
func (e EdgeSet) Add(blockedID, blockingID uuid.UUID) {
	blockers, ok := e[blockedID]
	if !ok {
		blockers = make(map[uuid.UUID]struct{})
		e[blockedID] = blockers
	}
	blockers[blockingID] = struct{}{}
}

// Remove deletes the edge (blocked ← blocking). Removing an absent edge is a
// no-op.
func (e EdgeSet) Remove(blockedID, blockingID uuid.UUID) {
	blockers, ok := e[blockedID]
	if !ok {
		return
	}
	delete(blockers, blockingID)
	if len(blockers) == 0 {
		delete(e, blockedID)
	}
}

// Blockers returns the ids directly blocking the given task, sorted for
// deterministic iteration.
func (e EdgeSet) Blockers(blockedID uuid.UUID) []uuid.UUID {
	set, ok := e[blockedID]
	if !ok {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// Reachable reports whether target is reachable from start by following
// blocking chains (depth-first along "depends on" edges).
func (e EdgeSet) Reachable(start, target uuid.UUID) bool {
	if start == target {
		return true
	}

	visited := make(map[uuid.UUID]struct{})
	stack := []uuid.UUID{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		for blocker := range e[current] {
			if blocker == target {
				return true
			}
			stack = append(stack, blocker)
		}
	}

	return false
}

// WouldCycle reports whether inserting the edge (blocked ← blocking) would
// close a cycle: true iff blocked is already reachable from blocking along
// existing blocking chains.
func (e EdgeSet) WouldCycle(blockedID, blockingID uuid.UUID) bool {
	return e.Reachable(blockingID, blockedID)
}

// TreeNode is one node of a dependency visualization tree rooted at a task,
// with its blockers as children.
type TreeNode struct {
	TaskID   uuid.UUID   `json:"task_id"`
	Blockers []*TreeNode `json:"blockers,omitempty"`
}

// BuildTree constructs the dependency tree rooted at taskID. Nodes already on
// the current path are not revisited; the acyclicity invariant should make
// this guard unreachable, but it keeps tree construction safe against
// corrupted external data.
func (e EdgeSet) BuildTree(taskID uuid.UUID) *TreeNode {
	onPath := make(map[uuid.UUID]struct{})
	return e.buildSubtree(taskID, onPath)
}

func (e EdgeSet) buildSubtree(taskID uuid.UUID, onPath map[uuid.UUID]struct{}) *TreeNode {
	node := &TreeNode{TaskID: taskID}

	onPath[taskID] = struct{}{}
	defer delete(onPath, taskID)

	for _, blocker := range e.Blockers(taskID) {
		if _, revisit := onPath[blocker]; revisit {
			continue
		}
		node.Blockers = append(node.Blockers, e.buildSubtree(blocker, onPath))
	}

	return node
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
