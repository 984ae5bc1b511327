package graph_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/focal-api/internal/domain/graph"
)

func TestEdgeSetAddRemove(t *testing.T) {
	t.Parallel()

	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	edges := graph.NewEdgeSet()
	edges.Add(a, b)
	edges.Add(a, c)

	blockers := edges.Blockers(a)
	assert.Len(t, blockers, 2)
	assert.Contains(t, blockers, b)
	assert.Contains(t, blockers, c)

	edges.Remove(a, b)
	assert.Equal(t, []uuid.UUID{c}, edges.Blockers(a))

	// Removing an absent edge is a no-op.
	edges.Remove(a, b)
	edges.Remove(b, c)
	assert.Equal(t, []uuid.UUID{c}, edges.Blockers(a))

	assert.Nil(t, edges.Blockers(b))
}

func TestEdgeSetBlockersSorted(t *testing.T) {
	t.Parallel()

	root := uuid.New()
	edges := graph.NewEdgeSet()
	for i := 0; i < 8; i++ {
		edges.Add(root, uuid.New())
	}

	blockers := edges.Blockers(root)
	require.Len(t, blockers, 8)
	for i := 1; i < len(blockers); i++ {
		assert.Less(t, blockers[i-1].String(), blockers[i].String())
	}
}

func TestEdgeSetReachable(t *testing.T) {
	t.Parallel()

	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	d := uuid.New()

	// a depends on b, b depends on c.
	edges := graph.NewEdgeSet()
	edges.Add(a, b)
	edges.Add(b, c)

	assert.True(t, edges.Reachable(a, b))
	assert.True(t, edges.Reachable(a, c), "transitive reachability")
	assert.False(t, edges.Reachable(c, a), "edges are directed")
	assert.False(t, edges.Reachable(a, d))
	assert.True(t, edges.Reachable(a, a), "every node reaches itself")
}

func TestEdgeSetWouldCycle(t *testing.T) {
	t.Parallel()

	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	edges := graph.NewEdgeSet()
	edges.Add(a, b)
	edges.Add(b, c)

	assert.True(t, edges.WouldCycle(c, a), "closing the chain is a cycle")
	assert.True(t, edges.WouldCycle(b, a), "direct back edge is a cycle")
	assert.False(t, edges.WouldCycle(a, c), "shortcut along existing direction is fine")
	assert.False(t, edges.WouldCycle(c, uuid.New()))
}

func TestBuildTree(t *testing.T) {
	t.Parallel()

	a := uuid.New()
	b := uuid.New()
	c := uuid.New()
	d := uuid.New()

	// a depends on b and c; b depends on d.
	edges := graph.NewEdgeSet()
	edges.Add(a, b)
	edges.Add(a, c)
	edges.Add(b, d)

	tree := edges.BuildTree(a)
	require.NotNil(t, tree)
	assert.Equal(t, a, tree.TaskID)
	require.Len(t, tree.Blockers, 2)

	byID := map[uuid.UUID]*graph.TreeNode{}
	for _, child := range tree.Blockers {
		byID[child.TaskID] = child
	}

	require.Contains(t, byID, b)
	require.Contains(t, byID, c)
	require.Len(t, byID[b].Blockers, 1)
	assert.Equal(t, d, byID[b].Blockers[0].TaskID)
	assert.Empty(t, byID[c].Blockers)
}

func TestBuildTreeLeaf(t *testing.T) {
	t.Parallel()

	edges := graph.NewEdgeSet()
	leaf := uuid.New()

	tree := edges.BuildTree(leaf)
	require.NotNil(t, tree)
	assert.Equal(t, leaf, tree.TaskID)
	assert.Empty(t, tree.Blockers)
}
