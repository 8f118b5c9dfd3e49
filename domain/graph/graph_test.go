package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	"cartograph/domain/graph"
	"cartograph/infrastructure/persistence/memory"
)

func newMap(t *testing.T) *graph.Map {
	t.Helper()
	return graph.NewMap(memory.New(nil), nil)
}

func TestPropertyCacheSharedById(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	node, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)

	require.NoError(t, node.SetPString(ctx, "label", "lighthouse"))

	// A fresh reference to the same id shares the cache entry
	again := m.Entity(node.ID())
	value, err := again.PString(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "lighthouse", value)

	// Reads are served from the cache: a write that bypasses the reference
	// layer is not observed
	require.NoError(t, m.Backend().SetPString(ctx, node.ID(), "label", "buoy"))
	value, err = node.PString(ctx, "label")
	require.NoError(t, err)
	assert.Equal(t, "lighthouse", value)
}

func TestTypedProperties(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	node, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)

	// Unset properties decode to zero values
	radius, err := node.Radius(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, radius)
	center, err := node.Center(ctx)
	require.NoError(t, err)
	assert.True(t, center.IsZero())

	require.NoError(t, node.SetRadius(ctx, 2.5))
	require.NoError(t, node.SetCenter(ctx, valueobjects.NewVector(1.5, -3, 0.25)))
	require.NoError(t, node.SetLayer(ctx, "terrain"))

	radius, err = node.Radius(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2.5, radius)
	center, err = node.Center(ctx)
	require.NoError(t, err)
	assert.True(t, center.Equals(valueobjects.NewVector(1.5, -3, 0.25)))
	layer, err := node.Layer(ctx)
	require.NoError(t, err)
	assert.Equal(t, "terrain", layer)
}

func TestGlobalProperties(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	global := m.Global()
	require.NoError(t, global.SetPNumber(ctx, "zoom", 1.25))
	zoom, err := global.PNumber(ctx, "zoom")
	require.NoError(t, err)
	assert.Equal(t, 1.25, zoom)

	err = global.Remove(ctx)
	assert.Error(t, err)
}

func TestChildrenCacheInvalidation(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	root, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	first, err := m.CreateNode(ctx, root.ID(), entities.NodeTypePoint)
	require.NoError(t, err)

	children, err := root.Children(ctx)
	require.NoError(t, err)
	require.Len(t, children, 1)

	// Creating a second child under the cached parent is observed
	second, err := m.CreateNode(ctx, root.ID(), entities.NodeTypePoint)
	require.NoError(t, err)
	children, err = root.Children(ctx)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, first.ID(), children[0].ID())
	assert.Equal(t, second.ID(), children[1].ID())

	// Re-parenting invalidates both the old and the new parent's lists
	other, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	_, err = other.Children(ctx)
	require.NoError(t, err)

	require.NoError(t, second.SetParent(ctx, other.ID()))

	children, err = root.Children(ctx)
	require.NoError(t, err)
	assert.Len(t, children, 1)
	children, err = other.Children(ctx)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, second.ID(), children[0].ID())

	parent, err := second.Parent(ctx)
	require.NoError(t, err)
	assert.Equal(t, other.ID(), parent.ID())
}

func TestAdjacencyCacheInvalidation(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	a, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	b, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	c, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)

	neighbors, err := a.Neighbors(ctx)
	require.NoError(t, err)
	assert.Empty(t, neighbors)

	// Creating an edge is observed on both cached endpoints
	_, err = m.CreateEdge(ctx, a.ID(), b.ID())
	require.NoError(t, err)
	neighbors, err = a.Neighbors(ctx)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, b.ID(), neighbors[0].ID())

	// An unrelated edge does not disturb a's cache but fills c's
	_, err = m.CreateEdge(ctx, b.ID(), c.ID())
	require.NoError(t, err)
	neighbors, err = b.Neighbors(ctx)
	require.NoError(t, err)
	assert.Len(t, neighbors, 2)

	edges, err := a.Edges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, a.ID(), edges[0].Start().ID())
	other, err := edges[0].DirOtherNode(ctx)
	require.NoError(t, err)
	assert.Equal(t, b.ID(), other.ID())
}

func TestNodeRemoveSweepsNeighborCaches(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	a, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	b, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	_, err = m.CreateEdge(ctx, a.ID(), b.ID())
	require.NoError(t, err)

	// Warm both adjacency caches
	_, err = a.Neighbors(ctx)
	require.NoError(t, err)
	_, err = b.Neighbors(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Remove(ctx))

	neighbors, err := a.Neighbors(ctx)
	require.NoError(t, err)
	assert.Empty(t, neighbors, "removed neighbor disappears from cached adjacency")

	require.NoError(t, b.Unremove(ctx))
	neighbors, err = a.Neighbors(ctx)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, b.ID(), neighbors[0].ID())
}

func TestUnremoveReachesRebuiltCaches(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	a, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	b, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	_, err = m.CreateEdge(ctx, a.ID(), b.ID())
	require.NoError(t, err)

	require.NoError(t, b.Remove(ctx))

	// a rebuilds its adjacency cache while b is gone, severing the cached
	// link between them
	neighbors, err := a.Neighbors(ctx)
	require.NoError(t, err)
	require.Empty(t, neighbors)

	require.NoError(t, b.Unremove(ctx))

	neighbors, err = a.Neighbors(ctx)
	require.NoError(t, err)
	require.Len(t, neighbors, 1)
	assert.Equal(t, b.ID(), neighbors[0].ID())
}

func TestExistsAndValidAreNotCached(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	node, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)

	valid, err := node.Valid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)

	// Remove behind the reference layer's back; validity reads through
	require.NoError(t, m.Backend().RemoveEntity(ctx, node.ID()))
	valid, err = node.Valid(ctx)
	require.NoError(t, err)
	assert.False(t, valid)
	exists, err := node.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDescendantsPreorder(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	root, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	left, err := m.CreateNode(ctx, root.ID(), entities.NodeTypeObject)
	require.NoError(t, err)
	right, err := m.CreateNode(ctx, root.ID(), entities.NodeTypeObject)
	require.NoError(t, err)
	leftChild, err := m.CreateNode(ctx, left.ID(), entities.NodeTypePoint)
	require.NoError(t, err)

	var order []valueobjects.EntityID
	for node, err := range root.Descendants(ctx) {
		require.NoError(t, err)
		order = append(order, node.ID())
	}
	assert.Equal(t, []valueobjects.EntityID{left.ID(), leftChild.ID(), right.ID()}, order)

	// SelfAndDescendants yields the root first
	order = order[:0]
	for node, err := range root.SelfAndDescendants(ctx) {
		require.NoError(t, err)
		order = append(order, node.ID())
	}
	assert.Equal(t, []valueobjects.EntityID{root.ID(), left.ID(), leftChild.ID(), right.ID()}, order)
}

func TestDescendantsRestartable(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	root, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	_, err = m.CreateNode(ctx, root.ID(), entities.NodeTypePoint)
	require.NoError(t, err)

	seq := root.Descendants(ctx)

	count := 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 1, count)

	// A node added between traversals is observed by the next range
	_, err = m.CreateNode(ctx, root.ID(), entities.NodeTypePoint)
	require.NoError(t, err)

	count = 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)

	// Breaking early stops the walk without error
	count = 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestEdgeRefs(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	a, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	require.NoError(t, a.SetCenter(ctx, valueobjects.NewVector(0, 0, 0)))
	b, err := m.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	require.NoError(t, b.SetCenter(ctx, valueobjects.NewVector(4, 0, 0)))

	between, err := m.EdgeBetween(ctx, a.ID(), b.ID())
	require.NoError(t, err)
	assert.Nil(t, between)

	edge, err := m.CreateEdge(ctx, a.ID(), b.ID())
	require.NoError(t, err)

	between, err = m.EdgeBetween(ctx, b.ID(), a.ID())
	require.NoError(t, err)
	require.NotNil(t, between)
	assert.Equal(t, edge.ID(), between.ID())

	nodes, err := edge.Nodes(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.ID(), nodes[0].ID())
	assert.Equal(t, b.ID(), nodes[1].ID())

	other, err := edge.OtherNode(ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, b.ID(), other.ID())

	line, err := edge.Line(ctx)
	require.NoError(t, err)
	assert.True(t, line.A().Equals(valueobjects.NewVector(0, 0, 0)))
	assert.True(t, line.B().Equals(valueobjects.NewVector(4, 0, 0)))

	// Removing the edge updates both endpoints' cached adjacency
	_, err = a.Neighbors(ctx)
	require.NoError(t, err)
	require.NoError(t, edge.Remove(ctx))
	neighbors, err := a.Neighbors(ctx)
	require.NoError(t, err)
	assert.Empty(t, neighbors)

	require.NoError(t, edge.Unremove(ctx))
	neighbors, err = a.Neighbors(ctx)
	require.NoError(t, err)
	assert.Len(t, neighbors, 1)
}
