// Package conformance holds the shared behavioral test suite for map
// backends. Every backend implementation runs the same suite against its own
// factory, so the memory and sqlite engines stay interchangeable.
package conformance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartograph/application/ports"
	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	pkgerrors "cartograph/pkg/errors"
)

// Factory creates a fresh, empty backend for one subtest
type Factory func(t *testing.T) ports.Backend

// Run executes the full backend suite against backends built by the factory
func Run(t *testing.T, factory Factory) {
	t.Run("GlobalEntity", func(t *testing.T) { testGlobalEntity(t, factory(t)) })
	t.Run("Properties", func(t *testing.T) { testProperties(t, factory(t)) })
	t.Run("NodeHierarchy", func(t *testing.T) { testNodeHierarchy(t, factory(t)) })
	t.Run("Edges", func(t *testing.T) { testEdges(t, factory(t)) })
	t.Run("RemoveUnremove", func(t *testing.T) { testRemoveUnremove(t, factory(t)) })
	t.Run("RemovalFiltering", func(t *testing.T) { testRemovalFiltering(t, factory(t)) })
	t.Run("SpatialQueries", func(t *testing.T) { testSpatialQueries(t, factory(t)) })
	t.Run("CreationOrder", func(t *testing.T) { testCreationOrder(t, factory(t)) })
}

func testGlobalEntity(t *testing.T, b ports.Backend) {
	ctx := context.Background()

	valid, err := b.EntityValid(ctx, entities.GlobalID)
	require.NoError(t, err)
	assert.True(t, valid, "global entity must exist from the start")

	err = b.RemoveEntity(ctx, entities.GlobalID)
	assert.Error(t, err, "global entity must not be removable")

	require.NoError(t, b.SetPString(ctx, entities.GlobalID, "map_name", "test map"))
	value, err := b.PString(ctx, entities.GlobalID, "map_name")
	require.NoError(t, err)
	assert.Equal(t, "test map", value)
}

func testProperties(t *testing.T, b ports.Backend) {
	ctx := context.Background()

	id, err := b.CreateEntity(ctx, entities.KindNode)
	require.NoError(t, err)

	// Unset properties read as empty
	value, err := b.PString(ctx, id, "color")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, b.SetPString(ctx, id, "color", "red"))
	value, err = b.PString(ctx, id, "color")
	require.NoError(t, err)
	assert.Equal(t, "red", value)

	// Overwrite
	require.NoError(t, b.SetPString(ctx, id, "color", "blue"))
	value, err = b.PString(ctx, id, "color")
	require.NoError(t, err)
	assert.Equal(t, "blue", value)

	// Clearing back to empty is allowed and indistinguishable from unset
	require.NoError(t, b.SetPString(ctx, id, "color", ""))
	value, err = b.PString(ctx, id, "color")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	// Unknown ids are reference errors, not empty reads
	_, err = b.PString(ctx, "no-such-id", "color")
	assert.True(t, pkgerrors.IsInvalidReference(err))
	err = b.SetPString(ctx, "no-such-id", "color", "red")
	assert.True(t, pkgerrors.IsInvalidReference(err))
}

func testNodeHierarchy(t *testing.T, b ports.Backend) {
	ctx := context.Background()

	root, err := b.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)

	parent, err := b.NodeParent(ctx, root)
	require.NoError(t, err)
	assert.True(t, parent.IsZero(), "root nodes have no parent")

	nodeType, err := b.NodeType(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, entities.NodeTypeObject, nodeType)

	child, err := b.CreateNode(ctx, root, entities.NodeTypePoint)
	require.NoError(t, err)

	parent, err = b.NodeParent(ctx, child)
	require.NoError(t, err)
	assert.Equal(t, root, parent)

	children, err := b.NodeChildren(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.EntityID{child}, children)

	// Re-parent to root level
	require.NoError(t, b.SetNodeParent(ctx, child, ""))
	children, err = b.NodeChildren(ctx, root)
	require.NoError(t, err)
	assert.Empty(t, children)

	// Creating under a missing parent fails
	_, err = b.CreateNode(ctx, "no-such-id", entities.NodeTypePoint)
	assert.Error(t, err)
}

func testEdges(t *testing.T, b ports.Backend) {
	ctx := context.Background()

	a, err := b.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)
	c, err := b.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)

	// No edge yet
	between, err := b.EdgeBetween(ctx, a, c)
	require.NoError(t, err)
	assert.True(t, between.IsZero())

	edge, err := b.CreateEdge(ctx, a, c)
	require.NoError(t, err)

	nodes, err := b.EdgeNodes(ctx, edge)
	require.NoError(t, err)
	assert.Equal(t, [2]valueobjects.EntityID{a, c}, nodes)

	// Found regardless of argument order
	between, err = b.EdgeBetween(ctx, c, a)
	require.NoError(t, err)
	assert.Equal(t, edge, between)

	edgesOfA, err := b.NodeEdges(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.EntityID{edge}, edgesOfA)

	// Self-loops are rejected
	_, err = b.CreateEdge(ctx, a, a)
	assert.Error(t, err)
}

func testRemoveUnremove(t *testing.T, b ports.Backend) {
	ctx := context.Background()

	node, err := b.CreateNode(ctx, "", entities.NodeTypePoint)
	require.NoError(t, err)

	require.NoError(t, b.RemoveEntity(ctx, node))

	exists, err := b.EntityExists(ctx, node)
	require.NoError(t, err)
	assert.True(t, exists, "removed entities still exist")

	valid, err := b.EntityValid(ctx, node)
	require.NoError(t, err)
	assert.False(t, valid, "removed entities are not valid")

	require.NoError(t, b.UnremoveEntity(ctx, node))
	valid, err = b.EntityValid(ctx, node)
	require.NoError(t, err)
	assert.True(t, valid)

	exists, err = b.EntityExists(ctx, "no-such-id")
	require.NoError(t, err)
	assert.False(t, exists)
}

func testRemovalFiltering(t *testing.T, b ports.Backend) {
	ctx := context.Background()

	root, err := b.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	kept, err := b.CreateNode(ctx, root, entities.NodeTypePoint)
	require.NoError(t, err)
	removed, err := b.CreateNode(ctx, root, entities.NodeTypePoint)
	require.NoError(t, err)
	edge, err := b.CreateEdge(ctx, kept, removed)
	require.NoError(t, err)

	require.NoError(t, b.RemoveEntity(ctx, removed))

	children, err := b.NodeChildren(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.EntityID{kept}, children, "removed children are filtered")

	// The edge itself is still valid; only removed edges are filtered
	edges, err := b.NodeEdges(ctx, kept)
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.EntityID{edge}, edges)

	require.NoError(t, b.RemoveEntity(ctx, edge))
	edges, err = b.NodeEdges(ctx, kept)
	require.NoError(t, err)
	assert.Empty(t, edges)

	// Parent pointer survives removal
	parent, err := b.NodeParent(ctx, removed)
	require.NoError(t, err)
	assert.Equal(t, root, parent)

	require.NoError(t, b.UnremoveEntity(ctx, removed))
	children, err = b.NodeChildren(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, []valueobjects.EntityID{kept, removed}, children)
}

func testSpatialQueries(t *testing.T, b ports.Backend) {
	ctx := context.Background()

	makeNode := func(nodeType entities.NodeType, center valueobjects.Vector, radius float64) valueobjects.EntityID {
		id, err := b.CreateNode(ctx, "", nodeType)
		require.NoError(t, err)
		require.NoError(t, b.SetPString(ctx, id, entities.PropCenter, entities.FormatVector(center)))
		require.NoError(t, b.SetPString(ctx, id, entities.PropRadius, entities.FormatNumber(radius)))
		return id
	}

	inside := makeNode(entities.NodeTypePoint, valueobjects.NewVector(1, 1, 0), 0)
	onBoundary := makeNode(entities.NodeTypePoint, valueobjects.NewVector(5, 0, 0), 0)
	outside := makeNode(entities.NodeTypePoint, valueobjects.NewVector(9, 0, 0), 0)

	area := valueobjects.BoxAround(valueobjects.ZeroVector(), 5)
	ids, err := b.NodesInArea(ctx, area)
	require.NoError(t, err)
	assert.Contains(t, ids, inside)
	assert.Contains(t, ids, onBoundary, "box containment is inclusive")
	assert.NotContains(t, ids, outside)

	// Object queries account for the object's own radius
	farObject := makeNode(entities.NodeTypeObject, valueobjects.NewVector(12, 0, 0), 8)
	pointSameSpot := makeNode(entities.NodeTypePoint, valueobjects.NewVector(12, 0, 0), 8)

	touching, err := b.ObjectNodesTouchingArea(ctx, area, 0)
	require.NoError(t, err)
	assert.Contains(t, touching, farObject, "radius reaches the box")
	assert.NotContains(t, touching, pointSameSpot, "only object nodes qualify")

	// minRadius lifts zero-radius objects into range
	smallObject := makeNode(entities.NodeTypeObject, valueobjects.NewVector(7, 0, 0), 0)
	touching, err = b.ObjectNodesTouchingArea(ctx, area, 0)
	require.NoError(t, err)
	assert.NotContains(t, touching, smallObject)
	touching, err = b.ObjectNodesTouchingArea(ctx, area, 3)
	require.NoError(t, err)
	assert.Contains(t, touching, smallObject)
}

func testCreationOrder(t *testing.T, b ports.Backend) {
	ctx := context.Background()

	root, err := b.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)

	var created []valueobjects.EntityID
	for i := 0; i < 5; i++ {
		id, err := b.CreateNode(ctx, root, entities.NodeTypePoint)
		require.NoError(t, err)
		require.NoError(t, b.SetPString(ctx, id, entities.PropCenter, entities.FormatVector(valueobjects.ZeroVector())))
		created = append(created, id)
	}

	children, err := b.NodeChildren(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, created, children, "children come back in creation order")

	ids, err := b.NodesInArea(ctx, valueobjects.BoxAround(valueobjects.ZeroVector(), 1))
	require.NoError(t, err)
	assert.Equal(t, created, ids, "spatial scans come back in creation order")

	var edges []valueobjects.EntityID
	for i := 1; i < 5; i++ {
		edge, err := b.CreateEdge(ctx, created[0], created[i])
		require.NoError(t, err)
		edges = append(edges, edge)
	}
	incident, err := b.NodeEdges(ctx, created[0])
	require.NoError(t, err)
	assert.Equal(t, edges, incident, "edges come back in creation order")
}
