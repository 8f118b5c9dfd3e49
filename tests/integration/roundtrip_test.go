package integration_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartograph/application/actions"
	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	"cartograph/domain/graph"
	"cartograph/infrastructure/persistence/sqlite"
)

// Draws a small shape on a real database file, cleans it up, undoes the
// cleanup and verifies the drawing came back, then reopens the file to check
// everything persisted.
func TestCleanupRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "map.db")

	backend, err := sqlite.New(path, nil)
	require.NoError(t, err)
	m := graph.NewMap(backend, nil)
	history := actions.NewHistory(m, nil)

	object, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)

	makePoint := func(center valueobjects.Vector) *graph.NodeRef {
		node, err := m.CreateNode(ctx, object.ID(), entities.NodeTypePoint)
		require.NoError(t, err)
		require.NoError(t, node.SetCenter(ctx, center))
		require.NoError(t, node.SetRadius(ctx, 4))
		return node
	}

	// A triangle with a near-duplicate of one corner
	corner1 := makePoint(valueobjects.NewVector(0, 0, 0))
	corner2 := makePoint(valueobjects.NewVector(10, 0, 0))
	corner3 := makePoint(valueobjects.NewVector(5, 8, 0))
	duplicate := makePoint(valueobjects.NewVector(0.5, 0, 0))

	require.NoError(t, history.Do(ctx, actions.CreateEdge{A: corner1.ID(), B: corner2.ID()}))
	require.NoError(t, history.Do(ctx, actions.CreateEdge{A: corner2.ID(), B: corner3.ID()}))
	require.NoError(t, history.Do(ctx, actions.CreateEdge{A: corner3.ID(), B: duplicate.ID()}))

	require.NoError(t, history.Do(ctx, actions.Cleanup{Node: object.ID()}))

	// The duplicate merged into corner1 and its edge to corner3 was re-homed
	valid, err := duplicate.Valid(ctx)
	require.NoError(t, err)
	assert.False(t, valid)
	rehomed, err := m.EdgeBetween(ctx, corner1.ID(), corner3.ID())
	require.NoError(t, err)
	assert.NotNil(t, rehomed)

	radius, err := object.Radius(ctx)
	require.NoError(t, err)
	assert.Greater(t, radius, 0.0)

	// Undo restores the duplicate and drops the re-homed edge
	require.NoError(t, history.Undo(ctx))

	valid, err = duplicate.Valid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
	between, err := m.EdgeBetween(ctx, corner1.ID(), corner3.ID())
	require.NoError(t, err)
	assert.Nil(t, between)
	original, err := m.EdgeBetween(ctx, corner3.ID(), duplicate.ID())
	require.NoError(t, err)
	assert.NotNil(t, original)

	// Redo, then check the cleaned state survives a reopen
	require.NoError(t, history.Redo(ctx))
	require.NoError(t, backend.Close())

	backend, err = sqlite.New(path, nil)
	require.NoError(t, err)
	defer backend.Close()
	m = graph.NewMap(backend, nil)

	valid, err = m.Node(duplicate.ID()).Valid(ctx)
	require.NoError(t, err)
	assert.False(t, valid)
	rehomed, err = m.EdgeBetween(ctx, corner1.ID(), corner3.ID())
	require.NoError(t, err)
	assert.NotNil(t, rehomed)

	points, err := m.Node(object.ID()).Children(ctx)
	require.NoError(t, err)
	assert.Len(t, points, 3)
}
