package actions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartograph/application/actions"
	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	"cartograph/domain/graph"
)

func makeSizedPoint(t *testing.T, m *graph.Map, parent valueobjects.EntityID, center valueobjects.Vector, radius float64) *graph.NodeRef {
	t.Helper()
	node := makePoint(t, m, parent, center)
	require.NoError(t, node.SetRadius(context.Background(), radius))
	return node
}

func TestCleanupGeometryWithoutMerging(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	object, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	a := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(0, 0, 0), 1)
	b := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(10, 0, 0), 1)

	_, err = actions.Cleanup{Node: object.ID()}.Perform(ctx, m)
	require.NoError(t, err)

	// Points 10 apart with merge range 0.5 both survive
	valid, err := a.Valid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
	valid, err = b.Valid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)

	center, err := object.Center(ctx)
	require.NoError(t, err)
	assert.True(t, center.Equals(valueobjects.NewVector(5, 0, 0)))
	effective, err := object.EffectiveCenter(ctx)
	require.NoError(t, err)
	assert.True(t, effective.Equals(center))
	radius, err := object.Radius(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5.0, radius)
}

func TestCleanupMergeThreshold(t *testing.T) {
	// Two points of radius 4: merge range is (4+4)/4 = 2
	cases := []struct {
		name     string
		distance float64
		merged   bool
	}{
		{"well inside range", 1.0, true},
		{"just inside range", 1.999, true},
		{"exactly at range", 2.0, false},
		{"outside range", 2.5, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newMap(t)
			ctx := context.Background()

			object, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
			require.NoError(t, err)
			first := makeSizedPoint(t, m, object.ID(), valueobjects.ZeroVector(), 4)
			second := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(tc.distance, 0, 0), 4)

			_, err = actions.Cleanup{Node: object.ID()}.Perform(ctx, m)
			require.NoError(t, err)

			// The earlier point always survives
			valid, err := first.Valid(ctx)
			require.NoError(t, err)
			assert.True(t, valid)

			valid, err = second.Valid(ctx)
			require.NoError(t, err)
			assert.Equal(t, !tc.merged, valid)

			center, err := object.Center(ctx)
			require.NoError(t, err)
			if tc.merged {
				assert.True(t, center.Equals(valueobjects.ZeroVector()))
			} else {
				assert.True(t, center.Equals(valueobjects.NewVector(tc.distance/2, 0, 0)))
			}
		})
	}
}

func TestCleanupRehomesEdges(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	object, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	keeper := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(0, 0, 0), 4)
	merged := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(1, 0, 0), 4)
	far := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(10, 0, 0), 1)
	other := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(-10, 0, 0), 1)

	_, err = m.CreateEdge(ctx, merged.ID(), far.ID())
	require.NoError(t, err)
	_, err = m.CreateEdge(ctx, merged.ID(), keeper.ID())
	require.NoError(t, err)
	existing, err := m.CreateEdge(ctx, keeper.ID(), other.ID())
	require.NoError(t, err)
	_, err = m.CreateEdge(ctx, merged.ID(), other.ID())
	require.NoError(t, err)

	_, err = actions.Cleanup{Node: object.ID()}.Perform(ctx, m)
	require.NoError(t, err)

	valid, err := merged.Valid(ctx)
	require.NoError(t, err)
	assert.False(t, valid)

	// The merged point's link to far is re-homed onto the keeper
	rehomed, err := m.EdgeBetween(ctx, keeper.ID(), far.ID())
	require.NoError(t, err)
	assert.NotNil(t, rehomed)

	// No self-link to the keeper, no duplicate of the existing keeper-other
	// edge
	between, err := m.EdgeBetween(ctx, keeper.ID(), other.ID())
	require.NoError(t, err)
	require.NotNil(t, between)
	assert.Equal(t, existing.ID(), between.ID())

	edges, err := keeper.Edges(ctx)
	require.NoError(t, err)
	assert.Len(t, edges, 3, "merged-keeper, keeper-other and the re-homed keeper-far")
}

func TestCleanupUndoRedo(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()
	history := actions.NewHistory(m, nil)

	object, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	keeper := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(0, 0, 0), 4)
	merged := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(1, 0, 0), 4)
	far := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(10, 0, 0), 1)
	_, err = m.CreateEdge(ctx, merged.ID(), far.ID())
	require.NoError(t, err)

	require.NoError(t, history.Do(ctx, actions.Cleanup{Node: object.ID()}))

	valid, err := merged.Valid(ctx)
	require.NoError(t, err)
	require.False(t, valid)
	rehomed, err := m.EdgeBetween(ctx, keeper.ID(), far.ID())
	require.NoError(t, err)
	require.NotNil(t, rehomed)

	// Undo restores the merged point, the old geometry and removes the
	// re-homed edge
	require.NoError(t, history.Undo(ctx))

	valid, err = merged.Valid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
	between, err := m.EdgeBetween(ctx, keeper.ID(), far.ID())
	require.NoError(t, err)
	assert.Nil(t, between)
	center, err := object.Center(ctx)
	require.NoError(t, err)
	assert.True(t, center.IsZero())
	radius, err := object.Radius(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, radius)
	originalEdge, err := m.EdgeBetween(ctx, merged.ID(), far.ID())
	require.NoError(t, err)
	assert.NotNil(t, originalEdge)

	// Redo replays the whole cleanup
	require.NoError(t, history.Redo(ctx))

	valid, err = merged.Valid(ctx)
	require.NoError(t, err)
	assert.False(t, valid)
	between, err = m.EdgeBetween(ctx, keeper.ID(), far.ID())
	require.NoError(t, err)
	assert.NotNil(t, between)
	center, err = object.Center(ctx)
	require.NoError(t, err)
	assert.True(t, center.Equals(valueobjects.NewVector(5, 0, 0)))
}

func TestCleanupEmptyObject(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	object, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)

	inverse, err := actions.Cleanup{Node: object.ID()}.Perform(ctx, m)
	require.NoError(t, err)
	require.NotNil(t, inverse)

	center, err := object.Center(ctx)
	require.NoError(t, err)
	assert.True(t, center.IsZero())
	radius, err := object.Radius(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, radius)
}

func TestCleanupNestedPoints(t *testing.T) {
	m := newMap(t)
	ctx := context.Background()

	// Points under an intermediate child object are part of the cleanup;
	// the intermediate object node itself is not
	object, err := m.CreateNode(ctx, "", entities.NodeTypeObject)
	require.NoError(t, err)
	top := makeSizedPoint(t, m, object.ID(), valueobjects.NewVector(0, 0, 0), 4)
	sub, err := m.CreateNode(ctx, object.ID(), entities.NodeTypeObject)
	require.NoError(t, err)
	nested := makeSizedPoint(t, m, sub.ID(), valueobjects.NewVector(1, 0, 0), 4)

	_, err = actions.Cleanup{Node: object.ID()}.Perform(ctx, m)
	require.NoError(t, err)

	valid, err := top.Valid(ctx)
	require.NoError(t, err)
	assert.True(t, valid)
	valid, err = nested.Valid(ctx)
	require.NoError(t, err)
	assert.False(t, valid, "nested point within merge range is claimed")
	valid, err = sub.Valid(ctx)
	require.NoError(t, err)
	assert.True(t, valid, "object nodes are never merged")
}
