package actions

import (
	"context"

	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	"cartograph/domain/graph"
)

// Cleanup reduces the point-type descendants of an object node by merging
// points that lie too close together, then recomputes the object's bounding
// geometry. Edges incident to a merged-away point are re-homed onto the point
// it merged into, so the drawn shape stays connected.
type Cleanup struct {
	Node valueobjects.EntityID `validate:"required"`
}

// pointInfo describes one point descendant during a cleanup pass
type pointInfo struct {
	ref    *graph.NodeRef
	radius float64
	center valueobjects.Vector
}

// Perform runs the cleanup and returns an inverse restoring the merged
// points, the previous geometry and the pre-existing edge set
func (a Cleanup) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	object := m.Node(a.Node)

	points, err := collectPoints(ctx, object)
	if err != nil {
		return nil, err
	}

	marked := make([]bool, len(points))
	type mergePair struct {
		keeper, removed int
	}
	var merges []mergePair

	// Single pass. The first unmarked point becomes a keeper and immediately
	// claims every remaining point within merge range; a claimed point can
	// therefore never become a keeper itself. Because the distance test is
	// symmetric, no later keeper can claim an earlier one. The proximity
	// threshold is strict: points exactly (r1+r2)/4 apart do not merge.
	var sum valueobjects.Vector
	kept := 0
	for i := range points {
		if marked[i] {
			continue
		}
		sum = sum.Add(points[i].center)
		kept++
		for j := range points {
			if j == i || marked[j] {
				continue
			}
			threshold := (points[i].radius + points[j].radius) / 4
			if points[i].center.DistanceTo(points[j].center) < threshold {
				marked[j] = true
				merges = append(merges, mergePair{keeper: i, removed: j})
			}
		}
	}

	center := valueobjects.ZeroVector()
	if kept > 0 {
		center = sum.Scale(1 / float64(kept))
	}
	radius := 0.0
	for i := range points {
		if marked[i] {
			continue
		}
		if d := center.DistanceTo(points[i].center); d >= radius {
			radius = d
		}
	}

	// Re-home edges before the merged points are removed: every neighbor of
	// a removed point gets an edge to its keeper, unless one already exists.
	var created []valueobjects.EntityID
	for _, pair := range merges {
		keeper := points[pair.keeper].ref
		neighbors, err := points[pair.removed].ref.Neighbors(ctx)
		if err != nil {
			return nil, err
		}
		for _, neighbor := range neighbors {
			if neighbor.ID() == keeper.ID() {
				continue
			}
			existing, err := m.EdgeBetween(ctx, keeper.ID(), neighbor.ID())
			if err != nil {
				return nil, err
			}
			if existing != nil {
				continue
			}
			edge, err := m.CreateEdge(ctx, keeper.ID(), neighbor.ID())
			if err != nil {
				return nil, err
			}
			created = append(created, edge.ID())
		}
	}

	// Apply removal and geometry as one bulk, performed directly rather than
	// through a history so the compound edit stays a single undo unit for
	// the caller.
	inner := make([]Action, 0, len(merges)+1)
	for i := range points {
		if marked[i] {
			inner = append(inner, RemoveNode{ID: points[i].ref.ID()})
		}
	}
	inner = append(inner, SetGeometry{
		Node:            a.Node,
		Center:          center,
		EffectiveCenter: center,
		Radius:          radius,
	})
	innerInverse, err := Bulk{Actions: inner}.Perform(ctx, m)
	if err != nil {
		return nil, err
	}

	// The inverse first rolls back the removals and the geometry change,
	// then deletes the edges created by re-homing. The inner bulk's own
	// inverse already encodes its rollback in the right order; the created
	// edges are the one effect it does not know about.
	removeCreated := make([]Action, len(created))
	for i, id := range created {
		removeCreated[i] = RemoveEdge{ID: id}
	}
	return Bulk{Actions: []Action{innerInverse, Bulk{Actions: removeCreated}}}, nil
}

// collectPoints gathers every point-type descendant of the object with its
// radius and center
func collectPoints(ctx context.Context, object *graph.NodeRef) ([]pointInfo, error) {
	var points []pointInfo
	for node, err := range object.Descendants(ctx) {
		if err != nil {
			return nil, err
		}
		nodeType, err := node.NodeType(ctx)
		if err != nil {
			return nil, err
		}
		if nodeType != entities.NodeTypePoint {
			continue
		}
		radius, err := node.Radius(ctx)
		if err != nil {
			return nil, err
		}
		center, err := node.Center(ctx)
		if err != nil {
			return nil, err
		}
		points = append(points, pointInfo{ref: node, radius: radius, center: center})
	}
	return points, nil
}
