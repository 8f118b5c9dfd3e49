package ports

import (
	"context"

	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	pkgerrors "cartograph/pkg/errors"
)

// Backend-independent algorithms layered on the native contract. Any
// conforming backend gets these for free; engines with a cheaper native path
// can expose the optional upgrade interfaces instead.

// NodeHasChildren checks whether the node has at least one valid child
func NodeHasChildren(ctx context.Context, b Backend, id valueobjects.EntityID) (bool, error) {
	children, err := b.NodeChildren(ctx, id)
	if err != nil {
		return false, err
	}
	return len(children) > 0, nil
}

// EdgeOtherNode resolves the endpoint of an edge that is not the known node
func EdgeOtherNode(ctx context.Context, b Backend, edge, known valueobjects.EntityID) (valueobjects.EntityID, error) {
	nodes, err := b.EdgeNodes(ctx, edge)
	if err != nil {
		return "", err
	}
	switch known {
	case nodes[0]:
		return nodes[1], nil
	case nodes[1]:
		return nodes[0], nil
	}
	return "", pkgerrors.NewInconsistentGraphError(
		"node " + known.String() + " is not an endpoint of edge " + edge.String())
}

// RemoveEdge removes an edge, using the backend's native edge removal when it
// offers one and the generic entity removal otherwise
func RemoveEdge(ctx context.Context, b Backend, id valueobjects.EntityID) error {
	if r, ok := b.(EdgeRemover); ok {
		return r.RemoveEdge(ctx, id)
	}
	return b.RemoveEntity(ctx, id)
}

// RemoveNode removes a node, using the backend's native node removal when it
// offers one and the generic entity removal otherwise
func RemoveNode(ctx context.Context, b Backend, id valueobjects.EntityID) error {
	if r, ok := b.(NodeRemover); ok {
		return r.RemoveNode(ctx, id)
	}
	return b.RemoveEntity(ctx, id)
}

// NodeCenter reads and decodes a node's center property
func NodeCenter(ctx context.Context, b Backend, id valueobjects.EntityID) (valueobjects.Vector, error) {
	raw, err := b.PString(ctx, id, entities.PropCenter)
	if err != nil {
		return valueobjects.Vector{}, err
	}
	return entities.ParseVector(raw)
}

// NearbyNodes returns all valid nodes inside the axis-aligned box of
// half-extent blendDistance around the node's center, excluding the node
// itself
func NearbyNodes(ctx context.Context, b Backend, id valueobjects.EntityID, blendDistance float64) ([]valueobjects.EntityID, error) {
	center, err := NodeCenter(ctx, b, id)
	if err != nil {
		return nil, err
	}
	candidates, err := b.NodesInArea(ctx, valueobjects.BoxAround(center, blendDistance))
	if err != nil {
		return nil, err
	}
	nearby := make([]valueobjects.EntityID, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate != id {
			nearby = append(nearby, candidate)
		}
	}
	return nearby, nil
}

// ConnectedNodes resolves the other endpoint of every edge incident to the
// node
func ConnectedNodes(ctx context.Context, b Backend, id valueobjects.EntityID) ([]valueobjects.EntityID, error) {
	edges, err := b.NodeEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	connected := make([]valueobjects.EntityID, 0, len(edges))
	for _, edge := range edges {
		other, err := EdgeOtherNode(ctx, b, edge, id)
		if err != nil {
			return nil, err
		}
		connected = append(connected, other)
	}
	return connected, nil
}

// EdgeSegment returns the spatial segment between an edge's endpoint centers
func EdgeSegment(ctx context.Context, b Backend, id valueobjects.EntityID) (valueobjects.Segment, error) {
	nodes, err := b.EdgeNodes(ctx, id)
	if err != nil {
		return valueobjects.Segment{}, err
	}
	a, err := NodeCenter(ctx, b, nodes[0])
	if err != nil {
		return valueobjects.Segment{}, err
	}
	c, err := NodeCenter(ctx, b, nodes[1])
	if err != nil {
		return valueobjects.Segment{}, err
	}
	return valueobjects.NewSegment(a, c), nil
}

// IntersectingEdges finds every other edge whose segment intersects the given
// edge's segment in the XY plane. The scan is bounded by expanding the edge's
// bounding box by blendDistance in every axis and inspecting the incident
// edges of all nodes inside it; each qualifying edge is yielded exactly once
// and the querying edge never is.
func IntersectingEdges(ctx context.Context, b Backend, id valueobjects.EntityID, blendDistance float64) ([]valueobjects.EntityID, error) {
	segment, err := EdgeSegment(ctx, b, id)
	if err != nil {
		return nil, err
	}

	area := segment.Bounds().Expand(blendDistance)
	nodes, err := b.NodesInArea(ctx, area)
	if err != nil {
		return nil, err
	}

	seen := map[valueobjects.EntityID]bool{id: true}
	var intersecting []valueobjects.EntityID
	for _, node := range nodes {
		edges, err := b.NodeEdges(ctx, node)
		if err != nil {
			return nil, err
		}
		for _, edge := range edges {
			if seen[edge] {
				continue
			}
			seen[edge] = true
			other, err := EdgeSegment(ctx, b, edge)
			if err != nil {
				return nil, err
			}
			if segment.Intersects2D(other) {
				intersecting = append(intersecting, edge)
			}
		}
	}
	return intersecting, nil
}
