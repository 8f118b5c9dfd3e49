package graph

import (
	"context"

	"cartograph/application/ports"
	"cartograph/domain/core/valueobjects"
)

// EdgeRef is an entity reference with edge navigation. Edges are undirected
// at the data level and connect exactly two distinct nodes.
type EdgeRef struct {
	EntityRef
}

// Nodes returns the edge's two endpoints, in backend-defined order
func (e *EdgeRef) Nodes(ctx context.Context) ([2]*NodeRef, error) {
	ids, err := e.m.backend.EdgeNodes(ctx, e.id)
	if err != nil {
		return [2]*NodeRef{}, err
	}
	return [2]*NodeRef{e.m.Node(ids[0]), e.m.Node(ids[1])}, nil
}

// OtherNode returns the endpoint that is not the known node
func (e *EdgeRef) OtherNode(ctx context.Context, known valueobjects.EntityID) (*NodeRef, error) {
	other, err := ports.EdgeOtherNode(ctx, e.m.backend, e.id, known)
	if err != nil {
		return nil, err
	}
	return e.m.Node(other), nil
}

// Line returns the spatial segment between the endpoint centers
func (e *EdgeRef) Line(ctx context.Context) (valueobjects.Segment, error) {
	nodes, err := e.Nodes(ctx)
	if err != nil {
		return valueobjects.Segment{}, err
	}
	a, err := nodes[0].Center(ctx)
	if err != nil {
		return valueobjects.Segment{}, err
	}
	b, err := nodes[1].Center(ctx)
	if err != nil {
		return valueobjects.Segment{}, err
	}
	return valueobjects.NewSegment(a, b), nil
}

// IntersectingEdges finds every other edge intersecting this one in the XY
// plane, with the scan bounded by blendDistance
func (e *EdgeRef) IntersectingEdges(ctx context.Context, blendDistance float64) ([]*EdgeRef, error) {
	ids, err := ports.IntersectingEdges(ctx, e.m.backend, e.id, blendDistance)
	if err != nil {
		return nil, err
	}
	refs := make([]*EdgeRef, len(ids))
	for i, id := range ids {
		refs[i] = e.m.Edge(id)
	}
	return refs, nil
}

// Remove soft-deletes the edge and invalidates the edge/neighbor caches of
// its two endpoints
func (e *EdgeRef) Remove(ctx context.Context) error {
	ids, err := e.m.backend.EdgeNodes(ctx, e.id)
	if err != nil {
		return err
	}
	if err := ports.RemoveEdge(ctx, e.m.backend, e.id); err != nil {
		return err
	}
	e.m.invalidateAdjacency(ids[0])
	e.m.invalidateAdjacency(ids[1])
	return nil
}

// Unremove restores a soft-deleted edge, with the same endpoint invalidation
// as removal
func (e *EdgeRef) Unremove(ctx context.Context) error {
	ids, err := e.m.backend.EdgeNodes(ctx, e.id)
	if err != nil {
		return err
	}
	if err := e.m.backend.UnremoveEntity(ctx, e.id); err != nil {
		return err
	}
	e.m.invalidateAdjacency(ids[0])
	e.m.invalidateAdjacency(ids[1])
	return nil
}

// DirEdgeRef is a read-only view of an edge anchored at one of its two
// endpoints, so "the other node" resolves without re-specifying the start.
type DirEdgeRef struct {
	EdgeRef
	start valueobjects.EntityID
}

// Start returns the anchored endpoint
func (d *DirEdgeRef) Start() *NodeRef {
	return d.m.Node(d.start)
}

// DirOtherNode returns the endpoint other than the anchored start
func (d *DirEdgeRef) DirOtherNode(ctx context.Context) (*NodeRef, error) {
	return d.OtherNode(ctx, d.start)
}
