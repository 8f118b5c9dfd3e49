package graph

import (
	"context"
	"iter"

	"cartograph/application/ports"
	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
)

// NodeRef is an entity reference with node navigation: tree position,
// adjacency and the spatial attributes every node carries.
type NodeRef struct {
	EntityRef
}

// NodeType returns the node's type tag
func (n *NodeRef) NodeType(ctx context.Context) (entities.NodeType, error) {
	return n.m.backend.NodeType(ctx, n.id)
}

// Parent returns the parent node, nil for a root node. Memoized.
func (n *NodeRef) Parent(ctx context.Context) (*NodeRef, error) {
	id, err := n.parentID(ctx)
	if err != nil {
		return nil, err
	}
	if id.IsZero() {
		return nil, nil
	}
	return n.m.Node(id), nil
}

func (n *NodeRef) parentID(ctx context.Context) (valueobjects.EntityID, error) {
	if id, ok := n.m.cachedParent(n.id); ok {
		return id, nil
	}
	id, err := n.m.backend.NodeParent(ctx, n.id)
	if err != nil {
		return "", err
	}
	n.m.storeParent(n.id, id)
	return id, nil
}

// SetParent re-parents the node. Pass a zero parent id to make it a root.
// Invalidates the children caches of the old and the new parent, nothing
// else.
func (n *NodeRef) SetParent(ctx context.Context, parent valueobjects.EntityID) error {
	oldParent, err := n.parentID(ctx)
	if err != nil {
		return err
	}
	if err := n.m.backend.SetNodeParent(ctx, n.id, parent); err != nil {
		return err
	}
	n.m.storeParent(n.id, parent)
	if oldParent != parent {
		n.m.invalidateChildren(oldParent)
		n.m.invalidateChildren(parent)
	}
	return nil
}

// Children returns the node's valid children. Memoized.
func (n *NodeRef) Children(ctx context.Context) ([]*NodeRef, error) {
	if ids, ok := n.m.cachedChildren(n.id); ok {
		return n.m.nodeRefs(ids), nil
	}
	ids, err := n.m.backend.NodeChildren(ctx, n.id)
	if err != nil {
		return nil, err
	}
	n.m.storeChildren(n.id, ids)
	return n.m.nodeRefs(ids), nil
}

// HasChildren checks whether the node has at least one valid child
func (n *NodeRef) HasChildren(ctx context.Context) (bool, error) {
	if ids, ok := n.m.cachedChildren(n.id); ok {
		return len(ids) > 0, nil
	}
	return ports.NodeHasChildren(ctx, n.m.backend, n.id)
}

// Descendants returns a lazy preorder traversal of the node's descendants,
// excluding the node itself. The sequence is restartable: each range
// recomputes from the current children lists, so it observes mutations made
// since the previous traversal. The forest is acyclic by invariant, so the
// walk is finite.
func (n *NodeRef) Descendants(ctx context.Context) iter.Seq2[*NodeRef, error] {
	return func(yield func(*NodeRef, error) bool) {
		children, err := n.Children(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		stack := make([]*NodeRef, 0, len(children))
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(current, nil) {
				return
			}
			grandchildren, err := current.Children(ctx)
			if err != nil {
				yield(nil, err)
				return
			}
			for i := len(grandchildren) - 1; i >= 0; i-- {
				stack = append(stack, grandchildren[i])
			}
		}
	}
}

// SelfAndDescendants is Descendants with the node itself yielded first
func (n *NodeRef) SelfAndDescendants(ctx context.Context) iter.Seq2[*NodeRef, error] {
	return func(yield func(*NodeRef, error) bool) {
		if !yield(n, nil) {
			return
		}
		for descendant, err := range n.Descendants(ctx) {
			if !yield(descendant, err) {
				return
			}
		}
	}
}

// Edges returns the node's incident edges as directed references anchored at
// this node. Memoized.
func (n *NodeRef) Edges(ctx context.Context) ([]*DirEdgeRef, error) {
	ids, ok := n.m.cachedEdges(n.id)
	if !ok {
		fetched, err := n.m.backend.NodeEdges(ctx, n.id)
		if err != nil {
			return nil, err
		}
		n.m.storeEdges(n.id, fetched)
		ids = fetched
	}
	refs := make([]*DirEdgeRef, len(ids))
	for i, id := range ids {
		refs[i] = n.m.DirEdge(id, n.id)
	}
	return refs, nil
}

// Neighbors returns the nodes on the other end of every incident edge.
// Memoized, derived from the edge list.
func (n *NodeRef) Neighbors(ctx context.Context) ([]*NodeRef, error) {
	if ids, ok := n.m.cachedNeighbors(n.id); ok {
		return n.m.nodeRefs(ids), nil
	}
	edges, err := n.Edges(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]valueobjects.EntityID, 0, len(edges))
	for _, edge := range edges {
		other, err := ports.EdgeOtherNode(ctx, n.m.backend, edge.ID(), n.id)
		if err != nil {
			return nil, err
		}
		ids = append(ids, other)
	}
	n.m.storeNeighbors(n.id, ids)
	return n.m.nodeRefs(ids), nil
}

// NearbyNodes returns all valid nodes within the box of half-extent
// blendDistance around this node's center, excluding the node itself
func (n *NodeRef) NearbyNodes(ctx context.Context, blendDistance float64) ([]*NodeRef, error) {
	ids, err := ports.NearbyNodes(ctx, n.m.backend, n.id, blendDistance)
	if err != nil {
		return nil, err
	}
	return n.m.nodeRefs(ids), nil
}

// Center returns the node's spatial center
func (n *NodeRef) Center(ctx context.Context) (valueobjects.Vector, error) {
	return n.PVector(ctx, entities.PropCenter)
}

// SetCenter moves the node's spatial center
func (n *NodeRef) SetCenter(ctx context.Context, center valueobjects.Vector) error {
	return n.SetPVector(ctx, entities.PropCenter, center)
}

// EffectiveCenter returns the displayed center, which may differ from the
// spatial center while geometry is being recomputed
func (n *NodeRef) EffectiveCenter(ctx context.Context) (valueobjects.Vector, error) {
	return n.PVector(ctx, entities.PropEffectiveCenter)
}

// SetEffectiveCenter moves the displayed center
func (n *NodeRef) SetEffectiveCenter(ctx context.Context, center valueobjects.Vector) error {
	return n.SetPVector(ctx, entities.PropEffectiveCenter, center)
}

// Radius returns the node's radius
func (n *NodeRef) Radius(ctx context.Context) (float64, error) {
	return n.PNumber(ctx, entities.PropRadius)
}

// SetRadius sets the node's radius
func (n *NodeRef) SetRadius(ctx context.Context, radius float64) error {
	return n.SetPNumber(ctx, entities.PropRadius, radius)
}

// Layer returns the node's layer tag
func (n *NodeRef) Layer(ctx context.Context) (string, error) {
	return n.PString(ctx, entities.PropLayer)
}

// SetLayer sets the node's layer tag
func (n *NodeRef) SetLayer(ctx context.Context, layer string) error {
	return n.SetPString(ctx, entities.PropLayer, layer)
}

// Remove soft-deletes the node. The parent's children cache is invalidated
// and the edge/neighbor caches of this node and of everything reachable
// through cached neighbor links are swept, since any of them may have
// memoized this node as a neighbor.
func (n *NodeRef) Remove(ctx context.Context) error {
	parent, err := n.parentID(ctx)
	if err != nil {
		return err
	}
	if err := ports.RemoveNode(ctx, n.m.backend, n.id); err != nil {
		return err
	}
	n.m.invalidateChildren(parent)
	n.m.sweepNeighborCaches(n.id)
	return nil
}

// Unremove restores a soft-deleted node, with the same invalidation as
// removal: the parent regains a child and adjacency becomes visible again
func (n *NodeRef) Unremove(ctx context.Context) error {
	parent, err := n.parentID(ctx)
	if err != nil {
		return err
	}
	if err := n.m.backend.UnremoveEntity(ctx, n.id); err != nil {
		return err
	}
	n.m.invalidateChildren(parent)
	n.m.sweepNeighborCaches(n.id)

	// Nodes on the other end of the restored edges may have rebuilt their
	// adjacency caches while this node was removed; the cached-link sweep
	// cannot reach those, so resolve the actual endpoints.
	edges, err := n.m.backend.NodeEdges(ctx, n.id)
	if err != nil {
		return err
	}
	for _, edge := range edges {
		other, err := ports.EdgeOtherNode(ctx, n.m.backend, edge, n.id)
		if err != nil {
			return err
		}
		n.m.invalidateAdjacency(other)
	}
	return nil
}
