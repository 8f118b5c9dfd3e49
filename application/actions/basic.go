package actions

import (
	"context"

	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	"cartograph/domain/graph"
)

// CreateNode creates a node, optionally under a parent and at a center
type CreateNode struct {
	Parent valueobjects.EntityID
	Type   entities.NodeType `validate:"required"`
	Center valueobjects.Vector
}

// Perform creates the node and returns its removal as the inverse
func (a CreateNode) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	node, err := m.CreateNode(ctx, a.Parent, a.Type)
	if err != nil {
		return nil, err
	}
	if err := node.SetCenter(ctx, a.Center); err != nil {
		return nil, err
	}
	return RemoveNode{ID: node.ID()}, nil
}

// CreateEdge creates an edge between two distinct nodes
type CreateEdge struct {
	A valueobjects.EntityID `validate:"required"`
	B valueobjects.EntityID `validate:"required"`
}

// Perform creates the edge and returns its removal as the inverse
func (a CreateEdge) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	edge, err := m.CreateEdge(ctx, a.A, a.B)
	if err != nil {
		return nil, err
	}
	return RemoveEdge{ID: edge.ID()}, nil
}

// RemoveNode soft-deletes a node
type RemoveNode struct {
	ID valueobjects.EntityID `validate:"required"`
}

// Perform removes the node; the inverse restores it
func (a RemoveNode) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	if err := m.Node(a.ID).Remove(ctx); err != nil {
		return nil, err
	}
	return UnremoveNode{ID: a.ID}, nil
}

// UnremoveNode restores a soft-deleted node
type UnremoveNode struct {
	ID valueobjects.EntityID `validate:"required"`
}

// Perform restores the node; the inverse removes it again
func (a UnremoveNode) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	if err := m.Node(a.ID).Unremove(ctx); err != nil {
		return nil, err
	}
	return RemoveNode{ID: a.ID}, nil
}

// RemoveEdge soft-deletes an edge
type RemoveEdge struct {
	ID valueobjects.EntityID `validate:"required"`
}

// Perform removes the edge; the inverse restores it
func (a RemoveEdge) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	if err := m.Edge(a.ID).Remove(ctx); err != nil {
		return nil, err
	}
	return UnremoveEdge{ID: a.ID}, nil
}

// UnremoveEdge restores a soft-deleted edge
type UnremoveEdge struct {
	ID valueobjects.EntityID `validate:"required"`
}

// Perform restores the edge; the inverse removes it again
func (a UnremoveEdge) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	if err := m.Edge(a.ID).Unremove(ctx); err != nil {
		return nil, err
	}
	return RemoveEdge{ID: a.ID}, nil
}

// SetPString sets a string property on any entity
type SetPString struct {
	ID    valueobjects.EntityID `validate:"required"`
	Name  string                `validate:"required"`
	Value string
}

// Perform records the previous value and writes the new one; the inverse
// writes the previous value back
func (a SetPString) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	ref := m.Entity(a.ID)
	previous, err := ref.PString(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	if err := ref.SetPString(ctx, a.Name, a.Value); err != nil {
		return nil, err
	}
	return SetPString{ID: a.ID, Name: a.Name, Value: previous}, nil
}

// SetPNumber sets a numeric property on any entity
type SetPNumber struct {
	ID    valueobjects.EntityID `validate:"required"`
	Name  string                `validate:"required"`
	Value float64
}

// Perform records the previous value and writes the new one
func (a SetPNumber) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	ref := m.Entity(a.ID)
	previous, err := ref.PNumber(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	if err := ref.SetPNumber(ctx, a.Name, a.Value); err != nil {
		return nil, err
	}
	return SetPNumber{ID: a.ID, Name: a.Name, Value: previous}, nil
}

// SetPVector sets a vector property on any entity
type SetPVector struct {
	ID    valueobjects.EntityID `validate:"required"`
	Name  string                `validate:"required"`
	Value valueobjects.Vector
}

// Perform records the previous value and writes the new one
func (a SetPVector) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	ref := m.Entity(a.ID)
	previous, err := ref.PVector(ctx, a.Name)
	if err != nil {
		return nil, err
	}
	if err := ref.SetPVector(ctx, a.Name, a.Value); err != nil {
		return nil, err
	}
	return SetPVector{ID: a.ID, Name: a.Name, Value: previous}, nil
}

// SetParent re-parents a node; a zero Parent makes it a root
type SetParent struct {
	Node   valueobjects.EntityID `validate:"required"`
	Parent valueobjects.EntityID
}

// Perform records the previous parent and re-parents the node
func (a SetParent) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	node := m.Node(a.Node)
	previous, err := node.Parent(ctx)
	if err != nil {
		return nil, err
	}
	if err := node.SetParent(ctx, a.Parent); err != nil {
		return nil, err
	}
	inverse := SetParent{Node: a.Node}
	if previous != nil {
		inverse.Parent = previous.ID()
	}
	return inverse, nil
}

// MoveNode moves a node's spatial center
type MoveNode struct {
	Node valueobjects.EntityID `validate:"required"`
	To   valueobjects.Vector
}

// Perform records the previous center and moves the node
func (a MoveNode) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	node := m.Node(a.Node)
	previous, err := node.Center(ctx)
	if err != nil {
		return nil, err
	}
	if err := node.SetCenter(ctx, a.To); err != nil {
		return nil, err
	}
	return MoveNode{Node: a.Node, To: previous}, nil
}

// SetGeometry sets a node's center, effective center and radius in one step
type SetGeometry struct {
	Node            valueobjects.EntityID `validate:"required"`
	Center          valueobjects.Vector
	EffectiveCenter valueobjects.Vector
	Radius          float64
}

// Perform records the previous geometry and writes the new one
func (a SetGeometry) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	if err := validateOptions(a); err != nil {
		return nil, err
	}
	node := m.Node(a.Node)

	previousCenter, err := node.Center(ctx)
	if err != nil {
		return nil, err
	}
	previousEffective, err := node.EffectiveCenter(ctx)
	if err != nil {
		return nil, err
	}
	previousRadius, err := node.Radius(ctx)
	if err != nil {
		return nil, err
	}

	if err := node.SetCenter(ctx, a.Center); err != nil {
		return nil, err
	}
	if err := node.SetEffectiveCenter(ctx, a.EffectiveCenter); err != nil {
		return nil, err
	}
	if err := node.SetRadius(ctx, a.Radius); err != nil {
		return nil, err
	}

	return SetGeometry{
		Node:            a.Node,
		Center:          previousCenter,
		EffectiveCenter: previousEffective,
		Radius:          previousRadius,
	}, nil
}
