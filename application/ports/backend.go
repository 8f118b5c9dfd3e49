// Package ports defines the storage contract the map core depends on. A
// concrete storage engine only has to implement Backend; every derived graph
// query is layered on top of it in this package and shared by all backends.
package ports

import (
	"context"

	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	pkgerrors "cartograph/pkg/errors"
)

// Backend is the native capability set a storage implementation must provide.
// The backend exclusively owns persisted entity state; the reference layer
// above it owns caching.
//
// Property values are stored as strings. Reading a property that was never
// written returns the empty string, not an error; reading a property of an id
// with no record at all returns an InvalidReference error.
//
// Removal is a soft delete so that edits can be undone: a removed entity keeps
// its record, its properties and its relationships, but stops being valid and
// drops out of relationship and spatial queries until unremoved.
type Backend interface {
	// PString reads the serialized value of a property
	PString(ctx context.Context, id valueobjects.EntityID, name string) (string, error)

	// SetPString writes the serialized value of a property
	SetPString(ctx context.Context, id valueobjects.EntityID, name string, value string) error

	// CreateEntity creates a bare entity of the given kind and returns its id
	CreateEntity(ctx context.Context, kind entities.Kind) (valueobjects.EntityID, error)

	// CreateNode creates a node entity. A zero parent creates a root node.
	CreateNode(ctx context.Context, parent valueobjects.EntityID, nodeType entities.NodeType) (valueobjects.EntityID, error)

	// NodeParent returns the parent node id, or the zero id for a root node
	NodeParent(ctx context.Context, id valueobjects.EntityID) (valueobjects.EntityID, error)

	// SetNodeParent re-parents a node. A zero parent makes it a root node.
	SetNodeParent(ctx context.Context, id, parent valueobjects.EntityID) error

	// NodeChildren returns the ids of all valid nodes whose parent is id
	NodeChildren(ctx context.Context, id valueobjects.EntityID) ([]valueobjects.EntityID, error)

	// NodeType returns the node's type tag
	NodeType(ctx context.Context, id valueobjects.EntityID) (entities.NodeType, error)

	// CreateEdge creates an edge entity between two distinct nodes
	CreateEdge(ctx context.Context, a, b valueobjects.EntityID) (valueobjects.EntityID, error)

	// NodeEdges returns the ids of all valid edges incident to the node
	NodeEdges(ctx context.Context, id valueobjects.EntityID) ([]valueobjects.EntityID, error)

	// EdgeNodes returns the edge's two endpoint node ids; the order is
	// backend-defined but stable
	EdgeNodes(ctx context.Context, id valueobjects.EntityID) ([2]valueobjects.EntityID, error)

	// EntityExists checks whether the id has a record, removed or not
	EntityExists(ctx context.Context, id valueobjects.EntityID) (bool, error)

	// EntityValid checks whether the id has a record that is not removed
	EntityValid(ctx context.Context, id valueobjects.EntityID) (bool, error)

	// RemoveEntity soft-deletes an entity
	RemoveEntity(ctx context.Context, id valueobjects.EntityID) error

	// UnremoveEntity restores a soft-deleted entity
	UnremoveEntity(ctx context.Context, id valueobjects.EntityID) error

	// NodesInArea returns the ids of all valid nodes whose center lies
	// inside the box
	NodesInArea(ctx context.Context, area valueobjects.Box) ([]valueobjects.EntityID, error)

	// ObjectNodesTouchingArea returns the ids of all valid object-type
	// nodes whose sphere of radius max(radius, minRadius) reaches the box
	ObjectNodesTouchingArea(ctx context.Context, area valueobjects.Box, minRadius float64) ([]valueobjects.EntityID, error)

	// EdgeBetween returns the id of a valid edge connecting the two nodes,
	// or the zero id when none exists
	EdgeBetween(ctx context.Context, a, b valueobjects.EntityID) (valueobjects.EntityID, error)
}

// EdgeRemover is an optional backend upgrade for engines that can remove an
// edge cheaper than through the generic entity removal path.
type EdgeRemover interface {
	RemoveEdge(ctx context.Context, id valueobjects.EntityID) error
}

// NodeRemover is the node counterpart of EdgeRemover.
type NodeRemover interface {
	RemoveNode(ctx context.Context, id valueobjects.EntityID) error
}

// UnimplementedBackend returns a typed NotImplemented error from every
// contract method. Partial backends embed it so that a missing override fails
// loudly on first call instead of compiling into silent misbehavior.
type UnimplementedBackend struct{}

var _ Backend = UnimplementedBackend{}

func (UnimplementedBackend) PString(context.Context, valueobjects.EntityID, string) (string, error) {
	return "", pkgerrors.NewNotImplementedError("PString")
}

func (UnimplementedBackend) SetPString(context.Context, valueobjects.EntityID, string, string) error {
	return pkgerrors.NewNotImplementedError("SetPString")
}

func (UnimplementedBackend) CreateEntity(context.Context, entities.Kind) (valueobjects.EntityID, error) {
	return "", pkgerrors.NewNotImplementedError("CreateEntity")
}

func (UnimplementedBackend) CreateNode(context.Context, valueobjects.EntityID, entities.NodeType) (valueobjects.EntityID, error) {
	return "", pkgerrors.NewNotImplementedError("CreateNode")
}

func (UnimplementedBackend) NodeParent(context.Context, valueobjects.EntityID) (valueobjects.EntityID, error) {
	return "", pkgerrors.NewNotImplementedError("NodeParent")
}

func (UnimplementedBackend) SetNodeParent(context.Context, valueobjects.EntityID, valueobjects.EntityID) error {
	return pkgerrors.NewNotImplementedError("SetNodeParent")
}

func (UnimplementedBackend) NodeChildren(context.Context, valueobjects.EntityID) ([]valueobjects.EntityID, error) {
	return nil, pkgerrors.NewNotImplementedError("NodeChildren")
}

func (UnimplementedBackend) NodeType(context.Context, valueobjects.EntityID) (entities.NodeType, error) {
	return "", pkgerrors.NewNotImplementedError("NodeType")
}

func (UnimplementedBackend) CreateEdge(context.Context, valueobjects.EntityID, valueobjects.EntityID) (valueobjects.EntityID, error) {
	return "", pkgerrors.NewNotImplementedError("CreateEdge")
}

func (UnimplementedBackend) NodeEdges(context.Context, valueobjects.EntityID) ([]valueobjects.EntityID, error) {
	return nil, pkgerrors.NewNotImplementedError("NodeEdges")
}

func (UnimplementedBackend) EdgeNodes(context.Context, valueobjects.EntityID) ([2]valueobjects.EntityID, error) {
	return [2]valueobjects.EntityID{}, pkgerrors.NewNotImplementedError("EdgeNodes")
}

func (UnimplementedBackend) EntityExists(context.Context, valueobjects.EntityID) (bool, error) {
	return false, pkgerrors.NewNotImplementedError("EntityExists")
}

func (UnimplementedBackend) EntityValid(context.Context, valueobjects.EntityID) (bool, error) {
	return false, pkgerrors.NewNotImplementedError("EntityValid")
}

func (UnimplementedBackend) RemoveEntity(context.Context, valueobjects.EntityID) error {
	return pkgerrors.NewNotImplementedError("RemoveEntity")
}

func (UnimplementedBackend) UnremoveEntity(context.Context, valueobjects.EntityID) error {
	return pkgerrors.NewNotImplementedError("UnremoveEntity")
}

func (UnimplementedBackend) NodesInArea(context.Context, valueobjects.Box) ([]valueobjects.EntityID, error) {
	return nil, pkgerrors.NewNotImplementedError("NodesInArea")
}

func (UnimplementedBackend) ObjectNodesTouchingArea(context.Context, valueobjects.Box, float64) ([]valueobjects.EntityID, error) {
	return nil, pkgerrors.NewNotImplementedError("ObjectNodesTouchingArea")
}

func (UnimplementedBackend) EdgeBetween(context.Context, valueobjects.EntityID, valueobjects.EntityID) (valueobjects.EntityID, error) {
	return "", pkgerrors.NewNotImplementedError("EdgeBetween")
}
