// Package graph is the entity reference layer of the map core. A Map wraps a
// storage backend with a per-id cache of property values and derived
// relationships; typed references (EntityRef, NodeRef, EdgeRef, DirEdgeRef)
// mediate every read and write through that cache.
//
// References are cheap, re-creatable views: any number of them may point at
// the same id and they all share one cache entry. Cache mutation is
// synchronous; only backend I/O can suspend. Callers must serialize action
// execution: the layer keeps interleaved reads consistent but does not
// support truly concurrent edits.
package graph

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"cartograph/application/ports"
	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
)

// Map owns the entity cache and mediates access to a storage backend
type Map struct {
	backend ports.Backend
	logger  *zap.Logger

	mu    sync.Mutex
	cache map[valueobjects.EntityID]*cacheEntry
}

// NewMap creates a reference layer over the given backend
func NewMap(backend ports.Backend, logger *zap.Logger) *Map {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Map{
		backend: backend,
		logger:  logger,
		cache:   make(map[valueobjects.EntityID]*cacheEntry),
	}
}

// Backend returns the underlying storage backend
func (m *Map) Backend() ports.Backend {
	return m.backend
}

// Entity returns a reference to an arbitrary entity id
func (m *Map) Entity(id valueobjects.EntityID) *EntityRef {
	return &EntityRef{m: m, id: id}
}

// Global returns a reference to the whole-map property singleton
func (m *Map) Global() *EntityRef {
	return m.Entity(entities.GlobalID)
}

// Node returns a node reference for the given id
func (m *Map) Node(id valueobjects.EntityID) *NodeRef {
	return &NodeRef{EntityRef{m: m, id: id}}
}

// Edge returns an edge reference for the given id
func (m *Map) Edge(id valueobjects.EntityID) *EdgeRef {
	return &EdgeRef{EntityRef{m: m, id: id}}
}

// DirEdge returns an edge reference anchored at the given start node
func (m *Map) DirEdge(id, start valueobjects.EntityID) *DirEdgeRef {
	return &DirEdgeRef{EdgeRef: EdgeRef{EntityRef{m: m, id: id}}, start: start}
}

// CreateEntity creates a bare entity of the given kind
func (m *Map) CreateEntity(ctx context.Context, kind entities.Kind) (*EntityRef, error) {
	id, err := m.backend.CreateEntity(ctx, kind)
	if err != nil {
		return nil, err
	}
	return m.Entity(id), nil
}

// CreateNode creates a node, optionally under a parent. Pass a zero parent id
// for a root node.
func (m *Map) CreateNode(ctx context.Context, parent valueobjects.EntityID, nodeType entities.NodeType) (*NodeRef, error) {
	id, err := m.backend.CreateNode(ctx, parent, nodeType)
	if err != nil {
		return nil, err
	}
	m.storeParent(id, parent)
	m.invalidateChildren(parent)
	m.logger.Debug("node created",
		zap.String("id", id.String()),
		zap.String("parent", parent.String()),
		zap.String("type", string(nodeType)))
	return m.Node(id), nil
}

// CreateEdge creates an edge between two distinct nodes
func (m *Map) CreateEdge(ctx context.Context, a, b valueobjects.EntityID) (*EdgeRef, error) {
	id, err := m.backend.CreateEdge(ctx, a, b)
	if err != nil {
		return nil, err
	}
	m.invalidateAdjacency(a)
	m.invalidateAdjacency(b)
	m.logger.Debug("edge created",
		zap.String("id", id.String()),
		zap.String("a", a.String()),
		zap.String("b", b.String()))
	return m.Edge(id), nil
}

// EdgeBetween returns a reference to a valid edge connecting the two nodes,
// or nil when none exists
func (m *Map) EdgeBetween(ctx context.Context, a, b valueobjects.EntityID) (*EdgeRef, error) {
	id, err := m.backend.EdgeBetween(ctx, a, b)
	if err != nil {
		return nil, err
	}
	if id.IsZero() {
		return nil, nil
	}
	return m.Edge(id), nil
}

// NodesInArea returns references to all valid nodes whose center lies inside
// the box
func (m *Map) NodesInArea(ctx context.Context, area valueobjects.Box) ([]*NodeRef, error) {
	ids, err := m.backend.NodesInArea(ctx, area)
	if err != nil {
		return nil, err
	}
	return m.nodeRefs(ids), nil
}

// ObjectNodesTouchingArea returns references to all valid object nodes whose
// geometry reaches the box
func (m *Map) ObjectNodesTouchingArea(ctx context.Context, area valueobjects.Box, minRadius float64) ([]*NodeRef, error) {
	ids, err := m.backend.ObjectNodesTouchingArea(ctx, area, minRadius)
	if err != nil {
		return nil, err
	}
	return m.nodeRefs(ids), nil
}

func (m *Map) nodeRefs(ids []valueobjects.EntityID) []*NodeRef {
	refs := make([]*NodeRef, len(ids))
	for i, id := range ids {
		refs[i] = m.Node(id)
	}
	return refs
}
