// Package memory provides the in-memory reference implementation of the map
// backend contract. It favors clarity over speed: relationship and spatial
// queries are linear scans.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"cartograph/application/ports"
	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	pkgerrors "cartograph/pkg/errors"
)

// record is the stored state of one entity
type record struct {
	seq      int // creation order, used for stable query ordering
	kind     entities.Kind
	removed  bool
	props    map[string]string
	parent   valueobjects.EntityID
	nodeType entities.NodeType
	a, b     valueobjects.EntityID // edge endpoints
}

// Backend is an in-memory map backend
type Backend struct {
	mu      sync.RWMutex
	logger  *zap.Logger
	nextSeq int
	records map[valueobjects.EntityID]*record
}

var _ ports.Backend = (*Backend)(nil)

// New creates an empty in-memory backend holding only the global singleton
func New(logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		logger:  logger,
		nextSeq: 1,
		records: map[valueobjects.EntityID]*record{
			entities.GlobalID: {kind: entities.KindGlobal, props: make(map[string]string)},
		},
	}
}

func (b *Backend) get(id valueobjects.EntityID) (*record, error) {
	rec, ok := b.records[id]
	if !ok {
		return nil, pkgerrors.NewInvalidReferenceError(id.String())
	}
	return rec, nil
}

func (b *Backend) getNode(id valueobjects.EntityID) (*record, error) {
	rec, err := b.get(id)
	if err != nil {
		return nil, err
	}
	if rec.kind != entities.KindNode {
		return nil, pkgerrors.NewInconsistentGraphError("entity " + id.String() + " is not a node")
	}
	return rec, nil
}

func (b *Backend) getEdge(id valueobjects.EntityID) (*record, error) {
	rec, err := b.get(id)
	if err != nil {
		return nil, err
	}
	if rec.kind != entities.KindEdge {
		return nil, pkgerrors.NewInconsistentGraphError("entity " + id.String() + " is not an edge")
	}
	return rec, nil
}

// seq hands out the next creation sequence number. Callers must hold b.mu.
func (b *Backend) seq() int {
	s := b.nextSeq
	b.nextSeq++
	return s
}

// sortBySeq orders query results by entity creation order, so results are
// deterministic. Callers must hold b.mu at least for reading.
func (b *Backend) sortBySeq(ids []valueobjects.EntityID) {
	sort.Slice(ids, func(i, j int) bool {
		return b.records[ids[i]].seq < b.records[ids[j]].seq
	})
}

// PString reads a property value; absent properties read as ""
func (b *Backend) PString(ctx context.Context, id valueobjects.EntityID, name string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, err := b.get(id)
	if err != nil {
		return "", err
	}
	return rec.props[name], nil
}

// SetPString writes a property value
func (b *Backend) SetPString(ctx context.Context, id valueobjects.EntityID, name string, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.get(id)
	if err != nil {
		return err
	}
	rec.props[name] = value
	return nil
}

// CreateEntity creates a bare entity of the given kind
func (b *Backend) CreateEntity(ctx context.Context, kind entities.Kind) (valueobjects.EntityID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := valueobjects.NewEntityID()
	b.records[id] = &record{seq: b.seq(), kind: kind, props: make(map[string]string)}
	return id, nil
}

// CreateNode creates a node, optionally under a parent
func (b *Backend) CreateNode(ctx context.Context, parent valueobjects.EntityID, nodeType entities.NodeType) (valueobjects.EntityID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !parent.IsZero() {
		if _, err := b.getNode(parent); err != nil {
			return "", err
		}
	}
	id := valueobjects.NewEntityID()
	b.records[id] = &record{
		seq:      b.seq(),
		kind:     entities.KindNode,
		props:    make(map[string]string),
		parent:   parent,
		nodeType: nodeType,
	}
	b.logger.Debug("created node", zap.String("id", id.String()), zap.String("type", string(nodeType)))
	return id, nil
}

// NodeParent returns the node's parent id, zero for roots
func (b *Backend) NodeParent(ctx context.Context, id valueobjects.EntityID) (valueobjects.EntityID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, err := b.getNode(id)
	if err != nil {
		return "", err
	}
	return rec.parent, nil
}

// SetNodeParent re-parents a node
func (b *Backend) SetNodeParent(ctx context.Context, id, parent valueobjects.EntityID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.getNode(id)
	if err != nil {
		return err
	}
	if !parent.IsZero() {
		if _, err := b.getNode(parent); err != nil {
			return err
		}
	}
	rec.parent = parent
	return nil
}

// NodeChildren returns all valid children of the node
func (b *Backend) NodeChildren(ctx context.Context, id valueobjects.EntityID) ([]valueobjects.EntityID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, err := b.getNode(id); err != nil {
		return nil, err
	}
	var children []valueobjects.EntityID
	for childID, rec := range b.records {
		if rec.kind == entities.KindNode && !rec.removed && rec.parent == id {
			children = append(children, childID)
		}
	}
	b.sortBySeq(children)
	return children, nil
}

// NodeType returns the node's type tag
func (b *Backend) NodeType(ctx context.Context, id valueobjects.EntityID) (entities.NodeType, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, err := b.getNode(id)
	if err != nil {
		return "", err
	}
	return rec.nodeType, nil
}

// CreateEdge creates an edge between two distinct valid nodes
func (b *Backend) CreateEdge(ctx context.Context, a, c valueobjects.EntityID) (valueobjects.EntityID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if a == c {
		return "", pkgerrors.NewValidationError("edge endpoints must be distinct")
	}
	if _, err := b.getNode(a); err != nil {
		return "", err
	}
	if _, err := b.getNode(c); err != nil {
		return "", err
	}
	id := valueobjects.NewEntityID()
	b.records[id] = &record{seq: b.seq(), kind: entities.KindEdge, props: make(map[string]string), a: a, b: c}
	b.logger.Debug("created edge", zap.String("id", id.String()),
		zap.String("a", a.String()), zap.String("b", c.String()))
	return id, nil
}

// NodeEdges returns all valid edges incident to the node
func (b *Backend) NodeEdges(ctx context.Context, id valueobjects.EntityID) ([]valueobjects.EntityID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if _, err := b.getNode(id); err != nil {
		return nil, err
	}
	var edges []valueobjects.EntityID
	for edgeID, rec := range b.records {
		if rec.kind == entities.KindEdge && !rec.removed && (rec.a == id || rec.b == id) {
			edges = append(edges, edgeID)
		}
	}
	b.sortBySeq(edges)
	return edges, nil
}

// EdgeNodes returns the edge's two endpoints
func (b *Backend) EdgeNodes(ctx context.Context, id valueobjects.EntityID) ([2]valueobjects.EntityID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, err := b.getEdge(id)
	if err != nil {
		return [2]valueobjects.EntityID{}, err
	}
	return [2]valueobjects.EntityID{rec.a, rec.b}, nil
}

// EntityExists checks whether the id has a record, removed or not
func (b *Backend) EntityExists(ctx context.Context, id valueobjects.EntityID) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.records[id]
	return ok, nil
}

// EntityValid checks whether the id has a record that is not removed
func (b *Backend) EntityValid(ctx context.Context, id valueobjects.EntityID) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	rec, ok := b.records[id]
	return ok && !rec.removed, nil
}

// RemoveEntity soft-deletes an entity
func (b *Backend) RemoveEntity(ctx context.Context, id valueobjects.EntityID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.get(id)
	if err != nil {
		return err
	}
	if rec.kind == entities.KindGlobal {
		return pkgerrors.NewValidationError("the global entity cannot be removed")
	}
	rec.removed = true
	return nil
}

// UnremoveEntity restores a soft-deleted entity
func (b *Backend) UnremoveEntity(ctx context.Context, id valueobjects.EntityID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.get(id)
	if err != nil {
		return err
	}
	rec.removed = false
	return nil
}

// NodesInArea returns all valid nodes whose center lies inside the box
func (b *Backend) NodesInArea(ctx context.Context, area valueobjects.Box) ([]valueobjects.EntityID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var ids []valueobjects.EntityID
	for id, rec := range b.records {
		if rec.kind != entities.KindNode || rec.removed {
			continue
		}
		center, err := entities.ParseVector(rec.props[entities.PropCenter])
		if err != nil {
			return nil, err
		}
		if area.Contains(center) {
			ids = append(ids, id)
		}
	}
	b.sortBySeq(ids)
	return ids, nil
}

// ObjectNodesTouchingArea returns all valid object nodes whose sphere of
// radius max(radius, minRadius) reaches the box
func (b *Backend) ObjectNodesTouchingArea(ctx context.Context, area valueobjects.Box, minRadius float64) ([]valueobjects.EntityID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var ids []valueobjects.EntityID
	for id, rec := range b.records {
		if rec.kind != entities.KindNode || rec.removed || rec.nodeType != entities.NodeTypeObject {
			continue
		}
		center, err := entities.ParseVector(rec.props[entities.PropCenter])
		if err != nil {
			return nil, err
		}
		radius, err := entities.ParseNumber(rec.props[entities.PropRadius])
		if err != nil {
			return nil, err
		}
		if area.Expand(math.Max(radius, minRadius)).Contains(center) {
			ids = append(ids, id)
		}
	}
	b.sortBySeq(ids)
	return ids, nil
}

// EdgeBetween returns a valid edge connecting the two nodes, zero id when none
func (b *Backend) EdgeBetween(ctx context.Context, a, c valueobjects.EntityID) (valueobjects.EntityID, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, rec := range b.records {
		if rec.kind != entities.KindEdge || rec.removed {
			continue
		}
		if (rec.a == a && rec.b == c) || (rec.a == c && rec.b == a) {
			return id, nil
		}
	}
	return "", nil
}
