// Package sqlite provides the SQLite-backed map backend. Entities, properties
// and adjacency live in normalized tables; spatial predicates are evaluated
// in Go over candidate rows, since centers are ordinary serialized
// properties.
package sqlite

import (
	"context"
	"database/sql"
	"math"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"cartograph/application/ports"
	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
	pkgerrors "cartograph/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	id      TEXT PRIMARY KEY,
	kind    TEXT NOT NULL,
	removed INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS properties (
	entity_id TEXT NOT NULL,
	name      TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (entity_id, name)
);

CREATE TABLE IF NOT EXISTS nodes (
	id        TEXT PRIMARY KEY,
	parent_id TEXT NOT NULL DEFAULT '',
	node_type TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS edges (
	id     TEXT PRIMARY KEY,
	node_a TEXT NOT NULL,
	node_b TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_edges_a ON edges(node_a);
CREATE INDEX IF NOT EXISTS idx_edges_b ON edges(node_b);
`

// Backend is a SQLite-backed map backend
type Backend struct {
	db     *sql.DB
	logger *zap.Logger
}

var (
	_ ports.Backend     = (*Backend)(nil)
	_ ports.EdgeRemover = (*Backend)(nil)
)

// New opens or creates a map database at the given path. Pass ":memory:" for
// a throwaway database.
func New(path string, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("open database", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, pkgerrors.NewDatabaseError("create schema", err)
	}
	// The global singleton always exists
	if _, err := db.Exec(
		`INSERT OR IGNORE INTO entities (id, kind) VALUES (?, ?)`,
		entities.GlobalID.String(), string(entities.KindGlobal),
	); err != nil {
		db.Close()
		return nil, pkgerrors.NewDatabaseError("create global entity", err)
	}
	logger.Info("map database opened", zap.String("path", path))
	return &Backend{db: db, logger: logger}, nil
}

// Close releases the database handle
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) entityKind(ctx context.Context, id valueobjects.EntityID) (entities.Kind, error) {
	var kind string
	err := b.db.QueryRowContext(ctx,
		`SELECT kind FROM entities WHERE id = ?`, id.String()).Scan(&kind)
	if err == sql.ErrNoRows {
		return "", pkgerrors.NewInvalidReferenceError(id.String())
	}
	if err != nil {
		return "", pkgerrors.NewDatabaseError("query entity kind", err)
	}
	return entities.Kind(kind), nil
}

func (b *Backend) requireNode(ctx context.Context, id valueobjects.EntityID) error {
	kind, err := b.entityKind(ctx, id)
	if err != nil {
		return err
	}
	if kind != entities.KindNode {
		return pkgerrors.NewInconsistentGraphError("entity " + id.String() + " is not a node")
	}
	return nil
}

// PString reads a property value; absent properties read as ""
func (b *Backend) PString(ctx context.Context, id valueobjects.EntityID, name string) (string, error) {
	var value sql.NullString
	err := b.db.QueryRowContext(ctx, `
		SELECT p.value FROM entities e
		LEFT JOIN properties p ON p.entity_id = e.id AND p.name = ?
		WHERE e.id = ?`, name, id.String()).Scan(&value)
	if err == sql.ErrNoRows {
		return "", pkgerrors.NewInvalidReferenceError(id.String())
	}
	if err != nil {
		return "", pkgerrors.NewDatabaseError("read property", err)
	}
	return value.String, nil
}

// SetPString writes a property value
func (b *Backend) SetPString(ctx context.Context, id valueobjects.EntityID, name string, value string) error {
	if _, err := b.entityKind(ctx, id); err != nil {
		return err
	}
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO properties (entity_id, name, value) VALUES (?, ?, ?)
		ON CONFLICT (entity_id, name) DO UPDATE SET value = excluded.value`,
		id.String(), name, value)
	if err != nil {
		return pkgerrors.NewDatabaseError("write property", err)
	}
	return nil
}

// CreateEntity creates a bare entity of the given kind
func (b *Backend) CreateEntity(ctx context.Context, kind entities.Kind) (valueobjects.EntityID, error) {
	id := valueobjects.NewEntityID()
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO entities (id, kind) VALUES (?, ?)`, id.String(), string(kind))
	if err != nil {
		return "", pkgerrors.NewDatabaseError("create entity", err)
	}
	return id, nil
}

// CreateNode creates a node, optionally under a parent
func (b *Backend) CreateNode(ctx context.Context, parent valueobjects.EntityID, nodeType entities.NodeType) (valueobjects.EntityID, error) {
	if !parent.IsZero() {
		if err := b.requireNode(ctx, parent); err != nil {
			return "", err
		}
	}
	id := valueobjects.NewEntityID()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", pkgerrors.NewDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entities (id, kind) VALUES (?, ?)`, id.String(), string(entities.KindNode)); err != nil {
		return "", pkgerrors.NewDatabaseError("create node entity", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (id, parent_id, node_type) VALUES (?, ?, ?)`,
		id.String(), parent.String(), string(nodeType)); err != nil {
		return "", pkgerrors.NewDatabaseError("create node row", err)
	}
	if err := tx.Commit(); err != nil {
		return "", pkgerrors.NewDatabaseError("commit node creation", err)
	}
	return id, nil
}

// NodeParent returns the node's parent id, zero for roots
func (b *Backend) NodeParent(ctx context.Context, id valueobjects.EntityID) (valueobjects.EntityID, error) {
	var parent string
	err := b.db.QueryRowContext(ctx,
		`SELECT parent_id FROM nodes WHERE id = ?`, id.String()).Scan(&parent)
	if err == sql.ErrNoRows {
		if err := b.requireNode(ctx, id); err != nil {
			return "", err
		}
		return "", pkgerrors.NewInconsistentGraphError("node row missing for " + id.String())
	}
	if err != nil {
		return "", pkgerrors.NewDatabaseError("query parent", err)
	}
	return valueobjects.EntityID(parent), nil
}

// SetNodeParent re-parents a node
func (b *Backend) SetNodeParent(ctx context.Context, id, parent valueobjects.EntityID) error {
	if err := b.requireNode(ctx, id); err != nil {
		return err
	}
	if !parent.IsZero() {
		if err := b.requireNode(ctx, parent); err != nil {
			return err
		}
	}
	if _, err := b.db.ExecContext(ctx,
		`UPDATE nodes SET parent_id = ? WHERE id = ?`, parent.String(), id.String()); err != nil {
		return pkgerrors.NewDatabaseError("set parent", err)
	}
	return nil
}

// NodeChildren returns all valid children of the node, in creation order
func (b *Backend) NodeChildren(ctx context.Context, id valueobjects.EntityID) ([]valueobjects.EntityID, error) {
	if err := b.requireNode(ctx, id); err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, `
		SELECT n.id FROM nodes n
		JOIN entities e ON e.id = n.id
		WHERE n.parent_id = ? AND e.removed = 0
		ORDER BY n.rowid`, id.String())
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query children", err)
	}
	return scanIDs(rows)
}

// NodeType returns the node's type tag
func (b *Backend) NodeType(ctx context.Context, id valueobjects.EntityID) (entities.NodeType, error) {
	var nodeType string
	err := b.db.QueryRowContext(ctx,
		`SELECT node_type FROM nodes WHERE id = ?`, id.String()).Scan(&nodeType)
	if err == sql.ErrNoRows {
		if err := b.requireNode(ctx, id); err != nil {
			return "", err
		}
		return "", pkgerrors.NewInconsistentGraphError("node row missing for " + id.String())
	}
	if err != nil {
		return "", pkgerrors.NewDatabaseError("query node type", err)
	}
	return entities.NodeType(nodeType), nil
}

// CreateEdge creates an edge between two distinct valid nodes
func (b *Backend) CreateEdge(ctx context.Context, a, c valueobjects.EntityID) (valueobjects.EntityID, error) {
	if a == c {
		return "", pkgerrors.NewValidationError("edge endpoints must be distinct")
	}
	if err := b.requireNode(ctx, a); err != nil {
		return "", err
	}
	if err := b.requireNode(ctx, c); err != nil {
		return "", err
	}
	id := valueobjects.NewEntityID()
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return "", pkgerrors.NewDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO entities (id, kind) VALUES (?, ?)`, id.String(), string(entities.KindEdge)); err != nil {
		return "", pkgerrors.NewDatabaseError("create edge entity", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO edges (id, node_a, node_b) VALUES (?, ?, ?)`,
		id.String(), a.String(), c.String()); err != nil {
		return "", pkgerrors.NewDatabaseError("create edge row", err)
	}
	if err := tx.Commit(); err != nil {
		return "", pkgerrors.NewDatabaseError("commit edge creation", err)
	}
	return id, nil
}

// NodeEdges returns all valid edges incident to the node, in creation order
func (b *Backend) NodeEdges(ctx context.Context, id valueobjects.EntityID) ([]valueobjects.EntityID, error) {
	if err := b.requireNode(ctx, id); err != nil {
		return nil, err
	}
	rows, err := b.db.QueryContext(ctx, `
		SELECT ed.id FROM edges ed
		JOIN entities e ON e.id = ed.id
		WHERE (ed.node_a = ? OR ed.node_b = ?) AND e.removed = 0
		ORDER BY ed.rowid`, id.String(), id.String())
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("query edges", err)
	}
	return scanIDs(rows)
}

// EdgeNodes returns the edge's two endpoints
func (b *Backend) EdgeNodes(ctx context.Context, id valueobjects.EntityID) ([2]valueobjects.EntityID, error) {
	var a, c string
	err := b.db.QueryRowContext(ctx,
		`SELECT node_a, node_b FROM edges WHERE id = ?`, id.String()).Scan(&a, &c)
	if err == sql.ErrNoRows {
		kind, kindErr := b.entityKind(ctx, id)
		if kindErr != nil {
			return [2]valueobjects.EntityID{}, kindErr
		}
		if kind != entities.KindEdge {
			return [2]valueobjects.EntityID{}, pkgerrors.NewInconsistentGraphError("entity " + id.String() + " is not an edge")
		}
		return [2]valueobjects.EntityID{}, pkgerrors.NewInconsistentGraphError("edge row missing for " + id.String())
	}
	if err != nil {
		return [2]valueobjects.EntityID{}, pkgerrors.NewDatabaseError("query edge nodes", err)
	}
	return [2]valueobjects.EntityID{valueobjects.EntityID(a), valueobjects.EntityID(c)}, nil
}

// EntityExists checks whether the id has a record, removed or not
func (b *Backend) EntityExists(ctx context.Context, id valueobjects.EntityID) (bool, error) {
	var one int
	err := b.db.QueryRowContext(ctx,
		`SELECT 1 FROM entities WHERE id = ?`, id.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.NewDatabaseError("query existence", err)
	}
	return true, nil
}

// EntityValid checks whether the id has a record that is not removed
func (b *Backend) EntityValid(ctx context.Context, id valueobjects.EntityID) (bool, error) {
	var removed int
	err := b.db.QueryRowContext(ctx,
		`SELECT removed FROM entities WHERE id = ?`, id.String()).Scan(&removed)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.NewDatabaseError("query validity", err)
	}
	return removed == 0, nil
}

// RemoveEntity soft-deletes an entity
func (b *Backend) RemoveEntity(ctx context.Context, id valueobjects.EntityID) error {
	kind, err := b.entityKind(ctx, id)
	if err != nil {
		return err
	}
	if kind == entities.KindGlobal {
		return pkgerrors.NewValidationError("the global entity cannot be removed")
	}
	if _, err := b.db.ExecContext(ctx,
		`UPDATE entities SET removed = 1 WHERE id = ?`, id.String()); err != nil {
		return pkgerrors.NewDatabaseError("remove entity", err)
	}
	return nil
}

// RemoveEdge is the native edge removal path; it skips the kind lookup the
// generic removal needs
func (b *Backend) RemoveEdge(ctx context.Context, id valueobjects.EntityID) error {
	result, err := b.db.ExecContext(ctx, `
		UPDATE entities SET removed = 1
		WHERE id = ? AND kind = ?`, id.String(), string(entities.KindEdge))
	if err != nil {
		return pkgerrors.NewDatabaseError("remove edge", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("remove edge", err)
	}
	if affected == 0 {
		return pkgerrors.NewInvalidReferenceError(id.String())
	}
	return nil
}

// UnremoveEntity restores a soft-deleted entity
func (b *Backend) UnremoveEntity(ctx context.Context, id valueobjects.EntityID) error {
	if _, err := b.entityKind(ctx, id); err != nil {
		return err
	}
	if _, err := b.db.ExecContext(ctx,
		`UPDATE entities SET removed = 0 WHERE id = ?`, id.String()); err != nil {
		return pkgerrors.NewDatabaseError("unremove entity", err)
	}
	return nil
}

// nodeGeometry is one candidate row of a spatial scan
type nodeGeometry struct {
	id     valueobjects.EntityID
	center valueobjects.Vector
	radius float64
}

func (b *Backend) scanNodeGeometry(ctx context.Context, nodeType entities.NodeType) ([]nodeGeometry, error) {
	query := `
		SELECT n.id, COALESCE(pc.value, ''), COALESCE(pr.value, '')
		FROM nodes n
		JOIN entities e ON e.id = n.id
		LEFT JOIN properties pc ON pc.entity_id = n.id AND pc.name = ?
		LEFT JOIN properties pr ON pr.entity_id = n.id AND pr.name = ?
		WHERE e.removed = 0`
	args := []any{entities.PropCenter, entities.PropRadius}
	if nodeType != "" {
		query += ` AND n.node_type = ?`
		args = append(args, string(nodeType))
	}
	query += ` ORDER BY n.rowid`

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("spatial scan", err)
	}
	defer rows.Close()

	var result []nodeGeometry
	for rows.Next() {
		var id, rawCenter, rawRadius string
		if err := rows.Scan(&id, &rawCenter, &rawRadius); err != nil {
			return nil, pkgerrors.NewDatabaseError("spatial scan", err)
		}
		center, err := entities.ParseVector(rawCenter)
		if err != nil {
			return nil, err
		}
		radius, err := entities.ParseNumber(rawRadius)
		if err != nil {
			return nil, err
		}
		result = append(result, nodeGeometry{id: valueobjects.EntityID(id), center: center, radius: radius})
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("spatial scan", err)
	}
	return result, nil
}

// NodesInArea returns all valid nodes whose center lies inside the box
func (b *Backend) NodesInArea(ctx context.Context, area valueobjects.Box) ([]valueobjects.EntityID, error) {
	candidates, err := b.scanNodeGeometry(ctx, "")
	if err != nil {
		return nil, err
	}
	var ids []valueobjects.EntityID
	for _, candidate := range candidates {
		if area.Contains(candidate.center) {
			ids = append(ids, candidate.id)
		}
	}
	return ids, nil
}

// ObjectNodesTouchingArea returns all valid object nodes whose sphere of
// radius max(radius, minRadius) reaches the box
func (b *Backend) ObjectNodesTouchingArea(ctx context.Context, area valueobjects.Box, minRadius float64) ([]valueobjects.EntityID, error) {
	candidates, err := b.scanNodeGeometry(ctx, entities.NodeTypeObject)
	if err != nil {
		return nil, err
	}
	var ids []valueobjects.EntityID
	for _, candidate := range candidates {
		if area.Expand(math.Max(candidate.radius, minRadius)).Contains(candidate.center) {
			ids = append(ids, candidate.id)
		}
	}
	return ids, nil
}

// EdgeBetween returns a valid edge connecting the two nodes, zero id when none
func (b *Backend) EdgeBetween(ctx context.Context, a, c valueobjects.EntityID) (valueobjects.EntityID, error) {
	var id string
	err := b.db.QueryRowContext(ctx, `
		SELECT ed.id FROM edges ed
		JOIN entities e ON e.id = ed.id
		WHERE ((ed.node_a = ? AND ed.node_b = ?) OR (ed.node_a = ? AND ed.node_b = ?))
		  AND e.removed = 0
		ORDER BY ed.rowid LIMIT 1`,
		a.String(), c.String(), c.String(), a.String()).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", pkgerrors.NewDatabaseError("query edge between", err)
	}
	return valueobjects.EntityID(id), nil
}

func scanIDs(rows *sql.Rows) ([]valueobjects.EntityID, error) {
	defer rows.Close()
	var ids []valueobjects.EntityID
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, pkgerrors.NewDatabaseError("scan row", err)
		}
		ids = append(ids, valueobjects.EntityID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("scan rows", err)
	}
	return ids, nil
}
