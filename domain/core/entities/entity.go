// Package entities defines the map entity vocabulary shared by the reference
// layer and every storage backend: entity kinds, node types and the serialized
// property model.
package entities

import "cartograph/domain/core/valueobjects"

// Kind discriminates what a stored entity is
type Kind string

const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"

	// KindGlobal is the reserved singleton entity carrying whole-map
	// properties
	KindGlobal Kind = "global"
)

// GlobalID is the fixed id of the global singleton entity
const GlobalID valueobjects.EntityID = "global"

// NodeType tags what a node represents on the map
type NodeType string

const (
	// NodeTypeObject is a drawn object: a container for point nodes that
	// carries the object's overall geometry
	NodeTypeObject NodeType = "object"

	// NodeTypePoint is a single point of an object's outline
	NodeTypePoint NodeType = "point"
)

// Well-known property names. Properties are open-ended; these are the ones the
// core itself reads and writes.
const (
	PropName            = "name"
	PropCenter          = "center"
	PropEffectiveCenter = "effectiveCenter"
	PropRadius          = "radius"
	PropLayer           = "layer"
)
