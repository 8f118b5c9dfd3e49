package valueobjects

import "github.com/google/uuid"

// EntityID is a value object identifying a stored map entity. Backends assign
// ids; everything above the storage layer treats them as opaque.
type EntityID string

// NewEntityID creates a new random EntityID
func NewEntityID() EntityID {
	return EntityID(uuid.New().String())
}

// String returns the string representation of the EntityID
func (id EntityID) String() string {
	return string(id)
}

// IsZero checks if the EntityID is the zero value
func (id EntityID) IsZero() bool {
	return id == ""
}
