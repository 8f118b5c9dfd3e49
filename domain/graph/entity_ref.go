package graph

import (
	"context"

	"cartograph/domain/core/entities"
	"cartograph/domain/core/valueobjects"
)

// EntityRef is a typed handle over a raw entity id. All property access goes
// through the shared per-id cache: reads are memoized, writes go to the cache
// first and then to the backend.
//
// Operating on a removed entity is permitted, since soft delete exists so
// edits can be undone, and property reads keep reflecting last-known values.
// Callers that need existence guarantees check Valid first.
type EntityRef struct {
	m  *Map
	id valueobjects.EntityID
}

// ID returns the referenced entity id
func (r *EntityRef) ID() valueobjects.EntityID {
	return r.id
}

// PString reads a string property through the cache
func (r *EntityRef) PString(ctx context.Context, name string) (string, error) {
	if value, ok := r.m.cachedProp(r.id, name); ok {
		return value, nil
	}
	value, err := r.m.backend.PString(ctx, r.id, name)
	if err != nil {
		return "", err
	}
	r.m.storeProp(r.id, name, value)
	return value, nil
}

// SetPString writes a string property. The cache is updated before the
// backend write is issued, so interleaved reads observe the new value.
func (r *EntityRef) SetPString(ctx context.Context, name, value string) error {
	r.m.storeProp(r.id, name, value)
	return r.m.backend.SetPString(ctx, r.id, name, value)
}

// PNumber reads a numeric property, expressed through the string codec
func (r *EntityRef) PNumber(ctx context.Context, name string) (float64, error) {
	raw, err := r.PString(ctx, name)
	if err != nil {
		return 0, err
	}
	return entities.ParseNumber(raw)
}

// SetPNumber writes a numeric property, expressed through the string codec
func (r *EntityRef) SetPNumber(ctx context.Context, name string, value float64) error {
	return r.SetPString(ctx, name, entities.FormatNumber(value))
}

// PVector reads a vector property, expressed through the string codec
func (r *EntityRef) PVector(ctx context.Context, name string) (valueobjects.Vector, error) {
	raw, err := r.PString(ctx, name)
	if err != nil {
		return valueobjects.Vector{}, err
	}
	return entities.ParseVector(raw)
}

// SetPVector writes a vector property, expressed through the string codec
func (r *EntityRef) SetPVector(ctx context.Context, name string, value valueobjects.Vector) error {
	return r.SetPString(ctx, name, entities.FormatVector(value))
}

// Exists checks whether the entity has a backend record. Never cached: it
// must reflect the latest removal state.
func (r *EntityRef) Exists(ctx context.Context) (bool, error) {
	return r.m.backend.EntityExists(ctx, r.id)
}

// Valid checks whether the entity exists and is not soft-removed. Never
// cached.
func (r *EntityRef) Valid(ctx context.Context) (bool, error) {
	return r.m.backend.EntityValid(ctx, r.id)
}

// Remove soft-deletes the entity. Node and edge references override this with
// the kind-specific cache invalidation.
func (r *EntityRef) Remove(ctx context.Context) error {
	return r.m.backend.RemoveEntity(ctx, r.id)
}

// Unremove restores a soft-deleted entity
func (r *EntityRef) Unremove(ctx context.Context) error {
	return r.m.backend.UnremoveEntity(ctx, r.id)
}
