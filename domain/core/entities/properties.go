package entities

import (
	"strconv"
	"strings"

	"cartograph/domain/core/valueobjects"
	pkgerrors "cartograph/pkg/errors"
)

// Property values are persisted as strings; a minimal backend only has to
// store string properties. Numbers and vectors are layered on top through
// this codec. FormatFloat with precision -1 guarantees the shortest encoding
// that parses back to exactly the same float64, so round-trips are lossless.

// FormatNumber serializes a numeric property value
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ParseNumber deserializes a numeric property value. The empty string is an
// absent property and parses as 0.
func ParseNumber(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, pkgerrors.NewValidationError("malformed numeric property: " + s).WithCause(err)
	}
	return v, nil
}

// FormatVector serializes a vector property value as "x,y,z"
func FormatVector(v valueobjects.Vector) string {
	return FormatNumber(v.X()) + "," + FormatNumber(v.Y()) + "," + FormatNumber(v.Z())
}

// ParseVector deserializes a vector property value. The empty string is an
// absent property and parses as the zero vector.
func ParseVector(s string) (valueobjects.Vector, error) {
	if s == "" {
		return valueobjects.ZeroVector(), nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return valueobjects.Vector{}, pkgerrors.NewValidationError("malformed vector property: " + s)
	}
	var components [3]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return valueobjects.Vector{}, pkgerrors.NewValidationError("malformed vector property: " + s).WithCause(err)
		}
		components[i] = v
	}
	return valueobjects.NewVector(components[0], components[1], components[2]), nil
}
