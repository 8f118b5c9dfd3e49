// Package actions is the reversible edit layer of the map core. An Action is
// an immutable request object; performing it mutates the map through the
// reference layer and returns a new Action that exactly undoes those
// mutations. Compound edits compose through Bulk, and History keeps the
// undo/redo stacks for recorded execution.
package actions

import (
	"context"

	"github.com/go-playground/validator/v10"

	"cartograph/domain/graph"
	pkgerrors "cartograph/pkg/errors"
)

// Action is a reversible edit request. Perform takes no input beyond the
// action's own options; a successful Perform returns the exact inverse of the
// mutations it made. There is no "undone" state on the action itself; undo
// is performing the returned inverse.
//
// A failed Perform does not guarantee backend state was left unmodified; see
// BulkError for the partial-failure surface.
type Action interface {
	Perform(ctx context.Context, m *graph.Map) (Action, error)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateOptions checks an action's option record against its struct tags
func validateOptions(a Action) error {
	if err := validate.Struct(a); err != nil {
		return pkgerrors.NewValidationError("invalid action options").WithCause(err)
	}
	return nil
}
