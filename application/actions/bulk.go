package actions

import (
	"context"
	"fmt"

	"cartograph/domain/graph"
	pkgerrors "cartograph/pkg/errors"
)

// Bulk is an ordered sequence of sub-actions executed as one unit. Its
// inverse is a Bulk of the sub-actions' inverses in reverse order, so undoing
// unwinds effects in exactly the opposite order they were applied. That
// matters when later sub-actions depend on state produced by earlier ones.
type Bulk struct {
	Actions []Action
}

// NewBulk composes actions into a single bulk action
func NewBulk(actions ...Action) Bulk {
	return Bulk{Actions: actions}
}

// Perform executes the sub-actions in order and returns the reversed bulk of
// their inverses. On failure the framework does not roll back already
// executed sub-actions; the returned BulkError carries their inverses so the
// caller can decide to.
func (b Bulk) Perform(ctx context.Context, m *graph.Map) (Action, error) {
	inverses := make([]Action, 0, len(b.Actions))
	for i, sub := range b.Actions {
		inverse, err := sub.Perform(ctx, m)
		if err != nil {
			return nil, &BulkError{
				Index:          i,
				Err:            pkgerrors.NewActionFailureError(fmt.Sprintf("bulk action failed at step %d of %d", i+1, len(b.Actions)), err),
				PartialInverse: Bulk{Actions: reversed(inverses)},
			}
		}
		inverses = append(inverses, inverse)
	}
	return Bulk{Actions: reversed(inverses)}, nil
}

func reversed(actions []Action) []Action {
	out := make([]Action, len(actions))
	for i, a := range actions {
		out[len(actions)-1-i] = a
	}
	return out
}

// BulkError reports a bulk action that failed partway through. Sub-actions
// before Index did execute and their effects are still in place.
// PartialInverse undoes them, already in reverse order; callers wanting
// all-or-nothing semantics perform it themselves.
type BulkError struct {
	Index          int // index of the failed sub-action
	Err            error
	PartialInverse Bulk
}

// Error implements the error interface
func (e *BulkError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying ActionFailure error
func (e *BulkError) Unwrap() error {
	return e.Err
}
