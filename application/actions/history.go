package actions

import (
	"context"

	"go.uber.org/zap"

	"cartograph/domain/graph"
	pkgerrors "cartograph/pkg/errors"
)

// History executes actions against a map and keeps undo/redo stacks of their
// inverses. Whether an execution is recorded is the caller's choice per call:
// Do records, DoSilent does not. Action execution must be serialized by the
// caller; History itself performs one action at a time and is not safe for
// concurrent use.
type History struct {
	m      *graph.Map
	logger *zap.Logger
	undo   []Action
	redo   []Action
}

// NewHistory creates an empty history over the given map
func NewHistory(m *graph.Map, logger *zap.Logger) *History {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &History{m: m, logger: logger}
}

// Do performs an action and records its inverse on the undo stack. Any redo
// history is discarded: redo only replays a straight line of undos.
func (h *History) Do(ctx context.Context, a Action) error {
	inverse, err := a.Perform(ctx, h.m)
	if err != nil {
		h.logger.Warn("action failed", zap.Error(err))
		return err
	}
	h.undo = append(h.undo, inverse)
	h.redo = nil
	h.logger.Debug("action performed", zap.Int("undo_depth", len(h.undo)))
	return nil
}

// DoSilent performs an action without touching the history and hands the
// inverse to the caller
func (h *History) DoSilent(ctx context.Context, a Action) (Action, error) {
	return a.Perform(ctx, h.m)
}

// Undo performs the most recent recorded inverse and moves it to the redo
// stack
func (h *History) Undo(ctx context.Context) error {
	if len(h.undo) == 0 {
		return pkgerrors.NewValidationError("nothing to undo")
	}
	inverse := h.undo[len(h.undo)-1]
	redo, err := inverse.Perform(ctx, h.m)
	if err != nil {
		return err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, redo)
	h.logger.Debug("action undone", zap.Int("undo_depth", len(h.undo)))
	return nil
}

// Redo re-performs the most recently undone action
func (h *History) Redo(ctx context.Context) error {
	if len(h.redo) == 0 {
		return pkgerrors.NewValidationError("nothing to redo")
	}
	action := h.redo[len(h.redo)-1]
	inverse, err := action.Perform(ctx, h.m)
	if err != nil {
		return err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, inverse)
	return nil
}

// CanUndo reports whether the undo stack is non-empty
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether the redo stack is non-empty
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoDepth returns the number of recorded undoable actions
func (h *History) UndoDepth() int {
	return len(h.undo)
}

// Clear drops both stacks
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
