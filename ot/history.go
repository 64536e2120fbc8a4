package ot

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// History records applied operations and the undo pairs between them.
type History struct {
	operations []Operation
	undone     mapset.Set[Operation]
	undoneBy   map[Operation]Operation
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{
		undone:   mapset.NewThreadUnsafeSet[Operation](),
		undoneBy: make(map[Operation]Operation),
	}
}

// AddOperation appends op. Operations must be added in version order.
func (h *History) AddOperation(op Operation) {
	h.operations = append(h.operations, op)
}

// Operations returns the recorded operations with a base version of at
// least from.
func (h *History) Operations(from int) []Operation {
	for i, op := range h.operations {
		if op.BaseVersion() >= from {
			return append([]Operation(nil), h.operations[i:]...)
		}
	}
	return nil
}

// Operation returns the operation applied at baseVersion.
func (h *History) Operation(baseVersion int) (Operation, bool) {
	for _, op := range h.operations {
		if op.BaseVersion() == baseVersion {
			return op, true
		}
	}
	return nil, false
}

// Len returns the number of recorded operations.
func (h *History) Len() int { return len(h.operations) }

// SetOperationAsUndone marks undone as reverted by undoing.
func (h *History) SetOperationAsUndone(undone, undoing Operation) {
	h.undone.Add(undone)
	h.undoneBy[undoing] = undone
}

// forget drops a pair recorded by SetOperationAsUndone.
func (h *History) forget(undone, undoing Operation) {
	delete(h.undoneBy, undoing)
	for _, op := range h.undoneBy {
		if op == undone {
			return
		}
	}
	h.undone.Remove(undone)
}

// IsUndoneOperation reports whether op was reverted.
func (h *History) IsUndoneOperation(op Operation) bool {
	if op == nil {
		return false
	}
	return h.undone.Contains(op)
}

// IsUndoingOperation reports whether op reverted another operation.
func (h *History) IsUndoingOperation(op Operation) bool {
	_, ok := h.undoneBy[op]
	return ok
}

// UndoneOperation returns the operation reverted by undoing.
func (h *History) UndoneOperation(undoing Operation) (Operation, bool) {
	op, ok := h.undoneBy[undoing]
	return op, ok
}
