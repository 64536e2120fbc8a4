package ot

import (
	"github.com/google/uuid"
)

// Batch groups operations that are applied and undone together.
type Batch struct {
	ID         uuid.UUID
	Operations []Operation
	// Undoable is false for batches that must never be reverted, such as
	// remote changes on a peer that only undoes its own work.
	Undoable bool
	// IsUndo marks batches created by Sequencer.Undo.
	IsUndo bool
}

// NewBatch returns an undoable batch holding ops.
func NewBatch(ops ...Operation) *Batch {
	return &Batch{
		ID:         uuid.New(),
		Operations: ops,
		Undoable:   true,
	}
}

// BaseVersion is the base version of the first operation, or Detached for
// an empty batch.
func (b *Batch) BaseVersion() int {
	for _, op := range b.Operations {
		if op.BaseVersion() != Detached {
			return op.BaseVersion()
		}
	}
	return Detached
}
