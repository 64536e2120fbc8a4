package ot

import (
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// ApplyOperation validates op against doc and executes it. The document
// markers follow the change.
func ApplyOperation(doc *model.Document, op Operation) error {
	if err := op.Validate(doc); err != nil {
		return err
	}
	applyTo(doc, op)
	return nil
}

func applyTo(doc *model.Document, op Operation) {
	op.execute(doc)
	doc.Markers().Rewrite(func(m model.Marker) model.Range {
		return markerRange(m.Range, op)
	})
}

// ApplyOperations applies ops in order and stops at the first failure.
func ApplyOperations(doc *model.Document, ops []Operation) error {
	for i, op := range ops {
		if err := ApplyOperation(doc, op); err != nil {
			return fmt.Errorf("failed to apply op %d (%s): %w", i, op.Kind(), err)
		}
	}
	return nil
}
