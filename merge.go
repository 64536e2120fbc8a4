package vctree

import (
	"errors"
	"fmt"

	"github.com/dannyswat/vctree/ot"
)

// Merge combines two concurrent deltas. deltaA wins where both edit the same
// thing; the operations of deltaB that were dropped for that reason are
// returned as conflicts.
func Merge(baseMarkup string, deltaA, deltaB *Delta) (string, *Delta, []Conflict, error) {
	return MergeAll(baseMarkup, []*Delta{deltaA, deltaB})
}

// MergeAll folds deltas in order. Earlier deltas win over later ones.
func MergeAll(baseMarkup string, deltas []*Delta) (string, *Delta, []Conflict, error) {
	if len(deltas) == 0 {
		return "", nil, nil, errors.New("no deltas to merge")
	}
	baseHash, err := hashMarkup(baseMarkup)
	if err != nil {
		return "", nil, nil, err
	}
	for _, d := range deltas {
		if d.BaseHash != baseHash {
			return "", nil, nil, fmt.Errorf("base hash mismatch for delta by %q", d.Author)
		}
	}

	merged := &Delta{
		BaseHash:   baseHash,
		Operations: append([]ot.Operation(nil), deltas[0].Operations...),
		Author:     "system-merge",
		Timestamp:  deltas[0].Timestamp,
	}
	var conflicts []Conflict
	for _, d := range deltas[1:] {
		result := ot.TransformSets(merged.Operations, d.Operations, ot.TransformSetsOptions{})
		conflicts = append(conflicts, droppedOperations(d, result)...)
		merged.Operations = append(merged.Operations, result.OperationsB...)
		merged.Timestamp = max(merged.Timestamp, d.Timestamp)
	}

	patched, err := Patch(baseMarkup, merged)
	return patched, merged, conflicts, err
}

// droppedOperations lists the operations of d that only survived the
// transformation as no-ops.
func droppedOperations(d *Delta, result ot.TransformSetsResult) []Conflict {
	kept := make(map[ot.Operation]bool, len(d.Operations))
	for _, op := range result.OperationsB {
		if original, ok := result.OriginalOperations[op]; ok && op.Kind() != ot.KindNoOp {
			kept[original] = true
		}
	}

	var conflicts []Conflict
	for _, op := range d.Operations {
		if op.Kind() == ot.KindNoOp || kept[op] {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Description: fmt.Sprintf("%s lost to a concurrent operation", op.Kind()),
			Author:      d.Author,
			Operation:   op,
		})
	}
	return conflicts
}
