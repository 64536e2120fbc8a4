package ot

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// ErrUnknownOperation is returned by OperationFromJSON for an unknown
// __className.
var ErrUnknownOperation = errors.New("unknown operation class")

// OperationFromJSON decodes an operation written by MarshalJSON. When doc is
// not nil every root the operation refers to must exist in it.
func OperationFromJSON(data []byte, doc *model.Document) (Operation, error) {
	var header struct {
		ClassName   string `json:"__className"`
		BaseVersion *int   `json:"baseVersion"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("decode operation header: %w", err)
	}
	bv := Detached
	if header.BaseVersion != nil {
		bv = *header.BaseVersion
	}

	op, roots, err := decodeOperation(header.ClassName, data, bv)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", header.ClassName, err)
	}
	if err := op.wellFormed(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", header.ClassName, err)
	}
	if doc != nil {
		for _, root := range roots {
			if !doc.HasRoot(root) {
				return nil, fmt.Errorf("decode %s: %w: %q", header.ClassName, model.ErrRootDoesNotExist, root)
			}
		}
	}
	return op, nil
}

// OperationsFromJSON decodes a JSON array of operations.
func OperationsFromJSON(data []byte, doc *model.Document) ([]Operation, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode operations: %w", err)
	}
	ops := make([]Operation, 0, len(raw))
	for i, r := range raw {
		op, err := OperationFromJSON(r, doc)
		if err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func decodeOperation(className string, data []byte, bv int) (Operation, []string, error) {
	switch className {
	case KindInsert.String():
		var v insertJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		op := NewInsertOperation(v.Position, v.Nodes, bv)
		op.ShouldReceiveAttributes = v.ShouldReceiveAttributes
		return op, []string{v.Position.Root}, nil

	case KindMove.String():
		var v moveJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		op := NewMoveOperation(v.SourcePosition, v.HowMany, v.TargetPosition, bv)
		return op, []string{v.SourcePosition.Root, v.TargetPosition.Root}, nil

	case KindAttribute.String():
		var v attributeJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		op := NewAttributeOperation(v.Range, v.Key, v.OldValue, v.NewValue, bv)
		return op, []string{v.Range.Root()}, nil

	case KindRootAttribute.String():
		var v rootAttributeJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		op := NewRootAttributeOperation(v.Root, v.Key, v.OldValue, v.NewValue, bv)
		return op, []string{v.Root}, nil

	case KindRename.String():
		var v renameJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		op := NewRenameOperation(v.Position, v.OldName, v.NewName, bv)
		return op, []string{v.Position.Root}, nil

	case KindMarker.String():
		var v markerJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		var roots []string
		for _, r := range []*model.Range{v.OldRange, v.NewRange} {
			if r != nil {
				roots = append(roots, r.Root())
			}
		}
		return NewMarkerOperation(v.Name, v.OldRange, v.NewRange, v.AffectsData, bv), roots, nil

	case KindSplit.String():
		var v splitJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		roots := []string{v.SplitPosition.Root, v.InsertionPosition.Root}
		if v.GraveyardPosition != nil {
			roots = append(roots, v.GraveyardPosition.Root)
		}
		op := NewSplitOperation(v.SplitPosition, v.HowMany, v.InsertionPosition, v.GraveyardPosition, bv)
		return op, roots, nil

	case KindMerge.String():
		var v mergeJSON
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, nil, err
		}
		op := NewMergeOperation(v.SourcePosition, v.HowMany, v.TargetPosition, v.GraveyardPosition, bv)
		return op, []string{v.SourcePosition.Root, v.TargetPosition.Root, v.GraveyardPosition.Root}, nil

	case KindNoOp.String():
		return NewNoOperation(bv), nil, nil
	}
	return nil, nil, fmt.Errorf("%w %q", ErrUnknownOperation, className)
}
