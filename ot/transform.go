package ot

import "github.com/dannyswat/vctree/model"

type transformFunc func(a, b Operation, ctx Context) []Operation

// transformations is indexed by the kinds of a and b. Every cell is set.
var transformations [kindCount][kindCount]transformFunc

func setTransformation[A, B Operation](ka, kb Kind, fn func(a A, b B, ctx Context) []Operation) {
	transformations[ka][kb] = func(a, b Operation, ctx Context) []Operation {
		return fn(a.(A), b.(B), ctx)
	}
}

func keep(a, _ Operation, _ Context) []Operation {
	return []Operation{a}
}

func init() {
	for i := range transformations {
		for j := range transformations[i] {
			transformations[i][j] = keep
		}
	}

	setTransformation(KindAttribute, KindAttribute, attributeByAttribute)
	setTransformation(KindAttribute, KindInsert, attributeByInsert)
	setTransformation(KindAttribute, KindMove, attributeByMove)
	setTransformation(KindAttribute, KindSplit, attributeBySplit)
	setTransformation(KindAttribute, KindMerge, attributeByMerge)

	setTransformation(KindInsert, KindAttribute, insertByAttribute)
	setTransformation(KindInsert, KindInsert, insertByInsert)
	setTransformation(KindInsert, KindMove, insertByMove)
	setTransformation(KindInsert, KindSplit, insertBySplit)
	setTransformation(KindInsert, KindMerge, insertByMerge)

	setTransformation(KindMarker, KindInsert, markerByInsert)
	setTransformation(KindMarker, KindMarker, markerByMarker)
	setTransformation(KindMarker, KindMove, markerByMove)
	setTransformation(KindMarker, KindSplit, markerBySplit)
	setTransformation(KindMarker, KindMerge, markerByMerge)

	setTransformation(KindMerge, KindInsert, mergeByInsert)
	setTransformation(KindMerge, KindMerge, mergeByMerge)
	setTransformation(KindMerge, KindMove, mergeByMove)
	setTransformation(KindMerge, KindSplit, mergeBySplit)

	setTransformation(KindMove, KindInsert, moveByInsert)
	setTransformation(KindMove, KindMove, moveByMove)
	setTransformation(KindMove, KindSplit, moveBySplit)
	setTransformation(KindMove, KindMerge, moveByMerge)

	setTransformation(KindRename, KindInsert, renameByInsert)
	setTransformation(KindRename, KindMerge, renameByMerge)
	setTransformation(KindRename, KindMove, renameByMove)
	setTransformation(KindRename, KindRename, renameByRename)
	setTransformation(KindRename, KindSplit, renameBySplit)

	setTransformation(KindRootAttribute, KindRootAttribute, rootAttributeByRootAttribute)

	setTransformation(KindSplit, KindInsert, splitByInsert)
	setTransformation(KindSplit, KindMerge, splitByMerge)
	setTransformation(KindSplit, KindMove, splitByMove)
	setTransformation(KindSplit, KindSplit, splitBySplit)
}

// Transform returns the operations a turns into when b was applied first.
// Neither a nor b is modified. The result is never empty: an operation with
// nothing left to do becomes a NoOperation. Result base versions continue
// from b.
func Transform(a, b Operation, ctx Context) []Operation {
	result := transform(a, b, ctx)
	next := Detached
	if b.BaseVersion() != Detached {
		next = b.BaseVersion() + 1
	}
	updateBaseVersions(result, next)
	return result
}

func transform(a, b Operation, ctx Context) []Operation {
	mustBeWellFormed(a)
	mustBeWellFormed(b)
	result := transformations[a.Kind()][b.Kind()](a.Clone(), b, ctx)
	if len(result) == 0 {
		return []Operation{NewNoOperation(a.BaseVersion())}
	}
	for i, op := range result {
		// A move that puts content back where it is changes nothing.
		if m, ok := op.(*MoveOperation); ok && m.putsBack() {
			result[i] = NewNoOperation(m.baseVersion)
		}
	}
	return result
}

func updateBaseVersions(ops []Operation, base int) {
	for i, op := range ops {
		if base == Detached {
			op.setBaseVersion(Detached)
			continue
		}
		op.setBaseVersion(base + i)
	}
}

func noop() []Operation {
	return []Operation{NewNoOperation(0)}
}

// moveTargetIntoMovedRange reports whether a moves content into the range
// moved by b.
func moveTargetIntoMovedRange(a, b *MoveOperation) bool {
	_, ok := a.TargetPosition.TransformedByDeletion(b.SourcePosition, b.HowMany)
	return !ok
}

// makeMoveOperationsFromRanges creates moves for ranges, in order, all to
// target. Each move shifts the ranges and target that follow it.
func makeMoveOperationsFromRanges(ranges []model.Range, target model.Position) []Operation {
	ranges = append([]model.Range(nil), ranges...)
	ops := make([]Operation, 0, len(ranges))
	for i, r := range ranges {
		op := NewMoveOperation(r.Start, r.End.Offset()-r.Start.Offset(), target, 0)
		ops = append(ops, op)
		for j := i + 1; j < len(ranges); j++ {
			ranges[j] = ranges[j].TransformedByMove(op.SourcePosition, op.TargetPosition, op.HowMany, false)[0]
		}
		target = target.TransformedByMove(op.SourcePosition, op.TargetPosition, op.HowMany)
	}
	return ops
}

// breakRangeByMove returns ranges that cover the same content as r once b
// moved part of it away.
func breakRangeByMove(r model.Range, b *MoveOperation) []model.Range {
	moveRange := b.sourceRange()
	var common *model.Range
	var difference []model.Range

	switch {
	case moveRange.ContainsRange(r, true):
		c := r
		common = &c
	case r.Start.HasSameParentAs(moveRange.Start):
		difference = r.Difference(moveRange)
		if c, ok := r.Intersection(moveRange); ok {
			common = &c
		}
	default:
		difference = []model.Range{r}
	}

	var result []model.Range
	for _, diff := range difference {
		d, ok := diff.TransformedByDeletion(b.SourcePosition, b.HowMany)
		if !ok {
			continue
		}
		target := b.MovedRangeStart()
		spread := d.Start.HasSameParentAs(target)
		result = append(result, d.TransformedByInsertion(target, b.HowMany, spread)...)
	}
	if common != nil {
		result = append(result, common.TransformedByMove(b.SourcePosition, b.TargetPosition, b.HowMany, false)[0])
	}
	return result
}

// complementaryAttribute returns the operation that gives content inserted
// by op the attribute value newValue, or nil when it already has it.
func complementaryAttribute(op *InsertOperation, key string, newValue any) *AttributeOperation {
	if len(op.Nodes) == 0 {
		return nil
	}
	insertValue := op.Nodes[0].Attributes().Get(key)
	if model.ValuesEqual(insertValue, newValue) {
		return nil
	}
	r := model.NewRange(op.Position, op.Position.ShiftedBy(op.HowMany()))
	return NewAttributeOperation(r, key, insertValue, newValue, 0)
}

// Attribute.

func attributeByAttribute(a, b *AttributeOperation, ctx Context) []Operation {
	if a.Key != b.Key || !a.Range.Start.HasSameParentAs(b.Range.Start) {
		return []Operation{a}
	}
	var ops []Operation
	for _, r := range a.Range.Difference(b.Range) {
		ops = append(ops, NewAttributeOperation(r, a.Key, a.OldValue, a.NewValue, 0))
	}
	if common, ok := a.Range.Intersection(b.Range); ok && ctx.AIsStrong {
		ops = append(ops, NewAttributeOperation(common, b.Key, b.NewValue, a.NewValue, 0))
	}
	if len(ops) == 0 {
		return noop()
	}
	return ops
}

func attributeByInsert(a *AttributeOperation, b *InsertOperation, _ Context) []Operation {
	if a.Range.Start.HasSameParentAs(b.Position) && a.Range.ContainsPosition(b.Position) {
		ranges := a.Range.TransformedByInsertion(b.Position, b.HowMany(), !b.ShouldReceiveAttributes)
		var result []Operation
		if b.ShouldReceiveAttributes {
			if op := complementaryAttribute(b, a.Key, a.OldValue); op != nil {
				result = append(result, op)
			}
		}
		for _, r := range ranges {
			result = append(result, NewAttributeOperation(r, a.Key, a.OldValue, a.NewValue, a.baseVersion))
		}
		return result
	}
	a.Range = a.Range.TransformedByInsertion(b.Position, b.HowMany(), false)[0]
	return []Operation{a}
}

func attributeByMove(a *AttributeOperation, b *MoveOperation, _ Context) []Operation {
	var result []Operation
	for _, r := range breakRangeByMove(a.Range, b) {
		result = append(result, NewAttributeOperation(r, a.Key, a.OldValue, a.NewValue, a.baseVersion))
	}
	return result
}

func attributeBySplit(a *AttributeOperation, b *SplitOperation, _ Context) []Operation {
	if a.Range.End.IsEqual(b.InsertionPosition) {
		if b.GraveyardPosition == nil {
			a.Range.End = a.Range.End.ShiftedBy(1)
		}
		return []Operation{a}
	}
	if a.Range.Start.HasSameParentAs(b.SplitPosition) && a.Range.ContainsPosition(b.SplitPosition) {
		second := a.Clone().(*AttributeOperation)
		moveTarget := b.MoveTargetPosition()
		second.Range = model.NewRange(moveTarget, a.Range.End.Combined(b.SplitPosition, moveTarget))
		a.Range.End = b.SplitPosition.WithStickiness(model.StickToPrevious)
		return []Operation{a, second}
	}
	a.Range = rangeBySplit(a.Range, b)
	return []Operation{a}
}

func attributeByMerge(a *AttributeOperation, b *MergeOperation, _ Context) []Operation {
	var ranges []model.Range
	deletion := b.DeletionPosition()
	if a.Range.Start.HasSameParentAs(deletion) {
		if a.Range.ContainsPosition(deletion) || a.Range.Start.IsEqual(deletion) {
			ranges = append(ranges, model.RangeFromPositionAndShift(b.GraveyardPosition, 1))
		}
	}
	if r := rangeByMerge(a.Range, b); !r.IsCollapsed() {
		ranges = append(ranges, r)
	}
	var result []Operation
	for _, r := range ranges {
		result = append(result, NewAttributeOperation(r, a.Key, a.OldValue, a.NewValue, a.baseVersion))
	}
	return result
}

// Insert.

func insertByAttribute(a *InsertOperation, b *AttributeOperation, _ Context) []Operation {
	result := []Operation{a}
	if a.ShouldReceiveAttributes && a.Position.HasSameParentAs(b.Range.Start) && b.Range.ContainsPosition(a.Position) {
		if op := complementaryAttribute(a, b.Key, b.NewValue); op != nil {
			result = append(result, op)
		}
	}
	return result
}

func insertByInsert(a, b *InsertOperation, ctx Context) []Operation {
	if a.Position.IsEqual(b.Position) && ctx.AIsStrong {
		return []Operation{a}
	}
	a.Position = positionByInsert(a.Position, b)
	return []Operation{a}
}

func insertByMove(a *InsertOperation, b *MoveOperation, _ Context) []Operation {
	a.Position = positionByMove(a.Position, b)
	return []Operation{a}
}

func insertBySplit(a *InsertOperation, b *SplitOperation, _ Context) []Operation {
	a.Position = positionBySplit(a.Position, b)
	return []Operation{a}
}

func insertByMerge(a *InsertOperation, b *MergeOperation, _ Context) []Operation {
	a.Position = positionByMerge(a.Position, b)
	return []Operation{a}
}

// Marker.

func markerByInsert(a *MarkerOperation, b *InsertOperation, _ Context) []Operation {
	return markerByOperation(a, b)
}

func markerByMarker(a, b *MarkerOperation, ctx Context) []Operation {
	if a.Name == b.Name {
		if !ctx.AIsStrong {
			return noop()
		}
		a.OldRange = cloneRange(b.NewRange)
	}
	return []Operation{a}
}

func markerByMove(a *MarkerOperation, b *MoveOperation, _ Context) []Operation {
	return markerByOperation(a, b)
}

func markerBySplit(a *MarkerOperation, b *SplitOperation, _ Context) []Operation {
	return markerByOperation(a, b)
}

func markerByMerge(a *MarkerOperation, b *MergeOperation, _ Context) []Operation {
	return markerByOperation(a, b)
}

// markerByOperation moves the marker ranges the way applying b moves the
// markers already in the document.
func markerByOperation(a *MarkerOperation, b Operation) []Operation {
	transform := func(r model.Range) model.Range { return markerRange(r, b) }
	a.OldRange = mapRange(a.OldRange, transform)
	a.NewRange = mapRange(a.NewRange, transform)
	return []Operation{a}
}

func mapRange(r *model.Range, fn func(model.Range) model.Range) *model.Range {
	if r == nil {
		return nil
	}
	out := fn(*r)
	return &out
}

// Rename.

func renameByInsert(a *RenameOperation, b *InsertOperation, _ Context) []Operation {
	a.Position = positionByInsert(a.Position, b)
	return []Operation{a}
}

func renameByMerge(a *RenameOperation, b *MergeOperation, _ Context) []Operation {
	// The renamed element was merged: follow it to the graveyard.
	if a.Position.IsEqual(b.DeletionPosition()) {
		a.Position = b.GraveyardPosition.WithStickiness(model.StickToNext)
		return []Operation{a}
	}
	a.Position = positionByMerge(a.Position, b)
	return []Operation{a}
}

func renameByMove(a *RenameOperation, b *MoveOperation, _ Context) []Operation {
	a.Position = positionByMove(a.Position, b)
	return []Operation{a}
}

func renameByRename(a, b *RenameOperation, ctx Context) []Operation {
	if a.Position.IsEqual(b.Position) {
		if !ctx.AIsStrong {
			return noop()
		}
		a.OldName = b.NewName
	}
	return []Operation{a}
}

func renameBySplit(a *RenameOperation, b *SplitOperation, _ Context) []Operation {
	// The renamed element was split, so the new element is renamed too.
	if a.Position.Root == b.SplitPosition.Root && samePath(a.Position.Path, b.SplitPosition.ParentPath()) && b.GraveyardPosition == nil {
		extra := NewRenameOperation(a.Position.ShiftedBy(1), a.OldName, a.NewName, 0)
		return []Operation{a, extra}
	}
	a.Position = positionBySplit(a.Position, b)
	return []Operation{a}
}

func samePath(a, b model.Path) bool {
	return len(a) == len(b) && isPrefix(a, b)
}

// Root attribute.

func rootAttributeByRootAttribute(a, b *RootAttributeOperation, ctx Context) []Operation {
	if a.Root == b.Root && a.Key == b.Key {
		if !ctx.AIsStrong || model.ValuesEqual(a.NewValue, b.NewValue) {
			return noop()
		}
		a.OldValue = b.NewValue
	}
	return []Operation{a}
}
