package ot

import "github.com/dannyswat/vctree/model"

// Merge.

func mergeByInsert(a *MergeOperation, b *InsertOperation, _ Context) []Operation {
	if a.SourcePosition.HasSameParentAs(b.Position) {
		a.HowMany += b.HowMany()
	}
	a.SourcePosition = positionByInsert(a.SourcePosition, b)
	a.TargetPosition = positionByInsert(a.TargetPosition, b)
	return []Operation{a}
}

func mergeByMerge(a, b *MergeOperation, ctx Context) []Operation {
	// Both merged the same element into the same place.
	if a.SourcePosition.IsEqual(b.SourcePosition) && a.TargetPosition.IsEqual(b.TargetPosition) {
		if !ctx.BWasUndone {
			return noop()
		}
		path := append(b.GraveyardPosition.Path.Clone(), 0)
		a.SourcePosition = model.Position{Root: b.GraveyardPosition.Root, Path: path}
		a.HowMany = 0
		return []Operation{a}
	}

	// Same element merged into two different elements.
	if a.SourcePosition.IsEqual(b.SourcePosition) && !a.TargetPosition.IsEqual(b.TargetPosition) &&
		!ctx.BWasUndone && !ctx.abIs(RelationSplitAtSource) {
		aToGraveyard := isGraveyard(a.TargetPosition)
		bToGraveyard := isGraveyard(b.TargetPosition)
		aIsWeak := aToGraveyard && !bToGraveyard
		bIsWeak := bToGraveyard && !aToGraveyard
		if bIsWeak || (!aIsWeak && ctx.AIsStrong) {
			source := positionByMerge(b.TargetPosition, b)
			target := positionByMerge(a.TargetPosition, b)
			return []Operation{NewMoveOperation(source, a.HowMany, target, 0)}
		}
		return noop()
	}

	if a.SourcePosition.HasSameParentAs(b.TargetPosition) {
		a.HowMany += b.HowMany
	}
	a.SourcePosition = positionByMerge(a.SourcePosition, b)
	a.TargetPosition = positionByMerge(a.TargetPosition, b)
	if !a.GraveyardPosition.IsEqual(b.GraveyardPosition) || !ctx.AIsStrong {
		a.GraveyardPosition = positionByMerge(a.GraveyardPosition, b)
	}
	return []Operation{a}
}

func mergeByMove(a *MergeOperation, b *MoveOperation, ctx Context) []Operation {
	// b moved the merge target into the merged element. The other side
	// undoes the merge, so b wins.
	if movesMergeTargetIntoSource(b, a) {
		return noop()
	}
	removed := b.sourceRange()
	// The merged element was removed: the removal wins.
	if b.Type() == MoveTypeRemove && !ctx.BWasUndone && !ctx.ForceWeakRemove {
		if a.DeletionPosition().HasSameParentAs(b.SourcePosition) && removed.ContainsPosition(a.SourcePosition) {
			return noop()
		}
	}
	if a.SourcePosition.HasSameParentAs(b.TargetPosition) {
		a.HowMany += b.HowMany
	}
	if a.SourcePosition.HasSameParentAs(b.SourcePosition) {
		a.HowMany -= b.HowMany
	}
	a.SourcePosition = positionByMove(a.SourcePosition, b)
	a.TargetPosition = positionByMove(a.TargetPosition, b)
	// The graveyard position behaves like a strong move target.
	if !a.GraveyardPosition.IsEqual(b.TargetPosition) {
		a.GraveyardPosition = positionByMove(a.GraveyardPosition, b)
	}
	return []Operation{a}
}

func mergeBySplit(a *MergeOperation, b *SplitOperation, ctx Context) []Operation {
	if b.GraveyardPosition != nil {
		if p, ok := a.GraveyardPosition.TransformedByDeletion(*b.GraveyardPosition, 1); ok {
			a.GraveyardPosition = p
		}
		if a.DeletionPosition().IsEqual(*b.GraveyardPosition) {
			a.HowMany = b.HowMany
		}
	}

	if a.TargetPosition.IsEqual(b.SplitPosition) {
		mergeInside := b.HowMany != 0
		mergeSplittingElement := b.GraveyardPosition != nil && a.DeletionPosition().IsEqual(*b.GraveyardPosition)
		if mergeInside || mergeSplittingElement {
			a.SourcePosition = positionBySplit(a.SourcePosition, b)
			a.TargetPosition = positionBySplit(a.TargetPosition, b)
			return []Operation{a}
		}
	}

	if a.SourcePosition.IsEqual(b.SplitPosition) {
		if ctx.abIs(RelationMergeSourceNotMoved) {
			a.HowMany = 0
			a.TargetPosition = positionBySplit(a.TargetPosition, b)
			return []Operation{a}
		}
		if ctx.abIs(RelationMergeSameElement) || a.SourcePosition.Offset() > 0 {
			a.SourcePosition = b.MoveTargetPosition()
			a.TargetPosition = positionBySplit(a.TargetPosition, b)
			return []Operation{a}
		}
	}

	if a.SourcePosition.HasSameParentAs(b.SplitPosition) {
		a.HowMany = b.SplitPosition.Offset()
	}
	// A child of the merged element was split.
	if a.SourcePosition.HasSameParentAs(b.InsertionPosition) {
		a.HowMany++
	}
	a.SourcePosition = positionBySplit(a.SourcePosition, b)
	a.TargetPosition = positionBySplit(a.TargetPosition, b)
	return []Operation{a}
}

// Move.

func moveByInsert(a *MoveOperation, b *InsertOperation, _ Context) []Operation {
	moved := a.sourceRange().TransformedByInsertion(b.Position, b.HowMany(), false)[0]
	a.SourcePosition = moved.Start
	a.HowMany = moved.End.Offset() - moved.Start.Offset()
	if !a.TargetPosition.IsEqual(b.Position) {
		a.TargetPosition = positionByInsert(a.TargetPosition, b)
	}
	return []Operation{a}
}

func moveByMove(a, b *MoveOperation, ctx Context) []Operation {
	rangeA := a.sourceRange()
	rangeB := b.sourceRange()
	aIsStrong := ctx.AIsStrong

	// Order of nodes when both moves target the same position.
	insertBefore := !ctx.AIsStrong
	if ctx.abIs(RelationInsertBefore) || ctx.baIs(RelationInsertAfter) {
		insertBefore = true
	} else if ctx.abIs(RelationInsertAfter) || ctx.baIs(RelationInsertBefore) {
		insertBefore = false
	}

	var newTarget model.Position
	if a.TargetPosition.IsEqual(b.TargetPosition) && insertBefore {
		newTarget = a.TargetPosition.Clone()
		if p, ok := a.TargetPosition.TransformedByDeletion(b.SourcePosition, b.HowMany); ok {
			newTarget = p
		}
	} else {
		newTarget = a.TargetPosition.TransformedByMove(b.SourcePosition, b.TargetPosition, b.HowMany)
	}

	// Both move into the content moved by the other. Undo b instead.
	if moveTargetIntoMovedRange(a, b) && moveTargetIntoMovedRange(b, a) {
		return []Operation{b.Reversed()}
	}

	// b moves content inside rangeA to another place inside rangeA.
	if rangeA.ContainsPosition(b.TargetPosition) && rangeA.ContainsRange(rangeB, true) {
		// The boundaries stay outside of b, whatever they stick to.
		start := rangeA.Start.WithStickiness(model.StickToNone)
		end := rangeA.End.WithStickiness(model.StickToNone)
		r := model.NewRange(
			start.TransformedByMove(b.SourcePosition, b.TargetPosition, b.HowMany),
			end.TransformedByMove(b.SourcePosition, b.TargetPosition, b.HowMany),
		)
		return makeMoveOperationsFromRanges([]model.Range{r}, newTarget)
	}

	// rangeA travels together with b.
	if rangeB.ContainsPosition(a.TargetPosition) && rangeB.ContainsRange(rangeA, true) {
		movedStart := b.MovedRangeStart()
		r := model.NewRange(
			rangeA.Start.Combined(b.SourcePosition, movedStart),
			rangeA.End.Combined(b.SourcePosition, movedStart),
		)
		return makeMoveOperationsFromRanges([]model.Range{r}, newTarget)
	}

	// The ranges are on different levels of the tree.
	aParent, bParent := a.SourcePosition.ParentPath(), b.SourcePosition.ParentPath()
	if !samePath(aParent, bParent) && (isPrefix(aParent, bParent) || isPrefix(bParent, aParent)) {
		r := model.NewRange(
			rangeA.Start.TransformedByMove(b.SourcePosition, b.TargetPosition, b.HowMany),
			rangeA.End.TransformedByMove(b.SourcePosition, b.TargetPosition, b.HowMany),
		)
		return makeMoveOperationsFromRanges([]model.Range{r}, newTarget)
	}

	// A removal wins over a plain move.
	if a.Type() == MoveTypeRemove && b.Type() != MoveTypeRemove && !ctx.AWasUndone && !ctx.ForceWeakRemove {
		aIsStrong = true
	} else if a.Type() != MoveTypeRemove && b.Type() == MoveTypeRemove && !ctx.BWasUndone && !ctx.ForceWeakRemove {
		aIsStrong = false
	}

	// b put its content inside rangeA, where a carries it along. The other
	// side does the same when it moves b's target with rangeA.
	carried := moveTargetIntoMovedRange(b, a) && !rangeA.IsIntersecting(rangeB)

	var ranges []model.Range
	movedStart := b.MovedRangeStart()
	for _, diff := range rangeA.Difference(rangeB) {
		start, _ := diff.Start.TransformedByDeletion(b.SourcePosition, b.HowMany)
		end, _ := diff.End.TransformedByDeletion(b.SourcePosition, b.HowMany)
		d := model.NewRange(start, end)
		spread := !carried && samePath(d.Start.ParentPath(), movedStart.ParentPath()) && d.Root() == movedStart.Root
		ranges = append(ranges, d.TransformedByInsertion(movedStart, b.HowMany, spread)...)
	}

	if common, ok := rangeA.Intersection(rangeB); ok && aIsStrong {
		common = model.NewRange(
			common.Start.Combined(b.SourcePosition, movedStart),
			common.End.Combined(b.SourcePosition, movedStart),
		)
		switch len(ranges) {
		case 0:
			ranges = append(ranges, common)
		case 1:
			if !rangeB.Start.IsAfter(rangeA.Start) {
				ranges = append([]model.Range{common}, ranges...)
			} else {
				ranges = append(ranges, common)
			}
		default:
			ranges = append(ranges[:1], append([]model.Range{common}, ranges[1:]...)...)
		}
	}

	if len(ranges) == 0 {
		return []Operation{NewNoOperation(a.baseVersion)}
	}
	return makeMoveOperationsFromRanges(ranges, newTarget)
}

func moveBySplit(a *MoveOperation, b *SplitOperation, ctx Context) []Operation {
	newTarget := positionBySplit(a.TargetPosition, b)
	moveRange := a.sourceRange()

	// The last moved element was split.
	if moveRange.End.IsEqual(b.InsertionPosition) {
		if b.GraveyardPosition == nil {
			a.HowMany++
		}
		a.TargetPosition = newTarget
		return []Operation{a}
	}

	// The split happened between the moved nodes.
	if moveRange.Start.HasSameParentAs(b.SplitPosition) && moveRange.ContainsPosition(b.SplitPosition) {
		right := rangeBySplit(model.NewRange(b.SplitPosition, moveRange.End), b)
		ranges := []model.Range{model.NewRange(moveRange.Start, b.SplitPosition), right}
		return makeMoveOperationsFromRanges(ranges, newTarget)
	}

	if a.TargetPosition.IsEqual(b.SplitPosition) && ctx.abIs(RelationInsertAtSource) {
		newTarget = b.MoveTargetPosition()
	}
	if a.TargetPosition.IsEqual(b.InsertionPosition) && ctx.abIs(RelationInsertBetween) {
		newTarget = a.TargetPosition
	}

	ranges := []model.Range{rangeBySplit(moveRange, b)}

	// The moved range contains the graveyard element used by the split.
	if b.GraveyardPosition != nil {
		gy := *b.GraveyardPosition
		movesGraveyardElement := moveRange.Start.IsEqual(gy) || moveRange.ContainsPosition(gy)
		if a.HowMany > 1 && movesGraveyardElement && !ctx.AWasUndone {
			ranges = append(ranges, model.RangeFromPositionAndShift(b.InsertionPosition, 1))
		}
	}
	return makeMoveOperationsFromRanges(ranges, newTarget)
}

func moveByMerge(a *MoveOperation, b *MergeOperation, ctx Context) []Operation {
	movedRange := a.sourceRange()

	// a moves the merge target into the merged element. Split the merged
	// element back out so that a applies as it was.
	if movesMergeTargetIntoSource(a, b) {
		return []Operation{b.Reversed(), a}
	}

	if b.DeletionPosition().HasSameParentAs(a.SourcePosition) && movedRange.ContainsPosition(b.SourcePosition) {
		if a.Type() == MoveTypeRemove && !ctx.ForceWeakRemove {
			// The removed element got merged. Undo the merge and remove the element anyway.
			if !ctx.AWasUndone {
				return removeMergedElement(a, b)
			}
		} else if a.HowMany == 1 {
			// The only moved element got merged and is in the graveyard now.
			if !ctx.BWasUndone {
				return noop()
			}
			a.SourcePosition = b.GraveyardPosition.WithStickiness(model.StickToNext)
			a.TargetPosition = positionByMerge(a.TargetPosition, b)
			return []Operation{a}
		}
	}

	transformed := rangeByMerge(movedRange, b)
	a.SourcePosition = transformed.Start
	a.HowMany = transformed.End.Offset() - transformed.Start.Offset()
	a.TargetPosition = positionByMerge(a.TargetPosition, b)
	return []Operation{a}
}

// movesMergeTargetIntoSource reports whether move takes the element merge
// merges into and puts it inside the merged element.
func movesMergeTargetIntoSource(move *MoveOperation, merge *MergeOperation) bool {
	_, ok := merge.TargetPosition.TransformedByDeletion(move.SourcePosition, move.HowMany)
	return !ok && insideElement(move.TargetPosition, merge.DeletionPosition())
}

func removeMergedElement(a *MoveOperation, b *MergeOperation) []Operation {
	var results []Operation
	gyMoveSource := b.GraveyardPosition.Clone()
	splitNodesMoveSource := positionByMerge(b.TargetPosition, b)
	aTarget := TransformPosition(a.TargetPosition, b)

	if a.HowMany > 1 {
		results = append(results, NewMoveOperation(a.SourcePosition, a.HowMany-1, aTarget, 0))
		gyMoveSource = gyMoveSource.TransformedByMove(a.SourcePosition, aTarget, a.HowMany-1)
		splitNodesMoveSource = splitNodesMoveSource.TransformedByMove(a.SourcePosition, aTarget, a.HowMany-1)
	}

	gyMoveTarget := b.DeletionPosition().Combined(a.SourcePosition, aTarget)
	gyMove := NewMoveOperation(gyMoveSource, 1, gyMoveTarget, 0)

	splitTarget := gyMove.MovedRangeStart()
	splitTarget = model.Position{Root: gyMove.TargetPosition.Root, Path: append(splitTarget.Path.Clone(), 0)}
	splitNodesMoveSource = splitNodesMoveSource.TransformedByMove(gyMoveSource, gyMoveTarget, 1)
	splitNodesMove := NewMoveOperation(splitNodesMoveSource, b.HowMany, splitTarget, 0)

	return append(results, gyMove, splitNodesMove)
}

// Split.

func splitByInsert(a *SplitOperation, b *InsertOperation, _ Context) []Operation {
	if a.SplitPosition.HasSameParentAs(b.Position) && a.SplitPosition.Offset() < b.Position.Offset() {
		a.HowMany += b.HowMany()
	}
	a.SplitPosition = positionByInsert(a.SplitPosition, b)
	a.InsertionPosition = positionByInsert(a.InsertionPosition, b)
	return []Operation{a}
}

func splitByMerge(a *SplitOperation, b *MergeOperation, ctx Context) []Operation {
	// The split element got merged. Split the merged element in the graveyard
	// as well so both sides end up with the same elements.
	if a.GraveyardPosition == nil && !ctx.BWasUndone && a.SplitPosition.HasSameParentAs(b.SourcePosition) {
		path := append(b.GraveyardPosition.Path.Clone(), 0)
		splitPosition := model.Position{Root: b.GraveyardPosition.Root, Path: path}
		additional := NewSplitOperation(splitPosition, 0, SplitInsertionPosition(splitPosition), nil, 0)

		a.SplitPosition = positionByMerge(a.SplitPosition, b)
		a.InsertionPosition = SplitInsertionPosition(a.SplitPosition)
		gy := additional.InsertionPosition.WithStickiness(model.StickToNext)
		a.GraveyardPosition = &gy
		return []Operation{additional, a}
	}

	if a.SplitPosition.HasSameParentAs(b.DeletionPosition()) && !a.SplitPosition.IsAfter(b.DeletionPosition()) {
		a.HowMany--
	}
	if a.SplitPosition.HasSameParentAs(b.TargetPosition) {
		a.HowMany += b.HowMany
	}
	a.SplitPosition = positionByMerge(a.SplitPosition, b)
	a.InsertionPosition = SplitInsertionPosition(a.SplitPosition)
	if a.GraveyardPosition != nil {
		gy := positionByMerge(*a.GraveyardPosition, b)
		a.GraveyardPosition = &gy
	}
	return []Operation{a}
}

func splitByMove(a *SplitOperation, b *MoveOperation, ctx Context) []Operation {
	rangeToMove := b.sourceRange()

	if a.GraveyardPosition != nil {
		gy := *a.GraveyardPosition
		// The graveyard element was already moved by b, so only the content
		// after the split position has to follow it.
		gyElementMoved := rangeToMove.Start.IsEqual(gy) || rangeToMove.ContainsPosition(gy)
		if !ctx.BWasUndone && gyElementMoved {
			source := positionByMove(a.SplitPosition, b)
			parent := positionByMove(gy, b)
			target := model.Position{Root: parent.Root, Path: append(parent.Path.Clone(), 0)}
			return []Operation{NewMoveOperation(source, a.HowMany, target, 0)}
		}
		moved := positionByMove(gy, b)
		a.GraveyardPosition = &moved
	}

	splitAtTarget := a.SplitPosition.IsEqual(b.TargetPosition)
	if splitAtTarget && (ctx.baIs(RelationInsertAtSource) || ctx.abIs(RelationSplitBefore)) {
		a.HowMany += b.HowMany
		if p, ok := a.SplitPosition.TransformedByDeletion(b.SourcePosition, b.HowMany); ok {
			a.SplitPosition = p
		}
		a.InsertionPosition = SplitInsertionPosition(a.SplitPosition)
		return []Operation{a}
	}
	if splitAtTarget && ctx.abIs(RelationSplitInside) && ctx.ABRelation.HowMany != 0 {
		a.HowMany += ctx.ABRelation.HowMany
		a.SplitPosition = a.SplitPosition.ShiftedBy(ctx.ABRelation.Offset)
		return []Operation{a}
	}

	// The split position is inside the moved range.
	if a.SplitPosition.HasSameParentAs(b.SourcePosition) && rangeToMove.ContainsPosition(a.SplitPosition) {
		howManyRemoved := b.HowMany - (a.SplitPosition.Offset() - b.SourcePosition.Offset())
		a.HowMany -= howManyRemoved
		if a.SplitPosition.HasSameParentAs(b.TargetPosition) && a.SplitPosition.Offset() < b.TargetPosition.Offset() {
			a.HowMany += b.HowMany
		}
		a.SplitPosition = positionByMove(b.SourcePosition.WithStickiness(model.StickToNone), b).WithStickiness(model.StickToNext)
		a.InsertionPosition = SplitInsertionPosition(a.SplitPosition)
		return []Operation{a}
	}

	// Content moved out of or into the split element.
	if !b.SourcePosition.IsEqual(b.TargetPosition) {
		if a.SplitPosition.HasSameParentAs(b.SourcePosition) && a.SplitPosition.Offset() <= b.SourcePosition.Offset() {
			a.HowMany -= b.HowMany
		}
		if a.SplitPosition.HasSameParentAs(b.TargetPosition) && a.SplitPosition.Offset() < b.TargetPosition.Offset() {
			a.HowMany += b.HowMany
		}
	}

	a.SplitPosition = positionByMove(a.SplitPosition.WithStickiness(model.StickToNone), b).WithStickiness(model.StickToNext)
	if a.GraveyardPosition != nil {
		a.InsertionPosition = positionByMove(a.InsertionPosition, b)
	} else {
		a.InsertionPosition = SplitInsertionPosition(a.SplitPosition)
	}
	return []Operation{a}
}

func splitBySplit(a, b *SplitOperation, ctx Context) []Operation {
	if a.SplitPosition.IsEqual(b.SplitPosition) {
		if a.GraveyardPosition == nil && b.GraveyardPosition == nil {
			return noop()
		}
		if a.GraveyardPosition != nil && b.GraveyardPosition != nil && a.GraveyardPosition.IsEqual(*b.GraveyardPosition) {
			return noop()
		}
		if ctx.abIs(RelationSplitBefore) {
			a.HowMany = 0
			if a.GraveyardPosition != nil {
				gy := positionBySplit(*a.GraveyardPosition, b)
				a.GraveyardPosition = &gy
			}
			return []Operation{a}
		}
	}

	// The same graveyard element is used to split two different elements.
	if a.GraveyardPosition != nil && b.GraveyardPosition != nil && a.GraveyardPosition.IsEqual(*b.GraveyardPosition) {
		aInGraveyard := isGraveyard(a.SplitPosition)
		bInGraveyard := isGraveyard(b.SplitPosition)
		aIsWeak := aInGraveyard && !bInGraveyard
		bIsWeak := bInGraveyard && !aInGraveyard
		if bIsWeak || (!aIsWeak && ctx.AIsStrong) {
			var result []Operation
			if b.HowMany != 0 {
				result = append(result, NewMoveOperation(b.MoveTargetPosition(), b.HowMany, b.SplitPosition, 0))
			}
			if a.HowMany != 0 {
				result = append(result, NewMoveOperation(a.SplitPosition, a.HowMany, a.MoveTargetPosition(), 0))
			}
			return result
		}
		return noop()
	}

	if a.GraveyardPosition != nil {
		gy := positionBySplit(*a.GraveyardPosition, b)
		a.GraveyardPosition = &gy
	}

	if a.SplitPosition.IsEqual(b.InsertionPosition) && ctx.abIs(RelationSplitBefore) {
		a.HowMany++
		return []Operation{a}
	}

	if b.SplitPosition.IsEqual(a.InsertionPosition) && ctx.baIs(RelationSplitBefore) {
		path := append(b.InsertionPosition.Path.Clone(), 0)
		target := model.Position{Root: b.InsertionPosition.Root, Path: path}
		return []Operation{a, NewMoveOperation(a.InsertionPosition, 1, target, 0)}
	}

	if a.SplitPosition.HasSameParentAs(b.SplitPosition) && a.SplitPosition.Offset() < b.SplitPosition.Offset() {
		a.HowMany -= b.HowMany
	}
	// b split a child of the split element and put the new element after
	// the split position.
	if a.SplitPosition.HasSameParentAs(b.InsertionPosition) && a.SplitPosition.Offset() < b.InsertionPosition.Offset() {
		a.HowMany++
	}
	a.SplitPosition = positionBySplit(a.SplitPosition, b)
	a.InsertionPosition = SplitInsertionPosition(a.SplitPosition)
	return []Operation{a}
}
