package ot

import "github.com/dannyswat/vctree/model"

func positionByInsert(p model.Position, op *InsertOperation) model.Position {
	return p.TransformedByInsertion(op.Position, op.HowMany())
}

func positionByMove(p model.Position, op *MoveOperation) model.Position {
	return p.TransformedByMove(op.SourcePosition, op.TargetPosition, op.HowMany)
}

func positionBySplit(p model.Position, op *SplitOperation) model.Position {
	moved := op.MovedRange()
	contained := moved.ContainsPosition(p) || (moved.Start.IsEqual(p) && p.Stickiness == model.StickToNext)
	if contained {
		return p.Combined(op.SplitPosition, op.MoveTargetPosition())
	}
	if op.GraveyardPosition != nil {
		return p.TransformedByMove(*op.GraveyardPosition, op.InsertionPosition, 1)
	}
	return p.TransformedByInsertion(op.InsertionPosition, 1)
}

func positionByMerge(p model.Position, op *MergeOperation) model.Position {
	moved := op.MovedRange()
	deletion := op.DeletionPosition()
	switch {
	case moved.ContainsPosition(p) || moved.Start.IsEqual(p):
		pos := p.Combined(op.SourcePosition, op.TargetPosition)
		if op.SourcePosition.IsBefore(op.TargetPosition) {
			if t, ok := pos.TransformedByDeletion(deletion, 1); ok {
				pos = t
			}
		}
		return pos
	case p.IsEqual(deletion):
		return deletion
	}
	return p.TransformedByMove(deletion, op.GraveyardPosition, 1)
}

// TransformPosition returns p as it is after op was applied.
func TransformPosition(p model.Position, op Operation) model.Position {
	switch o := op.(type) {
	case *InsertOperation:
		return positionByInsert(p, o)
	case *MoveOperation:
		return positionByMove(p, o)
	case *SplitOperation:
		return positionBySplit(p, o)
	case *MergeOperation:
		return positionByMerge(p, o)
	}
	return p.Clone()
}

func rangeBySplit(r model.Range, op *SplitOperation) model.Range {
	start := positionBySplit(r.Start, op)
	end := positionBySplit(r.End, op)
	if r.End.IsEqual(op.InsertionPosition) {
		end = r.End.ShiftedBy(1)
	}
	// The range contained the graveyard element used by the split.
	if start.Root != end.Root {
		end = r.End.ShiftedBy(-1)
	}
	return model.NewRange(start, end)
}

func rangeByMerge(r model.Range, op *MergeOperation) model.Range {
	deletion := op.DeletionPosition()
	// Range from the end of the merge target to right before the merged element.
	if r.Start.IsEqual(op.TargetPosition) && r.End.IsEqual(deletion) {
		return model.NewCollapsedRange(r.Start)
	}
	start := positionByMerge(r.Start, op)
	end := positionByMerge(r.End, op)
	if start.Root != end.Root {
		end = r.End.ShiftedBy(-1)
	}
	if start.IsAfter(end) {
		if op.SourcePosition.IsBefore(op.TargetPosition) {
			start = end.WithOffset(0)
		} else {
			if !deletion.IsEqual(start) {
				end = deletion
			}
			start = op.TargetPosition
		}
	}
	return model.NewRange(start, end)
}

// TransformRange returns r as it is after op was applied. A move may cut the
// range in up to three pieces.
func TransformRange(r model.Range, op Operation) []model.Range {
	switch o := op.(type) {
	case *InsertOperation:
		return r.TransformedByInsertion(o.Position, o.HowMany(), false)
	case *MoveOperation:
		return r.TransformedByMove(o.SourcePosition, o.TargetPosition, o.HowMany, false)
	case *SplitOperation:
		return []model.Range{rangeBySplit(r, o)}
	case *MergeOperation:
		return []model.Range{rangeByMerge(r, o)}
	}
	return []model.Range{model.NewRange(r.Start, r.End)}
}
