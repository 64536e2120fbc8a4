package ot

import "github.com/dannyswat/vctree/model"

// RelationKind names how two operations related to each other when they
// were first transformed. Undo uses it to restore the original intent.
type RelationKind int

const (
	RelationInsertBefore RelationKind = iota + 1
	RelationInsertAfter
	RelationInsertAtSource
	RelationInsertBetween
	RelationMoveTargetAfter
	RelationSplitBefore
	RelationSplitAtSource
	RelationSplitInside
	RelationMergeTargetNotMoved
	RelationMergeSourceNotMoved
	RelationMergeSameElement
)

// Relation is a recorded relation. HowMany and Offset are only used by
// RelationSplitInside.
type Relation struct {
	Kind    RelationKind
	HowMany int
	Offset  int
}

// Context carries the tie-breaking information for a single transformation.
type Context struct {
	// AIsStrong decides identical-target conflicts in favour of a.
	AIsStrong       bool
	AWasUndone      bool
	BWasUndone      bool
	ForceWeakRemove bool
	ABRelation      *Relation
	BARelation      *Relation
}

func (c Context) abIs(kind RelationKind) bool {
	return c.ABRelation != nil && c.ABRelation.Kind == kind
}

func (c Context) baIs(kind RelationKind) bool {
	return c.BARelation != nil && c.BARelation.Kind == kind
}

// contextFactory builds contexts for TransformSets and keeps track of the
// original operation behind every transformed one.
type contextFactory struct {
	originals       map[Operation]Operation
	history         *History
	useRelations    bool
	forceWeakRemove bool
	relations       map[Operation]map[Operation]Relation
}

func newContextFactory(history *History, useRelations, forceWeakRemove bool) *contextFactory {
	return &contextFactory{
		originals:       make(map[Operation]Operation),
		history:         history,
		useRelations:    useRelations,
		forceWeakRemove: forceWeakRemove,
		relations:       make(map[Operation]map[Operation]Relation),
	}
}

// setOriginalOperations records ops as originals, or as derived from takeFrom.
func (f *contextFactory) setOriginalOperations(ops []Operation, takeFrom Operation) {
	var original Operation
	if takeFrom != nil {
		original = f.originals[takeFrom]
	}
	for _, op := range ops {
		if original != nil {
			f.originals[op] = original
		} else {
			f.originals[op] = op
		}
	}
}

func (f *contextFactory) updateRelation(opA, opB Operation) {
	switch a := opA.(type) {
	case *MoveOperation:
		switch b := opB.(type) {
		case *MergeOperation:
			switch {
			case a.TargetPosition.IsEqual(b.SourcePosition) || b.MovedRange().ContainsPosition(a.TargetPosition):
				f.setRelation(a, b, Relation{Kind: RelationInsertAtSource})
			case a.TargetPosition.IsEqual(b.DeletionPosition()):
				f.setRelation(a, b, Relation{Kind: RelationInsertBetween})
			case a.TargetPosition.IsAfter(b.SourcePosition):
				f.setRelation(a, b, Relation{Kind: RelationMoveTargetAfter})
			}
		case *MoveOperation:
			if a.TargetPosition.IsEqual(b.SourcePosition) || a.TargetPosition.IsBefore(b.SourcePosition) {
				f.setRelation(a, b, Relation{Kind: RelationInsertBefore})
			} else {
				f.setRelation(a, b, Relation{Kind: RelationInsertAfter})
			}
		}
	case *SplitOperation:
		switch b := opB.(type) {
		case *MergeOperation:
			if a.SplitPosition.IsBefore(b.SourcePosition) {
				f.setRelation(a, b, Relation{Kind: RelationSplitBefore})
			}
		case *MoveOperation:
			if a.SplitPosition.IsEqual(b.SourcePosition) || a.SplitPosition.IsBefore(b.SourcePosition) {
				f.setRelation(a, b, Relation{Kind: RelationSplitBefore})
				return
			}
			r := b.sourceRange()
			if a.SplitPosition.HasSameParentAs(b.SourcePosition) && r.ContainsPosition(a.SplitPosition) {
				f.setRelation(a, b, Relation{
					Kind:    RelationSplitInside,
					HowMany: r.End.Offset() - a.SplitPosition.Offset(),
					Offset:  a.SplitPosition.Offset() - r.Start.Offset(),
				})
			}
		}
	case *MergeOperation:
		switch b := opB.(type) {
		case *MergeOperation:
			if !a.TargetPosition.IsEqual(b.SourcePosition) {
				f.setRelation(a, b, Relation{Kind: RelationMergeTargetNotMoved})
			}
			if a.SourcePosition.IsEqual(b.TargetPosition) {
				f.setRelation(a, b, Relation{Kind: RelationMergeSourceNotMoved})
			}
			if a.SourcePosition.IsEqual(b.SourcePosition) {
				f.setRelation(a, b, Relation{Kind: RelationMergeSameElement})
			}
		case *SplitOperation:
			if a.SourcePosition.IsEqual(b.SplitPosition) {
				f.setRelation(a, b, Relation{Kind: RelationSplitAtSource})
			}
		}
	}
}

func (f *contextFactory) context(opA, opB Operation, aIsStrong bool) Context {
	ctx := Context{
		AIsStrong:       aIsStrong,
		AWasUndone:      f.wasUndone(opA),
		BWasUndone:      f.wasUndone(opB),
		ForceWeakRemove: f.forceWeakRemove,
	}
	if f.useRelations {
		ctx.ABRelation = f.relation(opA, opB)
		ctx.BARelation = f.relation(opB, opA)
	}
	return ctx
}

func (f *contextFactory) wasUndone(op Operation) bool {
	return f.history != nil && f.history.IsUndoneOperation(f.originals[op])
}

// relation returns the relation recorded between opA and the operation that
// opB undid.
func (f *contextFactory) relation(opA, opB Operation) *Relation {
	if f.history == nil {
		return nil
	}
	undoneB, ok := f.history.UndoneOperation(f.originals[opB])
	if !ok {
		return nil
	}
	rel, ok := f.relations[f.originals[opA]][undoneB]
	if !ok {
		return nil
	}
	return &rel
}

func (f *contextFactory) setRelation(opA, opB Operation, rel Relation) {
	origA, origB := f.originals[opA], f.originals[opB]
	byB, ok := f.relations[origA]
	if !ok {
		byB = make(map[Operation]Relation)
		f.relations[origA] = byB
	}
	byB[origB] = rel
}

// isGraveyard reports whether p lives in the graveyard.
func isGraveyard(p model.Position) bool {
	return p.Root == model.GraveyardName
}
