package ot

import "github.com/dannyswat/vctree/model"

// followRange returns r after op. When op moved the range into the
// graveyard, deletion is the position the content was removed from.
func followRange(r model.Range, op Operation) (result model.Range, deletion *model.Position) {
	result = model.JoinRanges(TransformRange(r, op))
	if r.Root() == model.GraveyardName || result.Root() != model.GraveyardName {
		return result, nil
	}
	switch o := op.(type) {
	case *MoveOperation:
		p := o.SourcePosition.WithStickiness(model.StickToNone)
		deletion = &p
	case *MergeOperation:
		p := o.DeletionPosition()
		deletion = &p
	}
	return result, deletion
}

// markerRange returns where a marker covering r is after op. A marker whose
// content was removed collapses where the content was.
func markerRange(r model.Range, op Operation) model.Range {
	result, deletion := followRange(r, op)
	if deletion != nil {
		return model.NewCollapsedRange(*deletion)
	}
	return result
}

// LivePosition is a position that follows every operation applied by a
// Sequencer until it is detached.
type LivePosition struct {
	position    model.Position
	unsubscribe func()
	onChange    []func(old, current model.Position)
}

// NewLivePosition binds p to seq.
func NewLivePosition(seq *Sequencer, p model.Position) *LivePosition {
	lp := &LivePosition{position: p.Clone()}
	lp.unsubscribe = seq.OnChange(lp.transform)
	return lp
}

// Position returns the current position.
func (lp *LivePosition) Position() model.Position {
	return lp.position.Clone()
}

// OnChange registers fn to be called whenever the position moves.
func (lp *LivePosition) OnChange(fn func(old, current model.Position)) {
	lp.onChange = append(lp.onChange, fn)
}

// Detach stops following operations. The position keeps its last value.
func (lp *LivePosition) Detach() {
	if lp.unsubscribe != nil {
		lp.unsubscribe()
		lp.unsubscribe = nil
	}
}

func (lp *LivePosition) transform(op Operation) {
	next := TransformPosition(lp.position, op)
	if next.IsEqual(lp.position) {
		return
	}
	old := lp.position
	lp.position = next
	for _, fn := range lp.onChange {
		fn(old, next.Clone())
	}
}

// RangeChange describes a LiveRange update.
type RangeChange struct {
	Old     model.Range
	Current model.Range
	// DeletionPosition is set when the range content was removed. It is
	// where the content used to be.
	DeletionPosition *model.Position
}

// LiveRange is a range that follows every operation applied by a Sequencer
// until it is detached. A range whose content is removed moves into the
// graveyard with it.
type LiveRange struct {
	rng         model.Range
	unsubscribe func()
	onChange    []func(RangeChange)
}

// NewLiveRange binds r to seq.
func NewLiveRange(seq *Sequencer, r model.Range) *LiveRange {
	lr := &LiveRange{rng: r.Clone()}
	lr.unsubscribe = seq.OnChange(lr.transform)
	return lr
}

// Range returns the current range.
func (lr *LiveRange) Range() model.Range {
	return lr.rng.Clone()
}

// OnChange registers fn to be called whenever a boundary moves.
func (lr *LiveRange) OnChange(fn func(RangeChange)) {
	lr.onChange = append(lr.onChange, fn)
}

// Detach stops following operations. The range keeps its last value.
func (lr *LiveRange) Detach() {
	if lr.unsubscribe != nil {
		lr.unsubscribe()
		lr.unsubscribe = nil
	}
}

func (lr *LiveRange) transform(op Operation) {
	next, deletion := followRange(lr.rng, op)
	if next.IsEqual(lr.rng) {
		return
	}
	change := RangeChange{Old: lr.rng, Current: next.Clone(), DeletionPosition: deletion}
	lr.rng = next
	for _, fn := range lr.onChange {
		fn(change)
	}
}
