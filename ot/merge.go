package ot

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// MergeOperation moves all content of the element containing SourcePosition
// to TargetPosition and then moves the emptied element to GraveyardPosition.
type MergeOperation struct {
	versioned
	SourcePosition    model.Position
	HowMany           int
	TargetPosition    model.Position
	GraveyardPosition model.Position
}

// NewMergeOperation creates a merge operation.
func NewMergeOperation(source model.Position, howMany int, target, graveyardPosition model.Position, baseVersion int) *MergeOperation {
	return &MergeOperation{
		versioned:         versioned{baseVersion: baseVersion},
		SourcePosition:    source.WithStickiness(model.StickToPrevious),
		HowMany:           howMany,
		TargetPosition:    target.WithStickiness(model.StickToNext),
		GraveyardPosition: graveyardPosition.WithStickiness(model.StickToNone),
	}
}

func (o *MergeOperation) Kind() Kind { return KindMerge }

// DeletionPosition is the position before the merged element.
func (o *MergeOperation) DeletionPosition() model.Position {
	return model.Position{Root: o.SourcePosition.Root, Path: o.SourcePosition.ParentPath()}
}

// MovedRange covers the content of the merged element.
func (o *MergeOperation) MovedRange() model.Range {
	return model.NewRange(o.SourcePosition, o.SourcePosition.ShiftedBy(model.MaxShift))
}

func (o *MergeOperation) Clone() Operation {
	c := *o
	c.SourcePosition = o.SourcePosition.Clone()
	c.TargetPosition = o.TargetPosition.Clone()
	c.GraveyardPosition = o.GraveyardPosition.Clone()
	return &c
}

func (o *MergeOperation) Reversed() Operation {
	target := positionByMerge(o.TargetPosition, o)
	insertion := positionByMerge(o.DeletionPosition(), o)
	gy := o.GraveyardPosition.Clone()
	return NewSplitOperation(target, o.HowMany, insertion, &gy, o.next())
}

func (o *MergeOperation) Validate(doc *model.Document) error {
	source, err := doc.ParentElement(o.SourcePosition)
	if err != nil || len(o.SourcePosition.Path) < 2 {
		return invalid(o, model.ErrMergeSourcePositionInvalid, "%s", o.SourcePosition)
	}
	if _, err := doc.ParentElement(o.TargetPosition); err != nil || len(o.TargetPosition.Path) < 2 {
		return invalid(o, model.ErrMergeTargetPositionInvalid, "%s", o.TargetPosition)
	}
	if insideElement(o.TargetPosition, o.DeletionPosition()) {
		return invalid(o, model.ErrMergeTargetPositionInvalid, "%s is inside the merged element", o.TargetPosition)
	}
	if o.HowMany != source.MaxOffset() {
		return invalid(o, model.ErrMergeHowManyInvalid, "got %d, element has %d offsets", o.HowMany, source.MaxOffset())
	}
	if _, err := doc.ParentElement(o.GraveyardPosition); err != nil {
		return invalid(o, model.ErrPositionInvalid, "graveyard: %v", err)
	}
	return nil
}

// insideElement reports whether p is inside the element at elementPosition.
func insideElement(p, elementPosition model.Position) bool {
	return p.Root == elementPosition.Root && len(p.Path) > len(elementPosition.Path) && isPrefix(elementPosition.Path, p.Path)
}

func (o *MergeOperation) execute(doc *model.Document) {
	source, err := doc.ParentElement(o.SourcePosition)
	mustExecute(o, err)

	start := o.SourcePosition.WithOffset(0)
	howMany := source.MaxOffset()
	mustExecute(o, doc.Move(start, howMany, o.TargetPosition))

	merged := o.DeletionPosition().TransformedByMove(start, o.TargetPosition, howMany)
	mustExecute(o, doc.Move(merged, 1, o.GraveyardPosition))
}

func (o *MergeOperation) wellFormed() error {
	if err := checkPosition("source position", o.SourcePosition); err != nil {
		return err
	}
	if err := checkPosition("target position", o.TargetPosition); err != nil {
		return err
	}
	if err := checkPosition("graveyard position", o.GraveyardPosition); err != nil {
		return err
	}
	return checkHowMany(o.HowMany)
}

func (o *MergeOperation) String() string {
	return fmt.Sprintf("MergeOperation(%d): %s x%d -> %s", o.baseVersion, o.SourcePosition, o.HowMany, o.TargetPosition)
}

type mergeJSON struct {
	ClassName         string         `json:"__className"`
	BaseVersion       *int           `json:"baseVersion"`
	SourcePosition    model.Position `json:"sourcePosition"`
	HowMany           int            `json:"howMany"`
	TargetPosition    model.Position `json:"targetPosition"`
	GraveyardPosition model.Position `json:"graveyardPosition"`
}

func (o *MergeOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(mergeJSON{
		ClassName:         KindMerge.String(),
		BaseVersion:       o.wireVersion(),
		SourcePosition:    o.SourcePosition,
		HowMany:           o.HowMany,
		TargetPosition:    o.TargetPosition,
		GraveyardPosition: o.GraveyardPosition,
	})
}
