package ot

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// MoveType tells what a move does from the user's point of view.
type MoveType string

const (
	MoveTypeMove     MoveType = "move"
	MoveTypeRemove   MoveType = "remove"
	MoveTypeReinsert MoveType = "reinsert"
)

// MoveOperation moves howMany offsets from SourcePosition to TargetPosition.
// Moving to the graveyard removes content.
type MoveOperation struct {
	versioned
	SourcePosition model.Position
	HowMany        int
	TargetPosition model.Position
}

// NewMoveOperation creates a move operation.
func NewMoveOperation(source model.Position, howMany int, target model.Position, baseVersion int) *MoveOperation {
	return &MoveOperation{
		versioned:      versioned{baseVersion: baseVersion},
		SourcePosition: source.WithStickiness(model.StickToNext),
		HowMany:        howMany,
		TargetPosition: target.WithStickiness(model.StickToNone),
	}
}

// NewRemoveOperation moves howMany offsets at source to the graveyard.
func NewRemoveOperation(source model.Position, howMany int, baseVersion int) *MoveOperation {
	return NewMoveOperation(source, howMany, graveyardStart(), baseVersion)
}

func (o *MoveOperation) Kind() Kind { return KindMove }

// Type returns remove for moves into the graveyard and reinsert for moves out
// of it.
func (o *MoveOperation) Type() MoveType {
	switch {
	case o.TargetPosition.Root == model.GraveyardName:
		return MoveTypeRemove
	case o.SourcePosition.Root == model.GraveyardName:
		return MoveTypeReinsert
	}
	return MoveTypeMove
}

// MovedRangeStart is where the moved content starts once the move applied.
func (o *MoveOperation) MovedRangeStart() model.Position {
	if p, ok := o.TargetPosition.TransformedByDeletion(o.SourcePosition, o.HowMany); ok {
		return p
	}
	return o.TargetPosition.Clone()
}

// putsBack reports whether the content would land where it already is.
func (o *MoveOperation) putsBack() bool {
	return o.MovedRangeStart().IsEqual(o.SourcePosition)
}

func (o *MoveOperation) sourceRange() model.Range {
	return model.RangeFromPositionAndShift(o.SourcePosition, o.HowMany)
}

func (o *MoveOperation) Clone() Operation {
	c := *o
	c.SourcePosition = o.SourcePosition.Clone()
	c.TargetPosition = o.TargetPosition.Clone()
	return &c
}

func (o *MoveOperation) Reversed() Operation {
	newTarget := o.SourcePosition.TransformedByInsertion(o.TargetPosition, o.HowMany)
	return NewMoveOperation(o.MovedRangeStart(), o.HowMany, newTarget, o.next())
}

func (o *MoveOperation) Validate(doc *model.Document) error {
	sourceParent, err := doc.ParentElement(o.SourcePosition)
	if err != nil {
		return invalid(o, model.ErrMoveNodesDoNotExist, "%v", err)
	}
	targetParent, err := doc.ParentElement(o.TargetPosition)
	if err != nil {
		return invalid(o, model.ErrPositionInvalid, "target: %v", err)
	}
	sourceOffset, targetOffset := o.SourcePosition.Offset(), o.TargetPosition.Offset()
	if sourceOffset+o.HowMany > sourceParent.MaxOffset() {
		return invalid(o, model.ErrMoveNodesDoNotExist, "%d offsets at %s", o.HowMany, o.SourcePosition)
	}
	if sourceParent == targetParent && sourceOffset < targetOffset && targetOffset < sourceOffset+o.HowMany {
		return invalid(o, model.ErrMoveRangeIntoItself, "%s into %s", o.SourcePosition, o.TargetPosition)
	}
	if o.putsBack() {
		return invalid(o, model.ErrMoveRangeIntoItself, "%s onto itself", o.SourcePosition)
	}
	if o.SourcePosition.Root == o.TargetPosition.Root {
		sourceParentPath := o.SourcePosition.ParentPath()
		targetPath := o.TargetPosition.Path
		i := len(o.SourcePosition.Path) - 1
		if len(targetPath) > len(o.SourcePosition.Path) && isPrefix(sourceParentPath, targetPath) {
			if targetPath[i] >= sourceOffset && targetPath[i] < sourceOffset+o.HowMany {
				return invalid(o, model.ErrMoveNodeIntoItself, "%s into %s", o.SourcePosition, o.TargetPosition)
			}
		}
	}
	return nil
}

func isPrefix(prefix, path model.Path) bool {
	if len(prefix) > len(path) {
		return false
	}
	for i, v := range prefix {
		if path[i] != v {
			return false
		}
	}
	return true
}

func (o *MoveOperation) execute(doc *model.Document) {
	mustExecute(o, doc.Move(o.SourcePosition, o.HowMany, o.TargetPosition))
}

func (o *MoveOperation) wellFormed() error {
	if err := checkPosition("source", o.SourcePosition); err != nil {
		return err
	}
	if err := checkPosition("target", o.TargetPosition); err != nil {
		return err
	}
	return checkHowMany(o.HowMany)
}

func (o *MoveOperation) String() string {
	return fmt.Sprintf("MoveOperation(%d): %s x%d -> %s", o.baseVersion, o.SourcePosition, o.HowMany, o.TargetPosition)
}

type moveJSON struct {
	ClassName      string         `json:"__className"`
	BaseVersion    *int           `json:"baseVersion"`
	SourcePosition model.Position `json:"sourcePosition"`
	HowMany        int            `json:"howMany"`
	TargetPosition model.Position `json:"targetPosition"`
}

func (o *MoveOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(moveJSON{
		ClassName:      KindMove.String(),
		BaseVersion:    o.wireVersion(),
		SourcePosition: o.SourcePosition,
		HowMany:        o.HowMany,
		TargetPosition: o.TargetPosition,
	})
}
