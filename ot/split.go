package ot

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// SplitOperation splits the element containing SplitPosition. Everything
// after SplitPosition moves into a new element at InsertionPosition. When
// GraveyardPosition is set the new element is taken from the graveyard
// instead of being created.
type SplitOperation struct {
	versioned
	SplitPosition     model.Position
	HowMany           int
	InsertionPosition model.Position
	GraveyardPosition *model.Position
}

// NewSplitOperation creates a split operation. graveyardPosition may be nil.
func NewSplitOperation(splitPosition model.Position, howMany int, insertionPosition model.Position, graveyardPosition *model.Position, baseVersion int) *SplitOperation {
	o := &SplitOperation{
		versioned:         versioned{baseVersion: baseVersion},
		SplitPosition:     splitPosition.WithStickiness(model.StickToNext),
		HowMany:           howMany,
		InsertionPosition: insertionPosition.WithStickiness(model.StickToPrevious),
	}
	if graveyardPosition != nil {
		gy := graveyardPosition.WithStickiness(model.StickToNext)
		o.GraveyardPosition = &gy
	}
	return o
}

// SplitInsertionPosition returns the position right after the element that
// contains splitPosition.
func SplitInsertionPosition(splitPosition model.Position) model.Position {
	path := splitPosition.ParentPath()
	path[len(path)-1]++
	return model.Position{Root: splitPosition.Root, Path: path, Stickiness: model.StickToPrevious}
}

func (o *SplitOperation) Kind() Kind { return KindSplit }

// MoveTargetPosition is the start of the new element.
func (o *SplitOperation) MoveTargetPosition() model.Position {
	path := append(o.InsertionPosition.Path.Clone(), 0)
	return model.Position{Root: o.InsertionPosition.Root, Path: path}
}

// MovedRange covers everything from the split position to the end of the
// split element.
func (o *SplitOperation) MovedRange() model.Range {
	return model.NewRange(o.SplitPosition, o.SplitPosition.ShiftedBy(model.MaxShift))
}

func (o *SplitOperation) Clone() Operation {
	c := *o
	c.SplitPosition = o.SplitPosition.Clone()
	c.InsertionPosition = o.InsertionPosition.Clone()
	if o.GraveyardPosition != nil {
		gy := o.GraveyardPosition.Clone()
		c.GraveyardPosition = &gy
	}
	return &c
}

func (o *SplitOperation) Reversed() Operation {
	return NewMergeOperation(o.MoveTargetPosition(), o.HowMany, o.SplitPosition, graveyardStart(), o.next())
}

func (o *SplitOperation) Validate(doc *model.Document) error {
	element, err := doc.ParentElement(o.SplitPosition)
	if err != nil {
		return invalid(o, model.ErrSplitPositionInvalid, "%v", err)
	}
	if len(o.SplitPosition.Path) < 2 {
		return invalid(o, model.ErrSplitInRoot, "%s", o.SplitPosition)
	}
	if o.HowMany != element.MaxOffset()-o.SplitPosition.Offset() {
		return invalid(o, model.ErrSplitHowManyInvalid, "got %d, element has %d offsets after %s",
			o.HowMany, element.MaxOffset()-o.SplitPosition.Offset(), o.SplitPosition)
	}
	if o.GraveyardPosition != nil {
		if _, ok := doc.NodeAfter(*o.GraveyardPosition).(*model.Element); !ok {
			return invalid(o, model.ErrSplitGraveyardPositionInvalid, "%s", o.GraveyardPosition)
		}
	}
	if _, err := doc.ParentElement(o.InsertionPosition); err != nil {
		return invalid(o, model.ErrSplitPositionInvalid, "insertion: %v", err)
	}
	return nil
}

func (o *SplitOperation) execute(doc *model.Document) {
	// Position of the split element inside its parent.
	elementPos := model.Position{Root: o.SplitPosition.Root, Path: o.SplitPosition.ParentPath()}
	element, err := doc.ParentElement(o.SplitPosition)
	mustExecute(o, err)

	var newElementAt model.Position
	if o.GraveyardPosition != nil {
		mustExecute(o, doc.Move(*o.GraveyardPosition, 1, o.InsertionPosition))
		elementPos = elementPos.TransformedByMove(*o.GraveyardPosition, o.InsertionPosition, 1)
		newElementAt = o.InsertionPosition.Clone()
		if p, ok := o.InsertionPosition.TransformedByDeletion(*o.GraveyardPosition, 1); ok {
			newElementAt = p
		}
	} else {
		mustExecute(o, doc.Insert(o.InsertionPosition, []model.Node{element.ShallowClone()}))
		elementPos = elementPos.TransformedByInsertion(o.InsertionPosition, 1)
		newElementAt = o.InsertionPosition.Clone()
	}

	source := model.Position{Root: elementPos.Root, Path: append(elementPos.Path.Clone(), o.SplitPosition.Offset())}
	target := model.Position{Root: newElementAt.Root, Path: append(newElementAt.Path.Clone(), 0)}
	howMany := element.MaxOffset() - o.SplitPosition.Offset()
	mustExecute(o, doc.Move(source, howMany, target))
}

func (o *SplitOperation) wellFormed() error {
	if err := checkPosition("split position", o.SplitPosition); err != nil {
		return err
	}
	if err := checkPosition("insertion position", o.InsertionPosition); err != nil {
		return err
	}
	if o.GraveyardPosition != nil {
		if err := checkPosition("graveyard position", *o.GraveyardPosition); err != nil {
			return err
		}
	}
	return checkHowMany(o.HowMany)
}

func (o *SplitOperation) String() string {
	gy := ""
	if o.GraveyardPosition != nil {
		gy = " from " + o.GraveyardPosition.String()
	}
	return fmt.Sprintf("SplitOperation(%d): %s x%d -> %s%s", o.baseVersion, o.SplitPosition, o.HowMany, o.InsertionPosition, gy)
}

type splitJSON struct {
	ClassName         string          `json:"__className"`
	BaseVersion       *int            `json:"baseVersion"`
	SplitPosition     model.Position  `json:"splitPosition"`
	HowMany           int             `json:"howMany"`
	InsertionPosition model.Position  `json:"insertionPosition"`
	GraveyardPosition *model.Position `json:"graveyardPosition"`
}

func (o *SplitOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(splitJSON{
		ClassName:         KindSplit.String(),
		BaseVersion:       o.wireVersion(),
		SplitPosition:     o.SplitPosition,
		HowMany:           o.HowMany,
		InsertionPosition: o.InsertionPosition,
		GraveyardPosition: o.GraveyardPosition,
	})
}
