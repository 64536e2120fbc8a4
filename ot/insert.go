package ot

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// InsertOperation inserts nodes at a position.
type InsertOperation struct {
	versioned
	Position model.Position
	Nodes    model.NodeList
	// ShouldReceiveAttributes marks content that takes over attributes set
	// by a concurrent attribute change covering the insertion point.
	ShouldReceiveAttributes bool
}

// NewInsertOperation creates an insert operation. The nodes are copied.
func NewInsertOperation(position model.Position, nodes []model.Node, baseVersion int) *InsertOperation {
	return &InsertOperation{
		versioned: versioned{baseVersion: baseVersion},
		Position:  position.WithStickiness(model.StickToNone),
		Nodes:     model.CloneNodes(nodes),
	}
}

func (o *InsertOperation) Kind() Kind { return KindInsert }

// HowMany is the offset size of the inserted nodes.
func (o *InsertOperation) HowMany() int {
	return model.TotalOffsetSize(o.Nodes)
}

func (o *InsertOperation) Clone() Operation {
	c := *o
	c.Position = o.Position.Clone()
	c.Nodes = model.CloneNodes(o.Nodes)
	return &c
}

func (o *InsertOperation) Reversed() Operation {
	return NewMoveOperation(o.Position, o.HowMany(), graveyardStart(), o.next())
}

func (o *InsertOperation) Validate(doc *model.Document) error {
	if _, err := doc.ParentElement(o.Position); err != nil {
		return invalid(o, model.ErrInsertPositionInvalid, "%v", err)
	}
	return nil
}

func (o *InsertOperation) execute(doc *model.Document) {
	mustExecute(o, doc.Insert(o.Position, o.Nodes))
}

func (o *InsertOperation) wellFormed() error {
	return checkPosition("position", o.Position)
}

func (o *InsertOperation) String() string {
	return fmt.Sprintf("InsertOperation(%d): %s +%d", o.baseVersion, o.Position, o.HowMany())
}

type insertJSON struct {
	ClassName               string         `json:"__className"`
	BaseVersion             *int           `json:"baseVersion"`
	Position                model.Position `json:"position"`
	Nodes                   model.NodeList `json:"nodes"`
	ShouldReceiveAttributes bool           `json:"shouldReceiveAttributes"`
}

func (o *InsertOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(insertJSON{
		ClassName:               KindInsert.String(),
		BaseVersion:             o.wireVersion(),
		Position:                o.Position,
		Nodes:                   o.Nodes,
		ShouldReceiveAttributes: o.ShouldReceiveAttributes,
	})
}
