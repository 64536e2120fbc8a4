package ot

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// RenameOperation changes the name of the element after Position.
type RenameOperation struct {
	versioned
	Position model.Position
	OldName  string
	NewName  string
}

// NewRenameOperation creates a rename operation.
func NewRenameOperation(position model.Position, oldName, newName string, baseVersion int) *RenameOperation {
	return &RenameOperation{
		versioned: versioned{baseVersion: baseVersion},
		Position:  position.WithStickiness(model.StickToNext),
		OldName:   oldName,
		NewName:   newName,
	}
}

func (o *RenameOperation) Kind() Kind { return KindRename }

func (o *RenameOperation) Clone() Operation {
	c := *o
	c.Position = o.Position.Clone()
	return &c
}

func (o *RenameOperation) Reversed() Operation {
	return NewRenameOperation(o.Position, o.NewName, o.OldName, o.next())
}

func (o *RenameOperation) Validate(doc *model.Document) error {
	el, ok := doc.NodeAfter(o.Position).(*model.Element)
	if !ok {
		return invalid(o, model.ErrRenameNotAnElement, "%s", o.Position)
	}
	if el.Name != o.OldName {
		return invalid(o, model.ErrRenameWrongOldName, "element is %q, want %q", el.Name, o.OldName)
	}
	return nil
}

func (o *RenameOperation) execute(doc *model.Document) {
	if o.OldName == o.NewName {
		return
	}
	mustExecute(o, doc.Rename(o.Position, o.NewName))
}

func (o *RenameOperation) wellFormed() error {
	return checkPosition("position", o.Position)
}

func (o *RenameOperation) String() string {
	return fmt.Sprintf("RenameOperation(%d): %s %q -> %q", o.baseVersion, o.Position, o.OldName, o.NewName)
}

type renameJSON struct {
	ClassName   string         `json:"__className"`
	BaseVersion *int           `json:"baseVersion"`
	Position    model.Position `json:"position"`
	OldName     string         `json:"oldName"`
	NewName     string         `json:"newName"`
}

func (o *RenameOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(renameJSON{
		ClassName:   KindRename.String(),
		BaseVersion: o.wireVersion(),
		Position:    o.Position,
		OldName:     o.OldName,
		NewName:     o.NewName,
	})
}
