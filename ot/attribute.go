package ot

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// AttributeOperation changes one attribute on every item of a flat range.
// A nil value means the attribute is not set.
type AttributeOperation struct {
	versioned
	Range    model.Range
	Key      string
	OldValue any
	NewValue any
}

// NewAttributeOperation creates an attribute operation.
func NewAttributeOperation(r model.Range, key string, oldValue, newValue any, baseVersion int) *AttributeOperation {
	return &AttributeOperation{
		versioned: versioned{baseVersion: baseVersion},
		Range:     model.NewRange(r.Start, r.End),
		Key:       key,
		OldValue:  oldValue,
		NewValue:  newValue,
	}
}

func (o *AttributeOperation) Kind() Kind { return KindAttribute }

func (o *AttributeOperation) Clone() Operation {
	c := *o
	c.Range = o.Range.Clone()
	return &c
}

func (o *AttributeOperation) Reversed() Operation {
	return NewAttributeOperation(o.Range, o.Key, o.NewValue, o.OldValue, o.next())
}

func (o *AttributeOperation) Validate(doc *model.Document) error {
	if err := checkRange("range", o.Range); err != nil {
		return invalid(o, model.ErrPositionInvalid, "%v", err)
	}
	if !o.Range.IsFlat() {
		return invalid(o, model.ErrAttributeRangeNotFlat, "%s", o.Range)
	}
	parent, err := doc.ParentElement(o.Range.End)
	if err != nil {
		return invalid(o, model.ErrPositionInvalid, "%v", err)
	}
	for _, item := range parent.Items(o.Range.Start.Offset(), o.Range.End.Offset()) {
		current := item.Attributes().Get(o.Key)
		if o.OldValue != nil && !model.ValuesEqual(current, o.OldValue) {
			return invalid(o, model.ErrAttributeWrongOldValue, "key %q has %v, want %v", o.Key, current, o.OldValue)
		}
		if o.OldValue == nil && o.NewValue != nil && current != nil {
			return invalid(o, model.ErrAttributeExists, "key %q", o.Key)
		}
	}
	return nil
}

func (o *AttributeOperation) execute(doc *model.Document) {
	if model.ValuesEqual(o.OldValue, o.NewValue) {
		return
	}
	mustExecute(o, doc.SetAttribute(o.Range, o.Key, o.NewValue))
}

func (o *AttributeOperation) wellFormed() error {
	return checkRange("range", o.Range)
}

func (o *AttributeOperation) String() string {
	return fmt.Sprintf("AttributeOperation(%d): %s %q: %v -> %v", o.baseVersion, o.Range, o.Key, o.OldValue, o.NewValue)
}

type attributeJSON struct {
	ClassName   string      `json:"__className"`
	BaseVersion *int        `json:"baseVersion"`
	Range       model.Range `json:"range"`
	Key         string      `json:"key"`
	OldValue    any         `json:"oldValue"`
	NewValue    any         `json:"newValue"`
}

func (o *AttributeOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(attributeJSON{
		ClassName:   KindAttribute.String(),
		BaseVersion: o.wireVersion(),
		Range:       o.Range,
		Key:         o.Key,
		OldValue:    o.OldValue,
		NewValue:    o.NewValue,
	})
}

// RootAttributeOperation changes one attribute of a root element.
type RootAttributeOperation struct {
	versioned
	Root     string
	Key      string
	OldValue any
	NewValue any
}

// NewRootAttributeOperation creates a root attribute operation.
func NewRootAttributeOperation(root, key string, oldValue, newValue any, baseVersion int) *RootAttributeOperation {
	return &RootAttributeOperation{
		versioned: versioned{baseVersion: baseVersion},
		Root:      root,
		Key:       key,
		OldValue:  oldValue,
		NewValue:  newValue,
	}
}

func (o *RootAttributeOperation) Kind() Kind { return KindRootAttribute }

func (o *RootAttributeOperation) Clone() Operation {
	c := *o
	return &c
}

func (o *RootAttributeOperation) Reversed() Operation {
	return NewRootAttributeOperation(o.Root, o.Key, o.NewValue, o.OldValue, o.next())
}

func (o *RootAttributeOperation) Validate(doc *model.Document) error {
	root := doc.Root(o.Root)
	if root == nil || o.Root == model.GraveyardName {
		return invalid(o, model.ErrRootAttributeNotARoot, "%q", o.Root)
	}
	current := root.Attrs.Get(o.Key)
	if o.OldValue != nil && !model.ValuesEqual(current, o.OldValue) {
		return invalid(o, model.ErrRootAttributeWrongOldValue, "key %q has %v, want %v", o.Key, current, o.OldValue)
	}
	if o.OldValue == nil && o.NewValue != nil && current != nil {
		return invalid(o, model.ErrRootAttributeExists, "key %q", o.Key)
	}
	return nil
}

func (o *RootAttributeOperation) execute(doc *model.Document) {
	if model.ValuesEqual(o.OldValue, o.NewValue) {
		return
	}
	mustExecute(o, doc.SetRootAttribute(o.Root, o.Key, o.NewValue))
}

func (o *RootAttributeOperation) wellFormed() error {
	if o.Root == "" {
		return fmt.Errorf("empty root name")
	}
	return nil
}

func (o *RootAttributeOperation) String() string {
	return fmt.Sprintf("RootAttributeOperation(%d): %s %q: %v -> %v", o.baseVersion, o.Root, o.Key, o.OldValue, o.NewValue)
}

type rootAttributeJSON struct {
	ClassName   string `json:"__className"`
	BaseVersion *int   `json:"baseVersion"`
	Root        string `json:"root"`
	Key         string `json:"key"`
	OldValue    any    `json:"oldValue"`
	NewValue    any    `json:"newValue"`
}

func (o *RootAttributeOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(rootAttributeJSON{
		ClassName:   KindRootAttribute.String(),
		BaseVersion: o.wireVersion(),
		Root:        o.Root,
		Key:         o.Key,
		OldValue:    o.OldValue,
		NewValue:    o.NewValue,
	})
}
