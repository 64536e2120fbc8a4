package ot

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// MarkerOperation creates, updates or removes a marker. A nil NewRange
// removes the marker, a nil OldRange means it did not exist.
type MarkerOperation struct {
	versioned
	Name        string
	OldRange    *model.Range
	NewRange    *model.Range
	AffectsData bool
}

// NewMarkerOperation creates a marker operation.
func NewMarkerOperation(name string, oldRange, newRange *model.Range, affectsData bool, baseVersion int) *MarkerOperation {
	return &MarkerOperation{
		versioned:   versioned{baseVersion: baseVersion},
		Name:        name,
		OldRange:    cloneRange(oldRange),
		NewRange:    cloneRange(newRange),
		AffectsData: affectsData,
	}
}

func cloneRange(r *model.Range) *model.Range {
	if r == nil {
		return nil
	}
	c := r.Clone()
	return &c
}

func (o *MarkerOperation) Kind() Kind { return KindMarker }

func (o *MarkerOperation) Clone() Operation {
	c := *o
	c.OldRange = cloneRange(o.OldRange)
	c.NewRange = cloneRange(o.NewRange)
	return &c
}

func (o *MarkerOperation) Reversed() Operation {
	return NewMarkerOperation(o.Name, o.NewRange, o.OldRange, o.AffectsData, o.next())
}

func (o *MarkerOperation) Validate(doc *model.Document) error {
	if o.NewRange != nil && !doc.HasRoot(o.NewRange.Root()) {
		return invalid(o, model.ErrRootDoesNotExist, "%q", o.NewRange.Root())
	}
	return nil
}

func (o *MarkerOperation) execute(doc *model.Document) {
	if o.NewRange == nil {
		doc.Markers().Remove(o.Name)
		return
	}
	doc.Markers().Set(o.Name, *o.NewRange, o.AffectsData)
}

func (o *MarkerOperation) wellFormed() error {
	if o.Name == "" {
		return fmt.Errorf("empty marker name")
	}
	if o.OldRange != nil {
		if err := checkRange("old range", *o.OldRange); err != nil {
			return err
		}
	}
	if o.NewRange != nil {
		return checkRange("new range", *o.NewRange)
	}
	return nil
}

func (o *MarkerOperation) String() string {
	return fmt.Sprintf("MarkerOperation(%d): %q %v -> %v", o.baseVersion, o.Name, o.OldRange, o.NewRange)
}

type markerJSON struct {
	ClassName   string       `json:"__className"`
	BaseVersion *int         `json:"baseVersion"`
	Name        string       `json:"name"`
	OldRange    *model.Range `json:"oldRange"`
	NewRange    *model.Range `json:"newRange"`
	AffectsData bool         `json:"affectsData"`
}

func (o *MarkerOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(markerJSON{
		ClassName:   KindMarker.String(),
		BaseVersion: o.wireVersion(),
		Name:        o.Name,
		OldRange:    o.OldRange,
		NewRange:    o.NewRange,
		AffectsData: o.AffectsData,
	})
}

// NoOperation does nothing. Transformation returns it when an operation has
// no effect left.
type NoOperation struct {
	versioned
}

// NewNoOperation creates a no-op.
func NewNoOperation(baseVersion int) *NoOperation {
	return &NoOperation{versioned: versioned{baseVersion: baseVersion}}
}

func (o *NoOperation) Kind() Kind { return KindNoOp }

func (o *NoOperation) Clone() Operation {
	c := *o
	return &c
}

func (o *NoOperation) Reversed() Operation            { return NewNoOperation(o.next()) }
func (o *NoOperation) Validate(*model.Document) error { return nil }
func (o *NoOperation) execute(*model.Document)        {}
func (o *NoOperation) wellFormed() error              { return nil }
func (o *NoOperation) String() string                 { return fmt.Sprintf("NoOperation(%d)", o.baseVersion) }

func (o *NoOperation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ClassName   string `json:"__className"`
		BaseVersion *int   `json:"baseVersion"`
	}{KindNoOp.String(), o.wireVersion()})
}
