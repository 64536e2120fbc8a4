// Package ot implements operations on the tree model and their operational
// transformation.
package ot

import (
	"encoding/json"
	"fmt"

	"github.com/dannyswat/vctree/model"
)

// Kind identifies an operation variant.
type Kind int

const (
	KindInsert Kind = iota
	KindMove
	KindAttribute
	KindRootAttribute
	KindRename
	KindMarker
	KindSplit
	KindMerge
	KindNoOp
	kindCount
)

var classNames = [kindCount]string{
	KindInsert:        "InsertOperation",
	KindMove:          "MoveOperation",
	KindAttribute:     "AttributeOperation",
	KindRootAttribute: "RootAttributeOperation",
	KindRename:        "RenameOperation",
	KindMarker:        "MarkerOperation",
	KindSplit:         "SplitOperation",
	KindMerge:         "MergeOperation",
	KindNoOp:          "NoOperation",
}

// String returns the class name used on the wire.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return classNames[k]
}

// Detached is the base version of operations that are not bound to a
// document version. It serializes as null.
const Detached = -1

// Operation is an atomic, reversible change to a document.
//
// Operations are values: transformation clones them before changing any
// field, so an operation handed to Transform or TransformSets is never
// modified.
type Operation interface {
	Kind() Kind
	BaseVersion() int
	Clone() Operation
	// Reversed returns the operation that undoes this one. Its base version
	// is one higher.
	Reversed() Operation
	// Validate checks the operation against the current document without
	// changing it.
	Validate(doc *model.Document) error
	json.Marshaler
	fmt.Stringer

	setBaseVersion(v int)
	execute(doc *model.Document)
	wellFormed() error
}

type versioned struct {
	baseVersion int
}

func (v *versioned) BaseVersion() int      { return v.baseVersion }
func (v *versioned) setBaseVersion(bv int) { v.baseVersion = bv }

// next returns the base version of an operation that follows this one.
func (v *versioned) next() int {
	if v.baseVersion == Detached {
		return Detached
	}
	return v.baseVersion + 1
}

func (v *versioned) wireVersion() *int {
	if v.baseVersion == Detached {
		return nil
	}
	bv := v.baseVersion
	return &bv
}

// graveyardStart is where reversed operations put removed content.
func graveyardStart() model.Position {
	return model.NewPosition(model.GraveyardName, 0)
}

func invalid(op Operation, sentinel error, format string, args ...any) error {
	return &model.ValidationError{
		Operation: op.Kind().String(),
		Err:       fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...),
	}
}

// mustExecute panics when a tree primitive fails after validation passed.
func mustExecute(op Operation, err error) {
	if err != nil {
		panic(fmt.Sprintf("ot: executing validated %s failed: %v", op, err))
	}
}

// MalformedOperationError is the panic value for structurally broken
// operations handed to the transformation functions.
type MalformedOperationError struct {
	Operation string
	Reason    string
}

func (e *MalformedOperationError) Error() string {
	return fmt.Sprintf("ot: malformed %s: %s", e.Operation, e.Reason)
}

func mustBeWellFormed(op Operation) {
	if op == nil {
		panic(&MalformedOperationError{Operation: "<nil>", Reason: "nil operation"})
	}
	if err := op.wellFormed(); err != nil {
		panic(&MalformedOperationError{Operation: op.Kind().String(), Reason: err.Error()})
	}
}

func checkPosition(name string, p model.Position) error {
	if !p.IsValid() {
		return fmt.Errorf("%s %s is not a valid position", name, p)
	}
	return nil
}

func checkRange(name string, r model.Range) error {
	if err := checkPosition(name+" start", r.Start); err != nil {
		return err
	}
	if err := checkPosition(name+" end", r.End); err != nil {
		return err
	}
	if r.Start.Root != r.End.Root {
		return fmt.Errorf("%s %s spans two roots", name, r)
	}
	if r.End.IsBefore(r.Start) {
		return fmt.Errorf("%s %s ends before it starts", name, r)
	}
	return nil
}

func checkHowMany(howMany int) error {
	if howMany < 0 {
		return fmt.Errorf("negative howMany %d", howMany)
	}
	return nil
}
