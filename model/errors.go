package model

import (
	"errors"
	"fmt"
)

// Validation failures. Operations wrap them in a *ValidationError.
var (
	ErrRootDoesNotExist              = errors.New("root does not exist")
	ErrPositionInvalid               = errors.New("position does not exist in the document")
	ErrInsertPositionInvalid         = errors.New("insert position is invalid")
	ErrMoveNodesDoNotExist           = errors.New("moved nodes do not exist")
	ErrMoveRangeIntoItself           = errors.New("trying to move a range of nodes into itself")
	ErrMoveNodeIntoItself            = errors.New("trying to move a node into itself")
	ErrAttributeRangeNotFlat         = errors.New("attribute range is not flat")
	ErrAttributeWrongOldValue        = errors.New("changed node has a different attribute value than the operation's old value")
	ErrAttributeExists               = errors.New("the attribute with the given key already exists")
	ErrRootAttributeNotARoot         = errors.New("cannot change attributes of a non-root element")
	ErrRootAttributeWrongOldValue    = errors.New("changed root has a different attribute value than the operation's old value")
	ErrRootAttributeExists           = errors.New("the root attribute with the given key already exists")
	ErrRenameNotAnElement            = errors.New("given position is not placed before an element")
	ErrRenameWrongOldName            = errors.New("element to change has a different name than the operation's old name")
	ErrSplitPositionInvalid          = errors.New("split position is invalid")
	ErrSplitInRoot                   = errors.New("cannot split a root element")
	ErrSplitHowManyInvalid           = errors.New("split operation specifies a wrong number of nodes to move")
	ErrSplitGraveyardPositionInvalid = errors.New("graveyard position is invalid")
	ErrMergeSourcePositionInvalid    = errors.New("merge source position is invalid")
	ErrMergeTargetPositionInvalid    = errors.New("merge target position is invalid")
	ErrMergeHowManyInvalid           = errors.New("merge operation specifies a wrong number of nodes to move")
)

// ValidationError reports an operation that cannot be applied to the current
// document state.
type ValidationError struct {
	Operation string
	Err       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Operation, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
