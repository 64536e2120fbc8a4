package vctree

import (
	"fmt"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/model"
	"github.com/dannyswat/vctree/ot"
)

// Patch applies the operations in delta to baseMarkup.
func Patch(baseMarkup string, delta *Delta) (string, error) {
	doc, err := devtree.NewDocument(baseMarkup)
	if err != nil {
		return "", fmt.Errorf("parse base: %w", err)
	}
	if hash := devtree.Hash(doc); hash != delta.BaseHash {
		return "", fmt.Errorf("base hash mismatch: expected %s, got %s", delta.BaseHash, hash)
	}

	if err := ot.ApplyOperations(doc, delta.Operations); err != nil {
		return "", err
	}
	return devtree.StringifyRoot(doc, model.DefaultRootName), nil
}
