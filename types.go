// Package vctree merges concurrent edits of tree documents written as
// markup. Edits are operational-transformation operations from package ot.
package vctree

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/ot"
)

// Delta represents a set of operations made against a base document.
type Delta struct {
	BaseHash   string         `json:"base_hash"` // Hash of the base document to ensure validity
	Operations []ot.Operation `json:"operations"`
	Timestamp  int64          `json:"timestamp"`
	Author     string         `json:"author"`
}

// NewDelta records ops made by author against baseMarkup.
func NewDelta(baseMarkup, author string, ops ...ot.Operation) (*Delta, error) {
	hash, err := hashMarkup(baseMarkup)
	if err != nil {
		return nil, err
	}
	return &Delta{
		BaseHash:   hash,
		Operations: ops,
		Timestamp:  time.Now().UnixMilli(),
		Author:     author,
	}, nil
}

func (d *Delta) UnmarshalJSON(data []byte) error {
	var raw struct {
		BaseHash   string          `json:"base_hash"`
		Operations json.RawMessage `json:"operations"`
		Timestamp  int64           `json:"timestamp"`
		Author     string          `json:"author"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var ops []ot.Operation
	if len(raw.Operations) > 0 && string(raw.Operations) != "null" {
		var err error
		if ops, err = ot.OperationsFromJSON(raw.Operations, nil); err != nil {
			return err
		}
	}
	*d = Delta{BaseHash: raw.BaseHash, Operations: ops, Timestamp: raw.Timestamp, Author: raw.Author}
	return nil
}

// Conflict reports an operation of the weaker delta that lost to a
// concurrent one and had no effect on the merge.
type Conflict struct {
	Description string       `json:"description"`
	Author      string       `json:"author"`
	Operation   ot.Operation `json:"operation"`
}

func hashMarkup(markup string) (string, error) {
	doc, err := devtree.NewDocument(markup)
	if err != nil {
		return "", fmt.Errorf("parse base: %w", err)
	}
	return devtree.Hash(doc), nil
}
