package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/model"
	"github.com/dannyswat/vctree/ot"
)

// Scenario describes a starting tree and the operations to run on it.
// Operations use the JSON wire format written as YAML.
type Scenario struct {
	// Document is the markup of the main root.
	Document string `yaml:"document"`

	// Roots holds the markup of additional roots by name.
	Roots map[string]string `yaml:"roots"`

	// Operations are committed by apply as one batch.
	Operations []map[string]any `yaml:"operations"`

	// Undo makes apply undo the committed batch afterwards.
	Undo bool `yaml:"undo"`

	// A and B are the concurrent batches compared by converge.
	A []map[string]any `yaml:"a"`
	B []map[string]any `yaml:"b"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &s, nil
}

// newDocument builds a fresh document for the scenario.
func (s *Scenario) newDocument() (*model.Document, error) {
	names := []string{model.DefaultRootName}
	for _, name := range slices.Sorted(maps.Keys(s.Roots)) {
		if name == model.DefaultRootName || name == model.GraveyardName {
			return nil, fmt.Errorf("root name %q is reserved", name)
		}
		names = append(names, name)
	}
	doc := model.NewDocument(names...)
	if err := devtree.Load(doc, model.DefaultRootName, s.Document); err != nil {
		return nil, fmt.Errorf("load %s: %w", model.DefaultRootName, err)
	}
	for _, name := range names[1:] {
		if err := devtree.Load(doc, name, s.Roots[name]); err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
	}
	return doc, nil
}

func decodeOperations(raw []map[string]any, doc *model.Document) ([]ot.Operation, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return ot.OperationsFromJSON(data, doc)
}
