package vctree

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/model"
	"github.com/dannyswat/vctree/ot"
)

func pos(path ...int) model.Position {
	return model.NewPosition(model.DefaultRootName, path...)
}

func TestPatch(t *testing.T) {
	tests := []struct {
		name string
		base string
		ops  []ot.Operation
		want string
	}{
		{
			name: "Insert text",
			base: "<paragraph>Hello</paragraph>",
			ops:  []ot.Operation{ot.NewInsertOperation(pos(0, 5), devtree.MustParse("!"), 0)},
			want: "<paragraph>Hello!</paragraph>",
		},
		{
			name: "Attribute change",
			base: "<paragraph>Hello</paragraph>",
			ops: []ot.Operation{
				ot.NewAttributeOperation(model.NewRange(pos(0, 0), pos(0, 5)), "bold", nil, true, 0),
			},
			want: `<paragraph><text bold="true">Hello</text></paragraph>`,
		},
		{
			name: "Remove node",
			base: "<paragraph>A</paragraph><paragraph>B</paragraph>",
			ops:  []ot.Operation{ot.NewRemoveOperation(pos(0), 1, 0)},
			want: "<paragraph>B</paragraph>",
		},
		{
			name: "Split and rename",
			base: "<paragraph>TitleText</paragraph>",
			ops: []ot.Operation{
				ot.NewSplitOperation(pos(0, 5), 4, pos(1), nil, 0),
				ot.NewRenameOperation(pos(0), "paragraph", "heading", 1),
			},
			want: "<heading>Title</heading><paragraph>Text</paragraph>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, err := NewDelta(tt.base, "tester", tt.ops...)
			if err != nil {
				t.Fatalf("NewDelta() error = %v", err)
			}

			patched, err := Patch(tt.base, delta)
			if err != nil {
				t.Fatalf("Patch() error = %v", err)
			}
			if patched != tt.want {
				t.Errorf("Patch mismatch.\nWant: %s\nGot:  %s", tt.want, patched)
			}
		})
	}
}

func TestPatchBaseMismatch(t *testing.T) {
	delta, err := NewDelta("<paragraph>A</paragraph>", "tester")
	if err != nil {
		t.Fatal(err)
	}
	_, err = Patch("<paragraph>B</paragraph>", delta)
	if err == nil || !strings.Contains(err.Error(), "base hash mismatch") {
		t.Fatalf("expected base hash mismatch, got %v", err)
	}
}

func TestPatchInvalidOperation(t *testing.T) {
	base := "<paragraph>A</paragraph>"
	delta, _ := NewDelta(base, "tester", ot.NewRenameOperation(pos(0), "heading", "paragraph", 0))
	_, err := Patch(base, delta)
	if err == nil || !strings.Contains(err.Error(), "failed to apply op 0 (RenameOperation)") {
		t.Fatalf("expected rename failure, got %v", err)
	}
}

func TestDeltaJSON(t *testing.T) {
	base := "<paragraph>A</paragraph>"
	delta, _ := NewDelta(base, "tester",
		ot.NewInsertOperation(pos(0, 1), devtree.MustParse("B"), 0),
		ot.NewRenameOperation(pos(0), "paragraph", "heading", 1),
	)

	data, err := json.Marshal(delta)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var decoded Delta
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Author != "tester" || decoded.BaseHash != delta.BaseHash || len(decoded.Operations) != 2 {
		t.Fatalf("decoded delta mismatch: %+v", decoded)
	}

	patched, err := Patch(base, &decoded)
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}
	if want := "<heading>AB</heading>"; patched != want {
		t.Errorf("Patch mismatch.\nWant: %s\nGot:  %s", want, patched)
	}
}
