package vctree

import (
	"testing"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/ot"
)

func TestMerge(t *testing.T) {
	base := "<paragraph>A</paragraph><paragraph>B</paragraph>"

	// Delta A: insert X before A.
	deltaA, _ := NewDelta(base, "A",
		ot.NewInsertOperation(pos(0), devtree.MustParse("<paragraph>X</paragraph>"), 0))

	// Delta B: append Y.
	deltaB, _ := NewDelta(base, "B",
		ot.NewInsertOperation(pos(2), devtree.MustParse("<paragraph>Y</paragraph>"), 0))

	merged, delta, conflicts, err := Merge(base, deltaA, deltaB)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(conflicts) > 0 {
		t.Fatalf("Unexpected conflicts: %v", conflicts)
	}

	want := "<paragraph>X</paragraph><paragraph>A</paragraph><paragraph>B</paragraph><paragraph>Y</paragraph>"
	if merged != want {
		t.Errorf("Merge mismatch.\nWant: %s\nGot:  %s", want, merged)
	}
	if len(delta.Operations) != 2 || delta.Author != "system-merge" {
		t.Errorf("unexpected merged delta: %+v", delta)
	}
}

func TestMergeAll(t *testing.T) {
	base := "<paragraph>ab</paragraph>"

	delta1, _ := NewDelta(base, "User1", ot.NewInsertOperation(pos(0, 0), devtree.MustParse("X"), 0))
	delta2, _ := NewDelta(base, "User2", ot.NewInsertOperation(pos(0, 1), devtree.MustParse("Y"), 0))
	delta3, _ := NewDelta(base, "User3", ot.NewInsertOperation(pos(0, 2), devtree.MustParse("Z"), 0))

	merged, _, conflicts, err := MergeAll(base, []*Delta{delta1, delta2, delta3})
	if err != nil {
		t.Fatalf("MergeAll failed: %v", err)
	}
	if len(conflicts) > 0 {
		t.Fatalf("Unexpected conflicts: %v", conflicts)
	}
	if want := "<paragraph>XaYbZ</paragraph>"; merged != want {
		t.Errorf("MergeAll mismatch.\nWant: %s\nGot:  %s", want, merged)
	}
}

func TestConflict(t *testing.T) {
	base := "<paragraph>Text</paragraph>"

	deltaA, _ := NewDelta(base, "A", ot.NewRenameOperation(pos(0), "paragraph", "heading", 0))
	deltaB, _ := NewDelta(base, "B", ot.NewRenameOperation(pos(0), "paragraph", "quote", 0))

	merged, _, conflicts, err := Merge(base, deltaA, deltaB)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("Expected 1 conflict, got %d", len(conflicts))
	}
	if conflicts[0].Author != "B" || conflicts[0].Operation != deltaB.Operations[0] {
		t.Errorf("unexpected conflict: %+v", conflicts[0])
	}
	if want := "<heading>Text</heading>"; merged != want {
		t.Errorf("Merge mismatch.\nWant: %s\nGot:  %s", want, merged)
	}
}

func TestMergeBaseMismatch(t *testing.T) {
	deltaA, _ := NewDelta("<paragraph>A</paragraph>", "A")
	deltaB, _ := NewDelta("<paragraph>B</paragraph>", "B")

	if _, _, _, err := Merge("<paragraph>A</paragraph>", deltaA, deltaB); err == nil {
		t.Fatal("expected base hash mismatch")
	}
	if _, _, _, err := MergeAll("<paragraph>A</paragraph>", nil); err == nil {
		t.Fatal("expected error for no deltas")
	}
}
