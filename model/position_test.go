package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPositionCompare(t *testing.T) {
	tests := []struct {
		a, b Position
		want Comparison
	}{
		{NewPosition("main", 1, 2), NewPosition("main", 1, 2), Same},
		{NewPosition("main", 1), NewPosition("main", 1, 0), Before},
		{NewPosition("main", 2), NewPosition("main", 1, 5), After},
		{NewPosition("main", 0, 3), NewPosition("main", 0, 4), Before},
		{NewPosition("main", 0), NewPosition("other", 0), DifferentRoots},
	}
	for _, tt := range tests {
		if got := tt.a.CompareWith(tt.b); got != tt.want {
			t.Errorf("%s vs %s: got %s, want %s", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPositionTransformedByInsertion(t *testing.T) {
	at := NewPosition("main", 0, 2)

	p := NewPosition("main", 0, 2)
	if got := p.TransformedByInsertion(at, 3); !got.IsEqual(NewPosition("main", 0, 5)) {
		t.Errorf("toNone position at insertion point: got %s", got)
	}

	sticky := p.WithStickiness(StickToPrevious)
	if got := sticky.TransformedByInsertion(at, 3); !got.IsEqual(p) {
		t.Errorf("toPrevious position at insertion point should stay, got %s", got)
	}

	deeper := NewPosition("main", 0, 4, 1)
	if got := deeper.TransformedByInsertion(NewPosition("main", 0, 1), 2); !got.IsEqual(NewPosition("main", 0, 6, 1)) {
		t.Errorf("nested position: got %s", got)
	}

	other := NewPosition("other", 0, 2)
	if got := other.TransformedByInsertion(at, 3); !got.IsEqual(other) {
		t.Errorf("different root should not change, got %s", got)
	}
}

func TestPositionTransformedByDeletion(t *testing.T) {
	at := NewPosition("main", 2)

	if _, ok := NewPosition("main", 3, 1).TransformedByDeletion(at, 2); ok {
		t.Errorf("position inside removed element should be gone")
	}
	got, ok := NewPosition("main", 5).TransformedByDeletion(at, 2)
	if !ok || !got.IsEqual(NewPosition("main", 3)) {
		t.Errorf("got %s %v, want main[3]", got, ok)
	}
	got, ok = NewPosition("main", 4).TransformedByDeletion(at, 2)
	if !ok || !got.IsEqual(NewPosition("main", 2)) {
		t.Errorf("position at end of removed range: got %s %v", got, ok)
	}
}

func TestPositionTransformedByMove(t *testing.T) {
	source := NewPosition("main", 1)
	target := NewPosition("main", 6)

	inside := NewPosition("main", 2, 0)
	if got := inside.TransformedByMove(source, target, 2); !got.IsEqual(NewPosition("main", 5, 0)) {
		t.Errorf("moved content: got %s", got)
	}

	after := NewPosition("main", 4)
	if got := after.TransformedByMove(source, target, 2); !got.IsEqual(NewPosition("main", 2)) {
		t.Errorf("position between source and target: got %s", got)
	}

	atSource := NewPosition("main", 1).WithStickiness(StickToNext)
	if got := atSource.TransformedByMove(source, target, 2); !got.IsEqual(NewPosition("main", 4)) {
		t.Errorf("toNext position at source follows the move, got %s", got)
	}
}

func TestPositionNoAliasing(t *testing.T) {
	p := NewPosition("main", 1, 2)
	q := p.ShiftedBy(1)
	q.Path[0] = 9
	if p.Path[0] != 1 {
		t.Fatalf("derived position aliases its source path")
	}
	if got := NewPosition("main", 1).ShiftedBy(-5); got.Offset() != 0 {
		t.Errorf("ShiftedBy should clamp at zero, got %d", got.Offset())
	}
}

func TestPositionJSON(t *testing.T) {
	p := NewPosition("main", 0, 3).WithStickiness(StickToNext)
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"root":"main","path":[0,3],"stickiness":"toNext"}`
	if string(data) != want {
		t.Fatalf("got %s, want %s", data, want)
	}
	var back Position
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(p, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
