package ot

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/model"
)

func TestLivePositionStickiness(t *testing.T) {
	s := NewSequencer(devtree.MustDocument("foobar"))

	before := NewLivePosition(s, pos(3).WithStickiness(model.StickToPrevious))
	after := NewLivePosition(s, pos(3).WithStickiness(model.StickToNext))

	var moves [][2]model.Path
	after.OnChange(func(old, current model.Position) {
		moves = append(moves, [2]model.Path{old.Path, current.Path})
	})

	_, err := s.Commit(NewInsertOperation(pos(3), text("xx"), 0))
	require.NoError(t, err)

	if diff := cmp.Diff(model.Path{3}, before.Position().Path); diff != "" {
		t.Errorf("toPrevious position mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(model.Path{5}, after.Position().Path); diff != "" {
		t.Errorf("toNext position mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][2]model.Path{{{3}, {5}}}, moves); diff != "" {
		t.Errorf("change events mismatch (-want +got):\n%s", diff)
	}

	after.Detach()
	_, err = s.Commit(NewInsertOperation(pos(0), text("y"), 0))
	require.NoError(t, err)
	require.Equal(t, 4, before.Position().Offset())
	require.Equal(t, 5, after.Position().Offset(), "detached positions stay put")
	require.Len(t, moves, 1)
}

func TestLivePositionFollowsSplit(t *testing.T) {
	s := NewSequencer(devtree.MustDocument("<paragraph>foobar</paragraph>"))
	lp := NewLivePosition(s, pos(0, 5))

	_, err := s.Commit(NewSplitOperation(pos(0, 3), 3, pos(1), nil, 0))
	require.NoError(t, err)

	if diff := cmp.Diff(model.Path{1, 2}, lp.Position().Path); diff != "" {
		t.Errorf("position mismatch (-want +got):\n%s", diff)
	}
}

func TestLiveRangeRemoved(t *testing.T) {
	s := NewSequencer(devtree.MustDocument("foobar"))
	lr := NewLiveRange(s, rng(pos(1), pos(3)))

	var changes []RangeChange
	lr.OnChange(func(c RangeChange) { changes = append(changes, c) })

	_, err := s.Commit(NewInsertOperation(pos(0), text("x"), 0))
	require.NoError(t, err)
	require.True(t, lr.Range().IsEqual(rng(pos(2), pos(4))), "got %s", lr.Range())

	_, err = s.Commit(NewRemoveOperation(pos(0), 7, 0))
	require.NoError(t, err)

	require.Len(t, changes, 2)
	require.Nil(t, changes[0].DeletionPosition)
	require.NotNil(t, changes[1].DeletionPosition)
	require.True(t, changes[1].DeletionPosition.IsEqual(pos(0)))
	require.Equal(t, model.GraveyardName, lr.Range().Root())
	require.True(t, changes[1].Old.IsEqual(rng(pos(2), pos(4))))
}

func TestLiveRangeDetach(t *testing.T) {
	s := NewSequencer(devtree.MustDocument("foobar"))
	lr := NewLiveRange(s, rng(pos(1), pos(3)))
	lr.Detach()
	lr.Detach()

	_, err := s.Commit(NewInsertOperation(pos(0), text("x"), 0))
	require.NoError(t, err)
	require.True(t, lr.Range().IsEqual(rng(pos(1), pos(3))))
}
