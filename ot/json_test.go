package ot

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/model"
)

func TestOperationJSONRoundTrip(t *testing.T) {
	markerRange := rng(pos(0, 1), pos(0, 2))
	gy := gyPos(0)

	tests := []struct {
		name string
		op   Operation
	}{
		{"insert", NewInsertOperation(pos(0, 1), devtree.MustParse(`<text bold="true">x</text><widget size="2"></widget>`), 3)},
		{"move", NewMoveOperation(pos(0, 1), 2, pos(1, 0), 0)},
		{"remove", NewRemoveOperation(pos(0, 1), 1, 0)},
		{"attribute", NewAttributeOperation(rng(pos(0, 0), pos(0, 2)), "bold", nil, true, 1)},
		{"root attribute", NewRootAttributeOperation(model.DefaultRootName, "lang", "en", "fr", 2)},
		{"rename", NewRenameOperation(pos(0), "paragraph", "heading", 4)},
		{"marker", NewMarkerOperation("comment", nil, &markerRange, true, 5)},
		{"split", NewSplitOperation(pos(0, 1), 2, pos(1), nil, 6)},
		{"split from graveyard", NewSplitOperation(pos(0, 1), 2, pos(1), &gy, 6)},
		{"merge", NewMergeOperation(pos(1, 0), 2, pos(0, 3), gyPos(0), 7)},
		{"no-op", NewNoOperation(8)},
		{"detached", NewInsertOperation(pos(0, 0), text("x"), Detached)},
	}

	doc := devtree.MustDocument("<paragraph>abc</paragraph><paragraph>de</paragraph>")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.op)
			require.NoError(t, err)

			var header map[string]any
			require.NoError(t, json.Unmarshal(data, &header))
			require.Equal(t, tt.op.Kind().String(), header["__className"])

			decoded, err := OperationFromJSON(data, doc)
			require.NoError(t, err)
			require.Equal(t, tt.op.Kind(), decoded.Kind())
			require.Equal(t, tt.op.BaseVersion(), decoded.BaseVersion())

			again, err := json.Marshal(decoded)
			require.NoError(t, err)
			require.JSONEq(t, string(data), string(again))
		})
	}
}

func TestOperationJSONDetachedIsNull(t *testing.T) {
	data, err := json.Marshal(NewNoOperation(Detached))
	require.NoError(t, err)
	require.JSONEq(t, `{"__className":"NoOperation","baseVersion":null}`, string(data))
}

func TestOperationFromJSONBehavesLikeOriginal(t *testing.T) {
	op := NewInsertOperation(pos(0, 1), text("xy"), 0)
	data, err := json.Marshal(op)
	require.NoError(t, err)

	decoded, err := OperationFromJSON(data, nil)
	require.NoError(t, err)

	original := devtree.MustDocument("<paragraph>abc</paragraph>")
	replayed := devtree.MustDocument("<paragraph>abc</paragraph>")
	require.NoError(t, ApplyOperation(original, op))
	require.NoError(t, ApplyOperation(replayed, decoded))
	require.Equal(t, content(original), content(replayed))
}

func TestOperationFromJSONErrors(t *testing.T) {
	doc := devtree.MustDocument("foo")

	_, err := OperationFromJSON([]byte(`{"__className":"ShuffleOperation","baseVersion":0}`), doc)
	require.True(t, errors.Is(err, ErrUnknownOperation), "got %v", err)

	missingRoot := `{"__className":"RenameOperation","baseVersion":0,` +
		`"position":{"root":"aside","path":[0],"stickiness":"toNext"},"oldName":"a","newName":"b"}`
	_, err = OperationFromJSON([]byte(missingRoot), doc)
	require.True(t, errors.Is(err, model.ErrRootDoesNotExist), "got %v", err)

	_, err = OperationFromJSON([]byte(`not json`), doc)
	require.Error(t, err)

	noPath := `{"__className":"AttributeOperation","baseVersion":0,` +
		`"range":{"start":{"root":"main","path":[]},"end":{"root":"main","path":[1]}},"key":"bold","oldValue":null,"newValue":true}`
	_, err = OperationFromJSON([]byte(noPath), doc)
	require.ErrorContains(t, err, "not a valid position")
}

func TestOperationsFromJSON(t *testing.T) {
	ops := []Operation{
		NewInsertOperation(pos(0), text("x"), 0),
		NewRemoveOperation(pos(0), 1, 1),
	}
	data, err := json.Marshal(ops)
	require.NoError(t, err)

	decoded, err := OperationsFromJSON(data, nil)
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	require.Equal(t, KindMove, decoded[1].Kind())
	require.Equal(t, MoveTypeRemove, decoded[1].(*MoveOperation).Type())
}
