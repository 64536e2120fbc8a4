package ot

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dannyswat/vctree/internal/devtree"
)

func TestTransformSetsPadsWithNoOps(t *testing.T) {
	a := NewAttributeOperation(rng(pos(0), pos(4)), "bold", nil, "a", 0)
	b := NewAttributeOperation(rng(pos(2), pos(6)), "bold", nil, "b", 0)

	result := TransformSets([]Operation{a}, []Operation{b}, TransformSetsOptions{PadWithNoOps: true})
	require.Len(t, result.OperationsA, 2)
	require.Len(t, result.OperationsB, 2)
	require.Equal(t, KindNoOp, result.OperationsB[1].Kind())

	for i, op := range result.OperationsA {
		require.Equal(t, 1+i, op.BaseVersion())
		require.Same(t, a, result.OriginalOperations[op])
	}
	for i, op := range result.OperationsB {
		require.Equal(t, 1+i, op.BaseVersion())
	}
	require.Same(t, b, result.OriginalOperations[result.OperationsB[0]])
}

func TestTransformSetsEmpty(t *testing.T) {
	a := NewInsertOperation(pos(0), text("x"), 0)
	result := TransformSets([]Operation{a}, nil, TransformSetsOptions{})
	require.Len(t, result.OperationsA, 1)
	require.Same(t, a, result.OperationsA[0])
	require.Empty(t, result.OperationsB)
}

func TestTransformSetsConverge(t *testing.T) {
	const markup = "<paragraph>foobar</paragraph><paragraph>baz</paragraph>"
	opsA := []Operation{
		NewInsertOperation(pos(0, 3), text("X"), 0),
		NewSplitOperation(pos(0, 4), 3, pos(1), nil, 1),
	}
	opsB := []Operation{
		NewRemoveOperation(pos(1, 0), 3, 0),
		NewRenameOperation(pos(0), "paragraph", "heading", 1),
	}

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	result := TransformSets(opsA, opsB, TransformSetsOptions{PadWithNoOps: true, Metrics: metrics})
	require.Greater(t, testutil.ToFloat64(metrics.transformations), 0.0)

	docA := devtree.MustDocument(markup)
	require.NoError(t, ApplyOperations(docA, opsA))
	require.NoError(t, ApplyOperations(docA, result.OperationsB))

	docB := devtree.MustDocument(markup)
	require.NoError(t, ApplyOperations(docB, opsB))
	require.NoError(t, ApplyOperations(docB, result.OperationsA))

	require.Equal(t, content(docA), content(docB))
	require.Equal(t, "<heading>fooX</heading><heading>bar</heading><paragraph></paragraph>", content(docA))
	require.Equal(t, len(result.OperationsA), len(result.OperationsB))
}

func TestHistoryOperations(t *testing.T) {
	h := NewHistory()
	ops := []Operation{NewNoOperation(0), NewNoOperation(1), NewNoOperation(2)}
	for _, op := range ops {
		h.AddOperation(op)
	}

	require.Len(t, h.Operations(1), 2)
	require.Empty(t, h.Operations(3))

	op, ok := h.Operation(2)
	require.True(t, ok)
	require.Same(t, ops[2], op)

	require.False(t, h.IsUndoneOperation(ops[0]))
	h.SetOperationAsUndone(ops[0], ops[2])
	require.True(t, h.IsUndoneOperation(ops[0]))
	require.True(t, h.IsUndoingOperation(ops[2]))
	require.False(t, h.IsUndoingOperation(ops[1]))
}
