package ot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/model"
)

func pos(path ...int) model.Position {
	return model.NewPosition(model.DefaultRootName, path...)
}

func gyPos(path ...int) model.Position {
	return model.NewPosition(model.GraveyardName, path...)
}

func rng(start, end model.Position) model.Range {
	return model.NewRange(start, end)
}

func text(s string) []model.Node {
	return []model.Node{model.NewText(s, nil)}
}

func content(doc *model.Document) string {
	return devtree.StringifyRoot(doc, model.DefaultRootName)
}

// converge applies a then b transformed by a to one copy of markup, and b
// then a transformed by b to another. a is the stronger operation.
func converge(t *testing.T, markup string, a, b Operation) (afterA, afterB *model.Document) {
	t.Helper()
	afterA = devtree.MustDocument(markup)
	afterB = devtree.MustDocument(markup)

	require.NoError(t, ApplyOperation(afterA, a))
	require.NoError(t, ApplyOperations(afterA, Transform(b, a, Context{AIsStrong: false})))

	require.NoError(t, ApplyOperation(afterB, b))
	require.NoError(t, ApplyOperations(afterB, Transform(a, b, Context{AIsStrong: true})))
	return afterA, afterB
}

// requireConverged checks that both orders produce want.
func requireConverged(t *testing.T, markup string, a, b Operation, want string) {
	t.Helper()
	afterA, afterB := converge(t, markup, a, b)
	require.Equal(t, want, content(afterA), "a applied first:\n%s", afterA.Dump())
	require.Equal(t, want, content(afterB), "b applied first:\n%s", afterB.Dump())
	require.Equal(t, devtree.Hash(afterA), devtree.Hash(afterB))
}
