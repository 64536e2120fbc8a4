package ot

// TransformSetsOptions configures TransformSets.
type TransformSetsOptions struct {
	// UseRelations makes the transformation consult relations recorded
	// between original operations. Undo sets it.
	UseRelations bool
	// PadWithNoOps appends NoOperations to the shorter result so that both
	// sets advance the version by the same amount.
	PadWithNoOps bool
	// ForceWeakRemove makes removals lose against plain moves.
	ForceWeakRemove bool
	// History answers which operations were undone. It may be nil.
	History *History
	// Metrics counts transformations. It may be nil.
	Metrics *Metrics
}

// TransformSetsResult holds both sets after transformation.
type TransformSetsResult struct {
	// OperationsA apply after the original operations B.
	OperationsA []Operation
	// OperationsB apply after the original operations A.
	OperationsB []Operation
	// OriginalOperations maps every result operation to the input operation
	// it was derived from.
	OriginalOperations map[Operation]Operation
}

// TransformSets transforms two sets of operations generated at the same
// version against each other. Operations in a win identical-target
// conflicts. The input slices and operations are not modified.
func TransformSets(a, b []Operation, opts TransformSetsOptions) TransformSetsResult {
	opsA := append([]Operation(nil), a...)
	opsB := append([]Operation(nil), b...)

	factory := newContextFactory(opts.History, opts.UseRelations, opts.ForceWeakRemove)
	factory.setOriginalOperations(opsA, nil)
	factory.setOriginalOperations(opsB, nil)

	result := TransformSetsResult{
		OperationsA:        opsA,
		OperationsB:        opsB,
		OriginalOperations: factory.originals,
	}
	if len(opsA) == 0 || len(opsB) == 0 {
		return result
	}

	nextBaseVersionA := nextBaseVersion(opsA)
	nextBaseVersionB := nextBaseVersion(opsB)
	originalCountA, originalCountB := len(opsA), len(opsB)

	// nextIndex is the index in opsB an operation from opsA is transformed
	// by next.
	nextIndex := make(map[Operation]int, len(opsA))
	for _, op := range opsA {
		nextIndex[op] = 0
	}

	for i := 0; i < len(opsA); {
		opA := opsA[i]
		indexB := nextIndex[opA]
		if indexB == len(opsB) {
			i++
			continue
		}
		opB := opsB[indexB]

		newOpsA := transform(opA, opB, factory.context(opA, opB, true))
		newOpsB := transform(opB, opA, factory.context(opB, opA, false))
		opts.Metrics.observeTransformations(2)

		factory.updateRelation(opA, opB)
		factory.setOriginalOperations(newOpsA, opA)
		factory.setOriginalOperations(newOpsB, opB)

		for _, op := range newOpsA {
			nextIndex[op] = indexB + len(newOpsB)
		}
		opsA = splice(opsA, i, newOpsA)
		opsB = splice(opsB, indexB, newOpsB)
	}

	if opts.PadWithNoOps {
		brokenA := len(opsA) - originalCountA
		brokenB := len(opsB) - originalCountB
		opsA = padWithNoOps(opsA, brokenB-brokenA)
		opsB = padWithNoOps(opsB, brokenA-brokenB)
	}

	updateBaseVersions(opsA, nextBaseVersionB)
	updateBaseVersions(opsB, nextBaseVersionA)

	result.OperationsA = opsA
	result.OperationsB = opsB
	return result
}

// Rebase returns pending transformed so that it applies after applied.
// Both sets must have been generated at the same version. applied wins
// identical-target conflicts.
func Rebase(pending, applied []Operation) []Operation {
	return TransformSets(applied, pending, TransformSetsOptions{PadWithNoOps: true}).OperationsB
}

func nextBaseVersion(ops []Operation) int {
	last := ops[len(ops)-1].BaseVersion()
	if last == Detached {
		return Detached
	}
	return last + 1
}

// splice replaces ops[i] with replacement.
func splice(ops []Operation, i int, replacement []Operation) []Operation {
	out := make([]Operation, 0, len(ops)-1+len(replacement))
	out = append(out, ops[:i]...)
	out = append(out, replacement...)
	return append(out, ops[i+1:]...)
}

func padWithNoOps(ops []Operation, howMany int) []Operation {
	for i := 0; i < howMany; i++ {
		ops = append(ops, NewNoOperation(0))
	}
	return ops
}
