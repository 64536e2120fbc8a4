package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/ot"
)

var errDiverged = errors.New("documents diverged")

func newConvergeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "converge <scenario.yaml>",
		Short: "Apply batches a and b in both orders and check that the trees match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConverge(cmd.OutOrStdout(), opts, args[0])
		},
	}
}

// commitSide builds a fresh document for the scenario and commits raw on it.
func commitSide(s *Scenario, raw []map[string]any, log logrus.FieldLogger, metrics *ot.Metrics) (*ot.Sequencer, *ot.Batch, error) {
	doc, err := s.newDocument()
	if err != nil {
		return nil, nil, err
	}
	ops, err := decodeOperations(raw, doc)
	if err != nil {
		return nil, nil, err
	}
	seq := ot.NewSequencer(doc, ot.WithLogger(log), ot.WithMetrics(metrics))
	batch, err := seq.Commit(ops...)
	if err != nil {
		return nil, nil, err
	}
	return seq, batch, nil
}

func runConverge(out io.Writer, opts *options, path string) error {
	s, err := loadScenario(path)
	if err != nil {
		return err
	}

	log := opts.logger.WithField("scenario", filepath.Base(path))
	reg := prometheus.NewRegistry()
	metrics := ot.NewMetrics(reg)

	seqA, batchA, err := commitSide(s, s.A, log.WithField("side", "a"), metrics)
	if err != nil {
		return fmt.Errorf("batch a: %w", err)
	}
	seqB, batchB, err := commitSide(s, s.B, log.WithField("side", "b"), metrics)
	if err != nil {
		return fmt.Errorf("batch b: %w", err)
	}

	result := ot.TransformSets(batchA.Operations, batchB.Operations, ot.TransformSetsOptions{
		PadWithNoOps: true,
		Metrics:      metrics,
	})
	if err := seqA.ApplyBatch(ot.NewBatch(result.OperationsB...)); err != nil {
		return fmt.Errorf("transformed b on a: %w", err)
	}
	if err := seqB.ApplyBatch(ot.NewBatch(result.OperationsA...)); err != nil {
		return fmt.Errorf("transformed a on b: %w", err)
	}
	logMetrics(log, reg)

	if devtree.Hash(seqA.Document()) == devtree.Hash(seqB.Document()) {
		color.New(color.FgGreen).Fprintln(out, "converged")
		printDocument(out, seqA.Document(), opts.cfg.Dump)
		return nil
	}

	log.Warn("documents diverged")
	color.New(color.FgRed).Fprintln(out, "diverged")
	color.New(color.FgYellow).Fprintln(out, "a then b':")
	printDocument(out, seqA.Document(), opts.cfg.Dump)
	color.New(color.FgYellow).Fprintln(out, "b then a':")
	printDocument(out, seqB.Document(), opts.cfg.Dump)
	return errDiverged
}
