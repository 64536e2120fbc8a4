package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dannyswat/vctree/ot"
)

func newApplyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <scenario.yaml>",
		Short: "Commit the scenario's operations and print the resulting tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd.OutOrStdout(), opts, args[0])
		},
	}
}

func runApply(out io.Writer, opts *options, path string) error {
	s, err := loadScenario(path)
	if err != nil {
		return err
	}
	doc, err := s.newDocument()
	if err != nil {
		return err
	}
	ops, err := decodeOperations(s.Operations, doc)
	if err != nil {
		return err
	}

	log := opts.logger.WithField("scenario", filepath.Base(path))
	reg := prometheus.NewRegistry()
	seq := ot.NewSequencer(doc, ot.WithLogger(log), ot.WithMetrics(ot.NewMetrics(reg)))

	batch, err := seq.Commit(ops...)
	if err != nil {
		return err
	}
	if s.Undo {
		if _, err := seq.Undo(batch); err != nil {
			return fmt.Errorf("undo: %w", err)
		}
	}
	logMetrics(log, reg)

	fmt.Fprintf(out, "version %d\n", seq.Version())
	printDocument(out, doc, opts.cfg.Dump)
	return nil
}
