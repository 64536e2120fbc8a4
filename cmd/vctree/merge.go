package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dannyswat/vctree"
)

func newMergeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <scenario.yaml>",
		Short: "Merge batches a and b into one delta, a winning conflicts, and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd.OutOrStdout(), opts, args[0])
		},
	}
}

func runMerge(out io.Writer, opts *options, path string) error {
	s, err := loadScenario(path)
	if err != nil {
		return err
	}
	if len(s.Roots) > 0 {
		return errors.New("merge works on the main root only")
	}

	deltas := make([]*vctree.Delta, 0, 2)
	for _, side := range []struct {
		author string
		raw    []map[string]any
	}{{"a", s.A}, {"b", s.B}} {
		ops, err := decodeOperations(side.raw, nil)
		if err != nil {
			return fmt.Errorf("batch %s: %w", side.author, err)
		}
		delta, err := vctree.NewDelta(s.Document, side.author, ops...)
		if err != nil {
			return err
		}
		deltas = append(deltas, delta)
	}

	merged, delta, conflicts, err := vctree.Merge(s.Document, deltas[0], deltas[1])
	if err != nil {
		return err
	}

	log := opts.logger.WithField("scenario", filepath.Base(path))
	log.WithField("operations", len(delta.Operations)).WithField("conflicts", len(conflicts)).Info("merged deltas")

	color.New(color.FgGreen).Fprintln(out, merged)
	for _, c := range conflicts {
		color.New(color.FgYellow).Fprintf(out, "conflict (%s): %s: %s\n", c.Author, c.Description, c.Operation)
	}
	return nil
}
