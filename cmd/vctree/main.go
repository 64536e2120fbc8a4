// Command vctree replays operation scenarios on collaborative trees and
// checks that concurrent batches converge.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dannyswat/vctree/internal/devtree"
	"github.com/dannyswat/vctree/internal/logging"
	"github.com/dannyswat/vctree/model"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are shared by all subcommands.
type options struct {
	configPath string
	logLevel   string
	logDir     string
	dump       bool

	cfg    Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "vctree",
		Short:        "Replay and cross-check operations on collaborative trees",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "vctree.yaml", "Path to the YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flags.StringVar(&opts.logDir, "log-dir", "", "Directory for log files (default ~/.vctree)")
	flags.BoolVar(&opts.dump, "dump", false, "Print a full dump of the resulting documents")

	root.AddCommand(newApplyCmd(opts), newConvergeCmd(opts), newMergeCmd(opts))
	return root
}

// setup loads the config file, applies flag overrides and opens the logger.
func (o *options) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	cfg, err := loadConfig(o.configPath, flags.Changed("config"))
	if err != nil {
		return err
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-dir") {
		cfg.Log.Dir = o.logDir
	}
	if flags.Changed("dump") {
		cfg.Dump = o.dump
	}
	o.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	o.logger = logger
	return nil
}

func (o *options) close() error {
	if o.logger == nil {
		return nil
	}
	err := o.logger.Close()
	o.logger = nil
	return err
}

func printDocument(out io.Writer, doc *model.Document, dump bool) {
	for _, root := range doc.ContentRootNames() {
		fmt.Fprintf(out, "%s: %s\n", root, devtree.StringifyRoot(doc, root))
	}
	for _, name := range doc.Markers().Names() {
		m, _ := doc.Markers().Get(name)
		fmt.Fprintf(out, "marker %s: %s\n", name, m.Range)
	}
	if dump {
		fmt.Fprintln(out, doc.Dump())
	}
}

// logMetrics writes the current value of every gathered counter and gauge.
func logMetrics(log logrus.FieldLogger, reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		log.WithError(err).Warn("gather metrics")
		return
	}
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
		log.WithField("metric", mf.GetName()).WithField("value", total).Debug("metric")
	}
}
