// Package cmd contains the commands of the parclust binary.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/exascience/parclust"
)

const (
	parallelFlag        = "parallel"
	maxSerialLengthFlag = "max-serial-length"
	maxChunkSizeFlag    = "max-chunk-size"
	logLevelFlag        = "log-level"
	logFormatFlag       = "log-format"
	metricsFlag         = "metrics"
)

// NewRootCommand returns the root command. Its persistent flags are shared by
// all children, which read them from CLI flags, environment variables
// prefixed with PARCLUST, or config.yaml (in that order).
func NewRootCommand() *cobra.Command {
	defaults := parclust.DefaultConfig()

	command := &cobra.Command{
		Use:   "parclust",
		Short: "Run the adaptive parallel kernels of the clustering toolkit",
		Long: `Run the adaptive parallel kernels of the clustering toolkit on generated data.

Each kernel decides, based on the configured thresholds, whether to run on a
single goroutine or to split its input across a bounded fork/join worker pool.`,
		SilenceUsage: true,
	}

	flags := command.PersistentFlags()
	flags.Bool(parallelFlag, defaults.ParallelismEnabled, "enable parallel execution above the serial threshold")
	flags.Int(maxSerialLengthFlag, defaults.MaxSerialLength, "input length at or below which kernels always run serially")
	flags.Int(maxChunkSizeFlag, 0, "largest range a parallel leaf task processes directly (0 derives it from the serial threshold and the core count)")
	flags.String(logLevelFlag, "info", "the log level to use (none, debug, info, warn, error)")
	flags.String(logFormatFlag, "text", "the log format to output logs in (text, json)")
	flags.Bool(metricsFlag, false, "print the worker pool metrics after the command completes")

	return command
}

// NewCommand returns the root command with all children added.
func NewCommand() *cobra.Command {
	root := NewRootCommand()
	root.AddCommand(NewNaNCheckCommand())
	root.AddCommand(NewMultiplyCommand())
	return root
}
