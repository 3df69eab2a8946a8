// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands wires the sortbench CLI: a correctness and performance
// comparison harness for line-sorting utilities.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  *zap.Logger
)

// NewRootCmd constructs the sortbench root Cobra command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("SORTBENCH_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:   "sortbench",
		Short: "Compare sorting implementations for correctness and speed",
		Long: `sortbench generates reproducible test corpora, runs a reference sort and
any number of candidate implementations against the same inputs, verifies
output equivalence, and reports timings with relative speedups.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := zap.NewProductionConfig()
			if verbose {
				cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = cfg.Build()
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of sortbench",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sortbench version %s\n", version)
		},
	})

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newGenCmd())
	cmd.AddCommand(newTextgenCmd())

	return cmd
}
