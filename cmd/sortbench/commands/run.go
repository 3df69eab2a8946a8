package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/bartekus/sortbench/cmd/sortbench/internal/clierr"
	"github.com/bartekus/sortbench/internal/config"
	"github.com/bartekus/sortbench/internal/harness"
	"github.com/bartekus/sortbench/internal/registry"
)

func newRunCmd() *cobra.Command {
	var (
		referenceCmd string
		impls        []string
		configPath   string
		dataDir      string
		outDir       string
		large        bool
		huge         bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full comparison harness",
		Long: `Runs every test-matrix entry against every requested size tier.
Candidates whose commands cannot be resolved are skipped with a warning;
a missing reference implementation aborts the run before any test case.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return clierr.Wrap(clierr.CodeConfig, "loading configuration", err)
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if outDir != "" {
				cfg.OutDir = outDir
			}

			reg := registry.New(registry.Descriptor{Name: "reference", Command: referenceCmd}, logger)
			for _, pair := range impls {
				name, command, ok := strings.Cut(pair, "=")
				if !ok {
					return clierr.Newf(clierr.CodeConfig, "invalid --impl %q, want name=command", pair)
				}
				if err := reg.Add(name, command); err != nil {
					return clierr.Wrap(clierr.CodeConfig, "registering candidate", err)
				}
			}

			resolved, err := reg.Resolve()
			if err != nil {
				return clierr.Wrap(clierr.CodeConfig, "resolving implementations", err)
			}

			h, err := harness.New(cfg, resolved, harness.DefaultMatrix(), cmd.OutOrStdout(), logger)
			if err != nil {
				return clierr.Wrap(clierr.CodeConfig, "initializing harness", err)
			}

			status, err := h.Run(cmd.Context(), harness.Tiers(large, huge))
			if err != nil {
				return err
			}
			if status != 0 {
				return clierr.New(clierr.CodeFailure, "verification failures recorded")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&referenceCmd, "reference", "sort", "reference sort command")
	cmd.Flags().StringArrayVar(&impls, "impl", nil, "candidate implementation as name=command (repeatable)")
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config overlay")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "override corpus directory")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "override scratch output directory")
	cmd.Flags().BoolVar(&large, "large", false, "also run the 10M-line tier")
	cmd.Flags().BoolVar(&huge, "huge", false, "also run the 30M-line tier")

	return cmd
}
