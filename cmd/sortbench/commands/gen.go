package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bartekus/sortbench/cmd/sortbench/internal/clierr"
	"github.com/bartekus/sortbench/internal/config"
	"github.com/bartekus/sortbench/internal/dataset"
)

func newGenCmd() *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "gen <category> <count> <size-suffix>",
		Short: "Materialize one corpus file",
		Long: `Generates a corpus for the given category (numeric, string, float,
mixed, duplicate) with the given line count. If the file already exists it
is reused untouched.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := dataset.Category(args[0])
			if !category.Valid() {
				return clierr.Newf(clierr.CodeConfig, "unknown category %q", args[0])
			}
			count, err := strconv.Atoi(args[1])
			if err != nil || count <= 0 {
				return clierr.Newf(clierr.CodeConfig, "invalid line count %q", args[1])
			}

			if dataDir == "" {
				dataDir = config.Default().DataDir
			}
			g := dataset.NewGenerator(dataDir, logger)
			path, err := g.Generate(category, count, args[2])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "corpus directory")
	return cmd
}
