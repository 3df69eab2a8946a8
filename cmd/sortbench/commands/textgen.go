package commands

import (
	"github.com/spf13/cobra"

	"github.com/bartekus/sortbench/cmd/sortbench/internal/clierr"
	"github.com/bartekus/sortbench/internal/dataset"
)

func newTextgenCmd() *cobra.Command {
	var (
		classes string
		minLen  int
		maxLen  int
		total   int
		seed    int64
	)

	cmd := &cobra.Command{
		Use:   "textgen",
		Short: "Generate free-form text lines to stdout",
		Long: `Writes lines of uniformly sampled characters until the total character
budget is exhausted. The class selector combines a (ASCII letters),
d (digits), p (punctuation) and c (Cyrillic letters). A progress indicator
goes to stderr; invalid parameters exit non-zero before any output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tg, err := dataset.NewTextGen(dataset.TextGenConfig{
				Classes:    classes,
				MinLen:     minLen,
				MaxLen:     maxLen,
				TotalChars: total,
				Seed:       seed,
			})
			if err != nil {
				return clierr.Wrap(clierr.CodeConfig, "invalid generator parameters", err)
			}

			_, err = tg.WriteTo(cmd.OutOrStdout(), cmd.ErrOrStderr())
			return err
		},
	}

	cmd.Flags().StringVar(&classes, "classes", "ad", "character class selector (any of: a d p c)")
	cmd.Flags().IntVar(&minLen, "min", 1, "minimum line length")
	cmd.Flags().IntVar(&maxLen, "max", 80, "maximum line length")
	cmd.Flags().IntVar(&total, "total", 1_000_000, "total character budget (newlines excluded)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")

	return cmd
}
