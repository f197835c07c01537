package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the pictures a game would play",
		Example: `  # List the default bucket
  empathy list

  # First 20 keys under a prefix
  empathy list --prefix faces/ --limit 20`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			lister, _, err := newLister(cfg, awsLoader(cmd.Context(), cfg.Region))
			if err != nil {
				return err
			}

			n := 0
			for ref, err := range lister.List(cmd.Context()) {
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", ref, ref.Size)
				n++
				if limit > 0 && n >= limit {
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Stop after this many pictures (0 lists all)")

	return cmd
}
