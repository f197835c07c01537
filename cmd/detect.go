package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/empathy/internal/emotion"
	"github.com/lehigh-university-libraries/empathy/internal/models"
	"github.com/lehigh-university-libraries/empathy/internal/providers"
)

func newDetectCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "detect <key>",
		Short: "Run the emotion detection service on one picture",
		Long: `Fetches one picture and prints the emotion scores the configured oracle
returns for its primary face, followed by the dominant emotion.`,
		Example: `  # Score one object in the default bucket
  empathy detect faces/smiling.jpg

  # Score a local file with Gemini
  empathy detect ./smiling.jpg --dir . --oracle gemini --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			c, err := newClients(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.close()

			ref := models.ImageRef{Key: args[0]}
			if cfg.Source == "s3" {
				ref.Bucket = cfg.Bucket
			}

			img, err := c.fetcher.Fetch(cmd.Context(), ref)
			if err != nil {
				return err
			}

			scores, err := c.oracle.DetectEmotions(cmd.Context(), img)
			if errors.Is(err, providers.ErrNoFace) {
				fmt.Fprintln(cmd.OutOrStdout(), "No face detected")
				return nil
			}
			if err != nil {
				return err
			}

			return printScores(cmd.OutOrStdout(), ref, scores, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print scores as JSON")

	return cmd
}

func printScores(w io.Writer, ref models.ImageRef, scores []emotion.Score, asJSON bool) error {
	dominant, ok := emotion.Dominant(scores)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"ref":      ref,
			"scores":   scores,
			"dominant": dominant,
			"detected": ok,
		})
	}

	fmt.Fprintf(w, "%s\n", ref)
	for _, s := range scores {
		marker := ""
		if emotion.IsButton(s.Label) {
			marker = "*"
		}
		fmt.Fprintf(w, "  %-10s %6.2f %s\n", s.Label, s.Confidence, marker)
	}
	if !ok {
		fmt.Fprintln(w, "No face detected")
		return nil
	}
	fmt.Fprintf(w, "Dominant: %s\n", dominant.Display())
	return nil
}
