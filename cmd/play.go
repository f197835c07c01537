package cmd

import (
	"context"
	"errors"
	"io"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/empathy/internal/desktop"
	"github.com/lehigh-university-libraries/empathy/internal/game"
)

func newPlayCmd(opts *rootOptions) *cobra.Command {
	var (
		ui      string
		addr    string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one round per picture in the bucket",
		Long: `Shows every picture under the configured bucket and prefix, one at a time,
with seven emotion buttons. After each guess the picture is sent to the
emotion detection service and the verdict is shown. The game ends when
every picture has been played.

With --ui web the window is served to a local browser instead of a
desktop window.`,
		Example: `  # Play the default bucket in a desktop window
  empathy play

  # Play a prefix with Gemini as the oracle in the browser
  empathy play --prefix faces/ --oracle gemini --ui web --addr :3000

  # Play local pictures, skipping rounds with no click after a minute
  empathy play --dir ./faces --guess-timeout 1m`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("ui") {
				cfg.UI = ui
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("guess-timeout") {
				cfg.GuessTimeout = timeout
			}

			c, err := newClients(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			switch cfg.UI {
			case "web":
				return serveWeb(ctx, cfg.Addr, c, cfg.GuessTimeout, cmd.OutOrStdout())
			default:
				window := desktop.New(app.NewWithID("edu.lehigh.empathy"), cancel)
				return window.Run(func() error {
					controller := game.NewController(c.lister, c.fetcher, c.oracle, window)
					controller.GuessTimeout = cfg.GuessTimeout
					return runGame(ctx, controller, cmd.OutOrStdout())
				})
			}
		},
	}

	cmd.Flags().StringVar(&ui, "ui", "desktop", "Interaction window (desktop or web)")
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8888", "Listen address for the web window")
	cmd.Flags().DurationVar(&timeout, "guess-timeout", 0, "Skip a picture when no button is clicked in time (0 waits forever)")

	return cmd
}

// runGame plays every round and prints the summary. Stopping early is not an error.
func runGame(ctx context.Context, controller *game.Controller, out io.Writer) error {
	summary, err := controller.Run(ctx)
	if summary != nil {
		summary.Print(out)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
