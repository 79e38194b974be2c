package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"artify/internal/stats"

	"github.com/spf13/cobra"
)

func newStatsCmd(app *App) *cobra.Command {
	var (
		watch    bool
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show site-wide counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			every := app.Config.StatsInterval
			if cmd.Flags().Changed("interval") {
				every = interval
			}
			p := stats.NewPoller(app.Client, every, app.Logger)

			if !watch {
				snap, err := p.Refresh(cmd.Context())
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), snap)
				return nil
			}

			unsubscribe := p.Subscribe(func(snap stats.Snapshot) {
				if snap.Refreshing {
					return
				}
				printStats(cmd.OutOrStdout(), snap)
			})
			defer unsubscribe()

			err := p.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep refreshing until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", stats.DefaultInterval, "Refresh interval with --watch (overrides ARTIFY_STATS_INTERVAL)")
	return cmd
}

func printStats(w io.Writer, snap stats.Snapshot) {
	if snap.Err != nil && snap.UpdatedAt.IsZero() {
		fmt.Fprintln(w, errorStyle.Render("Statistics unavailable:"), snap.Err)
		return
	}
	line := fmt.Sprintf("Artworks: %d  Favorites: %d", snap.Stats.AllArts, snap.Stats.Favourite)
	stamp := "updated " + snap.UpdatedAt.Local().Format(time.TimeOnly)
	if snap.Err != nil {
		stamp += ", last refresh failed"
	}
	fmt.Fprintln(w, line, mutedStyle.Render("("+stamp+")"))
}
