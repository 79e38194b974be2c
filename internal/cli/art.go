package cli

import (
	"fmt"

	"artify/internal/artwork"
	"artify/internal/likes"

	"github.com/spf13/cobra"
)

func newArtCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "art",
		Short: "Inspect a single artwork",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show ID",
		Short: "Show an artwork and how many artworks its artist has submitted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := artwork.NewLoader(app.Client, app.Logger).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printArtwork(w, d.Artwork)
			fmt.Fprintln(w)
			if d.CountErr != nil {
				fmt.Fprintln(w, mutedStyle.Render("Artworks by this artist: unavailable"))
			} else {
				fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Artworks by this artist: %d", d.OwnerCount)))
			}
			return nil
		},
	})
	return cmd
}

func newLikeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "like ID",
		Short: "Add one like to an artwork",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := likes.NewMutator(app.Client, app.Notices, app.Logger)
			n, err := m.Like(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d likes\n", args[0], n)
			return nil
		},
	}
}
