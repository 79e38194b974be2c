package cli

import (
	"fmt"
	"io"

	"artify/internal/favorites"

	"github.com/spf13/cobra"
)

func newFavoritesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage your favorite artworks",
	}
	cmd.AddCommand(newFavoritesListCmd(app))
	cmd.AddCommand(newFavoritesAddCmd(app))
	cmd.AddCommand(newFavoritesRemoveCmd(app))
	return cmd
}

func newFavoritesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.requireAccount(cmd.Context(), "artify favorites list")
			if err != nil {
				return err
			}
			s := app.favorites()
			snap, err := s.Load(cmd.Context(), id.Email)
			if err != nil {
				return err
			}
			printFavorites(cmd.OutOrStdout(), snap)
			return nil
		},
	}
}

func newFavoritesAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add ARTWORK_ID",
		Short: "Add an artwork to your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.requireAccount(cmd.Context(), "artify favorites add "+args[0])
			if err != nil {
				return err
			}
			art, err := app.Client.GetArtwork(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			outcome, err := app.favorites().Add(cmd.Context(), art, id.Email)
			if err != nil {
				return err
			}
			switch outcome {
			case favorites.OutcomeAlreadyAdded:
				fmt.Fprintf(cmd.OutOrStdout(), "%q is already in your favorites\n", art.Title)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q to your favorites\n", art.Title)
			}
			return nil
		},
	}
}

func newFavoritesRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "remove FAVORITE_ID",
		Short: "Remove a favorite after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.requireAccount(cmd.Context(), "artify favorites remove "+args[0])
			if err != nil {
				return err
			}
			s := app.favorites()
			if _, err := s.Load(cmd.Context(), id.Email); err != nil {
				return err
			}

			tok, err := s.RequestRemove(args[0])
			if err != nil {
				return err
			}
			rec, _ := s.PendingRemoval(tok)
			title := rec.Title
			if title == "" {
				title = rec.ID
			}
			if !yes && !confirmPrompt(cmd, fmt.Sprintf("Remove %q from your favorites?", title)) {
				s.CancelRemove(tok)
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if err := s.ConfirmRemove(cmd.Context(), tok, id.Email); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", title)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

// favorites builds a store cleared on every account change.
func (app *App) favorites() *favorites.Store {
	s := favorites.NewStore(app.Client, app.Notices, app.Logger)
	app.Session.RegisterReset(s)
	return s
}

func printFavorites(w io.Writer, snap favorites.Snapshot) {
	if len(snap.Records) == 0 {
		fmt.Fprintln(w, "No favorites yet.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tARTWORK\tTITLE\tARTIST\tPRICE\tADDED")
	for _, r := range snap.Records {
		added := "-"
		if !r.AddedAt.IsZero() {
			added = r.AddedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.ArtworkID, r.Title, dash(r.ArtistName), formatPrice(r.Price), added)
	}
	_ = tw.Flush()
}
