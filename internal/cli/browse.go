package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"artify/internal/catalog"
	"artify/internal/entity"
	"artify/internal/likes"

	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	var (
		page       int
		search     string
		categories []string
		like       []string
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "List one page of public artworks",
		Long: "List one page of public artworks. --search and --category narrow the loaded page only;\n" +
			"categories: " + strings.Join(entity.Categories, ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := catalog.NewStore(app.Client, app.Notices, app.Logger)
			defer s.Close()

			snap, err := s.LoadPage(cmd.Context(), page)
			if err != nil {
				if snap.Status == catalog.StatusFailed {
					printCatalog(cmd.OutOrStdout(), snap)
				}
				return err
			}
			var likeErr error
			if len(like) > 0 {
				m := likes.NewMutator(app.Client, app.Notices, app.Logger)
				for _, a := range snap.Artworks {
					m.Seed(a.ID, a.LikeCount)
				}
				defer m.OnChange(s.ApplyLikeCount)()

				errs := make([]error, 0, len(like))
				for _, id := range like {
					if _, err := m.Like(cmd.Context(), id); err != nil {
						errs = append(errs, err)
					}
				}
				likeErr = errors.Join(errs...)
				snap = s.Snapshot()
			}
			if search != "" || len(categories) > 0 {
				snap = s.ApplyFilter(search, categories)
			}
			printCatalog(cmd.OutOrStdout(), snap)
			return likeErr
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number, starting at 1")
	cmd.Flags().StringVar(&search, "search", "", "Show only titles containing this text")
	cmd.Flags().StringSliceVar(&categories, "category", nil, "Show only these categories (repeatable)")
	cmd.Flags().StringSliceVar(&like, "like", nil, "Like these artworks before listing (repeatable)")
	return cmd
}

func printCatalog(w io.Writer, snap catalog.Snapshot) {
	switch {
	case snap.Status == catalog.StatusFailed:
		fmt.Fprintln(w, errorStyle.Render("Could not load artworks."), "Run the command again to retry.")
		return
	case snap.NoMatches() && snap.Filter.Active():
		fmt.Fprintln(w, "No artworks match the current filter.")
	case len(snap.Visible) == 0:
		fmt.Fprintln(w, "No artworks yet.")
	default:
		printArtworks(w, snap.Visible)
	}

	p := snap.Pagination()
	nav := make([]string, 0, 2)
	if !p.PrevDisabled() {
		nav = append(nav, fmt.Sprintf("--page %d for previous", p.Prev()))
	}
	if !p.NextDisabled() {
		nav = append(nav, fmt.Sprintf("--page %d for next", p.Next()))
	}
	line := fmt.Sprintf("Page %d of %d", p.Current, p.Total)
	if len(nav) > 0 {
		line += "  (" + strings.Join(nav, ", ") + ")"
	}
	fmt.Fprintln(w, mutedStyle.Render(line))
}
