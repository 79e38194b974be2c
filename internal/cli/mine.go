package cli

import (
	"errors"
	"fmt"

	"artify/internal/gallery"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newMineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Manage the artworks you submitted",
	}
	cmd.AddCommand(newMineListCmd(app))
	cmd.AddCommand(newMineCreateCmd(app))
	cmd.AddCommand(newMineUpdateCmd(app))
	cmd.AddCommand(newMineDeleteCmd(app))
	return cmd
}

// gallery builds the owner controller, cleared on every account change.
func (app *App) gallery() *gallery.Controller {
	c := gallery.NewController(app.Client, app.Session, app.Notices, app.Logger)
	app.Session.RegisterReset(c)
	return c
}

func newMineListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your artworks, private ones included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAccount(cmd.Context(), "artify mine list"); err != nil {
				return err
			}
			snap, err := app.gallery().Load(cmd.Context())
			if err != nil {
				return err
			}
			if len(snap.Artworks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "You have not submitted any artworks.")
				return nil
			}
			printArtworks(cmd.OutOrStdout(), snap.Artworks)
			return nil
		},
	}
}

func newMineCreateCmd(app *App) *cobra.Command {
	var f gallery.Fields

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new artwork",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAccount(cmd.Context(), "artify mine create"); err != nil {
				return err
			}
			id, err := app.gallery().Create(cmd.Context(), f)
			if err != nil {
				return formError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", id)
			return nil
		},
	}
	bindFields(cmd.Flags(), &f)
	return cmd
}

func newMineUpdateCmd(app *App) *cobra.Command {
	var flags gallery.Fields

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the details of one of your artworks",
		Long:  "Change the details of one of your artworks. Fields not given keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAccount(cmd.Context(), "artify mine update "+args[0]); err != nil {
				return err
			}
			c := app.gallery()
			snap, err := c.Load(cmd.Context())
			if err != nil {
				return err
			}
			current, ok := snap.Artwork(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", gallery.ErrNotOwner, args[0])
			}

			f := mergeFields(cmd.Flags(), gallery.FieldsFrom(current), flags)
			if err := c.Update(cmd.Context(), args[0], f); err != nil {
				return formError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
			return nil
		},
	}
	bindFields(cmd.Flags(), &flags)
	return cmd
}

func newMineDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one of your artworks after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := app.requireAccount(cmd.Context(), "artify mine delete "+args[0]); err != nil {
				return err
			}
			c := app.gallery()
			if _, err := c.Load(cmd.Context()); err != nil {
				return err
			}
			tok, err := c.RequestDelete(args[0])
			if err != nil {
				return err
			}

			art, _ := c.PendingDelete(tok)
			if !yes && !confirmPrompt(cmd, fmt.Sprintf("Delete %q? This cannot be undone.", art.Title)) {
				c.CancelDelete(tok)
				fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
				return nil
			}
			if err := c.ConfirmDelete(cmd.Context(), tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func bindFields(fs *pflag.FlagSet, f *gallery.Fields) {
	fs.StringVar(&f.Title, "title", "", "Title")
	fs.StringVar(&f.Category, "category", "", "Category")
	fs.StringVar(&f.Medium, "medium", "", "Medium, e.g. Oil on canvas")
	fs.StringVar(&f.Description, "description", "", "Description")
	fs.StringVar(&f.Dimensions, "dimensions", "", "Dimensions, e.g. 50x70 cm")
	fs.StringVar(&f.Price, "price", "", "Price")
	fs.StringVar(&f.ImageURL, "image-url", "", "Image URL")
	fs.StringVar(&f.Visibility, "visibility", "", "Public or Private (default Public)")
}

// mergeFields overlays the flags the user actually passed on base.
func mergeFields(fs *pflag.FlagSet, base, flags gallery.Fields) gallery.Fields {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("title", &base.Title, flags.Title)
	set("category", &base.Category, flags.Category)
	set("medium", &base.Medium, flags.Medium)
	set("description", &base.Description, flags.Description)
	set("dimensions", &base.Dimensions, flags.Dimensions)
	set("price", &base.Price, flags.Price)
	set("image-url", &base.ImageURL, flags.ImageURL)
	set("visibility", &base.Visibility, flags.Visibility)
	return base
}

// formError lists every invalid field on its own line.
func formError(err error) error {
	var verrs gallery.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msg := "invalid artwork:"
	for _, e := range verrs {
		msg += "\n  --" + flagName(e.Field) + ": " + e.Message
	}
	return errors.New(msg)
}

func flagName(field string) string {
	if field == "imageURL" {
		return "image-url"
	}
	return field
}
