package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"artify/internal/auth"
	"artify/internal/entity"
	"artify/internal/notify"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Long:  "Sign in with email and password. The password is read from stdin when --password is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}

			id, err := app.Auth.SignInWithPassword(cmd.Context(), strings.TrimSpace(email), password)
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return errors.New("wrong email or password")
			}
			if err != nil {
				return err
			}
			printSignedIn(cmd, app, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")

	cmd.AddCommand(newLoginGoogleCmd(app))
	cmd.AddCommand(newLoginGoogleURLCmd(app))
	return cmd
}

func newLoginGoogleCmd(app *App) *cobra.Command {
	var code, idToken string

	cmd := &cobra.Command{
		Use:         "google",
		Short:       "Sign in with Google using an authorization code or ID token",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationGoogle: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				id  *entity.Identity
				err error
			)
			switch {
			case code != "":
				id, err = app.Auth.SignInWithGoogle(cmd.Context(), code)
			case idToken != "":
				id, err = app.Auth.SignInWithIDToken(cmd.Context(), idToken)
			default:
				return errors.New("one of --code or --id-token is required; run `artify login google-url` first")
			}
			if err != nil {
				return err
			}
			printSignedIn(cmd, app, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the Google consent page")
	cmd.Flags().StringVar(&idToken, "id-token", "", "Google ID token obtained elsewhere")
	return cmd
}

func newLoginGoogleURLCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "google-url",
		Short:       "Print the Google consent page URL",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationGoogle: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := app.Auth.GoogleAuthURL(uuid.NewString())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), u)
			fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("Open the URL, then run `artify login google --code CODE`."))
			return nil
		},
	}
}

func newRegisterCmd(app *App) *cobra.Command {
	var email, password, name, photo string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Long:  "Create an email and password account. The password needs an uppercase letter, a lowercase letter and at least 6 characters. It is read from stdin when --password is omitted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				var err error
				if password, err = readPassword(cmd); err != nil {
					return err
				}
			}

			profile := auth.Profile{DisplayName: name, PhotoURL: photo}
			id, err := app.Auth.Register(cmd.Context(), strings.TrimSpace(email), password, profile)
			switch {
			case errors.Is(err, auth.ErrEmailExists):
				return errors.New("an account with this email already exists; run `artify login`")
			case id != nil && err != nil:
				app.Notices.Notify(notify.Error("Account created, profile not saved", err))
			case err != nil:
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account created for %s\n", id.Email)
			printSignedIn(cmd, app, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&photo, "photo", "", "Photo URL (http or https)")
	return cmd
}

func newProfileCmd(app *App) *cobra.Command {
	var name, photo string
	var defaultAvatar bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Change the display name or photo of your account",
		Long:  "Change the display name or photo of your account. Flags left out keep their value; --photo \"\" removes the photo.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := app.requireAccount(cmd.Context(), "artify profile")
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			if !fs.Changed("name") && !fs.Changed("photo") && !defaultAvatar {
				return errors.New("nothing to change; pass --name, --photo or --default-avatar")
			}

			p := auth.Profile{DisplayName: id.DisplayName, PhotoURL: id.PhotoURL}
			if fs.Changed("name") {
				p.DisplayName = name
			}
			switch {
			case defaultAvatar:
				p.PhotoURL = auth.DefaultAvatarURL(id.Email)
			case fs.Changed("photo"):
				p.PhotoURL = photo
			}

			updated, err := app.Auth.UpdateProfile(cmd.Context(), p)
			if err != nil {
				return err
			}
			app.Notices.Notify(notify.Success("Profile updated"))
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Name\t%s\n", updated.DisplayName)
			fmt.Fprintf(tw, "Photo\t%s\n", dash(updated.PhotoURL))
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New display name")
	cmd.Flags().StringVar(&photo, "photo", "", "New photo URL (http or https)")
	cmd.Flags().BoolVar(&defaultAvatar, "default-avatar", false, "Use the generated avatar as photo")
	cmd.MarkFlagsMutuallyExclusive("photo", "default-avatar")
	return cmd
}

func readPassword(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printSignedIn(cmd *cobra.Command, app *App, id *entity.Identity) {
	name := id.DisplayName
	if name == "" {
		name = id.Email
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s>\n", name, id.Email)
	if next, ok := app.Guard.ConsumeReturn(); ok {
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render("Continue with `"+next+"`."))
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			was := app.Session.State()
			if err := app.Auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			if was.Authenticated() {
				fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s\n", was.Email())
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			}
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			waitCtx, cancel := context.WithTimeout(cmd.Context(), sessionTimeout)
			defer cancel()
			st, err := app.Session.Wait(waitCtx)
			if err != nil {
				return fmt.Errorf("session not resolved: %w", err)
			}
			if !st.Authenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			id := st.Identity
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "Email\t%s\n", id.Email)
			fmt.Fprintf(tw, "Name\t%s\n", dash(id.DisplayName))
			fmt.Fprintf(tw, "Provider\t%s\n", id.Provider)
			fmt.Fprintf(tw, "Photo\t%s\n", dash(id.PhotoURL))
			return tw.Flush()
		},
	}
}
