// Package cli is the artify command line. Each command mounts the stores it
// needs, drives one operation and prints the resulting snapshot.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"artify/internal/access"
	"artify/internal/auth"
	"artify/internal/config"
	"artify/internal/entity"
	"artify/internal/logging"
	"artify/internal/notify"
	"artify/internal/platform/artifyapi"
	"artify/internal/session"
	"artify/internal/store"

	"github.com/spf13/cobra"
)

// annotationGoogle marks commands that need the federated provider. Building
// it performs OIDC discovery, so other commands skip it.
const annotationGoogle = "artify.google"

var errSignInRequired = errors.New("sign in required")

type App struct {
	APIURL   string
	StateDB  string
	LogLevel string

	Config   config.Config
	Logger   *slog.Logger
	Client   *artifyapi.Client
	Sessions *store.SessionSQLite
	Auth     *auth.Service
	Session  *session.Store
	Guard    *access.Guard
	Notices  *notify.Hub

	closers []func()
}

// Execute runs the command line and releases whatever setup opened, even
// when the command fails.
func Execute(ctx context.Context, args []string) error {
	app := &App{}
	cmd := newRootCmd(app)
	cmd.SetArgs(args)
	defer app.close()
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "artify",
		Short:         "Browse, like and collect artwork from the artify gallery",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  artify browse --page 2 --category Urban
  artify login --email me@example.com
  artify favorites add 665f1c2e9b1d4a0012345678
  artify mine create --title "Dusk" --description "Oil study" --image-url https://...`,
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		app.close()
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", "", "Artify API base URL (overrides ARTIFY_API_URL)")
	cmd.PersistentFlags().StringVar(&app.StateDB, "state-db", "", "Path of the local session database (overrides ARTIFY_STATE_DB)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")

	cmd.AddCommand(newBrowseCmd(app))
	cmd.AddCommand(newArtCmd(app))
	cmd.AddCommand(newLikeCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newProfileCmd(app))
	cmd.AddCommand(newFavoritesCmd(app))
	cmd.AddCommand(newMineCmd(app))
	cmd.AddCommand(newStatsCmd(app))

	return cmd
}

func (app *App) setup(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if app.APIURL != "" {
		cfg.APIURL = app.APIURL
	}
	if app.StateDB != "" {
		cfg.StateDB = app.StateDB
	}
	if app.LogLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(app.LogLevel)); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	app.Config = cfg

	app.Logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	app.Notices = notify.NewHub(app.Logger)
	app.closers = append(app.closers, app.Notices.Subscribe(func(n notify.Notice) {
		printNotice(cmd.ErrOrStderr(), n)
	}))

	app.Client = artifyapi.NewClient(artifyapi.Config{
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
		RPS:     cfg.RPS,
	}, app.Logger)

	sessions, err := store.OpenSessionSQLite(ctx, cfg.StateDB)
	if err != nil {
		return err
	}
	app.Sessions = sessions
	app.closers = append(app.closers, func() {
		if err := sessions.Close(); err != nil {
			app.Logger.Warn("close session store", "error", err)
		}
	})
	if err := sessions.CleanupExpired(ctx); err != nil {
		app.Logger.Warn("cleanup expired sessions", "error", err)
	}

	var password auth.PasswordSigner
	if cfg.IdentityAPIKey != "" {
		password = auth.NewPasswordClient(cfg.IdentityURL, cfg.IdentityAPIKey, cfg.HTTPTimeout, app.Logger)
	}
	var google auth.FederatedSigner
	if cmd.Annotations[annotationGoogle] == "true" && cfg.GoogleEnabled() {
		g, err := auth.NewGoogle(ctx, auth.GoogleConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Issuer:       cfg.GoogleIssuer,
		})
		if err != nil {
			return err
		}
		google = g
	}
	app.Auth = auth.NewService(sessions, password, google, app.Logger)

	app.Session = session.NewStore(app.Logger)
	app.closers = append(app.closers, app.Session.Bind(app.Auth))
	app.Guard = access.NewGuard("artify login")

	if _, err := app.Auth.Restore(ctx); err != nil {
		app.Logger.Warn("restore session", "error", err)
	}
	return nil
}

const sessionTimeout = 5 * time.Second

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}

// requireAccount admits the command only for a signed-in account. origin is
// the command line to come back to after signing in.
func (app *App) requireAccount(ctx context.Context, origin string) (*entity.Identity, error) {
	waitCtx, cancel := context.WithTimeout(ctx, sessionTimeout)
	defer cancel()

	// Mount renders Wait until the session resolves; the first settled
	// decision wins.
	decided := make(chan access.Decision, 1)
	unmount := app.Guard.Mount(app.Session, origin, func(d access.Decision) {
		if d.Kind == access.Wait {
			return
		}
		select {
		case decided <- d:
		default:
		}
	})
	defer unmount()

	select {
	case d := <-decided:
		if d.Kind == access.Admit {
			if id := app.Session.State().Identity; id != nil {
				return id, nil
			}
		}
		return nil, fmt.Errorf("%w: run `artify login`, then `%s`", errSignInRequired, origin)
	case <-waitCtx.Done():
		return nil, fmt.Errorf("session not resolved: %w", waitCtx.Err())
	}
}
