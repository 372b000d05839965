package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/joshsymonds/recentmail/internal/auth"
	"github.com/joshsymonds/recentmail/internal/config"
	"github.com/joshsymonds/recentmail/internal/credstore"
	"github.com/joshsymonds/recentmail/internal/runtime"
	"github.com/joshsymonds/recentmail/internal/telemetry"
)

type rootOptions struct {
	configPath  string
	credentials string
	tokenPath   string
	tokenKey    string
	tokenStore  string
	logLevel    string
	telemetry   bool

	// gmailOptions are appended when building the Gmail service.
	gmailOptions []option.ClientOption
}

func newRootCmd(version string) *cobra.Command {
	return buildRootCmd(version, &rootOptions{})
}

func buildRootCmd(version string, opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recentmail",
		Short: "Fetch recent Gmail messages for a label and query",
		Long: `recentmail authorizes against Gmail with OAuth2 (read-only), then lists and
fetches every message matching a search query under one label.

The first run prints an authorization URL and waits for the code; the
resulting token is stored and reused on later runs.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate(`{{printf "recentmail version %s\n" .Version}}`)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&opts.credentials, "credentials", "", "OAuth client secret JSON (overrides config)")
	pf.StringVar(&opts.tokenPath, "token", "", "token file, or database for --token-store=sqlite (overrides config)")
	pf.StringVar(&opts.tokenKey, "token-key", "", "token row key for the sqlite store (overrides config)")
	pf.StringVar(&opts.tokenStore, "token-store", "", "token store: file or sqlite (overrides config)")
	pf.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	pf.BoolVar(&opts.telemetry, "telemetry", false, "export traces and metrics to stderr")

	cmd.AddCommand(newAuthorizeCmd(opts))
	cmd.AddCommand(newFetchCmd(opts))
	cmd.AddCommand(newLabelsCmd(opts))
	cmd.AddCommand(newVersionCmd(version))
	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "recentmail version %s\n", version)
			return err
		},
	}
}

// loadConfig applies flag overrides on top of the config file or defaults.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("credentials") {
		cfg.Credentials = o.credentials
	}
	if flags.Changed("token") {
		cfg.Auth.TokenPath = o.tokenPath
	}
	if flags.Changed("token-key") {
		cfg.Auth.TokenKey = o.tokenKey
	}
	if flags.Changed("token-store") {
		cfg.Auth.TokenStore = o.tokenStore
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("telemetry") {
		cfg.Telemetry.Enabled = o.telemetry
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	store    credstore.Store
	closers  []func() error
	shutdown telemetry.ShutdownFunc
}

func (o *rootOptions) setup(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	level, err := runtime.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: runtime.NewLogger(cmd.ErrOrStderr(), level)}

	a.shutdown, err = telemetry.Setup(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Writer:         cmd.ErrOrStderr(),
		ServiceVersion: cmd.Root().Version,
	})
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}

	switch cfg.Auth.TokenStore {
	case config.StoreSQLite:
		db, err := credstore.OpenSQLite(ctx, cfg.Auth.TokenPath)
		if err != nil {
			_ = a.close(ctx)
			return nil, err
		}
		a.store = db
		a.closers = append(a.closers, db.Close)
	default:
		a.store = credstore.NewFileStore()
	}
	return a, nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	if a.shutdown != nil {
		errs = append(errs, a.shutdown(ctx))
	}
	return errors.Join(errs...)
}

func (a *app) authorize(ctx context.Context, cmd *cobra.Command) (*auth.Session, error) {
	creds, err := auth.LoadCredentials(a.cfg.Credentials)
	if err != nil {
		return nil, err
	}
	prompter := auth.ConsolePrompter{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	authorizer := auth.NewAuthorizer(a.store, prompter, a.log)
	if len(a.cfg.Auth.Scopes) > 0 {
		authorizer.Scopes = a.cfg.Auth.Scopes
	}
	if !a.cfg.Auth.PromptOnCorruptToken() {
		authorizer.Policy = auth.FallbackAbsentOnly
	}
	session, err := authorizer.Authorize(ctx, creds, a.cfg.Auth.TokenKeyFor())
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	return session, nil
}
