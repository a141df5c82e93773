package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/api"
	"github.com/jask/coinfeed/internal/auth"
	"github.com/jask/coinfeed/internal/config"
	"github.com/jask/coinfeed/internal/dashboard"
	"github.com/jask/coinfeed/internal/database"
	"github.com/jask/coinfeed/internal/database/repository"
	"github.com/jask/coinfeed/internal/logging"
	"github.com/jask/coinfeed/internal/onboarding"
	"github.com/jask/coinfeed/internal/secrets"
	"github.com/jask/coinfeed/internal/session"
	"github.com/jask/coinfeed/internal/storage"
	"github.com/jask/coinfeed/internal/tui"
)

// env is everything a command needs, built once in PersistentPreRunE.
type env struct {
	cfg       config.Config
	log       *zap.Logger
	store     storage.Store
	client    *api.Client
	storeDesc string
	close     func() error
}

func (e *env) router() *session.Router { return session.NewRouter(e.store, e.log) }

type rootFlags struct {
	configPath string
	verbose    bool
	ephemeral  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		e     *env
	)
	root := &cobra.Command{
		Use:   "coinfeed",
		Short: "Personalised crypto feed in your terminal",
		Long: `coinfeed signs you in, asks what you care about once, and then shows a
dashboard of prices, news, an AI insight and a meme picked for you.

Run without arguments to start the interactive UI.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			e, err = setup(flags)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e == nil {
				return
			}
			_ = e.log.Sync()
			if err := e.close(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "close store: %v\n", err)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), e)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default ~/.config/coinfeed/config.toml)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().BoolVar(&flags.ephemeral, "ephemeral", false, "keep session state in memory only")

	get := func() *env { return e }
	root.AddCommand(
		newStatusCmd(get),
		newLogoutCmd(get),
		newGotoCmd(get),
		newPrefsCmd(get),
		newConfigCmd(&flags),
	)
	return root
}

func setup(flags rootFlags) (*env, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log, flags.verbose)
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:    cfg,
		log:    log,
		client: api.NewClient(cfg.API.URL, cfg.API.Timeout, log),
		close:  func() error { return nil },
	}
	if flags.ephemeral {
		e.store = storage.NewMemory(nil)
		e.storeDesc = "memory"
		return e, nil
	}

	db, err := database.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := database.RunMigrationsWithDB(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	sealer, err := secrets.NewSealer(secrets.DefaultPassphrase())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	e.store = storage.NewSQLite(repository.NewKVRepo(db), sealer, log)
	e.storeDesc = cfg.Storage.Path
	e.close = db.Close
	log.Debug("store ready", zap.String("path", cfg.Storage.Path))
	return e, nil
}

func runTUI(ctx context.Context, e *env) error {
	services := tui.Services{
		Auth:       auth.NewService(e.client, e.store, e.log),
		Onboarding: onboarding.NewService(e.client, e.store, e.log),
		Dashboard:  dashboard.NewLoader(e.client, e.store, e.log),
	}
	model := tui.New(ctx, e.router(), services, e.log, tui.WithClock(e.cfg.UI.ClockInterval))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		e.log.Error("tui exited", zap.Error(err))
		return err
	}
	return nil
}
