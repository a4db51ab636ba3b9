package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/movienight/movienight/internal/catalog"
	"github.com/movienight/movienight/internal/config"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/lists"
	"github.com/movienight/movienight/internal/log"
	"github.com/movienight/movienight/internal/service"
	"github.com/movienight/movienight/internal/store"
	"github.com/movienight/movienight/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	// Global flags
	configPath string
	ephemeral  bool
)

// app holds what every subcommand needs
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   domain.Store
	lists   *lists.Repository
	catalog *service.CatalogService
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "movienight",
	Short: "Discover movies and keep your favorites, watchlist and watched lists",
	Long: `MovieNight browses popular movies from TMDB and keeps three personal
lists on this machine: favorites, watchlist and watched.

Run without arguments to start the interactive interface. Without TMDB
credentials a small built-in demo catalog is used; run "movienight setup"
to configure an API key.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "setup", "help", "completion":
			return nil
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		current = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return nil
		}
		err := current.store.Close()
		current = nil
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(current)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/movienight/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep lists in memory only")
	rootCmd.SetVersionTemplate("movienight {{.Version}}\n")
	rootCmd.Flags().BoolP("version", "v", false, "print version")

	rootCmd.AddCommand(
		setupCmd,
		listCmd,
		addCmd,
		removeCmd,
		watchedCmd,
		searchCmd,
		settingsCmd,
		exportCmd,
		importCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newApp loads configuration and opens the store and catalog
func newApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if ephemeral {
		cfg.Storage.Driver = config.StorageMemory
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting movienight", "version", Version, "storage", cfg.Storage.Driver)

	st, err := store.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	cat, err := catalog.New(cfg, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create catalog: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		lists:   lists.NewRepository(st, logger),
		catalog: service.NewCatalogService(cat, logger),
	}, nil
}

func runTUI(a *app) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the interactive interface needs a terminal; see movienight --help for scripting commands")
	}

	startTab, ok := tui.ParseTab(a.cfg.UI.DefaultTab)
	if !ok {
		a.logger.Warn("unknown default tab, using discover", "tab", a.cfg.UI.DefaultTab)
	}

	model := tui.NewModel(a.catalog, a.lists, a.logger, startTab)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}
