package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/movienight/movienight/internal/config"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/lists"
	"github.com/movienight/movienight/internal/store"
)

const commandTimeout = 30 * time.Second

var (
	addTitle     string
	darkMode     string
	exportFormat string
	exportRaw    bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure the TMDB API key",
	Long: `Prompts for a TMDB API key (v3) and writes it to the config file.

Keys are created at https://www.themoviedb.org/settings/api.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

var listCmd = &cobra.Command{
	Use:   "list <favorites|watchlist|watched>",
	Short: "Print a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := lists.ParseListKey(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		movies, err := current.lists.GetList(ctx, key)
		if err != nil {
			return err
		}
		if len(movies) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is empty\n", key.Label())
			return nil
		}
		printRecords(cmd.OutOrStdout(), movies)
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <list> <id>",
	Short: "Add a movie to a list",
	Long: `Adds a movie to a list by its TMDB id. Without --title the movie is
looked up in the catalog first. Adding a movie that is already on the list
changes nothing.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := lists.ParseListKey(args[0])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		movie, err := resolveMovie(ctx, args[1], addTitle)
		if err != nil {
			return err
		}
		added, err := current.lists.AddToList(ctx, key, movie)
		if err != nil {
			return err
		}
		if !added {
			fmt.Fprintf(cmd.OutOrStdout(), "%q is already in %s\n", movie.Title, key.Label())
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %q to %s\n", movie.Title, key.Label())
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <list> <id>",
	Short: "Remove a movie from a list",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := lists.ParseListKey(args[0])
		if err != nil {
			return err
		}
		id, err := domain.ParseMovieID(args[1])
		if err != nil {
			return err
		}
		ctx, cancel := commandContext(cmd)
		defer cancel()

		removed, err := current.lists.RemoveFromList(ctx, key, id)
		if err != nil {
			return err
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s is not in %s\n", id, key.Label())
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed %s from %s\n", id, key.Label())
		return nil
	},
}

var watchedCmd = &cobra.Command{
	Use:   "watched <id>",
	Short: "Mark a movie as watched and take it off the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		movie, err := resolveMovie(ctx, args[0], "")
		if err != nil {
			return err
		}
		res, err := current.lists.MarkWatched(ctx, movie)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Added {
			fmt.Fprintf(out, "✓ Marked %q as watched\n", movie.Title)
		} else {
			fmt.Fprintf(out, "%q was already watched\n", movie.Title)
		}
		if res.RemovedFromWatchlist {
			fmt.Fprintln(out, "✓ Removed from watchlist")
		}
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		query := strings.Join(args, " ")
		results, err := current.catalog.Search(ctx, query)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No results for %q\n", query)
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tYEAR\tRATING")
		for i := range results {
			m := &results[i]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.GetID(), m.GetTitle(), formatYear(m.GetYear()), formatRating(m.GetRating()))
		}
		return w.Flush()
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		settings, err := current.lists.GetUserSettings(ctx)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("dark-mode") {
			switch strings.ToLower(darkMode) {
			case "true", "on", "yes":
				settings.DarkMode = true
			case "false", "off", "no":
				settings.DarkMode = false
			default:
				return fmt.Errorf("invalid --dark-mode value %q", darkMode)
			}
			if err := current.lists.SaveUserSettings(ctx, settings); err != nil {
				return err
			}
		}

		stats, err := current.lists.Stats(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Dark mode\t%s\n", onOff(settings.DarkMode))
		fmt.Fprintf(w, "Favorites\t%d\n", stats.Favorites)
		fmt.Fprintf(w, "Watchlist\t%d\n", stats.Watchlist)
		fmt.Fprintf(w, "Watched\t%d\n", stats.Watched)
		fmt.Fprintf(w, "Storage\t%s\n", current.cfg.Storage.Driver)
		if f := current.cfg.File(); f != "" {
			fmt.Fprintf(w, "Config\t%s\n", f)
		}
		return w.Flush()
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every list and the settings to stdout",
	Long: `Writes every list and the settings to stdout as JSON, YAML or TOML.

With --raw the store is dumped key by key, in the layout "movienight import"
also accepts.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if exportRaw {
			dump, err := store.Dump(ctx, current.store)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(dump, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		}

		doc, err := current.lists.Export(ctx)
		if err != nil {
			return err
		}
		data, err := doc.Encode(exportFormat)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Merge an exported JSON file into the lists",
	Long: `Merges an export (or a raw storage dump) into the lists. Movies already
on a list are kept as they are. Use "-" to read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		doc, err := lists.ParseExport(data)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := current.lists.Import(ctx, doc)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, key := range lists.ListKeys() {
			fmt.Fprintf(out, "%-10s +%d\n", key.Label(), res.Added[key])
		}
		if res.Skipped > 0 {
			fmt.Fprintf(out, "%d already present or invalid\n", res.Skipped)
		}
		if res.SettingsReplaced {
			fmt.Fprintln(out, "Settings replaced")
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addTitle, "title", "", "movie title (skips the catalog lookup)")
	settingsCmd.Flags().StringVar(&darkMode, "dark-mode", "", "turn dark mode on or off (true|false)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", lists.FormatJSON, "output format: json, yaml or toml")
	exportCmd.Flags().BoolVar(&exportRaw, "raw", false, "dump the store key by key")
}

// runSetup prompts for the API key and saves the config
func runSetup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Welcome to MovieNight!")
	fmt.Fprintln(out)

	var apiKey string
	for apiKey == "" {
		fmt.Fprint(out, "TMDB API key: ")
		apiKey, err = readSecret()
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if apiKey == "" {
			fmt.Fprintln(out, "API key cannot be empty. Please try again.")
		}
	}
	cfg.TMDB.APIKey = apiKey

	path := configPath
	if path == "" {
		path = cfg.File()
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "✓ Configuration saved to %s\n", cfg.File())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run movienight to start the application.")
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret() (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		return strings.TrimSpace(string(b)), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// resolveMovie builds the record to store for id, from the catalog unless a
// title is given
func resolveMovie(ctx context.Context, rawID, title string) (domain.MovieRecord, error) {
	id, err := domain.ParseMovieID(rawID)
	if err != nil {
		return domain.MovieRecord{}, err
	}
	if title != "" {
		return domain.MovieRecord{ID: id, Title: title}, nil
	}

	details, err := current.catalog.Details(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.MovieRecord{}, fmt.Errorf("movie %s not found in the catalog; pass --title to add it anyway", id)
		}
		return domain.MovieRecord{}, err
	}
	return current.catalog.RecordFromDetails(details), nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, commandTimeout)
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func printRecords(w io.Writer, movies []domain.MovieRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tYEAR\tRATING\tADDED")
	for i := range movies {
		m := &movies[i]
		added := ""
		if !m.AddedAt.IsZero() {
			added = m.AddedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.GetID(), m.GetTitle(), formatYear(m.GetYear()), formatRating(m.GetRating()), added)
	}
	tw.Flush()
}

func formatRating(r float64) string {
	if r <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f", r)
}

func formatYear(y int) string {
	if y == 0 {
		return "-"
	}
	return fmt.Sprint(y)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
