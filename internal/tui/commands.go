package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/lists"
	"github.com/movienight/movienight/internal/screen"
	"github.com/movienight/movienight/internal/service"
)

// Timeouts for async operations
const (
	storageTimeout = 10 * time.Second
	networkTimeout = 30 * time.Second
)

// Command factories for async operations

// ActivateScreenCmd reads every list a tab observes. The synchronizer's
// mirrors are only touched when the result is applied in Update.
func ActivateScreenCmd(tab Tab, sc *screen.Synchronizer) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		return ScreenLoadedMsg{Tab: tab, Snapshot: sc.Fetch(ctx)}
	}
}

// LoadPopularCmd loads one page of popular movies
func LoadPopularCmd(svc *service.CatalogService, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
		defer cancel()

		movies, err := svc.Popular(ctx, page)
		return PopularLoadedMsg{Movies: movies, Page: page, Append: page > 1, Err: err}
	}
}

// ReloadPopularCmd drops cached catalog responses and reloads pages 1..pages
func ReloadPopularCmd(svc *service.CatalogService, pages int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
		defer cancel()

		svc.Invalidate()
		movies, err := svc.PopularPages(ctx, pages, nil)
		return PopularLoadedMsg{Movies: movies, Page: pages, Err: err}
	}
}

// SearchCmd searches the remote catalog
func SearchCmd(svc *service.CatalogService, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
		defer cancel()

		results, err := svc.Search(ctx, query)
		return SearchResultsMsg{Query: query, Results: results, Err: err}
	}
}

// LoadDetailsCmd loads catalog details for a movie
func LoadDetailsCmd(svc *service.CatalogService, id domain.MovieID) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), networkTimeout)
		defer cancel()

		details, err := svc.Details(ctx, id)
		return DetailsLoadedMsg{ID: id, Details: details, Err: err}
	}
}

// LoadDetailStatusCmd reads which lists the detail movie is on
func LoadDetailStatusCmd(d *screen.DetailStatus) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		status, err := d.Fetch(ctx)
		return DetailStatusMsg{Detail: d, Status: status, Err: err}
	}
}

// CommitChangesCmd performs the durable writes for optimistic list changes
func CommitChangesCmd(tab Tab, repo screen.ListRepository, changes []screen.Change) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		errs := screen.CommitAll(ctx, repo, changes)
		return ChangesCommittedMsg{Tab: tab, Changes: changes, Errs: errs}
	}
}

// CommitDetailCmd performs the durable writes for a detail toggle
func CommitDetailCmd(d *screen.DetailStatus, key domain.ListKey, changes []screen.Change) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		errs := d.Commit(ctx, changes)
		return DetailCommittedMsg{Detail: d, Key: key, Changes: changes, Errs: errs}
	}
}

// LoadThemeCmd reads the saved dark-mode preference
func LoadThemeCmd(theme *screen.ThemeController) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		return ThemeLoadedMsg{Err: theme.Load(ctx)}
	}
}

// CommitThemeCmd persists a dark-mode toggle
func CommitThemeCmd(theme *screen.ThemeController, dark bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		return ThemeCommittedMsg{Dark: dark, Err: theme.Commit(ctx, dark)}
	}
}

// LoadStatsCmd counts the lists for the profile tab
func LoadStatsCmd(repo *lists.Repository) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		stats, err := repo.Stats(ctx)
		return StatsLoadedMsg{Stats: stats, Err: err}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
