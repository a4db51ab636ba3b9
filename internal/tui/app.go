package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/lists"
	"github.com/movienight/movienight/internal/screen"
	"github.com/movienight/movienight/internal/service"
	"github.com/movienight/movienight/internal/tui/components"
	"github.com/movienight/movienight/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateDetail
	StateHelp
)

// Tab is one of the top-level screens
type Tab int

const (
	TabDiscover Tab = iota
	TabFavorites
	TabWatchlist
	TabProfile
)

var tabNames = []string{"Discover", "Favorites", "Watchlist", "Profile"}

func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "unknown"
	}
	return tabNames[t]
}

// ParseTab accepts a tab name, case-insensitively
func ParseTab(s string) (Tab, bool) {
	for i, name := range tabNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Tab(i), true
		}
	}
	return TabDiscover, false
}

// listTabs are the tabs that show a movie list
var listTabs = []Tab{TabDiscover, TabFavorites, TabWatchlist}

// removeList is the list x removes from on each tab
var removeList = map[Tab]domain.ListKey{
	TabFavorites: domain.ListFavorites,
	TabWatchlist: domain.ListWatchlist,
}

const tickInterval = 100 * time.Millisecond

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool
	Tab   Tab

	// Services
	Catalog *service.CatalogService
	Lists   *lists.Repository
	logger  *slog.Logger

	// Screen state
	screens map[Tab]*screen.Synchronizer
	Theme   *screen.ThemeController
	Detail  *screen.DetailStatus // nil unless the detail view is open

	// optimistic commits in flight per tab, and tabs whose reload was
	// dropped while they were pending
	pending map[Tab]int
	stale   map[Tab]bool

	// UI Components
	Sidebar     components.Sidebar
	Columns     map[Tab]*components.ListColumn
	Inspector   components.Inspector // preview of the selected row
	DetailView  components.Inspector
	SearchModal components.InputModal

	// Discover data
	popular         []domain.MovieSummary
	popularPage     int
	searchQuery     string
	searchResults   []domain.MovieSummary
	discoverLoading bool

	// Profile data
	stats       domain.Stats
	statsLoaded bool

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg      string
	StatusIsErr    bool
	SpinnerFrame   int
	helpFromDetail bool
}

// NewModel creates a new application model
func NewModel(
	catalogSvc *service.CatalogService,
	repo *lists.Repository,
	logger *slog.Logger,
	startTab Tab,
) Model {
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		State:   StateBrowsing,
		Tab:     startTab,
		Catalog: catalogSvc,
		Lists:   repo,
		logger:  logger,
		screens: map[Tab]*screen.Synchronizer{
			TabDiscover:  screen.NewSynchronizer(repo, logger, domain.ListFavorites, domain.ListWatched),
			TabFavorites: screen.NewSynchronizer(repo, logger, domain.ListFavorites),
			TabWatchlist: screen.NewSynchronizer(repo, logger, domain.ListWatchlist, domain.ListWatched),
		},
		pending:     make(map[Tab]int),
		stale:       make(map[Tab]bool),
		Theme:       screen.NewThemeController(repo, logger),
		Sidebar:     components.NewSidebar(tabNames),
		Columns:     make(map[Tab]*components.ListColumn, len(listTabs)),
		Inspector:   components.NewInspector("Info"),
		DetailView:  components.NewInspector("Details"),
		SearchModal: components.NewInputModal("Search movies..."),

		discoverLoading: true,
	}

	for _, tab := range listTabs {
		col := components.NewListColumn(tab.String())
		col.SetStatusFunc(statusFunc(m.screens[tab]))
		col.SetFocused(true)
		m.Columns[tab] = col
	}
	m.Columns[TabFavorites].SetEmptyText("No favorites yet. Press f on a movie to add it.")
	m.Columns[TabWatchlist].SetEmptyText("Your watchlist is empty. Press a in the detail view to add a movie.")
	m.Sidebar.SetSelectedIndex(int(startTab))

	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadThemeCmd(m.Theme),
		LoadPopularCmd(m.Catalog, 1),
		m.activateTab(m.Tab),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		m.Sidebar.SetSpinnerFrame(m.SpinnerFrame)
		for _, col := range m.Columns {
			col.SetSpinnerFrame(m.SpinnerFrame)
		}
		m.DetailView.SetSpinnerFrame(m.SpinnerFrame)
		return m, TickCmd(tickInterval)

	case ScreenLoadedMsg:
		sc := m.screens[msg.Tab]
		if sc == nil {
			return m, nil
		}
		if m.pending[msg.Tab] > 0 {
			// read before the pending writes landed; reload once they settle
			m.stale[msg.Tab] = true
			return m, nil
		}
		err := sc.Apply(msg.Snapshot)
		m.refreshTab(msg.Tab)
		if err != nil {
			return m, m.setError(ErrMsg{Err: err, Context: "loading " + strings.ToLower(msg.Tab.String())})
		}
		return m, nil

	case PopularLoadedMsg:
		m.discoverLoading = false
		if msg.Append {
			m.popular = appendNew(m.popular, msg.Movies)
		} else {
			m.popular = msg.Movies
		}
		if len(msg.Movies) > 0 || !msg.Append {
			m.popularPage = msg.Page
		}
		m.refreshTab(TabDiscover)
		if msg.Err != nil {
			return m, m.setError(ErrMsg{Err: msg.Err, Context: "loading popular movies"})
		}
		return m, nil

	case SearchResultsMsg:
		if msg.Query != m.searchQuery {
			return m, nil // superseded
		}
		m.discoverLoading = false
		m.searchResults = msg.Results
		m.refreshTab(TabDiscover)
		if msg.Err != nil {
			m.logger.Warn("search degraded to local results", "query", msg.Query, "error", msg.Err)
			return m, m.setStatus(fmt.Sprintf("Offline: %d local matches for %q", len(msg.Results), msg.Query), true)
		}
		return m, m.setStatus(fmt.Sprintf("%d results for %q", len(msg.Results), msg.Query), false)

	case DetailsLoadedMsg:
		if m.Detail == nil || m.Detail.Movie().ID != msg.ID {
			return m, nil
		}
		if msg.Err != nil {
			m.DetailView.SetLoading(false)
			if errors.Is(msg.Err, domain.ErrNotFound) {
				return m, m.setStatus("Movie not found in the catalog", true)
			}
			return m, m.setError(ErrMsg{Err: msg.Err, Context: "loading details"})
		}
		m.DetailView.SetDetails(msg.Details)
		m.DetailView.SetPosterURL(m.Catalog.PosterURL(msg.Details.PosterPath))
		m.Detail.SetMovie(mergeRecord(m.Detail.Movie(), m.Catalog.RecordFromDetails(msg.Details)))
		return m, nil

	case DetailStatusMsg:
		if msg.Detail != m.Detail {
			return m, nil
		}
		m.Detail.Apply(msg.Status)
		m.DetailView.SetStatus(m.Detail.Status())
		if msg.Err != nil {
			return m, m.setError(ErrMsg{Err: msg.Err, Context: "loading list status"})
		}
		return m, nil

	case ChangesCommittedMsg:
		sc := m.screens[msg.Tab]
		if sc == nil {
			return m, nil
		}
		err := sc.SettleAll(msg.Changes, msg.Errs)
		m.refreshTab(msg.Tab)

		var reload tea.Cmd
		if m.pending[msg.Tab] > 0 {
			m.pending[msg.Tab]--
		}
		if m.pending[msg.Tab] == 0 && m.stale[msg.Tab] {
			delete(m.stale, msg.Tab)
			reload = ActivateScreenCmd(msg.Tab, sc)
		}

		if err != nil {
			return m, tea.Batch(m.setError(ErrMsg{Err: err, Context: "updating lists"}), reload)
		}
		return m, tea.Batch(m.setStatus(describeChanges(msg.Changes), false), reload)

	case DetailCommittedMsg:
		err := msg.Detail.Settle(msg.Changes, msg.Errs)
		if msg.Detail == m.Detail {
			m.DetailView.SetStatus(m.Detail.Status())
		}
		if err != nil {
			return m, m.setError(ErrMsg{Err: err, Context: "updating " + msg.Key.Label()})
		}
		return m, m.setStatus(describeChanges(msg.Changes), false)

	case ThemeLoadedMsg:
		m.applyTheme()
		if msg.Err != nil {
			return m, m.setError(ErrMsg{Err: msg.Err, Context: "loading settings"})
		}
		return m, nil

	case ThemeCommittedMsg:
		m.Theme.Settle(msg.Dark, msg.Err)
		m.applyTheme()
		if msg.Err != nil {
			return m, m.setError(ErrMsg{Err: msg.Err, Context: "saving settings"})
		}
		return m, nil

	case StatsLoadedMsg:
		m.stats = msg.Stats
		m.statsLoaded = true
		m.Sidebar.SetTabState(int(TabProfile), components.TabState{Status: components.TabReady, Count: -1})
		if msg.Err != nil {
			return m, m.setError(ErrMsg{Err: msg.Err, Context: "loading stats"})
		}
		return m, nil

	case ErrMsg:
		return m, m.setError(msg)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

// setError logs err and shows it in the status bar
func (m *Model) setError(err ErrMsg) tea.Cmd {
	m.logger.Error("failed to "+err.Context, "error", err.Err)
	m.StatusMsg = err.Error()
	m.StatusIsErr = true
	return ClearStatusCmd(5 * time.Second)
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	if isErr {
		return ClearStatusCmd(5 * time.Second)
	}
	return ClearStatusCmd(3 * time.Second)
}

// applyTheme pushes the controller's flag into the style palette
func (m *Model) applyTheme() {
	styles.SetTheme(m.Theme.DarkMode())
	m.Sidebar.ApplyTheme()
	for _, col := range m.Columns {
		col.ApplyTheme()
	}
}

// refreshTab rebuilds a tab's column from its data source
func (m *Model) refreshTab(tab Tab) {
	col := m.Columns[tab]
	sc := m.screens[tab]
	if col == nil || sc == nil {
		return
	}

	state := components.TabState{Status: components.TabReady, Count: -1}
	switch tab {
	case TabDiscover:
		if m.searchQuery != "" {
			col.SetTitle(fmt.Sprintf("Search: %s", m.searchQuery))
			col.SetEmptyText("No results")
			col.SetItems(summaryItems(m.searchResults))
		} else {
			col.SetTitle("Popular")
			col.SetEmptyText("No movies")
			col.SetItems(summaryItems(m.popular))
		}
		col.SetLoading(m.discoverLoading && col.IsEmpty())
	default:
		key := sc.Keys()[0]
		mirror := sc.Mirror(key)
		col.SetItems(recordItems(mirror.Items()))
		col.SetLoading(mirror.Phase() == screen.PhaseLoading)
		state.Count = mirror.Len()
	}
	if sc.Loading() {
		state.Status = components.TabLoading
	}
	m.Sidebar.SetTabState(int(tab), state)
	m.updateInspector()
}

// updateInspector shows the selected row in the preview panel
func (m *Model) updateInspector() {
	col := m.Columns[m.Tab]
	if col == nil {
		m.Inspector.SetItem(nil)
		return
	}
	item := col.SelectedItem()
	m.Inspector.SetItem(item)
	if item == nil {
		return
	}
	sc := m.screens[m.Tab]
	var status screen.Membership
	for _, k := range sc.Keys() {
		if sc.Mirror(k).Contains(item.GetID()) {
			status.Favorite = status.Favorite || k == domain.ListFavorites
			status.Watchlist = status.Watchlist || k == domain.ListWatchlist
			status.Watched = status.Watched || k == domain.ListWatched
		}
	}
	m.Inspector.SetStatus(status)
}

// recordFor converts a list row into the record persisted for it
func (m Model) recordFor(item domain.ListItem) (domain.MovieRecord, bool) {
	switch v := item.(type) {
	case *domain.MovieRecord:
		return *v, true
	case *domain.MovieSummary:
		return m.Catalog.RecordFromSummary(*v), true
	}
	return domain.MovieRecord{}, false
}

// statusFunc reports which observed lists hold a movie
func statusFunc(sc *screen.Synchronizer) components.StatusFunc {
	return func(id domain.MovieID) []domain.ListKey {
		var on []domain.ListKey
		for _, k := range sc.Keys() {
			if sc.Mirror(k).Contains(id) {
				on = append(on, k)
			}
		}
		return on
	}
}

func recordItems(recs []domain.MovieRecord) []domain.ListItem {
	items := make([]domain.ListItem, len(recs))
	for i := range recs {
		items[i] = &recs[i]
	}
	return items
}

func summaryItems(movies []domain.MovieSummary) []domain.ListItem {
	items := make([]domain.ListItem, len(movies))
	for i := range movies {
		items[i] = &movies[i]
	}
	return items
}

// appendNew appends the movies not already present
func appendNew(have, more []domain.MovieSummary) []domain.MovieSummary {
	seen := make(map[domain.MovieID]bool, len(have))
	for _, m := range have {
		seen[m.ID] = true
	}
	out := append([]domain.MovieSummary(nil), have...)
	for _, m := range more {
		if !seen[m.ID] {
			seen[m.ID] = true
			out = append(out, m)
		}
	}
	return out
}

// mergeRecord fills blanks in a stored record from fresh catalog data
// without dropping what was stored
func mergeRecord(stored, fresh domain.MovieRecord) domain.MovieRecord {
	if stored.ID != fresh.ID {
		return fresh
	}
	out := stored
	if out.Title == "" {
		out.Title = fresh.Title
	}
	if out.PosterPath == "" {
		out.PosterPath = fresh.PosterPath
	}
	if out.BackdropPath == "" {
		out.BackdropPath = fresh.BackdropPath
	}
	if out.PosterURL == "" {
		out.PosterURL = fresh.PosterURL
	}
	if out.Overview == "" {
		out.Overview = fresh.Overview
	}
	if out.ReleaseDate == "" {
		out.ReleaseDate = fresh.ReleaseDate
	}
	if out.VoteAverage == nil {
		out.VoteAverage = fresh.VoteAverage
	}
	if len(out.Genres) == 0 {
		out.Genres = fresh.Genres
	}
	return out
}

// describeChanges builds the status line for committed changes
func describeChanges(changes []screen.Change) string {
	if len(changes) == 0 {
		return ""
	}
	c := changes[0]
	title := c.Movie.Title
	if title == "" {
		title = c.Movie.ID.String()
	}
	switch {
	case c.Kind == screen.ChangeAdd && c.List == domain.ListWatched:
		return fmt.Sprintf("Marked %q as watched", title)
	case c.Kind == screen.ChangeAdd:
		return fmt.Sprintf("Added %q to %s", title, c.List.Label())
	default:
		return fmt.Sprintf("Removed %q from %s", title, c.List.Label())
	}
}
