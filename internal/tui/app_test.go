package tui

import (
	"context"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/movienight/movienight/internal/catalog"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/lists"
	"github.com/movienight/movienight/internal/log"
	"github.com/movienight/movienight/internal/service"
	"github.com/movienight/movienight/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	domain.Store
	failSet atomic.Bool
}

func (b *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	if b.failSet.Load() {
		return domain.ErrStorageUnavailable
	}
	return b.Store.Set(ctx, key, value)
}

func newTestModel(t *testing.T, tab Tab) (Model, *lists.Repository, *brokenStore) {
	t.Helper()
	st := &brokenStore{Store: store.NewMemoryStore()}
	t.Cleanup(func() { st.Close() })

	demo, err := catalog.NewDemo(0, log.NullLogger())
	require.NoError(t, err)

	repo := lists.NewRepository(st, log.NullLogger())
	svc := service.NewCatalogService(demo, log.NullLogger())
	m := NewModel(svc, repo, log.NullLogger(), tab)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 30})
	return m, repo, st
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// loadDiscover runs the first popular page and the discover activation
func loadDiscover(t *testing.T, m Model) Model {
	t.Helper()
	m = update(t, m, LoadPopularCmd(m.Catalog, 1)())
	m = update(t, m, ActivateScreenCmd(TabDiscover, m.screens[TabDiscover])())
	require.False(t, m.Columns[TabDiscover].IsEmpty())
	return m
}

func TestParseTab(t *testing.T) {
	tab, ok := ParseTab(" watchlist ")
	assert.True(t, ok)
	assert.Equal(t, TabWatchlist, tab)

	_, ok = ParseTab("settings")
	assert.False(t, ok)
	assert.Equal(t, "Profile", TabProfile.String())
}

func TestSwitchTab_ReloadsFromStore(t *testing.T) {
	m, repo, _ := newTestModel(t, TabDiscover)
	ctx := context.Background()

	_, err := repo.AddToList(ctx, domain.ListFavorites, domain.MovieRecord{ID: "27205", Title: "Inception"})
	require.NoError(t, err)

	m, cmd := press(t, m, "2")
	require.NotNil(t, cmd)
	assert.Equal(t, TabFavorites, m.Tab)

	m = update(t, m, ActivateScreenCmd(TabFavorites, m.screens[TabFavorites])())
	col := m.Columns[TabFavorites]
	require.Equal(t, 1, col.ItemCount())
	assert.Equal(t, "Inception", col.SelectedItem().GetTitle())

	// A write made elsewhere shows up the next time the tab is activated.
	_, err = repo.AddToList(ctx, domain.ListFavorites, domain.MovieRecord{ID: "155", Title: "The Dark Knight"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Columns[TabFavorites].ItemCount())

	m, _ = press(t, m, "1")
	m, _ = press(t, m, "2")
	m = update(t, m, ActivateScreenCmd(TabFavorites, m.screens[TabFavorites])())
	assert.Equal(t, 2, m.Columns[TabFavorites].ItemCount())
}

func TestDiscover_FavoriteIsOptimistic(t *testing.T) {
	m, repo, _ := newTestModel(t, TabDiscover)
	m = loadDiscover(t, m)
	ctx := context.Background()

	id := m.Columns[TabDiscover].SelectedItem().GetID()

	m, cmd := press(t, m, "f")
	require.NotNil(t, cmd)
	assert.True(t, m.screens[TabDiscover].Mirror(domain.ListFavorites).Contains(id), "shown before the write")

	in, err := repo.IsInList(ctx, domain.ListFavorites, id)
	require.NoError(t, err)
	assert.False(t, in, "not yet written")

	m = update(t, m, cmd())
	in, err = repo.IsInList(ctx, domain.ListFavorites, id)
	require.NoError(t, err)
	assert.True(t, in)
	assert.Contains(t, m.StatusMsg, "Added")
	assert.False(t, m.StatusIsErr)
}

func TestDiscover_FailedWriteReverts(t *testing.T) {
	m, _, st := newTestModel(t, TabDiscover)
	m = loadDiscover(t, m)
	st.failSet.Store(true)

	id := m.Columns[TabDiscover].SelectedItem().GetID()
	m, cmd := press(t, m, "f")
	require.NotNil(t, cmd)
	require.True(t, m.screens[TabDiscover].Mirror(domain.ListFavorites).Contains(id))

	m = update(t, m, cmd())
	assert.False(t, m.screens[TabDiscover].Mirror(domain.ListFavorites).Contains(id))
	assert.True(t, m.StatusIsErr)
}

func TestWatchlist_MarkWatchedMovesMovie(t *testing.T) {
	m, repo, _ := newTestModel(t, TabWatchlist)
	ctx := context.Background()
	movie := domain.MovieRecord{ID: "27205", Title: "Inception"}
	_, err := repo.AddToList(ctx, domain.ListWatchlist, movie)
	require.NoError(t, err)

	m = update(t, m, ActivateScreenCmd(TabWatchlist, m.screens[TabWatchlist])())
	require.Equal(t, 1, m.Columns[TabWatchlist].ItemCount())

	m, cmd := press(t, m, "w")
	require.NotNil(t, cmd)
	assert.True(t, m.Columns[TabWatchlist].IsEmpty())

	m = update(t, m, cmd())
	watched, err := repo.GetList(ctx, domain.ListWatched)
	require.NoError(t, err)
	require.Len(t, watched, 1)
	assert.Equal(t, movie.ID, watched[0].ID)

	watchlist, err := repo.GetList(ctx, domain.ListWatchlist)
	require.NoError(t, err)
	assert.Empty(t, watchlist)
	assert.Contains(t, m.StatusMsg, "watched")
}

func TestDetail_WatchedTakesMovieOffWatchlist(t *testing.T) {
	m, repo, _ := newTestModel(t, TabWatchlist)
	ctx := context.Background()
	_, err := repo.AddToList(ctx, domain.ListWatchlist, domain.MovieRecord{ID: "27205", Title: "Inception"})
	require.NoError(t, err)
	m = update(t, m, ActivateScreenCmd(TabWatchlist, m.screens[TabWatchlist])())

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	require.Equal(t, StateDetail, m.State)
	require.NotNil(t, m.Detail)

	m = update(t, m, LoadDetailStatusCmd(m.Detail)())
	require.True(t, m.Detail.Status().Watchlist)

	m, cmd = press(t, m, "w")
	require.NotNil(t, cmd)
	assert.True(t, m.Detail.Status().Watched)
	assert.False(t, m.Detail.Status().Watchlist)

	m = update(t, m, cmd())
	in, err := repo.IsInList(ctx, domain.ListWatchlist, "27205")
	require.NoError(t, err)
	assert.False(t, in)

	m, cmd = press(t, m, "esc")
	assert.Equal(t, StateBrowsing, m.State)
	assert.Nil(t, m.Detail)
	require.NotNil(t, cmd, "closing the detail view reactivates the tab")
}

func TestThemeToggle_Persists(t *testing.T) {
	m, repo, _ := newTestModel(t, TabProfile)
	m = update(t, m, LoadThemeCmd(m.Theme)())
	require.True(t, m.Theme.DarkMode())

	m, cmd := press(t, m, "t")
	require.NotNil(t, cmd)
	assert.False(t, m.Theme.DarkMode())

	m = update(t, m, cmd())
	settings, err := repo.GetUserSettings(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.DarkMode)
	assert.False(t, m.StatusIsErr)
}

func TestThemeToggle_RevertsOnFailure(t *testing.T) {
	m, _, st := newTestModel(t, TabProfile)
	st.failSet.Store(true)

	m, cmd := press(t, m, "t")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.True(t, m.Theme.DarkMode())
	assert.True(t, m.StatusIsErr)
}

func TestProfile_ShowsStats(t *testing.T) {
	m, repo, _ := newTestModel(t, TabProfile)
	ctx := context.Background()
	_, err := repo.AddToList(ctx, domain.ListWatched, domain.MovieRecord{ID: "1", Title: "A"})
	require.NoError(t, err)
	_, err = repo.AddToList(ctx, domain.ListWatched, domain.MovieRecord{ID: "2", Title: "B"})
	require.NoError(t, err)

	m = update(t, m, LoadStatsCmd(m.Lists)())
	assert.Equal(t, domain.Stats{Watched: 2}, m.stats)
	assert.Contains(t, m.View(), "Version 1.0.0")
}

func TestSearch_SubmitRunsQuery(t *testing.T) {
	m, _, _ := newTestModel(t, TabDiscover)
	m = loadDiscover(t, m)

	m, _ = press(t, m, "s")
	require.True(t, m.SearchModal.IsVisible())
	m, _ = press(t, m, "inception")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	assert.False(t, m.SearchModal.IsVisible())
	assert.Equal(t, "inception", m.searchQuery)

	m = update(t, m, cmd())
	col := m.Columns[TabDiscover]
	require.False(t, col.IsEmpty())
	titles := make([]string, 0, col.ItemCount())
	for _, item := range col.Items() {
		titles = append(titles, item.GetTitle())
	}
	assert.Contains(t, titles, "Inception")

	m, _ = press(t, m, "esc")
	assert.Empty(t, m.searchQuery)
}

func TestDescribeChanges(t *testing.T) {
	m, _, _ := newTestModel(t, TabDiscover)
	m = loadDiscover(t, m)
	_, cmd := press(t, m, "w")
	require.NotNil(t, cmd)

	msg, ok := cmd().(ChangesCommittedMsg)
	require.True(t, ok)
	assert.Contains(t, describeChanges(msg.Changes), "as watched")
}

func TestToggle_IgnoredDuringFirstLoad(t *testing.T) {
	m, repo, _ := newTestModel(t, TabDiscover)
	m = update(t, m, LoadPopularCmd(m.Catalog, 1)())
	m.screens[TabDiscover].BeginLoad()
	require.True(t, m.screens[TabDiscover].Loading())

	id := m.Columns[TabDiscover].SelectedItem().GetID()
	m, _ = press(t, m, "f")
	assert.False(t, m.screens[TabDiscover].Mirror(domain.ListFavorites).Contains(id))
	assert.Contains(t, m.StatusMsg, "Still loading")

	in, err := repo.IsInList(context.Background(), domain.ListFavorites, id)
	require.NoError(t, err)
	assert.False(t, in)

	m = update(t, m, ActivateScreenCmd(TabDiscover, m.screens[TabDiscover])())
	m, cmd := press(t, m, "f")
	require.NotNil(t, cmd)
	assert.True(t, m.screens[TabDiscover].Mirror(domain.ListFavorites).Contains(id))
}

func TestStaleReload_DoesNotUndoPendingChange(t *testing.T) {
	m, _, _ := newTestModel(t, TabDiscover)
	m = loadDiscover(t, m)
	id := m.Columns[TabDiscover].SelectedItem().GetID()

	// a reload read before the write below lands
	stale := ActivateScreenCmd(TabDiscover, m.screens[TabDiscover])()

	m, commit := press(t, m, "f")
	require.NotNil(t, commit)
	m = update(t, m, stale)
	assert.True(t, m.screens[TabDiscover].Mirror(domain.ListFavorites).Contains(id))

	next, reload := m.Update(commit())
	m = next.(Model)
	require.NotNil(t, reload, "the dropped reload is retried")
	assert.True(t, m.screens[TabDiscover].Mirror(domain.ListFavorites).Contains(id))

	m = update(t, m, ActivateScreenCmd(TabDiscover, m.screens[TabDiscover])())
	assert.True(t, m.screens[TabDiscover].Mirror(domain.ListFavorites).Contains(id))
}
