package screen

import (
	"context"
	"sync"
	"testing"

	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/lists"
	"github.com/movienight/movienight/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var (
	inception  = domain.MovieRecord{ID: "1", Title: "Inception"}
	darkKnight = domain.MovieRecord{ID: "2", Title: "The Dark Knight"}
	parasite   = domain.MovieRecord{ID: "3", Title: "Parasite"}
)

// switchStore fails every operation while broken is set.
type switchStore struct {
	domain.Store
	mu     sync.Mutex
	broken bool
}

func (s *switchStore) setBroken(v bool) {
	s.mu.Lock()
	s.broken = v
	s.mu.Unlock()
}

func (s *switchStore) isBroken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.broken
}

func (s *switchStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.isBroken() {
		return nil, false, domain.ErrStorageUnavailable
	}
	return s.Store.Get(ctx, key)
}

func (s *switchStore) Set(ctx context.Context, key string, value []byte) error {
	if s.isBroken() {
		return domain.ErrStorageUnavailable
	}
	return s.Store.Set(ctx, key, value)
}

func setup(t *testing.T) (*lists.Repository, *switchStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	t.Cleanup(func() { mem.Close() })
	s := &switchStore{Store: mem}
	return lists.NewRepository(s, nil), s
}

func ids(records []domain.MovieRecord) []domain.MovieID {
	out := make([]domain.MovieID, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestMirror_Phases(t *testing.T) {
	repo, _ := setup(t)
	sc := NewSynchronizer(repo, nil, domain.ListFavorites)
	m := sc.Mirror(domain.ListFavorites)

	assert.Equal(t, PhaseIdle, m.Phase())
	sc.BeginLoad()
	assert.Equal(t, PhaseLoading, m.Phase())
	assert.True(t, sc.Loading())

	require.NoError(t, sc.Apply(sc.Fetch(context.Background())))
	assert.Equal(t, PhaseReady, m.Phase())
	assert.Empty(t, m.Items())

	// re-activation refreshes without going back to Loading
	sc.BeginLoad()
	assert.Equal(t, PhaseReady, m.Phase())
}

func TestActivate_ReloadsEveryTime(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, _ := setup(t)
	ctx := context.Background()
	sc := NewSynchronizer(repo, nil, domain.ListFavorites, domain.ListWatchlist)

	require.NoError(t, sc.Activate(ctx))
	assert.Zero(t, sc.Mirror(domain.ListFavorites).Len())

	// another screen writes
	_, err := repo.AddToList(ctx, domain.ListFavorites, inception)
	require.NoError(t, err)
	_, err = repo.AddToList(ctx, domain.ListWatchlist, darkKnight)
	require.NoError(t, err)

	require.NoError(t, sc.Activate(ctx))
	assert.Equal(t, []domain.MovieID{"1"}, ids(sc.Mirror(domain.ListFavorites).Items()))
	assert.Equal(t, []domain.MovieID{"2"}, ids(sc.Mirror(domain.ListWatchlist).Items()))
}

func TestActivate_FirstLoadFailureIsEmptyReady(t *testing.T) {
	repo, s := setup(t)
	sc := NewSynchronizer(repo, nil, domain.ListWatched)

	s.setBroken(true)
	err := sc.Activate(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	m := sc.Mirror(domain.ListWatched)
	assert.Equal(t, PhaseReady, m.Phase())
	assert.Empty(t, m.Items())
}

func TestActivate_LaterFailureKeepsContents(t *testing.T) {
	repo, s := setup(t)
	ctx := context.Background()
	_, err := repo.AddToList(ctx, domain.ListWatched, parasite)
	require.NoError(t, err)

	sc := NewSynchronizer(repo, nil, domain.ListWatched)
	require.NoError(t, sc.Activate(ctx))

	s.setBroken(true)
	assert.Error(t, sc.Activate(ctx))
	assert.Equal(t, []domain.MovieID{"3"}, ids(sc.Mirror(domain.ListWatched).Items()))
}

func TestToggle_AddThenRemove(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()
	sc := NewSynchronizer(repo, nil, domain.ListFavorites)
	require.NoError(t, sc.Activate(ctx))

	c, err := sc.Toggle(ctx, domain.ListFavorites, inception)
	require.NoError(t, err)
	assert.Equal(t, ChangeAdd, c.Kind)
	assert.True(t, sc.Mirror(domain.ListFavorites).Contains("1"))
	in, _ := repo.IsInList(ctx, domain.ListFavorites, "1")
	assert.True(t, in)

	c, err = sc.Toggle(ctx, domain.ListFavorites, inception)
	require.NoError(t, err)
	assert.Equal(t, ChangeRemove, c.Kind)
	assert.False(t, sc.Mirror(domain.ListFavorites).Contains("1"))
	in, _ = repo.IsInList(ctx, domain.ListFavorites, "1")
	assert.False(t, in)
}

func TestToggle_NotObserved(t *testing.T) {
	repo, _ := setup(t)
	sc := NewSynchronizer(repo, nil, domain.ListFavorites)

	_, err := sc.BeginToggle(domain.ListWatchlist, inception)
	assert.ErrorIs(t, err, ErrNotObserved)
}

func TestBeginToggle_IsOptimistic(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()
	sc := NewSynchronizer(repo, nil, domain.ListFavorites)
	require.NoError(t, sc.Activate(ctx))

	c, err := sc.BeginToggle(domain.ListFavorites, inception)
	require.NoError(t, err)
	assert.True(t, c.Applied())
	assert.True(t, sc.Mirror(domain.ListFavorites).Contains("1"))

	in, _ := repo.IsInList(ctx, domain.ListFavorites, "1")
	assert.False(t, in, "nothing is written before Commit")

	err = sc.Commit(ctx, c)
	sc.Settle(c, err)
	require.NoError(t, err)
	in, _ = repo.IsInList(ctx, domain.ListFavorites, "1")
	assert.True(t, in)
}

func TestSettle_RevertsFailedAdd(t *testing.T) {
	repo, s := setup(t)
	ctx := context.Background()
	sc := NewSynchronizer(repo, nil, domain.ListFavorites)
	require.NoError(t, sc.Activate(ctx))

	s.setBroken(true)
	_, err := sc.Toggle(ctx, domain.ListFavorites, inception)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.False(t, sc.Mirror(domain.ListFavorites).Contains("1"))
}

func TestSettle_RevertsFailedRemoveInPlace(t *testing.T) {
	repo, s := setup(t)
	ctx := context.Background()
	for _, m := range []domain.MovieRecord{inception, darkKnight, parasite} {
		_, err := repo.AddToList(ctx, domain.ListWatchlist, m)
		require.NoError(t, err)
	}
	sc := NewSynchronizer(repo, nil, domain.ListWatchlist)
	require.NoError(t, sc.Activate(ctx))

	s.setBroken(true)
	err := sc.Remove(ctx, domain.ListWatchlist, "2")
	assert.Error(t, err)
	assert.Equal(t, []domain.MovieID{"1", "2", "3"}, ids(sc.Mirror(domain.ListWatchlist).Items()))
}

func TestMarkWatched_CompoundRule(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()
	_, err := repo.AddToList(ctx, domain.ListWatchlist, inception)
	require.NoError(t, err)

	sc := NewSynchronizer(repo, nil, domain.ListWatchlist)
	require.NoError(t, sc.Activate(ctx))

	changes := sc.BeginMarkWatched(inception)
	require.Len(t, changes, 2)
	assert.False(t, changes[0].Applied(), "watched is not observed here")
	assert.True(t, changes[1].Applied())
	assert.False(t, sc.Mirror(domain.ListWatchlist).Contains("1"))

	require.NoError(t, sc.SettleAll(changes, CommitAll(ctx, repo, changes)))

	inWatched, _ := repo.IsInList(ctx, domain.ListWatched, "1")
	inWatchlist, _ := repo.IsInList(ctx, domain.ListWatchlist, "1")
	assert.True(t, inWatched)
	assert.False(t, inWatchlist)
}

func TestMarkWatched_FailureRevertsBothHalves(t *testing.T) {
	repo, s := setup(t)
	ctx := context.Background()
	_, err := repo.AddToList(ctx, domain.ListWatchlist, inception)
	require.NoError(t, err)

	sc := NewSynchronizer(repo, nil, domain.ListWatchlist, domain.ListWatched)
	require.NoError(t, sc.Activate(ctx))

	s.setBroken(true)
	err = sc.MarkWatched(ctx, inception)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.ErrorIs(t, err, ErrAborted)

	assert.True(t, sc.Mirror(domain.ListWatchlist).Contains("1"))
	assert.False(t, sc.Mirror(domain.ListWatched).Contains("1"))
}

func TestBeginToggleWatched(t *testing.T) {
	repo, _ := setup(t)
	ctx := context.Background()
	sc := NewSynchronizer(repo, nil, domain.ListWatched, domain.ListFavorites)
	require.NoError(t, sc.Activate(ctx))

	changes, err := sc.BeginToggleWatched(inception)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	require.NoError(t, sc.SettleAll(changes, CommitAll(ctx, repo, changes)))
	assert.True(t, sc.Mirror(domain.ListWatched).Contains("1"))

	changes, err = sc.BeginToggleWatched(inception)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, ChangeRemove, changes[0].Kind)
	require.NoError(t, sc.SettleAll(changes, CommitAll(ctx, repo, changes)))
	in, _ := repo.IsInList(ctx, domain.ListWatched, "1")
	assert.False(t, in)
}

func TestDetailStatus(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, _ := setup(t)
	ctx := context.Background()
	_, err := repo.AddToList(ctx, domain.ListWatchlist, inception)
	require.NoError(t, err)

	d := NewDetailStatus(repo, nil, inception)
	require.NoError(t, d.Refresh(ctx))
	assert.Equal(t, Membership{Watchlist: true}, d.Status())

	require.NoError(t, d.Toggle(ctx, domain.ListFavorites))
	require.NoError(t, d.Toggle(ctx, domain.ListWatched))
	assert.Equal(t, Membership{Favorite: true, Watched: true}, d.Status())

	m, err := d.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, d.Status(), m)
}

func TestDetailStatus_RevertOnFailure(t *testing.T) {
	repo, s := setup(t)
	ctx := context.Background()
	_, err := repo.AddToList(ctx, domain.ListWatchlist, inception)
	require.NoError(t, err)

	d := NewDetailStatus(repo, nil, inception)
	require.NoError(t, d.Refresh(ctx))

	s.setBroken(true)
	assert.Error(t, d.Toggle(ctx, domain.ListWatched))
	assert.Equal(t, Membership{Watchlist: true}, d.Status())
}

func TestDetailStatus_FetchFailureReadsAsAbsent(t *testing.T) {
	repo, s := setup(t)
	d := NewDetailStatus(repo, nil, inception)

	s.setBroken(true)
	err := d.Refresh(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, Membership{}, d.Status())
	assert.True(t, d.Loaded())
}

func TestThemeController(t *testing.T) {
	repo, s := setup(t)
	ctx := context.Background()
	theme := NewThemeController(repo, nil)

	require.NoError(t, theme.Load(ctx))
	assert.True(t, theme.DarkMode())

	dark, err := theme.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, dark)
	settings, err := repo.GetUserSettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.DarkMode)

	s.setBroken(true)
	dark, err = theme.Toggle(ctx)
	assert.Error(t, err)
	assert.False(t, dark, "failed toggle is reverted")

	s.setBroken(false)
	fresh := NewThemeController(repo, nil)
	require.NoError(t, fresh.Load(ctx))
	assert.False(t, fresh.DarkMode())
}
