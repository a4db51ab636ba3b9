package lists

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRepo(t *testing.T) (*Repository, domain.Store) {
	t.Helper()
	s := store.NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return NewRepository(s, nil, WithClock(func() time.Time { return fixedNow })), s
}

func inception() domain.MovieRecord {
	return domain.MovieRecord{ID: "1", Title: "Inception", ReleaseDate: "2010-07-16"}
}

// flakyStore wraps a store and fails reads or writes on demand.
type flakyStore struct {
	domain.Store
	mu        sync.Mutex
	failGet   bool
	failSet   bool
	setCalls  int
	failSetOn string
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, false, domain.ErrStorageUnavailable
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.setCalls++
	fail := f.failSet || (f.failSetOn != "" && f.failSetOn == key)
	f.mu.Unlock()
	if fail {
		return domain.ErrStorageUnavailable
	}
	return f.Store.Set(ctx, key, value)
}

func TestGetList_AbsentIsEmpty(t *testing.T) {
	repo, _ := newRepo(t)

	for _, key := range ListKeys() {
		list, err := repo.GetList(context.Background(), key)
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	}
}

func TestGetList_Malformed(t *testing.T) {
	repo, s := newRepo(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "@MovieNight:favoriteMovies", []byte("not json")))

	_, err := repo.GetList(ctx, domain.ListFavorites)
	assert.ErrorIs(t, err, domain.ErrDeserialization)
}

func TestGetList_UnknownKey(t *testing.T) {
	repo, _ := newRepo(t)

	_, err := repo.GetList(context.Background(), domain.ListKey("seen"))
	assert.ErrorIs(t, err, domain.ErrUnknownList)
}

func TestAddToList_Idempotent(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	added, err := repo.AddToList(ctx, domain.ListFavorites, inception())
	require.NoError(t, err)
	assert.True(t, added)

	second := inception()
	second.Title = "Inception (2010)"
	added, err = repo.AddToList(ctx, domain.ListFavorites, second)
	require.NoError(t, err)
	assert.False(t, added)

	list, err := repo.GetList(ctx, domain.ListFavorites)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Inception", list[0].Title, "existing record must not be updated")
}

func TestAddToList_SameIDWrittenDifferently(t *testing.T) {
	ctx := context.Background()
	repo, _ := newRepo(t)

	added, err := repo.AddToList(ctx, domain.ListFavorites, domain.MovieRecord{ID: "7", Title: "Seven"})
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddToList(ctx, domain.ListFavorites, domain.MovieRecord{ID: "007", Title: "Seven"})
	require.NoError(t, err)
	assert.False(t, added)

	list, err := repo.GetList(ctx, domain.ListFavorites)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.MovieID("7"), list[0].ID)

	in, err := repo.IsInList(ctx, domain.ListFavorites, "007")
	require.NoError(t, err)
	assert.True(t, in)

	removed, err := repo.RemoveFromList(ctx, domain.ListFavorites, "+7")
	require.NoError(t, err)
	assert.True(t, removed)

	list, err = repo.GetList(ctx, domain.ListFavorites)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddToList_AssignsAddedAt(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	movie := inception()
	movie.AddedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.AddToList(ctx, domain.ListWatchlist, movie)
	require.NoError(t, err)

	list, err := repo.GetList(ctx, domain.ListWatchlist)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, fixedNow.Equal(list[0].AddedAt))
	assert.Equal(t, "Inception", list[0].Title)
	assert.Equal(t, "2010-07-16", list[0].ReleaseDate)
}

func TestAddToList_PreservesOrder(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	for _, m := range []domain.MovieRecord{
		{ID: "3", Title: "Parasite"},
		{ID: "1", Title: "Inception"},
		{ID: "2", Title: "The Dark Knight"},
	} {
		_, err := repo.AddToList(ctx, domain.ListFavorites, m)
		require.NoError(t, err)
	}

	list, err := repo.GetList(ctx, domain.ListFavorites)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, domain.MovieID("3"), list[0].ID)
	assert.Equal(t, domain.MovieID("1"), list[1].ID)
	assert.Equal(t, domain.MovieID("2"), list[2].ID)
}

func TestAddToList_Validation(t *testing.T) {
	repo, s := newRepo(t)
	ctx := context.Background()
	bad := 11.0

	tests := []struct {
		name  string
		movie domain.MovieRecord
	}{
		{"missing id", domain.MovieRecord{Title: "Inception"}},
		{"missing title", domain.MovieRecord{ID: "1"}},
		{"rating out of range", domain.MovieRecord{ID: "1", Title: "Inception", VoteAverage: &bad}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			added, err := repo.AddToList(ctx, domain.ListFavorites, tt.movie)
			assert.ErrorIs(t, err, domain.ErrInvalidMovie)
			assert.False(t, added)
		})
	}

	_, found, err := s.Get(ctx, "@MovieNight:favoriteMovies")
	require.NoError(t, err)
	assert.False(t, found, "invalid input must not write")
}

func TestAddToList_MalformedListIsNotOverwritten(t *testing.T) {
	repo, s := newRepo(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "@MovieNight:watchlist", []byte("{broken")))

	_, err := repo.AddToList(ctx, domain.ListWatchlist, inception())
	assert.ErrorIs(t, err, domain.ErrDeserialization)

	data, _, err := s.Get(ctx, "@MovieNight:watchlist")
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestAddToList_StoreFailure(t *testing.T) {
	mem := store.NewMemoryStore()
	defer mem.Close()
	fs := &flakyStore{Store: mem, failSet: true}
	repo := NewRepository(fs, nil)

	added, err := repo.AddToList(context.Background(), domain.ListFavorites, inception())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.False(t, added)
}

func TestRemoveFromList(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.AddToList(ctx, domain.ListFavorites, inception())
	require.NoError(t, err)
	_, err = repo.AddToList(ctx, domain.ListFavorites, domain.MovieRecord{ID: "2", Title: "The Dark Knight"})
	require.NoError(t, err)

	removed, err := repo.RemoveFromList(ctx, domain.ListFavorites, "1")
	require.NoError(t, err)
	assert.True(t, removed)

	in, err := repo.IsInList(ctx, domain.ListFavorites, "1")
	require.NoError(t, err)
	assert.False(t, in)

	list, err := repo.GetList(ctx, domain.ListFavorites)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.MovieID("2"), list[0].ID)
}

func TestRemoveFromList_DropsEveryDuplicate(t *testing.T) {
	repo, s := newRepo(t)
	ctx := context.Background()

	// duplicates can exist in data written by older clients
	raw := `[{"id":1,"title":"Inception"},{"id":2,"title":"The Dark Knight"},{"id":"1","title":"Inception"}]`
	require.NoError(t, s.Set(ctx, "@MovieNight:watchedMovies", []byte(raw)))

	removed, err := repo.RemoveFromList(ctx, domain.ListWatched, "1")
	require.NoError(t, err)
	assert.True(t, removed)

	list, err := repo.GetList(ctx, domain.ListWatched)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.MovieID("2"), list[0].ID)
}

func TestRemoveFromList_MissingDoesNotWrite(t *testing.T) {
	mem := store.NewMemoryStore()
	defer mem.Close()
	fs := &flakyStore{Store: mem}
	repo := NewRepository(fs, nil)

	removed, err := repo.RemoveFromList(context.Background(), domain.ListWatchlist, "42")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, fs.setCalls)
}

func TestCrossListIndependence(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.AddToList(ctx, domain.ListFavorites, inception())
	require.NoError(t, err)
	_, err = repo.AddToList(ctx, domain.ListWatchlist, inception())
	require.NoError(t, err)

	_, err = repo.RemoveFromList(ctx, domain.ListFavorites, "1")
	require.NoError(t, err)

	in, err := repo.IsInList(ctx, domain.ListWatchlist, "1")
	require.NoError(t, err)
	assert.True(t, in)
}

func TestMarkWatched(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, err := repo.AddToList(ctx, domain.ListWatchlist, inception())
	require.NoError(t, err)

	res, err := repo.MarkWatched(ctx, inception())
	require.NoError(t, err)
	assert.True(t, res.Added)
	assert.True(t, res.RemovedFromWatchlist)

	inWatched, err := repo.IsInList(ctx, domain.ListWatched, "1")
	require.NoError(t, err)
	inWatchlist, err := repo.IsInList(ctx, domain.ListWatchlist, "1")
	require.NoError(t, err)
	assert.True(t, inWatched)
	assert.False(t, inWatchlist)

	// already watched, not on the watchlist
	res, err = repo.MarkWatched(ctx, inception())
	require.NoError(t, err)
	assert.False(t, res.Added)
	assert.False(t, res.RemovedFromWatchlist)
}

func TestMarkWatched_SecondStepFailureKeepsFirst(t *testing.T) {
	mem := store.NewMemoryStore()
	defer mem.Close()
	fs := &flakyStore{Store: mem}
	repo := NewRepository(fs, nil)
	ctx := context.Background()

	_, err := repo.AddToList(ctx, domain.ListWatchlist, inception())
	require.NoError(t, err)

	fs.failSetOn = "@MovieNight:watchlist"
	res, err := repo.MarkWatched(ctx, inception())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.True(t, res.Added)

	in, err := repo.IsInList(ctx, domain.ListWatched, "1")
	require.NoError(t, err)
	assert.True(t, in)
}

func TestUserSettings(t *testing.T) {
	repo, s := newRepo(t)
	ctx := context.Background()

	settings, err := repo.GetUserSettings(ctx)
	require.NoError(t, err)
	assert.True(t, settings.DarkMode, "default is dark mode")

	require.NoError(t, repo.SaveUserSettings(ctx, domain.UserSettings{DarkMode: false}))
	settings, err = repo.GetUserSettings(ctx)
	require.NoError(t, err)
	assert.False(t, settings.DarkMode)

	data, _, err := s.Get(ctx, "@MovieNight:userSettings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"darkMode":false}`, string(data))
}

func TestUserSettings_MalformedFallsBackToDefault(t *testing.T) {
	repo, s := newRepo(t)
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "@MovieNight:userSettings", []byte("<xml/>")))

	settings, err := repo.GetUserSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultUserSettings(), settings)
}

func TestUserSettings_StoreFailureSurfaces(t *testing.T) {
	mem := store.NewMemoryStore()
	defer mem.Close()
	repo := NewRepository(&flakyStore{Store: mem, failGet: true}, nil)

	settings, err := repo.GetUserSettings(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.Equal(t, domain.DefaultUserSettings(), settings)
}

func TestStats(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	_, _ = repo.AddToList(ctx, domain.ListFavorites, inception())
	_, _ = repo.AddToList(ctx, domain.ListFavorites, domain.MovieRecord{ID: "2", Title: "The Dark Knight"})
	_, _ = repo.AddToList(ctx, domain.ListWatched, domain.MovieRecord{ID: "3", Title: "Parasite"})

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{Favorites: 2, Watchlist: 0, Watched: 1}, stats)
}

func TestUnknownFieldsSurviveWrite(t *testing.T) {
	repo, s := newRepo(t)
	ctx := context.Background()

	raw := `[{"id":7,"title":"Amélie","original_language":"fr","popularity":42.5}]`
	require.NoError(t, s.Set(ctx, "@MovieNight:favoriteMovies", []byte(raw)))

	_, err := repo.AddToList(ctx, domain.ListFavorites, inception())
	require.NoError(t, err)

	data, _, err := s.Get(ctx, "@MovieNight:favoriteMovies")
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "fr", decoded[0]["original_language"])
	assert.Equal(t, 42.5, decoded[0]["popularity"])
	assert.Equal(t, float64(7), decoded[0]["id"])
	assert.Equal(t, float64(1), decoded[1]["id"], "integer ids are written as numbers")
}

// Inception: favorite, then watchlist, then watched.
func TestInceptionScenario(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	movie := inception()

	added, err := repo.AddToList(ctx, domain.ListFavorites, movie)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = repo.AddToList(ctx, domain.ListWatchlist, movie)
	require.NoError(t, err)
	assert.True(t, added)

	_, err = repo.MarkWatched(ctx, movie)
	require.NoError(t, err)

	favorites, _ := repo.GetList(ctx, domain.ListFavorites)
	watchlist, _ := repo.GetList(ctx, domain.ListWatchlist)
	watched, _ := repo.GetList(ctx, domain.ListWatched)
	assert.Len(t, favorites, 1)
	assert.Empty(t, watchlist)
	require.Len(t, watched, 1)
	assert.Equal(t, "Inception", watched[0].Title)
}

func TestConcurrentAddYieldsOneRecord(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo, _ := newRepo(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	results := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			added, err := repo.AddToList(ctx, domain.ListWatchlist, inception())
			if err != nil {
				t.Error(err)
			}
			results <- added
		}()
	}
	wg.Wait()
	close(results)

	count := 0
	for added := range results {
		if added {
			count++
		}
	}
	assert.Equal(t, 1, count)

	list, err := repo.GetList(ctx, domain.ListWatchlist)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	defer goleak.VerifyNone(t)

	var locks keyLocks
	unlockA := locks.lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestParseListKey(t *testing.T) {
	key, err := ParseListKey(" Watchlist ")
	require.NoError(t, err)
	assert.Equal(t, domain.ListWatchlist, key)

	_, err = ParseListKey("seen")
	assert.True(t, errors.Is(err, domain.ErrUnknownList))
}
