package screen

import (
	"context"
	"log/slog"
	"sync"

	"github.com/movienight/movienight/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Membership is a movie's presence in each list.
type Membership struct {
	Favorite  bool
	Watchlist bool
	Watched   bool
}

// In reports membership for key.
func (m Membership) In(key domain.ListKey) bool {
	switch key {
	case domain.ListFavorites:
		return m.Favorite
	case domain.ListWatchlist:
		return m.Watchlist
	case domain.ListWatched:
		return m.Watched
	}
	return false
}

func (m *Membership) set(key domain.ListKey, v bool) {
	switch key {
	case domain.ListFavorites:
		m.Favorite = v
	case domain.ListWatchlist:
		m.Watchlist = v
	case domain.ListWatched:
		m.Watched = v
	}
}

// DetailStatus tracks one movie's membership for the detail screen.
type DetailStatus struct {
	repo   ListRepository
	logger *slog.Logger
	movie  domain.MovieRecord

	mu     sync.RWMutex
	status Membership
	loaded bool
}

// NewDetailStatus creates a status tracker for movie.
func NewDetailStatus(repo ListRepository, logger *slog.Logger, movie domain.MovieRecord) *DetailStatus {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailStatus{repo: repo, logger: logger, movie: movie}
}

// Movie returns the record persisted by toggles.
func (d *DetailStatus) Movie() domain.MovieRecord {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.movie
}

// SetMovie replaces the record persisted by toggles, e.g. once full details
// have arrived. The id must not change.
func (d *DetailStatus) SetMovie(movie domain.MovieRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if movie.ID.Equal(d.movie.ID) {
		d.movie = movie
	}
}

func (d *DetailStatus) Status() Membership {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

func (d *DetailStatus) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Fetch checks all three lists concurrently. A failed check reads as
// not-a-member; the first error is returned alongside.
func (d *DetailStatus) Fetch(ctx context.Context) (Membership, error) {
	id := d.Movie().ID
	keys := domain.AllLists()
	found := make([]bool, len(keys))

	var g errgroup.Group
	for i, k := range keys {
		i, k := i, k
		g.Go(func() error {
			in, err := d.repo.IsInList(ctx, k, id)
			if err != nil {
				d.logger.Error("failed to check list membership", "list", k, "movieID", id, "error", err)
				return err
			}
			found[i] = in
			return nil
		})
	}
	err := g.Wait()

	var m Membership
	for i, k := range keys {
		m.set(k, found[i])
	}
	return m, err
}

// Apply installs a fetched membership.
func (d *DetailStatus) Apply(m Membership) {
	d.mu.Lock()
	d.status = m
	d.loaded = true
	d.mu.Unlock()
}

// Refresh is Fetch followed by Apply.
func (d *DetailStatus) Refresh(ctx context.Context) error {
	m, err := d.Fetch(ctx)
	d.Apply(m)
	return err
}

// BeginToggle flips membership in key. Marking a movie watched also takes it
// off the watchlist.
func (d *DetailStatus) BeginToggle(key domain.ListKey) []Change {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.status.In(key) {
		d.status.set(key, false)
		return []Change{{List: key, Kind: ChangeRemove, Movie: d.movie, applied: true}}
	}

	d.status.set(key, true)
	changes := []Change{{List: key, Kind: ChangeAdd, Movie: d.movie, applied: true}}
	if key == domain.ListWatched {
		wasOnWatchlist := d.status.Watchlist
		d.status.Watchlist = false
		changes = append(changes, Change{
			List:    domain.ListWatchlist,
			Kind:    ChangeRemove,
			Movie:   d.movie,
			applied: wasOnWatchlist,
		})
	}
	return changes
}

// Commit writes changes in order, see CommitAll.
func (d *DetailStatus) Commit(ctx context.Context, changes []Change) []error {
	return CommitAll(ctx, d.repo, changes)
}

// Settle reverts every failed change.
func (d *DetailStatus) Settle(changes []Change, errs []error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var failed []error
	for i := len(changes) - 1; i >= 0; i-- {
		if i >= len(errs) || errs[i] == nil {
			continue
		}
		failed = append(failed, errs[i])
		c := changes[i]
		if !c.applied {
			continue
		}
		d.logger.Warn("reverting optimistic change", "list", c.List, "kind", c.Kind, "movieID", c.Movie.ID, "error", errs[i])
		d.status.set(c.List, c.Kind == ChangeRemove)
	}
	if len(failed) == 0 {
		return nil
	}
	return failed[len(failed)-1]
}

// Toggle is BeginToggle, Commit and Settle in one call.
func (d *DetailStatus) Toggle(ctx context.Context, key domain.ListKey) error {
	changes := d.BeginToggle(key)
	return d.Settle(changes, d.Commit(ctx, changes))
}
