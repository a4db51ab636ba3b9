package screen

import (
	"context"
	"errors"
	"log/slog"

	"github.com/movienight/movienight/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Synchronizer keeps the mirrors of one screen consistent with the
// repository. Mutations are optimistic: Begin* updates the mirror, Commit
// writes, Settle reverts the mirror if the write failed.
type Synchronizer struct {
	repo    ListRepository
	logger  *slog.Logger
	keys    []domain.ListKey
	mirrors map[domain.ListKey]*Mirror
}

// NewSynchronizer creates a synchronizer observing keys.
func NewSynchronizer(repo ListRepository, logger *slog.Logger, keys ...domain.ListKey) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Synchronizer{
		repo:    repo,
		logger:  logger,
		mirrors: make(map[domain.ListKey]*Mirror, len(keys)),
	}
	for _, k := range keys {
		if _, dup := s.mirrors[k]; dup {
			continue
		}
		s.keys = append(s.keys, k)
		s.mirrors[k] = newMirror(k)
	}
	return s
}

// Keys returns the observed list keys.
func (s *Synchronizer) Keys() []domain.ListKey {
	out := make([]domain.ListKey, len(s.keys))
	copy(out, s.keys)
	return out
}

// Observes reports whether key is tracked by this screen.
func (s *Synchronizer) Observes(key domain.ListKey) bool {
	_, ok := s.mirrors[key]
	return ok
}

// Mirror returns the mirror for key, or nil if key is not observed.
func (s *Synchronizer) Mirror(key domain.ListKey) *Mirror {
	return s.mirrors[key]
}

// Loading reports whether any mirror is still on its first load.
func (s *Synchronizer) Loading() bool {
	for _, m := range s.mirrors {
		if m.Phase() == PhaseLoading {
			return true
		}
	}
	return false
}

// LoadResult is the outcome of reading one list.
type LoadResult struct {
	Items []domain.MovieRecord
	Err   error
}

// Snapshot holds freshly read lists, keyed by list.
type Snapshot map[domain.ListKey]LoadResult

// BeginLoad marks never-loaded mirrors as Loading.
func (s *Synchronizer) BeginLoad() {
	for _, k := range s.keys {
		s.mirrors[k].startLoad()
	}
}

// Fetch reads every observed list concurrently without touching the mirrors.
func (s *Synchronizer) Fetch(ctx context.Context) Snapshot {
	results := make([]LoadResult, len(s.keys))

	var g errgroup.Group
	for i, k := range s.keys {
		i, k := i, k
		g.Go(func() error {
			items, err := s.repo.GetList(ctx, k)
			if err != nil {
				s.logger.Error("failed to load list", "list", k, "error", err)
			}
			results[i] = LoadResult{Items: items, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	snap := make(Snapshot, len(s.keys))
	for i, k := range s.keys {
		snap[k] = results[i]
	}
	return snap
}

// Apply installs a snapshot into the mirrors and returns the load errors.
func (s *Synchronizer) Apply(snap Snapshot) error {
	var errs []error
	for k, res := range snap {
		m, ok := s.mirrors[k]
		if !ok {
			continue
		}
		m.finishLoad(res.Items, res.Err)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Activate reloads every observed list. It is called each time the screen
// becomes active.
func (s *Synchronizer) Activate(ctx context.Context) error {
	s.BeginLoad()
	return s.Apply(s.Fetch(ctx))
}

// BeginToggle adds movie to key, or removes it if it is already mirrored.
func (s *Synchronizer) BeginToggle(key domain.ListKey, movie domain.MovieRecord) (Change, error) {
	m, ok := s.mirrors[key]
	if !ok {
		return Change{}, ErrNotObserved
	}
	if m.Contains(movie.ID) {
		return s.beginRemove(m, movie.ID), nil
	}
	return s.beginAdd(m, movie), nil
}

// BeginRemove removes id from key.
func (s *Synchronizer) BeginRemove(key domain.ListKey, id domain.MovieID) (Change, error) {
	m, ok := s.mirrors[key]
	if !ok {
		return Change{}, ErrNotObserved
	}
	return s.beginRemove(m, id), nil
}

// BeginMarkWatched adds movie to watched and removes it from the watchlist.
// Either half is reflected in memory only if this screen observes that list;
// the durable writes happen regardless.
func (s *Synchronizer) BeginMarkWatched(movie domain.MovieRecord) []Change {
	changes := make([]Change, 0, 2)

	add := Change{List: domain.ListWatched, Kind: ChangeAdd, Movie: movie}
	if m, ok := s.mirrors[domain.ListWatched]; ok {
		add = s.beginAdd(m, movie)
	}
	changes = append(changes, add)

	remove := Change{List: domain.ListWatchlist, Kind: ChangeRemove, Movie: movie}
	if m, ok := s.mirrors[domain.ListWatchlist]; ok {
		remove = s.beginRemove(m, movie.ID)
	}
	return append(changes, remove)
}

// BeginToggleWatched unmarks a watched movie, or marks it watched with the
// watchlist rule applied.
func (s *Synchronizer) BeginToggleWatched(movie domain.MovieRecord) ([]Change, error) {
	m, ok := s.mirrors[domain.ListWatched]
	if !ok {
		return nil, ErrNotObserved
	}
	if m.Contains(movie.ID) {
		return []Change{s.beginRemove(m, movie.ID)}, nil
	}
	return s.BeginMarkWatched(movie), nil
}

// Commit performs the durable write for a change.
func (s *Synchronizer) Commit(ctx context.Context, c Change) error {
	return commit(ctx, s.repo, c)
}

// Settle reverts c in the mirror if err is non-nil.
func (s *Synchronizer) Settle(c Change, err error) {
	if err == nil || !c.applied {
		return
	}
	m, ok := s.mirrors[c.List]
	if !ok {
		return
	}
	s.logger.Warn("reverting optimistic change", "list", c.List, "kind", c.Kind, "movieID", c.Movie.ID, "error", err)
	switch c.Kind {
	case ChangeAdd:
		m.remove(c.Movie.ID)
	case ChangeRemove:
		m.restore(c.Movie, c.index)
	}
}

// SettleAll settles changes against the errors returned by CommitAll.
func (s *Synchronizer) SettleAll(changes []Change, errs []error) error {
	// Revert in reverse so restored positions line up.
	for i := len(changes) - 1; i >= 0; i-- {
		var err error
		if i < len(errs) {
			err = errs[i]
		}
		s.Settle(changes[i], err)
	}
	return errors.Join(errs...)
}

// Toggle is BeginToggle, Commit and Settle in one call.
func (s *Synchronizer) Toggle(ctx context.Context, key domain.ListKey, movie domain.MovieRecord) (Change, error) {
	c, err := s.BeginToggle(key, movie)
	if err != nil {
		return c, err
	}
	err = s.Commit(ctx, c)
	s.Settle(c, err)
	return c, err
}

// Remove is BeginRemove, Commit and Settle in one call.
func (s *Synchronizer) Remove(ctx context.Context, key domain.ListKey, id domain.MovieID) error {
	c, err := s.BeginRemove(key, id)
	if err != nil {
		return err
	}
	err = s.Commit(ctx, c)
	s.Settle(c, err)
	return err
}

// MarkWatched applies the watched rule synchronously.
func (s *Synchronizer) MarkWatched(ctx context.Context, movie domain.MovieRecord) error {
	changes := s.BeginMarkWatched(movie)
	return s.SettleAll(changes, CommitAll(ctx, s.repo, changes))
}

func (s *Synchronizer) beginAdd(m *Mirror, movie domain.MovieRecord) Change {
	c := Change{List: m.Key(), Kind: ChangeAdd, Movie: movie}
	c.applied = m.insert(movie)
	return c
}

func (s *Synchronizer) beginRemove(m *Mirror, id domain.MovieID) Change {
	c := Change{List: m.Key(), Kind: ChangeRemove, Movie: domain.MovieRecord{ID: id}}
	if rec, at, ok := m.remove(id); ok {
		c.Movie = rec
		c.applied = true
		c.index = at
	}
	return c
}
