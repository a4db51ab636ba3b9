// Package lists manages the persisted movie lists (favorites, watchlist,
// watched) and user settings on top of a domain.Store.
package lists

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/movienight/movienight/internal/domain"
)

// Repository provides CRUD over named movie lists with de-duplication by id.
type Repository struct {
	store    domain.Store
	logger   *slog.Logger
	now      func() time.Time
	validate *validator.Validate
	locks    keyLocks
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the clock used for addedAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// NewRepository creates a repository over store.
func NewRepository(store domain.Store, logger *slog.Logger, opts ...Option) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Repository{
		store:    store,
		logger:   logger,
		now:      time.Now,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WatchedResult reports what MarkWatched changed.
type WatchedResult struct {
	Added                bool // newly added to watched
	RemovedFromWatchlist bool
}

// GetList returns the list stored under key. A list that was never written
// is empty, not an error.
func (r *Repository) GetList(ctx context.Context, key domain.ListKey) ([]domain.MovieRecord, error) {
	storageKey, err := key.StorageKey()
	if err != nil {
		return nil, err
	}
	return r.read(ctx, storageKey)
}

// AddToList appends movie to the list unless a record with the same id is
// already there. The existing record is left untouched in that case.
func (r *Repository) AddToList(ctx context.Context, key domain.ListKey, movie domain.MovieRecord) (bool, error) {
	return r.addToList(ctx, key, movie, false)
}

// addToList stamps addedAt with the clock unless keepAddedAt is set and the
// record already carries one.
func (r *Repository) addToList(ctx context.Context, key domain.ListKey, movie domain.MovieRecord, keepAddedAt bool) (bool, error) {
	storageKey, err := key.StorageKey()
	if err != nil {
		return false, err
	}
	movie.ID = movie.ID.Canonical()
	if err := r.Validate(movie); err != nil {
		return false, err
	}

	unlock := r.locks.lock(storageKey)
	defer unlock()

	list, err := r.read(ctx, storageKey)
	if err != nil {
		return false, err
	}
	if indexOf(list, movie.ID) >= 0 {
		r.logger.Debug("movie already in list", "list", key, "movieID", movie.ID)
		return false, nil
	}

	if !keepAddedAt || movie.AddedAt.IsZero() {
		movie.AddedAt = r.now().UTC()
	}
	list = append(list, movie)
	if err := r.write(ctx, storageKey, list); err != nil {
		r.logger.Error("failed to add movie to list", "list", key, "movieID", movie.ID, "error", err)
		return false, err
	}
	r.logger.Info("added movie to list", "list", key, "movieID", movie.ID, "count", len(list))
	return true, nil
}

// RemoveFromList drops every record with the given id. It reports false,
// without writing, when nothing matched.
func (r *Repository) RemoveFromList(ctx context.Context, key domain.ListKey, id domain.MovieID) (bool, error) {
	storageKey, err := key.StorageKey()
	if err != nil {
		return false, err
	}

	unlock := r.locks.lock(storageKey)
	defer unlock()

	list, err := r.read(ctx, storageKey)
	if err != nil {
		return false, err
	}

	kept := list[:0:0]
	for _, m := range list {
		if !m.ID.Equal(id) {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(list) {
		return false, nil
	}

	if err := r.write(ctx, storageKey, kept); err != nil {
		r.logger.Error("failed to remove movie from list", "list", key, "movieID", id, "error", err)
		return false, err
	}
	r.logger.Info("removed movie from list", "list", key, "movieID", id, "count", len(kept))
	return true, nil
}

// IsInList reports whether a record with id is in the list.
func (r *Repository) IsInList(ctx context.Context, key domain.ListKey, id domain.MovieID) (bool, error) {
	list, err := r.GetList(ctx, key)
	if err != nil {
		return false, err
	}
	return indexOf(list, id) >= 0, nil
}

// MarkWatched adds movie to watched and then drops it from the watchlist.
// The two writes are independent; a failure of the second leaves the first
// in place.
func (r *Repository) MarkWatched(ctx context.Context, movie domain.MovieRecord) (WatchedResult, error) {
	var res WatchedResult

	added, err := r.AddToList(ctx, domain.ListWatched, movie)
	if err != nil {
		return res, err
	}
	res.Added = added

	removed, err := r.RemoveFromList(ctx, domain.ListWatchlist, movie.ID)
	if err != nil {
		return res, fmt.Errorf("remove from watchlist: %w", err)
	}
	res.RemovedFromWatchlist = removed
	return res, nil
}

// GetUserSettings returns the saved settings, or the defaults when none
// were saved or the saved record is unreadable.
func (r *Repository) GetUserSettings(ctx context.Context) (domain.UserSettings, error) {
	data, found, err := r.store.Get(ctx, domain.SettingsStorageKey)
	if err != nil {
		r.logger.Error("failed to read user settings", "error", err)
		return domain.DefaultUserSettings(), err
	}
	if !found {
		return domain.DefaultUserSettings(), nil
	}

	// darkMode absent from the stored object keeps its default
	settings := domain.DefaultUserSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		r.logger.Warn("user settings are malformed, using defaults", "error", err)
		return domain.DefaultUserSettings(), nil
	}
	return settings, nil
}

// SaveUserSettings overwrites the settings record.
func (r *Repository) SaveUserSettings(ctx context.Context, settings domain.UserSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, domain.SettingsStorageKey, data); err != nil {
		r.logger.Error("failed to save user settings", "error", err)
		return err
	}
	r.logger.Info("saved user settings", "darkMode", settings.DarkMode)
	return nil
}

// Stats counts the records in every list. An unreadable list counts as empty.
func (r *Repository) Stats(ctx context.Context) (domain.Stats, error) {
	var stats domain.Stats
	for _, key := range domain.AllLists() {
		list, err := r.GetList(ctx, key)
		if err != nil && !errors.Is(err, domain.ErrDeserialization) {
			return stats, err
		}
		switch key {
		case domain.ListFavorites:
			stats.Favorites = len(list)
		case domain.ListWatchlist:
			stats.Watchlist = len(list)
		case domain.ListWatched:
			stats.Watched = len(list)
		}
	}
	return stats, nil
}

// Validate checks the minimal required subset of a record.
func (r *Repository) Validate(movie domain.MovieRecord) error {
	if err := r.validate.Struct(movie); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s failed %q", domain.ErrInvalidMovie, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", domain.ErrInvalidMovie, err)
	}
	return nil
}

// --- Private helpers ---

func (r *Repository) read(ctx context.Context, storageKey string) ([]domain.MovieRecord, error) {
	data, found, err := r.store.Get(ctx, storageKey)
	if err != nil {
		r.logger.Error("failed to read list", "key", storageKey, "error", err)
		return nil, err
	}
	if !found || len(data) == 0 {
		return []domain.MovieRecord{}, nil
	}

	var list []domain.MovieRecord
	if err := json.Unmarshal(data, &list); err != nil {
		r.logger.Warn("stored list is malformed", "key", storageKey, "error", err)
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDeserialization, storageKey, err)
	}
	if list == nil {
		// stored JSON null
		list = []domain.MovieRecord{}
	}
	return list, nil
}

func (r *Repository) write(ctx context.Context, storageKey string, list []domain.MovieRecord) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, storageKey, data)
}

func indexOf(list []domain.MovieRecord, id domain.MovieID) int {
	for i, m := range list {
		if m.ID.Equal(id) {
			return i
		}
	}
	return -1
}

// ListKeys returns the known list keys in display order.
func ListKeys() []domain.ListKey {
	return domain.AllLists()
}

// ParseListKey resolves a user-supplied list name.
func ParseListKey(name string) (domain.ListKey, error) {
	return domain.ParseListKey(name)
}
