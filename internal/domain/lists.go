package domain

import (
	"fmt"
	"strings"
)

// ListKey names one of the persisted movie lists.
type ListKey string

const (
	ListFavorites ListKey = "favorites"
	ListWatchlist ListKey = "watchlist"
	ListWatched   ListKey = "watched"
)

// Storage keys. These match the keys the mobile app used so a dump of its
// storage imports unchanged.
const (
	storageKeyFavorites = "@MovieNight:favoriteMovies"
	storageKeyWatchlist = "@MovieNight:watchlist"
	storageKeyWatched   = "@MovieNight:watchedMovies"

	// SettingsStorageKey holds the UserSettings record.
	SettingsStorageKey = "@MovieNight:userSettings"
)

// AllLists returns every list key in display order.
func AllLists() []ListKey {
	return []ListKey{ListFavorites, ListWatchlist, ListWatched}
}

// StorageKey returns the store key backing the list.
func (k ListKey) StorageKey() (string, error) {
	switch k {
	case ListFavorites:
		return storageKeyFavorites, nil
	case ListWatchlist:
		return storageKeyWatchlist, nil
	case ListWatched:
		return storageKeyWatched, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownList, string(k))
	}
}

// Label returns the human-readable list name.
func (k ListKey) Label() string {
	switch k {
	case ListFavorites:
		return "Favorites"
	case ListWatchlist:
		return "Watchlist"
	case ListWatched:
		return "Watched"
	default:
		return string(k)
	}
}

// ParseListKey accepts a list name, case-insensitively.
func ParseListKey(s string) (ListKey, error) {
	k := ListKey(strings.ToLower(strings.TrimSpace(s)))
	if _, err := k.StorageKey(); err != nil {
		return "", err
	}
	return k, nil
}
