package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/movienight/movienight/internal/config"
	"github.com/movienight/movienight/internal/domain"
)

// ErrNotListable is returned by Dump for stores that cannot enumerate keys.
var ErrNotListable = errors.New("store cannot list its keys")

// Open creates the store selected by cfg.Driver.
func Open(cfg config.StorageConfig) (domain.Store, error) {
	switch cfg.Driver {
	case config.StorageBolt, "":
		s, err := NewBoltStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageSQLite:
		s, err := NewSQLiteStore(cfg.Dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// KeyLister is implemented by stores that can enumerate their keys.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Dump returns every key of s with its value. Values that are not JSON are
// returned as JSON strings.
func Dump(ctx context.Context, s domain.Store) (map[string]json.RawMessage, error) {
	lister, ok := s.(KeyLister)
	if !ok {
		return nil, ErrNotListable
	}
	keys, err := lister.Keys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		value, found, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		if !json.Valid(value) {
			value, _ = json.Marshal(string(value))
		}
		out[k] = value
	}
	return out, nil
}
