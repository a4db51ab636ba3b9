package lists

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/movienight/movienight/internal/domain"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Export formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// ErrUnknownFormat is returned for an export format other than json, yaml or toml.
var ErrUnknownFormat = errors.New("unknown export format")

// Export is a snapshot of every list and the settings.
type Export struct {
	Favorites []domain.MovieRecord `json:"favorites"`
	Watchlist []domain.MovieRecord `json:"watchlist"`
	Watched   []domain.MovieRecord `json:"watched"`
	Settings  *domain.UserSettings `json:"settings,omitempty"` // nil when the document carried none
}

// List returns the records exported for key.
func (e *Export) List(key domain.ListKey) []domain.MovieRecord {
	switch key {
	case domain.ListFavorites:
		return e.Favorites
	case domain.ListWatchlist:
		return e.Watchlist
	case domain.ListWatched:
		return e.Watched
	}
	return nil
}

func (e *Export) setList(key domain.ListKey, list []domain.MovieRecord) {
	switch key {
	case domain.ListFavorites:
		e.Favorites = list
	case domain.ListWatchlist:
		e.Watchlist = list
	case domain.ListWatched:
		e.Watched = list
	}
}

// ImportResult counts what Import added per list.
type ImportResult struct {
	Added            map[domain.ListKey]int
	Skipped          int // duplicates and invalid records
	SettingsReplaced bool
}

// Export reads every list and the settings.
func (r *Repository) Export(ctx context.Context) (Export, error) {
	var out Export
	for _, key := range domain.AllLists() {
		list, err := r.GetList(ctx, key)
		if err != nil {
			return out, fmt.Errorf("export %s: %w", key, err)
		}
		out.setList(key, list)
	}
	settings, err := r.GetUserSettings(ctx)
	if err != nil {
		return out, fmt.Errorf("export settings: %w", err)
	}
	out.Settings = &settings
	return out, nil
}

// Import merges doc into the stored lists. Records already present keep
// their position and payload, imported records keep their addedAt. Settings
// are replaced only when doc carries them.
func (r *Repository) Import(ctx context.Context, doc Export) (ImportResult, error) {
	res := ImportResult{Added: make(map[domain.ListKey]int)}
	for _, key := range domain.AllLists() {
		for _, movie := range doc.List(key) {
			added, err := r.addToList(ctx, key, movie, true)
			if errors.Is(err, domain.ErrInvalidMovie) {
				r.logger.Warn("skipping invalid record on import", "list", key, "id", movie.ID, "error", err)
				res.Skipped++
				continue
			}
			if err != nil {
				return res, fmt.Errorf("import %s: %w", key, err)
			}
			if added {
				res.Added[key]++
			} else {
				res.Skipped++
			}
		}
	}
	if doc.Settings != nil {
		if err := r.SaveUserSettings(ctx, *doc.Settings); err != nil {
			return res, fmt.Errorf("import settings: %w", err)
		}
		res.SettingsReplaced = true
	}
	r.logger.Info("import complete",
		"favorites", res.Added[domain.ListFavorites],
		"watchlist", res.Added[domain.ListWatchlist],
		"watched", res.Added[domain.ListWatched],
		"skipped", res.Skipped,
		"settings", res.SettingsReplaced)
	return res, nil
}

// Encode renders the export in format.
func (e Export) Encode(format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return json.MarshalIndent(e, "", "  ")
	case FormatYAML, FormatTOML:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	// yaml and toml are rendered from the JSON form so field names and
	// movie ids read the same in every format
	tree, err := jsonTree(e)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(format) == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(normalize(tree, false)); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return toml.Marshal(normalize(tree, true))
}

// ParseExport decodes an exported JSON document. A raw dump of the mobile
// app's storage (storage key to JSON string) is accepted as well.
func ParseExport(data []byte) (Export, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Export{}, fmt.Errorf("%w: %v", domain.ErrDeserialization, err)
	}

	for k := range raw {
		if strings.HasPrefix(k, "@MovieNight:") {
			return parseStorageDump(raw)
		}
	}

	var doc Export
	if err := json.Unmarshal(data, &doc); err != nil {
		return Export{}, fmt.Errorf("%w: %v", domain.ErrDeserialization, err)
	}
	// fields missing from a settings object keep their defaults
	if doc.Settings != nil {
		settings := domain.DefaultUserSettings()
		if err := json.Unmarshal(raw["settings"], &settings); err != nil {
			return Export{}, fmt.Errorf("%w: settings: %v", domain.ErrDeserialization, err)
		}
		doc.Settings = &settings
	}
	return doc, nil
}

func parseStorageDump(raw map[string]json.RawMessage) (Export, error) {
	var doc Export
	for _, key := range domain.AllLists() {
		storageKey, _ := key.StorageKey()
		value, ok := raw[storageKey]
		if !ok {
			continue
		}
		var list []domain.MovieRecord
		if err := decodeStored(value, &list); err != nil {
			return Export{}, fmt.Errorf("%w: %s: %v", domain.ErrDeserialization, storageKey, err)
		}
		doc.setList(key, list)
	}
	if value, ok := raw[domain.SettingsStorageKey]; ok {
		settings := domain.DefaultUserSettings()
		if err := decodeStored(value, &settings); err != nil {
			return Export{}, fmt.Errorf("%w: %s: %v", domain.ErrDeserialization, domain.SettingsStorageKey, err)
		}
		doc.Settings = &settings
	}
	return doc, nil
}

// decodeStored decodes a storage value that is either inline JSON or a JSON
// string holding JSON, the way string-only key-value stores dump it.
func decodeStored(value json.RawMessage, v any) error {
	value = bytes.TrimSpace(value)
	if len(value) > 0 && value[0] == '"' {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return err
		}
		value = []byte(s)
	}
	return json.Unmarshal(value, v)
}

func jsonTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// normalize turns whole floats back into integers and, for TOML which
// cannot represent null, drops null values.
func normalize(v any, dropNulls bool) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil && dropNulls {
				continue
			}
			out[k] = normalize(val, dropNulls)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if val == nil && dropNulls {
				continue
			}
			out = append(out, normalize(val, dropNulls))
		}
		return out
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	default:
		return v
	}
}
