package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MovieID identifies a movie. Catalog ids arrive as JSON numbers, records
// written by hand may carry strings; both decode into the same canonical form.
type MovieID string

// MovieIDFromInt converts a numeric catalog id.
func MovieIDFromInt(id int64) MovieID {
	return MovieID(strconv.FormatInt(id, 10))
}

// ParseMovieID trims user input into a canonical MovieID.
func ParseMovieID(s string) (MovieID, error) {
	id := MovieID(s).Canonical()
	if id == "" {
		return "", fmt.Errorf("%w: empty movie id", ErrInvalidMovie)
	}
	return id, nil
}

// Canonical returns the form ids are stored and compared in: integer text
// such as "007" or "+7" becomes "7", anything else is only trimmed.
func (id MovieID) Canonical() MovieID {
	s := strings.TrimSpace(string(id))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return MovieIDFromInt(n)
	}
	return MovieID(s)
}

// Equal reports whether both ids name the same movie.
func (id MovieID) Equal(other MovieID) bool {
	return id == other || id.Canonical() == other.Canonical()
}

func (id MovieID) String() string { return string(id) }

// Int returns the numeric form of the id, if it has one.
func (id MovieID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return n, err == nil
}

// MarshalJSON writes integer ids as numbers so lists stay compatible with
// the layout the mobile app produced.
func (id MovieID) MarshalJSON() ([]byte, error) {
	if n, ok := id.Int(); ok && MovieIDFromInt(n) == id {
		return []byte(strconv.FormatInt(n, 10)), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts a JSON number or a JSON string.
func (id *MovieID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = MovieID(s).Canonical()
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("movie id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = MovieIDFromInt(i)
		return nil
	}
	// Float ids (e.g. 1.0 from a lossy encoder) keep their literal text.
	*id = MovieID(n.String())
	return nil
}

// MovieRecord is the persisted representation of a movie the user acted on.
// Identity is by ID alone; everything else is payload copied verbatim.
type MovieRecord struct {
	ID           MovieID   `json:"id" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	PosterURL    string    `json:"posterUrl,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	VoteAverage  *float64  `json:"vote_average,omitempty" validate:"omitempty,gte=0,lte=10"`
	Genres       []string  `json:"genres,omitempty"`
	AddedAt      time.Time `json:"addedAt,omitempty"`

	// Extra holds fields this version does not know about so a write
	// never drops data produced elsewhere.
	Extra map[string]json.RawMessage `json:"-"`
}

var recordFields = map[string]bool{
	"id": true, "title": true, "poster_path": true, "backdrop_path": true,
	"posterUrl": true, "overview": true, "release_date": true,
	"vote_average": true, "genres": true, "addedAt": true,
}

type movieRecordAlias MovieRecord

// MarshalJSON merges Extra back into the encoded object.
func (m MovieRecord) MarshalJSON() ([]byte, error) {
	alias := movieRecordAlias(m)
	var added *time.Time
	if !m.AddedAt.IsZero() {
		t := m.AddedAt.UTC()
		added = &t
	}
	base, err := json.Marshal(struct {
		movieRecordAlias
		AddedAt *time.Time `json:"addedAt,omitempty"`
	}{alias, added})
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return base, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	for k, v := range m.Extra {
		if !recordFields[k] {
			fields[k] = v
		}
	}
	return json.Marshal(fields)
}

// UnmarshalJSON decodes known fields and keeps the rest in Extra.
func (m *MovieRecord) UnmarshalJSON(data []byte) error {
	var alias movieRecordAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	alias.Extra = nil
	for k, v := range fields {
		if recordFields[k] {
			continue
		}
		if alias.Extra == nil {
			alias.Extra = make(map[string]json.RawMessage)
		}
		alias.Extra[k] = v
	}
	*m = MovieRecord(alias)
	return nil
}

// Year returns the release year parsed from ReleaseDate (0 if unknown).
func (m MovieRecord) Year() int {
	return yearOf(m.ReleaseDate)
}

// Rating returns the vote average or 0 when absent.
func (m MovieRecord) Rating() float64 {
	if m.VoteAverage == nil {
		return 0
	}
	return *m.VoteAverage
}

// ListItem implementation for list rendering

func (m *MovieRecord) GetID() MovieID  { return m.ID }
func (m *MovieRecord) GetTitle() string { return m.Title }
func (m *MovieRecord) GetYear() int     { return m.Year() }
func (m *MovieRecord) GetRating() float64 {
	return m.Rating()
}

func (m *MovieRecord) GetDescription() string {
	if !m.AddedAt.IsZero() {
		return "added " + m.AddedAt.Local().Format("2006-01-02")
	}
	if y := m.Year(); y > 0 {
		return strconv.Itoa(y)
	}
	return ""
}

// Genre is a catalog genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MovieSummary is a catalog list entry (popular, search).
type MovieSummary struct {
	ID           MovieID `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int64 `json:"genre_ids,omitempty"`
}

// Record converts a summary into a storable record. AddedAt is left for
// the repository to assign.
func (s MovieSummary) Record() MovieRecord {
	vote := s.VoteAverage
	return MovieRecord{
		ID:           s.ID,
		Title:        s.Title,
		PosterPath:   s.PosterPath,
		BackdropPath: s.BackdropPath,
		Overview:     s.Overview,
		ReleaseDate:  s.ReleaseDate,
		VoteAverage:  &vote,
	}
}

func (s *MovieSummary) GetID() MovieID      { return s.ID }
func (s *MovieSummary) GetTitle() string    { return s.Title }
func (s *MovieSummary) GetYear() int        { return yearOf(s.ReleaseDate) }
func (s *MovieSummary) GetRating() float64  { return s.VoteAverage }
func (s *MovieSummary) GetDescription() string {
	if y := s.GetYear(); y > 0 {
		return fmt.Sprintf("%d  ★ %.1f", y, s.VoteAverage)
	}
	return fmt.Sprintf("★ %.1f", s.VoteAverage)
}

// MovieDetails is the full catalog record for one movie.
type MovieDetails struct {
	MovieSummary
	Genres  []Genre `json:"genres"`
	Runtime int     `json:"runtime"`
	Tagline string  `json:"tagline"`
}

// GenreNames returns up to limit genre names (all when limit <= 0).
func (d MovieDetails) GenreNames(limit int) []string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		if limit > 0 && len(names) == limit {
			break
		}
		names = append(names, g.Name)
	}
	return names
}

// Record converts details into a storable record. posterURL is the absolute
// poster URL, persisted alongside the path for offline display.
func (d MovieDetails) Record(posterURL string) MovieRecord {
	rec := d.MovieSummary.Record()
	rec.PosterURL = posterURL
	rec.Genres = d.GenreNames(0)
	return rec
}

// FormattedRuntime returns the runtime as "2h 28m".
func (d MovieDetails) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	h, m := d.Runtime/60, d.Runtime%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// UserSettings holds user preferences persisted next to the lists.
type UserSettings struct {
	DarkMode bool `json:"darkMode"`
}

// DefaultUserSettings is used when nothing has been saved yet.
func DefaultUserSettings() UserSettings {
	return UserSettings{DarkMode: true}
}

// Stats summarizes list sizes for the profile screen.
type Stats struct {
	Favorites int `json:"favorites"`
	Watchlist int `json:"watchlist"`
	Watched   int `json:"watched"`
}

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
