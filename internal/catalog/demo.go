package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/movienight/movienight/internal/domain"
)

//go:embed demo_movies.json
var demoMoviesJSON []byte

const (
	demoPageSize     = 20
	demoImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

type demoMovie struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	Overview     string   `json:"overview"`
	ReleaseDate  string   `json:"release_date"`
	VoteAverage  float64  `json:"vote_average"`
	Genres       []string `json:"genres"`
	Runtime      int      `json:"runtime"`
}

// Demo serves a fixed set of movies without network access. It is used when
// no TMDB credentials are configured.
type Demo struct {
	movies  []demoMovie
	latency time.Duration
	logger  *slog.Logger
}

// NewDemo loads the embedded demo movies. latency simulates network delay.
func NewDemo(latency time.Duration, logger *slog.Logger) (*Demo, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var movies []demoMovie
	if err := json.Unmarshal(demoMoviesJSON, &movies); err != nil {
		return nil, fmt.Errorf("%w: demo catalog: %v", domain.ErrDeserialization, err)
	}
	return &Demo{movies: movies, latency: latency, logger: logger}, nil
}

func (d *Demo) FetchPopular(ctx context.Context, page int) ([]domain.MovieSummary, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * demoPageSize
	if start >= len(d.movies) {
		return []domain.MovieSummary{}, nil
	}
	end := min(start+demoPageSize, len(d.movies))

	out := make([]domain.MovieSummary, 0, end-start)
	for _, m := range d.movies[start:end] {
		out = append(out, m.summary())
	}
	return out, nil
}

func (d *Demo) FetchDetails(ctx context.Context, id domain.MovieID) (*domain.MovieDetails, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	for _, m := range d.movies {
		if domain.MovieIDFromInt(m.ID).Equal(id) {
			return m.details(), nil
		}
	}
	return nil, fmt.Errorf("%w: movie %s", domain.ErrNotFound, id)
}

// Search matches titles case- and accent-insensitively.
func (d *Demo) Search(ctx context.Context, query string, page int) ([]domain.MovieSummary, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	if page > 1 || query == "" {
		return []domain.MovieSummary{}, nil
	}
	out := []domain.MovieSummary{}
	for _, m := range d.movies {
		if fuzzy.MatchNormalizedFold(query, m.Title) {
			out = append(out, m.summary())
		}
	}
	d.logger.Debug("demo search", "query", query, "results", len(out))
	return out, nil
}

func (d *Demo) PosterURL(path string) string {
	return PosterURL(demoImageBaseURL, path)
}

func (d *Demo) wait(ctx context.Context) error {
	if d.latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.latency):
		return nil
	}
}

func (m demoMovie) summary() domain.MovieSummary {
	return domain.MovieSummary{
		ID:           domain.MovieIDFromInt(m.ID),
		Title:        m.Title,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		Overview:     m.Overview,
		ReleaseDate:  m.ReleaseDate,
		VoteAverage:  m.VoteAverage,
	}
}

func (m demoMovie) details() *domain.MovieDetails {
	d := &domain.MovieDetails{MovieSummary: m.summary(), Runtime: m.Runtime}
	for _, name := range m.Genres {
		d.Genres = append(d.Genres, domain.Genre{Name: name})
	}
	return d
}
