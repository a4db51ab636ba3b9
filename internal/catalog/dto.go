package catalog

import "github.com/movienight/movienight/internal/domain"

// pageResponse is the envelope of /movie/popular and /search/movie.
type pageResponse struct {
	Page         int        `json:"page"`
	Results      []movieDTO `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

type movieDTO struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int64 `json:"genre_ids"`
}

type detailsDTO struct {
	movieDTO
	Genres  []genreDTO `json:"genres"`
	Runtime *int       `json:"runtime"`
	Tagline string     `json:"tagline"`
}

type genreDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// errorResponse is TMDB's error body.
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

func mapSummary(m movieDTO) domain.MovieSummary {
	return domain.MovieSummary{
		ID:           domain.MovieIDFromInt(m.ID),
		Title:        m.Title,
		PosterPath:   deref(m.PosterPath),
		BackdropPath: deref(m.BackdropPath),
		Overview:     m.Overview,
		ReleaseDate:  m.ReleaseDate,
		VoteAverage:  m.VoteAverage,
		GenreIDs:     m.GenreIDs,
	}
}

func mapSummaries(in []movieDTO) []domain.MovieSummary {
	out := make([]domain.MovieSummary, 0, len(in))
	for _, m := range in {
		out = append(out, mapSummary(m))
	}
	return out
}

func mapDetails(d detailsDTO) *domain.MovieDetails {
	details := &domain.MovieDetails{
		MovieSummary: mapSummary(d.movieDTO),
		Tagline:      d.Tagline,
	}
	if d.Runtime != nil {
		details.Runtime = *d.Runtime
	}
	for _, g := range d.Genres {
		details.Genres = append(details.Genres, domain.Genre{ID: g.ID, Name: g.Name})
		details.GenreIDs = append(details.GenreIDs, g.ID)
	}
	return details
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
