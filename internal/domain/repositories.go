package domain

import (
	"context"
)

// Catalog provides read access to the remote movie database
type Catalog interface {
	// FetchPopular returns one page of currently popular movies
	FetchPopular(ctx context.Context, page int) ([]MovieSummary, error)

	// FetchDetails returns the full record for one movie
	FetchDetails(ctx context.Context, id MovieID) (*MovieDetails, error)

	// Search returns movies whose title matches query
	Search(ctx context.Context, query string, page int) ([]MovieSummary, error)

	// PosterURL resolves a relative poster path, or a placeholder when empty
	PosterURL(path string) string
}
