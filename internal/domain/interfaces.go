package domain

// ListItem is the interface for anything a movie list column can render.
// MovieRecord (persisted lists) and MovieSummary (catalog results) both
// implement it.
type ListItem interface {
	// GetID returns the movie identifier
	GetID() MovieID

	// GetTitle returns the display title
	GetTitle() string

	// GetYear returns the release year (0 if unknown)
	GetYear() int

	// GetRating returns the 0-10 vote average (0 if unknown)
	GetRating() float64

	// GetDescription returns secondary info for display
	GetDescription() string
}
