package tui

import (
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/screen"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ScreenLoadedMsg carries freshly read lists for a tab
type ScreenLoadedMsg struct {
	Tab      Tab
	Snapshot screen.Snapshot
}

// PopularLoadedMsg signals that popular movies have been loaded.
// Pages > 1 with Append set extend the current list.
type PopularLoadedMsg struct {
	Movies []domain.MovieSummary
	Page   int
	Append bool
	Err    error
}

// SearchResultsMsg signals that search results are ready
type SearchResultsMsg struct {
	Query   string
	Results []domain.MovieSummary
	Err     error
}

// DetailsLoadedMsg signals that catalog details for a movie arrived
type DetailsLoadedMsg struct {
	ID      domain.MovieID
	Details *domain.MovieDetails
	Err     error
}

// DetailStatusMsg carries list membership for the open detail view
type DetailStatusMsg struct {
	Detail *screen.DetailStatus
	Status screen.Membership
	Err    error
}

// ChangesCommittedMsg reports the durable writes behind optimistic list
// changes made on a tab
type ChangesCommittedMsg struct {
	Tab     Tab
	Changes []screen.Change
	Errs    []error
}

// DetailCommittedMsg reports the durable writes behind a detail toggle
type DetailCommittedMsg struct {
	Detail  *screen.DetailStatus
	Key     domain.ListKey
	Changes []screen.Change
	Errs    []error
}

// ThemeLoadedMsg signals that the saved theme was read
type ThemeLoadedMsg struct {
	Err error
}

// ThemeCommittedMsg reports the write behind a theme toggle
type ThemeCommittedMsg struct {
	Dark bool
	Err  error
}

// StatsLoadedMsg carries list counts for the profile tab
type StatsLoadedMsg struct {
	Stats domain.Stats
	Err   error
}

// TickMsg is a general tick message for animations
type TickMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
