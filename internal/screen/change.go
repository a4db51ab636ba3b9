package screen

import (
	"context"
	"errors"
	"fmt"

	"github.com/movienight/movienight/internal/domain"
)

// ErrNotObserved is returned when a screen acts on a list it does not track.
var ErrNotObserved = errors.New("list not observed by this screen")

// ErrAborted marks a change that was not attempted because an earlier change
// in the same batch failed.
var ErrAborted = errors.New("aborted after earlier failure")

// ChangeKind is the direction of a list mutation.
type ChangeKind int

const (
	ChangeAdd ChangeKind = iota
	ChangeRemove
)

func (k ChangeKind) String() string {
	if k == ChangeRemove {
		return "remove"
	}
	return "add"
}

// Change is one optimistic mutation awaiting its durable write.
type Change struct {
	List  domain.ListKey
	Kind  ChangeKind
	Movie domain.MovieRecord

	// applied is set when the owner's in-memory state was mutated and
	// must be reverted if the write fails.
	applied bool
	index   int
}

// Applied reports whether the change was reflected in memory.
func (c Change) Applied() bool { return c.applied }

// ListRepository is the subset of the list repository screens depend on.
type ListRepository interface {
	GetList(ctx context.Context, key domain.ListKey) ([]domain.MovieRecord, error)
	AddToList(ctx context.Context, key domain.ListKey, movie domain.MovieRecord) (bool, error)
	RemoveFromList(ctx context.Context, key domain.ListKey, id domain.MovieID) (bool, error)
	IsInList(ctx context.Context, key domain.ListKey, id domain.MovieID) (bool, error)
	GetUserSettings(ctx context.Context) (domain.UserSettings, error)
	SaveUserSettings(ctx context.Context, settings domain.UserSettings) error
}

// commit writes a single change through the repository.
func commit(ctx context.Context, repo ListRepository, c Change) error {
	var err error
	switch c.Kind {
	case ChangeAdd:
		_, err = repo.AddToList(ctx, c.List, c.Movie)
	case ChangeRemove:
		_, err = repo.RemoveFromList(ctx, c.List, c.Movie.ID)
	default:
		err = fmt.Errorf("unknown change kind %d", c.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.Kind, c.List, err)
	}
	return nil
}

// CommitAll writes changes in order. After the first failure the remaining
// changes are not attempted and report ErrAborted. The returned slice is
// aligned with changes.
func CommitAll(ctx context.Context, repo ListRepository, changes []Change) []error {
	errs := make([]error, len(changes))
	var failed error
	for i, c := range changes {
		if failed != nil {
			errs[i] = fmt.Errorf("%w: %w", ErrAborted, failed)
			continue
		}
		if err := commit(ctx, repo, c); err != nil {
			errs[i] = err
			failed = err
		}
	}
	return errs
}
