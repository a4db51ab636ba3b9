// Package screen keeps per-screen in-memory copies of the persisted lists
// consistent with the list repository.
package screen

import (
	"sync"

	"github.com/movienight/movienight/internal/domain"
)

// Phase is the load state of a Mirror.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "idle"
	}
}

// Mirror is a screen's in-memory copy of one list.
type Mirror struct {
	key domain.ListKey

	mu     sync.RWMutex
	phase  Phase
	loaded bool
	items  []domain.MovieRecord
}

func newMirror(key domain.ListKey) *Mirror {
	return &Mirror{key: key}
}

// Key returns the list this mirror tracks.
func (m *Mirror) Key() domain.ListKey { return m.key }

func (m *Mirror) Phase() Phase {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.phase
}

// Loaded reports whether at least one load has completed.
func (m *Mirror) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Items returns a copy of the mirrored records.
func (m *Mirror) Items() []domain.MovieRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.MovieRecord, len(m.items))
	copy(out, m.items)
	return out
}

func (m *Mirror) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Contains reports whether a record with id is mirrored.
func (m *Mirror) Contains(id domain.MovieID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexOf(id) >= 0
}

// startLoad moves a never-loaded mirror into Loading. A loaded mirror stays
// Ready while it refreshes.
func (m *Mirror) startLoad() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return false
	}
	m.phase = PhaseLoading
	return true
}

// finishLoad applies a load result. On error a never-loaded mirror becomes
// an empty Ready list; a loaded one keeps its contents.
func (m *Mirror) finishLoad(items []domain.MovieRecord, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		if !m.loaded {
			m.items = nil
		}
	} else {
		m.items = items
	}
	m.loaded = true
	m.phase = PhaseReady
}

func (m *Mirror) insert(rec domain.MovieRecord) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(rec.ID) >= 0 {
		return false
	}
	m.items = append(m.items, rec)
	return true
}

// remove drops the first record with id and returns it with its position.
func (m *Mirror) remove(id domain.MovieID) (domain.MovieRecord, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexOf(id)
	if i < 0 {
		return domain.MovieRecord{}, -1, false
	}
	rec := m.items[i]
	m.items = append(m.items[:i:i], m.items[i+1:]...)
	return rec, i, true
}

func (m *Mirror) restore(rec domain.MovieRecord, at int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexOf(rec.ID) >= 0 {
		return
	}
	if at < 0 || at > len(m.items) {
		at = len(m.items)
	}
	items := make([]domain.MovieRecord, 0, len(m.items)+1)
	items = append(items, m.items[:at]...)
	items = append(items, rec)
	items = append(items, m.items[at:]...)
	m.items = items
}

func (m *Mirror) indexOf(id domain.MovieID) int {
	for i := range m.items {
		if m.items[i].ID.Equal(id) {
			return i
		}
	}
	return -1
}
