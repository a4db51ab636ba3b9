package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/screen"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = m.stateBeforeHelp()
		}
		return m, nil
	}

	// Route to the search modal if open
	if m.SearchModal.IsVisible() {
		return m.handleSearchModal(msg)
	}

	// Filter typing swallows every key
	if col := m.activeColumn(); col != nil && col.IsFilterTyping() && m.State == StateBrowsing {
		_, cmd := col.Update(msg)
		m.updateInspector()
		return m, cmd
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.helpFromDetail = m.State == StateDetail
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.ToggleTheme):
		dark := m.Theme.BeginToggle()
		m.applyTheme()
		return m, CommitThemeCmd(m.Theme, dark)
	}

	if m.State == StateDetail {
		return m.handleDetailKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.NextTab):
		return m.switchTab((m.Tab + 1) % Tab(len(tabNames)))
	case key.Matches(msg, Keys.PrevTab):
		return m.switchTab((m.Tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames)))
	case key.Matches(msg, Keys.Tab1):
		return m.switchTab(TabDiscover)
	case key.Matches(msg, Keys.Tab2):
		return m.switchTab(TabFavorites)
	case key.Matches(msg, Keys.Tab3):
		return m.switchTab(TabWatchlist)
	case key.Matches(msg, Keys.Tab4):
		return m.switchTab(TabProfile)

	case key.Matches(msg, Keys.Escape):
		if col := m.activeColumn(); col != nil && col.IsFiltering() {
			col.ClearFilter()
			m.updateInspector()
			return m, nil
		}
		if m.Tab == TabDiscover && m.searchQuery != "" {
			m.clearSearch()
			return m, nil
		}
		return m, nil

	case key.Matches(msg, Keys.Refresh):
		cmd := m.activateTab(m.Tab)
		if m.Tab == TabDiscover && m.searchQuery == "" {
			m.discoverLoading = true
			cmd = tea.Batch(cmd, ReloadPopularCmd(m.Catalog, max(m.popularPage, 1)))
		}
		return m, cmd
	}

	if m.Tab == TabProfile {
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Filter):
		m.activeColumn().ToggleFilter()
		return m, nil

	case key.Matches(msg, Keys.Search):
		if m.Tab != TabDiscover {
			return m, nil
		}
		m.SearchModal.Show("Search movies", m.searchQuery)
		return m, nil

	case key.Matches(msg, Keys.More):
		if m.Tab != TabDiscover || m.searchQuery != "" || m.discoverLoading {
			return m, nil
		}
		m.discoverLoading = true
		return m, LoadPopularCmd(m.Catalog, m.popularPage+1)

	case key.Matches(msg, Keys.Enter):
		return m.openDetail()

	case key.Matches(msg, Keys.Favorite):
		if m.Tab == TabFavorites {
			return m.removeSelected(domain.ListFavorites)
		}
		return m.toggleSelected(domain.ListFavorites)

	case key.Matches(msg, Keys.Watched):
		return m.markSelectedWatched()

	case key.Matches(msg, Keys.Remove):
		if list, ok := removeList[m.Tab]; ok {
			return m.removeSelected(list)
		}
		return m, nil
	}

	// Navigation goes to the active column
	col := m.activeColumn()
	_, cmd := col.Update(msg)
	m.updateInspector()
	return m, cmd
}

// handleSearchModal feeds keys to the search modal and runs the query on submit
func (m Model) handleSearchModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.SearchModal, cmd, submitted = m.SearchModal.Update(msg)
	if !submitted {
		return m, cmd
	}

	query := strings.TrimSpace(m.SearchModal.Value())
	m.SearchModal.Hide()
	if query == "" {
		m.clearSearch()
		return m, nil
	}

	m.searchQuery = query
	m.searchResults = nil
	m.discoverLoading = true
	m.refreshTab(TabDiscover)
	return m, SearchCmd(m.Catalog, query)
}

// handleDetailKey handles keys while the detail view is open
func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Back):
		return m.closeDetail()
	case key.Matches(msg, Keys.Favorite):
		return m.toggleDetail(domain.ListFavorites)
	case key.Matches(msg, Keys.Watchlist):
		return m.toggleDetail(domain.ListWatchlist)
	case key.Matches(msg, Keys.Watched):
		return m.toggleDetail(domain.ListWatched)
	}

	var cmd tea.Cmd
	m.DetailView, cmd = m.DetailView.Update(msg)
	return m, cmd
}

// toggleSelected optimistically toggles the selected movie on list
func (m Model) toggleSelected(list domain.ListKey) (tea.Model, tea.Cmd) {
	rec, ok := m.selectedRecord()
	if !ok {
		return m, nil
	}
	if m.screenLoading() {
		cmd := m.setStatus("Still loading lists...", false)
		return m, cmd
	}
	c, err := m.screens[m.Tab].BeginToggle(list, rec)
	if err != nil {
		return m, m.notObserved(err)
	}
	return m.commit([]screen.Change{c})
}

// removeSelected optimistically removes the selected movie from list
func (m Model) removeSelected(list domain.ListKey) (tea.Model, tea.Cmd) {
	rec, ok := m.selectedRecord()
	if !ok {
		return m, nil
	}
	if m.screenLoading() {
		cmd := m.setStatus("Still loading lists...", false)
		return m, cmd
	}
	c, err := m.screens[m.Tab].BeginRemove(list, rec.ID)
	if err != nil {
		return m, m.notObserved(err)
	}
	return m.commit([]screen.Change{c})
}

// markSelectedWatched applies the watched rule: on the watchlist tab the
// movie moves to watched, elsewhere watched is toggled
func (m Model) markSelectedWatched() (tea.Model, tea.Cmd) {
	rec, ok := m.selectedRecord()
	if !ok {
		return m, nil
	}
	if m.screenLoading() {
		cmd := m.setStatus("Still loading lists...", false)
		return m, cmd
	}
	sc := m.screens[m.Tab]

	var changes []screen.Change
	if m.Tab == TabWatchlist {
		changes = sc.BeginMarkWatched(rec)
	} else {
		var err error
		changes, err = sc.BeginToggleWatched(rec)
		if err != nil {
			// screens that do not mirror watched still write through
			changes = sc.BeginMarkWatched(rec)
		}
	}
	return m.commit(changes)
}

// screenLoading reports whether the active tab is still on its first load
func (m Model) screenLoading() bool {
	sc := m.screens[m.Tab]
	return sc != nil && sc.Loading()
}

// commit shows optimistic changes and writes them in the background
func (m Model) commit(changes []screen.Change) (tea.Model, tea.Cmd) {
	m.pending[m.Tab]++
	m.refreshTab(m.Tab)
	return m, CommitChangesCmd(m.Tab, m.Lists, changes)
}

// toggleDetail optimistically toggles the detail movie on list
func (m Model) toggleDetail(list domain.ListKey) (tea.Model, tea.Cmd) {
	if m.Detail == nil {
		return m, nil
	}
	if !m.Detail.Loaded() {
		return m, m.setStatus("Still loading list status...", false)
	}
	changes := m.Detail.BeginToggle(list)
	m.DetailView.SetStatus(m.Detail.Status())
	return m, CommitDetailCmd(m.Detail, list, changes)
}

func (m Model) selectedRecord() (domain.MovieRecord, bool) {
	col := m.activeColumn()
	if col == nil {
		return domain.MovieRecord{}, false
	}
	item := col.SelectedItem()
	if item == nil {
		return domain.MovieRecord{}, false
	}
	return m.recordFor(item)
}

func (m *Model) notObserved(err error) tea.Cmd {
	if errors.Is(err, screen.ErrNotObserved) {
		return m.setStatus("Open the movie to change that list", false)
	}
	return m.setError(ErrMsg{Err: err, Context: "updating lists"})
}

func (m *Model) clearSearch() {
	m.searchQuery = ""
	m.searchResults = nil
	m.discoverLoading = false
	m.refreshTab(TabDiscover)
}

func (m Model) stateBeforeHelp() ApplicationState {
	if m.helpFromDetail && m.Detail != nil {
		return StateDetail
	}
	return StateBrowsing
}
