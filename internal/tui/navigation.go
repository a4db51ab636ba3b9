package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/movienight/movienight/internal/screen"
	"github.com/movienight/movienight/internal/tui/components"
)

// activeColumn returns the list column of the current tab, nil on Profile
func (m Model) activeColumn() *components.ListColumn {
	return m.Columns[m.Tab]
}

// switchTab makes tab the active screen and reloads it
func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	if col := m.activeColumn(); col != nil && col.IsFiltering() {
		col.ClearFilter()
	}
	m.Tab = tab
	m.Sidebar.SetSelectedIndex(int(tab))
	m.updateLayout()
	m.updateInspector()
	return m, m.activateTab(tab)
}

// activateTab starts a reload of everything tab shows. Every screen
// refreshes from the store each time it becomes active.
func (m *Model) activateTab(tab Tab) tea.Cmd {
	if tab == TabProfile {
		m.Sidebar.SetTabState(int(tab), components.TabState{Status: components.TabLoading, Count: -1})
		return LoadStatsCmd(m.Lists)
	}

	sc := m.screens[tab]
	if sc == nil {
		return nil
	}
	sc.BeginLoad()
	m.refreshTab(tab)
	return ActivateScreenCmd(tab, sc)
}

// openDetail shows the detail view for the selected row
func (m Model) openDetail() (tea.Model, tea.Cmd) {
	col := m.activeColumn()
	if col == nil {
		return m, nil
	}
	item := col.SelectedItem()
	rec, ok := m.recordFor(item)
	if !ok {
		return m, nil
	}

	m.Detail = screen.NewDetailStatus(m.Lists, m.logger, rec)
	m.DetailView.SetItem(nil)
	m.DetailView.SetItem(item)
	m.DetailView.SetLoading(true)
	m.DetailView.SetFocused(true)
	m.DetailView.SetHints("f favorite · a watchlist · w watched · esc back")
	if rec.PosterURL != "" {
		m.DetailView.SetPosterURL(rec.PosterURL)
	} else {
		m.DetailView.SetPosterURL(m.Catalog.PosterURL(rec.PosterPath))
	}
	m.State = StateDetail
	m.updateLayout()

	return m, tea.Batch(
		LoadDetailStatusCmd(m.Detail),
		LoadDetailsCmd(m.Catalog, rec.ID),
	)
}

// closeDetail returns to the list; the tab becomes active again
func (m Model) closeDetail() (tea.Model, tea.Cmd) {
	m.State = StateBrowsing
	m.Detail = nil
	m.DetailView.SetItem(nil)
	m.updateLayout()
	return m, m.activateTab(m.Tab)
}
