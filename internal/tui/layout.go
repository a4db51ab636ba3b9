package tui

// Layout proportions
const (
	SidebarWidth    = 22
	ListPercent     = 55 // of the space right of the sidebar
	MinColumnWidth  = 20
	CompactMaxWidth = 70 // below this the sidebar is hidden

	// Vertical layout: single footer line
	ChromeHeight = 1
)

// columnLayout holds calculated widths for the View
type columnLayout struct {
	sidebarWidth   int // 0 if not shown
	listWidth      int // 0 if not shown
	inspectorWidth int // 0 if not shown
	mainWidth      int // detail or profile panel
}

// calculateLayout computes panel widths for the current state
func (m Model) calculateLayout(availableWidth int) columnLayout {
	var layout columnLayout

	if availableWidth >= CompactMaxWidth {
		layout.sidebarWidth = SidebarWidth
	}
	rest := availableWidth - layout.sidebarWidth

	if m.State == StateDetail || m.Tab == TabProfile {
		layout.mainWidth = rest
		return layout
	}

	layout.listWidth = max(rest*ListPercent/100, MinColumnWidth)
	layout.inspectorWidth = rest - layout.listWidth
	if layout.inspectorWidth < MinColumnWidth {
		layout.listWidth = rest
		layout.inspectorWidth = 0
	}
	return layout
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := m.Height - ChromeHeight
	layout := m.calculateLayout(m.Width)

	m.Sidebar.SetSize(layout.sidebarWidth, contentHeight)
	for _, col := range m.Columns {
		col.SetSize(layout.listWidth, contentHeight)
	}
	m.Inspector.SetSize(layout.inspectorWidth, contentHeight)
	m.DetailView.SetSize(layout.mainWidth, contentHeight)
}
