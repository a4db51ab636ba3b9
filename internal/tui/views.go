package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/tui/components"
	"github.com/movienight/movienight/internal/tui/styles"
)

// AppVersion is shown in the about section
const AppVersion = "1.0.0"

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	contentHeight := m.Height - ChromeHeight
	layout := m.calculateLayout(m.Width)

	var panels []string
	if layout.sidebarWidth > 0 {
		panels = append(panels, m.Sidebar.View())
	}

	switch {
	case m.State == StateDetail:
		panels = append(panels, m.DetailView.View())
	case m.Tab == TabProfile:
		panels = append(panels, m.renderProfile(layout.mainWidth, contentHeight))
	default:
		col := m.activeColumn()
		panels = append(panels, col.View())
		if layout.inspectorWidth > 0 {
			panels = append(panels, m.Inspector.View())
		}
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, panels...)
	view := lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())

	if m.SearchModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.SearchModal.View())
	}

	return view
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	// Left side: spinner or status message
	var left string
	switch {
	case m.StatusMsg != "":
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	case m.busy():
		left = styles.SpinnerStyle.Render(components.SpinnerFrame(m.SpinnerFrame)) +
			" " + styles.DimStyle.Render("Loading...")
	}

	center := renderHints(m.hints())

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(m.Width-leftWidth-rightWidth, 0)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// busy reports whether anything the user is looking at is still loading
func (m Model) busy() bool {
	if m.State == StateDetail {
		return m.Detail != nil && !m.Detail.Loaded()
	}
	if m.Tab == TabDiscover && m.discoverLoading {
		return true
	}
	if sc := m.screens[m.Tab]; sc != nil {
		return sc.Loading()
	}
	return m.Tab == TabProfile && !m.statsLoaded
}

// hints returns the key hints for the current screen as key/description pairs
func (m Model) hints() [][2]string {
	if m.State == StateDetail {
		return [][2]string{{"f", "favorite"}, {"a", "watchlist"}, {"w", "watched"}, {"esc", "back"}}
	}
	switch m.Tab {
	case TabDiscover:
		if m.searchQuery != "" {
			return [][2]string{{"s", "search"}, {"esc", "popular"}, {"f", "favorite"}, {"w", "watched"}}
		}
		return [][2]string{{"/", "filter"}, {"s", "search"}, {"f", "favorite"}, {"w", "watched"}, {"n", "more"}}
	case TabFavorites:
		return [][2]string{{"/", "filter"}, {"enter", "details"}, {"x", "remove"}}
	case TabWatchlist:
		return [][2]string{{"/", "filter"}, {"w", "mark watched"}, {"x", "remove"}}
	default:
		return [][2]string{{"t", "dark mode"}, {"r", "refresh"}}
	}
}

func renderHints(hints [][2]string) string {
	parts := make([]string, len(hints))
	for i, h := range hints {
		parts[i] = styles.AccentStyle.Render(h[0]) + styles.DimStyle.Render(" "+h[1])
	}
	return strings.Join(parts, styles.DimStyle.Render("  "))
}

// renderProfile renders the profile tab: stats, preferences, about
func (m Model) renderProfile(width, height int) string {
	style := styles.ActiveBorder
	frameW, frameH := style.GetFrameSize()
	inner := max(width-frameW-2, 10)

	section := func(title string) string {
		return styles.AccentStyle.Bold(true).Render(title)
	}
	stat := func(k domain.ListKey, n int) string {
		label := lipgloss.NewStyle().Foreground(styles.ListColor(k)).Render(styles.ListChar(k))
		value := "…"
		if m.statsLoaded {
			value = fmt.Sprintf("%d", n)
		}
		return fmt.Sprintf("  %s %-10s %s", label, k.Label(), styles.TitleStyle.Render(value))
	}

	darkMode := styles.DimBadgeStyle.Render("off")
	if m.Theme.DarkMode() {
		darkMode = styles.BadgeStyle.Render("on")
	}

	lines := []string{
		styles.AccentStyle.Render("Profile"),
		"",
		section("My stats"),
		stat(domain.ListWatched, m.stats.Watched),
		stat(domain.ListFavorites, m.stats.Favorites),
		stat(domain.ListWatchlist, m.stats.Watchlist),
		"",
		section("Preferences"),
		fmt.Sprintf("  Dark mode  %s", darkMode),
		styles.DimStyle.Render("  Use the dark theme. Press t to toggle."),
		"",
		section("About"),
		"  " + styles.TitleStyle.Render("MovieNight"),
		"  " + styles.DimStyle.Render("Version "+AppVersion),
		styles.SubtitleStyle.Render(indent(wrap(
			"Discover popular movies and keep track of your favorites, your watchlist "+
				"and what you have already watched. Lists are saved locally.", inner-2), "  ")),
	}

	return style.
		Width(width - frameW).
		Height(height - frameH).
		Render(strings.Join(lines, "\n"))
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      LISTS
  j/k        Up/down               f      Toggle favorite
  g/G        First/last item       w      Toggle watched
  Ctrl+u/d   Scroll half page      a      Toggle watchlist (details)
  Enter      Movie details         x      Remove from list
  Esc        Back / clear          n      More popular movies
  Tab/1-4    Switch tab

SEARCH                          OTHER
  /          Filter this list      r      Refresh
  s          Search the catalog    t      Toggle dark mode
                                   q      Quit
                                   ?      This help

Press ? or esc to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

func wrap(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
