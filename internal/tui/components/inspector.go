package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/screen"
	"github.com/movienight/movienight/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
)

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector displays one movie. In the list layout it previews the selected
// row; as the detail view it also shows catalog details and list membership.
type Inspector struct {
	title   string
	item    domain.ListItem
	details *domain.MovieDetails

	status    screen.Membership
	hasStatus bool
	loading   bool
	posterURL string
	hints     string

	width      int
	height     int
	focused    bool
	offset     int // scroll offset
	maxVisible int // max visible lines
	frame      int
}

// NewInspector creates a new inspector component
func NewInspector(title string) Inspector {
	return Inspector{title: title}
}

// SetItem sets the movie to display and drops anything loaded for the
// previous one
func (i *Inspector) SetItem(item domain.ListItem) {
	if i.item != nil && item != nil && i.item.GetID() == item.GetID() {
		i.item = item
		return
	}
	i.item = item
	i.details = nil
	i.hasStatus = false
	i.posterURL = ""
	i.offset = 0
}

// Item returns the displayed movie
func (i Inspector) Item() domain.ListItem {
	return i.item
}

// SetDetails attaches catalog details for the displayed movie
func (i *Inspector) SetDetails(d *domain.MovieDetails) {
	i.details = d
	i.loading = false
}

// Details returns the attached catalog details, if any
func (i Inspector) Details() *domain.MovieDetails {
	return i.details
}

// SetStatus shows list membership badges
func (i *Inspector) SetStatus(m screen.Membership) {
	i.status = m
	i.hasStatus = true
}

// SetPosterURL sets the poster link shown in the footer
func (i *Inspector) SetPosterURL(url string) {
	i.posterURL = url
}

// SetHints sets the key hints shown at the bottom
func (i *Inspector) SetHints(hints string) {
	i.hints = hints
}

func (i *Inspector) SetLoading(loading bool) {
	i.loading = loading
}

// SetSpinnerFrame updates the spinner animation frame
func (i *Inspector) SetSpinnerFrame(frame int) {
	i.frame = frame
}

func (i *Inspector) SetFocused(focused bool) {
	i.focused = focused
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// border, scroll indicators, title and blank line
	i.maxVisible = height - InspectorBorderHeight - InspectorScrollIndicators - 2
	if i.maxVisible < 1 {
		i.maxVisible = 1
	}
}

// HasItem returns true if there is an item to display
func (i Inspector) HasItem() bool {
	return i.item != nil
}

// Update scrolls the body when focused
func (i Inspector) Update(msg tea.Msg) (Inspector, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !i.focused {
		return i, nil
	}
	switch {
	case key.Matches(keyMsg, InspectorKeys.Down):
		i.offset++
	case key.Matches(keyMsg, InspectorKeys.Up):
		i.offset = max(0, i.offset-1)
	case key.Matches(keyMsg, InspectorKeys.Home):
		i.offset = 0
	case key.Matches(keyMsg, InspectorKeys.HalfDown):
		i.offset += i.maxVisible / 2
	case key.Matches(keyMsg, InspectorKeys.HalfUp):
		i.offset = max(0, i.offset-i.maxVisible/2)
	}
	return i, nil
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder
	if i.focused {
		style = styles.ActiveBorder
	}

	// Border takes 2 chars (1 each side), leave 1 char safety margin
	contentWidth := i.width - 3
	if contentWidth < 10 {
		contentWidth = 10
	}
	content := i.render(contentWidth)

	titleLine := styles.AccentStyle.Render(styles.Truncate(i.title, contentWidth))

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	availableForBody := i.maxVisible - len(headerLines) - len(footerLines)
	if availableForBody < 1 {
		availableForBody = 1
	}

	// Clamp body scroll offset
	totalBodyLines := len(bodyLines)
	maxOffset := max(totalBodyLines-availableForBody, 0)
	offset := min(i.offset, maxOffset)

	end := min(offset+availableForBody, totalBodyLines)
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < totalBodyLines {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if len(headerLines) > 0 {
		parts = append(parts, strings.Join(headerLines, "\n"))
	}
	parts = append(parts, up)
	if len(visibleBody) > 0 {
		parts = append(parts, strings.Join(visibleBody, "\n"))
	}
	for j := len(visibleBody); j < availableForBody; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if len(footerLines) > 0 {
		parts = append(parts, strings.Join(footerLines, "\n"))
	}

	frameW, frameH := style.GetFrameSize()

	return style.
		Width(i.width - frameW).
		Height(i.height - frameH).
		Render(strings.Join(parts, "\n"))
}

func (i Inspector) render(width int) inspectorContent {
	if i.item == nil {
		return inspectorContent{body: styles.DimStyle.Render("No movie selected")}
	}
	return inspectorContent{
		header: i.renderHeader(width),
		body:   i.renderBody(width),
		footer: i.renderFooter(width),
	}
}

func (i Inspector) renderHeader(width int) string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(styles.Truncate(i.item.GetTitle(), width)))
	b.WriteString("\n")

	// Meta line: Year · Runtime · Genres
	var meta []string
	if y := i.item.GetYear(); y > 0 {
		meta = append(meta, fmt.Sprintf("%d", y))
	}
	if i.details != nil {
		if rt := i.details.FormattedRuntime(); rt != "" {
			meta = append(meta, rt)
		}
	}
	if genres := i.genres(); len(genres) > 0 {
		meta = append(meta, strings.Join(genres, ", "))
	}
	if len(meta) > 0 {
		b.WriteString(styles.DimStyle.Render(styles.Truncate(strings.Join(meta, " · "), width)))
		b.WriteString("\n")
	}

	// Rating as five stars
	if r := i.item.GetRating(); r > 0 {
		b.WriteString(styles.RenderStars(r))
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  %.1f/10", r)))
		b.WriteString("\n")
	}

	if i.hasStatus {
		b.WriteString(renderBadges(i.status))
	} else if i.loading {
		b.WriteString(styles.SpinnerStyle.Render(SpinnerFrame(i.frame)))
		b.WriteString(styles.DimStyle.Render(" Loading..."))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (i Inspector) renderBody(width int) string {
	var b strings.Builder

	if i.details != nil && i.details.Tagline != "" {
		b.WriteString(styles.DimStyle.Italic(true).Render(wordWrap(i.details.Tagline, width)))
		b.WriteString("\n\n")
	}

	overview := i.overview()
	if overview == "" {
		b.WriteString(styles.DimStyle.Render("No overview available."))
		return b.String()
	}

	bodyWidth := min(width-2, 80)
	b.WriteString(styles.SubtitleStyle.Render(wordWrap(overview, bodyWidth)))
	return b.String()
}

func (i Inspector) renderFooter(width int) string {
	var lines []string
	if i.posterURL != "" || i.hints != "" {
		lines = append(lines, styles.DimStyle.Render(strings.Repeat("─", width)))
	}
	if i.posterURL != "" {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate(i.posterURL, width)))
	}
	if i.hints != "" {
		lines = append(lines, styles.DimStyle.Render(styles.Truncate(i.hints, width)))
	}
	return strings.Join(lines, "\n")
}

func (i Inspector) overview() string {
	if i.details != nil && i.details.Overview != "" {
		return i.details.Overview
	}
	switch v := i.item.(type) {
	case *domain.MovieRecord:
		return v.Overview
	case *domain.MovieSummary:
		return v.Overview
	}
	return ""
}

func (i Inspector) genres() []string {
	if i.details != nil {
		return i.details.GenreNames(3)
	}
	if rec, ok := i.item.(*domain.MovieRecord); ok && len(rec.Genres) > 0 {
		return rec.Genres[:min(len(rec.Genres), 3)]
	}
	return nil
}

// renderBadges renders one badge per list, lit when the movie is on it
func renderBadges(m screen.Membership) string {
	badges := make([]string, 0, len(markOrder))
	for _, k := range markOrder {
		label := styles.ListChar(k) + " " + k.Label()
		if m.In(k) {
			badges = append(badges, lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(styles.ListColor(k)).
				Padding(0, 1).
				Render(label))
		} else {
			badges = append(badges, styles.DimBadgeStyle.Render(label))
		}
	}
	return strings.Join(badges, " ")
}

// splitLines splits a string into lines, returning empty slice for empty string
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// wordWrap wraps text to the specified width
func wordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lineLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := lipgloss.Width(word)

		if lineLen+wordLen+1 > width && lineLen > 0 {
			result.WriteString("\n")
			lineLen = 0
		}
		if lineLen > 0 {
			result.WriteString(" ")
			lineLen++
		}

		result.WriteString(word)
		lineLen += wordLen
	}

	return result.String()
}
