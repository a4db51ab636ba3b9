package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/movienight/movienight/internal/domain"
	"github.com/movienight/movienight/internal/search"
	"github.com/movienight/movienight/internal/tui/styles"
)

// Spinner frames for loading animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerFrame returns the spinner glyph for frame
func SpinnerFrame(frame int) string {
	return spinnerFrames[frame%len(spinnerFrames)]
}

// Layout constants for list columns
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2
)

// markOrder is the order status marks are drawn in front of a title
var markOrder = []domain.ListKey{domain.ListFavorites, domain.ListWatchlist, domain.ListWatched}

// StatusFunc reports which lists a movie is on
type StatusFunc func(id domain.MovieID) []domain.ListKey

// ListColumn is a scrollable, filterable list of movies
type ListColumn struct {
	items []domain.ListItem

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	title     string
	emptyText string
	status    StatusFunc

	// Loading state
	loading      bool
	spinnerFrame int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filterQuery  string
	filtered     []search.FilterResult // nil when no query
}

// NewListColumn creates a new list column with the given title
func NewListColumn(title string) *ListColumn {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &ListColumn{
		title:       title,
		emptyText:   "No items",
		filterInput: ti,
	}
}

// Update handles navigation and filter typing
func (c *ListColumn) Update(msg tea.Msg) (*ListColumn, tea.Cmd) {
	if !c.focused {
		return c, nil
	}
	keyMsg, isKey := msg.(tea.KeyMsg)

	// Typing into the filter
	if c.filterActive && c.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, ListColumnKeys.Escape):
				c.clearFilter()
				return c, nil
			case key.Matches(keyMsg, ListColumnKeys.Enter):
				c.filterInput.Blur()
				return c, nil
			case key.Matches(keyMsg, ListColumnKeys.Clear):
				if c.filterInput.Value() == "" {
					c.clearFilter()
					return c, nil
				}
			}
		}

		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		return c, cmd
	}

	if !isKey {
		return c, nil
	}

	// Filter applied but blurred: navigation over the matches
	if c.filterActive {
		switch {
		case key.Matches(keyMsg, ListColumnKeys.Escape):
			c.clearFilter()
			return c, nil
		case key.Matches(keyMsg, ListColumnKeys.Filter):
			c.filterInput.Focus()
			return c, nil
		}
	}

	count := c.ItemCount()
	if count == 0 {
		return c, nil
	}

	switch {
	case key.Matches(keyMsg, ListColumnKeys.Down):
		if c.cursor < count-1 {
			c.cursor++
			c.ensureVisible()
		}
	case key.Matches(keyMsg, ListColumnKeys.Up):
		if c.cursor > 0 {
			c.cursor--
			c.ensureVisible()
		}
	case key.Matches(keyMsg, ListColumnKeys.Home):
		c.cursor = 0
		c.offset = 0
	case key.Matches(keyMsg, ListColumnKeys.End):
		c.cursor = count - 1
		c.ensureVisible()
	case key.Matches(keyMsg, ListColumnKeys.HalfDown):
		c.moveCursor(c.maxVisible / 2)
	case key.Matches(keyMsg, ListColumnKeys.HalfUp):
		c.moveCursor(-c.maxVisible / 2)
	case key.Matches(keyMsg, ListColumnKeys.PageDown):
		c.moveCursor(c.maxVisible)
	case key.Matches(keyMsg, ListColumnKeys.PageUp):
		c.moveCursor(-c.maxVisible)
	}

	return c, nil
}

// View renders the column inside its border
func (c *ListColumn) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}

	content := c.renderContent()

	// Subtract frame (border) size so total rendered size equals c.width x c.height
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(c.width - frameW).
		Height(c.height - frameH).
		Render(content)
}

func (c *ListColumn) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

func (c *ListColumn) Width() int  { return c.width }
func (c *ListColumn) Height() int { return c.height }

func (c *ListColumn) SetFocused(focused bool) {
	c.focused = focused
}

func (c *ListColumn) IsFocused() bool {
	return c.focused
}

func (c *ListColumn) Title() string {
	return c.title
}

func (c *ListColumn) SetTitle(title string) {
	c.title = title
}

// ApplyTheme re-reads the filter colors after a theme switch
func (c *ListColumn) ApplyTheme() {
	c.filterInput.PromptStyle = styles.FilterPromptStyle
	c.filterInput.TextStyle = styles.FilterStyle
}

// SetEmptyText sets the message shown when there is nothing to list
func (c *ListColumn) SetEmptyText(text string) {
	c.emptyText = text
}

// SetStatusFunc sets the lookup used to draw list marks
func (c *ListColumn) SetStatusFunc(fn StatusFunc) {
	c.status = fn
}

func (c *ListColumn) SetLoading(loading bool) {
	c.loading = loading
}

func (c *ListColumn) IsLoading() bool {
	return c.loading
}

// SetSpinnerFrame updates the spinner animation frame
func (c *ListColumn) SetSpinnerFrame(frame int) {
	c.spinnerFrame = frame
}

// SetItems replaces the list contents. The cursor stays on the same movie
// when it is still present, and an active filter is re-applied.
func (c *ListColumn) SetItems(items []domain.ListItem) {
	var selected domain.MovieID
	if item := c.SelectedItem(); item != nil {
		selected = item.GetID()
	}

	c.loading = false
	c.items = items
	if c.filterQuery != "" {
		c.filtered = search.Filter(c.filterQuery, c.items)
	}

	c.cursor = 0
	if selected != "" {
		for i := 0; i < c.ItemCount(); i++ {
			if c.itemAt(i).GetID() == selected {
				c.cursor = i
				break
			}
		}
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	c.ensureVisible()
}

// Items returns the unfiltered contents
func (c *ListColumn) Items() []domain.ListItem {
	return c.items
}

// SelectedItem returns the item under the cursor, or nil
func (c *ListColumn) SelectedItem() domain.ListItem {
	count := c.ItemCount()
	if count == 0 || c.cursor >= count {
		return nil
	}
	return c.itemAt(c.cursor)
}

func (c *ListColumn) SelectedIndex() int {
	return c.cursor
}

func (c *ListColumn) SetSelectedIndex(idx int) {
	last := c.ItemCount() - 1
	if last < 0 {
		c.cursor = 0
		return
	}
	c.cursor = max(0, min(idx, last))
	c.ensureVisible()
}

// ItemCount returns the number of visible (filtered) items
func (c *ListColumn) ItemCount() int {
	if c.filtered != nil {
		return len(c.filtered)
	}
	return len(c.items)
}

func (c *ListColumn) IsEmpty() bool {
	return c.ItemCount() == 0
}

// ToggleFilter activates the filter input
func (c *ListColumn) ToggleFilter() {
	c.filterActive = true
	c.filterInput.Focus()
	c.recalcMaxVisible()
}

// IsFiltering returns true if filter mode is active
func (c *ListColumn) IsFiltering() bool {
	return c.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (c *ListColumn) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

// FilterQuery returns the current filter text
func (c *ListColumn) FilterQuery() string {
	return c.filterQuery
}

// ClearFilter deactivates the filter and shows all items
func (c *ListColumn) ClearFilter() {
	c.clearFilter()
}

// Internal methods

func (c *ListColumn) itemAt(i int) domain.ListItem {
	if c.filtered != nil {
		return c.filtered[i].Item
	}
	return c.items[i]
}

func (c *ListColumn) matchesAt(i int) []int {
	if c.filtered != nil {
		return c.filtered[i].MatchedIndexes
	}
	return nil
}

func (c *ListColumn) moveCursor(delta int) {
	count := c.ItemCount()
	if count == 0 {
		return
	}
	c.cursor = max(0, min(c.cursor+delta, count-1))
	c.ensureVisible()
}

func (c *ListColumn) recalcMaxVisible() {
	// Interior height minus title line and scroll indicators
	interiorHeight := c.height - BorderHeight
	c.maxVisible = interiorHeight - ScrollIndicatorLines - 1
	if c.filterActive {
		c.maxVisible--
	}
	if c.maxVisible < 1 {
		c.maxVisible = 1
	}
}

func (c *ListColumn) ensureVisible() {
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
}

func (c *ListColumn) clearFilter() {
	c.filterActive = false
	c.filterQuery = ""
	c.filtered = nil
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.cursor = 0
	c.offset = 0
	c.recalcMaxVisible()
}

func (c *ListColumn) applyFilter() {
	query := strings.TrimSpace(c.filterInput.Value())
	c.filterQuery = query

	if query == "" {
		c.filtered = nil
	} else {
		c.filtered = search.Filter(query, c.items)
	}

	// Reset cursor to first match
	c.cursor = 0
	c.offset = 0
}

// Rendering

func (c *ListColumn) renderContent() string {
	itemWidth := c.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	titleLine := styles.AccentStyle.Render(styles.Truncate(c.title, itemWidth))

	if c.loading {
		spinner := styles.SpinnerStyle.Render(SpinnerFrame(c.spinnerFrame))
		loadingLine := spinner + styles.DimStyle.Render(" Loading...")
		return titleLine + "\n" + " " + "\n" + loadingLine + "\n" + " "
	}

	count := c.ItemCount()
	if count == 0 {
		emptyMsg := styles.DimStyle.Render(c.emptyText)
		if c.filterActive && c.filterQuery != "" {
			emptyMsg = styles.DimStyle.Render("No matches")
		}
		content := titleLine + "\n" + " " + "\n" + emptyMsg + "\n" + " "
		if c.filterActive {
			content += "\n" + c.renderFilterBar()
		}
		return content
	}

	end := min(c.offset+c.maxVisible, count)

	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		lines = append(lines, c.renderItem(c.itemAt(i), c.matchesAt(i), i == c.cursor, itemWidth))
	}

	// Always reserve the indicator lines to prevent layout shifts
	header := " "
	if c.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterActive {
		content += "\n" + c.renderFilterBar()
	}
	return content
}

func (c *ListColumn) renderItem(item domain.ListItem, matched []int, selected bool, width int) string {
	var on []domain.ListKey
	if c.status != nil {
		on = c.status(item.GetID())
	}

	parts := make([]styles.RowPart, 0, len(markOrder)+3)
	for _, k := range markOrder {
		mark := " "
		fg := styles.ListColor(k)
		if containsKey(on, k) {
			mark = styles.ListChar(k)
		}
		parts = append(parts, styles.RowPart{Text: mark, Foreground: &fg})
	}

	rating := ""
	if r := item.GetRating(); r > 0 {
		rating = fmt.Sprintf("★ %.1f", r)
	}

	title := item.GetTitle()
	if y := item.GetYear(); y > 0 {
		title = fmt.Sprintf("%s (%d)", title, y)
	}

	// marks(3) + space + gap before rating + margins(2)
	availableForTitle := width - len(markOrder) - 1 - lipgloss.Width(rating) - 1 - 2
	if availableForTitle < 5 {
		availableForTitle = 5
	}
	title = styles.Truncate(title, availableForTitle)

	parts = append(parts, styles.RowPart{Text: " "})
	parts = append(parts, highlightParts(title, matched, selected)...)

	if rating != "" {
		gap := availableForTitle - lipgloss.Width(title) + 1
		star := styles.StarColor
		parts = append(parts,
			styles.RowPart{Text: strings.Repeat(" ", max(gap, 1))},
			styles.RowPart{Text: rating, Foreground: &star},
		)
	}

	return styles.RenderListRow(parts, selected, width)
}

// highlightParts splits title so fuzzy-matched runes render in the accent color
func highlightParts(title string, matched []int, selected bool) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}

	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	accent := styles.Primary
	if selected {
		accent = styles.FavoriteColor
	}

	var parts []styles.RowPart
	var run []rune
	runHit := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		p := styles.RowPart{Text: string(run)}
		if runHit {
			p.Foreground = &accent
		}
		parts = append(parts, p)
		run = run[:0]
	}
	// matched holds byte offsets
	for i, r := range title {
		if hit[i] != runHit {
			flush()
			runHit = hit[i]
		}
		run = append(run, r)
	}
	flush()
	return parts
}

func (c *ListColumn) renderFilterBar() string {
	input := c.filterInput.View()

	countStr := ""
	if c.filterQuery != "" {
		countStr = styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", c.ItemCount(), len(c.items)))
	}

	return input + countStr
}

func containsKey(keys []domain.ListKey, k domain.ListKey) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
