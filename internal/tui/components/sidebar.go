package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/movienight/movienight/internal/tui/styles"
)

// TabStatus represents the load status of a tab's lists
type TabStatus int

const (
	TabIdle TabStatus = iota
	TabLoading
	TabReady
	TabError
)

// TabState tracks what the sidebar shows next to a tab name
type TabState struct {
	Status TabStatus
	Count  int // -1 hides the count
}

// TabItem implements list.Item for a screen tab
type TabItem struct {
	Name  string
	State TabState
	Frame int
}

func (i TabItem) FilterValue() string { return i.Name }

func (i TabItem) Title() string {
	switch i.State.Status {
	case TabLoading:
		return SpinnerFrame(i.Frame) + " " + i.Name
	case TabError:
		return "✗ " + i.Name
	}
	if i.State.Count >= 0 {
		return fmt.Sprintf("  %s (%d)", i.Name, i.State.Count)
	}
	return "  " + i.Name
}

func (i TabItem) Description() string { return "" }

// Border overhead for the sidebar panel
const BorderSize = 2

// Sidebar lists the screens and shows which one is active
type Sidebar struct {
	list         list.Model
	focused      bool
	width        int
	height       int
	names        []string
	states       []TabState
	spinnerFrame int
}

// NewSidebar creates a sidebar for the given tab names
func NewSidebar(names []string) Sidebar {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "MovieNight"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowPagination(false)

	s := Sidebar{
		list:   l,
		names:  names,
		states: make([]TabState, len(names)),
	}
	for i := range s.states {
		s.states[i].Count = -1
	}
	s.ApplyTheme()
	s.refreshItems()
	return s
}

// ApplyTheme re-reads colors after a theme switch
func (s *Sidebar) ApplyTheme() {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Foreground(styles.Text).
		Background(styles.CardLight).
		Padding(0, 1)
	delegate.Styles.NormalTitle = lipgloss.NewStyle().
		Foreground(styles.Secondary).
		Padding(0, 1)
	s.list.SetDelegate(delegate)

	s.list.Styles.Title = lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1)
}

// SetTabState updates the status shown for one tab
func (s *Sidebar) SetTabState(index int, state TabState) {
	if index < 0 || index >= len(s.states) {
		return
	}
	s.states[index] = state
	s.refreshItems()
}

// TabState returns the status shown for one tab
func (s Sidebar) TabState(index int) TabState {
	if index < 0 || index >= len(s.states) {
		return TabState{Count: -1}
	}
	return s.states[index]
}

// SetSpinnerFrame updates the spinner animation frame
func (s *Sidebar) SetSpinnerFrame(frame int) {
	s.spinnerFrame = frame
	s.refreshItems()
}

// refreshItems rebuilds the list items with current state
func (s *Sidebar) refreshItems() {
	items := make([]list.Item, len(s.names))
	for i, name := range s.names {
		items[i] = TabItem{
			Name:  name,
			State: s.states[i],
			Frame: s.spinnerFrame,
		}
	}
	s.list.SetItems(items)
}

// SetSize updates the component dimensions
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
	s.list.SetSize(width-BorderSize, height-BorderSize)
}

// SetFocused sets the focus state
func (s *Sidebar) SetFocused(focused bool) {
	s.focused = focused
}

// IsFocused returns the focus state
func (s Sidebar) IsFocused() bool {
	return s.focused
}

// SelectedIndex returns the selected index
func (s Sidebar) SelectedIndex() int {
	return s.list.Index()
}

// SetSelectedIndex sets the selected index
func (s *Sidebar) SetSelectedIndex(index int) {
	s.list.Select(index)
}

// Update handles messages
func (s Sidebar) Update(msg tea.Msg) (Sidebar, tea.Cmd) {
	if !s.focused {
		return s, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "j", "down":
			s.list.CursorDown()
		case "k", "up":
			s.list.CursorUp()
		case "g":
			s.list.Select(0)
		case "G":
			s.list.Select(len(s.list.Items()) - 1)
		}
	}

	return s, nil
}

// View renders the component
func (s Sidebar) View() string {
	style := styles.InactiveBorder
	if s.focused {
		style = styles.ActiveBorder
	}

	// Subtract frame (border) size so total rendered size equals s.width x s.height
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(s.width - frameW).
		Height(s.height - frameH).
		Render(s.list.View())
}
