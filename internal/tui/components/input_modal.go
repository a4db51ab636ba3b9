package components

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/movienight/movienight/internal/tui/styles"
)

const modalWidth = 40

// InputModal is a simple text input modal
type InputModal struct {
	visible bool
	title   string
	input   textinput.Model
}

// NewInputModal creates a new input modal
func NewInputModal(placeholder string) InputModal {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	ti.Width = modalWidth - 4
	ti.Prompt = ""

	return InputModal{
		input: ti,
	}
}

// Show displays the modal with a title, prefilled with value
func (m *InputModal) Show(title, value string) {
	m.visible = true
	m.title = title
	m.input.TextStyle = lipgloss.NewStyle().Foreground(styles.Text)
	m.input.PlaceholderStyle = styles.DimStyle
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Value returns the current input value
func (m InputModal) Value() string {
	return m.input.Value()
}

// Update handles input events, returns (modal, cmd, submitted)
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, InputModalKeys.Enter):
			return m, nil, true
		case key.Matches(keyMsg, InputModalKeys.Escape):
			m.Hide()
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Foreground(styles.Text).
		Bold(true).
		Width(modalWidth).
		Background(styles.Card)

	inputStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Background(styles.Card)

	hintStyle := styles.DimStyle.
		Width(modalWidth).
		Background(styles.Card)

	spacer := lipgloss.NewStyle().
		Width(modalWidth).
		Background(styles.Card).
		Render("")

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		spacer,
		inputStyle.Render(m.input.View()),
		spacer,
		hintStyle.Render("enter search · esc cancel"),
	)

	return styles.ModalStyle.Render(content)
}
