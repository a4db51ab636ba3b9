package styles

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/movienight/movienight/internal/domain"
)

// Palette holds the colors that change with the theme
type Palette struct {
	Background    lipgloss.Color
	Text          lipgloss.Color
	Card          lipgloss.Color
	CardLight     lipgloss.Color
	TextSecondary lipgloss.Color
}

// Theme palettes
var (
	DarkPalette = Palette{
		Background:    lipgloss.Color("#121212"),
		Text:          lipgloss.Color("#FFFFFF"),
		Card:          lipgloss.Color("#1E1E1E"),
		CardLight:     lipgloss.Color("#2A2A2A"),
		TextSecondary: lipgloss.Color("#888888"),
	}

	LightPalette = Palette{
		Background:    lipgloss.Color("#F5F5F5"),
		Text:          lipgloss.Color("#333333"),
		Card:          lipgloss.Color("#FFFFFF"),
		CardLight:     lipgloss.Color("#EEEEEE"),
		TextSecondary: lipgloss.Color("#666666"),
	}
)

// Fixed colors
var (
	Primary = lipgloss.Color("#2E5BFF")
	Red     = lipgloss.Color("#F44336")
	Green   = lipgloss.Color("#4CAF50")
	Amber   = lipgloss.Color("#FFC107")

	FavoriteColor  = lipgloss.Color("#FF6B6B")
	WatchedColor   = lipgloss.Color("#2E5BFF")
	WatchlistColor = lipgloss.Color("#FFC107")
	StarColor      = WatchlistColor
)

// Theme-dependent colors, set by SetTheme
var (
	Text      lipgloss.Color
	Secondary lipgloss.Color
	Card      lipgloss.Color
	CardLight lipgloss.Color
)

// Borders
var (
	ActiveBorder   lipgloss.Style
	InactiveBorder lipgloss.Style
)

// Text styles
var (
	TitleStyle     lipgloss.Style
	SubtitleStyle  lipgloss.Style
	DimStyle       lipgloss.Style
	AccentStyle    lipgloss.Style
	ErrorStyle     lipgloss.Style
	SuccessStyle   lipgloss.Style
	HighlightStyle lipgloss.Style
)

// Modal and help styles
var (
	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	HelpKeyStyle    lipgloss.Style
	HelpDescStyle   lipgloss.Style
)

// Badge, spinner and filter styles
var (
	BadgeStyle        lipgloss.Style
	DimBadgeStyle     lipgloss.Style
	SpinnerStyle      lipgloss.Style
	FilterStyle       lipgloss.Style
	FilterPromptStyle lipgloss.Style

	MatchHighlightStyle lipgloss.Style
)

// Raw list status characters (unstyled)
const (
	FavoriteChar  = "♥"
	WatchedChar   = "✓"
	WatchlistChar = "+"

	StarFull  = "★"
	StarHalf  = "½"
	StarEmpty = "☆"
)

var dark = true

func init() {
	SetTheme(true)
}

// IsDark reports the active theme
func IsDark() bool {
	return dark
}

// SetTheme switches every style to the dark or light palette
func SetTheme(isDark bool) {
	dark = isDark
	p := LightPalette
	if isDark {
		p = DarkPalette
	}

	Text = p.Text
	Secondary = p.TextSecondary
	Card = p.Card
	CardLight = p.CardLight

	ActiveBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary)
	InactiveBorder = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Secondary)

	TitleStyle = lipgloss.NewStyle().Foreground(Text).Bold(true)
	SubtitleStyle = lipgloss.NewStyle().Foreground(Text)
	DimStyle = lipgloss.NewStyle().Foreground(Secondary)
	AccentStyle = lipgloss.NewStyle().Foreground(Primary)
	ErrorStyle = lipgloss.NewStyle().Foreground(Red)
	SuccessStyle = lipgloss.NewStyle().Foreground(Green)
	HighlightStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(Primary).
		Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Padding(1, 2).
		Background(Card)
	ModalTitleStyle = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true).
		MarginBottom(1)
	HelpKeyStyle = lipgloss.NewStyle().Foreground(Primary)
	HelpDescStyle = lipgloss.NewStyle().Foreground(Secondary)

	BadgeStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(Primary).
		Padding(0, 1)
	DimBadgeStyle = lipgloss.NewStyle().
		Foreground(Secondary).
		Background(CardLight).
		Padding(0, 1)
	SpinnerStyle = lipgloss.NewStyle().Foreground(Primary)
	FilterStyle = lipgloss.NewStyle().Foreground(Primary)
	FilterPromptStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	MatchHighlightStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)
}

// ListColor returns the status color of a named list
func ListColor(key domain.ListKey) lipgloss.Color {
	switch key {
	case domain.ListFavorites:
		return FavoriteColor
	case domain.ListWatched:
		return WatchedColor
	default:
		return WatchlistColor
	}
}

// ListChar returns the status character of a named list
func ListChar(key domain.ListKey) string {
	switch key {
	case domain.ListFavorites:
		return FavoriteChar
	case domain.ListWatched:
		return WatchedChar
	default:
		return WatchlistChar
	}
}

// Stars renders a 0-10 vote average as five stars, halves rounded down
// below .5.
func Stars(voteAverage float64) string {
	rating := math.Max(0, math.Min(voteAverage, 10)) / 2
	full := int(math.Floor(rating))
	half := rating-float64(full) >= 0.5
	empty := 5 - full
	if half {
		empty--
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(StarFull, full))
	if half {
		b.WriteString(StarHalf)
	}
	b.WriteString(strings.Repeat(StarEmpty, empty))
	return b.String()
}

// RenderStars renders Stars in the star color
func RenderStars(voteAverage float64) string {
	return lipgloss.NewStyle().Foreground(StarColor).Render(Stars(voteAverage))
}

// Helper functions

// Truncate truncates a string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// Pad pads a string to the given width
func Pad(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

// RenderListRow renders a complete list row with uniform background when selected.
// Each part is styled explicitly to avoid ANSI reset code issues.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := CardLight

	var result strings.Builder
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		switch {
		case part.Foreground != nil:
			style = style.Foreground(*part.Foreground)
		case selected:
			style = style.Foreground(Text)
		default:
			style = style.Foreground(Secondary)
		}
		if selected {
			style = style.Background(bg)
		}
		result.WriteString(style.Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	// subtract 2 for left/right margin
	paddingNeeded := width - visibleLen - 2
	if paddingNeeded > 0 {
		padStyle := lipgloss.NewStyle()
		if selected {
			padStyle = padStyle.Background(bg)
		}
		result.WriteString(padStyle.Render(strings.Repeat(" ", paddingNeeded)))
	}

	marginStyle := lipgloss.NewStyle()
	if selected {
		marginStyle = marginStyle.Background(bg)
	}
	margin := marginStyle.Render(" ")

	return margin + result.String() + margin
}

// RowPart represents a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
}
