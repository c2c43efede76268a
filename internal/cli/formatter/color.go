package formatter

import (
	"fmt"
	"strings"

	"github.com/2beens/exercisetracker/internal/exercises"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorLime   = lipgloss.Color("#b8bb26")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleLime   = lipgloss.NewStyle().Foreground(ColorLime)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// CellStyle returns the style a calendar cell of the given color class is rendered with.
func CellStyle(color exercises.ColorClass) lipgloss.Style {
	switch color {
	case exercises.ColorComplete:
		return StyleGreen
	case exercises.ColorPartialHigh:
		return StyleLime
	case exercises.ColorPartialLow:
		return StyleYellow
	case exercises.ColorNone:
		return StyleRed
	default:
		return StyleDim
	}
}

// Header renders a section header with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}

// Check renders a done/not done marker.
func Check(done bool) string {
	if done {
		return StyleGreen.Render("✓")
	}
	return StyleDim.Render("·")
}
