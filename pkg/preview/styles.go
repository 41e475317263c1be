package preview

import "github.com/charmbracelet/lipgloss"

// Status glyphs.
const (
	GlyphPassed  = "✓"
	GlyphFailed  = "✗"
	GlyphWarning = "⚠"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorDim    = lipgloss.Color("240")
)

// Styles for command-line reports.
var (
	PassStyle = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	FailStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	WarnStyle = lipgloss.NewStyle().Foreground(colorYellow)
	DimStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// Passed renders a success line.
func Passed(msg string) string { return PassStyle.Render(GlyphPassed+" ") + msg }

// Failed renders a failure line.
func Failed(msg string) string { return FailStyle.Render(GlyphFailed+" ") + msg }

// Warning renders a warning line.
func Warning(msg string) string { return WarnStyle.Render(GlyphWarning + " " + msg) }
