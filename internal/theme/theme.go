// Package theme provides the Lip Gloss color palette and reusable styles
// for the AWX monitor TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Job status colors.
var (
	ColorNew        = lipgloss.Color("#9ca3af")
	ColorPending    = lipgloss.Color("#d97706")
	ColorWaiting    = lipgloss.Color("#854d0e")
	ColorRunning    = lipgloss.Color("#2563eb")
	ColorSuccessful = lipgloss.Color("#16a34a")
	ColorFailed     = lipgloss.Color("#dc2626")
	ColorError      = lipgloss.Color("#b91c1c")
	ColorCanceled   = lipgloss.Color("#6b7280")
	ColorDefault    = lipgloss.Color("#9ca3af")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorAccent  = lipgloss.Color("#a855f7")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#ef4444")
)

// StatusColor returns the Lip Gloss color for an AWX job status.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "new":
		return ColorNew
	case "pending":
		return ColorPending
	case "waiting":
		return ColorWaiting
	case "running":
		return ColorRunning
	case "successful":
		return ColorSuccessful
	case "failed":
		return ColorFailed
	case "error":
		return ColorError
	case "canceled":
		return ColorCanceled
	default:
		return ColorDefault
	}
}

// StatusGlyph returns a Unicode glyph for a job status.
func StatusGlyph(status string) string {
	switch status {
	case "new", "pending", "waiting":
		return "◌"
	case "running":
		return "●"
	case "successful":
		return "✓"
	case "failed", "error":
		return "✗"
	case "canceled":
		return "⊘"
	default:
		return "·"
	}
}

// StatusBadge renders "<glyph> <status>" in the status color.
func StatusBadge(status string) string {
	return lipgloss.NewStyle().Foreground(StatusColor(status)).Render(StatusGlyph(status) + " " + status)
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)
)
