// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Provides colored inline badges and status text with icons

package widgets

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/metadash/internal/tui/icons"
	"github.com/markalston/metadash/internal/tui/styles"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

func (l StatusLevel) colors() (bg, fg lipgloss.Color) {
	switch l {
	case StatusOK:
		return styles.Secondary, lipgloss.Color("#FFFFFF")
	case StatusWarning:
		return styles.Warning, lipgloss.Color("#000000")
	case StatusCritical:
		return styles.Danger, lipgloss.Color("#FFFFFF")
	case StatusInfo:
		return styles.Info, lipgloss.Color("#FFFFFF")
	default:
		return styles.Muted, lipgloss.Color("#FFFFFF")
	}
}

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	bg, fg := level.colors()
	return lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true).
		Render(text)
}

// StatusFromPercent returns the status level for a utilization percentage
func StatusFromPercent(percent, warnThreshold, critThreshold float64) StatusLevel {
	if percent >= critThreshold {
		return StatusCritical
	}
	if percent >= warnThreshold {
		return StatusWarning
	}
	return StatusOK
}

// StatusText returns text colored for the level, prefixed with its icon
func StatusText(text string, level StatusLevel) string {
	var icon icons.Icon
	switch level {
	case StatusOK:
		icon = icons.CheckOK
	case StatusWarning:
		icon = icons.Warning
	case StatusCritical:
		icon = icons.Critical
	default:
		bg, _ := level.colors()
		return lipgloss.NewStyle().Foreground(bg).Render("• " + text)
	}
	bg, _ := level.colors()
	return lipgloss.NewStyle().Foreground(bg).Render(icon.String() + " " + text)
}
