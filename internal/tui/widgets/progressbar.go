// ABOUTME: Progress bar with warning and critical color zones
// ABOUTME: Used for memory and CPU utilization on the dashboard

package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/metadash/internal/tui/styles"
)

// Utilization thresholds
const (
	WarnThreshold = 80.0
	CritThreshold = 95.0
)

var emptyColor = lipgloss.Color("#374151")

// ProgressBar renders a bar of width cells filled to percent
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	percent = clampPercent(percent)
	filled := int(percent / 100.0 * float64(width))

	var color lipgloss.Color
	switch StatusFromPercent(percent, WarnThreshold, CritThreshold) {
	case StatusCritical:
		color = styles.Danger
	case StatusWarning:
		color = styles.Warning
	default:
		color = styles.Secondary
	}

	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(emptyColor).Render(strings.Repeat("░", width-filled))
}

// ProgressBarWithLabel renders the bar followed by the percentage
func ProgressBarWithLabel(percent float64, width int) string {
	level := StatusFromPercent(clampPercent(percent), WarnThreshold, CritThreshold)
	return fmt.Sprintf("%s %s", ProgressBar(percent, width), StatusText(fmt.Sprintf("%.1f%%", percent), level))
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
