// ABOUTME: Titled key/value card widget for dashboard panels
// ABOUTME: Aligns labels into a column and wraps the result in a bordered card

package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/metadash/internal/tui/icons"
	"github.com/markalston/metadash/internal/tui/styles"
)

// Row is one label/value line in a card
type Row struct {
	Label string
	Value string
}

// Card renders rows under a titled heading at the given outer width
func Card(icon icons.Icon, title string, rows []Row, width int) string {
	labelWidth := 0
	for _, r := range rows {
		if w := lipgloss.Width(r.Label); w > labelWidth {
			labelWidth = w
		}
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icon.String() + " " + title))
	sb.WriteString("\n")
	for i, r := range rows {
		label := styles.Label.Render(r.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(r.Label)))
		sb.WriteString(label + "  " + styles.Value.Render(r.Value))
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}

	style := styles.Card
	if width > 0 {
		style = style.Width(width - style.GetHorizontalBorderSize())
	}
	return style.Render(sb.String())
}
