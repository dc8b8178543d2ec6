// ABOUTME: Tests for dashboard widgets
// ABOUTME: Verifies status thresholds, bar widths, and card layout

package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/metadash/internal/tui/icons"
)

func TestStatusFromPercent(t *testing.T) {
	tests := []struct {
		percent float64
		want    StatusLevel
	}{
		{0, StatusOK},
		{79.9, StatusOK},
		{80, StatusWarning},
		{94.9, StatusWarning},
		{95, StatusCritical},
		{100, StatusCritical},
	}

	for _, tt := range tests {
		if got := StatusFromPercent(tt.percent, WarnThreshold, CritThreshold); got != tt.want {
			t.Errorf("StatusFromPercent(%v) = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestProgressBarWidth(t *testing.T) {
	for _, percent := range []float64{-5, 0, 33.3, 50, 100, 150} {
		if w := lipgloss.Width(ProgressBar(percent, 20)); w != 20 {
			t.Errorf("ProgressBar(%v, 20) width = %d, want 20", percent, w)
		}
	}
}

func TestProgressBarFill(t *testing.T) {
	bar := ProgressBar(50, 10)
	if got := strings.Count(bar, "█"); got != 5 {
		t.Errorf("expected 5 filled cells, got %d", got)
	}
	if got := strings.Count(bar, "░"); got != 5 {
		t.Errorf("expected 5 empty cells, got %d", got)
	}
}

func TestProgressBarWithLabel(t *testing.T) {
	if out := ProgressBarWithLabel(42.25, 10); !strings.Contains(out, "42.2%") && !strings.Contains(out, "42.3%") {
		t.Errorf("expected percentage label, got %q", out)
	}
}

func TestCard(t *testing.T) {
	out := Card(icons.User, "User Profile", []Row{
		{Label: "Username", Value: "alice"},
		{Label: "Email", Value: "alice@corp.io"},
	}, 40)

	if !strings.Contains(out, "User Profile") {
		t.Error("expected title")
	}
	lines := strings.Split(out, "\n")
	for _, line := range lines {
		if w := lipgloss.Width(line); w != 40 {
			t.Errorf("expected card line width 40, got %d: %q", w, line)
		}
	}
}

func TestBadge(t *testing.T) {
	if out := Badge("Admin", StatusInfo); !strings.Contains(out, "Admin") {
		t.Errorf("expected badge text, got %q", out)
	}
}
