// ABOUTME: Metadata dashboard showing user, health, application, and auth cards
// ABOUTME: Has loading, error, and empty states in addition to the card grid

package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/markalston/metadash/internal/client"
	"github.com/markalston/metadash/internal/tui/icons"
	"github.com/markalston/metadash/internal/tui/styles"
	"github.com/markalston/metadash/internal/tui/widgets"
)

// Messages shown in place of the cards
const (
	MsgLoading   = "Loading metadata..."
	MsgNoData    = "Unable to load metadata. Please try again later."
	notAvailable = "N/A"
)

// twoColumnWidth is the width at which cards sit side by side
const twoColumnWidth = 100

// Dashboard displays the metadata aggregate
type Dashboard struct {
	meta    *client.AppMetadata
	err     error
	loading bool
	spinner spinner.Model
	width   int
	now     func() time.Time
}

// New creates a dashboard in the loading state
func New() *Dashboard {
	return &Dashboard{
		loading: true,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
		now:     time.Now,
	}
}

// StartLoading enters the loading state and returns the spinner tick
func (d *Dashboard) StartLoading() tea.Cmd {
	d.loading = true
	d.err = nil
	return d.spinner.Tick
}

// SetMetadata shows meta. A nil aggregate renders the empty state.
func (d *Dashboard) SetMetadata(meta *client.AppMetadata) {
	d.loading = false
	d.err = nil
	d.meta = meta
}

// SetError shows err in place of the cards
func (d *Dashboard) SetError(err error) {
	d.loading = false
	d.err = err
	d.meta = nil
}

// Loading reports whether a fetch is pending
func (d *Dashboard) Loading() bool {
	return d.loading
}

// Metadata returns the aggregate currently shown
func (d *Dashboard) Metadata() *client.AppMetadata {
	return d.meta
}

// SetWidth sets the available width
func (d *Dashboard) SetWidth(width int) {
	d.width = width
}

// Update advances the spinner while loading
func (d *Dashboard) Update(msg tea.Msg) tea.Cmd {
	if !d.loading {
		return nil
	}
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	d.spinner, cmd = d.spinner.Update(msg)
	return cmd
}

// View renders the dashboard
func (d *Dashboard) View() string {
	switch {
	case d.loading:
		return d.spinner.View() + " " + MsgLoading
	case d.err != nil:
		return styles.AlertError.Render(d.err.Error())
	case isEmpty(d.meta):
		return styles.AlertWarning.Render(MsgNoData)
	}

	user := d.renderUser()
	health := d.renderHealth()
	app := d.renderApplication()
	authCard := d.renderAuth()

	if d.width >= twoColumnWidth {
		left := d.width * 2 / 5
		right := d.width - left - 1
		top := lipgloss.JoinHorizontal(lipgloss.Top,
			widgets.Card(icons.User, "User Profile", user, left), " ",
			widgets.Card(icons.Health, "System Diagnostics", health, right))
		bottom := lipgloss.JoinHorizontal(lipgloss.Top,
			widgets.Card(icons.Key, "Session", authCard, left), " ",
			widgets.Card(icons.Build, "Application Details", app, right))
		return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		widgets.Card(icons.User, "User Profile", user, d.width),
		widgets.Card(icons.Health, "System Diagnostics", health, d.width),
		widgets.Card(icons.Build, "Application Details", app, d.width),
		widgets.Card(icons.Key, "Session", authCard, d.width),
	)
}

func isEmpty(m *client.AppMetadata) bool {
	return m == nil || (m.User == nil && m.Health == nil && m.Application == nil && m.Auth == nil)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

func (d *Dashboard) renderUser() []widgets.Row {
	u := d.meta.User
	if u == nil {
		return []widgets.Row{{Label: "Username", Value: notAvailable}, {Label: "Email", Value: notAvailable}}
	}

	role := widgets.Badge("User", widgets.StatusNeutral)
	if u.IsSuperuser {
		role = widgets.Badge("Admin", widgets.StatusInfo)
	}
	rows := []widgets.Row{
		{Label: "Username", Value: orNA(u.Username)},
		{Label: "Email", Value: orNA(u.Email)},
		{Label: "Role", Value: role},
	}
	if u.LastLogin != nil && !u.LastLogin.IsZero() {
		rows = append(rows, widgets.Row{Label: "Last login", Value: humanize.RelTime(u.LastLogin.Time, d.now(), "ago", "from now")})
	}
	return rows
}

func (d *Dashboard) renderHealth() []widgets.Row {
	h := d.meta.Health
	if h == nil {
		return []widgets.Row{{Label: "Status", Value: notAvailable}}
	}

	status := widgets.StatusText(orNA(h.Status), widgets.StatusCritical)
	if h.Healthy() {
		status = widgets.StatusText(h.Status, widgets.StatusOK)
	}

	sys := h.SystemDiagnostics
	mem := notAvailable
	if sys.Memory.Total > 0 {
		mem = widgets.ProgressBarWithLabel(sys.Memory.PercentUsed, 20)
	}
	available := notAvailable
	if sys.Memory.Available > 0 {
		available = fmt.Sprintf("%s of %s", humanize.IBytes(uint64(sys.Memory.Available)), humanize.IBytes(uint64(sys.Memory.Total)))
	}
	cpu := notAvailable
	if sys.CPU.Cores > 0 {
		cpu = fmt.Sprintf("%d cores, %.1f%% load", sys.CPU.Cores, sys.CPU.UsagePercent)
	}

	return []widgets.Row{
		{Label: "Status", Value: status},
		{Label: "Database", Value: orNA(h.DatabaseStatus)},
		{Label: icons.Memory.String() + " Memory", Value: mem},
		{Label: "Available", Value: available},
		{Label: icons.CPU.String() + " CPU", Value: cpu},
		{Label: "OS", Value: orNA(strings.TrimSpace(sys.OS.System + " " + sys.OS.Release))},
		{Label: "Runtime", Value: orNA(sys.Runtime())},
	}
}

func (d *Dashboard) renderApplication() []widgets.Row {
	a := d.meta.Application
	if a == nil {
		return []widgets.Row{{Label: "Name", Value: notAvailable}}
	}

	built := notAvailable
	if !a.BuildTimestamp.IsZero() {
		built = fmt.Sprintf("%s (%s)", a.BuildTimestamp.Local().Format("2006-01-02 15:04"), humanize.RelTime(a.BuildTimestamp.Time, d.now(), "ago", "from now"))
	}

	return []widgets.Row{
		{Label: "Name", Value: orNA(a.Name)},
		{Label: "Version", Value: orNA(a.Version)},
		{Label: "Environment", Value: orNA(a.Environment)},
		{Label: "Built", Value: built},
		{Label: "Dependencies", Value: orNA(strings.Join(a.Dependencies, ", "))},
	}
}

func (d *Dashboard) renderAuth() []widgets.Row {
	a := d.meta.Auth
	if a == nil {
		return []widgets.Row{{Label: "Token type", Value: notAvailable}}
	}

	expires := notAvailable
	if a.ExpiresAt != nil && !a.ExpiresAt.IsZero() {
		level := widgets.StatusOK
		if !a.ExpiresAt.After(d.now()) {
			level = widgets.StatusCritical
		}
		expires = widgets.StatusText(humanize.RelTime(a.ExpiresAt.Time, d.now(), "ago", "from now"), level)
	}

	return []widgets.Row{
		{Label: "Token type", Value: orNA(a.TokenType)},
		{Label: "Expires", Value: expires},
		{Label: "Permissions", Value: orNA(strings.Join(a.Permissions, ", "))},
	}
}
