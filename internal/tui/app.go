// ABOUTME: Root bubbletea model for the metadash terminal UI
// ABOUTME: Routes between the login and dashboard screens through the route guard

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/markalston/metadash/internal/app"
	"github.com/markalston/metadash/internal/client"
	"github.com/markalston/metadash/internal/guard"
	"github.com/markalston/metadash/internal/login"
	"github.com/markalston/metadash/internal/session"
	"github.com/markalston/metadash/internal/tui/dashboard"
	"github.com/markalston/metadash/internal/tui/icons"
	"github.com/markalston/metadash/internal/tui/loginform"
	"github.com/markalston/metadash/internal/tui/styles"
	"github.com/markalston/metadash/internal/tui/widgets"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
)

// Layout constants
const (
	minTerminalWidth = 80 // Frame never renders narrower than this
	panelPadding     = 4  // Horizontal padding around screen content
)

// Notices shown above the login form
const (
	noticeSignIn    = "Please sign in to view the dashboard."
	noticeSignedOut = "You have been signed out."
)

// loginResultMsg is sent when a login submission completes
type loginResultMsg struct {
	result login.Result
	err    error
}

// metadataLoadedMsg is sent when the metadata fetch completes
type metadataLoadedMsg struct {
	gen  uint64
	meta *client.AppMetadata
	err  error
}

// App is the root model for the TUI
type App struct {
	session    *app.App
	ctx        context.Context
	screen     Screen
	width      int
	height     int
	notice     string
	lastUpdate time.Time

	// fetchGen identifies the latest metadata request; older replies are dropped
	fetchGen uint64

	// Child models
	login     *loginform.Form
	dashboard *dashboard.Dashboard
}

// New creates the TUI over an opened session context. The initial screen
// is whatever the guard resolves for the root route.
func New(ctx context.Context, sess *app.App) *App {
	a := &App{
		session:   sess,
		ctx:       ctx,
		login:     loginform.New(),
		dashboard: dashboard.New(),
	}
	a.applyDecision(sess.Guard.Resolve(guard.RouteRoot))
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.enterScreen()
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetWidth(a.contentWidth())
		_, cmd := a.login.Update(msg)
		a.login.SetWidth(a.contentWidth())
		return a, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.screen == ScreenDashboard {
			return a.updateDashboard(msg)
		}
		return a.updateLogin(msg)

	case loginform.SubmitMsg:
		return a, a.submitLogin(msg)

	case loginResultMsg:
		return a.handleLoginResult(msg)

	case metadataLoadedMsg:
		return a.handleMetadataLoaded(msg)

	case spinner.TickMsg:
		if a.screen == ScreenDashboard {
			return a, a.dashboard.Update(msg)
		}
		return a.updateLogin(msg)
	}

	if a.screen == ScreenLogin {
		return a.updateLogin(msg)
	}
	return a, nil
}

// updateLogin forwards input to the login form
func (a *App) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := a.login.Update(msg)
	return a, cmd
}

// updateDashboard handles dashboard keys
func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "r":
		if a.dashboard.Loading() {
			return a, nil
		}
		return a, a.navigate(guard.RouteDashboard)
	case "l":
		return a, a.logout()
	}
	return a, nil
}

// navigate asks the guard for path and switches to the screen it allows
func (a *App) navigate(path string) tea.Cmd {
	d := a.session.Guard.Resolve(path)
	switch {
	case d.Denied():
		slog.Info("Navigation denied", "requested", d.Requested, "target", d.Target)
	case d.Redirected():
		slog.Debug("Navigation redirected", "requested", d.Requested, "target", d.Target)
	}
	a.applyDecision(d)
	return a.enterScreen()
}

func (a *App) applyDecision(d guard.Decision) {
	if d.Target == guard.RouteDashboard {
		a.screen = ScreenDashboard
		return
	}
	if d.Denied() {
		a.notice = noticeSignIn
	}
	a.screen = ScreenLogin
}

// enterScreen returns the command that starts the current screen
func (a *App) enterScreen() tea.Cmd {
	if a.screen == ScreenDashboard {
		return tea.Batch(a.dashboard.StartLoading(), a.loadMetadata())
	}
	return a.login.Init()
}

func (a *App) submitLogin(msg loginform.SubmitMsg) tea.Cmd {
	a.notice = ""
	flow := a.session.Login
	ctx := a.ctx
	return func() tea.Msg {
		result, err := flow.Submit(ctx, msg.Username, msg.Password)
		return loginResultMsg{result: result, err: err}
	}
}

func (a *App) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		message := login.MsgUnexpected
		var loginErr *login.Error
		if errors.As(msg.err, &loginErr) {
			message = loginErr.Message
		}
		slog.Warn("Login failed", "error", msg.err)
		return a, a.login.Fail(message)
	}
	a.login.Reset()
	return a, a.navigate(msg.result.Next)
}

func (a *App) handleMetadataLoaded(msg metadataLoadedMsg) (tea.Model, tea.Cmd) {
	// A fetch that finishes after logout or a newer request is dropped.
	if a.screen != ScreenDashboard || msg.gen != a.fetchGen {
		slog.Debug("Dropping stale metadata", "gen", msg.gen, "current", a.fetchGen)
		return a, nil
	}
	a.lastUpdate = time.Now()
	if msg.err != nil {
		slog.Error("Metadata fetch failed", "error", msg.err)
		a.dashboard.SetError(msg.err)
		return a, nil
	}
	a.dashboard.SetMetadata(msg.meta)
	return a, nil
}

func (a *App) logout() tea.Cmd {
	if err := a.session.Auth.Logout(); err != nil {
		slog.Error("Logout failed", "error", err)
	}
	a.fetchGen++
	a.dashboard.SetMetadata(nil)
	a.lastUpdate = time.Time{}
	a.login.Reset()
	cmd := a.navigate(guard.RouteDashboard)
	a.notice = noticeSignedOut
	return cmd
}

// loadMetadata creates a command to fetch the dashboard aggregate
func (a *App) loadMetadata() tea.Cmd {
	a.fetchGen++
	gen := a.fetchGen
	sess := a.session
	ctx := a.ctx
	return func() tea.Msg {
		meta, err := sess.Metadata(ctx)
		return metadataLoadedMsg{gen: gen, meta: meta, err: err}
	}
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenDashboard:
		content = a.viewDashboard()
	default:
		content = a.viewLogin()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewLogin() string {
	var sb strings.Builder
	if a.notice != "" {
		sb.WriteString(styles.AlertWarning.Render(a.notice))
		sb.WriteString("\n\n")
	}
	sb.WriteString(a.login.View())
	return a.pad(sb.String())
}

func (a *App) viewDashboard() string {
	var sb strings.Builder
	if a.session.Auth.Source() == session.SourceBreakGlass {
		sb.WriteString(styles.AlertWarning.Render("Break-glass session: the identity service was not consulted."))
		sb.WriteString("\n")
	}
	sb.WriteString(a.dashboard.View())
	return a.pad(sb.String())
}

func (a *App) pad(content string) string {
	return lipgloss.NewStyle().Padding(1, panelPadding/2).Render(content)
}

// frameWidth is the terminal width less one column, clamped to the minimum
func (a *App) frameWidth() int {
	width := a.width - 1
	if width < minTerminalWidth {
		width = minTerminalWidth
	}
	return width
}

func (a *App) contentWidth() int {
	return a.frameWidth() - panelPadding
}

// renderHeader creates the top border with the title and signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("metadash"))

	rightText := ""
	if u := a.session.Auth.CurrentUser(); u != nil && a.screen == ScreenDashboard {
		icon := icons.User
		if u.IsAdmin {
			icon = icons.Admin
		}
		rightText = " " + contextStyle.Render(icon.String()+" "+u.Username)
		if a.session.Auth.Source() == session.SourceBreakGlass {
			rightText += " " + widgets.Badge("break-glass", widgets.StatusWarning)
		}
		rightText += " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮")
}

// renderFooter creates the bottom border with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Next", "Enter Submit", "ctrl+c Quit"}
	case ScreenDashboard:
		shortcuts = []string{"r Refresh", "l Logout", "q Quit"}
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	rightText := ""
	if !a.lastUpdate.IsZero() && a.screen == ScreenDashboard {
		rightText = " " + statusStyle.Render("Updated "+humanize.Time(a.lastUpdate)) + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯")
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, sess *app.App) error {
	p := tea.NewProgram(
		New(ctx, sess),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
