// ABOUTME: Login screen collecting username and password with a huh form
// ABOUTME: Emits SubmitMsg on completion and rebuilds itself to show a failure inline

package loginform

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/metadash/internal/tui/icons"
	"github.com/markalston/metadash/internal/tui/styles"
)

// SubmitMsg carries the entered credentials to the parent model
type SubmitMsg struct {
	Username string
	Password string
}

// Form is the login screen
type Form struct {
	form       *huh.Form
	spinner    spinner.Model
	username   string
	password   string
	errMsg     string
	submitting bool
	width      int
}

// createTheme returns the huh theme for the login form
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	cyan := lipgloss.Color("#06B6D4")
	cyanLight := lipgloss.Color("#22D3EE")
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(cyan).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(cyan)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(cyanLight).
		Bold(true)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(cyanLight)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(cyan)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(grayLight)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(red)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(red)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().Foreground(gray)

	return t
}

// New creates an empty login form
func New() *Form {
	f := &Form{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary))),
	}
	f.form = f.buildForm()
	return f
}

func (f *Form) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("username or email").
				Value(&f.username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password),
		).Title("Sign In").
			Description("Authenticate against the identity service"),
	).WithTheme(createTheme()).
		WithShowHelp(false)
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if f.submitting {
		if _, ok := msg.(spinner.TickMsg); ok {
			var cmd tea.Cmd
			f.spinner, cmd = f.spinner.Update(msg)
			return f, cmd
		}
		return f, nil
	}

	if size, ok := msg.(tea.WindowSizeMsg); ok {
		f.width = size.Width
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		f.submitting = true
		f.errMsg = ""
		submit := SubmitMsg{Username: f.username, Password: f.password}
		return f, tea.Batch(f.spinner.Tick, func() tea.Msg { return submit })
	}

	return f, cmd
}

// Fail shows message beside a fresh form. The username is kept and the
// password cleared.
func (f *Form) Fail(message string) tea.Cmd {
	f.submitting = false
	f.errMsg = message
	f.password = ""
	f.form = f.buildForm()
	return f.form.Init()
}

// Reset clears the form for a new sign-in
func (f *Form) Reset() tea.Cmd {
	f.submitting = false
	f.errMsg = ""
	f.username = ""
	f.password = ""
	f.form = f.buildForm()
	return f.form.Init()
}

// Submitting reports whether a submission is in flight
func (f *Form) Submitting() bool {
	return f.submitting
}

// Error returns the message currently shown, if any
func (f *Form) Error() string {
	return f.errMsg
}

// SetWidth sets the available width
func (f *Form) SetWidth(width int) {
	f.width = width
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Lock.String() + " metadash"))
	sb.WriteString("\n")

	if f.errMsg != "" {
		sb.WriteString(styles.AlertError.Render(f.errMsg))
		sb.WriteString("\n\n")
	}

	if f.submitting {
		sb.WriteString(f.spinner.View() + " Signing in as " + styles.Value.Render(f.username) + "...")
	} else {
		sb.WriteString(f.form.View())
	}

	panel := styles.LoginPanel
	if f.width > 0 {
		panel = panel.Width(min(f.width-4, 60))
	}
	return panel.Render(sb.String())
}
