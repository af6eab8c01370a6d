// ABOUTME: Interactive huh forms for login, registration and password changes
// ABOUTME: Forms bind directly to the client request types

package prompt

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/mattn/go-isatty"
)

// ErrNotInteractive is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNotInteractive = errors.New("input required but stdin is not a terminal; pass the value as a flag")

// IsTerminal reports whether r and w are both attached to a terminal.
func IsTerminal(r io.Reader, w io.Writer) bool {
	return isFileTTY(r) && isFileTTY(w)
}

func isFileTTY(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Theme returns the huh theme matching the SafePulse palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	blue := lipgloss.Color("#3B82F6")
	blueLight := lipgloss.Color("#60A5FA")
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")
	navy := lipgloss.Color("#0F2744")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(blue).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(blue)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(blueLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(blue).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(blue).
		Bold(true)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(blue)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(blue)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(blue).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(navy).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// Roles and ranks offered during registration.
var (
	roleOptions = []huh.Option[string]{
		huh.NewOption("Officer", "officer"),
		huh.NewOption("Detective", "detective"),
		huh.NewOption("Analyst", "analyst"),
		huh.NewOption("Supervisor", "supervisor"),
		huh.NewOption("Admin", "admin"),
	}
	severityOptions = []huh.Option[string]{
		huh.NewOption("Low", "low"),
		huh.NewOption("Medium", "medium"),
		huh.NewOption("High", "high"),
		huh.NewOption("Critical", "critical"),
	}
)

func required(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}

func validEmail(s string) error {
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("enter a valid email address")
	}
	return nil
}

func minLength(n int) func(string) error {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("password must be at least %d characters", n)
		}
		return nil
	}
}

func matches(other *string, msg string) func(string) error {
	return func(s string) error {
		if s != *other {
			return errors.New(msg)
		}
		return nil
	}
}

// LoginForm asks for the fields of creds that are still empty.
func LoginForm(creds *client.Credentials) *huh.Form {
	var fields []huh.Field
	if creds.BadgeNumber == "" {
		fields = append(fields, huh.NewInput().
			Title("Badge number").
			Validate(required("badge number")).
			Value(&creds.BadgeNumber))
	}
	if creds.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(required("password")).
			Value(&creds.Password))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...).Title("SafePulse sign in")).WithTheme(Theme())
}

// RegistrationForm collects a new officer account.
func RegistrationForm(reg *client.Registration) *huh.Form {
	if reg.Role == "" {
		reg.Role = "officer"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Badge number").Validate(required("badge number")).Value(&reg.BadgeNumber),
			huh.NewInput().Title("Email").Validate(validEmail).Value(&reg.Email),
			huh.NewInput().Title("First name").Validate(required("first name")).Value(&reg.FirstName),
			huh.NewInput().Title("Last name").Validate(required("last name")).Value(&reg.LastName),
		).Title("Officer details"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Role").Options(roleOptions...).Value(&reg.Role),
			huh.NewInput().Title("Rank").Value(&reg.Rank),
			huh.NewInput().Title("Station").Value(&reg.Station),
			huh.NewInput().Title("District").Value(&reg.District),
			huh.NewInput().Title("Phone number").Value(&reg.PhoneNumber),
		).Title("Assignment"),
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).
				Validate(minLength(8)).Value(&reg.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).
				Validate(matches(&reg.Password, "passwords do not match")).Value(&reg.PasswordConfirm),
		).Title("Password"),
	).WithTheme(Theme())
}

// PasswordChangeForm collects the old and new passwords.
func PasswordChangeForm(pc *client.PasswordChange) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).
				Validate(required("current password")).Value(&pc.OldPassword),
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).
				Validate(minLength(8)).Value(&pc.NewPassword),
			huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).
				Validate(matches(&pc.NewPassword, "new passwords do not match")).Value(&pc.NewPasswordConfirm),
		).Title("Change password"),
	).WithTheme(Theme())
}

// CrimeForm collects the required fields of a new crime report.
func CrimeForm(crime *client.Crime) *huh.Form {
	if crime.Severity == "" {
		crime.Severity = "medium"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Validate(required("title")).Value(&crime.Title),
			huh.NewInput().Title("Category").Description("e.g. theft, assault, burglary").
				Validate(required("category")).Value(&crime.Category),
			huh.NewSelect[string]().Title("Severity").Options(severityOptions...).Value(&crime.Severity),
		).Title("Incident"),
		huh.NewGroup(
			huh.NewInput().Title("Location").Validate(required("location")).Value(&crime.Location),
			huh.NewInput().Title("District").Validate(required("district")).Value(&crime.District),
			huh.NewInput().Title("Date occurred").Placeholder("2026-10-19 14:30").
				Validate(required("date occurred")).Value(&crime.DateOccurred),
			huh.NewText().Title("Description").Validate(required("description")).Value(&crime.Description),
		).Title("Where and when"),
	).WithTheme(Theme())
}

// Confirm builds a yes/no confirmation.
func Confirm(title string, ok *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(ok),
		),
	).WithTheme(Theme())
}

// Run runs form on a terminal. A nil form is a no-op.
func Run(form *huh.Form, in io.Reader, out io.Writer) error {
	if form == nil {
		return nil
	}
	if !IsTerminal(in, out) {
		return ErrNotInteractive
	}
	return form.WithInput(in).WithOutput(out).Run()
}
