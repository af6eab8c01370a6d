// ABOUTME: Authentication commands for the safepulse CLI
// ABOUTME: login, register, logout, whoami and passwd

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/session"
	"github.com/markalston/safepulse-cli/internal/tui/prompt"
	"github.com/markalston/safepulse-cli/internal/tui/styles"
	"github.com/markalston/safepulse-cli/internal/tui/widgets"
)

var (
	loginCreds     client.Credentials
	registration   client.Registration
	passwordChange client.PasswordChange
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with a badge number and password",
	Long: `Sign in and store the session for later commands.

Missing values are prompted for when running in a terminal.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runLogin(ctx, w, loginCreds)
		})
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an officer account and sign in",
	Long: `Register a new officer account. The new officer is signed in on success.

When any required value is missing and a terminal is attached, an interactive
form is shown.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runRegister(ctx, w, registration)
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and revoke the refresh token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runLogout)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in officer from the local session",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(_ context.Context, w io.Writer) int {
			return runWhoami(w)
		})
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runPasswd(ctx, w, passwordChange)
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginCreds.BadgeNumber, "badge", "", "Badge number")
	loginCmd.Flags().StringVar(&loginCreds.Password, "password", "", "Password")

	f := registerCmd.Flags()
	f.StringVar(&registration.BadgeNumber, "badge", "", "Badge number")
	f.StringVar(&registration.Email, "email", "", "Email address")
	f.StringVar(&registration.FirstName, "first-name", "", "First name")
	f.StringVar(&registration.LastName, "last-name", "", "Last name")
	f.StringVar(&registration.Password, "password", "", "Password (at least 8 characters)")
	f.StringVar(&registration.PasswordConfirm, "password-confirm", "", "Password confirmation (defaults to --password)")
	f.StringVar(&registration.Role, "role", "officer", "Role: officer, detective, analyst, admin")
	f.StringVar(&registration.Rank, "rank", "", "Rank")
	f.StringVar(&registration.Station, "station", "", "Station")
	f.StringVar(&registration.District, "district", "", "District")
	f.StringVar(&registration.PhoneNumber, "phone", "", "Phone number")

	passwdCmd.Flags().StringVar(&passwordChange.OldPassword, "old", "", "Current password")
	passwdCmd.Flags().StringVar(&passwordChange.NewPassword, "new", "", "New password")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, passwdCmd)
}

// runLogin signs in and returns exit code
func runLogin(ctx context.Context, w io.Writer, creds client.Credentials) int {
	if err := prompt.Run(prompt.LoginForm(&creds), promptIn, promptOut); err != nil {
		return fail(w, err)
	}

	a, err := newApp(w)
	if err != nil {
		return fail(w, err)
	}
	resp, err := a.client.Login(ctx, creds)
	if err != nil {
		return fail(w, err)
	}

	render(w, resp.Officer, func() string { return formatSignedIn(&resp.Officer) })
	return exitOK
}

// missingRegistration lists the required registration fields that are empty.
func missingRegistration(reg client.Registration) []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"--badge", reg.BadgeNumber},
		{"--email", reg.Email},
		{"--first-name", reg.FirstName},
		{"--last-name", reg.LastName},
		{"--password", reg.Password},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// runRegister creates an account and returns exit code
func runRegister(ctx context.Context, w io.Writer, reg client.Registration) int {
	if missing := missingRegistration(reg); len(missing) > 0 {
		if !prompt.IsTerminal(promptIn, promptOut) {
			return usageError(w, "missing %s", strings.Join(missing, ", "))
		}
		if err := prompt.Run(prompt.RegistrationForm(&reg), promptIn, promptOut); err != nil {
			return fail(w, err)
		}
	}
	if reg.PasswordConfirm == "" {
		reg.PasswordConfirm = reg.Password
	}

	a, err := newApp(w)
	if err != nil {
		return fail(w, err)
	}
	resp, err := a.client.Register(ctx, reg)
	if err != nil {
		return fail(w, err)
	}

	render(w, resp.Officer, func() string {
		return widgets.StatusText("Account created", widgets.StatusOK) + "\n" + formatSignedIn(&resp.Officer)
	})
	return exitOK
}

func formatSignedIn(o *session.Officer) string {
	msg := fmt.Sprintf("Signed in as %s (%s)", o.DisplayName(), o.BadgeNumber)
	if o.Station != "" {
		msg += ", " + o.Station
	}
	return widgets.StatusText(msg, widgets.StatusOK)
}

// runLogout signs out and returns exit code
func runLogout(ctx context.Context, w io.Writer) int {
	a, err := newApp(w)
	if err != nil {
		return fail(w, err)
	}
	if !a.store.Session().IsAuthenticated {
		render(w, map[string]bool{"logged_out": true}, func() string { return "Not logged in." })
		return exitOK
	}

	if err := a.client.Logout(ctx); err != nil {
		fmt.Fprintln(w, widgets.StatusText("Signed out locally", widgets.StatusWarning))
		return fail(w, err)
	}
	render(w, map[string]bool{"logged_out": true}, func() string {
		return widgets.StatusText("Signed out", widgets.StatusOK)
	})
	return exitOK
}

// whoami is the JSON shape of the whoami command.
type whoami struct {
	Officer          *session.Officer `json:"officer"`
	APIURL           string           `json:"api_url"`
	AccessExpiresAt  *time.Time       `json:"access_expires_at,omitempty"`
	RefreshExpiresAt *time.Time       `json:"refresh_expires_at,omitempty"`
}

// tokenExpiry reads the exp claim of a JWT without verifying it. The result
// is for display only.
func tokenExpiry(token string) *time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil || claims.ExpiresAt == nil {
		return nil
	}
	t := claims.ExpiresAt.Time
	return &t
}

func describeExpiry(t *time.Time, now time.Time) string {
	if t == nil {
		return "unknown"
	}
	if !t.After(now) {
		return "expired " + t.Local().Format(time.DateTime)
	}
	return fmt.Sprintf("%s (in %s)", t.Local().Format(time.DateTime), t.Sub(now).Round(time.Second))
}

// runWhoami prints the stored session and returns exit code
func runWhoami(w io.Writer) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	s := a.store.Session()
	out := whoami{
		Officer:          s.Officer,
		APIURL:           a.client.BaseURL(),
		AccessExpiresAt:  tokenExpiry(s.AccessToken),
		RefreshExpiresAt: tokenExpiry(s.RefreshToken),
	}

	render(w, out, func() string {
		now := time.Now()
		return strings.Join([]string{
			formatOfficerHuman(out.Officer),
			"",
			styles.Field("Backend", out.APIURL),
			styles.Field("Access token", describeExpiry(out.AccessExpiresAt, now)),
			styles.Field("Refresh token", describeExpiry(out.RefreshExpiresAt, now)),
		}, "\n")
	})
	return exitOK
}

// runPasswd changes the password and returns exit code
func runPasswd(ctx context.Context, w io.Writer, pc client.PasswordChange) int {
	if pc.OldPassword == "" || pc.NewPassword == "" {
		if err := prompt.Run(prompt.PasswordChangeForm(&pc), promptIn, promptOut); err != nil {
			if errors.Is(err, prompt.ErrNotInteractive) {
				return usageError(w, "--old and --new are required when not running in a terminal")
			}
			return fail(w, err)
		}
	}
	if pc.NewPasswordConfirm == "" {
		pc.NewPasswordConfirm = pc.NewPassword
	}

	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	resp, err := a.client.ChangePassword(ctx, pc)
	if err != nil {
		return fail(w, err)
	}
	render(w, resp, func() string { return widgets.StatusText(resp.Message, widgets.StatusOK) })
	return exitOK
}
