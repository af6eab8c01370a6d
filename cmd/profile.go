// ABOUTME: Profile and officer directory commands
// ABOUTME: profile show, profile update and officers

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/markalston/safepulse-cli/internal/client"
	"github.com/markalston/safepulse-cli/internal/tui/widgets"
)

var profileUpdate client.ProfileUpdate

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your officer profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Fetch your profile from the backend",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runProfileShow)
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	Long:  `Update profile fields. Only the flags given are changed.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(func(ctx context.Context, w io.Writer) int {
			return runProfileUpdate(ctx, w, profileUpdate)
		})
	},
}

var officersCmd = &cobra.Command{
	Use:   "officers",
	Short: "List registered officers",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		execute(runOfficers)
	},
}

func init() {
	f := profileUpdateCmd.Flags()
	f.StringVar(&profileUpdate.FirstName, "first-name", "", "First name")
	f.StringVar(&profileUpdate.LastName, "last-name", "", "Last name")
	f.StringVar(&profileUpdate.Email, "email", "", "Email address")
	f.StringVar(&profileUpdate.Station, "station", "", "Station")
	f.StringVar(&profileUpdate.District, "district", "", "District")
	f.StringVar(&profileUpdate.PhoneNumber, "phone", "", "Phone number")

	profileCmd.AddCommand(profileShowCmd, profileUpdateCmd)
	rootCmd.AddCommand(profileCmd, officersCmd)
}

// runProfileShow fetches the profile and returns exit code
func runProfileShow(ctx context.Context, w io.Writer) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	officer, err := a.client.Profile(ctx)
	if err != nil {
		return fail(w, err)
	}
	render(w, officer, func() string { return formatOfficerHuman(officer) })
	return exitOK
}

// runProfileUpdate edits the profile and returns exit code
func runProfileUpdate(ctx context.Context, w io.Writer, update client.ProfileUpdate) int {
	if update == (client.ProfileUpdate{}) {
		return usageError(w, "nothing to update; pass at least one field flag")
	}
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	officer, err := a.client.UpdateProfile(ctx, update)
	if err != nil {
		return fail(w, err)
	}
	render(w, officer, func() string {
		return widgets.StatusText("Profile updated", widgets.StatusOK) + "\n" + formatOfficerHuman(officer)
	})
	return exitOK
}

// runOfficers lists officers and returns exit code
func runOfficers(ctx context.Context, w io.Writer) int {
	a, code := newAuthedApp(w)
	if a == nil {
		return code
	}
	page, err := a.client.Officers(ctx)
	if err != nil {
		return fail(w, err)
	}
	render(w, page, func() string { return formatOfficersHuman(page) })
	return exitOK
}
