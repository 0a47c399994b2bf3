package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	loginUID     string
	loginEmail   string
	logoutForget bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as an identity",
	Long: `Sign in as an identity. Every identity has its own catalog.

Signing in as another identity switches catalogs; nothing from the
previous identity is visible afterwards.

Examples:
  dx login --uid 8f2c1a --email me@example.com`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out of the current identity",
	Long: `Sign out of the current identity.

The catalog stays on disk and is loaded again on the next login
unless --forget is given.`,
	RunE: runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in identity",
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVar(&loginUID, "uid", "", "Stable account id (required)")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.MarkFlagRequired("uid")

	logoutCmd.Flags().BoolVar(&logoutForget, "forget", false, "Also delete the stored catalog of this identity")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	id, err := domain.NewIdentity(loginUID, loginEmail)
	if err != nil {
		fmt.Println(ui.FormatError("Invalid identity: " + err.Error()))
		return err
	}

	if err := profile.SignIn(ctx, *id); err != nil {
		fmt.Println(ui.FormatError("Failed to sign in"))
		return err
	}

	fmt.Println(ui.FormatSuccess("Signed in as " + ui.StyleBold.Render(id.DisplayName())))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	current, err := profile.Current(ctx)
	if errors.Is(err, domain.ErrNotSignedIn) {
		fmt.Println(ui.FormatInfo("Not signed in."))
		return nil
	}
	if err != nil {
		return err
	}

	if logoutForget {
		if !confirm(ui.StyleError.Render(fmt.Sprintf("Delete the catalog of %s? (y/n): ", current.DisplayName()))) {
			fmt.Println("Cancelled.")
			return nil
		}
		if err := buildServices(); err != nil {
			return err
		}
		if err := catalogRepo.Forget(ctx, *current); err != nil {
			fmt.Println(ui.FormatError("Failed to delete catalog"))
			return err
		}
		fmt.Println(ui.FormatSuccess("Catalog deleted."))
	}

	if err := profile.SignOut(ctx); err != nil {
		return err
	}

	fmt.Println(ui.FormatSuccess("Signed out of " + current.DisplayName()))
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	current, err := profile.Current(getContext())
	if errors.Is(err, domain.ErrNotSignedIn) {
		fmt.Println(ui.FormatInfo("Not signed in."))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(ui.RenderKeyValue("UID", current.UID))
	fmt.Println(ui.RenderKeyValue("Email", orDash(current.Email)))
	fmt.Println(ui.RenderKeyValue("Storage key", current.StorageKey(appConfig.KeyPrefix)))
	if at, err := profile.SignedInAt(); err == nil && !at.IsZero() {
		fmt.Println(ui.RenderKeyValue("Since", at.Local().Format("2006-01-02 15:04")))
	}
	return nil
}
