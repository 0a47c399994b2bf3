package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	purgeForce bool
	purgeAll   bool
)

// purgeCmd represents the purge command
var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Clear the catalog or delete the whole vault",
	Long: `Remove every file record of the signed-in identity along with the
previews exported by 'dx show --save'.

With --all, delete the entire vault directory instead:
  - The catalogs of every identity
  - The session
  - Exported previews

Configuration is kept. This action cannot be undone.

Examples:
  # Clear your catalog with a confirmation prompt
  dx purge

  # Delete the vault without confirmation (dangerous!)
  dx purge --all --force`,
	RunE: runPurge,
}

func init() {
	purgeCmd.Flags().BoolVarP(&purgeForce, "force", "f", false, "Skip confirmation prompt (dangerous)")
	purgeCmd.Flags().BoolVar(&purgeAll, "all", false, "Delete the entire vault, not just your catalog")
}

func runPurge(cmd *cobra.Command, args []string) error {
	if purgeAll {
		return purgeVault()
	}

	if err := buildServices(); err != nil {
		return err
	}
	ctx := getContext()
	if err := openSession(ctx); err != nil {
		return err
	}

	id, _ := catalogService.Identity()
	count := len(catalogService.Records())
	if count == 0 {
		fmt.Println(ui.FormatInfo("Catalog is already empty."))
		return nil
	}

	if !purgeForce && !confirm(ui.StyleError.Render(fmt.Sprintf("Remove all %d files from the catalog of %s? (y/n): ", count, id.DisplayName()))) {
		fmt.Println(ui.FormatInfo("Purge cancelled."))
		return nil
	}

	removed, err := catalogService.Clear(ctx)
	if err != nil {
		return reportPersistError(err)
	}
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("✓ Removed %d files", removed)))

	if err := appVault.CleanExports(); err != nil {
		fmt.Println(ui.FormatWarning("Failed to clean exported previews: " + err.Error()))
	}
	return nil
}

func purgeVault() error {
	fmt.Println(ui.StyleError.Render("⚠️  WARNING: DESTRUCTIVE OPERATION ⚠️"))
	fmt.Println()
	fmt.Println(ui.FormatWarning("You are about to permanently delete the entire vault:"))
	fmt.Printf("  %s %s\n", ui.StyleBold.Render("Location:"), appVault.RootPath)
	fmt.Println()
	fmt.Println("This will delete:")
	fmt.Printf("  • %s\n", ui.StyleMuted.Render("The catalogs of every identity"))
	fmt.Printf("  • %s\n", ui.StyleMuted.Render("The current session"))
	fmt.Printf("  • %s\n", ui.StyleMuted.Render("Exported previews"))
	fmt.Println()
	fmt.Println(ui.FormatError("⚠️  THIS ACTION CANNOT BE UNDONE ⚠️"))
	fmt.Println()

	if !purgeForce && !confirmVaultPath(bufio.NewReader(os.Stdin), appVault.RootPath) {
		fmt.Println(ui.FormatInfo("Purge cancelled."))
		return nil
	}

	fmt.Println(ui.FormatInfo("Purging vault..."))
	if err := os.RemoveAll(appVault.RootPath); err != nil {
		fmt.Println(ui.FormatError("Failed to delete vault: " + err.Error()))
		return err
	}

	fmt.Println()
	fmt.Println(ui.FormatSuccess("✓ Vault purged successfully"))
	fmt.Println(ui.FormatInfo("To create a new vault, run: dx init"))
	return nil
}

// confirmVaultPath requires "yes" and then the vault path itself.
// An empty answer or end of input cancels.
func confirmVaultPath(reader *bufio.Reader, root string) bool {
	for {
		fmt.Print(ui.StyleError.Render("Are you absolutely sure you want to delete the vault? (yes/no): "))
		response, err := reader.ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response == "yes" {
			break
		}
		if response == "no" || response == "" || err != nil {
			return false
		}
		fmt.Println(ui.FormatWarning("Please type 'yes' or 'no' (full words required)."))
	}

	fmt.Println()
	for {
		fmt.Printf("%s %s\n", ui.StyleError.Render("To confirm, type the vault path:"), ui.StyleBold.Render(root))
		fmt.Print(ui.StyleError.Render("> "))
		response, err := reader.ReadString('\n')
		response = strings.TrimSpace(response)
		if response == root {
			return true
		}
		if response == "" || err != nil {
			return false
		}
		fmt.Println(ui.FormatWarning("Path does not match. Please try again or press Enter to cancel."))
	}
}
