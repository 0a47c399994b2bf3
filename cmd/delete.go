package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete [query]",
	Short:   "Remove a file from the catalog",
	Aliases: []string{"rm"},
	Long: `Remove a file record (and its preview) from the catalog.

Without a query an interactive finder lists every file.

Examples:
  dx delete
  dx delete invoice
  dx delete old.png --force`,
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	rec, err := selectRecord(args, "delete")
	if err != nil {
		return nil
	}

	if !deleteForce {
		fmt.Println(ui.FormatWarning("You are about to delete:"))
		fmt.Printf("  %s %s %s\n",
			ui.FileIcon(rec.Name, rec.MimeType),
			ui.StyleBold.Render(rec.Name),
			ui.StyleMuted.Render("("+domain.FormatBytes(rec.SizeBytes, 2)+")"))
		fmt.Println()

		if !confirm(ui.StyleError.Render("Delete file? (y/n): ")) {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	if err := catalogService.Delete(ctx, rec.ID); err != nil {
		if _, getErr := catalogService.Get(rec.ID); getErr == nil {
			fmt.Println(ui.FormatError("Failed to delete: " + err.Error()))
			return err
		}
		return reportPersistError(err)
	}

	fmt.Println(ui.FormatSuccess("File deleted."))
	return nil
}
