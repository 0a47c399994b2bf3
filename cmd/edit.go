package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/core/services"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	editName      string
	editNote      string
	editClearNote bool
)

var editCmd = &cobra.Command{
	Use:   "edit [query]",
	Short: "Rename a file or change its note",
	Long: `Rename a file or change its note. Only the name and note of a record
can change; type, size and upload time are fixed.

Without --name or --note the current note is shown and a new one is read
from the prompt.

Examples:
  dx edit invoice --note "paid 2024-09"
  dx edit cat --name "cat on sofa.png"
  dx edit --clear-note`,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editName, "name", "n", "", "New display name")
	editCmd.Flags().StringVar(&editNote, "note", "", "New note")
	editCmd.Flags().BoolVar(&editClearNote, "clear-note", false, "Remove the note")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	rec, err := selectRecord(args, "edit")
	if err != nil {
		return nil
	}

	var req services.UpdateRequest
	if cmd.Flags().Changed("name") {
		req.Name = &editName
	}
	if cmd.Flags().Changed("note") {
		req.Note = &editNote
	}
	if editClearNote {
		empty := ""
		req.Note = &empty
	}

	// Interactive note entry
	if req.Name == nil && req.Note == nil {
		fmt.Println(ui.RenderKeyValue("File", rec.Name))
		fmt.Println(ui.RenderKeyValue("Current note", rec.GetNoteString()))
		fmt.Print(ui.StyleInfo.Render("New note (empty keeps it): "))

		reader := bufio.NewReader(os.Stdin)
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if err != nil || input == "" {
			fmt.Println(ui.FormatMuted("Unchanged."))
			return nil
		}
		req.Note = &input
	}

	updated, err := catalogService.Update(ctx, rec.ID, req)
	if updated == nil {
		fmt.Println(ui.FormatError("Failed to update: " + err.Error()))
		return err
	}
	if err != nil {
		return reportPersistError(err)
	}

	fmt.Println(ui.FormatSuccess("Updated " + ui.StyleBold.Render(updated.Name)))
	if req.Note != nil {
		fmt.Println(ui.RenderKeyValue("Note", updated.GetNoteString()))
	}
	return nil
}
