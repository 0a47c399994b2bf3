package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	exportOut string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the catalog as JSON",
	Long: `Write the stored catalog of the signed-in identity as JSON.

The document is the exact payload kept in storage, indented for reading.
Without --out it goes to stdout.

Examples:
  dx export > catalog.json
  dx export --out backup.json`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	current, err := catalogService.Identity()
	if err != nil {
		return err
	}

	payload, err := catalogRepo.Export(ctx, current)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to read catalog"))
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(payload), "", "  "); err != nil {
		// Export what is stored even if it does not parse
		pretty.Reset()
		pretty.WriteString(payload)
	}
	pretty.WriteString("\n")

	if exportOut == "" {
		_, err := os.Stdout.Write(pretty.Bytes())
		return err
	}

	if err := os.WriteFile(exportOut, pretty.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Println(ui.FormatSuccess("Catalog exported to " + exportOut))
	return nil
}
