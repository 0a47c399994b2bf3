package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/services"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	listSearch string
	listType   string
	listDate   string
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List files grouped by upload day",
	Aliases: []string{"ls"},
	Long: `List the catalog grouped by upload day, newest first.

Days are labelled Today, Yesterday or with their full date.
All filters combine.

Examples:
  dx list
  dx list --search invoice
  dx list --type image
  dx list --date 2024-09-10
  dx list -s cat -t image`,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive name filter")
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Primary type filter (see 'dx types')")
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "Only files uploaded on this day (YYYY-MM-DD)")
}

func runList(cmd *cobra.Command, args []string) error {
	if listType == "" {
		listType = appConfig.DefaultType
	}

	req := services.BrowseRequest{
		Search: listSearch,
		Type:   listType,
		Date:   listDate,
	}

	ctx := getContext()
	resp, err := browseService.Execute(ctx, req)
	if err != nil {
		fmt.Println(ui.FormatError("Failed to list files: " + err.Error()))
		return err
	}

	// Handle empty results
	if resp.Total == 0 {
		fmt.Println(ui.FormatInfo("No files yet."))
		fmt.Println(ui.FormatMuted("Upload one with: dx upload <file>"))
		return nil
	}
	if resp.Matched == 0 {
		fmt.Println(ui.FormatWarning("No files match the current filters"))
		return nil
	}

	for i, bucket := range resp.Buckets {
		if i > 0 {
			fmt.Println()
		}
		fmt.Print(renderBucket(bucket))
	}

	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%d of %d files", resp.Matched, resp.Total)))
	return nil
}

// renderBucket renders a day heading followed by its records
func renderBucket(bucket domain.Bucket) string {
	var b strings.Builder
	b.WriteString(ui.FormatBucketHeader(bucket.Label, len(bucket.Records)))
	b.WriteString("\n")

	table := ui.NewTable([]ui.TableColumn{
		{Header: "NAME", Width: 30, MaxWidth: 42},
		{Header: "TYPE", Width: 12, MaxWidth: 24, Style: func(cell string) lipgloss.Style {
			return ui.TypeStyle(domain.PrimaryType(cell))
		}},
		{Header: "SIZE", Width: 10, Align: ui.AlignRight},
		{Header: "TIME", Width: 5},
		{Header: "NOTE", Width: 20, MaxWidth: 30, Style: func(string) lipgloss.Style { return ui.StyleSubtle }},
	})

	for _, rec := range bucket.Records {
		table.AddRow([]string{
			ui.FileIcon(rec.Name, rec.MimeType) + " " + rec.Name,
			orDash(rec.MimeType),
			domain.FormatBytes(rec.SizeBytes, 2),
			rec.GetDisplayDate("15:04", nil),
			rec.GetNoteString(),
		})
	}

	b.WriteString(table.Render())
	return b.String()
}
