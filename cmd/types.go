package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the type filters available for the catalog",
	Long: `List the primary types present in the catalog, in order of first
appearance (newest file first). "all" is always offered.`,
	RunE: runTypes,
}

func runTypes(cmd *cobra.Command, args []string) error {
	records := catalogService.Records()
	types := domain.AvailableTypes(records)

	counts := make(map[string]int)
	for _, rec := range records {
		counts[rec.PrimaryType()]++
	}

	items := make([]string, 0, len(types))
	for _, t := range types {
		n := len(records)
		if t != domain.TypeAll {
			n = counts[t]
		}
		items = append(items, fmt.Sprintf("%s %s", orDash(t), ui.FormatMuted(fmt.Sprintf("(%d)", n))))
	}

	fmt.Print(ui.RenderSimpleList(items))
	return nil
}
