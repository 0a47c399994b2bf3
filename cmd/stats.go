package cmd

import (
	"fmt"
	"math"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/services"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var statsChart string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics and storage usage",
	Long: `Summarise the catalog of the signed-in identity.

Includes:
  - File count and total size
  - Files per type
  - 7-day upload activity
  - Storage usage against the quota

Examples:
  dx stats
  dx stats --chart types.html`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsChart, "chart", "", "Also write an HTML pie chart of files per type")
}

func runStats(cmd *cobra.Command, args []string) error {
	stats, err := statsService.Execute(getContext())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(ui.FormatTitle("Catalog Analytics"))
	fmt.Println()

	// General stats
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 4, ' ', 0)
	fmt.Fprintf(w, "%s\t%d\n", ui.StyleBold.Render("Total Files:"), stats.Count)
	fmt.Fprintf(w, "%s\t%s\n", ui.StyleBold.Render("Total Size:"), domain.FormatBytes(stats.TotalBytes, 2))
	fmt.Fprintf(w, "%s\t%s\n", ui.StyleBold.Render("Previews:"), domain.FormatBytes(stats.PreviewBytes, 2))
	fmt.Fprintf(w, "%s\t%d\n", ui.StyleBold.Render("With Notes:"), stats.Noted)
	w.Flush()
	fmt.Println()

	renderActivity(stats.ByDay, browseService.Now())
	fmt.Println()

	renderTypes(stats.ByType)
	renderQuota(stats)

	if statsChart != "" {
		if err := writeTypeChart(statsChart, stats.ByType); err != nil {
			return fmt.Errorf("failed to write chart: %w", err)
		}
		fmt.Println()
		fmt.Println(ui.FormatSuccess("Chart written to " + statsChart))
	}
	return nil
}

// renderActivity prints one block per day for the last 7 days
func renderActivity(byDay map[string]int, now time.Time) {
	fmt.Println(ui.StyleHeader.Render("Uploads (Last 7 Days)"))

	var blocks, labels []string
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		if byDay[day.Format(domain.DateFilterLayout)] == 0 {
			blocks = append(blocks, "⬜")
		} else {
			blocks = append(blocks, "🟩")
		}
		labels = append(labels, fmt.Sprintf("%-4s", day.Format("Mon")))
	}

	fmt.Println(strings.Join(blocks, "  "))
	fmt.Println(ui.StyleMuted.Render(strings.Join(labels, "")))
}

// renderTypes displays a horizontal bar chart of files per type
func renderTypes(types []services.TypeStat) {
	if len(types) == 0 {
		fmt.Println(ui.FormatMuted("No files yet."))
		return
	}

	fmt.Println(ui.StyleHeader.Render("Files by Type"))

	maxCount := types[0].Count
	barWidth := 20
	for _, t := range types {
		length := int(math.Ceil(float64(t.Count) / float64(maxCount) * float64(barWidth)))
		fmt.Printf("%s %-15s %s\n",
			ui.StyleAccent.Render(padRight(strings.Repeat("█", length), barWidth)),
			orDash(t.Type),
			ui.StyleMuted.Render(fmt.Sprintf("%d (%s)", t.Count, domain.FormatBytes(t.Bytes, 1))),
		)
	}
}

func renderQuota(stats *services.Stats) {
	if stats.StoreUsage < 0 {
		return
	}

	fmt.Println()
	fmt.Println(ui.StyleHeader.Render("Storage"))

	pct := stats.QuotaPercent()
	if pct < 0 {
		fmt.Printf("%s used (no quota)\n", domain.FormatBytes(stats.StoreUsage, 2))
		return
	}

	barWidth := 30
	filled := min(int(math.Round(pct/100*float64(barWidth))), barWidth)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	style := ui.StyleSuccess
	switch {
	case pct >= 90:
		style = ui.StyleError
	case pct >= 75:
		style = ui.StyleWarning
	}
	fmt.Printf("%s %.1f%%  %s\n", style.Render(bar), pct,
		ui.StyleMuted.Render(fmt.Sprintf("%s of %s across %d stored catalog(s)",
			domain.FormatBytes(stats.StoreUsage, 2), domain.FormatBytes(stats.StoreQuota, 2), stats.StoreKeys)))
}

// writeTypeChart renders files per type as an HTML pie chart
func writeTypeChart(path string, types []services.TypeStat) error {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Files by Type"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	items := make([]opts.PieData, 0, len(types))
	for _, t := range types {
		items = append(items, opts.PieData{Name: orDash(t.Type), Value: t.Count})
	}
	pie.AddSeries("files", items).SetSeriesOptions(
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
	)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pie.Render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func padRight(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
