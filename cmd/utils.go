package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

// errCancelled is returned when the user backs out of a selection
var errCancelled = errors.New("cancelled")

// selectRecord picks one record. With no query the fuzzy finder lists the
// whole catalog; with a query the name search narrows it first.
func selectRecord(args []string, action string) (*domain.FileRecord, error) {
	records := catalogService.Records()
	if len(records) == 0 {
		fmt.Println(ui.FormatWarning("No files found"))
		return nil, errCancelled
	}

	if len(args) == 0 {
		idx, err := fuzzyfinder.Find(
			records,
			func(i int) string {
				return records[i].Name
			},
			fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
				if i == -1 {
					return ""
				}
				return recordPreview(records[i])
			}),
			fuzzyfinder.WithPromptString(action+" > "),
		)
		if err != nil {
			// User cancelled (Ctrl+C or ESC)
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil, errCancelled
		}
		return &records[idx], nil
	}

	query := strings.Join(args, " ")
	matches := domain.Filter(records, domain.FilterOptions{Search: query})
	switch len(matches) {
	case 0:
		fmt.Println(ui.FormatWarning("No files found matching: " + query))
		return nil, errCancelled
	case 1:
		return &matches[0], nil
	}

	// Use numbered list when query was provided
	fmt.Println(ui.FormatInfo(fmt.Sprintf("Found %d matches:", len(matches))))
	fmt.Println()
	for i, rec := range matches {
		fmt.Printf("  %d. %s %s %s\n",
			i+1,
			ui.FileIcon(rec.Name, rec.MimeType),
			ui.StyleBold.Render(rec.Name),
			ui.StyleMuted.Render("("+rec.GetDisplayDate(appConfig.LongDateFormat, nil)+")"))
	}
	fmt.Println()

	// Prompt for selection with retry loop
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(ui.StyleInfo.Render(fmt.Sprintf("Select a file (1-%d): ", len(matches))))

		input, err := reader.ReadString('\n')
		if err != nil {
			return nil, errCancelled
		}

		selection, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil {
			fmt.Println(ui.FormatWarning("Invalid input. Please enter a number."))
			continue
		}
		if selection < 1 || selection > len(matches) {
			fmt.Println(ui.FormatWarning(fmt.Sprintf("Please enter a number between 1 and %d.", len(matches))))
			continue
		}

		fmt.Println()
		return &matches[selection-1], nil
	}
}

// confirm asks a y/n question on stdin
func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}

// recordPreview is the multi-line summary used by selectors and `dx show`
func recordPreview(rec domain.FileRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", rec.Name)
	fmt.Fprintf(&b, "Type: %s\n", orDash(rec.MimeType))
	fmt.Fprintf(&b, "Size: %s\n", domain.FormatBytes(rec.SizeBytes, 2))
	fmt.Fprintf(&b, "Uploaded: %s\n", rec.UploadedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Preview: %t\n", rec.HasPreview())
	fmt.Fprintf(&b, "Note: %s", rec.GetNoteString())
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
