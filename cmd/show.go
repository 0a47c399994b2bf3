package cmd

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/services"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	showCopy bool
	showOut  string
	showSave bool
)

var showCmd = &cobra.Command{
	Use:   "show [query]",
	Short: "Show a file's details and preview",
	Long: `Show everything the catalog knows about a file.

Image previews can be written back to disk (--out, or --save to place it in
the vault's exports directory) or copied to the clipboard as a data URL.

Examples:
  dx show cat
  dx show cat --out ./cat.png
  dx show cat --copy`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().BoolVarP(&showCopy, "copy", "c", false, "Copy the preview data URL (or the name) to the clipboard")
	showCmd.Flags().StringVarP(&showOut, "out", "o", "", "Write the decoded preview to this path")
	showCmd.Flags().BoolVar(&showSave, "save", false, "Write the decoded preview to the exports directory")
}

func runShow(cmd *cobra.Command, args []string) error {
	rec, err := selectRecord(args, "show")
	if err != nil {
		return nil
	}

	fmt.Println(ui.FormatTitle(ui.FileIcon(rec.Name, rec.MimeType) + " " + rec.Name))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("ID", rec.ID))
	fmt.Println(ui.RenderKeyValue("Type", orDash(rec.MimeType)))
	fmt.Println(ui.RenderKeyValue("Size", domain.FormatBytes(rec.SizeBytes, 2)))
	fmt.Println(ui.RenderKeyValue("Uploaded", rec.GetDisplayDate("Monday, January 2, 2006 15:04", nil)))
	fmt.Println(ui.RenderKeyValue("Note", rec.GetNoteString()))
	if rec.HasPreview() {
		fmt.Println(ui.RenderKeyValue("Preview", domain.FormatBytes(int64(len(rec.PreviewData)), 2)+" inline"))
	}

	if showCopy {
		text := rec.Name
		if rec.HasPreview() {
			text = rec.PreviewData
		}
		if err := clipboard.WriteAll(text); err != nil {
			fmt.Println(ui.FormatWarning("Failed to copy to clipboard: " + err.Error()))
		} else {
			fmt.Println(ui.FormatSuccess("Copied to clipboard"))
		}
	}

	out := showOut
	if out == "" && showSave {
		out = appVault.GetExportPath(previewFilename(rec))
	}
	if out == "" {
		return nil
	}

	if !rec.HasPreview() {
		fmt.Println(ui.FormatWarning("No preview stored for this file"))
		return nil
	}
	if err := writePreview(rec, out); err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return err
	}
	fmt.Println(ui.FormatSuccess("Preview written to " + out))
	return nil
}

// writePreview decodes the record's preview into path
func writePreview(rec *domain.FileRecord, path string) error {
	_, data, err := services.DecodeDataURL(rec.PreviewData)
	if err != nil {
		return fmt.Errorf("stored preview is unreadable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}

// previewFilename keeps the record name, adding an extension for its type
// when the name has none
func previewFilename(rec *domain.FileRecord) string {
	name := filepath.Base(rec.Name)
	if filepath.Ext(name) != "" {
		return name
	}
	if exts, _ := mime.ExtensionsByType(rec.MimeType); len(exts) > 0 {
		return name + exts[0]
	}
	return strings.TrimSpace(name)
}
