package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/adapters/blob"
	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
	"github.com/kamal-hamza/dx-cli/internal/core/services"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	uploadRecursive bool
)

var uploadCmd = &cobra.Command{
	Use:     "upload <files...>",
	Short:   "Add files to the catalog",
	Aliases: []string{"up", "add"},
	Long: `Add files to the catalog of the signed-in identity.

Every file gets a record with its name, type, size and upload time.
Images also get an inline preview so they can be shown later with 'dx show'.
Files that cannot be read are skipped; the rest of the batch still goes in.

Examples:
  dx upload report.pdf
  dx upload ~/Pictures/*.png
  dx upload -r ~/Downloads/receipts`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "Walk directories")
}

func runUpload(cmd *cobra.Command, args []string) error {
	blobs, errs := blob.Collect(args, uploadRecursive)
	for _, err := range errs {
		fmt.Println(ui.FormatWarning(err.Error()))
	}
	if len(blobs) == 0 {
		fmt.Println(ui.FormatWarning("Nothing to upload"))
		return nil
	}

	fmt.Println(ui.FormatInfo(fmt.Sprintf("Uploading %d file(s)...", len(blobs))))
	results := ingestService.Ingest(getContext(), blobs)
	return reportIngest(results)
}

// reportIngest prints one line per result and a summary
func reportIngest(results []services.IngestResult) error {
	var ingested, failed, unsaved int
	var lastPersistErr error

	for _, res := range results {
		switch {
		case res.Err == nil:
			ingested++
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("%s %s %s",
				ui.FileIcon(res.Record.Name, res.Record.MimeType),
				res.Record.Name,
				ui.FormatMuted(domain.FormatBytes(res.Record.SizeBytes, 2)))))
		case res.Ingested():
			ingested++
			unsaved++
			lastPersistErr = res.Err
			fmt.Println(ui.FormatWarning(res.Name + " added but not saved"))
		default:
			failed++
			fmt.Println(ui.FormatError(res.Name + ": " + res.Err.Error()))
		}
	}

	fmt.Println()
	summary := fmt.Sprintf("%d uploaded", ingested)
	if failed > 0 {
		summary += fmt.Sprintf(", %d skipped", failed)
	}
	fmt.Println(ui.FormatInfo(summary))

	if unsaved > 0 {
		return reportPersistError(lastPersistErr)
	}
	if ingested == 0 && failed > 0 {
		return errors.New("no files uploaded")
	}
	return nil
}

// ingestPaths is shared by upload-style callers that already hold paths
func ingestPaths(paths []string) []services.IngestResult {
	var blobs []ports.Blob
	for _, p := range paths {
		b, err := blob.NewLocalBlob(p)
		if err != nil {
			logger.Warn("skipping file", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		blobs = append(blobs, b)
	}
	if len(blobs) == 0 {
		return nil
	}
	return ingestService.Ingest(getContext(), blobs)
}
