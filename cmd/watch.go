package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/adapters/dropfolder"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var (
	watchExisting bool
	watchQuiet    bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Upload files dropped into a folder",
	Long: `Watch a folder and upload every file that lands in it.

A file is uploaded once it has stopped changing for watch_debounce_ms
(default 500ms), so large copies are picked up when they finish.
Hidden files and partial downloads (.part, .crdownload, .tmp) are ignored.

Examples:
  dx watch ~/Drop
  dx watch ~/Drop --existing`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Upload files already in the folder first")
	watchCmd.Flags().BoolVarP(&watchQuiet, "quiet", "q", false, "Only report failures")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		fmt.Println(ui.FormatError("Not a directory: " + dir))
		return fmt.Errorf("not a directory: %s", dir)
	}

	ctx, stop := signal.NotifyContext(getContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debounce := time.Duration(appConfig.WatchDebounceMS) * time.Millisecond
	w := dropfolder.New(dir, debounce, logger)

	if watchExisting {
		paths, err := w.Existing()
		if err != nil {
			return err
		}
		uploadDropped(paths)
	}

	if !watchQuiet {
		fmt.Println(ui.FormatRocket("Watching " + ui.StyleBold.Render(dir)))
		fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
		fmt.Println()
	}

	if err := w.Run(ctx, uploadDropped); err != nil {
		return err
	}

	if !watchQuiet {
		fmt.Println()
		fmt.Println(ui.FormatMuted("Watcher stopped"))
	}
	return nil
}

func uploadDropped(paths []string) {
	if len(paths) == 0 {
		return
	}

	// Pick up edits made by other dx processes since the last batch
	if err := openSession(getContext()); err != nil {
		fmt.Println(ui.FormatError("Failed to reload catalog: " + err.Error()))
		return
	}

	for _, res := range ingestPaths(paths) {
		switch {
		case res.Err == nil:
			if !watchQuiet {
				fmt.Println(ui.FormatSuccess(fmt.Sprintf("%s %s %s",
					time.Now().Format("15:04:05"),
					ui.FileIcon(res.Record.Name, res.Record.MimeType),
					res.Record.Name)))
			}
		case res.Ingested():
			fmt.Println(ui.FormatWarning(res.Name + " added but not saved: " + res.Err.Error()))
		default:
			fmt.Println(ui.FormatError(res.Name + ": " + res.Err.Error()))
		}
	}
}
