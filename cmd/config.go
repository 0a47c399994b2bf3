package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/dx-cli/pkg/ui"
)

var configShow bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edit the dx configuration file",
	Long: `Open the configuration file in $EDITOR.

With --show, print the effective configuration instead: the file merged
with DX_* environment variables and global flags.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&configShow, "show", false, "Print the effective configuration")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := appVault.ConfigPath

	if configShow {
		data, err := yaml.Marshal(appConfig)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		fmt.Println(ui.StyleMuted.Render("# " + path))
		fmt.Print(string(data))
		return nil
	}

	// Ensure it exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("config file not found at %s", path)
	}

	fmt.Println(ui.FormatInfo("Opening config: " + path))

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	c := exec.Command(editor, path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
