package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/pkg/ui"
	"github.com/kamal-hamza/dx-cli/pkg/vault"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the dx vault",
	Long: `Initialize the dx vault directory structure.

This creates the managed vault at ~/.local/share/dx/ with the following structure:
  - store/       : Catalogs of the file backend (one JSON document per identity)
  - exports/     : Previews and catalog dumps written by 'dx show' and 'dx export'
  - config.yaml  : Global configuration (under ~/.config/dx/)

Set DX_HOME to place the vault elsewhere.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Create vault instance
	v, err := vault.New()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine vault location"))
		return err
	}

	// Check if already initialized
	if v.Exists() {
		fmt.Println(ui.FormatWarning("Vault already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + v.RootPath))
		return nil
	}

	// Initialize the vault
	fmt.Println(ui.FormatRocket("Initializing dx vault..."))
	fmt.Println()

	if err := v.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize vault"))
		return err
	}

	// Create default config
	if err := createDefaultConfig(v); err != nil {
		fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
		// Don't fail - config is optional
	} else {
		fmt.Println(ui.FormatSuccess("Default config created"))
	}

	// Success message
	fmt.Println(ui.FormatSuccess("Vault initialized successfully!"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Location", v.RootPath))
	fmt.Println(ui.RenderKeyValue("Config", v.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Next steps:"))
	fmt.Println(ui.FormatMuted("  1. Sign in: dx login --uid <uid> --email <email>"))
	fmt.Println(ui.FormatMuted("  2. Upload files: dx upload ~/Pictures/*.png"))
	fmt.Println(ui.FormatMuted("  3. Browse them: dx list"))

	return nil
}

func createDefaultConfig(v *vault.Vault) error {
	// Keep an existing config across re-inits
	if _, err := os.Stat(v.ConfigPath); err == nil {
		return nil
	}

	defaultConfig := `# DX Configuration
# This file is optional - all settings have sensible defaults.
# Any key can be overridden with a DX_<KEY> environment variable.

# Storage backend: "file" (one JSON file per identity) or "sqlite"
# backend: file

# Capacity across all stored catalogs, in bytes (0 = unlimited)
# storage_quota_bytes: 5242880

# Largest image (in bytes) that gets an inline preview (0 = unlimited)
# max_preview_bytes: 0

# Concurrent image reads during upload
# max_workers: 4

# What a bare 'dx' runs: list, explore or stats
# default_action: list

# Layout for day headings older than yesterday (Go time layout)
# long_date_format: "January 2, 2006"

# Logging to stderr: debug, info, warn, error / text, json
# log_level: warn
# log_format: text
`

	configDir := filepath.Dir(v.ConfigPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(v.ConfigPath, []byte(defaultConfig), 0644)
}
