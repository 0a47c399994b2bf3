package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// Vault represents the managed storage directory for dx
type Vault struct {
	RootPath    string
	StorePath   string
	ExportsPath string
	ConfigPath  string
}

// New creates a new Vault instance with XDG-compliant paths
func New() (*Vault, error) {
	rootPath, rootErr := getVaultRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine vault root: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return NewAt(rootPath, configPath), nil
}

// NewAt lays out a vault under rootPath
func NewAt(rootPath, configPath string) *Vault {
	return &Vault{
		RootPath:    rootPath,
		StorePath:   filepath.Join(rootPath, "store"),
		ExportsPath: filepath.Join(rootPath, "exports"),
		ConfigPath:  configPath,
	}
}

// getVaultRoot returns the vault root directory path
// Follows XDG Base Directory specification on Unix and uses AppData on Windows
func getVaultRoot() (string, error) {
	if dxHome := os.Getenv("DX_HOME"); dxHome != "" {
		return dxHome, nil
	}

	// Check XDG_DATA_HOME first (Unix-like systems)
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "dx"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// Check if we're on Windows by looking for APPDATA
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "dx"), nil
	}

	// Fall back to ~/.local/share/dx (Unix-like systems)
	return filepath.Join(homeDir, ".local", "share", "dx"), nil
}

func getConfigPath() (string, error) {
	// Check XDG_CONFIG_HOME first (Unix-like systems)
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "dx", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// Check if we're on Windows by looking for APPDATA
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "dx-config", "config.yaml"), nil
	}

	// Fall back to ~/.config/dx/config.yaml (Unix-like systems)
	return filepath.Join(homeDir, ".config", "dx", "config.yaml"), nil
}

// Initialize creates the vault directory structure if it doesn't exist
func (v *Vault) Initialize() error {
	directories := []string{
		v.RootPath,
		v.StorePath,
		v.ExportsPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the vault has been initialized
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SessionPath returns the path of the signed-in profile file
func (v *Vault) SessionPath() string {
	return filepath.Join(v.RootPath, "session.yaml")
}

// DatabasePath returns the path of the SQLite backend
func (v *Vault) DatabasePath() string {
	return filepath.Join(v.RootPath, "dx.db")
}

// GetExportPath returns the full path for an exported file
func (v *Vault) GetExportPath(filename string) string {
	return filepath.Join(v.ExportsPath, filename)
}

// CleanExports removes all files in the exports directory
func (v *Vault) CleanExports() error {
	entries, err := os.ReadDir(v.ExportsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read exports directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(v.ExportsPath, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	return nil
}
