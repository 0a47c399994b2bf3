package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.Backend != "file" {
		t.Errorf("expected default Backend='file', got %q", cfg.Backend)
	}

	if cfg.StorageQuotaBytes != 5*1024*1024 {
		t.Errorf("expected default StorageQuotaBytes=5MiB, got %d", cfg.StorageQuotaBytes)
	}

	if cfg.KeyPrefix != "driveFiles_" {
		t.Errorf("expected default KeyPrefix='driveFiles_', got %q", cfg.KeyPrefix)
	}

	if cfg.MaxWorkers != 4 {
		t.Errorf("expected default MaxWorkers=4, got %d", cfg.MaxWorkers)
	}

	if cfg.LongDateFormat != "January 2, 2006" {
		t.Errorf("expected default LongDateFormat, got %q", cfg.LongDateFormat)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	// Loading a non-existent file should return default config
	cfg, err := Load("/nonexistent/path/config.yaml")

	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Backend != "file" {
		t.Errorf("expected default Backend='file', got %q", cfg.Backend)
	}
}

func TestSave_And_Load(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Backend = "sqlite"
	cfg.StorageQuotaBytes = 1024
	cfg.MaxWorkers = 8
	cfg.LogFormat = "json"

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if *loadedCfg != *cfg {
		t.Errorf("loaded config = %+v, want %+v", *loadedCfg, *cfg)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "partial file keeps given values",
			yaml: "backend: sqlite\nmax_preview_bytes: 2048\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Backend != "sqlite" || cfg.MaxPreviewBytes != 2048 {
					t.Errorf("given values lost: %+v", cfg)
				}
				if cfg.MaxWorkers != 4 || cfg.KeyPrefix != "driveFiles_" {
					t.Errorf("defaults not applied: %+v", cfg)
				}
			},
		},
		{
			name: "unknown backend",
			yaml: "backend: s3\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.Backend != "file" {
					t.Errorf("Backend = %q, want file", cfg.Backend)
				}
			},
		},
		{
			name: "zero workers",
			yaml: "max_workers: 0\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.MaxWorkers != 4 {
					t.Errorf("MaxWorkers = %d, want 4", cfg.MaxWorkers)
				}
			},
		},
		{
			name: "negative workers",
			yaml: "max_workers: -5\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.MaxWorkers != 4 {
					t.Errorf("MaxWorkers = %d, want 4", cfg.MaxWorkers)
				}
			},
		},
		{
			name: "zero quota means unlimited",
			yaml: "storage_quota_bytes: 0\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.StorageQuotaBytes != 0 {
					t.Errorf("StorageQuotaBytes = %d, want 0", cfg.StorageQuotaBytes)
				}
			},
		},
		{
			name: "unknown log format",
			yaml: "log_format: xml\n",
			check: func(t *testing.T, cfg *Config) {
				if cfg.LogFormat != "text" {
					t.Errorf("LogFormat = %q, want text", cfg.LogFormat)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.yaml), 0644); err != nil {
				t.Fatalf("failed to create test config file: %v", err)
			}

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	yamlContent := `backend: file
key_prefix: [invalid yaml structure
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected error loading invalid YAML, got nil")
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", "dir", "config.yaml")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	data, _ := os.ReadFile(configPath)
	if !strings.Contains(string(data), "storage_quota_bytes") {
		t.Error("config file should contain storage_quota_bytes")
	}
}

func TestDefaultAction_ValidValues(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"list", "list", "list"},
		{"explore", "explore", "explore"},
		{"stats", "stats", "stats"},
		{"empty defaults to list", "", "list"},
		{"invalid defaults to list", "invalid", "list"},
		{"delete is invalid", "delete", "list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")

			yamlContent := ""
			if tt.value != "" {
				yamlContent = "default_action: " + tt.value + "\n"
			}

			if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
				t.Fatalf("failed to create test config file: %v", err)
			}

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}

			if cfg.DefaultAction != tt.expected {
				t.Errorf("DefaultAction: expected %q, got %q", tt.expected, cfg.DefaultAction)
			}
		})
	}
}
