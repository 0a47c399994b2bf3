package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/dx-cli/internal/adapters/identity"
	"github.com/kamal-hamza/dx-cli/internal/adapters/idgen"
	"github.com/kamal-hamza/dx-cli/internal/adapters/kvstore"
	"github.com/kamal-hamza/dx-cli/internal/adapters/repository"
	"github.com/kamal-hamza/dx-cli/internal/core/domain"
	"github.com/kamal-hamza/dx-cli/internal/core/ports"
	"github.com/kamal-hamza/dx-cli/internal/core/services"
	"github.com/kamal-hamza/dx-cli/pkg/config"
	"github.com/kamal-hamza/dx-cli/pkg/ui"
	"github.com/kamal-hamza/dx-cli/pkg/vault"
)

var (
	// Global vault instance
	appVault  *vault.Vault
	appConfig *config.Config
	appViper  = config.NewViper()
	logger    *slog.Logger

	// Storage
	kvStore     ports.KVStore
	catalogRepo *repository.CatalogRepository
	profile     *identity.ProfileProvider

	// Services
	catalogService *services.CatalogService
	ingestService  *services.IngestService
	browseService  *services.BrowseService
	statsService   *services.StatsService
)

// commands that open the session themselves, if at all
var sessionFree = map[string]bool{
	"login":  true,
	"logout": true,
	"whoami": true,
	"config": true,
	"purge":  true,
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dx",
	Short: "DX - A personal file catalog",
	Long: ui.StyleTitle.Render("DX") + " - Personal File Catalog\n\n" +
		"Catalog the files you upload, keep notes on them and browse them by day.\n" +
		"Each signed-in identity has its own catalog, persisted locally.",
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	RunE:               runDefaultAction,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	// Global flags, also settable as DX_BACKEND, DX_LOG_LEVEL, DX_LOG_FORMAT
	flags := rootCmd.PersistentFlags()
	flags.String("backend", "", "Storage backend (file|sqlite)")
	flags.String("log-level", "", "Log level (debug|info|warn|error)")
	flags.String("log-format", "", "Log format (text|json)")
	appViper.BindPFlag("backend", flags.Lookup("backend"))
	appViper.BindPFlag("log_level", flags.Lookup("log-level"))
	appViper.BindPFlag("log_format", flags.Lookup("log-format"))
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	// Skip initialization for commands that don't touch the vault
	switch cmd.Name() {
	case "init", "version", "help", "completion":
		return nil
	}

	// Create vault instance
	v, err := vault.New()
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	appVault = v

	// Check if vault exists
	if !appVault.Exists() {
		fmt.Println(ui.FormatError("Vault not initialized"))
		fmt.Println(ui.FormatInfo("Run 'dx init' to initialize the vault"))
		return errors.New("vault not initialized")
	}

	// Load configuration, then let flags and DX_* variables win
	cfg, err := config.Load(appVault.ConfigPath)
	if err != nil {
		fmt.Println(ui.FormatWarning("Using default config: " + err.Error()))
		cfg = config.DefaultConfig()
	}
	cfg.Overlay(appViper)
	appConfig = cfg

	ui.SetTheme(appConfig.ColorTheme)
	logger = config.SetupLogger(appConfig, os.Stderr)

	profile = identity.NewProfileProvider(appVault.SessionPath())

	if sessionFree[cmd.Name()] {
		return nil
	}

	if err := buildServices(); err != nil {
		return err
	}
	return openSession(getContext())
}

// buildServices wires storage and services from appConfig
func buildServices() error {
	store, err := openKVStore(appConfig, appVault)
	if err != nil {
		return err
	}
	kvStore = store

	catalogRepo, err = repository.NewCatalogRepository(kvStore, appConfig.KeyPrefix, appConfig.CacheSize, logger)
	if err != nil {
		return err
	}

	catalogService = services.NewCatalogService(catalogRepo, logger)
	ingestService = services.NewIngestService(catalogService, &idgen.UUIDGenerator{}, ports.SystemClock{}, logger,
		services.IngestOptions{
			MaxWorkers:      appConfig.MaxWorkers,
			MaxPreviewBytes: appConfig.MaxPreviewBytes,
		})
	browseService = services.NewBrowseService(catalogService, ports.SystemClock{}, appConfig.LongDateFormat)
	statsService = services.NewStatsService(catalogService, kvStore, appConfig.StorageQuotaBytes)

	logger.Debug("services ready",
		slog.String("backend", appConfig.Backend),
		slog.Int64("quota", appConfig.StorageQuotaBytes))
	return nil
}

// openKVStore selects the storage backend
func openKVStore(cfg *config.Config, v *vault.Vault) (ports.KVStore, error) {
	switch cfg.Backend {
	case "sqlite":
		return kvstore.NewSQLiteStore(v.DatabasePath(), cfg.StorageQuotaBytes)
	default:
		return kvstore.NewFileStore(v.StorePath, cfg.StorageQuotaBytes)
	}
}

// openSession loads the catalog of the signed-in identity
func openSession(ctx context.Context) error {
	current, err := profile.Current(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotSignedIn) {
			fmt.Println(ui.FormatError("Not signed in"))
			fmt.Println(ui.FormatInfo("Run 'dx login --uid <uid>' first"))
		}
		return err
	}
	return catalogService.Open(ctx, *current)
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if kvStore != nil {
		return kvStore.Close()
	}
	return nil
}

// runDefaultAction runs the configured command for a bare `dx`
func runDefaultAction(cmd *cobra.Command, args []string) error {
	switch appConfig.DefaultAction {
	case "explore":
		return runExplore(cmd, args)
	case "stats":
		return runStats(cmd, args)
	default:
		return runList(cmd, args)
	}
}

// reportPersistError prints a warning for changes that stayed in memory only
func reportPersistError(err error) error {
	if errors.Is(err, domain.ErrNotPersisted) {
		fmt.Println(ui.FormatWarning("Change applied but not saved: " + err.Error()))
		if errors.Is(err, domain.ErrQuotaExceeded) {
			fmt.Println(ui.FormatInfo("Storage is full. Delete files or raise storage_quota_bytes."))
		}
	}
	return err
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
