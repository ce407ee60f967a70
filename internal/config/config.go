package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// AppDirName is the per-user application directory under the home directory.
const AppDirName = ".tcg-collection"

// Watch modes.
const (
	WatchModeWantList = "wantlist"
	WatchModeDetailed = "detailed"
)

// Config represents the application configuration.
type Config struct {
	// Library files
	Library LibraryConfig `toml:"library"`

	// Catalog and run history database
	Storage StorageConfig `toml:"storage"`

	// Card code lookups
	Catalog CatalogConfig `toml:"catalog"`

	// Report output
	Output OutputConfig `toml:"output"`

	// Library watcher
	Watch WatchConfig `toml:"watch"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// LibraryConfig locates the wanted and owned card files.
type LibraryConfig struct {
	Dir            string `toml:"dir"`              // Library directory (decks/, collections/)
	OwnedFile      string `toml:"owned_file"`       // Owned collection, relative to Dir unless absolute
	ThirdPartyFile string `toml:"third_party_file"` // Default list for the thirdparty command
}

// StorageConfig contains database settings.
type StorageConfig struct {
	DBPath         string `toml:"db_path"`         // SQLite database path
	AutoMigrate    bool   `toml:"auto_migrate"`    // Apply migrations on open
	BackupDir      string `toml:"backup_dir"`      // Backup directory; empty means backups/ next to the database
	BackupInterval string `toml:"backup_interval"` // Scheduled backups while watching (e.g., "24h"); empty disables
	BackupKeep     int    `toml:"backup_keep"`     // Scheduled backups retained; 0 keeps all
}

// CatalogConfig contains card lookup settings.
type CatalogConfig struct {
	CacheSize     int  `toml:"cache_size"`     // Resolved codes kept in memory
	CreateUnknown bool `toml:"create_unknown"` // Accept codes missing from the catalog
}

// OutputConfig contains report settings.
type OutputConfig struct {
	Dir string `toml:"dir"` // Reports are written here; empty writes to stdout
}

// WatchConfig contains library watcher settings.
type WatchConfig struct {
	Debounce    string `toml:"debounce"`     // Quiet period before a reload (e.g., "500ms")
	MinInterval string `toml:"min_interval"` // Minimum time between reloads (e.g., "2s")
	Mode        string `toml:"mode"`         // Report to refresh: "wantlist" or "detailed"
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			Dir:       filepath.Join("~", AppDirName, "library"),
			OwnedFile: "owned.yaml",
		},
		Storage: StorageConfig{
			DBPath:      filepath.Join("~", AppDirName, "collection.db"),
			AutoMigrate: true,
			BackupKeep:  7,
		},
		Catalog: CatalogConfig{
			CacheSize:     4096,
			CreateUnknown: true,
		},
		Output: OutputConfig{
			Dir: "",
		},
		Watch: WatchConfig{
			Debounce:    "500ms",
			MinInterval: "2s",
			Mode:        WatchModeDetailed,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, AppDirName, "config.toml"), nil
}

// Load loads the configuration from path, or from DefaultPath when path is
// empty. Returns default config if the file doesn't exist. Settings missing
// from the file keep their defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Library.Dir) == "" {
		return fmt.Errorf("library dir must be set")
	}

	if strings.TrimSpace(c.Storage.DBPath) == "" {
		return fmt.Errorf("storage db_path must be set")
	}

	if c.Storage.BackupInterval != "" {
		d, err := time.ParseDuration(c.Storage.BackupInterval)
		if err != nil {
			return fmt.Errorf("invalid backup interval %q: %w", c.Storage.BackupInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("backup interval must be positive: %s", d)
		}
	}
	if c.Storage.BackupKeep < 0 {
		return fmt.Errorf("backup keep cannot be negative: %d", c.Storage.BackupKeep)
	}

	if c.Catalog.CacheSize <= 0 {
		return fmt.Errorf("catalog cache size must be positive: %d", c.Catalog.CacheSize)
	}

	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("invalid watch debounce %q: %w", c.Watch.Debounce, err)
	}
	if d <= 0 {
		return fmt.Errorf("watch debounce must be positive: %s", d)
	}

	if d, err := time.ParseDuration(c.Watch.MinInterval); err != nil {
		return fmt.Errorf("invalid watch min interval %q: %w", c.Watch.MinInterval, err)
	} else if d < 0 {
		return fmt.Errorf("watch min interval cannot be negative: %s", d)
	}

	switch c.Watch.Mode {
	case WatchModeWantList, WatchModeDetailed:
	default:
		return fmt.Errorf("invalid watch mode %q", c.Watch.Mode)
	}

	return nil
}

// GetBackupInterval returns the scheduled backup interval; zero means disabled.
func (c *Config) GetBackupInterval() (time.Duration, error) {
	if c.Storage.BackupInterval == "" {
		return 0, nil
	}
	return time.ParseDuration(c.Storage.BackupInterval)
}

// GetWatchMinInterval returns the minimum time between reloads as a duration.
func (c *Config) GetWatchMinInterval() (time.Duration, error) {
	return time.ParseDuration(c.Watch.MinInterval)
}

// GetWatchDebounce returns the watch debounce as a duration.
func (c *Config) GetWatchDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Watch.Debounce)
}

// LibraryDir returns the library directory with "~" expanded.
func (c *Config) LibraryDir() (string, error) {
	return ExpandPath(c.Library.Dir)
}

// DBPath returns the database path with "~" expanded.
func (c *Config) DBPath() (string, error) {
	return ExpandPath(c.Storage.DBPath)
}

// BackupDir returns the configured backup directory with "~" expanded, or
// an empty string when backups go next to the database.
func (c *Config) BackupDir() (string, error) {
	if c.Storage.BackupDir == "" {
		return "", nil
	}
	return ExpandPath(c.Storage.BackupDir)
}

// ExpandPath replaces a leading "~" with the home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
