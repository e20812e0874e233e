package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	DefaultRecordBackend       = BackendJSON
	DefaultLogLevel            = "info"
	DefaultMaxMediaBytes int64 = 15 * 1024 * 1024

	DefaultDataDirName = ".tellfind"
	configFileName     = ".tellfind.toml"

	configDirEnvKey = "TELLFIND_CONFIG_DIR"
	dataDirEnvKey   = "TELLFIND_DATA_DIR"
	sheetsURLEnvKey = "TELLFIND_SHEETS_URL"
	logLevelEnvKey  = "TELLFIND_LOG_LEVEL"
)

// Config defines runtime configuration for tellfind. Relative store
// paths resolve against DataDir; empty ones take well-known names
// there.
type Config struct {
	DataDir         string `toml:"data_dir"`
	RecordBackend   string `toml:"record_backend"`
	RecordsPath     string `toml:"records_path"`
	MediaDBPath     string `toml:"media_db_path"`
	SitesPath       string `toml:"sites_path"`
	SessionPath     string `toml:"session_path"`
	MaxMediaBytes   int64  `toml:"max_media_bytes"`
	SheetsScriptURL string `toml:"sheets_script_url"`
	LogLevel        string `toml:"log_level"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		RecordBackend: DefaultRecordBackend,
		MaxMediaBytes: DefaultMaxMediaBytes,
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads the config file and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	if err := loadFileIfExists(path, &cfg); err != nil {
		return nil, err
	}

	if dataDir := strings.TrimSpace(os.Getenv(dataDirEnvKey)); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if scriptURL := strings.TrimSpace(os.Getenv(sheetsURLEnvKey)); scriptURL != "" {
		cfg.SheetsScriptURL = scriptURL
	}
	if level := strings.TrimSpace(os.Getenv(logLevelEnvKey)); level != "" {
		cfg.LogLevel = level
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = filepath.Join(home, DefaultDataDirName)
	}
	if cfg.RecordBackend == "" {
		cfg.RecordBackend = DefaultRecordBackend
	}
	if cfg.MaxMediaBytes <= 0 {
		cfg.MaxMediaBytes = DefaultMaxMediaBytes
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns the config file location: the TELLFIND_CONFIG_DIR
// override, else the user's home directory.
func Path() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(configDirEnvKey)); dir != "" {
		return filepath.Join(dir, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.RecordBackend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("record_backend must be %q or %q, got %q", BackendJSON, BackendSQLite, c.RecordBackend)
	}
	if c.MaxMediaBytes <= 0 {
		return fmt.Errorf("max_media_bytes must be positive, got %d", c.MaxMediaBytes)
	}
	return nil
}

// RecordsFile returns the record store path for the active backend.
func (c *Config) RecordsFile() string {
	name := "finds.json"
	if c.RecordBackend == BackendSQLite {
		name = "finds.db"
	}
	return c.resolve(c.RecordsPath, name)
}

// MediaDBFile returns the blob store database path.
func (c *Config) MediaDBFile() string {
	return c.resolve(c.MediaDBPath, "media.db")
}

// SitesFile returns the site registry path.
func (c *Config) SitesFile() string {
	return c.resolve(c.SitesPath, "sites.json")
}

// SessionFile returns the persisted login path.
func (c *Config) SessionFile() string {
	return c.resolve(c.SessionPath, "user.json")
}

// EnsureDataDir creates the data directory if needed.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0o755)
}

func (c *Config) resolve(path, defaultName string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return filepath.Join(c.DataDir, defaultName)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

func loadFileIfExists(path string, cfg *Config) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}
