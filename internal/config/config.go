// Package config handles TOML configuration loading with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the top-level configuration for scsidecode.
type Config struct {
	Tables    TablesConfig    `toml:"tables"`
	Output    OutputConfig    `toml:"output"`
	Inventory InventoryConfig `toml:"inventory"`
	DB        DBConfig        `toml:"db"`
	Log       LogConfig       `toml:"log"`
}

// TablesConfig points at external reference-table overrides.
type TablesConfig struct {
	// Dir holds two-column .tsv files replacing the embedded tables;
	// empty keeps the embedded defaults for every category.
	Dir string `toml:"dir"`
}

// OutputConfig controls record presentation.
type OutputConfig struct {
	// Mode is raw, decoded, or combined.
	Mode string `toml:"mode"`
}

// InventoryConfig selects the enrichment source. Mode is one of
// "live", "cached", "bundle", or empty for no enrichment.
type InventoryConfig struct {
	Mode       string `toml:"mode"`
	Host       string `toml:"host"`
	Endpoint   string `toml:"endpoint"`
	CacheDir   string `toml:"cache_dir"`
	BundleRoot string `toml:"bundle_root"`
}

// DBConfig controls the record store.
type DBConfig struct {
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration wraps time.Duration for TOML string parsing (e.g. "5m", "720h").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Mode: "combined",
		},
		DB: DBConfig{
			Retention: Duration{90 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "scsidecode", "config.toml")
}

// Load reads configuration from the given path, falling back to defaults
// for any unset fields. If the file does not exist, returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// DBPath returns the record database path, defaulting to the user data
// directory.
func (c *Config) DBPath() string {
	if c.DB.Path != "" {
		return c.DB.Path
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "scsidecode", "records.db")
}
