// Package config handles configuration loading for dashcore.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Pie       PieConfig       `mapstructure:"pie"       yaml:"pie"`
	Feed      FeedConfig      `mapstructure:"feed"      yaml:"feed"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// DashboardConfig selects the data the dashboard renders and how figures are formatted.
type DashboardConfig struct {
	DataFile    string `mapstructure:"data_file"    yaml:"data_file"` // empty: built-in mock data
	Statement   string `mapstructure:"statement"    yaml:"statement"`
	Period      int    `mapstructure:"period"       yaml:"period"` // 0 = most recent
	PieDataset  string `mapstructure:"pie_dataset"  yaml:"pie_dataset"`
	Currency    string `mapstructure:"currency"     yaml:"currency"`
	NumberStyle string `mapstructure:"number_style" yaml:"number_style"` // "western" or "indian"
}

// PieConfig holds pie chart geometry and colours.
type PieConfig struct {
	CenterX float64  `mapstructure:"center_x" yaml:"center_x"`
	CenterY float64  `mapstructure:"center_y" yaml:"center_y"`
	Radius  float64  `mapstructure:"radius"   yaml:"radius"`
	Palette []string `mapstructure:"palette"  yaml:"palette"`
}

// FeedConfig controls the simulated live statement feed.
type FeedConfig struct {
	Enabled     bool    `mapstructure:"enabled"      yaml:"enabled"`
	IntervalSec int     `mapstructure:"interval_sec" yaml:"interval_sec"`
	JitterPct   float64 `mapstructure:"jitter_pct"   yaml:"jitter_pct"` // max relative change per tick, percent
	Seed        int64   `mapstructure:"seed"         yaml:"seed"`       // 0: time-based
}

// Interval returns the feed tick interval.
func (f FeedConfig) Interval() time.Duration {
	return time.Duration(f.IntervalSec) * time.Second
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"          yaml:"host"`
	Port        int      `mapstructure:"port"          yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"  yaml:"cors_origins"`
	ServeUI     bool     `mapstructure:"serve_ui"      yaml:"serve_ui"`      // embedded dashboard page at /
	CacheTTLSec int      `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"` // rendered SVG/report cache; 0 disables
}

// CacheTTL returns how long rendered charts and reports are reused.
func (a APIConfig) CacheTTL() time.Duration {
	return time.Duration(a.CacheTTLSec) * time.Second
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.dashcore/config.yaml (home directory)
//  3. /etc/dashcore/config.yaml (system)
//
// Environment variables override config file values.
// Format: DASHCORE_<SECTION>_<KEY>, e.g., DASHCORE_API_PORT
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".dashcore"))
	v.AddConfigPath("/etc/dashcore")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// Default returns the built-in defaults with environment overrides applied
// and no config file.
func Default() (*Config, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DASHCORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the renderers and feed cannot work with.
func (c *Config) Validate() error {
	switch c.Dashboard.NumberStyle {
	case "western", "indian":
	default:
		return fmt.Errorf("invalid dashboard.number_style %q (want western or indian)", c.Dashboard.NumberStyle)
	}
	if c.Dashboard.Period < 0 {
		return fmt.Errorf("invalid dashboard.period %d", c.Dashboard.Period)
	}
	if c.Pie.Radius <= 0 {
		return fmt.Errorf("invalid pie.radius %v", c.Pie.Radius)
	}
	if len(c.Pie.Palette) == 0 {
		return fmt.Errorf("pie.palette must not be empty")
	}
	if c.Feed.Enabled && c.Feed.IntervalSec <= 0 {
		return fmt.Errorf("invalid feed.interval_sec %d", c.Feed.IntervalSec)
	}
	if c.Feed.JitterPct < 0 || c.Feed.JitterPct > 100 {
		return fmt.Errorf("invalid feed.jitter_pct %v", c.Feed.JitterPct)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Dashboard defaults
	v.SetDefault("dashboard.data_file", "")
	v.SetDefault("dashboard.statement", "income")
	v.SetDefault("dashboard.period", 0)
	v.SetDefault("dashboard.pie_dataset", "region")
	v.SetDefault("dashboard.currency", "$")
	v.SetDefault("dashboard.number_style", "western")

	// Pie defaults
	v.SetDefault("pie.center_x", 160.0)
	v.SetDefault("pie.center_y", 160.0)
	v.SetDefault("pie.radius", 140.0)
	v.SetDefault("pie.palette", []string{"#2563eb", "#16a34a", "#f59e0b", "#dc2626", "#9333ea", "#0891b2"})

	// Feed defaults
	v.SetDefault("feed.enabled", true)
	v.SetDefault("feed.interval_sec", 5)
	v.SetDefault("feed.jitter_pct", 2.0)
	v.SetDefault("feed.seed", 0)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("api.serve_ui", true)
	v.SetDefault("api.cache_ttl_sec", 60)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
