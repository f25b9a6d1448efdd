package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid is returned for configuration values that cannot be used.
var ErrInvalid = errors.New("invalid configuration")

// Config is the top-level deltalens configuration.
type Config struct {
	Source      Source  `mapstructure:"source"`
	Cache       Cache   `mapstructure:"cache"`
	Cluster     Cluster `mapstructure:"cluster"`
	Timezone    string  `mapstructure:"timezone"`
	Serve       Serve   `mapstructure:"serve"`
	Output      Output  `mapstructure:"output"`
	DownloadDir string  `mapstructure:"download_dir"`

	location *time.Location
}

// Source says where the sheet and its deltas come from.
type Source struct {
	Kind    string        `mapstructure:"kind"`
	Path    string        `mapstructure:"path"`
	URL     string        `mapstructure:"url"`
	SheetID string        `mapstructure:"sheet_id"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Cache configures the SQLite delta cache.
type Cache struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Cluster configures how events are grouped into sessions.
type Cluster struct {
	MaxGap time.Duration `mapstructure:"max_gap"`
}

// Serve configures the web viewer.
type Serve struct {
	Addr string `mapstructure:"addr"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// Location returns the zone used for local-day logic.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. DELTALENS_* environment
// variables override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("source.kind", DefaultSource.Kind)
	v.SetDefault("source.path", DefaultSource.Path)
	v.SetDefault("source.url", "")
	v.SetDefault("source.sheet_id", "")
	v.SetDefault("source.token", "")
	v.SetDefault("source.timeout", DefaultSource.Timeout)
	v.SetDefault("cache.enabled", DefaultCache.Enabled)
	v.SetDefault("cache.path", DefaultCache.Path)
	v.SetDefault("cluster.max_gap", DefaultCluster.MaxGap)
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("serve.addr", DefaultServe.Addr)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("download_dir", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	switch cfg.Source.Kind {
	case SourceFile, SourceHTTP:
	default:
		return nil, fmt.Errorf("%w: source.kind %q (want %s or %s)", ErrInvalid, cfg.Source.Kind, SourceFile, SourceHTTP)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalid, cfg.Timezone, err)
	}
	cfg.location = loc

	if cfg.Cluster.MaxGap <= 0 {
		cfg.Cluster.MaxGap = DefaultCluster.MaxGap
	}

	cfg.Source.Path = expandPath(cfg.Source.Path)
	cfg.Cache.Path = expandPath(cfg.Cache.Path)
	cfg.DownloadDir = expandPath(cfg.DownloadDir)

	return &cfg, nil
}

// DBPath returns the default path to the SQLite cache.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
