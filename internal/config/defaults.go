// Package config provides configuration loading and defaults for deltalens.
package config

import "time"

// DefaultConfigDir is the default location for deltalens configuration.
const DefaultConfigDir = "~/.config/deltalens"

// DefaultDBName is the filename for the SQLite cache.
const DefaultDBName = "deltalens.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. DELTALENS_SOURCE_TOKEN.
const EnvPrefix = "DELTALENS"

// Source kinds.
const (
	SourceFile = "file"
	SourceHTTP = "http"
)

// DefaultSource reads a sheet export from the home directory.
var DefaultSource = Source{
	Kind:    SourceFile,
	Path:    "~/deltalens/sheet",
	Timeout: 30 * time.Second,
}

// DefaultCache keeps the SQLite cache next to the config file.
var DefaultCache = Cache{
	Enabled: true,
	Path:    DefaultConfigDir + "/" + DefaultDBName,
}

// DefaultCluster splits sessions after 15 idle minutes.
var DefaultCluster = Cluster{
	MaxGap: 15 * time.Minute,
}

// DefaultTimezone is the zone "local day" reports use.
const DefaultTimezone = "Local"

// DefaultServe binds the web viewer to loopback.
var DefaultServe = Serve{
	Addr: "127.0.0.1:7429",
}

// DefaultOutput holds the default output preferences. A zero width means
// detect the terminal width.
var DefaultOutput = Output{
	Color: true,
	Width: 0,
}

// DefaultSyncInterval is how often sync --watch polls.
const DefaultSyncInterval = 5 * time.Minute
