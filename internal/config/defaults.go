// Package config handles taskt configuration.
package config

// Default values for a new data directory.
const (
	DefaultDirName       = "taskt"
	DefaultBackend       = BackendJSON
	DefaultJSONFile      = "tasks.json"
	DefaultSQLiteFile    = "taskt.db"
	DefaultRedisURL      = "redis://127.0.0.1:6379/0"
	DefaultRedisPrefix   = "taskt:"
	DefaultAuthorityMode = AuthorityHTTP
	DefaultAuthorityAddr = "127.0.0.1:7421"
	DefaultTimeout       = "2s"
	DefaultLogLevel      = "warn"
)

// Store backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Authority modes.
const (
	AuthorityHTTP  = "http"
	AuthorityLocal = "local"
)

const (
	// ConfigFileName is the name of the config file within the data directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 2

	// EnvDir overrides the data directory when no --dir flag is given.
	EnvDir = "TASKT_DIR"
)
