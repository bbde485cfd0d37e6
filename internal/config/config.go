package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/antopolskiy/taskt/internal/clierr"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no taskt config found (run 'taskt init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the taskt configuration.
type Config struct {
	Version   int             `yaml:"version"`
	Store     StoreConfig     `yaml:"store"`
	Authority AuthorityConfig `yaml:"authority"`
	Log       LogConfig       `yaml:"log"`

	// dir is the absolute path to the data directory (not serialized).
	dir string `yaml:"-"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path,omitempty"`
	RedisURL    string `yaml:"redis_url,omitempty"`
	RedisPrefix string `yaml:"redis_prefix,omitempty"`
}

// AuthorityConfig describes how to reach the timer authority.
type AuthorityConfig struct {
	Mode    string `yaml:"mode"`
	Addr    string `yaml:"addr"`
	Timeout string `yaml:"timeout"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Dir returns the absolute path to the data directory.
func (c *Config) Dir() string {
	return c.dir
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// StorePath returns the file used by the json and sqlite backends. Relative
// paths are resolved against the data directory.
func (c *Config) StorePath() string {
	p := c.Store.Path
	if p == "" {
		p = DefaultJSONFile
		if c.Store.Backend == BackendSQLite {
			p = DefaultSQLiteFile
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// LogPath returns the absolute log file path, or "" when logging to stderr.
func (c *Config) LogPath() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.dir, c.Log.File)
}

// AuthorityTimeout parses authority.timeout. Returns the default on error.
func (c *Config) AuthorityTimeout() time.Duration {
	d, err := time.ParseDuration(c.Authority.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// LogLevel parses log.level, falling back to warn.
func (c *Config) LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return logrus.WarnLevel
	}
	return lvl
}

// NewDefault creates a Config with default values.
func NewDefault() *Config {
	return &Config{
		Version: CurrentVersion,
		Store:   StoreConfig{Backend: DefaultBackend},
		Authority: AuthorityConfig{
			Mode:    DefaultAuthorityMode,
			Addr:    DefaultAuthorityAddr,
			Timeout: DefaultTimeout,
		},
		Log: LogConfig{Level: DefaultLogLevel},
	}
}

// SetDir sets the data directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	switch c.Store.Backend {
	case BackendJSON, BackendSQLite:
	case BackendRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("%w: store.redis_url is required for the redis backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown store.backend %q", ErrInvalid, c.Store.Backend)
	}
	if !slices.Contains([]string{AuthorityHTTP, AuthorityLocal}, c.Authority.Mode) {
		return fmt.Errorf("%w: unknown authority.mode %q", ErrInvalid, c.Authority.Mode)
	}
	if c.Authority.Mode == AuthorityHTTP && c.Authority.Addr == "" {
		return fmt.Errorf("%w: authority.addr is required in http mode", ErrInvalid)
	}
	if c.Authority.Timeout != "" {
		d, err := time.ParseDuration(c.Authority.Timeout)
		if err != nil {
			return fmt.Errorf("%w: invalid authority.timeout %q: %w", ErrInvalid, c.Authority.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: authority.timeout must be positive", ErrInvalid)
		}
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: invalid log.level %q", ErrInvalid, c.Log.Level)
		}
	}
	return nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given data directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.dir = absDir

	if err := migrate(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init creates dir and writes a default config into it. It fails when a
// config already exists there.
func Init(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.Newf(clierr.BoardAlreadyExists, "taskt is already initialized in %s", absDir)
	}
	if err := os.MkdirAll(absDir, dirMode); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	cfg := NewDefault()
	cfg.dir = absDir
	if err := cfg.Save(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrInit loads the config in dir, writing defaults on first run.
func LoadOrInit(dir string) (*Config, error) {
	cfg, err := Load(dir)
	if errors.Is(err, ErrNotFound) {
		return Init(dir)
	}
	return cfg, err
}

// ResolveDir picks the data directory: the flag value, then $TASKT_DIR, then
// the user config directory.
func ResolveDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvDir); env != "" {
		return filepath.Abs(env)
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, DefaultDirName), nil
}
