package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/zvue/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "zvue.json"

	// DefaultAddr is the default live server address.
	DefaultAddr = "localhost:3000"

	// DefaultLogLevel is the default slog level name.
	DefaultLogLevel = "info"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "zvue"

	// DefaultShutdownTimeout bounds graceful shutdown of the live server.
	DefaultShutdownTimeout = "5s"
)

// Config represents the complete zvue.json configuration. Every field can
// be overridden from the environment.
type Config struct {
	// Template is the HTML fragment to compile. A path relative to the config
	// file, an absolute path, or an s3://bucket/key URL.
	Template string `json:"template,omitempty" env:"ZVUE_TEMPLATE"`

	// Data is the JSON or YAML document the view is bound to. Same forms as
	// Template.
	Data string `json:"data,omitempty" env:"ZVUE_DATA"`

	// Addr is the live server listen address.
	Addr string `json:"addr,omitempty" env:"ZVUE_ADDR"`

	// Strict rejects bindings and writes to unknown keys.
	Strict bool `json:"strict,omitempty" env:"ZVUE_STRICT"`

	// Isolate keeps notifying the remaining bindings when one update fails.
	Isolate bool `json:"isolate,omitempty" env:"ZVUE_ISOLATE"`

	// Watch re-reads a local data document when it changes and writes the
	// changed keys through the live server.
	Watch bool `json:"watch,omitempty" env:"ZVUE_WATCH"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" env:"ZVUE_LOG_LEVEL"`

	// ShutdownTimeout is a Go duration such as "5s".
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" env:"ZVUE_SHUTDOWN_TIMEOUT"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// S3 contains settings for s3:// sources.
	S3 S3Config `json:"s3,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	// Enabled exposes /metrics and records engine metrics.
	Enabled bool `json:"enabled,omitempty" env:"ZVUE_METRICS"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" env:"ZVUE_METRICS_NAMESPACE"`
}

// S3Config contains settings for s3:// sources.
type S3Config struct {
	Region    string `json:"region,omitempty" env:"ZVUE_S3_REGION"`
	Endpoint  string `json:"endpoint,omitempty" env:"ZVUE_S3_ENDPOINT"`
	PathStyle bool   `json:"pathStyle,omitempty" env:"ZVUE_S3_PATH_STYLE"`
}

// New creates a configuration with default values.
func New() *Config {
	return &Config{
		Addr:            DefaultAddr,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for zvue.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from a specific file path, then applies
// environment overrides and defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("Z010").
				WithFile(path).
				WithSuggestion("Create zvue.json or pass --template and --data")
		}
		return nil, errors.New("Z011").WithFile(path).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("Z011").
			WithFile(path).
			WithDetail("Failed to parse zvue.json: " + err.Error()).
			WithSuggestion("Check that zvue.json is valid JSON")
	}
	cfg.configPath = path

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// ApplyEnv overrides fields from ZVUE_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return errors.New("Z011").
			WithDetail("Invalid environment override").
			Wrap(fmt.Errorf("parse env: %w", err))
	}
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Template == "" {
		return errors.New("Z011").
			WithFile(c.configPath).
			WithDetail("template is required")
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return errors.New("Z011").
			WithFile(c.configPath).
			WithDetail("addr must be host:port").
			Wrap(err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return errors.New("Z011").
			WithFile(c.configPath).
			Wrap(err)
	}
	if d, err := time.ParseDuration(c.ShutdownTimeout); err != nil || d <= 0 {
		return errors.New("Z011").
			WithFile(c.configPath).
			WithDetail("shutdownTimeout must be a positive duration such as 5s")
	}
	return nil
}

// Resolve returns p relative to the config directory. Absolute paths and
// s3:// URLs are returned unchanged.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "s3://") || c.configPath == "" {
		return p
	}
	return filepath.Join(c.Dir(), p)
}

// TemplatePath returns the resolved template location.
func (c *Config) TemplatePath() string {
	return c.Resolve(c.Template)
}

// DataPath returns the resolved data location.
func (c *Config) DataPath() string {
	return c.Resolve(c.Data)
}

// Level returns the configured slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ShutdownDuration returns the parsed shutdown timeout, or the default when
// it does not parse.
func (c *Config) ShutdownDuration() time.Duration {
	d, err := time.ParseDuration(c.ShutdownTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultShutdownTimeout)
	}
	return d
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return lvl, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
