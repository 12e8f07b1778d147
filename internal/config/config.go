// Package config provides configuration types and defaults for issueview.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/issueview/internal/controller"
	"github.com/zjrosen/issueview/internal/log"
	"github.com/zjrosen/issueview/internal/tracing"
)

// DefaultFetchTimeout bounds issue list fetches unless fetch_timeout is set.
const DefaultFetchTimeout = 10 * time.Second

// Config holds all configuration options for issueview.
type Config struct {
	DBPath       string            `mapstructure:"db_path"`
	User         string            `mapstructure:"user"`          // scopes remembered preferences
	Project      string            `mapstructure:"project"`       // active project id or identifier
	AutoRefresh  bool              `mapstructure:"auto_refresh"`
	FetchTimeout time.Duration     `mapstructure:"fetch_timeout"` // zero means no limit
	Preferences  PreferencesConfig `mapstructure:"preferences"`
	Tracing      TracingConfig     `mapstructure:"tracing"`
}

// PreferencesConfig tunes the remembered-preference stream.
type PreferencesConfig struct {
	// RehydratePolicy decides whether a remembered record that arrives after
	// a local change replaces it: "suppress" (default) or "overwrite".
	RehydratePolicy string `mapstructure:"rehydrate_policy"`

	// PersistDebounce delays saves so bursts of changes collapse into one
	// write. Zero saves immediately.
	PersistDebounce time.Duration `mapstructure:"persist_debounce"`

	// PersistTimeout bounds each load or save.
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`

	// CacheTTL is how long a loaded record is served from memory.
	// Zero disables the cache.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Policy returns the parsed rehydrate policy. Invalid values are rejected by
// ValidatePreferences; here they fall back to suppress.
func (p PreferencesConfig) Policy() controller.RehydratePolicy {
	policy, _ := controller.ParseRehydratePolicy(p.RehydratePolicy)
	return policy
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/issueview/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Provider converts the config into the tracing package's form, filling
// the file path default when the file exporter has none.
func (t TracingConfig) Provider() tracing.Config {
	cfg := tracing.Config{
		Enabled:      t.Enabled,
		Exporter:     t.Exporter,
		FilePath:     ExpandHome(t.FilePath),
		OTLPEndpoint: t.OTLPEndpoint,
		SampleRate:   t.SampleRate,
		ServiceName:  tracing.DefaultServiceName,
	}
	if cfg.Exporter == "file" && cfg.FilePath == "" {
		cfg.FilePath = DefaultTracesFilePath()
	}
	return cfg
}

// DefaultDBPath returns ~/.issueview/issueview.db, or a relative
// issueview.db when the home directory is unavailable.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "issueview.db"
	}
	return filepath.Join(home, ".issueview", "issueview.db")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/issueview/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "issueview", "traces", "traces.jsonl")
}

// DefaultConfigPath returns ~/.config/issueview/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".issueview", "config.yaml")
	}
	return filepath.Join(home, ".config", "issueview", "config.yaml")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ResolvedDBPath returns the database path with ~ expanded, or the default
// when unset.
func (c Config) ResolvedDBPath() string {
	if c.DBPath == "" {
		return DefaultDBPath()
	}
	return ExpandHome(c.DBPath)
}

// Validate checks the whole configuration.
func Validate(c Config) error {
	if c.FetchTimeout < 0 {
		return fmt.Errorf("fetch_timeout must not be negative, got %v", c.FetchTimeout)
	}
	if err := ValidatePreferences(c.Preferences); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// ValidatePreferences checks preference stream settings.
func ValidatePreferences(p PreferencesConfig) error {
	if _, err := controller.ParseRehydratePolicy(p.RehydratePolicy); err != nil {
		return fmt.Errorf("preferences.rehydrate_policy: %w", err)
	}
	if p.PersistDebounce < 0 {
		return fmt.Errorf("preferences.persist_debounce must not be negative, got %v", p.PersistDebounce)
	}
	if p.PersistTimeout < 0 {
		return fmt.Errorf("preferences.persist_timeout must not be negative, got %v", p.PersistTimeout)
	}
	if p.CacheTTL < 0 {
		return fmt.Errorf("preferences.cache_ttl must not be negative, got %v", p.CacheTTL)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// The file exporter falls back to DefaultTracesFilePath, so only the
	// collector endpoint is mandatory.
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DBPath:       DefaultDBPath(),
		AutoRefresh:  true,
		FetchTimeout: DefaultFetchTimeout,
		Preferences: PreferencesConfig{
			RehydratePolicy: controller.RehydrateSuppress.String(),
			PersistDebounce: 0,
			PersistTimeout:  controller.DefaultTimeout,
			CacheTTL:        10 * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from home dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# issueview configuration

# SQLite database holding projects, issues and remembered view preferences
db_path: ~/.issueview/issueview.db

# User id that scopes remembered preferences
user: ""

# Active project (id or identifier). Updated by 'issueview use <project>'.
project: ""

# Refetch the issue list when another process writes the database
auto_refresh: true

# Give up on an issue list fetch after this long (0 disables)
fetch_timeout: 10s

# Remembered view preferences
preferences:
  # What to do when the remembered preference loads after you already
  # changed the view: "suppress" keeps your change, "overwrite" restores
  # the remembered one.
  rehydrate_policy: suppress
  persist_debounce: 0s   # collapse bursts of changes into one save
  persist_timeout: 5s    # bound each load and save
  cache_ttl: 10m         # serve loaded records from memory (0 disables)

# Distributed tracing
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/issueview/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
