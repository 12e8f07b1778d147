package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// SetDefaults registers Defaults() with v so keys missing from the file
// still decode to their default values.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("user", d.User)
	v.SetDefault("project", d.Project)
	v.SetDefault("auto_refresh", d.AutoRefresh)
	v.SetDefault("fetch_timeout", d.FetchTimeout)
	v.SetDefault("preferences.rehydrate_policy", d.Preferences.RehydratePolicy)
	v.SetDefault("preferences.persist_debounce", d.Preferences.PersistDebounce)
	v.SetDefault("preferences.persist_timeout", d.Preferences.PersistTimeout)
	v.SetDefault("preferences.cache_ttl", d.Preferences.CacheTTL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// Load reads the config file at path into a Config layered over the
// defaults. When path does not exist the commented default template is
// written there first. The returned Config is validated.
func Load(v *viper.Viper, path string) (Config, error) {
	SetDefaults(v)
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := WriteDefaultConfig(path); err != nil {
			return Config{}, err
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// With SetConfigFile viper surfaces a missing file as an *fs.PathError
// rather than ConfigFileNotFoundError.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
