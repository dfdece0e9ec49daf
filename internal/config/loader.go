// Package config provides configuration loading and management for depscope.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is the default config file relative to the
	// working directory.
	DefaultConfigPath = ".depscope.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "DEPSCOPE"
)

// Loader handles loading configuration from files and environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// LoadConfig loads configuration from the specified path, applies
// defaults, merges environment variables, and validates the result.
//
// An empty path means the optional DefaultConfigPath: if that file is
// absent the defaults are returned. An explicit path that is absent is
// an error.
func (l *Loader) LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if !explicit {
			cfg := NewConfig()
			l.applyEnvOverrides(cfg)
			if err := cfg.Validate(); err != nil {
				return nil, &LoadError{Path: path, Message: "configuration validation failed", Err: err}
			}
			return cfg, nil
		}
		return nil, &LoadError{
			Path:    path,
			Message: "config file not found",
			Err:     err,
		}
	}

	l.v.SetConfigFile(path)

	if err := l.v.ReadInConfig(); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to read config file",
			Err:     err,
		}
	}

	// Start with defaults
	cfg := NewConfig()

	if err := l.v.Unmarshal(cfg, viperDecodeHook); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "failed to parse config file",
			Err:     err,
		}
	}

	l.applyEnvOverrides(cfg)

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{
			Path:    path,
			Message: "configuration validation failed",
			Err:     err,
		}
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	// UI settings
	if v := os.Getenv(EnvPrefix + "_UI_CHARSET"); v != "" {
		cfg.UI.Charset = Charset(v)
	}
	if v := os.Getenv(EnvPrefix + "_UI_INITIAL_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.UI.InitialDepth = n
		}
	}
	if v := os.Getenv(EnvPrefix + "_UI_EXPAND_ALL"); v != "" {
		cfg.UI.ExpandAll = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "_UI_SHOW_DEV"); v != "" {
		cfg.UI.ShowDev = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "_UI_SHOW_BUILD"); v != "" {
		cfg.UI.ShowBuild = parseBool(v)
	}

	// Loader settings
	if v := os.Getenv(EnvPrefix + "_LOADER_CARGO_PATH"); v != "" {
		cfg.Loader.CargoPath = v
	}
	if v := os.Getenv(EnvPrefix + "_LOADER_MANIFEST_PATH"); v != "" {
		cfg.Loader.ManifestPath = v
	}
	if v := os.Getenv(EnvPrefix + "_LOADER_LOCKFILE"); v != "" {
		cfg.Loader.Lockfile = v
	}
	if v := os.Getenv(EnvPrefix + "_LOADER_PACKAGE"); v != "" {
		cfg.Loader.Package = v
	}
	if v := os.Getenv(EnvPrefix + "_LOADER_SOURCE"); v != "" {
		cfg.Loader.Source = Source(v)
	}

	// Logging settings
	if v := os.Getenv(EnvPrefix + "_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv(EnvPrefix + "_LOGGING_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := os.Getenv(EnvPrefix + "_LOGGING_MAX_FILES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Logging.MaxFiles = n
		}
	}
}

// parseBool parses a string as a boolean value.
// Returns true for "true", "1", "yes" (case-insensitive).
// Returns false for anything else.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}

// viperDecodeHook provides custom decoding for viper unmarshaling.
func viperDecodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		stringToCustomTypeHookFunc(),
	)
}

// stringToCustomTypeHookFunc creates a decode hook for our custom types.
func stringToCustomTypeHookFunc() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}

		switch to {
		case reflect.TypeOf(Charset("")):
			return Charset(data.(string)), nil
		case reflect.TypeOf(Source("")):
			return Source(data.(string)), nil
		}

		return data, nil
	}
}

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load is a convenience function that creates a new Loader and loads
// configuration. If path is empty, it uses DefaultConfigPath.
func Load(path string) (*Config, error) {
	return NewLoader().LoadConfig(path)
}
