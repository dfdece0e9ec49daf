// Package config provides configuration data structures for depscope.
package config

// Config represents the complete depscope configuration loaded from
// .depscope.yaml.
type Config struct {
	UI      UIConfig      `yaml:"ui"      mapstructure:"ui"      json:"ui"`
	Loader  LoaderConfig  `yaml:"loader"  mapstructure:"loader"  json:"loader"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging" json:"logging"`
}

// Charset selects the tree drawing character set.
type Charset string

const (
	// CharsetUTF8 uses box-drawing glyphs.
	CharsetUTF8 Charset = "utf8"
	// CharsetASCII uses plain ASCII glyphs.
	CharsetASCII Charset = "ascii"
)

// UIConfig configures the interactive viewer.
type UIConfig struct {
	// Charset is the tree drawing character set (default: utf8).
	Charset Charset `yaml:"charset" mapstructure:"charset" json:"charset"`
	// InitialDepth pre-opens the tree to this depth on startup.
	// Zero or one shows the root's direct dependencies only.
	InitialDepth int `yaml:"initial_depth" mapstructure:"initial_depth" json:"initial_depth"`
	// ExpandAll pre-opens the whole tree on startup.
	ExpandAll bool `yaml:"expand_all" mapstructure:"expand_all" json:"expand_all"`
	// ShowDev includes [dev-dependencies] groups (default: true).
	ShowDev bool `yaml:"show_dev" mapstructure:"show_dev" json:"show_dev"`
	// ShowBuild includes [build-dependencies] groups (default: true).
	ShowBuild bool `yaml:"show_build" mapstructure:"show_build" json:"show_build"`
}

// Source selects how the dependency graph is loaded.
type Source string

const (
	// SourceAuto prefers cargo metadata and falls back to the lockfile.
	SourceAuto Source = "auto"
	// SourceMetadata always runs cargo metadata.
	SourceMetadata Source = "metadata"
	// SourceLockfile always parses Cargo.lock.
	SourceLockfile Source = "lockfile"
)

// LoaderConfig configures graph loading.
type LoaderConfig struct {
	// CargoPath is the cargo executable (default: cargo).
	CargoPath string `yaml:"cargo_path" mapstructure:"cargo_path" json:"cargo_path"`
	// ManifestPath points at the Cargo.toml to load. Empty uses the
	// working directory.
	ManifestPath string `yaml:"manifest_path" mapstructure:"manifest_path" json:"manifest_path"`
	// Lockfile points at the Cargo.lock for lockfile loading.
	Lockfile string `yaml:"lockfile" mapstructure:"lockfile" json:"lockfile"`
	// Package overrides the root package by name.
	Package string `yaml:"package" mapstructure:"package" json:"package"`
	// Source selects the loader (default: auto).
	Source Source `yaml:"source" mapstructure:"source" json:"source"`
}

// LoggingConfig configures the file logger.
type LoggingConfig struct {
	// Level is the minimum log level (default: info).
	Level string `yaml:"level" mapstructure:"level" json:"level"`
	// Dir is the log directory (default: .depscope/logs).
	Dir string `yaml:"dir" mapstructure:"dir" json:"dir"`
	// MaxFiles is the number of log files kept by cleanup (default: 10).
	MaxFiles int `yaml:"max_files" mapstructure:"max_files" json:"max_files"`
}

// Default values.
const (
	DefaultCargoPath = "cargo"
	DefaultLogDir    = ".depscope/logs"
	DefaultMaxFiles  = 10
)

// NewConfig returns a new Config with default values applied.
func NewConfig() *Config {
	return &Config{
		UI: UIConfig{
			Charset:   CharsetUTF8,
			ShowDev:   true,
			ShowBuild: true,
		},
		Loader: LoaderConfig{
			CargoPath: DefaultCargoPath,
			Source:    SourceAuto,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Dir:      DefaultLogDir,
			MaxFiles: DefaultMaxFiles,
		},
	}
}

// ApplyDefaults applies default values to any unset fields. This is
// used after loading config from file to fill in missing values.
func (c *Config) ApplyDefaults() {
	defaults := NewConfig()

	if c.UI.Charset == "" {
		c.UI.Charset = defaults.UI.Charset
	}
	if c.Loader.CargoPath == "" {
		c.Loader.CargoPath = defaults.Loader.CargoPath
	}
	if c.Loader.Source == "" {
		c.Loader.Source = defaults.Loader.Source
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = defaults.Logging.Dir
	}
	if c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = defaults.Logging.MaxFiles
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	msg := "multiple validation errors:"
	for _, err := range e {
		msg += "\n  - " + err.Error()
	}
	return msg
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidationErrors

	if c.UI.Charset != "" {
		switch c.UI.Charset {
		case CharsetUTF8, CharsetASCII:
			// valid
		default:
			errs = append(errs, &ValidationError{
				Field:   "ui.charset",
				Message: "must be 'utf8' or 'ascii'",
			})
		}
	}

	if c.UI.InitialDepth < 0 {
		errs = append(errs, &ValidationError{
			Field:   "ui.initial_depth",
			Message: "must be non-negative",
		})
	}

	if c.Loader.Source != "" {
		switch c.Loader.Source {
		case SourceAuto, SourceMetadata, SourceLockfile:
			// valid
		default:
			errs = append(errs, &ValidationError{
				Field:   "loader.source",
				Message: "must be 'auto', 'metadata', or 'lockfile'",
			})
		}
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, &ValidationError{
			Field:   "logging.level",
			Message: "must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	if c.Logging.MaxFiles < 0 {
		errs = append(errs, &ValidationError{
			Field:   "logging.max_files",
			Message: "must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
