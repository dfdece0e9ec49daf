package config

import (
	"strings"
	"testing"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.UI.Charset != CharsetUTF8 {
		t.Errorf("default charset = %q, want utf8", cfg.UI.Charset)
	}
	if !cfg.UI.ShowDev || !cfg.UI.ShowBuild {
		t.Error("dev and build groups should be shown by default")
	}
	if cfg.UI.ExpandAll {
		t.Error("expand_all should default to false")
	}
	if cfg.Loader.CargoPath != "cargo" {
		t.Errorf("default cargo path = %q, want cargo", cfg.Loader.CargoPath)
	}
	if cfg.Loader.Source != SourceAuto {
		t.Errorf("default source = %q, want auto", cfg.Loader.Source)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Dir != DefaultLogDir {
		t.Errorf("default log dir = %q, want %q", cfg.Logging.Dir, DefaultLogDir)
	}
	if cfg.Logging.MaxFiles != DefaultMaxFiles {
		t.Errorf("default max files = %d, want %d", cfg.Logging.MaxFiles, DefaultMaxFiles)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.UI.Charset != CharsetUTF8 {
		t.Error("ApplyDefaults should fill in the charset")
	}
	if cfg.Loader.CargoPath != "cargo" {
		t.Error("ApplyDefaults should fill in the cargo path")
	}
	if cfg.Logging.MaxFiles != DefaultMaxFiles {
		t.Error("ApplyDefaults should fill in max files")
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.UI.Charset = CharsetASCII
	cfg.Loader.CargoPath = "/opt/cargo/bin/cargo"
	cfg.Logging.Level = "debug"
	cfg.ApplyDefaults()

	if cfg.UI.Charset != CharsetASCII {
		t.Error("ApplyDefaults should not override the charset")
	}
	if cfg.Loader.CargoPath != "/opt/cargo/bin/cargo" {
		t.Error("ApplyDefaults should not override the cargo path")
	}
	if cfg.Logging.Level != "debug" {
		t.Error("ApplyDefaults should not override the level")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "bad charset",
			mutate:  func(c *Config) { c.UI.Charset = "cp437" },
			wantErr: "ui.charset",
		},
		{
			name:    "negative depth",
			mutate:  func(c *Config) { c.UI.InitialDepth = -1 },
			wantErr: "ui.initial_depth",
		},
		{
			name:    "bad source",
			mutate:  func(c *Config) { c.Loader.Source = "registry" },
			wantErr: "loader.source",
		},
		{
			name:    "bad level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
		{
			name:    "negative max files",
			mutate:  func(c *Config) { c.Logging.MaxFiles = -2 },
			wantErr: "logging.max_files",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsMultipleErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.UI.Charset = "cp437"
	cfg.Loader.Source = "registry"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	errs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %d", len(errs))
	}
	if !strings.Contains(err.Error(), "multiple validation errors") {
		t.Error("combined message should mention multiple errors")
	}
}
