// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package config loads sandbox settings from defaults, a YAML settings file
// and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gobwas/glob"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/sandboxgame/sandbox/internal/content"
	"github.com/sandboxgame/sandbox/internal/def"
	"github.com/sandboxgame/sandbox/internal/logging"
	"github.com/sandboxgame/sandbox/internal/xdg"
)

// Default values.
const (
	DefaultEngineVersion = "1.0.0"
	DefaultLogFormat     = logging.FormatJSON
	DefaultLogLevel      = "info"
	DefaultMetricsAddr   = "127.0.0.1:9100"
	DefaultWatchDebounce = 250 * time.Millisecond
)

// Config holds sandbox settings.
type Config struct {
	ModsDir       string           `koanf:"mods_dir"`
	Mods          []content.ModRef `koanf:"mods"`
	EngineVersion string           `koanf:"engine_version"`
	Extension     string           `koanf:"extension"`
	Ignore        []string         `koanf:"ignore"`
	Strict        bool             `koanf:"strict"`
	VerifyAssets  bool             `koanf:"verify_assets"`
	LogFormat     string           `koanf:"log_format"`
	LogLevel      string           `koanf:"log_level"`
	MetricsAddr   string           `koanf:"metrics_addr"`
	Watch         bool             `koanf:"watch"`
	WatchDebounce time.Duration    `koanf:"watch_debounce"`
}

// Default returns the built-in settings. The mods directory is
// $XDG_DATA_HOME/sandbox/mods, or ./mods when no home is known.
func Default() Config {
	modsDir, err := xdg.ModsDir()
	if err != nil {
		modsDir = "mods"
	}
	return Config{
		ModsDir:       modsDir,
		EngineVersion: DefaultEngineVersion,
		Extension:     def.DefaultExtension,
		LogFormat:     DefaultLogFormat,
		LogLevel:      DefaultLogLevel,
		MetricsAddr:   DefaultMetricsAddr,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// BindFlags registers the flags that override settings. Flag names are the
// setting keys with dashes.
func BindFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("mods-dir", d.ModsDir, "directory holding one subdirectory per mod")
	flags.String("engine-version", d.EngineVersion, "engine version checked against mod constraints")
	flags.String("extension", d.Extension, "data file extension")
	flags.StringSlice("ignore", nil, "file name patterns skipped when scanning mods")
	flags.Bool("strict", d.Strict, "fail on content errors")
	flags.Bool("verify-assets", d.VerifyAssets, "check that asset files named by resources exist")
	flags.String("log-level", d.LogLevel, "log level (debug, info, warn or error)")
}

// BindServeFlags registers the flags only the long-running command uses.
func BindServeFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("metrics-addr", d.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	flags.Bool("watch", d.Watch, "reload content when mod files change")
	flags.Duration("watch-debounce", d.WatchDebounce, "quiet time before a reload starts")
}

// Load reads settings. An empty path reads the default settings file,
// which may be absent; an explicit path must exist. Flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = xdg.SettingsFile(); err != nil {
			path = ""
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "load settings file")
			}
		} else if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, oops.Code("CONFIG_READ_FAILED").With("path", path).Wrapf(err, "read settings file")
		}
	}

	if flags != nil {
		// Unchanged flags only fill keys the file left unset.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_INVALID").Wrapf(err, "load flags")
		}
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrapf(err, "decode settings")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is valid.
func (cfg *Config) Validate() error {
	invalid := oops.Code("CONFIG_INVALID")

	if cfg.ModsDir == "" {
		return invalid.Errorf("mods_dir is required")
	}
	if cfg.Extension == "" || strings.HasPrefix(cfg.Extension, ".") {
		return invalid.With("extension", cfg.Extension).Errorf("extension must be non-empty and have no leading dot, got %q", cfg.Extension)
	}
	if _, err := semver.StrictNewVersion(cfg.EngineVersion); err != nil {
		return invalid.With("engine_version", cfg.EngineVersion).Wrapf(err, "engine_version")
	}
	// The checks below report their own codes; keep only their text.
	if err := logging.ValidateFormat(cfg.LogFormat); err != nil {
		return invalid.With("log_format", cfg.LogFormat).Errorf("log_format: %v", err)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return invalid.With("log_level", cfg.LogLevel).Errorf("log_level: %v", err)
	}
	if _, err := def.CompileIgnore(cfg.Ignore); err != nil {
		return invalid.With("ignore", cfg.Ignore).Errorf("ignore: %v", err)
	}
	if cfg.Watch && cfg.WatchDebounce <= 0 {
		return invalid.With("watch_debounce", cfg.WatchDebounce).Errorf("watch_debounce must be positive, got %s", cfg.WatchDebounce)
	}

	seen := make(map[string]bool, len(cfg.Mods))
	for i, m := range cfg.Mods {
		if m.Name == "" {
			return invalid.With("index", i).Errorf("mods[%d]: name is required", i)
		}
		if seen[m.Name] {
			return invalid.With("mod", m.Name).Errorf("mods[%d]: mod %q listed twice", i, m.Name)
		}
		seen[m.Name] = true
	}
	return nil
}

// Engine returns the parsed engine version. Only valid after Validate.
func (cfg *Config) Engine() *semver.Version {
	v, err := semver.StrictNewVersion(cfg.EngineVersion)
	if err != nil {
		return nil
	}
	return v
}

// IgnoreGlobs returns the compiled ignore patterns. Only valid after
// Validate.
func (cfg *Config) IgnoreGlobs() []glob.Glob {
	globs, err := def.CompileIgnore(cfg.Ignore)
	if err != nil {
		return nil
	}
	return globs
}

// Level returns the parsed log level.
func (cfg *Config) Level() slog.Level {
	level, _ := logging.ParseLevel(cfg.LogLevel)
	return level
}
