// Package config loads seqtower settings from a TOML file.
//
// A config file looks like:
//
//	radius        = 10
//	collapse_snps = true
//	cache_dir     = ""
//	listen        = ":8080"
//	log_level     = "info"
//	validate      = false
//
// Every key is optional; missing keys keep their [Default] value. Unknown
// keys are an error so that typos do not silently fall back to defaults.
//
// [Load] with an empty path reads the default location:
// $XDG_CONFIG_HOME/seqtower/config.toml, or ~/.config/seqtower/config.toml
// when XDG_CONFIG_HOME is unset. A missing default file is not an error.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/seqtower/pkg/errors"
)

// AppName names the configuration directory.
const AppName = "seqtower"

// FileName is the config file name inside the configuration directory.
const FileName = "config.toml"

// Config holds the settings shared by all commands.
type Config struct {
	Radius        int    `toml:"radius"`
	CollapseSNPs  bool   `toml:"collapse_snps"`
	CacheDir      string `toml:"cache_dir"`
	Listen        string `toml:"listen"`
	LogLevel      string `toml:"log_level"`
	ValidateGraph bool   `toml:"validate"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Radius:       10,
		CollapseSNPs: true,
		Listen:       ":8080",
		LogLevel:     "info",
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, FileName), nil
}

// Load reads the config at path, or the default location if path is empty.
// An explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidPath, err, "read config %s", path)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errs.New(errs.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := errs.ValidateRadius(c.Radius); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level.
func (c Config) Level() (log.Level, error) {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel, errs.New(errs.ErrCodeInvalidInput, "unknown log_level %q", c.LogLevel)
	}
	return lvl, nil
}
