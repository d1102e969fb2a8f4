// Package config loads curricula settings from a TOML or YAML file.
//
// Every field is optional. Missing fields keep the values from [Default],
// and command-line flags override the file:
//
//	# curricula.toml
//	system = "quarter"
//	schedule = "greedy"
//	redundant = "dashed"
//	term_names = "quarter"
//	layout = "grid"
//	width = 1600
//	height = 900
//
//	[server]
//	addr = ":8080"
//	cache_items = 256
//
// YAML files use the same keys. Unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/pipeline"
)

// Config holds file settings.
type Config struct {
	System    string  `toml:"system" yaml:"system"`
	Schedule  string  `toml:"schedule" yaml:"schedule"`
	Redundant string  `toml:"redundant" yaml:"redundant"`
	TermNames string  `toml:"term_names" yaml:"term_names"`
	Layout    string  `toml:"layout" yaml:"layout"`
	Metric    string  `toml:"metric" yaml:"metric"`
	Width     float64 `toml:"width" yaml:"width"`
	Height    float64 `toml:"height" yaml:"height"`
	Scale     float64 `toml:"scale" yaml:"scale"`

	Server Server `toml:"server" yaml:"server"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr       string `toml:"addr" yaml:"addr"`
	CacheItems int    `toml:"cache_items" yaml:"cache_items"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		System:    pipeline.DefaultSystem,
		Schedule:  pipeline.DefaultSchedule,
		Redundant: pipeline.DefaultRedundant,
		TermNames: pipeline.DefaultTermNames,
		Layout:    pipeline.DefaultLayout,
		Width:     pipeline.DefaultWidth,
		Height:    pipeline.DefaultHeight,
		Scale:     pipeline.DefaultScale,
		Server: Server{
			Addr:       ":8080",
			CacheItems: 256,
		},
	}
}

// Load reads path over [Default] and validates the result. An empty path
// returns the defaults. The format follows the extension: .toml, .yaml or
// .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read config")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(data, &cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		return cfg, errs.New(errs.ErrCodeInvalidConfig, "unknown config format %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
	if err != nil {
		return cfg, errs.Wrap(errs.ErrCodeInvalidConfig, err, "parse %s", filepath.Base(path))
	}
	return cfg, cfg.Validate()
}

func decodeTOML(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Options converts the settings to pipeline options.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		System:    c.System,
		Schedule:  c.Schedule,
		Redundant: c.Redundant,
		TermNames: c.TermNames,
		Layout:    c.Layout,
		Metric:    c.Metric,
		Width:     c.Width,
		Height:    c.Height,
		Scale:     c.Scale,
	}
}

// Validate rejects unknown enum values and non-positive sizes.
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "width and height must be positive")
	}
	if c.Server.CacheItems < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "server.cache_items must not be negative")
	}
	opts := c.Options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid config")
	}
	return nil
}
