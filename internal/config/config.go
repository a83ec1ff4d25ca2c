// Package config resolves symsort settings from defaults, a TOML file and
// SYMSORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultFile is looked up in the working directory when no explicit
// config path is given.
const DefaultFile = "symsort.toml"

const envPrefix = "SYMSORT_"

// Config is the resolved configuration of one invocation.
type Config struct {
	Output      string   `koanf:"output"`
	Roots       []string `koanf:"roots"`
	Workers     int      `koanf:"workers"`
	LinkWorkers int      `koanf:"link_workers"`
	Retention   int      `koanf:"retention"`
	Journal     bool     `koanf:"journal"`
	Exclude     []string `koanf:"exclude"`
	Verbosity   int      `koanf:"verbosity"`
	LogFile     string   `koanf:"log_file"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"output":       "",
		"roots":        []string{},
		"workers":      8,
		"link_workers": 4,
		"retention":    5,
		"journal":      true,
		"exclude":      []string{},
		"verbosity":    0,
		"log_file":     "",
	}
}

// Load resolves the configuration. An explicit path must exist; otherwise
// DefaultFile is read when present.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if _, err := os.Stat(DefaultFile); err == nil {
		if err := k.Load(file.Provider(DefaultFile), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", DefaultFile, err)
		}
	}

	// 3. Env vars: SYMSORT_LINK_WORKERS -> link_workers
	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Unmarshal
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no run could use.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.LinkWorkers < 0 {
		errs = append(errs, fmt.Errorf("link_workers must not be negative, got %d", c.LinkWorkers))
	}
	if c.Retention < 0 {
		errs = append(errs, fmt.Errorf("retention must not be negative, got %d", c.Retention))
	}
	if c.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("verbosity must not be negative, got %d", c.Verbosity))
	}
	return errors.Join(errs...)
}
