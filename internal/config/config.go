// Package config loads driver configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/uci/pkg/uci/options"
	"github.com/conneroisu/uci/pkg/uci/protocol"
	"github.com/conneroisu/uci/pkg/ucierrs"
)

// Environment variables that override file values.
const (
	EnvEngine  = "UCI_ENGINE"
	EnvThreads = "UCI_THREADS"
	EnvHash    = "UCI_HASH"
	EnvVerbose = "UCI_VERBOSE"
	EnvSchema  = "UCI_SCHEMA"
	EnvDepth   = "UCI_DEPTH"
)

// Config is the on-disk driver configuration.
type Config struct {
	Engine  string            `yaml:"engine"`
	Args    []string          `yaml:"args"`
	Dir     string            `yaml:"dir"`
	Threads int               `yaml:"threads"`
	HashMB  int               `yaml:"hash_mb"`
	MultiPV int               `yaml:"multipv"`
	Depth   int               `yaml:"depth"`
	Verbose bool              `yaml:"verbose"`
	Schema  string            `yaml:"schema"`
	Options map[string]string `yaml:"options"`
}

// Load reads path and applies environment overrides. An empty path, or a
// path that does not exist, yields the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, ucierrs.NewValidationError(
					ucierrs.ErrCodeInvalidFormat, "malformed config file", err, "path", path,
				)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

// applyEnv overrides fields from lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvEngine); ok && v != "" {
		c.Engine = v
	}
	if v, ok := lookup(EnvSchema); ok && v != "" {
		c.Schema = v
	}

	for _, o := range []struct {
		env string
		dst *int
	}{
		{EnvThreads, &c.Threads},
		{EnvHash, &c.HashMB},
		{EnvDepth, &c.Depth},
	} {
		v, ok := lookup(o.env)
		if !ok || v == "" {
			continue
		}
		n, err := cast.ToIntE(strings.TrimSpace(v))
		if err != nil {
			return ucierrs.NewValidationError(
				ucierrs.ErrCodeInvalidFormat, "environment value is not an integer", err, o.env, v,
			)
		}
		*o.dst = n
	}

	if v, ok := lookup(EnvVerbose); ok && v != "" {
		b, err := cast.ToBoolE(strings.TrimSpace(v))
		if err != nil {
			return ucierrs.NewValidationError(
				ucierrs.ErrCodeInvalidFormat, "environment value is not a boolean", err, EnvVerbose, v,
			)
		}
		c.Verbose = b
	}

	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"threads", c.Threads},
		{"hash_mb", c.HashMB},
		{"multipv", c.MultiPV},
		{"depth", c.Depth},
	} {
		if f.value < 0 {
			return ucierrs.NewValidationError(
				ucierrs.ErrCodeRangeViolation, f.name+" must not be negative", nil, f.name, f.value,
			)
		}
	}
	if _, ok := protocol.ParseSchema(c.Schema); !ok {
		return ucierrs.NewValidationError(
			ucierrs.ErrCodeInvalidFormat, "unknown line schema", nil, "schema", c.Schema,
		)
	}

	return nil
}

// ToOptions converts c into session options. Zero values leave the engine
// defaults in place.
func (c *Config) ToOptions() *options.SessionOptions {
	opts := &options.SessionOptions{
		Path:          c.Engine,
		Args:          c.Args,
		Verbose:       c.Verbose,
		EngineOptions: c.Options,
	}
	if c.Dir != "" {
		dir := c.Dir
		opts.Dir = &dir
	}
	if c.Threads > 0 {
		threads := c.Threads
		opts.Threads = &threads
	}
	if c.HashMB > 0 {
		hash := c.HashMB
		opts.HashMB = &hash
	}
	if c.MultiPV > 0 {
		multiPV := c.MultiPV
		opts.MultiPV = &multiPV
	}
	if schema, ok := protocol.ParseSchema(c.Schema); ok {
		opts.Schema = schema
	}

	return opts
}
