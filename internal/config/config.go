// Package config loads hnode settings from hnode.yaml and HNODE_* env vars.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	houdini "github.com/luxalpa/houdini-node"
)

// Config represents the hnode configuration
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Decode   DecodeConfig   `mapstructure:"decode"`
	Encode   EncodeConfig   `mapstructure:"encode"`
	Scaffold ScaffoldConfig `mapstructure:"scaffold"`
}

// DecodeConfig holds payload strictness limits.
type DecodeConfig struct {
	MaxDepth      int    `mapstructure:"max_depth"`
	MaxBytes      int64  `mapstructure:"max_bytes"`
	MaxElements   int    `mapstructure:"max_elements"` // per-class element count limit
	DuplicateKeys string `mapstructure:"duplicate_keys"` // error, warn or ignore
}

// EncodeConfig controls output formatting.
type EncodeConfig struct {
	Indent bool   `mapstructure:"indent"`
	Mode   string `mapstructure:"mode"` // canonical or preserve
}

// ScaffoldConfig controls asset generation.
type ScaffoldConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	MaxInputs int    `mapstructure:"max_inputs"`
}

// EnvPrefix is prepended to every environment override, e.g.
// HNODE_DECODE_MAX_DEPTH.
const EnvPrefix = "HNODE"

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	dupSeverities = map[string]houdini.Severity{"error": houdini.Error, "warn": houdini.Warn, "ignore": houdini.Ignore}
	encodeModes   = map[string]houdini.EncodeMode{"canonical": houdini.EncodeCanonical, "preserve": houdini.EncodePreserve}
)

// Load reads the configuration. With an empty path hnode.yaml is looked up
// in the working directory and may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "info")
	v.SetDefault("decode.max_depth", 64)
	v.SetDefault("decode.max_bytes", 0)
	v.SetDefault("decode.max_elements", houdini.DefaultMaxElements)
	v.SetDefault("decode.duplicate_keys", "error")
	v.SetDefault("encode.indent", false)
	v.SetDefault("encode.mode", "canonical")
	v.SetDefault("scaffold.output_dir", "hda")
	v.SetDefault("scaffold.max_inputs", houdini.DefaultMaxInputs)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("hnode")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if !slices.Contains(logLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of %v, got: %s", logLevels, c.LogLevel)
	}
	if c.Decode.MaxElements < 1 {
		return fmt.Errorf("decode.max_elements must be at least 1, got: %d", c.Decode.MaxElements)
	}
	if c.Decode.MaxDepth < 0 {
		return fmt.Errorf("decode.max_depth must not be negative, got: %d", c.Decode.MaxDepth)
	}
	if c.Decode.MaxBytes < 0 {
		return fmt.Errorf("decode.max_bytes must not be negative, got: %d", c.Decode.MaxBytes)
	}
	if _, ok := dupSeverities[c.Decode.DuplicateKeys]; !ok {
		return fmt.Errorf("decode.duplicate_keys must be error, warn or ignore, got: %s", c.Decode.DuplicateKeys)
	}
	if _, ok := encodeModes[c.Encode.Mode]; !ok {
		return fmt.Errorf("encode.mode must be canonical or preserve, got: %s", c.Encode.Mode)
	}
	if c.Scaffold.MaxInputs < 1 {
		return fmt.Errorf("scaffold.max_inputs must be at least 1, got: %d", c.Scaffold.MaxInputs)
	}
	if c.Scaffold.OutputDir == "" {
		return errors.New("scaffold.output_dir must not be empty")
	}
	return nil
}

// DecodeOpt converts the decode section into codec options.
func (c *Config) DecodeOpt(inputs ...*houdini.Schema) houdini.DecodeOpt {
	return houdini.DecodeOpt{
		Inputs:         inputs,
		OnDuplicateKey: dupSeverities[c.Decode.DuplicateKeys],
		MaxDepth:       c.Decode.MaxDepth,
		MaxElements:    c.Decode.MaxElements,
		MaxBytes:       c.Decode.MaxBytes,
	}
}

// EncodeOpt converts the encode section into codec options.
func (c *Config) EncodeOpt() houdini.EncodeOpt {
	return houdini.EncodeOpt{Mode: encodeModes[c.Encode.Mode], Indent: c.Encode.Indent}
}
