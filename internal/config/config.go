// Package config loads the tilde configuration, which controls the separators
// used by the delimited format.
//
// Configuration comes from an optional TOML or YAML file, chosen by its extension,
// with environment variables taking precedence over anything in the file:
//
//	segment_separator = "~"
//	element_separator = "*"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"go.followtheprocess.codes/tilde/internal/syntax"
	"go.yaml.in/yaml/v4"
)

// Environment variables that override the configuration file.
const (
	EnvSegmentSeparator = "TILDE_SEGMENT_SEPARATOR"
	EnvElementSeparator = "TILDE_ELEMENT_SEPARATOR"
)

// Config is the tilde configuration.
type Config struct {
	Segment string `toml:"segment_separator" yaml:"segment_separator"` // Terminates each segment
	Element string `toml:"element_separator" yaml:"element_separator"` // Separates the elements of a segment
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Segment: string(syntax.DefaultSegment),
		Element: string(syntax.DefaultElement),
	}
}

// Load reads the configuration file at path on top of the defaults, keys missing
// from the file keep their default value. An empty path means no file, just the defaults.
//
// Files ending in .toml are decoded as TOML, .yaml or .yml as YAML, anything else
// is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(contents), &cfg); err != nil {
			return Config{}, fmt.Errorf("could not decode TOML config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return Config{}, fmt.Errorf("could not decode YAML config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config file extension %q, expected .toml, .yaml or .yml", ext)
	}

	return cfg, nil
}

// WithEnv returns a copy of the config with any values set in the environment applied,
// lookup is usually [os.LookupEnv].
func (c Config) WithEnv(lookup func(key string) (string, bool)) Config {
	if value, ok := lookup(EnvSegmentSeparator); ok {
		c.Segment = value
	}

	if value, ok := lookup(EnvElementSeparator); ok {
		c.Element = value
	}

	return c
}

// Separators returns the configured separators, or an error if they are invalid.
//
// Each separator must be exactly one character, and together they must be
// a valid [syntax.Separators].
func (c Config) Separators() (syntax.Separators, error) {
	segment, err := single("segment", c.Segment)
	if err != nil {
		return syntax.Separators{}, err
	}

	element, err := single("element", c.Element)
	if err != nil {
		return syntax.Separators{}, err
	}

	separators := syntax.Separators{Segment: segment, Element: element}
	if err := separators.Validate(); err != nil {
		return syntax.Separators{}, fmt.Errorf("invalid separators: %w", err)
	}

	return separators, nil
}

// single returns the only rune in value.
func single(which, value string) (rune, error) {
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("%s separator must be a single character, got %q", which, value)
	}

	char, _ := utf8.DecodeRuneInString(value)
	if char == utf8.RuneError {
		return 0, fmt.Errorf("%s separator %q is not valid UTF-8", which, value)
	}

	return char, nil
}
