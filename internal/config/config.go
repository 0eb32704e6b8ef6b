// Package config loads the deprecation policy file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/deprecier/internal/rules"
)

const (
	// DefaultFile is looked up in the working directory when no path is given.
	DefaultFile = ".deprecier.yaml"

	DefaultEcosystem = "npm"
	DefaultMessage   = "This version is no longer supported. Please upgrade."
)

// Config is the user-facing policy: which registry to talk to, the message
// written on deprecated versions and the ordered rules.
type Config struct {
	Ecosystem          string        `yaml:"ecosystem"`
	Registry           string        `yaml:"registry"`
	DeprecationMessage string        `yaml:"deprecationMessage"`
	Rules              []rules.Entry `yaml:"rules"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Parse decodes a YAML document. Unknown keys are rejected. An empty
// document yields the defaults.
func Parse(data []byte) (*Config, error) {
	c := &Config{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	c.applyDefaults()
	return c, nil
}

// Load reads path. A missing file is only an error when path was given
// explicitly; otherwise DefaultFile in cwd is tried and defaults apply.
func Load(path, cwd string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(cwd, DefaultFile)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	c.Ecosystem = strings.TrimSpace(c.Ecosystem)
	if c.Ecosystem == "" {
		c.Ecosystem = DefaultEcosystem
	}
	c.Registry = strings.TrimSpace(c.Registry)
	if strings.TrimSpace(c.DeprecationMessage) == "" {
		c.DeprecationMessage = DefaultMessage
	}
}

// RuleEntries returns the configured rules, or the default policy when none are set.
func (c *Config) RuleEntries() []rules.Entry {
	if len(c.Rules) == 0 {
		return rules.DefaultEntries()
	}
	return c.Rules
}
