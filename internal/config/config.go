// Copyright (c) 2025 ModelPark
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; relay credentials go to the OS keychain.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"modelpark/cli/internal/xdg"
)

// Defaults for a fresh installation.
const (
	DefaultBinaryName = "modelpark"
	DefaultAPIBaseURL = "https://modelpark.app"
	DefaultAppDomain  = "modelpark.app"
	DefaultAppScheme  = "https"
	DefaultLogLevel   = "info"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	// BinaryName is the executable searched for on PATH and in install dirs.
	BinaryName string `yaml:"binary_name"`
	// BinaryPath pins the executable; when set no search is performed.
	BinaryPath string `yaml:"binary_path,omitempty"`
	APIBaseURL string `yaml:"api_base_url"`
	AppDomain  string `yaml:"app_domain"`
	AppScheme  string `yaml:"app_scheme"`
	// HTTPTimeout bounds every HTTP call; zero means no timeout.
	HTTPTimeout Duration `yaml:"http_timeout,omitempty"`
	LogLevel    string   `yaml:"log_level"`
}

// Duration is a time.Duration that reads and writes Go duration strings in YAML.
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	if d == 0 {
		return "", nil
	}
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	v, err := parseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	return v, nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BinaryName: DefaultBinaryName,
		APIBaseURL: DefaultAPIBaseURL,
		AppDomain:  DefaultAppDomain,
		AppScheme:  DefaultAppScheme,
		LogLevel:   DefaultLogLevel,
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from the default path and applies environment
// overrides; a missing file yields defaults.
func Load() (Config, error) {
	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadPath(p)
}

// LoadPath reads configuration from p and applies environment overrides.
func LoadPath(p string) (Config, error) {
	c, err := LoadFile(p)
	if err != nil {
		return c, err
	}
	return c, c.applyEnv(os.Getenv)
}

// LoadFile reads configuration from p. Unset fields keep their defaults.
func LoadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", p, err)
	}
	c.fillDefaults()
	return c, nil
}

// Save writes configuration to the default path with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveFile(p, c)
}

// SaveFile writes configuration to p with 0600 permissions.
func SaveFile(p string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}

func (c *Config) fillDefaults() {
	d := Default()
	if strings.TrimSpace(c.BinaryName) == "" {
		c.BinaryName = d.BinaryName
	}
	if strings.TrimSpace(c.APIBaseURL) == "" {
		c.APIBaseURL = d.APIBaseURL
	}
	if strings.TrimSpace(c.AppDomain) == "" {
		c.AppDomain = d.AppDomain
	}
	if strings.TrimSpace(c.AppScheme) == "" {
		c.AppScheme = d.AppScheme
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = d.LogLevel
	}
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv("MODELPARK_BIN")); v != "" {
		c.BinaryPath = v
	}
	if v := strings.TrimSpace(getenv("MODELPARK_API_URL")); v != "" {
		c.APIBaseURL = v
	}
	if v := strings.TrimSpace(getenv("MODELPARK_APP_DOMAIN")); v != "" {
		c.AppDomain = v
	}
	if v := getenv("MODELPARK_HTTP_TIMEOUT"); v != "" {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("MODELPARK_HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = Duration(d)
	}
	if getenv("MODELPARK_VERBOSE") == "1" {
		c.LogLevel = "debug"
	}
	return nil
}

// Timeout returns HTTPTimeout as a time.Duration.
func (c Config) Timeout() time.Duration { return time.Duration(c.HTTPTimeout) }
