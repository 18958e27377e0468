// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package config loads the application configuration from YAML and
// supplies defaults for everything the file leaves out. The CLI and
// the web server share one schema.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"foia-stream/internal/redaction"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "2m". yaml.v3 has no native duration support.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the application configuration.
type Config struct {
	// Server settings for the web frontend.
	Server struct {
		Port           int   `yaml:"port"`
		MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	} `yaml:"server"`

	// Redaction defaults applied when a request does not override them.
	Redaction struct {
		DefaultDPI  int    `yaml:"default_dpi"`
		FillColor   string `yaml:"fill_color"`
		AddLabel    bool   `yaml:"add_label"`
		LabelText   string `yaml:"label_text"`
		Concurrency int    `yaml:"concurrency"`
		Verify      bool   `yaml:"verify"`
	} `yaml:"redaction"`

	// Limits bound the resources a single operation may consume.
	Limits struct {
		MaxDocumentBytes int64    `yaml:"max_document_bytes"`
		MaxRegions       int      `yaml:"max_regions"`
		MaxRenderPixels  int64    `yaml:"max_render_pixels"`
		OperationTimeout Duration `yaml:"operation_timeout"`
	} `yaml:"limits"`

	// Audit controls the persistent audit journal.
	Audit struct {
		Enabled      bool   `yaml:"enabled"`
		DatabasePath string `yaml:"database_path"`
	} `yaml:"audit"`

	// Observability controls operational logging.
	Observability struct {
		Level string `yaml:"level"`
	} `yaml:"observability"`
}

// LoadConfig loads configuration from the specified file path.
// An empty path returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	// Set default values
	config.Server.Port = 8080
	config.Server.MaxUploadBytes = 100 * 1024 * 1024

	config.Redaction.DefaultDPI = redaction.DefaultResolutionDPI
	config.Redaction.FillColor = "#000000"
	config.Redaction.AddLabel = false
	config.Redaction.LabelText = redaction.DefaultLabelText
	config.Redaction.Concurrency = 4
	config.Redaction.Verify = true

	defaults := redaction.DefaultLimits()
	config.Limits.MaxDocumentBytes = defaults.MaxDocumentBytes
	config.Limits.MaxRegions = defaults.MaxRegions
	config.Limits.MaxRenderPixels = defaults.MaxRenderPixels
	config.Limits.OperationTimeout = Duration(defaults.OperationTimeout)

	config.Audit.Enabled = true
	config.Audit.DatabasePath = "" // empty resolves to the XDG data directory at open time

	config.Observability.Level = "metrics"

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Store default values before unmarshaling
	defaultVerify := config.Redaction.Verify
	defaultAuditEnabled := config.Audit.Enabled

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Restore defaults if not explicitly set in config file.
	// This handles the case where YAML unmarshaling sets bool fields to
	// false when they're not present in the config file.
	if !containsField(data, "redaction", "verify") {
		config.Redaction.Verify = defaultVerify
	}
	if !containsField(data, "audit", "enabled") {
		config.Audit.Enabled = defaultAuditEnabled
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadConfigOrDefault loads configuration from configFile (or searches
// standard locations when configFile is empty). If loading fails, it
// returns a default configuration. This is the shared helper used by
// both the CLI and the web server.
func LoadConfigOrDefault(configFile string) *Config {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults; callers should not crash on a missing or bad config file.
		cfg, _ = LoadConfig("")
	}
	return cfg
}

// FindConfigFile looks for a configuration file in standard locations.
// The current directory wins over the user-level XDG config directory.
func FindConfigFile() string {
	// Check current directory first - prioritize config.yaml
	for _, name := range []string{
		"config.yaml",
		"foia-stream.yaml",
		"foia-stream.yml",
		".foia-stream.yaml",
		".foia-stream.yml",
	} {
		if fileExists(name) {
			return name
		}
	}

	// Check XDG config directory
	for _, name := range []string{"config.yaml", "config.yml"} {
		candidate := filepath.Join(xdg.ConfigHome, "foia-stream", name)
		if fileExists(candidate) {
			return candidate
		}
	}

	return ""
}

// ValidateConfig validates the configuration.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}
	if config.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("max_upload_bytes cannot be negative")
	}
	if config.Redaction.DefaultDPI < 0 {
		return fmt.Errorf("default_dpi cannot be negative")
	}
	if config.Redaction.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative")
	}
	if config.Limits.OperationTimeout < 0 {
		return fmt.Errorf("operation_timeout cannot be negative")
	}
	if config.Redaction.FillColor != "" {
		if _, err := redaction.ParseHexColor(config.Redaction.FillColor); err != nil {
			return fmt.Errorf("invalid fill_color: %w", err)
		}
	}

	return nil
}

// EngineLimits maps the limits section onto the redaction engine's
// resource limits.
func (c *Config) EngineLimits() redaction.Limits {
	return redaction.Limits{
		MaxDocumentBytes: c.Limits.MaxDocumentBytes,
		MaxRegions:       c.Limits.MaxRegions,
		MaxRenderPixels:  c.Limits.MaxRenderPixels,
		OperationTimeout: time.Duration(c.Limits.OperationTimeout),
	}
}

// RedactionDefaults builds the baseline redaction options from the
// configuration. Per-request options start from this value.
func (c *Config) RedactionDefaults() (redaction.RedactionOptions, error) {
	opts := redaction.RedactionOptions{
		ResolutionDPI: c.Redaction.DefaultDPI,
		AddLabel:      c.Redaction.AddLabel,
		LabelText:     c.Redaction.LabelText,
	}
	if c.Redaction.FillColor != "" {
		fill, err := redaction.ParseHexColor(c.Redaction.FillColor)
		if err != nil {
			return redaction.RedactionOptions{}, fmt.Errorf("invalid fill color: %w", err)
		}
		opts.FillColor = fill
	}
	return opts.WithDefaults(), nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// containsField checks if a nested field exists in the YAML data
func containsField(data []byte, path ...string) bool {
	var yamlData map[string]interface{}
	err := yaml.Unmarshal(data, &yamlData)
	if err != nil {
		return false
	}

	current := yamlData
	for i, key := range path {
		if i == len(path)-1 {
			// Last key - check if it exists
			_, exists := current[key]
			return exists
		}
		// Intermediate key - navigate deeper
		if next, ok := current[key].(map[string]interface{}); ok {
			current = next
		} else {
			return false
		}
	}
	return false
}
