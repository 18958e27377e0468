// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"foia-stream/internal/redaction"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port=8080, got %d", cfg.Server.Port)
	}
	if cfg.Redaction.DefaultDPI != redaction.DefaultResolutionDPI {
		t.Errorf("expected default DPI=%d, got %d", redaction.DefaultResolutionDPI, cfg.Redaction.DefaultDPI)
	}
	if cfg.Redaction.FillColor != "#000000" {
		t.Errorf("expected default fill color #000000, got %q", cfg.Redaction.FillColor)
	}
	if !cfg.Redaction.Verify {
		t.Error("expected verify=true by default")
	}
	if !cfg.Audit.Enabled {
		t.Error("expected audit enabled by default")
	}
	if time.Duration(cfg.Limits.OperationTimeout) != 2*time.Minute {
		t.Errorf("expected default timeout 2m, got %v", cfg.Limits.OperationTimeout)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
redaction:
  default_dpi: 300
  fill_color: "#ff0000"
  add_label: true
limits:
  max_regions: 50
  operation_timeout: 30s
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port=9090, got %d", cfg.Server.Port)
	}
	if cfg.Redaction.DefaultDPI != 300 {
		t.Errorf("expected dpi=300, got %d", cfg.Redaction.DefaultDPI)
	}
	if !cfg.Redaction.AddLabel {
		t.Error("expected add_label=true")
	}
	if cfg.Limits.MaxRegions != 50 {
		t.Errorf("expected max_regions=50, got %d", cfg.Limits.MaxRegions)
	}
	if time.Duration(cfg.Limits.OperationTimeout) != 30*time.Second {
		t.Errorf("expected timeout=30s, got %v", cfg.Limits.OperationTimeout)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.MaxUploadBytes != 100*1024*1024 {
		t.Errorf("expected default upload cap, got %d", cfg.Server.MaxUploadBytes)
	}
}

func TestLoadConfig_BoolDefaultsSurvivePartialFile(t *testing.T) {
	// A file that mentions the redaction and audit sections without the
	// verify/enabled keys must not clobber their true defaults.
	path := writeConfig(t, `
redaction:
  default_dpi: 200
audit:
  database_path: /tmp/audit.db
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Redaction.Verify {
		t.Error("expected verify to stay true when the file omits it")
	}
	if !cfg.Audit.Enabled {
		t.Error("expected audit to stay enabled when the file omits it")
	}

	// An explicit false must win.
	path = writeConfig(t, `
redaction:
  verify: false
audit:
  enabled: false
`)
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Redaction.Verify {
		t.Error("expected explicit verify=false to be honored")
	}
	if cfg.Audit.Enabled {
		t.Error("expected explicit enabled=false to be honored")
	}
}

func TestLoadConfig_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "server:\n  port: 99999\n"},
		{"bad color", "redaction:\n  fill_color: \"not-a-color\"\n"},
		{"negative dpi", "redaction:\n  default_dpi: -10\n"},
		{"negative timeout", "limits:\n  operation_timeout: -5s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadConfigOrDefault_NonexistentFile(t *testing.T) {
	// A path that doesn't exist should fall back to defaults
	cfg := LoadConfigOrDefault("/nonexistent/path/config.yaml")
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults)")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port after fallback, got %d", cfg.Server.Port)
	}
}

func TestLoadConfigOrDefault_InvalidYAML(t *testing.T) {
	path := writeConfig(t, ":::invalid yaml:::")

	// Should fall back to defaults, not panic
	cfg := LoadConfigOrDefault(path)
	if cfg == nil {
		t.Fatal("expected non-nil config (fallback to defaults on parse error)")
	}
	if !cfg.Redaction.Verify {
		t.Error("expected default verify=true after fallback")
	}
}

func TestEngineLimits(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Limits.MaxDocumentBytes = 1024
	cfg.Limits.MaxRegions = 5

	limits := cfg.EngineLimits()
	if limits.MaxDocumentBytes != 1024 {
		t.Errorf("expected MaxDocumentBytes=1024, got %d", limits.MaxDocumentBytes)
	}
	if limits.MaxRegions != 5 {
		t.Errorf("expected MaxRegions=5, got %d", limits.MaxRegions)
	}
	if limits.OperationTimeout != time.Duration(cfg.Limits.OperationTimeout) {
		t.Errorf("expected timeout carried over, got %v", limits.OperationTimeout)
	}
}

func TestRedactionDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.Redaction.FillColor = "#336699"
	cfg.Redaction.AddLabel = true

	opts, err := cfg.RedactionDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.FillColor.Hex() != "#336699" {
		t.Errorf("expected fill #336699, got %s", opts.FillColor.Hex())
	}
	if !opts.AddLabel {
		t.Error("expected AddLabel carried over")
	}
	if opts.ResolutionDPI != redaction.DefaultResolutionDPI {
		t.Errorf("expected default DPI, got %d", opts.ResolutionDPI)
	}
	if opts.LabelText != redaction.DefaultLabelText {
		t.Errorf("expected default label text, got %q", opts.LabelText)
	}
}
