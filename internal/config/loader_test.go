package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validYAML = `
server:
  listen_addr: ":8080"
  log_level: info
backend:
  base_url: "https://api.example.com"
  token: "tok-123"
  timeout: 15s
  max_parallel: 4
tariff:
  credits_per_unit: 5
  max_text_len: 5000
detection:
  min_sample: 10
  debounce: 300ms
playback:
  volume_db: 0
`

func TestLoadFromReader_Valid(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.ListenAddr != ":8080" {
		t.Errorf("listen_addr = %q, want %q", cfg.Server.ListenAddr, ":8080")
	}
	if cfg.Server.LogLevel != LogInfo {
		t.Errorf("log_level = %q, want %q", cfg.Server.LogLevel, LogInfo)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Token != "tok-123" {
		t.Errorf("token = %q", cfg.Backend.Token)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("timeout = %v, want 15s", cfg.Backend.Timeout)
	}
	if cfg.Tariff.CreditsPerUnit != 5 {
		t.Errorf("credits_per_unit = %d, want 5", cfg.Tariff.CreditsPerUnit)
	}
	if cfg.Detection.Debounce != 300*time.Millisecond {
		t.Errorf("debounce = %v, want 300ms", cfg.Detection.Debounce)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	yaml := `
backend:
  base_url: "https://api.example.com"
  base_uri: "typo"
`
	if _, err := LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestLoadFromReader_TokenFromEnv(t *testing.T) {
	t.Setenv(tokenEnv, "env-token")

	yaml := `
backend:
  base_url: "https://api.example.com"
`
	cfg, err := LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Backend.Token != "env-token" {
		t.Errorf("token = %q, want %q", cfg.Backend.Token, "env-token")
	}
}

func TestLoadFromReader_ExplicitTokenWinsOverEnv(t *testing.T) {
	t.Setenv(tokenEnv, "env-token")

	yaml := `
backend:
  base_url: "https://api.example.com"
  token: "file-token"
`
	cfg, err := LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Backend.Token != "file-token" {
		t.Errorf("token = %q, want %q", cfg.Backend.Token, "file-token")
	}
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		return &Config{
			Backend: BackendConfig{BaseURL: "https://api.example.com", Token: "t"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Server.LogLevel = "verbose" },
			wantErr: "server.log_level",
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "" },
			wantErr: "backend.base_url is required",
		},
		{
			name:    "relative base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "api.example.com/v1" },
			wantErr: "not an absolute URL",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Backend.Timeout = -time.Second },
			wantErr: "backend.timeout",
		},
		{
			name:    "negative max parallel",
			mutate:  func(c *Config) { c.Backend.MaxParallel = -1 },
			wantErr: "backend.max_parallel",
		},
		{
			name:    "negative tariff",
			mutate:  func(c *Config) { c.Tariff.CreditsPerUnit = -5 },
			wantErr: "tariff.credits_per_unit",
		},
		{
			name:    "negative min sample",
			mutate:  func(c *Config) { c.Detection.MinSample = -1 },
			wantErr: "detection.min_sample",
		},
		{
			name:    "volume out of range",
			mutate:  func(c *Config) { c.Playback.VolumeDB = 12 },
			wantErr: "playback.volume_db",
		},
		{
			name:    "tls without key file",
			mutate:  func(c *Config) { c.Server.TLS = &TLSConfig{CertFile: "cert.pem"} },
			wantErr: "server.tls.key_file",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{LogLevel: "loud"},
		Backend: BackendConfig{BaseURL: "", Timeout: -1},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"server.log_level", "backend.base_url", "backend.timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("joined error missing %q: %v", want, err)
		}
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.example.com" {
		t.Errorf("base_url = %q", cfg.Backend.BaseURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
