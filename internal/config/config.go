// Package config provides the configuration schema, loader, and file watcher
// for the voicecloneai studio service.
package config

import "time"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Tariff    TariffConfig    `yaml:"tariff"`
	Detection DetectionConfig `yaml:"detection"`
	Playback  PlaybackConfig  `yaml:"playback"`
}

// ServerConfig holds network and logging settings for the local service.
type ServerConfig struct {
	// ListenAddr is the TCP address the metrics/health server listens on
	// (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// TLS configures TLS for the server. When nil, the server runs plain HTTP.
	TLS *TLSConfig `yaml:"tls"`
}

// TLSConfig holds TLS certificate paths for enabling HTTPS.
type TLSConfig struct {
	// CertFile is the path to the PEM-encoded TLS certificate.
	CertFile string `yaml:"cert_file"`

	// KeyFile is the path to the PEM-encoded TLS private key.
	KeyFile string `yaml:"key_file"`
}

// BackendConfig describes how to reach the voice generation backend.
type BackendConfig struct {
	// BaseURL is the backend API root (e.g., "https://api.example.com").
	BaseURL string `yaml:"base_url"`

	// Token is the bearer token sent with every request. May also be
	// supplied via the VOICECLONEAI_TOKEN environment variable.
	Token string `yaml:"token"`

	// Timeout bounds each backend request. Zero means the client default.
	Timeout time.Duration `yaml:"timeout"`

	// MaxParallel caps concurrent generation requests in a batch.
	// Zero means the orchestrator default.
	MaxParallel int `yaml:"max_parallel"`
}

// TariffConfig holds the client-side credit accounting parameters. These
// mirror the backend tariff; the backend remains authoritative.
type TariffConfig struct {
	// CreditsPerUnit is the cost of one generation unit. Zero means the
	// ledger default.
	CreditsPerUnit int `yaml:"credits_per_unit"`

	// MaxTextLen is the per-request input limit in characters. Zero means
	// the orchestrator default.
	MaxTextLen int `yaml:"max_text_len"`
}

// DetectionConfig tunes the debounced language detector.
type DetectionConfig struct {
	// MinSample is the minimum number of characters before detection runs.
	// Zero means the detector default.
	MinSample int `yaml:"min_sample"`

	// Debounce is the quiet period after the last keystroke before
	// detection fires. Zero means the detector default.
	Debounce time.Duration `yaml:"debounce"`
}

// PlaybackConfig tunes local audio output.
type PlaybackConfig struct {
	// VolumeDB adjusts output gain in the range [-8, 8]. 0 means unity.
	VolumeDB float64 `yaml:"volume_db"`
}
