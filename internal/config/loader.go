package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// tokenEnv is the environment variable consulted when backend.token is empty.
const tokenEnv = "VOICECLONEAI_TOKEN"

// Load reads the YAML configuration file at path and returns a validated [Config].
// It is a convenience wrapper around [LoadFromReader] and [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if cfg.Backend.Token == "" {
		cfg.Backend.Token = os.Getenv(tokenEnv)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" {
			errs = append(errs, errors.New("server.tls.cert_file is required when tls is set"))
		}
		if cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls.key_file is required when tls is set"))
		}
	}

	// Backend
	if cfg.Backend.BaseURL == "" {
		errs = append(errs, errors.New("backend.base_url is required"))
	} else if u, err := url.Parse(cfg.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url %q is not an absolute URL", cfg.Backend.BaseURL))
	}
	if cfg.Backend.Timeout < 0 {
		errs = append(errs, fmt.Errorf("backend.timeout %v must not be negative", cfg.Backend.Timeout))
	}
	if cfg.Backend.MaxParallel < 0 {
		errs = append(errs, fmt.Errorf("backend.max_parallel %d must not be negative", cfg.Backend.MaxParallel))
	}
	if cfg.Backend.Token == "" {
		slog.Warn("backend.token is empty; requests will be unauthenticated",
			"env", tokenEnv)
	}

	// Tariff
	if cfg.Tariff.CreditsPerUnit < 0 {
		errs = append(errs, fmt.Errorf("tariff.credits_per_unit %d must not be negative", cfg.Tariff.CreditsPerUnit))
	}
	if cfg.Tariff.MaxTextLen < 0 {
		errs = append(errs, fmt.Errorf("tariff.max_text_len %d must not be negative", cfg.Tariff.MaxTextLen))
	}

	// Detection
	if cfg.Detection.MinSample < 0 {
		errs = append(errs, fmt.Errorf("detection.min_sample %d must not be negative", cfg.Detection.MinSample))
	}
	if cfg.Detection.Debounce < 0 {
		errs = append(errs, fmt.Errorf("detection.debounce %v must not be negative", cfg.Detection.Debounce))
	}

	// Playback
	if cfg.Playback.VolumeDB < -8 || cfg.Playback.VolumeDB > 8 {
		errs = append(errs, fmt.Errorf("playback.volume_db %.2f is out of range [-8, 8]", cfg.Playback.VolumeDB))
	}

	return errors.Join(errs...)
}
