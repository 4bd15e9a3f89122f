// Package config loads service configuration from a YAML file with
// environment-variable overrides. All knobs have workable defaults so the
// service starts with no file at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every runtime knob of the service.
type Config struct {
	// Listen is the address the HTTP server binds to.
	Listen string `yaml:"listen"`
	// MaxUploadBytes caps the size of a single multipart upload.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	// RequestTimeout bounds a single conversion request end to end.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// TempDir is where scratch workspaces are created. Empty means os.TempDir.
	TempDir string `yaml:"temp_dir"`
	// MaxConnections caps concurrently accepted TCP connections. Zero disables
	// the cap.
	MaxConnections int `yaml:"max_connections"`
	// Workers bounds concurrent page post-processing during rasterization.
	Workers int `yaml:"workers"`
	// OCRLanguages are the default tesseract/ocrmypdf language hints.
	OCRLanguages []string `yaml:"ocr_languages"`
	// APIKeyHash is an optional bcrypt hash. When set, requests must carry the
	// matching key in the X-API-Key header.
	APIKeyHash string `yaml:"api_key_hash"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// Tracing enables the OpenTelemetry stdout exporter.
	Tracing bool `yaml:"tracing"`
	// Tools overrides the binary name or path per external tool.
	Tools map[string]string `yaml:"tools"`
}

// Default returns the configuration used when nothing is provided. The listen
// address matches the container image contract (0.0.0.0:8000).
func Default() Config {
	return Config{
		Listen:         "0.0.0.0:8000",
		MaxUploadBytes: 256 << 20,
		RequestTimeout: 5 * time.Minute,
		Workers:        4,
		OCRLanguages:   []string{"eng"},
		LogLevel:       "info",
	}
}

// Load reads path (when non-empty), then applies PDFTOOLKIT_* environment
// overrides, then validates. A missing file at an explicitly given path is an
// error; an empty path skips the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PDFTOOLKIT_LISTEN"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("PDFTOOLKIT_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse PDFTOOLKIT_MAX_UPLOAD_BYTES: %w", err)
		}
		c.MaxUploadBytes = n
	}
	if v := os.Getenv("PDFTOOLKIT_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse PDFTOOLKIT_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v := os.Getenv("PDFTOOLKIT_TEMP_DIR"); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv("PDFTOOLKIT_MAX_CONNECTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PDFTOOLKIT_MAX_CONNECTIONS: %w", err)
		}
		c.MaxConnections = n
	}
	if v := os.Getenv("PDFTOOLKIT_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PDFTOOLKIT_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("PDFTOOLKIT_OCR_LANGUAGES"); v != "" {
		c.OCRLanguages = splitList(v)
	}
	if v := os.Getenv("PDFTOOLKIT_API_KEY_HASH"); v != "" {
		c.APIKeyHash = v
	}
	if v := os.Getenv("PDFTOOLKIT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PDFTOOLKIT_TRACING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse PDFTOOLKIT_TRACING: %w", err)
		}
		c.Tracing = b
	}
	return nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.MaxConnections < 0 {
		return fmt.Errorf("max_connections must not be negative, got %d", c.MaxConnections)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
