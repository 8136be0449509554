// Package config loads the ipsec-confgen YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	KeyBackendFile    = "file"
	KeyBackendKeyring = "keyring"
)

var ErrInvalid = errors.New("invalid configuration")

// Config is the process configuration.
type Config struct {
	// Listen is the HTTP listen address for "serve".
	Listen string `yaml:"listen"`
	// ListenInterface optionally binds Listen's port to this interface's
	// first IPv4 address.
	ListenInterface string `yaml:"listen_interface"`
	// StorageDir receives saved artifacts.
	StorageDir string `yaml:"storage_dir"`
	// IndexPath is the SQLite artifact index. Empty disables the index.
	IndexPath string `yaml:"index_path"`
	// PresetsFile optionally overrides or extends the built-in presets.
	PresetsFile string     `yaml:"presets_file"`
	Key         KeyConfig  `yaml:"key"`
	Log         LogConfig  `yaml:"log"`
	Auth        AuthConfig `yaml:"auth"`
}

// KeyConfig selects where the PSK encryption key lives.
type KeyConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Service string `yaml:"service"`
	User    string `yaml:"user"`
}

// AuthConfig enables bearer token authentication for "serve" when
// TokenHash holds a bcrypt hash (see "ipsec-confgen token").
type AuthConfig struct {
	TokenHash string `yaml:"token_hash"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Listen:     ":8080",
		StorageDir: "generated",
		IndexPath:  "data/artifacts.db",
		Key: KeyConfig{
			Backend: KeyBackendFile,
			Path:    "data/secret.key",
			Service: "ipsec-confgen",
			User:    "psk-encryption-key",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open configuration: %w", err)
	}
	defer file.Close()

	if err := decode(file, cfg); err != nil {
		return nil, fmt.Errorf("parse configuration %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate checks field values and normalizes case and whitespace.
func (c *Config) Validate() error {
	c.Listen = strings.TrimSpace(c.Listen)
	c.ListenInterface = strings.TrimSpace(c.ListenInterface)
	c.StorageDir = strings.TrimSpace(c.StorageDir)
	c.IndexPath = strings.TrimSpace(c.IndexPath)
	c.PresetsFile = strings.TrimSpace(c.PresetsFile)
	c.Key.Backend = strings.ToLower(strings.TrimSpace(c.Key.Backend))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))

	if c.Listen == "" {
		return fmt.Errorf("%w: listen is required", ErrInvalid)
	}
	if c.StorageDir == "" {
		return fmt.Errorf("%w: storage_dir is required", ErrInvalid)
	}
	switch c.Key.Backend {
	case KeyBackendFile:
		if strings.TrimSpace(c.Key.Path) == "" {
			return fmt.Errorf("%w: key.path is required for the file backend", ErrInvalid)
		}
	case KeyBackendKeyring:
		if strings.TrimSpace(c.Key.Service) == "" || strings.TrimSpace(c.Key.User) == "" {
			return fmt.Errorf("%w: key.service and key.user are required for the keyring backend", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: key.backend must be %q or %q", ErrInvalid, KeyBackendFile, KeyBackendKeyring)
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log.level must be one of debug, info, warn, error", ErrInvalid)
	}
	return nil
}
