// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all contactos configuration.
type Config struct {
	Source    Source    `yaml:"source"`
	Messenger Messenger `yaml:"messenger"`
	Access    Access    `yaml:"access"`
	Log       Log       `yaml:"log"`
}

// Source selects the contact store.
type Source struct {
	Kind string `yaml:"kind"` // "sqlite" | "yaml"
	Path string `yaml:"path"`
}

// Messenger selects the handoff target.
type Messenger struct {
	App     string        `yaml:"app"`     // "whatsapp" | "sms" | "smsto"
	Handler string        `yaml:"handler"` // Pin the desktop handler, e.g. "whatsapp.desktop"
	Opener  string        `yaml:"opener"`  // Override the opener executable
	Timeout time.Duration `yaml:"timeout"`
}

// Access holds read-contacts authorization settings.
type Access struct {
	Mode     string `yaml:"mode"`      // "ask" | "granted" | "denied"
	StateDir string `yaml:"state_dir"` // Where remembered grants live
}

// Log holds log output settings.
type Log struct {
	File  string `yaml:"file"` // "" or "-" disables logging
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Source: Source{
			Kind: "sqlite",
			Path: ".contactos/contacts.db",
		},
		Messenger: Messenger{
			App:     "whatsapp",
			Timeout: 10 * time.Second,
		},
		Access: Access{
			Mode:     "ask",
			StateDir: ".contactos/grants",
		},
		Log: Log{
			File:  ".contactos/contactos.log",
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Source.Kind == "" {
		return errors.New("config: source.kind cannot be empty")
	}
	if c.Source.Path == "" {
		return errors.New("config: source.path cannot be empty")
	}
	if c.Messenger.App == "" {
		return errors.New("config: messenger.app cannot be empty")
	}
	if c.Messenger.Timeout <= 0 {
		return fmt.Errorf("config: messenger.timeout must be positive, got %v", c.Messenger.Timeout)
	}
	switch c.Access.Mode {
	case "", "ask", "granted", "denied":
		// valid
	default:
		return fmt.Errorf("config: access.mode must be \"ask\", \"granted\" or \"denied\", got %q", c.Access.Mode)
	}
	if c.Access.StateDir == "" {
		return errors.New("config: access.state_dir cannot be empty")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTOS_SOURCE_KIND, CONTACTOS_SOURCE_PATH,
// CONTACTOS_MESSENGER, CONTACTOS_TIMEOUT, CONTACTOS_ACCESS, CONTACTOS_LOG_LEVEL.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("CONTACTOS_SOURCE_KIND"); v != "" {
		c.Source.Kind = v
	}
	if v := os.Getenv("CONTACTOS_SOURCE_PATH"); v != "" {
		c.Source.Path = v
	}
	if v := os.Getenv("CONTACTOS_MESSENGER"); v != "" {
		c.Messenger.App = v
	}
	if v := os.Getenv("CONTACTOS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid CONTACTOS_TIMEOUT %q: %w", v, err)
		}
		c.Messenger.Timeout = d
	}
	if v := os.Getenv("CONTACTOS_ACCESS"); v != "" {
		c.Access.Mode = v
	}
	if v := os.Getenv("CONTACTOS_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Source    *rawSource    `yaml:"source"`
	Messenger *rawMessenger `yaml:"messenger"`
	Access    *rawAccess    `yaml:"access"`
	Log       *rawLog       `yaml:"log"`
}

type rawSource struct {
	Kind *string `yaml:"kind"`
	Path *string `yaml:"path"`
}

type rawMessenger struct {
	App     *string        `yaml:"app"`
	Handler *string        `yaml:"handler"`
	Opener  *string        `yaml:"opener"`
	Timeout *time.Duration `yaml:"timeout"`
}

type rawAccess struct {
	Mode     *string `yaml:"mode"`
	StateDir *string `yaml:"state_dir"`
}

type rawLog struct {
	File  *string `yaml:"file"`
	Level *string `yaml:"level"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Source != nil {
		setIf(&c.Source.Kind, layer.Source.Kind)
		setIf(&c.Source.Path, layer.Source.Path)
	}
	if layer.Messenger != nil {
		setIf(&c.Messenger.App, layer.Messenger.App)
		setIf(&c.Messenger.Handler, layer.Messenger.Handler)
		setIf(&c.Messenger.Opener, layer.Messenger.Opener)
		setIf(&c.Messenger.Timeout, layer.Messenger.Timeout)
	}
	if layer.Access != nil {
		setIf(&c.Access.Mode, layer.Access.Mode)
		setIf(&c.Access.StateDir, layer.Access.StateDir)
	}
	if layer.Log != nil {
		setIf(&c.Log.File, layer.Log.File)
		setIf(&c.Log.Level, layer.Log.Level)
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
