package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Source.Kind != "sqlite" {
		t.Errorf("default source kind = %q, want %q", cfg.Source.Kind, "sqlite")
	}
	if cfg.Messenger.App != "whatsapp" {
		t.Errorf("default messenger = %q, want %q", cfg.Messenger.App, "whatsapp")
	}
	if cfg.Messenger.Timeout != 10*time.Second {
		t.Errorf("default timeout = %v, want %v", cfg.Messenger.Timeout, 10*time.Second)
	}
	if cfg.Access.Mode != "ask" {
		t.Errorf("default access mode = %q, want %q", cfg.Access.Mode, "ask")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
source:
  kind: yaml
  path: /home/me/contacts.yaml
messenger:
  app: sms
  handler: org.gnome.Messages.desktop
  timeout: 3s
log:
  level: debug
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source.Kind != "yaml" || cfg.Source.Path != "/home/me/contacts.yaml" {
		t.Errorf("source = %+v, want yaml at /home/me/contacts.yaml", cfg.Source)
	}
	if cfg.Messenger.App != "sms" {
		t.Errorf("messenger = %q, want %q", cfg.Messenger.App, "sms")
	}
	if cfg.Messenger.Handler != "org.gnome.Messages.desktop" {
		t.Errorf("handler = %q", cfg.Messenger.Handler)
	}
	if cfg.Messenger.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want %v", cfg.Messenger.Timeout, 3*time.Second)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want %q", cfg.Log.Level, "debug")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load(invalid YAML) should return error")
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
messenger:
  app: smsto
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Messenger.App != "smsto" {
		t.Errorf("messenger = %q, want %q", cfg.Messenger.App, "smsto")
	}
	// Unset fields should retain defaults.
	if cfg.Messenger.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want default %v", cfg.Messenger.Timeout, 10*time.Second)
	}
	if cfg.Source.Path != ".contactos/contacts.db" {
		t.Errorf("source path = %q, want default", cfg.Source.Path)
	}
}

func TestLoad_LayeredPriority(t *testing.T) {
	// Setup: user config picks the source, project config overrides the messenger.
	userDir := t.TempDir()
	projectDir := t.TempDir()

	userCfg := filepath.Join(userDir, "config.yaml")
	if err := os.WriteFile(userCfg, []byte(`
source:
  kind: yaml
  path: ~/contacts.yaml
messenger:
  app: sms
`), 0o644); err != nil {
		t.Fatal(err)
	}

	projectCfg := filepath.Join(projectDir, "config.yaml")
	if err := os.WriteFile(projectCfg, []byte(`
messenger:
  app: whatsapp
  handler: whatsapp.desktop
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	// Source from user config (project doesn't set it).
	if cfg.Source.Kind != "yaml" {
		t.Errorf("source kind = %q, want %q", cfg.Source.Kind, "yaml")
	}
	// Messenger from project config (overrides user).
	if cfg.Messenger.App != "whatsapp" || cfg.Messenger.Handler != "whatsapp.desktop" {
		t.Errorf("messenger = %+v, want whatsapp pinned to whatsapp.desktop", cfg.Messenger)
	}
	// Access retains default when neither layer sets it.
	if cfg.Access.StateDir != ".contactos/grants" {
		t.Errorf("state dir = %q, want default", cfg.Access.StateDir)
	}
}

func TestLoadLayered_InvalidLayer(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(bad, []byte("access:\n  mood: ask\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLayered(bad); err == nil {
		t.Fatal("LoadLayered() should reject unknown field 'mood'")
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envs    map[string]string
		wantErr bool
		check   func(*testing.T, Config)
	}{
		{
			name: "CONTACTOS_SOURCE_KIND and PATH override source",
			envs: map[string]string{"CONTACTOS_SOURCE_KIND": "yaml", "CONTACTOS_SOURCE_PATH": "/tmp/c.yaml"},
			check: func(t *testing.T, c Config) {
				if c.Source.Kind != "yaml" || c.Source.Path != "/tmp/c.yaml" {
					t.Errorf("source = %+v, want yaml /tmp/c.yaml", c.Source)
				}
			},
		},
		{
			name: "CONTACTOS_MESSENGER overrides app",
			envs: map[string]string{"CONTACTOS_MESSENGER": "sms"},
			check: func(t *testing.T, c Config) {
				if c.Messenger.App != "sms" {
					t.Errorf("messenger = %q, want %q", c.Messenger.App, "sms")
				}
			},
		},
		{
			name: "CONTACTOS_TIMEOUT overrides timeout",
			envs: map[string]string{"CONTACTOS_TIMEOUT": "30s"},
			check: func(t *testing.T, c Config) {
				if c.Messenger.Timeout != 30*time.Second {
					t.Errorf("timeout = %v, want %v", c.Messenger.Timeout, 30*time.Second)
				}
			},
		},
		{
			name: "CONTACTOS_ACCESS and LOG_LEVEL override",
			envs: map[string]string{"CONTACTOS_ACCESS": "granted", "CONTACTOS_LOG_LEVEL": "warn"},
			check: func(t *testing.T, c Config) {
				if c.Access.Mode != "granted" {
					t.Errorf("access mode = %q, want granted", c.Access.Mode)
				}
				if c.Log.Level != "warn" {
					t.Errorf("log level = %q, want warn", c.Log.Level)
				}
			},
		},
		{
			name:    "invalid CONTACTOS_TIMEOUT returns error",
			envs:    map[string]string{"CONTACTOS_TIMEOUT": "notaduration"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			err := cfg.ApplyEnv()

			if tt.wantErr {
				if err == nil {
					t.Fatal("ApplyEnv() should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyEnv() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoad_UnknownField(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
messenger:
  ap: sms
`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatal("Load() should return error for unknown field 'ap'")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "empty source kind",
			modify:  func(c *Config) { c.Source.Kind = "" },
			wantErr: true,
		},
		{
			name:    "empty source path",
			modify:  func(c *Config) { c.Source.Path = "" },
			wantErr: true,
		},
		{
			name:    "empty messenger",
			modify:  func(c *Config) { c.Messenger.App = "" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			modify:  func(c *Config) { c.Messenger.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "unknown access mode",
			modify:  func(c *Config) { c.Access.Mode = "sometimes" },
			wantErr: true,
		},
		{
			name:   "empty access mode means ask",
			modify: func(c *Config) { c.Access.Mode = "" },
		},
		{
			name:    "empty state dir",
			modify:  func(c *Config) { c.Access.StateDir = "" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			modify:  func(c *Config) { c.Log.Level = "trace" },
			wantErr: true,
		},
		{
			name:   "logging disabled",
			modify: func(c *Config) { c.Log.File = "" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_CommentOnlyFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("# just a comment\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load(comment-only) error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("Load(comment-only) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}
