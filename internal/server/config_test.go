package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	want := Config{
		Addr:         "localhost:7878",
		Workers:      4,
		UploadsDir:   "uploads",
		TemplatesDir: "templates",
		AuditDB:      "",
		RateLimit:    0,
		RateWindow:   time.Minute,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filedrop.yaml")
	raw := strings.Join([]string{
		"addr: 0.0.0.0:9000",
		"workers: 8",
		"uploads_dir: /srv/drop/uploads",
		"audit_db: /srv/drop/audit.db",
		"rate_limit: 60",
		"rate_window: 30s",
	}, "\n")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d", cfg.Workers)
	}
	if cfg.UploadsDir != "/srv/drop/uploads" {
		t.Errorf("UploadsDir = %q", cfg.UploadsDir)
	}
	// Unset file keys keep their defaults.
	if cfg.TemplatesDir != "templates" {
		t.Errorf("TemplatesDir = %q, want default", cfg.TemplatesDir)
	}
	if cfg.RateLimit != 60 || cfg.RateWindow != 30*time.Second {
		t.Errorf("rate limiting = (%d, %v)", cfg.RateLimit, cfg.RateWindow)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filedrop.yaml")
	if err := os.WriteFile(path, []byte("addr: 0.0.0.0:9000\nworkers: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FD_ADDR", "127.0.0.1:7000")
	t.Setenv("FD_WORKERS", "2")
	t.Setenv("FD_RATE_LIMIT", "10")
	t.Setenv("FD_RATE_WINDOW", "5s")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Addr != "127.0.0.1:7000" {
		t.Errorf("Addr = %q, want env value", cfg.Addr)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want env value", cfg.Workers)
	}
	if cfg.RateLimit != 10 || cfg.RateWindow != 5*time.Second {
		t.Errorf("rate limiting = (%d, %v)", cfg.RateLimit, cfg.RateWindow)
	}
}

func TestLoadConfigBadEnvValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FD_WORKERS", "many"},
		{"FD_RATE_LIMIT", "lots"},
		{"FD_RATE_WINDOW", "soonish"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadConfig(""); err == nil {
				t.Errorf("LoadConfig with %s=%s succeeded, want error", tt.key, tt.value)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadConfig with a missing file succeeded, want error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		hints  []string
	}{
		{
			name:   "empty addr",
			mutate: func(c *Config) { c.Addr = "" },
			hints:  []string{"addr"},
		},
		{
			name:   "zero workers",
			mutate: func(c *Config) { c.Workers = 0 },
			hints:  []string{"workers"},
		},
		{
			name:   "empty uploads dir",
			mutate: func(c *Config) { c.UploadsDir = "" },
			hints:  []string{"uploads_dir"},
		},
		{
			name:   "negative rate limit",
			mutate: func(c *Config) { c.RateLimit = -1 },
			hints:  []string{"rate_limit"},
		},
		{
			name:   "rate limit without window",
			mutate: func(c *Config) { c.RateLimit = 10; c.RateWindow = 0 },
			hints:  []string{"rate_window"},
		},
		{
			name: "multiple problems reported together",
			mutate: func(c *Config) {
				c.Addr = ""
				c.Workers = -3
				c.TemplatesDir = ""
			},
			hints: []string{"addr", "workers", "templates_dir", "3 error(s)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate succeeded, want error")
			}
			for _, hint := range tt.hints {
				if !strings.Contains(err.Error(), hint) {
					t.Errorf("error %q missing %q", err, hint)
				}
			}
		})
	}
}
