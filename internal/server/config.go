// config.go - Configuration loading and fail-fast validation.
//
// Precedence, lowest to highest: built-in defaults, the optional YAML config
// file, FD_* environment variables. Flags are applied by the CLI on top.
package server

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is everything the server needs to run.
type Config struct {
	Addr         string        // listen address, e.g. "localhost:7878"
	Workers      int           // fixed worker pool size, must be >= 1
	UploadsDir   string        // directory holding user files
	TemplatesDir string        // directory holding the HTML templates
	AuditDB      string        // SQLite audit database path; empty disables
	RateLimit    int           // requests per window per IP; 0 disables
	RateWindow   time.Duration // rate limiting window
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:7878",
		Workers:      4,
		UploadsDir:   "uploads",
		TemplatesDir: "templates",
		AuditDB:      "",
		RateLimit:    0,
		RateWindow:   time.Minute,
	}
}

// fileConfig is the YAML shape of the optional config file.
type fileConfig struct {
	Addr         string `yaml:"addr"`
	Workers      int    `yaml:"workers"`
	UploadsDir   string `yaml:"uploads_dir"`
	TemplatesDir string `yaml:"templates_dir"`
	AuditDB      string `yaml:"audit_db"`
	RateLimit    int    `yaml:"rate_limit"`
	RateWindow   string `yaml:"rate_window"`
}

// LoadConfig assembles the configuration from defaults, an optional YAML
// file, and the environment, then validates it.
func LoadConfig(configPath string) (Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := applyConfigFile(&cfg, configPath); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyConfigFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.Workers != 0 {
		cfg.Workers = fc.Workers
	}
	if fc.UploadsDir != "" {
		cfg.UploadsDir = fc.UploadsDir
	}
	if fc.TemplatesDir != "" {
		cfg.TemplatesDir = fc.TemplatesDir
	}
	if fc.AuditDB != "" {
		cfg.AuditDB = fc.AuditDB
	}
	if fc.RateLimit != 0 {
		cfg.RateLimit = fc.RateLimit
	}
	if fc.RateWindow != "" {
		window, err := time.ParseDuration(fc.RateWindow)
		if err != nil {
			return fmt.Errorf("invalid rate_window in config file: %w", err)
		}
		cfg.RateWindow = window
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Addr = getenvDefault("FD_ADDR", cfg.Addr)
	cfg.UploadsDir = getenvDefault("FD_UPLOADS_DIR", cfg.UploadsDir)
	cfg.TemplatesDir = getenvDefault("FD_TEMPLATES_DIR", cfg.TemplatesDir)
	cfg.AuditDB = getenvDefault("FD_AUDIT_DB", cfg.AuditDB)

	if raw := os.Getenv("FD_WORKERS"); raw != "" {
		workers, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("FD_WORKERS must be an integer: %w", err)
		}
		cfg.Workers = workers
	}
	if raw := os.Getenv("FD_RATE_LIMIT"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("FD_RATE_LIMIT must be an integer: %w", err)
		}
		cfg.RateLimit = rate
	}
	if raw := os.Getenv("FD_RATE_WINDOW"); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("FD_RATE_WINDOW must be a duration: %w", err)
		}
		cfg.RateWindow = window
	}
	return nil
}

// getenvDefault reads an environment variable, returning def when unset.
func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Validate collects every configuration problem before failing, so a broken
// deployment reports all of its mistakes at once.
func (c Config) Validate() error {
	v := newConfigValidator()

	if c.Addr == "" {
		v.addError("addr", "listen address must not be empty")
	}
	if c.Workers < 1 {
		v.addError("workers", fmt.Sprintf("must be at least 1 (got %d)", c.Workers))
	}
	if c.UploadsDir == "" {
		v.addError("uploads_dir", "uploads directory must not be empty")
	}
	if c.TemplatesDir == "" {
		v.addError("templates_dir", "templates directory must not be empty")
	}
	if c.RateLimit < 0 {
		v.addError("rate_limit", fmt.Sprintf("must not be negative (got %d)", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateWindow <= 0 {
		v.addError("rate_window", "must be positive when rate limiting is enabled")
	}

	if v.hasErrors() {
		return fmt.Errorf("%s", v.errorString())
	}
	return nil
}

// configValidator accumulates validation errors.
type configValidator struct {
	errors []string
}

func newConfigValidator() *configValidator {
	return &configValidator{}
}

func (v *configValidator) addError(field, message string) {
	v.errors = append(v.errors, fmt.Sprintf("%s: %s", field, message))
}

func (v *configValidator) hasErrors() bool { return len(v.errors) > 0 }

func (v *configValidator) errorString() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d error(s):\n", len(v.errors)))
	for i, e := range v.errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, e))
	}
	return strings.TrimRight(sb.String(), "\n")
}
