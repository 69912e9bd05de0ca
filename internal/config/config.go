// Package config loads taskmate settings from defaults, an optional YAML file
// and TASKMATE_ environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dori/taskmate/internal/db"
	"github.com/spf13/viper"
)

// DevSecret is the signing secret used when none is configured. It is only
// suitable for local use.
const DevSecret = "taskmate-dev-secret-change-me"

// EnvPrefix prefixes every environment override, e.g. TASKMATE_SERVER_ADDR.
const EnvPrefix = "TASKMATE"

// Config is the full taskmate configuration
type Config struct {
	DataDir string       `yaml:"data_dir" mapstructure:"data_dir"`
	DBPath  string       `yaml:"db_path" mapstructure:"db_path"`
	Server  ServerConfig `yaml:"server" mapstructure:"server"`
	Auth    AuthConfig   `yaml:"auth" mapstructure:"auth"`
	Log     LogConfig    `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr            string        `yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// AuthConfig configures password hashing and tokens
type AuthConfig struct {
	Secret       string        `yaml:"secret" mapstructure:"secret"`
	Issuer       string        `yaml:"issuer" mapstructure:"issuer"`
	AccessTTL    time.Duration `yaml:"access_ttl" mapstructure:"access_ttl"`
	RefreshTTL   time.Duration `yaml:"refresh_ttl" mapstructure:"refresh_ttl"`
	BcryptCost   int           `yaml:"bcrypt_cost" mapstructure:"bcrypt_cost"`
	CookieSecure bool          `yaml:"cookie_secure" mapstructure:"cookie_secure"`
}

// LogConfig configures the slog handler
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		DataDir: db.DefaultDataDir(),
		Server: ServerConfig{
			Addr:            ":3000",
			ShutdownTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			Secret:     DevSecret,
			Issuer:     "taskmate",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			BcryptCost: 12,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = db.FilePath(cfg.DataDir)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key so that environment overrides reach
// Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("data_dir", d.DataDir)
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("auth.secret", d.Auth.Secret)
	v.SetDefault("auth.issuer", d.Auth.Issuer)
	v.SetDefault("auth.access_ttl", d.Auth.AccessTTL)
	v.SetDefault("auth.refresh_ttl", d.Auth.RefreshTTL)
	v.SetDefault("auth.bcrypt_cost", d.Auth.BcryptCost)
	v.SetDefault("auth.cookie_secure", d.Auth.CookieSecure)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Validate checks values that have no usable fallback.
func (c *Config) Validate() error {
	var errs []error
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr must not be empty"))
	}
	if c.Auth.Secret == "" {
		errs = append(errs, errors.New("auth.secret must not be empty"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("auth token lifetimes must be positive"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// UsesDevSecret reports whether tokens are signed with DevSecret.
func (c *Config) UsesDevSecret() bool {
	return c.Auth.Secret == DevSecret
}

// LockPath returns the path of the data directory lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "taskmate.lock")
}
