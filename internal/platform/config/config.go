// Package config loads process configuration from defaults, an optional
// config file and PARTNERDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix      = "PARTNERDESK"
	configFileEnv  = "PARTNERDESK_CONFIG"
	devSigningKey  = "dev-secret-key-change-in-production"
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	VAT       VATConfig       `mapstructure:"vat"`
	History   HistoryConfig   `mapstructure:"history"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	Environment     string        `mapstructure:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
}

type AuthConfig struct {
	JWTSigningKey string `mapstructure:"jwt_signing_key"`
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
}

// DatabaseConfig selects PostgreSQL stores when URL is set.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Migrate         bool          `mapstructure:"migrate"`
}

// RedisConfig selects the Redis verification cache when URL is set.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type VATConfig struct {
	MFBaseURL   string        `mapstructure:"mf_base_url"`
	VIESBaseURL string        `mapstructure:"vies_base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	// Consecutive registry failures before a provider's circuit opens.
	FailureThreshold int           `mapstructure:"failure_threshold"`
	CircuitCooldown  time.Duration `mapstructure:"circuit_cooldown"`
}

type HistoryConfig struct {
	PartnerPageSize int `mapstructure:"partner_page_size"`
	SessionPageSize int `mapstructure:"session_page_size"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepSchedule string        `mapstructure:"sweep_schedule"`
}

// RateLimitConfig bounds registry lookups per caller. A zero
// RegistryRequests turns the limiter off.
type RateLimitConfig struct {
	RegistryRequests int           `mapstructure:"registry_requests"`
	Window           time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.environment", EnvDevelopment)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("auth.jwt_signing_key", devSigningKey)
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)

	v.SetDefault("vat.mf_base_url", "https://wl-api.mf.gov.pl")
	v.SetDefault("vat.vies_base_url", "https://ec.europa.eu")
	v.SetDefault("vat.timeout", 10*time.Second)
	v.SetDefault("vat.cache_ttl", 5*time.Minute)
	v.SetDefault("vat.failure_threshold", 5)
	v.SetDefault("vat.circuit_cooldown", 30*time.Second)

	v.SetDefault("history.partner_page_size", 10)
	v.SetDefault("history.session_page_size", 5)

	v.SetDefault("session.idle_ttl", 30*time.Minute)
	v.SetDefault("session.sweep_schedule", "@every 1m")

	v.SetDefault("rate_limit.registry_requests", 30)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// FromEnv builds the configuration. PARTNERDESK_CONFIG may point at a YAML,
// JSON or TOML file; environment variables such as PARTNERDESK_DATABASE_URL
// override both the file and the defaults.
func FromEnv() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(configFileEnv); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New("auth.jwt_signing_key is required"))
	}
	if c.IsProduction() && c.Auth.JWTSigningKey == devSigningKey {
		errs = append(errs, errors.New("auth.jwt_signing_key must be set in production"))
	}
	if c.VAT.Timeout <= 0 {
		errs = append(errs, errors.New("vat.timeout must be positive"))
	}
	if c.History.PartnerPageSize <= 0 || c.History.SessionPageSize <= 0 {
		errs = append(errs, errors.New("history page sizes must be positive"))
	}
	if c.Session.IdleTTL <= 0 {
		errs = append(errs, errors.New("session.idle_ttl must be positive"))
	}
	if c.RateLimit.RegistryRequests < 0 {
		errs = append(errs, errors.New("rate_limit.registry_requests must not be negative"))
	}
	if c.RateLimit.RegistryRequests > 0 && c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate_limit.window must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.Server.Environment == EnvProduction
}
