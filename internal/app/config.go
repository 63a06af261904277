package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the FitCentre backend.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Email       EmailConfig       `mapstructure:"email"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Bootstrap   BootstrapConfig   `mapstructure:"bootstrap"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	PoolSize int           `mapstructure:"pool_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig captures all authentication-related settings.
type AuthConfig struct {
	JWT   JWTSettings   `mapstructure:"jwt"`
	OTP   OTPSettings   `mapstructure:"otp"`
	Reset ResetSettings `mapstructure:"reset"`
}

// JWTSettings configures the bearer tokens.
type JWTSettings struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"access_token_ttl"`
}

// OTPSettings configures emailed one-time codes.
type OTPSettings struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// ResetSettings configures password reset links and tokens.
type ResetSettings struct {
	BaseURL  string        `mapstructure:"base_url"`
	LinkTTL  time.Duration `mapstructure:"link_ttl"`
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	From       string        `mapstructure:"from"`
	Encryption string        `mapstructure:"encryption"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig throttles the endpoints that send OTP mail.
type RateLimitConfig struct {
	OTPRequests int           `mapstructure:"otp_requests"`
	OTPWindow   time.Duration `mapstructure:"otp_window"`
}

// MaintenanceConfig schedules the expired credential sweep. CodeRetention is
// how long an emailed code stays stored after it was sent, so a late attempt
// still reports expiry. StaleAfter marks the health probe degraded when no
// sweep has succeeded for that long.
type MaintenanceConfig struct {
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
	CodeRetention   time.Duration `mapstructure:"code_retention"`
	StaleAfter      time.Duration `mapstructure:"stale_after"`
}

// BootstrapConfig describes the optional first super admin.
type BootstrapConfig struct {
	Email       string `mapstructure:"email"`
	Password    string `mapstructure:"password"`
	FullName    string `mapstructure:"full_name"`
	Username    string `mapstructure:"username"`
	PhoneNumber string `mapstructure:"phone_number"`
}

// LoadConfig reads config/config.yaml (plus any extra search paths), a .env
// file when present, and FITCENTRE_ prefixed environment variables.
func LoadConfig(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("FITCENTRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

// Validate reports configuration that would prevent the server from starting.
func (c *Config) Validate() error {
	if len(strings.TrimSpace(c.Auth.JWT.Secret)) < 32 {
		return errors.New("config: auth.jwt.secret must be at least 32 characters")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range", c.Server.Port)
	}
	if c.Email.SMTP.Enabled && (strings.TrimSpace(c.Email.SMTP.Host) == "" || strings.TrimSpace(c.Email.SMTP.From) == "") {
		return errors.New("config: email.smtp.host and email.smtp.from are required when smtp is enabled")
	}
	if c.Maintenance.CodeRetention > 0 && c.Maintenance.CodeRetention <= c.Auth.OTP.TTL {
		return fmt.Errorf("config: maintenance.code_retention %s must exceed auth.otp.ttl %s", c.Maintenance.CodeRetention, c.Auth.OTP.TTL)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/fitcentre.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_open_conns", 0)
	v.SetDefault("database.max_idle_conns", 0)
	v.SetDefault("database.conn_max_lifetime", "0s")
	v.SetDefault("database.log_queries", false)

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.pool_size", 0)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "fitcentre")
	v.SetDefault("auth.jwt.access_token_ttl", "24h")
	v.SetDefault("auth.otp.ttl", "3m")
	v.SetDefault("auth.reset.base_url", "http://localhost:3000")
	v.SetDefault("auth.reset.link_ttl", "1h")
	v.SetDefault("auth.reset.token_ttl", "3m")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.from", "")
	v.SetDefault("email.smtp.encryption", "starttls")
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("rate_limit.otp_requests", 5)
	v.SetDefault("rate_limit.otp_window", "10m")

	v.SetDefault("maintenance.cleanup_schedule", "@every 5m")
	v.SetDefault("maintenance.code_retention", "24h")
	v.SetDefault("maintenance.stale_after", "1h")

	v.SetDefault("bootstrap.email", "")
	v.SetDefault("bootstrap.password", "")
	v.SetDefault("bootstrap.full_name", "")
	v.SetDefault("bootstrap.username", "")
	v.SetDefault("bootstrap.phone_number", "")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
