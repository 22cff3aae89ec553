package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone must resolve in scratch images

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from every environment variable before it is mapped
// onto the config tree. A double underscore separates nesting levels, so
// APP_DATABASE__MAX_OPEN_CONNS maps to database.max_open_conns.
const EnvPrefix = "APP_"

// AppSettings holds process-level settings.
type AppSettings struct {
	Env      string `koanf:"env" validate:"required,oneof=local development staging production test"`
	Port     string `koanf:"port" validate:"required"`
	Timezone string `koanf:"timezone" validate:"required"`
	LogLevel string `koanf:"log_level" validate:"required"`
	// CORSAllowedOrigins is a comma separated list passed to the cors middleware.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
}

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string `koanf:"host" validate:"required"`
	Port               string `koanf:"port" validate:"required"`
	User               string `koanf:"user" validate:"required"`
	Password           string `koanf:"password"`
	Name               string `koanf:"name" validate:"required"`
	SSLMode            string `koanf:"ssl_mode"`
	MaxOpenConns       int    `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns       int    `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeSec int    `koanf:"conn_max_lifetime_sec" validate:"gte=0"`
	AutoMigrate        bool   `koanf:"auto_migrate"`
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string `koanf:"endpoint" validate:"required"`
	AccessKey string `koanf:"access_key" validate:"required"`
	SecretKey string `koanf:"secret_key" validate:"required"`
	Bucket    string `koanf:"bucket" validate:"required"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// RedisConfig is shared by the token revocation store and the job queue.
type RedisConfig struct {
	Addr     string `koanf:"addr" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"gte=0"`
}

// AuthConfig controls token issuance and two-factor enrolment.
type AuthConfig struct {
	JWTSecret   string        `koanf:"jwt_secret" validate:"required,min=32"`
	Issuer      string        `koanf:"issuer" validate:"required"`
	AccessTTL   time.Duration `koanf:"access_ttl" validate:"required"`
	RefreshTTL  time.Duration `koanf:"refresh_ttl" validate:"required"`
	MFATokenTTL time.Duration `koanf:"mfa_token_ttl" validate:"required"`
	TOTPIssuer  string        `koanf:"totp_issuer" validate:"required"`
	// BootstrapEmail and BootstrapPassword create the first management
	// super admin at startup when no account with that email exists.
	BootstrapEmail    string `koanf:"bootstrap_email" validate:"omitempty,email"`
	BootstrapPassword string `koanf:"bootstrap_password" validate:"required_with=BootstrapEmail"`
}

// WathqConfig configures the upstream client and per-service cache lifetimes.
type WathqConfig struct {
	BaseURL string        `koanf:"base_url" validate:"required,url"`
	APIKey  string        `koanf:"api_key" validate:"required"`
	Timeout time.Duration `koanf:"timeout" validate:"required"`
	// CacheTTL is the fallback lifetime for services missing from ServiceTTL.
	CacheTTL   time.Duration            `koanf:"cache_ttl" validate:"required"`
	ServiceTTL map[string]time.Duration `koanf:"service_ttl"`
}

// TTLFor returns the cache lifetime for a Wathq service.
func (w WathqConfig) TTLFor(service string) time.Duration {
	if d, ok := w.ServiceTTL[service]; ok && d > 0 {
		return d
	}
	return w.CacheTTL
}

// JobsConfig configures the asynq worker and scheduler.
type JobsConfig struct {
	Concurrency      int           `koanf:"concurrency" validate:"gte=1"`
	CachePurgeCron   string        `koanf:"cache_purge_cron" validate:"required"`
	CallLogPurgeCron string        `koanf:"call_log_purge_cron" validate:"required"`
	CallLogRetention time.Duration `koanf:"call_log_retention" validate:"required"`
}

// EmailConfig configures notification e-mail delivery through Resend.
type EmailConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	From         string `koanf:"from" validate:"required"`
}

// ReportsConfig configures PDF rendering and downloads.
type ReportsConfig struct {
	// FontPath points to a UTF-8 TTF font; Arabic text needs one.
	FontPath      string        `koanf:"font_path"`
	PresignExpiry time.Duration `koanf:"presign_expiry" validate:"required"`
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	App      AppSettings    `koanf:"app"`
	Database DatabaseConfig `koanf:"database"`
	MinIO    MinIOConfig    `koanf:"minio"`
	Redis    RedisConfig    `koanf:"redis"`
	Auth     AuthConfig     `koanf:"auth"`
	Wathq    WathqConfig    `koanf:"wathq"`
	Jobs     JobsConfig     `koanf:"jobs"`
	Email    EmailConfig    `koanf:"email"`
	Reports  ReportsConfig  `koanf:"reports"`
}

// Location resolves App.Timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Defaults returns the configuration used when no environment overrides exist.
// Only non-sensitive values get defaults.
func Defaults() *AppConfig {
	return &AppConfig{
		App: AppSettings{
			Env:      "development",
			Port:     "8080",
			Timezone: "Asia/Riyadh",
			LogLevel: "info",
		},
		Database: DatabaseConfig{
			Port:               "5432",
			SSLMode:            "disable",
			MaxOpenConns:       10,
			MaxIdleConns:       5,
			ConnMaxLifetimeSec: 300,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Auth: AuthConfig{
			Issuer:      "wathq-services",
			AccessTTL:   15 * time.Minute,
			RefreshTTL:  7 * 24 * time.Hour,
			MFATokenTTL: 5 * time.Minute,
			TOTPIssuer:  "Wathq Services",
		},
		Wathq: WathqConfig{
			BaseURL:  "https://api.wathq.sa",
			Timeout:  15 * time.Second,
			CacheTTL: 24 * time.Hour,
		},
		Jobs: JobsConfig{
			Concurrency:      5,
			CachePurgeCron:   "@every 1h",
			CallLogPurgeCron: "0 3 * * *",
			CallLogRetention: 90 * 24 * time.Hour,
		},
		Email:   EmailConfig{From: "Wathq Services <no-reply@wathq.local>"},
		Reports: ReportsConfig{PresignExpiry: 15 * time.Minute},
	}
}

// Load reads configuration from environment variables on top of Defaults and validates the result.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
func Load() (*AppConfig, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}
