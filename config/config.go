package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the API process reads from the environment.
// Nested sections map to underscore-joined variable names, so
// RateLimit.Max is read from RATE_LIMIT_MAX.
type Config struct {
	Port           string        `mapstructure:"port" validate:"required,numeric"`
	MetricsPort    string        `mapstructure:"metrics_port" validate:"omitempty,numeric"`
	DatabaseURL    string        `mapstructure:"database_url" validate:"required"`
	APIVersion     string        `mapstructure:"api_version" validate:"omitempty,alphanum"`
	BackendTimeout time.Duration `mapstructure:"backend_timeout" validate:"gt=0"`
	DebugMode      bool          `mapstructure:"debug_mode"`
	OTLPEndpoint   string        `mapstructure:"otel_exporter_otlp_endpoint"`

	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
	Email     EmailConfig     `mapstructure:"email"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Contact   ContactConfig   `mapstructure:"contact"`
	Spam      SpamConfig      `mapstructure:"spam"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

type CORSConfig struct {
	// AllowedOrigins of ["*"] (or empty) permits every origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Max     int           `mapstructure:"max" validate:"gt=0"`
	Window  time.Duration `mapstructure:"window" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error DEBUG INFO WARN WARNING ERROR"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json console"`
}

// EmailConfig carries the SMTP credentials. An empty User selects the
// log-only mailer.
type EmailConfig struct {
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host" validate:"required,hostname"`
	Port int    `mapstructure:"port" validate:"gt=0,lte=65535"`
}

type ContactConfig struct {
	Recipient        string `mapstructure:"recipient" validate:"omitempty,email"`
	MinMessageLength int    `mapstructure:"min_message_length" validate:"gt=0"`
	MaxMessageLength int    `mapstructure:"max_message_length" validate:"gtfield=MinMessageLength"`
}

// SpamConfig thresholds must be positive; contact.NewDetector reads zero as unset.
type SpamConfig struct {
	MaxLinks      int     `mapstructure:"max_links" validate:"gt=0"`
	MaxCapsLength int     `mapstructure:"max_caps_length" validate:"gt=0"`
	CapsRatio     float64 `mapstructure:"caps_ratio" validate:"gt=0,lte=1"`
}

// AdminConfig enables the contact-message admin routes when JWTSecret is set.
type AdminConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// AuthConfig names the keys the client token store persists under.
type AuthConfig struct {
	TokenKey   string `mapstructure:"token_key" validate:"required"`
	SessionKey string `mapstructure:"session_key" validate:"required"`
}

var defaults = map[string]interface{}{
	"port":                        "3001",
	"metrics_port":                "9090",
	"api_version":                 "v1",
	"backend_timeout":             10 * time.Second,
	"debug_mode":                  false,
	"otel_exporter_otlp_endpoint": "",
	"database_url":                "",
	"cors.allowed_origins":        []string{"*"},
	"rate_limit.enabled":          true,
	"rate_limit.max":              100,
	"rate_limit.window":           15 * time.Minute,
	"log.level":                   "info",
	"log.format":                  "json",
	"email.user":                  "",
	"email.pass":                  "",
	"smtp.host":                   "smtp.gmail.com",
	"smtp.port":                   587,
	"contact.recipient":           "",
	"contact.min_message_length":  10,
	"contact.max_message_length":  5000,
	"spam.max_links":              3,
	"spam.max_caps_length":        50,
	"spam.caps_ratio":             0.3,
	"admin.jwt_secret":            "",
	"auth.token_key":              "cv_api_token",
	"auth.session_key":            "cv_api_session",
}

// Load reads .env (if present) and the process environment into a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AllowsAllOrigins reports whether CORS is left open to every origin.
func (c CORSConfig) AllowsAllOrigins() bool {
	if len(c.AllowedOrigins) == 0 {
		return true
	}
	for _, origin := range c.AllowedOrigins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

// AdminEnabled reports whether the bearer-protected admin routes are mounted.
func (c *Config) AdminEnabled() bool {
	return c.Admin.JWTSecret != ""
}

// MetricsEnabled reports whether the separate metrics listener should start.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsPort != ""
}
