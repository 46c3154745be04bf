package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=cargo port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string `mapstructure:"HTTP_PORT"`
	DatabaseDSN string `mapstructure:"DATABASE_DSN"`
	CORSOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// UploadDir is the local root served under /uploads.
	UploadDir   string `mapstructure:"UPLOAD_DIR"`
	MaxUploadMB int    `mapstructure:"MAX_UPLOAD_MB"`

	// JWTSecret guards the price and bonus management routes when set.
	JWTSecret string `mapstructure:"JWT_SECRET"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	LogFile   string `mapstructure:"LOG_FILE"`
}

var defaults = map[string]any{
	"HTTP_PORT":            "8080",
	"DATABASE_DSN":         defaultDSN,
	"CORS_ALLOWED_ORIGINS": "http://localhost:5173",
	"UPLOAD_DIR":           "./uploads",
	"MAX_UPLOAD_MB":        20,
	"JWT_SECRET":           "",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"CACHE_TTL":            "5m",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "console",
	"LOG_FILE":             "",
}

// Load reads .env (if present) and the process environment.
// Warnings about development defaults are returned rather than logged,
// since the logger itself is configured from the result.
func Load() (*Config, []string, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, []string, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for key, val := range defaults {
		v.SetDefault(key, val)
		if err := v.BindEnv(key); err != nil {
			return nil, nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var warnings []string
	if cfg.DatabaseDSN == defaultDSN {
		warnings = append(warnings, "DATABASE_DSN uses the development default, set your own Postgres DSN in production")
	}
	if cfg.CORSOrigins == defaults["CORS_ALLOWED_ORIGINS"] {
		warnings = append(warnings, "CORS_ALLOWED_ORIGINS uses the development default")
	}
	if cfg.JWTSecret == "" {
		warnings = append(warnings, "JWT_SECRET is empty, price and bonus routes are not guarded")
	}

	return &cfg, warnings, nil
}

func validate(cfg *Config) error {
	if cfg.HTTPPort == "" {
		return fmt.Errorf("HTTP_PORT is required")
	}
	if cfg.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if cfg.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	return nil
}

// CORSOriginList splits the comma separated origin list.
func (c *Config) CORSOriginList() []string {
	origins := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
