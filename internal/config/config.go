package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "websap-dev-secret-change-me"

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment    string
	HTTPPort       string
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	FrontendDir    string
	CORSOrigins    []string
	TrustedProxies []string // CIDRs or IPs allowed to set X-Forwarded-For; empty trusts none
	LogDir         string
	Debug          bool

	JWTSecret     string
	JWTTTL        time.Duration
	DevAuthBypass bool

	Security SecurityConfig

	AlertURLs           []string
	SuspiciousRetention time.Duration
	CleanupSchedule     string
}

// SecurityConfig tunes the request gatekeeper and the rate limiters.
type SecurityConfig struct {
	StoreTimeout  time.Duration
	FailClosed    bool
	RateLimit     int // requests per minute per IP, 0 disables
	AuthRateLimit int // login attempts per 15 minutes per IP, 0 disables
}

// IsProduction reports whether the server runs with production hardening.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:    getEnv("WEBSAP_ENV", "development"),
		HTTPPort:       getEnv("WEBSAP_HTTP_PORT", "3000"),
		DatabaseDriver: strings.ToLower(getEnv("WEBSAP_DB_DRIVER", "sqlite")),
		DatabasePath:   getEnv("WEBSAP_DB_PATH", filepath.Join("data", "websap.db")),
		DatabaseDSN:    getEnv("WEBSAP_DB_DSN", ""),
		FrontendDir:    getEnv("WEBSAP_FRONTEND_DIR", ""),
		CORSOrigins:    splitList(getEnv("WEBSAP_CORS_ORIGINS", "http://localhost:8080,http://localhost:5173")),
		TrustedProxies: splitList(getEnv("WEBSAP_TRUSTED_PROXIES", "")),
		LogDir:         getEnv("WEBSAP_LOG_DIR", filepath.Join("data", "logs")),
		Debug:          getBool("WEBSAP_DEBUG", false),
		JWTSecret:      getEnv("WEBSAP_JWT_SECRET", DefaultJWTSecret),
		JWTTTL:         getDuration("WEBSAP_JWT_TTL", 24*time.Hour),
		DevAuthBypass:  getBool("WEBSAP_DEV_AUTH_BYPASS", false),
		Security: SecurityConfig{
			StoreTimeout:  getDuration("WEBSAP_STORE_TIMEOUT", 2*time.Second),
			FailClosed:    getBool("WEBSAP_FAIL_CLOSED", false),
			RateLimit:     getInt("WEBSAP_RATE_LIMIT", 100),
			AuthRateLimit: getInt("WEBSAP_AUTH_RATE_LIMIT", 10),
		},
		AlertURLs:           splitList(getEnv("WEBSAP_ALERT_URLS", "")),
		SuspiciousRetention: time.Duration(getInt("WEBSAP_SUSPICIOUS_RETENTION", 90)) * 24 * time.Hour,
		CleanupSchedule:     getEnv("WEBSAP_CLEANUP_SCHEDULE", "0 4 * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseDriver == "sqlite" || cfg.DatabaseDSN == "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
			return Config{}, fmt.Errorf("ensure data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate rejects combinations that must never reach a running server.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}
	if c.DatabaseDriver == "mysql" && c.DatabaseDSN == "" {
		return errors.New("WEBSAP_DB_DSN is required when WEBSAP_DB_DRIVER=mysql")
	}
	if c.JWTTTL <= 0 {
		return errors.New("WEBSAP_JWT_TTL must be positive")
	}
	if c.Security.StoreTimeout <= 0 {
		return errors.New("WEBSAP_STORE_TIMEOUT must be positive")
	}
	if c.IsProduction() {
		if c.DevAuthBypass {
			return errors.New("WEBSAP_DEV_AUTH_BYPASS cannot be enabled in production")
		}
		if c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret {
			return errors.New("WEBSAP_JWT_SECRET must be set in production")
		}
	}
	if c.DevAuthBypass && c.Environment != "development" {
		return fmt.Errorf("WEBSAP_DEV_AUTH_BYPASS requires development environment, got %q", c.Environment)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
