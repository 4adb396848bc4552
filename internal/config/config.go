package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultPort          = "8080"
	defaultAccessTTL     = "15m"
	defaultRefreshTTL    = "240h"
	defaultAccessSecret  = "change-me-access-secret"
	defaultRefreshSecret = "change-me-refresh-secret"
	defaultCookieSecure  = "false"
	defaultSameSite      = "Lax"
)

// Config holds everything read from the environment. Secrets and expiries are
// injected into the token issuer and session manager at construction; nothing
// reads the environment after startup.
type Config struct {
	AppEnv string
	Port   string

	DatabaseURL string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	CookieSecure   bool
	CookieSameSite string
	CookieDomain   string

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)
	cfg.Port = getEnv("PORT", defaultPort)

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg.AccessTokenSecret = strings.TrimSpace(getEnv("ACCESS_TOKEN_SECRET", defaultAccessSecret))
	cfg.RefreshTokenSecret = strings.TrimSpace(getEnv("REFRESH_TOKEN_SECRET", defaultRefreshSecret))

	var err error
	cfg.AccessTokenTTL, err = parseDurationEnv("ACCESS_TOKEN_TTL", defaultAccessTTL)
	if err != nil {
		return nil, err
	}
	cfg.RefreshTokenTTL, err = parseDurationEnv("REFRESH_TOKEN_TTL", defaultRefreshTTL)
	if err != nil {
		return nil, err
	}

	cfg.CookieSecure = parseBoolEnv("COOKIE_SECURE", defaultCookieSecure)
	cfg.CookieSameSite = strings.TrimSpace(getEnv("COOKIE_SAMESITE", defaultSameSite))
	cfg.CookieDomain = strings.TrimSpace(os.Getenv("COOKIE_DOMAIN"))

	cfg.S3Endpoint = strings.TrimSpace(os.Getenv("S3_ENDPOINT"))
	cfg.S3Region = getEnv("S3_REGION", "us-east-1")
	cfg.S3Bucket = strings.TrimSpace(os.Getenv("S3_BUCKET"))
	cfg.S3AccessKey = strings.TrimSpace(os.Getenv("S3_ACCESS_KEY"))
	cfg.S3SecretKey = strings.TrimSpace(os.Getenv("S3_SECRET_KEY"))
	cfg.S3PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")), "/")

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.AccessTokenTTL <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be > 0")
	}
	if cfg.RefreshTokenTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_TTL must be > 0")
	}
	if cfg.AccessTokenTTL >= cfg.RefreshTokenTTL {
		return fmt.Errorf("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	sameSite := strings.ToLower(cfg.CookieSameSite)
	if sameSite != "lax" && sameSite != "none" && sameSite != "strict" {
		return fmt.Errorf("COOKIE_SAMESITE must be one of: Lax, None, Strict")
	}
	if sameSite == "none" && !cfg.CookieSecure {
		return fmt.Errorf("COOKIE_SECURE must be true when COOKIE_SAMESITE=None")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.AccessTokenSecret, defaultAccessSecret) {
			return fmt.Errorf("in prod ACCESS_TOKEN_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.RefreshTokenSecret, defaultRefreshSecret) {
			return fmt.Errorf("in prod REFRESH_TOKEN_SECRET must be set and not default")
		}
		if !cfg.CookieSecure {
			return fmt.Errorf("in prod COOKIE_SECURE must be true")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
