package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port               string   `toml:"port"`
	DatabaseURL        string   `toml:"database_url"`
	AppEnv             string   `toml:"app_env"`
	BaseURL            string   `toml:"base_url"`
	LogLevel           string   `toml:"log_level"`
	GoogleClientID     string   `toml:"google_client_id"`
	GoogleClientSecret string   `toml:"google_client_secret"`
	GoogleRedirectURL  string   `toml:"google_redirect_url"`
	JWTSecret          string   `toml:"jwt_secret"`
	FrontendURL        string   `toml:"frontend_url"`
	AllowedEmails      []string `toml:"allowed_emails"`
	// TrustProxyHeaders takes the client address and location from
	// X-Forwarded-For / X-Real-IP and edge geo headers. Only enable it
	// behind a proxy that overwrites them.
	TrustProxyHeaders bool `toml:"trust_proxy_headers"`

	Analytics AnalyticsConfig `toml:"analytics"`
}

// AnalyticsConfig tunes view ingestion and the aggregate store.
type AnalyticsConfig struct {
	Store              string        `toml:"store"` // sqlite, redis or memory
	RedisURL           string        `toml:"redis_url"`
	FingerprintSalt    string        `toml:"fingerprint_salt"`
	MaxFingerprints    int           `toml:"max_fingerprints"`
	KeepFingerprints   int           `toml:"keep_fingerprints"`
	MaxDailyEntries    int           `toml:"max_daily_entries"`
	TrackTimeoutMS     int           `toml:"track_timeout_ms"`
	TrackTimeout       time.Duration `toml:"-"`
	MaxUpdateRetries   int           `toml:"max_update_retries"`
	TrackRatePerSecond float64       `toml:"track_rate_per_second"`
	TrackBurst         int           `toml:"track_burst"`
}

func Default() *Config {
	return &Config{
		Port:              "8080",
		DatabaseURL:       "file:db.sqlite",
		AppEnv:            "local",
		BaseURL:           "http://localhost:8080",
		LogLevel:          "info",
		GoogleRedirectURL: "http://localhost:8080/auth/google/callback",
		JWTSecret:         "secret",
		FrontendURL:       "http://localhost:8080/dashboard",
		Analytics: AnalyticsConfig{
			Store:              "sqlite",
			RedisURL:           "redis://localhost:6379/0",
			MaxFingerprints:    10000,
			KeepFingerprints:   5000,
			MaxDailyEntries:    90,
			TrackTimeout:       2 * time.Second,
			MaxUpdateRetries:   8,
			TrackRatePerSecond: 2,
			TrackBurst:         10,
		},
	}
}

// Load builds the configuration from defaults, an optional TOML file named
// by CONFIG_FILE, then environment variables (.env included). Later sources win.
func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			slog.Warn("config file ignored", "path", path, "error", err)
		}
	}
	applyEnv(cfg)
	return cfg
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.Analytics.TrackTimeoutMS > 0 {
		cfg.Analytics.TrackTimeout = time.Duration(cfg.Analytics.TrackTimeoutMS) * time.Millisecond
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.BaseURL = getEnv("BASE_URL", cfg.BaseURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", cfg.GoogleClientID)
	cfg.GoogleClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret)
	cfg.GoogleRedirectURL = getEnv("GOOGLE_REDIRECT_URL", cfg.GoogleRedirectURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	if v, ok := os.LookupEnv("ALLOWED_EMAILS"); ok {
		cfg.AllowedEmails = splitList(v)
	}
	// Vercel's edge always rewrites the forwarding headers.
	if os.Getenv("VERCEL") == "1" {
		cfg.TrustProxyHeaders = true
	}
	cfg.TrustProxyHeaders = getEnvBool("TRUST_PROXY_HEADERS", cfg.TrustProxyHeaders)

	a := &cfg.Analytics
	a.Store = strings.ToLower(getEnv("ANALYTICS_STORE", a.Store))
	a.RedisURL = getEnv("REDIS_URL", a.RedisURL)
	a.FingerprintSalt = getEnv("FINGERPRINT_SALT", a.FingerprintSalt)
	a.MaxFingerprints = getEnvInt("ANALYTICS_MAX_FINGERPRINTS", a.MaxFingerprints)
	a.KeepFingerprints = getEnvInt("ANALYTICS_KEEP_FINGERPRINTS", a.KeepFingerprints)
	a.MaxDailyEntries = getEnvInt("ANALYTICS_MAX_DAILY_ENTRIES", a.MaxDailyEntries)
	a.TrackTimeout = getEnvDuration("ANALYTICS_TRACK_TIMEOUT", a.TrackTimeout)
	a.MaxUpdateRetries = getEnvInt("ANALYTICS_MAX_UPDATE_RETRIES", a.MaxUpdateRetries)
	a.TrackRatePerSecond = getEnvFloat("ANALYTICS_TRACK_RPS", a.TrackRatePerSecond)
	a.TrackBurst = getEnvInt("ANALYTICS_TRACK_BURST", a.TrackBurst)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
