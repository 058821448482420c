package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"contractguard-web/internal/shared/telemetry"
)

const (
	DefaultAPIBase  = "http://localhost:8000"
	DefaultCurrency = "INR"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	DatabaseURL     string

	// APIBase is the audit service consumed by the dashboard and upload flow.
	APIBase         string
	APITimeout      time.Duration
	JWTSecret       string
	DefaultCurrency string
	DateOrder       string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	PollInterval    time.Duration
	PollMaxInterval time.Duration
	PollMaxAttempts int
	PollTimeout     time.Duration
	RedirectDelay   time.Duration

	ThemeFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	apiBase := getEnv("VITE_API_BASE", getEnv("API_BASE", DefaultAPIBase))

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,
		DatabaseURL:     dbURL,
		APIBase:         strings.TrimRight(apiBase, "/"),
		APITimeout:      getDuration("API_TIMEOUT", 60*time.Second),
		JWTSecret:       getEnv("SUPABASE_JWT_SECRET", ""),
		DefaultCurrency: strings.ToUpper(getEnv("DEFAULT_CURRENCY", DefaultCurrency)),
		DateOrder:       normalizeDateOrder(getEnv("INVOICE_DATE_ORDER", "month_first")),
		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", "contracts/"),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),
		PollInterval:    getDuration("POLL_INTERVAL", 2500*time.Millisecond),
		PollMaxInterval: getDuration("POLL_MAX_INTERVAL", 15*time.Second),
		PollMaxAttempts: getInt("POLL_MAX_ATTEMPTS", 240),
		PollTimeout:     getDuration("POLL_TIMEOUT", 30*time.Minute),
		RedirectDelay:   getDuration("REDIRECT_DELAY", 1500*time.Millisecond),
		ThemeFile:       getEnv("THEME_FILE", defaultThemeFile()),
	}
}

// IsDevLike reports whether the environment tolerates missing infrastructure.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func getDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("config.invalid_duration", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeDateOrder(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day_first", "dmy", "day":
		return "day_first"
	default:
		return "month_first"
	}
}

func defaultThemeFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".contractguard-theme"
	}
	return filepath.Join(dir, "contractguard", "theme")
}
