package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"olexparser/internal/protocol/segment"
	"olexparser/internal/protocol/turdata"
)

type Config struct {
	Host      string
	Port      string
	LogLevel  string
	LogFormat string
	LogFile   string

	// Parsing
	Location     *time.Location
	RecordLayout segment.Layout
	Tolerance    float64
	Workers      int

	JWTSecret string

	RedisURL string
	CacheTTL time.Duration

	NATSURL           string
	NATSSubjectPrefix string

	MetricsAddr string
}

// LoadConfig reads .env (if present) and the environment. Malformed values
// are errors rather than silently replaced by defaults.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host:              getEnv("HOST", "0.0.0.0"),
		Port:              getEnv("PORT", "8000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		LogFile:           getEnv("LOG_FILE", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		NATSURL:           getEnv("NATS_URL", ""),
		NATSSubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "olex.cases"),
		MetricsAddr:       getEnv("METRICS_ADDR", ""),
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}

	tz := getEnv("OLEX_TZ", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid OLEX_TZ: %v", err)
	}
	cfg.Location = loc

	cfg.RecordLayout = segment.DefaultLayout
	if v := getEnv("OLEX_RECORD_LAYOUT", ""); v != "" {
		layout, err := segment.ParseLayout(v)
		if err != nil {
			return nil, fmt.Errorf("invalid OLEX_RECORD_LAYOUT: %w", err)
		}
		cfg.RecordLayout = layout
	}

	cfg.Tolerance = turdata.DefaultTolerance
	if v := getEnv("OLEX_TOLERANCE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("invalid OLEX_TOLERANCE: %q", v)
		}
		cfg.Tolerance = f
	}

	cfg.Workers = 4
	if v := getEnv("OLEX_WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid OLEX_WORKERS: %q", v)
		}
		cfg.Workers = n
	}

	cfg.CacheTTL = 10 * time.Minute
	if v := getEnv("CACHE_TTL_SECONDS", ""); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return nil, fmt.Errorf("invalid CACHE_TTL_SECONDS: %q", v)
		}
		cfg.CacheTTL = time.Duration(sec) * time.Second
	}

	return cfg, nil
}

// Addr is the HTTP listen address
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}
