package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	APIBaseURL  string
	HTTPTimeout time.Duration

	PortalPort      string
	PortalRateLimit float64
	PortalRateBurst int

	IdleTimeout   time.Duration
	WarningWindow time.Duration

	SessionStore    string
	SessionFile     string
	RedisAddr       string
	RedisSessionKey string

	LogLevel string
}

// Load reads configuration from the environment after merging an optional
// .env file from the working directory. Variables already set win over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL:      strings.TrimRight(getEnv("LEAVE_API_URL", "http://localhost:8080/api"), "/"),
		PortalPort:      getEnv("PORTAL_PORT", "3000"),
		SessionStore:    strings.ToLower(getEnv("SESSION_STORE", StoreFile)),
		SessionFile:     os.Getenv("SESSION_FILE"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisSessionKey: getEnv("REDIS_SESSION_KEY", "leave-portal:session"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	idleMinutes, err := getInt("IDLE_TIMEOUT_MINUTES", 30)
	if err != nil {
		return Config{}, err
	}
	if idleMinutes < 1 {
		return Config{}, fmt.Errorf("IDLE_TIMEOUT_MINUTES must be at least 1, got %d", idleMinutes)
	}
	cfg.IdleTimeout = time.Duration(idleMinutes) * time.Minute

	warnSeconds, err := getInt("SESSION_WARNING_SECONDS", 30)
	if err != nil {
		return Config{}, err
	}
	cfg.WarningWindow = time.Duration(warnSeconds) * time.Second
	if cfg.WarningWindow < 0 || cfg.WarningWindow >= cfg.IdleTimeout {
		return Config{}, fmt.Errorf("SESSION_WARNING_SECONDS must be between 0 and the idle timeout")
	}

	timeoutSeconds, err := getInt("HTTP_TIMEOUT_SECONDS", 15)
	if err != nil {
		return Config{}, err
	}
	cfg.HTTPTimeout = time.Duration(timeoutSeconds) * time.Second

	if cfg.PortalRateLimit, err = getFloat("PORTAL_RATE_LIMIT", 20); err != nil {
		return Config{}, err
	}
	if cfg.PortalRateBurst, err = getInt("PORTAL_RATE_BURST", 40); err != nil {
		return Config{}, err
	}

	switch cfg.SessionStore {
	case StoreFile:
		if cfg.SessionFile == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return Config{}, fmt.Errorf("find home directory: %w", err)
			}
			cfg.SessionFile = filepath.Join(home, ".leave-portal", "session.json")
		}
	case StoreRedis, StoreMemory:
	default:
		return Config{}, fmt.Errorf("unknown SESSION_STORE %q (want file, redis or memory)", cfg.SessionStore)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
