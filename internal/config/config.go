package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abrezinsky/triviarooms/internal/models"
)

type Config struct {
	// Server
	Port        int
	BaseURL     string
	AdminSecret string
	LogLevel    string
	LogFormat   string

	// Storage
	DBPath string

	// Question cache. An empty RedisAddr selects the in-memory cache.
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	QuestionCacheTTL time.Duration

	// Retention. A zero RoomRetention disables the janitor.
	RoomRetention   time.Duration
	JanitorInterval time.Duration

	// Room defaults
	DefaultTiming models.Timing
}

// Load reads the configuration from TRIVIA_* environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("TRIVIA_PORT", 8080),
		BaseURL:     strings.TrimSuffix(getEnv("TRIVIA_BASE_URL", ""), "/"),
		AdminSecret: getEnv("TRIVIA_ADMIN_SECRET", ""),
		LogLevel:    getEnv("TRIVIA_LOG_LEVEL", "info"),
		LogFormat:   getEnv("TRIVIA_LOG_FORMAT", "text"),

		DBPath: getEnv("TRIVIA_DB_PATH", "trivia.db"),

		RedisAddr:        getEnv("TRIVIA_REDIS_ADDR", ""),
		RedisPassword:    getEnv("TRIVIA_REDIS_PASSWORD", ""),
		RedisDB:          getEnvInt("TRIVIA_REDIS_DB", 0),
		QuestionCacheTTL: getEnvDuration("TRIVIA_QUESTION_CACHE_TTL", 10*time.Minute),

		RoomRetention:   getEnvDuration("TRIVIA_ROOM_RETENTION", 24*time.Hour),
		JanitorInterval: getEnvDuration("TRIVIA_JANITOR_INTERVAL", 15*time.Minute),

		DefaultTiming: models.Timing{
			CountdownSeconds:   getEnvInt("TRIVIA_DEFAULT_COUNTDOWN_SECONDS", 5),
			AnswerSeconds:      getEnvInt("TRIVIA_DEFAULT_ANSWER_SECONDS", 20),
			RevealDelaySeconds: getEnvInt("TRIVIA_DEFAULT_REVEAL_DELAY_SECONDS", 1),
			RevealSeconds:      getEnvInt("TRIVIA_DEFAULT_REVEAL_SECONDS", 8),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("TRIVIA_PORT must be between 1 and 65535")
	}
	if c.DBPath == "" {
		return fmt.Errorf("TRIVIA_DB_PATH is required")
	}
	if c.BaseURL != "" && !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("TRIVIA_BASE_URL must start with http:// or https://")
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("TRIVIA_REDIS_DB must not be negative")
	}
	if c.QuestionCacheTTL < 0 {
		return fmt.Errorf("TRIVIA_QUESTION_CACHE_TTL must not be negative")
	}
	if c.RoomRetention < 0 {
		return fmt.Errorf("TRIVIA_ROOM_RETENTION must not be negative")
	}
	if c.RoomRetention > 0 && c.JanitorInterval <= 0 {
		return fmt.Errorf("TRIVIA_JANITOR_INTERVAL must be positive when retention is enabled")
	}

	t := c.DefaultTiming
	if t.AnswerSeconds < 1 || t.AnswerSeconds > 3600 {
		return fmt.Errorf("TRIVIA_DEFAULT_ANSWER_SECONDS must be between 1 and 3600")
	}
	for name, v := range map[string]int{
		"TRIVIA_DEFAULT_COUNTDOWN_SECONDS":    t.CountdownSeconds,
		"TRIVIA_DEFAULT_REVEAL_DELAY_SECONDS": t.RevealDelaySeconds,
		"TRIVIA_DEFAULT_REVEAL_SECONDS":       t.RevealSeconds,
	} {
		if v < 0 || v > 3600 {
			return fmt.Errorf("%s must be between 0 and 3600", name)
		}
	}
	return nil
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("90s", "2h") or a bare number of seconds
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
