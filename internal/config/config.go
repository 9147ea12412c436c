package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	// Scheduling defaults, applied when a deck carries no override.
	DesiredRetention float64
	MaxCardsPerDay   int
	NewCardsPerDay   int
	ForecastDays     int
	LeechThreshold   int
	DisableFuzz      bool
	// ShuffleSeed drives RANDOM new-card ordering. 0 seeds from the clock.
	ShuffleSeed int64

	// Background planner pool.
	PlannerWorkerCount int
	PlannerQueueSize   int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:prepdeck.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		DesiredRetention:   envFloatOr("DESIRED_RETENTION", 0.9),
		MaxCardsPerDay:     envIntOr("MAX_CARDS_PER_DAY", 200),
		NewCardsPerDay:     envIntOr("NEW_CARDS_PER_DAY", 20),
		ForecastDays:       envIntOr("FORECAST_DAYS", 30),
		LeechThreshold:     envIntOr("LEECH_THRESHOLD", 8),
		DisableFuzz:        envBoolOr("DISABLE_FUZZ", false),
		ShuffleSeed:        envInt64Or("SHUFFLE_SEED", 0),
		PlannerWorkerCount: envIntOr("PLANNER_WORKER_COUNT", 2),
		PlannerQueueSize:   envIntOr("PLANNER_QUEUE_SIZE", 32),
	}
}

// Validate checks the configuration and reports every problem at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.DesiredRetention <= 0 || c.DesiredRetention >= 1 {
		problems = append(problems, fmt.Sprintf("DESIRED_RETENTION %.3f must be in (0, 1)", c.DesiredRetention))
	}
	if c.MaxCardsPerDay < 0 {
		problems = append(problems, "MAX_CARDS_PER_DAY cannot be negative")
	}
	if c.NewCardsPerDay < 0 {
		problems = append(problems, "NEW_CARDS_PER_DAY cannot be negative")
	}
	if c.ForecastDays < 7 || c.ForecastDays > 60 {
		problems = append(problems, fmt.Sprintf("FORECAST_DAYS %d must be between 7 and 60", c.ForecastDays))
	}
	if c.LeechThreshold < 1 {
		problems = append(problems, "LEECH_THRESHOLD must be at least 1")
	}
	if c.PlannerWorkerCount < 1 {
		problems = append(problems, "PLANNER_WORKER_COUNT must be at least 1")
	}
	if c.PlannerQueueSize < 1 {
		problems = append(problems, "PLANNER_QUEUE_SIZE must be at least 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envInt64Or(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %g", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}
