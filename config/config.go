package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	ListenAddr string
	OpsAddr    string // /metrics and /healthz

	// Database configuration
	DatabaseURL    string
	DBMaxConns     int32
	DBMinConns     int32
	DBConnLifetime time.Duration

	// Auth configuration
	JWTSecret      string
	TokenTTL       time.Duration
	AllowedOrigins []string

	// Betting configuration
	StartingBalance decimal.Decimal
	VotingWindow    time.Duration // quorum window opened by the first vote
	ReputationBonus int           // awarded per correct settlement vote
	SweepInterval   time.Duration // settlement sweeper tick

	// Rate limiting (requests per second per client, with burst)
	RateLimit      float64
	RateLimitBurst int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Best effort; production configs come from real env vars
	_ = godotenv.Load()

	config := &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		OpsAddr:     getEnv("OPS_ADDR", ":9090"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		DBMaxConns:     10,
		DBConnLifetime: time.Hour,

		TokenTTL:        24 * time.Hour,
		StartingBalance: decimal.NewFromInt(1000),
		VotingWindow:    24 * time.Hour,
		ReputationBonus: 10,
		SweepInterval:   time.Minute,
		RateLimit:       10,
		RateLimitBurst:  30,

		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = []string{origins}
	} else {
		config.AllowedOrigins = []string{"*"}
	}

	if maxConns := os.Getenv("DB_MAX_CONNS"); maxConns != "" {
		if parsed, err := strconv.ParseInt(maxConns, 10, 32); err == nil {
			config.DBMaxConns = int32(parsed)
		}
	}
	if minConns := os.Getenv("DB_MIN_CONNS"); minConns != "" {
		if parsed, err := strconv.ParseInt(minConns, 10, 32); err == nil {
			config.DBMinConns = int32(parsed)
		}
	}
	if lifetime := os.Getenv("DB_CONN_LIFETIME"); lifetime != "" {
		if parsed, err := time.ParseDuration(lifetime); err == nil {
			config.DBConnLifetime = parsed
		}
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			config.TokenTTL = parsed
		}
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsed, err := decimal.NewFromString(balance); err == nil {
			config.StartingBalance = parsed
		}
	}
	if window := os.Getenv("VOTING_WINDOW"); window != "" {
		if parsed, err := time.ParseDuration(window); err == nil {
			config.VotingWindow = parsed
		}
	}
	if bonus := os.Getenv("REPUTATION_BONUS"); bonus != "" {
		if parsed, err := strconv.Atoi(bonus); err == nil {
			config.ReputationBonus = parsed
		}
	}
	if interval := os.Getenv("SWEEP_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil {
			config.SweepInterval = parsed
		}
	}
	if limit := os.Getenv("RATE_LIMIT"); limit != "" {
		if parsed, err := strconv.ParseFloat(limit, 64); err == nil {
			config.RateLimit = parsed
		}
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	}

	return config, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
