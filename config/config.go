package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"drawhouse/database"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP API configuration
	ListenAddr string

	// Randomness beacon configuration
	BeaconURL string // Base URL of the randomness beacon service

	// Draw timing configuration
	CommitSlackSlots  int64         // Max slots a seed slot may lag the chain tip at commit
	RevealWindowSlots int64         // Max slots after the seed slot where a reveal is accepted
	CancelTimeout     time.Duration // Minimum age of a commit before it can be cancelled

	// Scheduler configuration
	DrawSchedule string // Cron expression for automatic draw commits
	PollInterval time.Duration

	// Games enabled on this instance (comma-separated)
	Games []string

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// API
		ListenAddr: getEnvWithDefault("LISTEN_ADDR", ":8080"),

		// Beacon
		BeaconURL: getEnvWithDefault("BEACON_URL", "http://beacon:9050"),

		// Draw timings with defaults
		CommitSlackSlots:  16,
		RevealWindowSlots: 64,
		CancelTimeout:     10 * time.Minute,

		// Scheduler
		DrawSchedule: getEnvWithDefault("DRAW_SCHEDULE", "0 20 * * *"),
		PollInterval: 15 * time.Second,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if slack := os.Getenv("COMMIT_SLACK_SLOTS"); slack != "" {
		if parsed, err := strconv.ParseInt(slack, 10, 64); err == nil {
			config.CommitSlackSlots = parsed
		}
	}
	if window := os.Getenv("REVEAL_WINDOW_SLOTS"); window != "" {
		if parsed, err := strconv.ParseInt(window, 10, 64); err == nil {
			config.RevealWindowSlots = parsed
		}
	}
	if timeout := os.Getenv("CANCEL_TIMEOUT"); timeout != "" {
		if parsed, err := time.ParseDuration(timeout); err == nil {
			config.CancelTimeout = parsed
		}
	}
	if interval := os.Getenv("POLL_INTERVAL"); interval != "" {
		if parsed, err := time.ParseDuration(interval); err == nil {
			config.PollInterval = parsed
		}
	}

	// Parse enabled games
	gameList := getEnvWithDefault("GAMES", "classic,express")
	for _, game := range strings.Split(gameList, ",") {
		game = strings.TrimSpace(game)
		if game != "" {
			config.Games = append(config.Games, game)
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:       "test",
		ListenAddr:        ":0",
		CommitSlackSlots:  16,
		RevealWindowSlots: 64,
		CancelTimeout:     10 * time.Minute,
		PollInterval:      15 * time.Second,
		Games:             []string{"classic", "express"},
	}
}
