package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Telegram configuration
	BotToken string

	// Database configuration
	DatabaseURL string

	// OCR configuration
	OCRAPIKey string

	// Admin Telegram IDs; the first one receives operator notifications
	AdminIDs []int64

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

// load loads configuration from the environment, with .env as a fallback
func load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		BotToken:    os.Getenv("BOT_TOKEN"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		OCRAPIKey:   os.Getenv("OCR_API_KEY"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Parse admin Telegram IDs
	if adminIDs := os.Getenv("ADMIN_IDS"); adminIDs != "" {
		for _, idStr := range strings.Split(adminIDs, ",") {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				config.AdminIDs = append(config.AdminIDs, id)
			}
		}
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.BotToken == "" {
			return nil, fmt.Errorf("BOT_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// IsAdmin reports whether the Telegram ID belongs to a configured admin.
func (c *Config) IsAdmin(telegramID int64) bool {
	for _, id := range c.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}

// OperatorID returns the primary admin, or 0 when none is configured.
func (c *Config) OperatorID() int64 {
	if len(c.AdminIDs) == 0 {
		return 0
	}
	return c.AdminIDs[0]
}
