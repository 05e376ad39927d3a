package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL string

	// External collaborators
	CustodianURL string
	RedisAddr    string

	// Pool configuration
	OwnerDiscordID  int64   // principal that always passes the access guard
	AdminDiscordIDs []int64 // principals granted the administrative role
	BettingWindow   time.Duration
	AmountScale     int64 // external units to custodian base units

	// Environment
	Environment string // "development" or "production"
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
	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		CustodianURL: os.Getenv("CUSTODIAN_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),

		// Pool settings with defaults
		BettingWindow: 600 * time.Second,
		AmountScale:   1_000_000,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if window := os.Getenv("BETTING_WINDOW_SECONDS"); window != "" {
		if parsed, err := strconv.ParseInt(window, 10, 64); err == nil && parsed > 0 {
			config.BettingWindow = time.Duration(parsed) * time.Second
		}
	}
	if scale := os.Getenv("AMOUNT_SCALE"); scale != "" {
		if parsed, err := strconv.ParseInt(scale, 10, 64); err == nil && parsed > 0 {
			config.AmountScale = parsed
		}
	}

	if owner := os.Getenv("OWNER_DISCORD_ID"); owner != "" {
		if id, err := strconv.ParseInt(owner, 10, 64); err == nil {
			config.OwnerDiscordID = id
		}
	}

	// Parse admin Discord IDs
	if adminIDs := os.Getenv("ADMIN_DISCORD_IDS"); adminIDs != "" {
		idStrings := strings.Split(adminIDs, ",")
		for _, idStr := range idStrings {
			idStr = strings.TrimSpace(idStr)
			if idStr != "" {
				if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
					config.AdminDiscordIDs = append(config.AdminDiscordIDs, id)
				}
			}
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.CustodianURL == "" {
			return nil, fmt.Errorf("CUSTODIAN_URL is required")
		}
		if config.OwnerDiscordID == 0 {
			return nil, fmt.Errorf("OWNER_DISCORD_ID is required")
		}
	}

	return config, nil
}
