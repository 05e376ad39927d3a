package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"fightpool/auth"
	"fightpool/bot"
	"fightpool/cache"
	"fightpool/config"
	"fightpool/custodian"
	"fightpool/database"
	"fightpool/events"
	"fightpool/repository"
	"fightpool/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting fight pool bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize the external custody client
	custody := custodian.New(cfg.CustodianURL)

	// Initialize the access oracle and guard
	oracle := auth.NewStaticOracle(cfg)
	guard := service.NewAccessGuard(oracle)

	// Round and betting operations share one lock so pool state changes
	// are strictly serialized
	roundLock := service.NewRoundLock()

	// Initialize services
	log.Println("Initializing services...")
	roundService := service.NewRoundService(uowFactory, guard, custody, roundLock, cfg)
	bettingService := service.NewBettingService(uowFactory, custody, roundLock, cfg)
	treasuryService := service.NewTreasuryService(guard, custody, cfg)
	log.Println("Services initialized successfully")

	// Initialize the round cache when redis is configured
	var roundCache *cache.RoundCache
	if cfg.RedisAddr != "" {
		log.Println("Connecting to redis...")
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()

		roundCache = cache.NewRoundCache(rdb)
		roundCache.SubscribeInvalidation(eventBus)
		log.Println("Round cache initialized successfully")
	}

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, roundService, bettingService, treasuryService, roundCache, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}
