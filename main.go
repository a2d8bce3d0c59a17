package main

import (
	"context"
	"time"

	"github.com/VarnikaKalani/anagram/config"
	"github.com/VarnikaKalani/anagram/handlers"
	"github.com/VarnikaKalani/anagram/middleware"
	"github.com/VarnikaKalani/anagram/models"
	"github.com/VarnikaKalani/anagram/routes"
	"github.com/VarnikaKalani/anagram/services"
	"github.com/VarnikaKalani/anagram/words"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := config.NewLogger(cfg)

	// Load the dictionary
	if err := words.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	fullCount, commonCount := words.Stats()
	log.Info().Int("full", fullCount).Int("common", commonCount).Msg("dictionary loaded")

	// Initialize match history database (optional)
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	if db != nil {
		if err := db.AutoMigrate(&models.MatchRecord{}, &models.MatchPlayer{}); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	} else {
		log.Info().Msg("match history disabled, no DB_HOST configured")
	}

	// Room snapshot store: Redis when configured, in-memory otherwise
	var store services.RoomStore
	if redisClient := config.InitRedis(cfg); redisClient != nil {
		store = services.NewRedisRoomStore(redisClient, cfg.RoomTTL)
		log.Info().Str("addr", cfg.RedisHost+":"+cfg.RedisPort).Msg("using redis room store")
	} else {
		store = services.NewMemoryRoomStore()
		log.Info().Msg("using in-memory room store")
	}

	// Initialize services
	lexicon := services.NewLexicon(words.Full(), words.Common())
	generator := services.NewGenerator(lexicon, time.Now().UnixNano(), log)
	registry := services.NewRegistry(store, log)
	sessions := services.NewSessionService(cfg.JWTSecret, cfg.SessionTTL)
	history := services.NewHistoryService(db, log)

	engineOpts := services.EngineOptions{
		RoundDuration:   cfg.RoundDuration,
		TickInterval:    cfg.TickInterval,
		GraceWindow:     cfg.GraceWindow,
		RateLimitMax:    cfg.RateLimitMax,
		RateLimitWindow: cfg.RateLimitWindow,
	}
	rooms := services.NewRoomService(registry, store, generator, history, engineOpts, log)

	// Initialize WebSocket hub
	hub := services.NewHub(rooms, log)
	rooms.SetNotifier(hub)
	go hub.Run()

	// Garbage-collect abandoned rooms
	registry.StartGC(context.Background(), cfg.GCInterval, cfg.RoomTTL)

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(rooms, sessions, log)
	historyHandler := handlers.NewHistoryHandler(history)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, roomHandler, historyHandler, hub, rooms, sessions, log)

	// Start server
	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
