package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Port        string
	BindAddress string

	// Postgres match history. Empty DBHost disables it.
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis room snapshots. Empty RedisHost falls back to the in-memory
	// store.
	RedisHost string
	RedisPort string

	JWTSecret  string
	SessionTTL time.Duration

	// Room engine tunables.
	RoundDuration   time.Duration
	TickInterval    time.Duration
	GraceWindow     time.Duration
	RateLimitMax    int
	RateLimitWindow time.Duration

	// Room retention and garbage collection.
	RoomTTL    time.Duration
	GCInterval time.Duration

	LogLevel  string
	LogPretty bool
}

func Load() *Config {
	// Missing .env is fine; env vars and defaults cover everything.
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		BindAddress: getEnv("BIND_ADDRESS", "localhost"),
		DBHost:      getEnv("DB_HOST", ""),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "anagram"),
		DBPassword:  getEnv("DB_PASSWORD", "anagram123"),
		DBName:      getEnv("DB_NAME", "anagram"),
		RedisHost:   getEnv("REDIS_HOST", ""),
		RedisPort:   getEnv("REDIS_PORT", "6379"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		SessionTTL:  getEnvDuration("SESSION_TTL", 12*time.Hour),

		RoundDuration:   getEnvDuration("ROUND_DURATION", 60*time.Second),
		TickInterval:    getEnvDuration("TICK_INTERVAL", time.Second),
		GraceWindow:     getEnvDuration("GRACE_WINDOW", 15*time.Second),
		RateLimitMax:    getEnvInt("RATE_LIMIT_MAX", 5),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 2*time.Second),

		RoomTTL:    getEnvDuration("ROOM_TTL", 2*time.Hour),
		GCInterval: getEnvDuration("GC_INTERVAL", 5*time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnv("LOG_PRETTY", "") != "",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

// NewLogger builds the process-wide zerolog logger from config.
func NewLogger(cfg *Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var log zerolog.Logger
	if cfg.LogPretty {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

// InitDB opens the Postgres connection for match history, or (nil, nil)
// when history is disabled.
func InitDB(cfg *Config) (*gorm.DB, error) {
	if cfg.DBHost == "" {
		return nil, nil
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// InitRedis opens the Redis client for room snapshots, or nil when the
// in-memory store should be used instead.
func InitRedis(cfg *Config) *redis.Client {
	if cfg.RedisHost == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
	})
}
