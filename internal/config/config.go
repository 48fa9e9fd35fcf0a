package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Logging  LoggingConfig
	Points   PointsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Environment     string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

// DatabaseConfig holds Postgres connection settings
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	ConnectTimeout     time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
	MaxConnectRetries  int
}

// CacheConfig holds cache backend settings
type CacheConfig struct {
	Provider       string // "memory" or "redis"
	RedisURL       string
	KeyPrefix      string
	LeaderboardTTL time.Duration
	StatsTTL       time.Duration
}

// AuthConfig holds token verification settings. Session issuance lives in the
// identity service; this service only verifies bearer tokens.
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// PointsConfig holds points-engine tunables
type PointsConfig struct {
	DedupWindow       time.Duration // one-shot duplicate suppression window
	AwardTimeout      time.Duration // bound on the atomic award write
	RankQueueSize     int           // buffered rank-recompute queue
	RecomputeInterval time.Duration // periodic full-leaderboard recompute
}

// Load reads configuration from the environment (and .env in development).
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		// Missing .env is fine; the environment may already be populated.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "9000"),
			Environment:     env,
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			GracefulTimeout: getDurationEnv("SERVER_GRACEFUL_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:                os.Getenv("DATABASE_URL"),
			MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
			SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
			MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "migrations"),
			MaxConnectRetries:  getIntEnv("DB_MAX_CONNECT_RETRIES", 5),
		},
		Cache: CacheConfig{
			Provider:       getEnv("CACHE_PROVIDER", defaultCacheProvider()),
			RedisURL:       getEnv("REDIS_URL", ""),
			KeyPrefix:      getEnv("CACHE_KEY_PREFIX", "opphub:"),
			LeaderboardTTL: getDurationEnv("CACHE_LEADERBOARD_TTL", 30*time.Second),
			StatsTTL:       getDurationEnv("CACHE_STATS_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			JWTIssuer: getEnv("JWT_ISSUER", "opphub"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
			Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
		},
		Points: PointsConfig{
			DedupWindow:       getDurationEnv("POINTS_DEDUP_WINDOW", 24*time.Hour),
			AwardTimeout:      getDurationEnv("POINTS_AWARD_TIMEOUT", 5*time.Second),
			RankQueueSize:     getIntEnv("POINTS_RANK_QUEUE_SIZE", 1024),
			RecomputeInterval: getDurationEnv("POINTS_RECOMPUTE_INTERVAL", 15*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS cannot be greater than DB_MAX_OPEN_CONNS")
	}
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.Cache.Provider == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required when CACHE_PROVIDER=redis")
	}
	if c.Points.DedupWindow <= 0 {
		return fmt.Errorf("POINTS_DEDUP_WINDOW must be positive")
	}
	if c.Points.AwardTimeout <= 0 {
		return fmt.Errorf("POINTS_AWARD_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Helper functions

func defaultCacheProvider() string {
	if os.Getenv("REDIS_URL") != "" {
		return "redis"
	}
	return "memory"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
