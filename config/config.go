package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Direction DirectionConfig
	Scheduler SchedulerConfig
	Processor ProcessorConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	DebugMode    bool
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
}

// RedisConfig holds the optional Redis fast-path settings.
// An empty Addr disables the Redis layer entirely.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// DirectionConfig holds routing-provider and direction-cache settings.
type DirectionConfig struct {
	GoogleMapsAPIKey string
	CacheTTL         time.Duration
}

// SchedulerConfig holds the scheduling-time defaults (all in seconds in the
// environment, exposed as durations here).
type SchedulerConfig struct {
	BeforePickup     time.Duration
	AfterPickup      time.Duration
	DropoffUnloading time.Duration
	SolverTimeout    time.Duration
}

// ProcessorConfig holds background task processor settings.
type ProcessorConfig struct {
	Interval  time.Duration
	BatchSize int
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// ── Defaults ────────────────────────────────────────
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "620s") // must outlast the solver budget
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "120s")
	viper.SetDefault("DEBUG_MODE", true)

	viper.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGODB_DATABASE_NAME", "scheduler")

	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("GOOGLE_MAPS_API_KEY", "")
	viper.SetDefault("DIRECTION_CACHE_TTL_SECONDS", 3600)

	viper.SetDefault("DEFAULT_BEFORE_PICKUP_TIME", 300)
	viper.SetDefault("DEFAULT_AFTER_PICKUP_TIME", 300)
	viper.SetDefault("DEFAULT_DROPOFF_UNLOADING_TIME", 300)
	viper.SetDefault("SOLVER_TIMEOUT_SECONDS", 600)

	viper.SetDefault("PROCESSOR_INTERVAL", 5000) // milliseconds
	viper.SetDefault("PROCESSOR_BATCH_SIZE", 10)

	// Try to read .env file. If it doesn't exist (e.g., inside Docker),
	// env vars injected by the runtime are used instead.
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Host:         viper.GetString("SERVER_HOST"),
			Port:         viper.GetInt("PORT"),
			ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  viper.GetDuration("SERVER_IDLE_TIMEOUT"),
			DebugMode:    viper.GetBool("DEBUG_MODE"),
		},
		Mongo: MongoConfig{
			URI:      viper.GetString("MONGODB_URI"),
			Database: viper.GetString("MONGODB_DATABASE_NAME"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Direction: DirectionConfig{
			GoogleMapsAPIKey: viper.GetString("GOOGLE_MAPS_API_KEY"),
			CacheTTL:         time.Duration(viper.GetInt("DIRECTION_CACHE_TTL_SECONDS")) * time.Second,
		},
		Scheduler: SchedulerConfig{
			BeforePickup:     time.Duration(viper.GetInt("DEFAULT_BEFORE_PICKUP_TIME")) * time.Second,
			AfterPickup:      time.Duration(viper.GetInt("DEFAULT_AFTER_PICKUP_TIME")) * time.Second,
			DropoffUnloading: time.Duration(viper.GetInt("DEFAULT_DROPOFF_UNLOADING_TIME")) * time.Second,
			SolverTimeout:    time.Duration(viper.GetInt("SOLVER_TIMEOUT_SECONDS")) * time.Second,
		},
		Processor: ProcessorConfig{
			Interval:  time.Duration(viper.GetInt("PROCESSOR_INTERVAL")) * time.Millisecond,
			BatchSize: viper.GetInt("PROCESSOR_BATCH_SIZE"),
		},
	}

	return cfg, nil
}
