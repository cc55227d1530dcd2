package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	Rates     RatesConfig
	Breaker   BreakerConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	Environment    string
	ServiceName    string
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout time.Duration
	CORSOrigins    string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MinConns       int
	MigrateOnStart bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	RateCacheTTL time.Duration
}

// NATSConfig holds event bus configuration
type NATSConfig struct {
	URL     string
	Enabled bool
}

// RatesConfig holds exchange-rate feed configuration
type RatesConfig struct {
	FeedURL          string
	APIKey           string
	Anchor           string
	OfficialCurrency string
	RefreshInterval  time.Duration
	FeedTimeout      time.Duration
	RefreshEnabled   bool
	DefaultProfitPct float64
}

// BreakerConfig holds circuit breaker tuning for outbound calls
type BreakerConfig struct {
	IntervalSeconds  int
	TimeoutSeconds   int
	FailureThreshold int
	SuccessThreshold int
}

// RateLimitConfig holds per-tenant limits for quota-consuming endpoints
type RateLimitConfig struct {
	Enabled       bool
	WindowSeconds int
	RefreshLimit  int
	RedisPrefix   string
}

// Window returns the limiting window, one minute when unset
func (c RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ServiceName:    serviceName,
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 15*time.Second),
			CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "pos_pricing"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 5),
			MigrateOnStart: getEnvAsBool("DB_MIGRATE_ON_START", true),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			RateCacheTTL: getEnvAsDuration("RATE_CACHE_TTL", 5*time.Minute),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Enabled: getEnvAsBool("NATS_ENABLED", false),
		},
		Rates: RatesConfig{
			FeedURL:          getEnv("RATES_FEED_URL", "https://v6.exchangerate-api.com/v6"),
			APIKey:           getEnv("RATES_API_KEY", ""),
			Anchor:           getEnv("RATES_ANCHOR", "USD"),
			OfficialCurrency: getEnv("RATES_OFFICIAL_CURRENCY", "VES"),
			RefreshInterval:  getEnvAsDuration("RATES_REFRESH_INTERVAL", 6*time.Hour),
			FeedTimeout:      getEnvAsDuration("RATES_FEED_TIMEOUT", 10*time.Second),
			RefreshEnabled:   getEnvAsBool("RATES_REFRESH_ENABLED", true),
			DefaultProfitPct: getEnvAsFloat("RATES_DEFAULT_PROFIT_PERCENTAGE", 30),
		},
		Breaker: BreakerConfig{
			IntervalSeconds:  getEnvAsInt("BREAKER_INTERVAL_SECONDS", 60),
			TimeoutSeconds:   getEnvAsInt("BREAKER_TIMEOUT_SECONDS", 30),
			FailureThreshold: getEnvAsInt("BREAKER_FAILURE_THRESHOLD", 5),
			SuccessThreshold: getEnvAsInt("BREAKER_SUCCESS_THRESHOLD", 1),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", true),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 3600),
			RefreshLimit:  getEnvAsInt("RATE_LIMIT_REFRESH", 10),
			RedisPrefix:   getEnv("RATE_LIMIT_PREFIX", "rl"),
		},
	}

	if cfg.Rates.RefreshEnabled && cfg.Rates.APIKey == "" {
		return nil, fmt.Errorf("RATES_API_KEY is required when RATES_REFRESH_ENABLED is true")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as expected by migrate
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}
