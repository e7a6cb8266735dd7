package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	CarsAPI  CarsAPIConfig
	ImageCDN ImageCDNConfig
	Search   SearchConfig
	Warmer   WarmerConfig

	LocalFavoritesPath string
	APIPort            string
	LogLevel           string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig selects the live response cache. An empty Addr means the
// in-memory cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type CarsAPIConfig struct {
	Key               string
	URL               string
	RequestsPerSecond float64
	Retries           int
}

type ImageCDNConfig struct {
	URL      string
	Customer string
}

type SearchConfig struct {
	SourceTimeout     time.Duration
	EstimatePrice     bool
	ScoringPolicyFile string
	SeedCatalogFile   string
}

type WarmerConfig struct {
	Workers        int
	Delay          time.Duration
	CheckpointFile string
	MonitorPort    int
}

// Load reads configuration from the environment, after merging a .env
// file from the working directory when one exists
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			Enabled:  getEnvBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			Name:     getEnv("DB_NAME", "carcompare"),
			User:     getEnv("DB_USER", "carcompare"),
			Password: getEnv("DB_PASSWORD", ""),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      getEnvDuration("CACHE_TTL", 24*time.Hour),
		},
		CarsAPI: CarsAPIConfig{
			Key:               getEnv("CARS_API_KEY", ""),
			URL:               getEnv("CARS_API_URL", "https://api.api-ninjas.com/v1/cars"),
			RequestsPerSecond: getEnvFloat("CARS_API_RPS", 5),
			Retries:           getEnvInt("CARS_API_RETRIES", 0),
		},
		ImageCDN: ImageCDNConfig{
			URL:      getEnv("IMAGE_CDN_URL", "https://cdn.imagin.studio"),
			Customer: getEnv("IMAGE_CDN_CUSTOMER", ""),
		},
		Search: SearchConfig{
			SourceTimeout:     getEnvDuration("SOURCE_TIMEOUT", 8*time.Second),
			EstimatePrice:     getEnvBool("PRICE_ESTIMATION", true),
			ScoringPolicyFile: getEnv("SCORING_POLICY_FILE", ""),
			SeedCatalogFile:   getEnv("SEED_CATALOG_FILE", ""),
		},
		Warmer: WarmerConfig{
			Workers:        getEnvInt("WARMER_WORKERS", 2),
			Delay:          getEnvDuration("WARMER_DELAY", 500*time.Millisecond),
			CheckpointFile: getEnv("WARMER_CHECKPOINT", "warmer_checkpoint.json"),
			MonitorPort:    getEnvInt("WARMER_MONITOR_PORT", 8081),
		},
		LocalFavoritesPath: getEnv("LOCAL_FAVORITES_PATH", "data/favorites.db"),
		APIPort:            getEnv("API_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go durations ("750ms") or plain seconds ("8")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
