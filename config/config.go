package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config represents the application configuration
type Config struct {
	// HTTP server configuration
	Port        string   `validate:"required,numeric"`
	CORSOrigins []string `validate:"required,min=1"`

	// Cache configuration
	CacheTTL time.Duration `validate:"required,gt=0"`

	// Rendering configuration
	NavigationTimeout time.Duration `validate:"required,gt=0"`
	SelectorTimeout   time.Duration `validate:"required,gt=0"`

	// Redis configuration (publishing is disabled when RedisAddr is empty)
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int

	// URL overrides for the catalog sources
	Deal4RealURL string `validate:"required,url"`
	ZuzuURL      string `validate:"required,url"`
	BuywithusURL string `validate:"required,url"`
	BeedealsURL  string `validate:"required,url"`

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	cacheTTL, _ := strconv.Atoi(getEnv("CACHE_TTL_SECONDS", "180"))
	navTimeout, _ := strconv.Atoi(getEnv("NAVIGATION_TIMEOUT_SECONDS", "60"))
	selTimeout, _ := strconv.Atoi(getEnv("SELECTOR_TIMEOUT_SECONDS", "5"))

	return Config{
		Port:              getEnv("PORT", "3001"),
		CORSOrigins:       splitCSV(getEnv("CORS_ORIGINS", "*")),
		CacheTTL:          time.Duration(cacheTTL) * time.Second,
		NavigationTimeout: time.Duration(navTimeout) * time.Second,
		SelectorTimeout:   time.Duration(selTimeout) * time.Second,
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisDB:           redisDB,
		RedisStream:       getEnv("REDIS_STREAM", "deals"),
		RedisStreamMaxLen: streamMaxLen,
		Deal4RealURL:      getEnv("DEAL4REAL_URL", "https://deal4real.co.il/"),
		ZuzuURL:           getEnv("ZUZU_URL", "https://zuzu.deals/"),
		BuywithusURL:      getEnv("BUYWITHUS_URL", "https://buywithus.org/"),
		BeedealsURL:       getEnv("BEEDEALS_URL", "https://il.bee.deals/dashboard"),
		Environment:       getEnv("DEALS_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitCSV splits a comma-separated value, trimming whitespace and dropping
// empty entries
func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
