// internal/infrastructure/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for a scrape run
type Config struct {
	// App
	AppVersion string

	// Board
	BoardURL            string
	BoardTodayTable     string
	BoardYesterdayTable string
	HTTPTimeout         time.Duration

	// MongoDB
	MongoURI        string
	MongoDB         string
	MongoCollection string
	MongoUser       string
	MongoPassword   string
	StoreTimeout    time.Duration

	// Site timezone
	SiteTimezone string
	AirportCode  string
	PostgresURI  string

	// Year inference window
	FutureWindow time.Duration
	PastWindow   time.Duration

	// Output
	ArchiveDir     string
	PushgatewayURL string
	LogLevel       string
	LogFile        string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion: getEnv("APP_VERSION", "1.0.0"),

		BoardURL:            getEnv("BOARD_URL", getEnv("URL", "")),
		BoardTodayTable:     getEnv("BOARD_TODAY_TABLE", "flightsToday"),
		BoardYesterdayTable: getEnv("BOARD_YESTERDAY_TABLE", "flightsYesterday"),
		HTTPTimeout:         time.Duration(getEnvAsInt("HTTP_TIMEOUT", 30)) * time.Second,

		MongoURI:        getEnv("MONGODB_DSN", mongoURIFromHost(getEnv("DB_HOST", ""))),
		MongoDB:         getEnv("MONGO_DB", getEnv("DB_NAME", "flights")),
		MongoCollection: getEnv("MONGO_COLLECTION", getEnv("COLLECTION", "flights")),
		MongoUser:       getEnv("MONGO_USER", ""),
		MongoPassword:   getEnv("MONGO_PASSWORD", ""),
		StoreTimeout:    time.Duration(getEnvAsInt("STORE_TIMEOUT", 30)) * time.Second,

		SiteTimezone: getEnv("SITE_TIMEZONE", "America/Vancouver"),
		AirportCode:  getEnv("AIRPORT_CODE", "YYJ"),
		PostgresURI:  getEnv("POSTGRES_DSN", ""),

		FutureWindow: time.Duration(getEnvAsInt("FUTURE_WINDOW_DAYS", 7)) * 24 * time.Hour,
		PastWindow:   time.Duration(getEnvAsInt("PAST_WINDOW_DAYS", 366)) * 24 * time.Hour,

		ArchiveDir:     getEnv("ARCHIVE_DIR", ""),
		PushgatewayURL: getEnv("PUSHGATEWAY_URL", ""),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
	}

	if config.BoardURL == "" {
		return nil, errors.New("BOARD_URL is required")
	}
	if config.FutureWindow <= 0 || config.PastWindow <= 0 {
		return nil, errors.New("FUTURE_WINDOW_DAYS and PAST_WINDOW_DAYS must be positive")
	}

	return config, nil
}

func mongoURIFromHost(host string) string {
	if host == "" {
		return "mongodb://localhost:27017"
	}
	return "mongodb://" + host
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
