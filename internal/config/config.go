package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// DefaultRatesURL is the official CBU (Central Bank of Uzbekistan) daily
// exchange rate archive in JSON form.
const DefaultRatesURL = "https://cbu.uz/uz/arkhiv-kursov-valyut/json/"

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Currency
	PrimaryCurrency string

	// Rate updater
	RatesURL     string
	RatesTimeout time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "hamyon"),
		DBPassword: getEnv("DB_PASSWORD", "hamyon"),
		DBName:     getEnv("DB_NAME", "hamyon"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Currency
		PrimaryCurrency: getEnv("PRIMARY_CURRENCY", "UZS"),

		// Rate updater
		RatesURL: getEnv("RATES_URL", DefaultRatesURL),
	}

	// Parse JWT expiration duration
	expStr := getEnv("JWT_EXPIRES_IN", "24h")
	expDur, err := time.ParseDuration(expStr)
	if err != nil {
		log.Printf("Warning: invalid JWT_EXPIRES_IN value '%s', falling back to 24h\n", expStr)
		expDur = 24 * time.Hour
	}
	config.JWTExpirationDur = expDur

	// Parse rate fetch timeout
	toStr := getEnv("RATES_TIMEOUT", "20s")
	toDur, err := time.ParseDuration(toStr)
	if err != nil {
		log.Printf("Warning: invalid RATES_TIMEOUT value '%s', falling back to 20s\n", toStr)
		toDur = 20 * time.Second
	}
	config.RatesTimeout = toDur

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
