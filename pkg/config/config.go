package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. Load returns it by value;
// nothing here is a package global, so tests and binaries can build
// their own.
type Config struct {
	Port        string
	Environment string // "development" or "production"
	LogLevel    string

	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	Migrations  string // file:// URL for golang-migrate

	JWTSecret    string
	CookieDomain string
	AppBaseURL   string // base URL embedded in reset links

	AWSRegion      string
	SESEmailSender string
}

// Load reads configuration from the environment. A .env file is loaded
// first when present (local development); its absence is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded:", err)
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", ""),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "tweeter"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		Migrations: getEnv("MIGRATIONS_URL", "file://internal/database/migrations"),

		JWTSecret:    getEnv("JWT_SECRET_KEY", ""),
		CookieDomain: getEnv("COOKIE_DOMAIN", "localhost"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:5173"),

		AWSRegion:      getEnv("AWS_REGION", ""),
		SESEmailSender: getEnv("SES_EMAIL_SENDER", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable not set")
	}
	if cfg.DBUser == "" || cfg.DBPassword == "" {
		return nil, fmt.Errorf("database credentials (DB_USER, DB_PASSWORD) must be set")
	}
	return cfg, nil
}

// DSN renders the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// IsProduction reports whether the production cookie attribute set
// should be used.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
