// Package config collects the environment-level configuration both binaries
// depend on. Values are read once at startup; godotenv loading happens in each
// binary's init so tests never touch a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	ListenAddr string
	Port       string

	DBHost     string
	DBPort     string
	DBDatabase string

	RedisAddr     string
	RedisPassword string

	// FolderPath is the storage root for raw file bytes.
	FolderPath string

	SessionTTL time.Duration

	RateLimit       string
	AllowedOrigins  string
	MetricsPassword string

	WorkerConcurrency int

	// EmailAddress is the welcome/notification sender. Empty disables email.
	EmailAddress string

	// MinPasswordScore gates signups on zxcvbn strength. 0 disables the check.
	MinPasswordScore int
}

func Load() *Config {
	return &Config{
		ListenAddr:        os.Getenv("LISTEN_ADDR"),
		Port:              getenv("PORT", "5000"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "27017"),
		DBDatabase:        getenv("DB_DATABASE", "files_manager"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		FolderPath:        getenv("FOLDER_PATH", "/tmp/files_manager"),
		SessionTTL:        24 * time.Hour,
		RateLimit:         getenv("RATE_LIMIT", "60-M"),
		AllowedOrigins:    os.Getenv("ALLOWED_ORIGINS"),
		MetricsPassword:   os.Getenv("METRICS_PASSWORD"),
		WorkerConcurrency: getint("WORKER_CONCURRENCY", 2),
		EmailAddress:      os.Getenv("EMAIL_ADDRESS"),
		MinPasswordScore:  getint("MIN_PASSWORD_SCORE", 0),
	}
}

// MongoURI builds the connection string for the document store.
func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb://%s:%s", c.DBHost, c.DBPort)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
