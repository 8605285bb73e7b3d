package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Port               string
	MongoURI           string
	DBName             string
	JWTSecret          string
	TokenExpiry        time.Duration
	CompletionCronSpec string
}

// LoadConfig reads the .env file (if present) and assembles the Config.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, falling back to environment variables")
	}

	expiryHours, err := strconv.Atoi(getEnv("TOKEN_EXPIRY_HOURS", "24"))
	if err != nil {
		logrus.WithError(err).Warn("Invalid TOKEN_EXPIRY_HOURS, using 24")
		expiryHours = 24
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		MongoURI:           os.Getenv("MONGO_URI"),
		DBName:             getEnv("DB_NAME", "gatherly"),
		JWTSecret:          getEnv("JWT_SECRET", "dev-secret"),
		TokenExpiry:        time.Duration(expiryHours) * time.Hour,
		CompletionCronSpec: getEnv("COMPLETION_CRON_SPEC", "@hourly"),
	}

	if cfg.MongoURI == "" {
		logrus.Fatal("MONGO_URI is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
