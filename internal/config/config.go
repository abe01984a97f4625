package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the runtime configuration loaded from the environment.
type Config struct {
	Port            string
	JWTSecret       string
	TokenExpiry     time.Duration
	DBPath          string
	IPLookupURL     string
	AllowedOrigin   string
	PresenceIdleMin int
}

// LoadConfig reads the .env file if present and falls back to defaults for
// anything unset.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using environment defaults")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenExpiry:     time.Duration(getEnvInt("TOKEN_EXPIRY_HOURS", 24)) * time.Hour,
		DBPath:          getEnv("DB_PATH", "hideout.db"),
		IPLookupURL:     getEnv("IP_LOOKUP_URL", "https://ipapi.co"),
		AllowedOrigin:   getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		PresenceIdleMin: getEnvInt("PRESENCE_IDLE_MINUTES", 10),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.WithField("key", key).Warnf("Invalid integer %q, using default %d", value, fallback)
		return fallback
	}
	return parsed
}
