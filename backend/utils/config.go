package utils

import (
	"os"
	"strconv"
	"time"

	"projecthub/backend/logging"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env files into the environment. A missing file is not an error.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		logging.Logger.Warnf("Event ID: ENV_FILE_MISSING, Description: No .env file loaded, using process environment: %v", err)
	}
}

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logging.Logger.Warnf("Event ID: CONFIG_INVALID_INT, Description: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logging.Logger.Warnf("Event ID: CONFIG_INVALID_DURATION, Description: %s=%q is not a duration, using %s", key, v, fallback)
		return fallback
	}
	return d
}
