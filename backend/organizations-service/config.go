package main

import (
	"time"

	"projecthub/backend/utils"
)

type Config struct {
	Port              string
	MongoURI          string
	MongoDBName       string
	JWTSecret         string
	LogFile           string
	LogLevel          string
	UsersServiceURL   string
	HTTPClientTimeout time.Duration
}

func LoadConfig() Config {
	utils.LoadEnv()
	return Config{
		Port:              utils.GetEnv("SERVER_PORT", "8006"),
		MongoURI:          utils.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:       utils.GetEnv("MONGO_DB_NAME", "organizations_db"),
		JWTSecret:         utils.GetEnv("JWT_SECRET", ""),
		LogFile:           utils.GetEnv("LOG_FILE", "/app/logs/organizations.log"),
		LogLevel:          utils.GetEnv("LOG_LEVEL", "info"),
		UsersServiceURL:   utils.GetEnv("USERS_SERVICE_URL", "http://users-service:8001"),
		HTTPClientTimeout: utils.GetEnvDuration("HTTP_CLIENT_TIMEOUT", 5*time.Second),
	}
}
