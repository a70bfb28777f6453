package main

import (
	"time"

	"projecthub/backend/utils"
)

type Config struct {
	Port                    string
	MongoURI                string
	MongoDBName             string
	JWTSecret               string
	LogFile                 string
	LogLevel                string
	OrganizationsServiceURL string
	HTTPClientTimeout       time.Duration
}

func LoadConfig() Config {
	utils.LoadEnv()
	return Config{
		Port:                    utils.GetEnv("SERVER_PORT", "8003"),
		MongoURI:                utils.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:             utils.GetEnv("MONGO_DB_NAME", "projects_db"),
		JWTSecret:               utils.GetEnv("JWT_SECRET", ""),
		LogFile:                 utils.GetEnv("LOG_FILE", "/app/logs/projects.log"),
		LogLevel:                utils.GetEnv("LOG_LEVEL", "info"),
		OrganizationsServiceURL: utils.GetEnv("ORGANIZATIONS_SERVICE_URL", "http://organizations-service:8006"),
		HTTPClientTimeout:       utils.GetEnvDuration("HTTP_CLIENT_TIMEOUT", 5*time.Second),
	}
}
