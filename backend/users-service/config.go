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
	TokenTTL                time.Duration
	LogFile                 string
	LogLevel                string
	BlackListFile           string
	AdminUsername           string
	AdminPassword           string
	AdminEmail              string
	OrganizationsServiceURL string
	ProjectsServiceURL      string
	TasksServiceURL         string
	HTTPClientTimeout       time.Duration
}

func LoadConfig() Config {
	utils.LoadEnv()
	return Config{
		Port:                    utils.GetEnv("SERVER_PORT", "8001"),
		MongoURI:                utils.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:             utils.GetEnv("MONGO_DB_NAME", "users"),
		JWTSecret:               utils.GetEnv("JWT_SECRET", ""),
		TokenTTL:                utils.GetEnvDuration("JWT_TTL", 2*time.Hour),
		LogFile:                 utils.GetEnv("LOG_FILE", "/app/logs/users.log"),
		LogLevel:                utils.GetEnv("LOG_LEVEL", "info"),
		BlackListFile:           utils.GetEnv("BLACKLIST_FILE", "blacklist.txt"),
		AdminUsername:           utils.GetEnv("ADMIN_USERNAME", ""),
		AdminPassword:           utils.GetEnv("ADMIN_PASSWORD", ""),
		AdminEmail:              utils.GetEnv("ADMIN_EMAIL", "admin@projecthub.local"),
		OrganizationsServiceURL: utils.GetEnv("ORGANIZATIONS_SERVICE_URL", "http://organizations-service:8006"),
		ProjectsServiceURL:      utils.GetEnv("PROJECTS_SERVICE_URL", "http://projects-service:8003"),
		TasksServiceURL:         utils.GetEnv("TASKS_SERVICE_URL", "http://tasks-service:8002"),
		HTTPClientTimeout:       utils.GetEnvDuration("HTTP_CLIENT_TIMEOUT", 5*time.Second),
	}
}
