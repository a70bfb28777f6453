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
	ProjectsServiceURL      string
	WorkflowServiceURL      string
	NotificationsServiceURL string
	HTTPClientTimeout       time.Duration
	CleanupBatchSize        int
	NotifyTimeout           time.Duration
}

func LoadConfig() Config {
	utils.LoadEnv()
	return Config{
		Port:                    utils.GetEnv("SERVER_PORT", "8002"),
		MongoURI:                utils.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:             utils.GetEnv("MONGO_DB_NAME", "tasks_db"),
		JWTSecret:               utils.GetEnv("JWT_SECRET", ""),
		LogFile:                 utils.GetEnv("LOG_FILE", "/app/logs/tasks.log"),
		LogLevel:                utils.GetEnv("LOG_LEVEL", "info"),
		ProjectsServiceURL:      utils.GetEnv("PROJECTS_SERVICE_URL", "http://projects-service:8003"),
		WorkflowServiceURL:      utils.GetEnv("WORKFLOW_SERVICE_URL", "http://workflow-service:8005"),
		NotificationsServiceURL: utils.GetEnv("NOTIFICATIONS_SERVICE_URL", "http://notifications-service:8004"),
		HTTPClientTimeout:       utils.GetEnvDuration("HTTP_CLIENT_TIMEOUT", 5*time.Second),
		CleanupBatchSize:        utils.GetEnvInt("CLEANUP_BATCH_SIZE", 100),
		NotifyTimeout:           utils.GetEnvDuration("NOTIFY_TIMEOUT", 2*time.Second),
	}
}
