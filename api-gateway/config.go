package main

import "projecthub/backend/utils"

type Config struct {
	Port                    string
	JWTSecret               string
	CORSOrigin              string
	LogFile                 string
	LogLevel                string
	UsersServiceURL         string
	OrganizationsServiceURL string
	ProjectsServiceURL      string
	TasksServiceURL         string
	WorkflowServiceURL      string
	NotificationsServiceURL string
}

func LoadConfig() Config {
	utils.LoadEnv()
	return Config{
		Port:                    utils.GetEnv("SERVER_PORT", "8000"),
		JWTSecret:               utils.GetEnv("JWT_SECRET", ""),
		CORSOrigin:              utils.GetEnv("CORS_ORIGIN", "*"),
		LogFile:                 utils.GetEnv("LOG_FILE", "/app/logs/gateway.log"),
		LogLevel:                utils.GetEnv("LOG_LEVEL", "info"),
		UsersServiceURL:         utils.GetEnv("USERS_SERVICE_URL", "http://users-service:8001"),
		OrganizationsServiceURL: utils.GetEnv("ORGANIZATIONS_SERVICE_URL", "http://organizations-service:8006"),
		ProjectsServiceURL:      utils.GetEnv("PROJECTS_SERVICE_URL", "http://projects-service:8003"),
		TasksServiceURL:         utils.GetEnv("TASKS_SERVICE_URL", "http://tasks-service:8002"),
		WorkflowServiceURL:      utils.GetEnv("WORKFLOW_SERVICE_URL", "http://workflow-service:8005"),
		NotificationsServiceURL: utils.GetEnv("NOTIFICATIONS_SERVICE_URL", "http://notifications-service:8004"),
	}
}
