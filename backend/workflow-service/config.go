package main

import "projecthub/backend/utils"

type Config struct {
	Port          string
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string
	Neo4jDatabase string
	JWTSecret     string
	LogFile       string
	LogLevel      string
}

func LoadConfig() Config {
	utils.LoadEnv()
	return Config{
		Port:          utils.GetEnv("SERVER_PORT", "8005"),
		Neo4jURI:      utils.GetEnv("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:     utils.GetEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword: utils.GetEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase: utils.GetEnv("NEO4J_DATABASE", ""),
		JWTSecret:     utils.GetEnv("JWT_SECRET", ""),
		LogFile:       utils.GetEnv("LOG_FILE", "/app/logs/workflow.log"),
		LogLevel:      utils.GetEnv("LOG_LEVEL", "info"),
	}
}
