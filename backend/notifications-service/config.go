package main

import (
	"strings"

	"projecthub/backend/utils"
)

type Config struct {
	Port      string
	CassHosts []string
	Keyspace  string
	JWTSecret string
	LogFile   string
	LogLevel  string
}

func LoadConfig() Config {
	utils.LoadEnv()
	return Config{
		Port:      utils.GetEnv("SERVER_PORT", "8004"),
		CassHosts: strings.Split(utils.GetEnv("CASS_DB", "127.0.0.1"), ","),
		Keyspace:  utils.GetEnv("CASS_KEYSPACE", "notifications"),
		JWTSecret: utils.GetEnv("JWT_SECRET", ""),
		LogFile:   utils.GetEnv("LOG_FILE", "/app/logs/notifications.log"),
		LogLevel:  utils.GetEnv("LOG_LEVEL", "info"),
	}
}
