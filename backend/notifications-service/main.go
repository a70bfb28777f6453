package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/metrics"
	"projecthub/backend/notifications-service/handlers"
	"projecthub/backend/notifications-service/repositories"
	"projecthub/backend/notifications-service/services"

	"github.com/gorilla/mux"
)

func main() {
	cfg := LoadConfig()
	logging.InitLogger(logging.Options{SystemName: "notifications-service", FilePath: cfg.LogFile, Level: cfg.LogLevel})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Notifications Service...")

	if cfg.JWTSecret == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set")
	}

	repo, err := repositories.NewNotificationRepo(cfg.CassHosts, cfg.Keyspace)
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Failed to initialize repository: %v", err)
	}
	defer repo.CloseSession()

	if err := repo.CreateTable(); err != nil {
		logging.Logger.Fatalf("Event ID: DB_SCHEMA_FAILED, Description: Failed to create notifications table: %v", err)
	}

	service := services.NewNotificationService(repo)
	handler := handlers.NewNotificationHandler(service)
	tokens := auth.NewTokenManager(cfg.JWTSecret, 0)

	r := mux.NewRouter()
	r.Use(metrics.Middleware("notifications-service"))
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Notifications service is running"))
	}).Methods(http.MethodGet)
	handler.Routes(r, tokens)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatalf("Event ID: SERVER_FATAL_ERROR, Description: Server failed to start: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Errorf("Event ID: SERVER_SHUTDOWN_ERROR, Description: %v", err)
	}
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Notifications Service stopped")
}
