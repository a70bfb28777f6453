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
	"projecthub/backend/projects-service/clients"
	"projecthub/backend/projects-service/handlers"
	"projecthub/backend/projects-service/repositories"
	"projecthub/backend/projects-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := LoadConfig()
	logging.InitLogger(logging.Options{SystemName: "projects-service", FilePath: cfg.LogFile, Level: cfg.LogLevel})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Projects Service...")

	if cfg.JWTSecret == "" {
		logging.Logger.Fatal("Event ID: CONFIG_ERROR, Description: JWT_SECRET is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logging.Logger.Fatalf("Event ID: DB_CONNECTION_FAILED, Description: Database connection for MongoDB failed: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := client.Ping(ctx, nil); err != nil {
		logging.Logger.Fatalf("Event ID: DB_PING_FAILED, Description: MongoDB connection ping error: %v", err)
	}
	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Successfully connected to MongoDB at %s.", cfg.MongoURI)

	db := client.Database(cfg.MongoDBName)
	projectRepo := repositories.NewProjectRepo(db)
	memberRepo := repositories.NewMemberRepo(db)
	if err := projectRepo.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}
	if err := memberRepo.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	httpClient := utils.NewHTTPClient(cfg.HTTPClientTimeout)
	orgsAPI := utils.NewServiceClient("organizations-service", cfg.OrganizationsServiceURL, httpClient, utils.NewBreaker("OrganizationsServiceCB", 2*time.Second))

	projectService := services.NewProjectService(projectRepo, memberRepo, clients.NewOrganizationsClient(orgsAPI))
	projectHandler := handlers.NewProjectHandler(projectService)
	tokens := auth.NewTokenManager(cfg.JWTSecret, 0)

	r := mux.NewRouter()
	r.Use(metrics.Middleware("projects-service"))
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	projectHandler.Routes(r, tokens)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logging.Logger.Infof("Event ID: SERVER_START_INFO, Description: Server running on %s", srv.Addr)
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
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Projects Service stopped")
}
