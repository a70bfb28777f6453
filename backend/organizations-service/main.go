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
	"projecthub/backend/organizations-service/clients"
	"projecthub/backend/organizations-service/handlers"
	"projecthub/backend/organizations-service/repositories"
	"projecthub/backend/organizations-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := LoadConfig()
	logging.InitLogger(logging.Options{SystemName: "organizations-service", FilePath: cfg.LogFile, Level: cfg.LogLevel})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Organizations Service...")

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
	orgRepo := repositories.NewOrganizationRepo(db)
	memberRepo := repositories.NewMembershipRepo(db)
	if err := orgRepo.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}
	if err := memberRepo.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	httpClient := utils.NewHTTPClient(cfg.HTTPClientTimeout)
	usersAPI := utils.NewServiceClient("users-service", cfg.UsersServiceURL, httpClient, utils.NewBreaker("UsersServiceCB", 2*time.Second))

	orgService := services.NewOrganizationService(orgRepo, memberRepo, clients.NewUsersClient(usersAPI))
	orgHandler := handlers.NewOrganizationHandler(orgService)
	tokens := auth.NewTokenManager(cfg.JWTSecret, 0)

	r := mux.NewRouter()
	r.Use(metrics.Middleware("organizations-service"))
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	orgHandler.Routes(r, tokens)

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
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Organizations Service stopped")
}
