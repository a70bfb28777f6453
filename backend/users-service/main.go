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
	"projecthub/backend/users-service/clients"
	"projecthub/backend/users-service/handlers"
	"projecthub/backend/users-service/repositories"
	"projecthub/backend/users-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := LoadConfig()
	logging.InitLogger(logging.Options{SystemName: "users-service", FilePath: cfg.LogFile, Level: cfg.LogLevel})
	logging.Logger.Info("Event ID: SERVICE_START, Description: Starting Users Service...")

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

	userRepo := repositories.NewUserRepo(client.Database(cfg.MongoDBName))
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logging.Logger.Fatalf("Event ID: DB_INDEX_FAILED, Description: %v", err)
	}

	common, err := services.LoadCommonPasswords(cfg.BlackListFile)
	if err != nil {
		logging.Logger.Warnf("Event ID: BLACKLIST_LOAD_FAILED, Description: Password blacklist %s not loaded: %v", cfg.BlackListFile, err)
	} else {
		logging.Logger.Infof("Event ID: BLACKLIST_LOADED, Description: Loaded %d common passwords", common.Len())
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	userService := services.NewUserService(userRepo, tokens, common)
	if err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		logging.Logger.Fatalf("Event ID: ADMIN_BOOTSTRAP_FAILED, Description: %v", err)
	}

	httpClient := utils.NewHTTPClient(cfg.HTTPClientTimeout)
	organizations := clients.NewParticipant(utils.NewServiceClient("organizations-service", cfg.OrganizationsServiceURL, httpClient, utils.NewBreaker("OrganizationsServiceCB", 2*time.Second)))
	projects := clients.NewParticipant(utils.NewServiceClient("projects-service", cfg.ProjectsServiceURL, httpClient, utils.NewBreaker("ProjectsServiceCB", 2*time.Second)))
	tasks := clients.NewParticipant(utils.NewServiceClient("tasks-service", cfg.TasksServiceURL, httpClient, utils.NewBreaker("TasksServiceCB", 2*time.Second)))

	deletion := services.NewDeletionCoordinator(
		userRepo,
		[]services.BlockingChecker{organizations, projects},
		[]services.CleanupStep{organizations, projects, tasks},
	)

	userHandler := &handlers.UserHandler{UserService: userService, Deletion: deletion}
	loginHandler := &handlers.LoginHandler{UserService: userService}

	r := mux.NewRouter()
	r.Use(metrics.Middleware("users-service"))
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	userHandler.Routes(r, loginHandler, tokens)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
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
	logging.Logger.Info("Event ID: SERVICE_STOPPED, Description: Users Service stopped")
}
