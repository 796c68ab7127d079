package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"

	_ "github.com/lib/pq"

	httpapi "lendtrack-backend/internal/api/http"
	"lendtrack-backend/internal/config"
	"lendtrack-backend/internal/logger"
	"lendtrack-backend/internal/repository/postgres"
	"lendtrack-backend/internal/security"
	"lendtrack-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Lendtrack Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Services
	reputationSvc := service.NewReputationService(store)
	itemSvc := service.NewItemService(store)
	reservationSvc := service.NewReservationService(store, itemSvc, reputationSvc)
	returnSvc := service.NewReturnService(store, itemSvc, reputationSvc)
	overdueSvc := service.NewOverdueService(store, reputationSvc, service.NewLogNotifier())
	bulkSvc := service.NewBulkService(reservationSvc, returnSvc)

	// Initialize HTTP handlers
	auth := httpapi.NewAuthMiddleware(tokenManager)
	itemHandler := httpapi.NewItemHandler(itemSvc)
	reservationHandler := httpapi.NewReservationHandler(reservationSvc)
	returnHandler := httpapi.NewReturnHandler(returnSvc)
	adminHandler := httpapi.NewAdminHandler(overdueSvc, bulkSvc, reputationSvc)

	router := httpapi.NewRouter(auth, itemHandler, reservationHandler, returnHandler, adminHandler)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
