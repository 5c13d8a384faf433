package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emotionquest/internal/assets"
	"emotionquest/internal/classify"
	"emotionquest/internal/config"
	"emotionquest/internal/database"
	"emotionquest/internal/handlers"
	"emotionquest/internal/repository"
	"emotionquest/internal/security"
	"emotionquest/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	policy, err := config.LoadPolicy(cfg.PolicyPath)
	if err != nil {
		log.Fatalf("Failed to load policy: %v", err)
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.Initialize(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load the question catalog and keep it hot-reloading
	catalog, err := assets.NewCatalog(cfg.AssetsPath)
	if err != nil {
		log.Fatalf("Failed to load question catalog: %v", err)
	}
	if err := catalog.Watch(); err != nil {
		log.Printf("Warning: catalog watch disabled: %v", err)
	}
	defer catalog.Close()

	// Initialize repositories
	progressRepo := repository.NewProgressRepository(db)

	// Initialize services
	progression := service.NewProgressionService(progressRepo, policy)
	curriculum := service.NewCurriculumService(catalog, policy)

	report, err := service.NewReportService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Fatalf("Failed to initialize report service: %v", err)
	}
	if report.IsEnabled() {
		log.Println("Caregiver report email enabled")
	}

	classifier := classify.NewOpenAIClassifier(cfg)
	registry := handlers.NewRegistry(policy, classifier)

	// Initialize handlers
	middleware := handlers.NewMiddleware(cfg.AuthTokenSecret)
	sessionHandler := handlers.NewSessionHandler(registry, curriculum, progression, report, policy, cfg)
	progressHandler := handlers.NewProgressHandler(progression)
	monitoringHandler := handlers.NewMonitoringHandler(registry)
	frameThrottle := security.NewFrameThrottle(30, 10)
	frameHandler := handlers.NewFrameHandler(registry, progression, frameThrottle)

	mux := handlers.NewRouter(middleware, sessionHandler, progressHandler, monitoringHandler, frameHandler)

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
