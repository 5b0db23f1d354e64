package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/giygas/interactions-api/config"
	"github.com/giygas/interactions-api/data"
	"github.com/giygas/interactions-api/drugdata"
	"github.com/giygas/interactions-api/interactions"
	"github.com/giygas/interactions-api/llm"
	"github.com/giygas/interactions-api/logging"
	"github.com/giygas/interactions-api/medfiles"
	"github.com/giygas/interactions-api/scheduler"
	"github.com/giygas/interactions-api/server"
	"github.com/giygas/interactions-api/storage"
	"github.com/giygas/interactions-api/verification"
)

func main() {
	// Load .env file if present, real environment wins
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogDir, cfg.LogLevel)

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())

	loader := drugdata.NewLoader(cfg.DataDir, cfg.InteractionsFile, cfg.SynonymsFile)

	sched := scheduler.NewScheduler(dataContainer, loader)
	if err := sched.Start(); err != nil {
		logging.Error("Failed to load interaction data", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		logging.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repository := storage.NewRepository(db)

	aiClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.AITimeout)
	if !cfg.AIConfigured() {
		logging.Warn("OPENAI_API_KEY not set, AI endpoints will return 503")
	}

	resolver := interactions.NewResolver(dataContainer)
	verifier := verification.NewService(resolver, aiClient)

	medService, err := medfiles.NewService(repository, aiClient, cfg.StorageDir, cfg.MaxUploadSize)
	if err != nil {
		logging.Error("Failed to initialize file storage", "error", err)
		os.Exit(1)
	}

	srv := server.NewServer(cfg, server.Services{
		DataStore:    dataContainer,
		Resolver:     resolver,
		Verification: verifier,
		MedFiles:     medService,
	})

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Shutdown error", "error", err)
	}
}

// openDatabase connects to postgres and applies the schema
func openDatabase(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
