package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"evidence-agent/analysis"
	"evidence-agent/config"
	"evidence-agent/database"
	"evidence-agent/docextract"
	"evidence-agent/llmclient"
	"evidence-agent/pipeline"
	"evidence-agent/transcript"
	"evidence-agent/web"
	"evidence-agent/web/services"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Load config (which includes log level setting)
	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// --- Ensure Schema Exists ---
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	llm := llmclient.New(cfg, logger)
	extractor := docextract.NewExtractor(logger)
	sanitizer := transcript.NewSanitizer(logger, cfg.EnforceMonotonic)
	resolver := analysis.NewResolver(logger, cfg.CitationToleranceSeconds)

	processor, err := pipeline.NewProcessor(cfg, store, llm, extractor, sanitizer, logger)
	if err != nil {
		logger.Fatal("Failed to initialize processor", zap.Error(err))
	}

	evidenceService := services.NewEvidenceService(cfg, store, processor, logger)
	analysisService := services.NewAnalysisService(cfg, store, llm, resolver, logger)
	chatService := services.NewChatService(cfg, store, llm, resolver, logger)

	webServer := web.NewServer(cfg, store, evidenceService, analysisService, chatService, logger)

	// Create context that listens for interrupt signals
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := fmt.Sprintf(":%d", cfg.WebPort)
	logger.Info("Starting Evidence Agent web server", zap.String("port", port))
	if err := webServer.Start(ctx, port); err != nil {
		logger.Error("Web server error", zap.Error(err))
		os.Exit(1)
	}
}
