package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwaldner/stockai/internal/audit"
	"github.com/jwaldner/stockai/internal/config"
	"github.com/jwaldner/stockai/internal/dashboard"
	"github.com/jwaldner/stockai/internal/handlers"
	"github.com/jwaldner/stockai/internal/logger"
	"github.com/jwaldner/stockai/internal/predictor"
	"github.com/jwaldner/stockai/internal/scheduler"
	"github.com/jwaldner/stockai/internal/symbols"
	"github.com/jwaldner/stockai/web"

	"github.com/gorilla/mux"
)

// symbolMaxAge is how old the saved symbol list may get before startup refetches it
const symbolMaxAge = 24 * time.Hour

func main() {
	cfg := config.Load()

	// Initialize proper logging with config level and file path
	if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	logger.Always.Printf("🚀 StockAI Predictor starting - Port: %s", cfg.Port)

	if cfg.Logging.LogLevel == "verbose" {
		fmt.Printf("⚠️  VERBOSE LOGGING ENABLED - every prediction call will be logged to %s\n", cfg.Logging.LogFile)
	}

	// Create prediction client
	logger.Always.Printf("📡 Prediction service: %s", cfg.Prediction.BaseURL)
	if timeout := cfg.PredictionTimeout(); timeout > 0 {
		logger.Info.Printf("⏱️  Prediction timeout: %v", timeout)
	}
	baseClient := predictor.NewClient(cfg.Prediction.BaseURL, cfg.PredictionTimeout())
	client := predictor.NewPerformanceWrapper(baseClient)
	defer client.Close()

	recorder, err := audit.NewRecorder(cfg.Audit.Driver, cfg.Audit.DSN)
	if err != nil {
		log.Fatalf("Failed to open audit recorder: %v", err)
	}
	defer recorder.Close()

	sessions := dashboard.NewSessions(client)
	symbolService := symbols.NewService(cfg.Symbols.Dir, cfg.Symbols.SourceURL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(ctx, sessions, symbolService)
	if err := sched.RegisterAll(cfg.Sessions.PruneCron, cfg.SessionIdle(), cfg.Symbols.UpdateCron); err != nil {
		log.Fatalf("Failed to register scheduled jobs: %v", err)
	}
	sched.Start()
	defer sched.Stop()
	go sched.RefreshSymbolsIfStale(symbolMaxAge)

	dashboardHandler, err := handlers.NewDashboardHandler(client, sessions, recorder, symbolService)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	symbolsHandler := handlers.NewSymbolsHandler(symbolService)

	// Setup router
	r := mux.NewRouter()
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", web.StaticHandler()))
	dashboardHandler.Register(r)
	symbolsHandler.Register(r)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.Port,
		Handler: r,
	}

	go func() {
		fmt.Printf("🌐 Server starting on http://localhost:%s\n", cfg.Port)
		logger.Always.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Always.Printf("🛑 Shutdown signal received, stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("❌ Server shutdown: %v", err)
	}
}
