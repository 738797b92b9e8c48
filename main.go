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

	"duck/internal/api"
	"duck/internal/config"
	"duck/internal/logging"
	"duck/internal/middleware"

	"go.uber.org/zap"
)

func main() {
	dir, err := os.Getwd()
	if err != nil {
		log.Fatal("failed to get working directory:", err)
	}
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	root, err := config.FindRoot(dir)
	if err != nil {
		log.Fatal(err)
	}

	// Load configuration
	cfg, err := config.LoadOrDefault(config.ConfigPath(root))
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	// The server only reads the log file, so it can run next to the CLI,
	// which holds the database lock while it works.
	historyHandler := api.NewHistoryHandler(api.FileSource{Path: config.LogPath(root)}, logger)

	// Set up router
	mux := http.NewServeMux()
	historyHandler.Register(mux)

	// Apply middleware
	handler := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Recover(logger),
		middleware.Logger(logger),
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	// Start server
	logger.Info("starting server", zap.String("address", addr), zap.String("root", root))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", zap.Error(err))
	}
}
