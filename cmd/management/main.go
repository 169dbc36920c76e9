package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"newswire/api/router"
	"newswire/config"
	"newswire/db"
	"newswire/retry"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := retry.Do(ctx, "mongodb init", 5, 2*time.Second, func(ctx context.Context) error {
		return db.Init(ctx)
	})
	if err != nil {
		config.Logger.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}

	r := router.New()

	handler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)

	srv := &http.Server{
		Addr:    cfg.Management.ListenAddr,
		Handler: handler,
	}

	go func() {
		config.Logger.Infof("management api listening on %s", cfg.Management.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			config.Logger.Errorf("http server error: %v", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		config.Logger.Info("received shutdown signal, shutting down management api...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		config.Logger.Errorf("graceful shutdown failed: %v", err)
	}

	config.Logger.Info("management api stopped")
}
