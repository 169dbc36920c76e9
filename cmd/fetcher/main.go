package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newswire/client"
	"newswire/config"
	"newswire/eventbus"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eventbus.EnsureTopics(cfg.Bus.Brokers, eventbus.TopicPostCreated, 3); err != nil {
		config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
	}

	bus, err := eventbus.NewKafkaEventBus(cfg.Bus.Brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	api := client.New(cfg.Management.BaseURL)
	service := NewFetcherService(api, bus, cfg.Fetcher)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	config.Logger.Infof("fetcher starting, first cycle in %s", cfg.Fetcher.StartupGrace)

	ticker := time.NewTicker(cfg.Fetcher.PollInterval)
	defer ticker.Stop()

	// let the management api and the broker come up before the first cycle
	select {
	case <-time.After(cfg.Fetcher.StartupGrace):
	case <-sigChan:
		config.Logger.Info("fetcher stopped before first cycle")
		return
	}

	for {
		if err := service.RunCycle(ctx); err != nil {
			config.Logger.Errorf("fetch cycle failed: %v", err)
		}

		select {
		case <-ticker.C:
		case <-sigChan:
			config.Logger.Info("received shutdown signal, shutting down fetcher...")
			cancel()
			return
		}
	}
}
