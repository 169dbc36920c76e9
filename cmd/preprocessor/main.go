package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"newswire/client"
	"newswire/config"
	"newswire/eventbus"
	"newswire/events"
	"newswire/transform"
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
	if err := eventbus.EnsureTopics(cfg.Bus.Brokers, eventbus.TopicReview, 3); err != nil {
		config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
	}

	bus, err := eventbus.NewKafkaEventBus(cfg.Bus.Brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	translator, err := transform.NewTranslator(ctx)
	if err != nil {
		config.Logger.Errorf("failed to create translator: %v", err)
		os.Exit(1)
	}

	api := client.New(cfg.Management.BaseURL)
	service := NewPreprocessorService(api, translator, bus, cfg.Gemini.TargetLanguage)

	config.Logger.Info("starting preprocessor service...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := eventbus.SubscribeJSON(ctx, bus, cfg.Bus.GroupID, eventbus.TopicPostCreated,
			func(ctx context.Context, payload events.PostCreatedPayload, _ eventbus.Event) error {
				return service.HandlePostCreated(ctx, payload)
			})
		if err != nil && err != context.Canceled {
			config.Logger.Errorf("eventbus subscribe error: %v", err)
		}
	}()

	<-sigChan
	config.Logger.Info("received shutdown signal, shutting down preprocessor service...")

	cancel()
	wg.Wait()

	config.Logger.Info("preprocessor service stopped")
}
