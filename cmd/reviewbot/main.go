package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"newswire/client"
	"newswire/config"
	"newswire/eventbus"
	"newswire/events"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	if cfg.AdminChannel.BotToken == "" || len(cfg.AdminChannel.ChatIDs) == 0 {
		config.Logger.Error("TELEGRAM_ADMIN_BOT_TOKEN and TELEGRAM_ADMIN_CHAT_IDS are required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, t := range []eventbus.Topic{eventbus.TopicReview, eventbus.TopicFinalApproval, eventbus.TopicContentProcessing, eventbus.TopicPostApproval, eventbus.TopicPostRejected} {
		if err := eventbus.EnsureTopics(cfg.Bus.Brokers, t, 3); err != nil {
			config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
		}
	}

	bus, err := eventbus.NewKafkaEventBus(cfg.Bus.Brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	tg, err := tgbotapi.NewBotAPI(cfg.AdminChannel.BotToken)
	if err != nil {
		config.Logger.Errorf("failed to create telegram bot: %v", err)
		os.Exit(1)
	}
	config.Logger.Infof("authorized on telegram account %s", tg.Self.UserName)

	api := client.New(cfg.Management.BaseURL)
	bot := NewReviewBot(tg, api, bus, cfg.AdminChannel.ChatIDs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	subscribe := func(topic eventbus.Topic, run func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(); err != nil && err != context.Canceled {
				config.Logger.Errorf("eventbus subscribe error on %s: %v", topic.Base(), err)
			}
		}()
	}

	subscribe(eventbus.TopicReview, func() error {
		return eventbus.SubscribeJSON(ctx, bus, cfg.Bus.GroupID, eventbus.TopicReview,
			func(ctx context.Context, payload events.ReviewRequestedPayload, _ eventbus.Event) error {
				return bot.HandleReviewRequested(ctx, payload)
			})
	})

	subscribe(eventbus.TopicFinalApproval, func() error {
		return eventbus.SubscribeJSON(ctx, bus, cfg.Bus.GroupID, eventbus.TopicFinalApproval,
			func(ctx context.Context, payload events.FinalApprovalPayload, _ eventbus.Event) error {
				return bot.HandleFinalApproval(ctx, payload)
			})
	})

	subscribe(eventbus.TopicPostRejected, func() error {
		return eventbus.SubscribeJSON(ctx, bus, cfg.Bus.GroupID, eventbus.TopicPostRejected,
			func(ctx context.Context, payload events.PostRejectedPayload, _ eventbus.Event) error {
				return bot.HandlePostRejected(ctx, payload)
			})
	})

	// callback button loop
	wg.Add(1)
	go func() {
		defer wg.Done()

		u := tgbotapi.NewUpdate(0)
		u.Timeout = 60
		updates := tg.GetUpdatesChan(u)

		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.CallbackQuery == nil {
					continue
				}
				if update.CallbackQuery.Message != nil && !bot.allowedChat(update.CallbackQuery.Message.Chat.ID) {
					config.Logger.Warnf("ignoring callback from unknown chat %d", update.CallbackQuery.Message.Chat.ID)
					continue
				}
				bot.HandleCallback(ctx, update.CallbackQuery)
			}
		}
	}()

	config.Logger.Info("review bot started")

	<-sigChan
	config.Logger.Info("received shutdown signal, shutting down review bot...")

	tg.StopReceivingUpdates()
	cancel()
	wg.Wait()

	config.Logger.Info("review bot stopped")
}
