package main

import (
	"context"
	"errors"
	"time"

	"newswire/client"
	"newswire/config"
	"newswire/eventbus"
	"newswire/events"
	"newswire/extractor"
	"newswire/feeder"
	"newswire/models"
	"newswire/retry"
)

// managementAPI is the slice of the management client the fetcher uses.
type managementAPI interface {
	ListSources(ctx context.Context) ([]client.SourceDetail, error)
	PostExists(ctx context.Context, articleURL string) (bool, error)
	CreatePost(ctx context.Context, req client.CreatePostRequest) (*models.Post, error)
}

// FetcherService polls every registered source and turns new feed entries
// into stored posts plus a post_created event.
type FetcherService struct {
	api managementAPI
	bus eventbus.EventBus
	cfg config.FetcherConfig

	// both are swappable in tests
	fetchFeed    func(ctx context.Context, feedURL string, limit int) ([]feeder.FeedItem, error)
	fetchArticle func(ctx context.Context, pageURL string, renderJS bool) (*extractor.Article, error)

	retryDelay time.Duration
}

func NewFetcherService(api managementAPI, bus eventbus.EventBus, cfg config.FetcherConfig) *FetcherService {
	return &FetcherService{
		api:          api,
		bus:          bus,
		cfg:          cfg,
		fetchFeed:    feeder.FetchFeed,
		fetchArticle: extractor.FetchArticle,
		retryDelay:   2 * time.Second,
	}
}

// RunCycle fetches all sources once. A failing source never blocks the
// others.
func (s *FetcherService) RunCycle(ctx context.Context) error {
	var sources []client.SourceDetail
	err := retry.Do(ctx, "list sources", 3, s.retryDelay, func(ctx context.Context) error {
		var err error
		sources, err = s.api.ListSources(ctx)
		return err
	})
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		config.Logger.Warn("no sources registered, nothing to fetch")
		return nil
	}

	for _, src := range sources {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.collectSource(ctx, src); err != nil {
			config.Logger.Errorf("failed to collect source %s: %v", src.Name, err)
		}
	}

	return nil
}

func (s *FetcherService) collectSource(ctx context.Context, src client.SourceDetail) error {
	items, err := s.fetchFeed(ctx, src.URL, s.cfg.EntryLimit)
	if err != nil {
		return err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if !extractor.ValidArticleURL(item.Link) {
			config.Logger.Warnf("skipping entry with unusable link %q (source=%s)", item.Link, src.Name)
			continue
		}

		exists, err := s.api.PostExists(ctx, item.Link)
		if err != nil {
			config.Logger.Errorf("failed to check post existence (link=%s): %v", item.Link, err)
			continue
		}
		if exists {
			continue
		}

		if err := s.ingestEntry(ctx, src, item); err != nil {
			config.Logger.Errorf("failed to ingest entry (source=%s, link=%s): %v", src.Name, item.Link, err)
		}
	}

	return nil
}

func (s *FetcherService) ingestEntry(ctx context.Context, src client.SourceDetail, item feeder.FeedItem) error {
	article, err := s.fetchArticle(ctx, item.Link, s.cfg.RenderJS)
	if err != nil {
		return err
	}
	if article.Text == "" {
		config.Logger.Warnf("skipping entry with empty body (link=%s)", item.Link)
		return nil
	}

	images := item.ImageURLs
	if article.TopImage != "" {
		images = append([]string{article.TopImage}, images...)
	}

	post, err := s.api.CreatePost(ctx, client.CreatePostRequest{
		SourceID:          src.ID.Hex(),
		TitleOriginal:     item.Title,
		ContentOriginal:   article.Text,
		URLOriginal:       item.Link,
		ImageURLsOriginal: extractor.FilterImageURLs(images),
	})
	if err != nil {
		// another cycle or replica got there first
		if errors.Is(err, client.ErrConflict) {
			return nil
		}
		return err
	}

	evt, err := eventbus.NewJSONEvent("", events.PostCreatedPayload{PostID: post.ID}, 0)
	if err != nil {
		return err
	}
	if err := s.bus.Publish(ctx, eventbus.TopicPostCreated.Base(), evt); err != nil {
		return err
	}

	config.Logger.Infof("ingested %q from %s (post=%s)", item.Title, src.Name, post.ID.Hex())
	return nil
}
