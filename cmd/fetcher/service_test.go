package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"newswire/client"
	"newswire/config"
	"newswire/eventbus"
	"newswire/extractor"
	"newswire/feeder"
	"newswire/models"
)

type fakeAPI struct {
	sources  []client.SourceDetail
	existing map[string]bool
	created  []client.CreatePostRequest

	createErr error
	listErr   error
}

func (f *fakeAPI) ListSources(ctx context.Context) ([]client.SourceDetail, error) {
	return f.sources, f.listErr
}

func (f *fakeAPI) PostExists(ctx context.Context, articleURL string) (bool, error) {
	return f.existing[articleURL], nil
}

func (f *fakeAPI) CreatePost(ctx context.Context, req client.CreatePostRequest) (*models.Post, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	return &models.Post{ID: primitive.NewObjectID(), URLOriginal: req.URLOriginal}, nil
}

type fakeBus struct {
	published []string
}

func (f *fakeBus) Publish(ctx context.Context, topic string, event eventbus.Event) error {
	f.published = append(f.published, topic)
	return nil
}

func (f *fakeBus) Subscribe(ctx context.Context, groupID string, topic eventbus.Topic, handler eventbus.EventHandler) error {
	return nil
}

func (f *fakeBus) StartRetryReinjector(ctx context.Context, groupID string, topic eventbus.Topic) error {
	return nil
}

func (f *fakeBus) Close() {}

func newTestService(api *fakeAPI, bus *fakeBus) *FetcherService {
	s := NewFetcherService(api, bus, config.FetcherConfig{EntryLimit: 10})
	s.fetchFeed = func(ctx context.Context, feedURL string, limit int) ([]feeder.FeedItem, error) {
		return []feeder.FeedItem{
			{Title: "A", Link: "https://ex.com/a", PublishedAt: time.Now()},
			{Title: "B", Link: "https://ex.com/b"},
			{Title: "bad", Link: "not-a-url"},
		}, nil
	}
	s.fetchArticle = func(ctx context.Context, pageURL string, renderJS bool) (*extractor.Article, error) {
		return &extractor.Article{Text: "body of " + pageURL, TopImage: "https://ex.com/img.jpg"}, nil
	}
	return s
}

func oneSource() []client.SourceDetail {
	return []client.SourceDetail{{
		Source: models.Source{ID: primitive.NewObjectID(), Name: "wire", URL: "https://ex.com/rss"},
	}}
}

func TestRunCycleIngestsNewEntries(t *testing.T) {
	api := &fakeAPI{sources: oneSource(), existing: map[string]bool{}}
	bus := &fakeBus{}
	s := newTestService(api, bus)

	require.NoError(t, s.RunCycle(context.Background()))

	require.Len(t, api.created, 2)
	assert.Equal(t, "https://ex.com/a", api.created[0].URLOriginal)
	assert.Equal(t, "body of https://ex.com/a", api.created[0].ContentOriginal)
	assert.Contains(t, api.created[0].ImageURLsOriginal, "https://ex.com/img.jpg")
	assert.Len(t, bus.published, 2)
	assert.Equal(t, eventbus.TopicPostCreated.Base(), bus.published[0])
}

func TestRunCycleSkipsExistingPosts(t *testing.T) {
	api := &fakeAPI{sources: oneSource(), existing: map[string]bool{"https://ex.com/a": true}}
	bus := &fakeBus{}
	s := newTestService(api, bus)

	require.NoError(t, s.RunCycle(context.Background()))

	require.Len(t, api.created, 1)
	assert.Equal(t, "https://ex.com/b", api.created[0].URLOriginal)
}

func TestRunCycleSkipsEmptyBodies(t *testing.T) {
	api := &fakeAPI{sources: oneSource(), existing: map[string]bool{}}
	bus := &fakeBus{}
	s := newTestService(api, bus)
	s.fetchArticle = func(ctx context.Context, pageURL string, renderJS bool) (*extractor.Article, error) {
		return &extractor.Article{Text: ""}, nil
	}

	require.NoError(t, s.RunCycle(context.Background()))
	assert.Empty(t, api.created)
	assert.Empty(t, bus.published)
}

func TestRunCycleTreatsConflictAsSkip(t *testing.T) {
	api := &fakeAPI{sources: oneSource(), existing: map[string]bool{}, createErr: client.ErrConflict}
	bus := &fakeBus{}
	s := newTestService(api, bus)

	require.NoError(t, s.RunCycle(context.Background()))
	assert.Empty(t, bus.published)
}

func TestRunCycleNoSources(t *testing.T) {
	api := &fakeAPI{}
	bus := &fakeBus{}
	s := newTestService(api, bus)

	require.NoError(t, s.RunCycle(context.Background()))
	assert.Empty(t, bus.published)
}

func TestRunCycleSurfacesListError(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("api down")}
	bus := &fakeBus{}
	s := NewFetcherService(api, bus, config.FetcherConfig{})
	s.retryDelay = time.Millisecond

	err := s.RunCycle(context.Background())
	assert.Error(t, err)
}
