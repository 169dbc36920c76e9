package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"newswire/client"
	"newswire/eventbus"
	"newswire/events"
	"newswire/models"
	"newswire/transform"
)

type fakeAPI struct {
	post *models.PostDetail

	getErr       error
	upserted     []models.TranslationUpdate
	preprocessed []primitive.ObjectID
}

func (f *fakeAPI) GetPost(ctx context.Context, id primitive.ObjectID) (*models.PostDetail, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.post, nil
}

func (f *fakeAPI) UpsertTranslation(ctx context.Context, id primitive.ObjectID, u models.TranslationUpdate) (*models.PostTranslation, error) {
	f.upserted = append(f.upserted, u)
	return &models.PostTranslation{PostID: id, Language: u.Language}, nil
}

func (f *fakeAPI) MarkPreprocessed(ctx context.Context, id primitive.ObjectID) error {
	f.preprocessed = append(f.preprocessed, id)
	return nil
}

type fakeTranslator struct {
	result *transform.TitleResult
	err    error
}

func (f *fakeTranslator) TranslateTitle(ctx context.Context, title string) (*transform.TitleResult, error) {
	return f.result, f.err
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

func testPost() *models.PostDetail {
	return &models.PostDetail{
		Post: models.Post{
			ID:                primitive.NewObjectID(),
			TitleOriginal:     "Nuevo récord en computación cuántica",
			ImageURLsOriginal: []string{"https://ex.com/a.jpg"},
			Status:            models.StatusFetched,
		},
	}
}

func TestHandlePostCreated(t *testing.T) {
	post := testPost()
	api := &fakeAPI{post: post}
	bus := &fakeBus{}
	translator := &fakeTranslator{result: &transform.TitleResult{TitleTranslated: "New quantum computing record", QualityScore: 7}}
	s := NewPreprocessorService(api, translator, bus, "English")

	err := s.HandlePostCreated(context.Background(), events.PostCreatedPayload{PostID: post.ID})
	require.NoError(t, err)

	require.Len(t, api.upserted, 1)
	u := api.upserted[0]
	assert.Equal(t, "English", u.Language)
	require.NotNil(t, u.TitleTranslated)
	assert.Equal(t, "New quantum computing record", *u.TitleTranslated)
	require.NotNil(t, u.Score)
	assert.Equal(t, 7.0, *u.Score)
	require.NotNil(t, u.FeaturedImageURL)
	assert.Equal(t, "https://ex.com/a.jpg", *u.FeaturedImageURL)

	assert.Equal(t, []primitive.ObjectID{post.ID}, api.preprocessed)
	assert.Equal(t, []string{eventbus.TopicReview.Base()}, bus.published)
}

func TestHandlePostCreatedDropsMalformedPayload(t *testing.T) {
	api := &fakeAPI{}
	bus := &fakeBus{}
	s := NewPreprocessorService(api, &fakeTranslator{}, bus, "English")

	err := s.HandlePostCreated(context.Background(), events.PostCreatedPayload{})
	assert.NoError(t, err)
	assert.Empty(t, api.upserted)
	assert.Empty(t, bus.published)
}

func TestHandlePostCreatedDropsMissingPost(t *testing.T) {
	api := &fakeAPI{getErr: client.ErrNotFound}
	bus := &fakeBus{}
	s := NewPreprocessorService(api, &fakeTranslator{}, bus, "English")

	err := s.HandlePostCreated(context.Background(), events.PostCreatedPayload{PostID: primitive.NewObjectID()})
	assert.NoError(t, err)
	assert.Empty(t, bus.published)
}

func TestHandlePostCreatedRetriesTransientErrors(t *testing.T) {
	api := &fakeAPI{getErr: errors.New("connection refused")}
	bus := &fakeBus{}
	s := NewPreprocessorService(api, &fakeTranslator{}, bus, "English")

	err := s.HandlePostCreated(context.Background(), events.PostCreatedPayload{PostID: primitive.NewObjectID()})
	assert.Error(t, err)
}

func TestHandlePostCreatedTranslatorFailure(t *testing.T) {
	post := testPost()
	api := &fakeAPI{post: post}
	bus := &fakeBus{}
	translator := &fakeTranslator{err: errors.New("model overloaded")}
	s := NewPreprocessorService(api, translator, bus, "English")

	err := s.HandlePostCreated(context.Background(), events.PostCreatedPayload{PostID: post.ID})
	assert.Error(t, err)
	assert.Empty(t, api.preprocessed)
	assert.Empty(t, bus.published)
}
