package main

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"newswire/client"
	"newswire/config"
	"newswire/eventbus"
	"newswire/events"
	"newswire/models"
	"newswire/transform"
)

type managementAPI interface {
	GetPost(ctx context.Context, id primitive.ObjectID) (*models.PostDetail, error)
	UpsertTranslation(ctx context.Context, id primitive.ObjectID, u models.TranslationUpdate) (*models.PostTranslation, error)
	MarkPreprocessed(ctx context.Context, id primitive.ObjectID) error
}

type titleTranslator interface {
	TranslateTitle(ctx context.Context, title string) (*transform.TitleResult, error)
}

// PreprocessorService consumes post_created events, translates and scores
// the title, then asks for the first human review.
type PreprocessorService struct {
	api        managementAPI
	translator titleTranslator
	bus        eventbus.EventBus
	language   string
}

func NewPreprocessorService(api managementAPI, translator titleTranslator, bus eventbus.EventBus, language string) *PreprocessorService {
	return &PreprocessorService{
		api:        api,
		translator: translator,
		bus:        bus,
		language:   language,
	}
}

// HandlePostCreated runs the title pass for one new post. Returning nil
// acknowledges the message; errors go through the delayed retry schedule.
func (s *PreprocessorService) HandlePostCreated(ctx context.Context, payload events.PostCreatedPayload) error {
	if err := payload.Validate(); err != nil {
		config.Logger.Warnf("dropping malformed post_created event: %v", err)
		return nil
	}

	detail, err := s.api.GetPost(ctx, payload.PostID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			config.Logger.Warnf("dropping post_created event for missing post %s", payload.PostID.Hex())
			return nil
		}
		return err
	}

	result, err := s.translator.TranslateTitle(ctx, detail.TitleOriginal)
	if err != nil {
		return err
	}

	update := models.TranslationUpdate{
		Language:        s.language,
		Score:           &result.QualityScore,
		TitleTranslated: &result.TitleTranslated,
	}
	if len(detail.ImageURLsOriginal) > 0 {
		update.FeaturedImageURL = &detail.ImageURLsOriginal[0]
	}

	if _, err := s.api.UpsertTranslation(ctx, detail.ID, update); err != nil {
		return err
	}

	if err := s.api.MarkPreprocessed(ctx, detail.ID); err != nil {
		return err
	}

	evt, err := eventbus.NewJSONEvent("", events.ReviewRequestedPayload{PostID: detail.ID}, 0)
	if err != nil {
		return err
	}
	if err := s.bus.Publish(ctx, eventbus.TopicReview.Base(), evt); err != nil {
		return err
	}

	config.Logger.Infof("preprocessed post %s (score=%.1f)", detail.ID.Hex(), result.QualityScore)
	return nil
}
