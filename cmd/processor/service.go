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
	MarkReadyForFinalApproval(ctx context.Context, id primitive.ObjectID) error
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, content string, platforms []string) (*transform.ContentResult, error)
}

// ProcessorService consumes content_processing events and produces the
// per-platform rewrites the admin asked for.
type ProcessorService struct {
	api       managementAPI
	generator contentGenerator
	bus       eventbus.EventBus
	language  string
}

func NewProcessorService(api managementAPI, generator contentGenerator, bus eventbus.EventBus, language string) *ProcessorService {
	return &ProcessorService{
		api:       api,
		generator: generator,
		bus:       bus,
		language:  language,
	}
}

// HandleContentProcessing generates the requested platform variants and
// moves the post on to the final approval round.
func (s *ProcessorService) HandleContentProcessing(ctx context.Context, payload events.ContentProcessingPayload) error {
	if err := payload.Validate(); err != nil {
		config.Logger.Warnf("dropping malformed content_processing event: %v", err)
		return nil
	}

	detail, err := s.api.GetPost(ctx, payload.PostID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			config.Logger.Warnf("dropping content_processing event for missing post %s", payload.PostID.Hex())
			return nil
		}
		return err
	}

	result, err := s.generator.GenerateContent(ctx, detail.ContentOriginal, payload.Platforms)
	if err != nil {
		return err
	}

	update := models.TranslationUpdate{Language: s.language}
	if result.ContentTranslated != "" {
		update.ContentTranslated = &result.ContentTranslated
	}
	if result.ContentTelegram != "" {
		update.ContentTelegram = &result.ContentTelegram
	}
	if result.ContentInstagram != "" {
		update.ContentInstagram = &result.ContentInstagram
	}
	if result.ContentTwitter != "" {
		update.ContentTwitter = &result.ContentTwitter
	}

	if _, err := s.api.UpsertTranslation(ctx, detail.ID, update); err != nil {
		return err
	}

	if err := s.api.MarkReadyForFinalApproval(ctx, detail.ID); err != nil {
		return err
	}

	evt, err := eventbus.NewJSONEvent("", events.FinalApprovalPayload{PostID: detail.ID}, 0)
	if err != nil {
		return err
	}
	if err := s.bus.Publish(ctx, eventbus.TopicFinalApproval.Base(), evt); err != nil {
		return err
	}

	config.Logger.Infof("generated content for post %s (platforms=%v)", detail.ID.Hex(), payload.Platforms)
	return nil
}
