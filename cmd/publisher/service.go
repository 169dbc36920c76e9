package main

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"newswire/client"
	"newswire/config"
	"newswire/events"
	"newswire/models"
)

type managementAPI interface {
	ListSources(ctx context.Context) ([]client.SourceDetail, error)
	GetPost(ctx context.Context, id primitive.ObjectID) (*models.PostDetail, error)
	RecordDelivery(ctx context.Context, id primitive.ObjectID, receipt client.DeliveryReceipt) error
	MarkPublished(ctx context.Context, id primitive.ObjectID) error
}

// platformPublisher delivers one post to one destination.
type platformPublisher interface {
	Deliver(ctx context.Context, dest models.Destination, detail *models.PostDetail) error
}

// PublisherService consumes approved posts and fans them out to every
// destination linked to the post's source.
type PublisherService struct {
	api        managementAPI
	publishers map[models.Platform]platformPublisher
}

func NewPublisherService(api managementAPI, publishers map[models.Platform]platformPublisher) *PublisherService {
	return &PublisherService{
		api:        api,
		publishers: publishers,
	}
}

// HandlePostApproved delivers the post everywhere, records a receipt per
// destination, and marks the post published once at least one delivery
// landed. A fully failed fan-out goes back through the retry schedule.
func (s *PublisherService) HandlePostApproved(ctx context.Context, payload events.PostApprovedPayload) error {
	if err := payload.Validate(); err != nil {
		config.Logger.Warnf("dropping malformed approval event: %v", err)
		return nil
	}

	detail, err := s.api.GetPost(ctx, payload.PostID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			config.Logger.Warnf("dropping approval event for missing post %s", payload.PostID.Hex())
			return nil
		}
		return err
	}

	// already published by a previous attempt
	if detail.Status == models.StatusPublished {
		return nil
	}

	destinations, err := s.destinationsFor(ctx, detail.SourceID)
	if err != nil {
		return err
	}
	if len(destinations) == 0 {
		config.Logger.Warnf("post %s has no destinations, marking published anyway", detail.ID.Hex())
		return s.api.MarkPublished(ctx, detail.ID)
	}

	delivered := 0
	for _, dest := range destinations {
		ok, deliverErr := s.deliverOne(ctx, dest, detail)
		if ok {
			delivered++
		}

		receipt := client.DeliveryReceipt{
			DestinationID: dest.ID.Hex(),
			Platform:      dest.Platform,
			OK:            ok,
		}
		if deliverErr != nil {
			receipt.Error = deliverErr.Error()
		}
		if err := s.api.RecordDelivery(ctx, detail.ID, receipt); err != nil {
			config.Logger.Errorf("failed to record delivery receipt (post=%s, dest=%s): %v", detail.ID.Hex(), dest.Name, err)
		}
	}

	if delivered == 0 {
		return fmt.Errorf("post %s could not be delivered to any of %d destinations", detail.ID.Hex(), len(destinations))
	}

	if err := s.api.MarkPublished(ctx, detail.ID); err != nil {
		return err
	}

	config.Logger.Infof("published post %s to %d/%d destinations", detail.ID.Hex(), delivered, len(destinations))
	return nil
}

func (s *PublisherService) deliverOne(ctx context.Context, dest models.Destination, detail *models.PostDetail) (bool, error) {
	pub, ok := s.publishers[dest.Platform]
	if !ok {
		err := fmt.Errorf("no publisher for platform %s", dest.Platform)
		config.Logger.Errorf("skipping destination %s: %v", dest.Name, err)
		return false, err
	}

	if err := pub.Deliver(ctx, dest, detail); err != nil {
		config.Logger.Errorf("delivery to %s (%s) failed: %v", dest.Name, dest.Platform, err)
		return false, err
	}
	return true, nil
}

func (s *PublisherService) destinationsFor(ctx context.Context, sourceID primitive.ObjectID) ([]models.Destination, error) {
	sources, err := s.api.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		if src.ID == sourceID {
			return src.Destinations, nil
		}
	}
	return nil, fmt.Errorf("source %s not found", sourceID.Hex())
}
