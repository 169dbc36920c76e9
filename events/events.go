package events

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidPayload marks a message whose shape is wrong (e.g. missing
// post_id). Consumers drop such messages instead of retrying them.
var ErrInvalidPayload = errors.New("invalid event payload")

// PostCreatedPayload rides post_created_queue.
type PostCreatedPayload struct {
	PostID primitive.ObjectID `json:"post_id"`
}

func (p PostCreatedPayload) Validate() error {
	if p.PostID.IsZero() {
		return ErrInvalidPayload
	}
	return nil
}

// ReviewRequestedPayload rides review_notifications_queue after
// preprocessing.
type ReviewRequestedPayload struct {
	PostID primitive.ObjectID `json:"post_id"`
}

func (p ReviewRequestedPayload) Validate() error {
	if p.PostID.IsZero() {
		return ErrInvalidPayload
	}
	return nil
}

// ContentProcessingPayload rides content_processing_queue. Platforms is
// the subset of per-platform variants the admin requested.
type ContentProcessingPayload struct {
	PostID    primitive.ObjectID `json:"post_id"`
	Platforms []string           `json:"platforms"`
}

func (p ContentProcessingPayload) Validate() error {
	if p.PostID.IsZero() || len(p.Platforms) == 0 {
		return ErrInvalidPayload
	}
	return nil
}

// FinalApprovalPayload rides final_approval_notifications_queue after
// content processing.
type FinalApprovalPayload struct {
	PostID primitive.ObjectID `json:"post_id"`
}

func (p FinalApprovalPayload) Validate() error {
	if p.PostID.IsZero() {
		return ErrInvalidPayload
	}
	return nil
}

// PostApprovedPayload rides post_approval_queue.
type PostApprovedPayload struct {
	PostID primitive.ObjectID `json:"post_id"`
}

func (p PostApprovedPayload) Validate() error {
	if p.PostID.IsZero() {
		return ErrInvalidPayload
	}
	return nil
}

// PostRejectedPayload rides post_rejected_queue. AdminMessages carries the
// recorded {chat_id: message_id} handles so every surface can retract its
// review message.
type PostRejectedPayload struct {
	PostID        primitive.ObjectID `json:"post_id"`
	AdminMessages map[int64]int      `json:"admin_messages"`
}

func (p PostRejectedPayload) Validate() error {
	if p.PostID.IsZero() {
		return ErrInvalidPayload
	}
	return nil
}
