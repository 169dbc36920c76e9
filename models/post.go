package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostStatus is the string-valued state of a post in the pipeline.
type PostStatus string

const (
	StatusFetched               PostStatus = "FETCHED"
	StatusPreprocessed          PostStatus = "PREPROCESSED"
	StatusPendingApproval       PostStatus = "PENDING_APPROVAL"
	StatusProcessingContent     PostStatus = "PROCESSING_CONTENT"
	StatusReadyForFinalApproval PostStatus = "READY_FOR_FINAL_APPROVAL"
	StatusApproved              PostStatus = "APPROVED"
	StatusPublished             PostStatus = "PUBLISHED"
	StatusRejected              PostStatus = "REJECTED"
)

// ErrInvalidTransition is returned when a status change is not allowed by
// the pipeline state machine.
var ErrInvalidTransition = errors.New("invalid post status transition")

// transitions lists the allowed next statuses per status. REJECTED is
// reachable from every non-terminal status and is handled in CanTransition
// directly.
var transitions = map[PostStatus][]PostStatus{
	StatusFetched:               {StatusPreprocessed},
	StatusPreprocessed:          {StatusPendingApproval},
	StatusPendingApproval:       {StatusProcessingContent, StatusApproved},
	StatusProcessingContent:     {StatusReadyForFinalApproval},
	StatusReadyForFinalApproval: {StatusPendingApproval, StatusApproved},
	StatusApproved:              {StatusPublished},
}

// TransitionOutcome classifies a requested status change.
type TransitionOutcome int

const (
	// TransitionNoop means the post already has the target status; the
	// request succeeds without a write. Redelivered transition requests
	// stay idempotent this way.
	TransitionNoop TransitionOutcome = iota
	TransitionApply
	TransitionConflict
)

// DecideTransition classifies from -> to. Same-status requests are
// checked before the transition table, so a repeated request never
// conflicts even when the table does not list the status as its own
// successor.
func DecideTransition(from, to PostStatus) TransitionOutcome {
	switch {
	case from == to:
		return TransitionNoop
	case CanTransition(from, to):
		return TransitionApply
	default:
		return TransitionConflict
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s PostStatus) IsTerminal() bool {
	return s == StatusPublished || s == StatusRejected
}

// CanTransition reports whether from -> to is a legal state change.
func CanTransition(from, to PostStatus) bool {
	if to == StatusRejected {
		return !from.IsTerminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Post is one ingested article and its processing state.
// Collection: posts (unique index on url_original).
type Post struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SourceID          primitive.ObjectID `bson:"source_id" json:"source_id"`
	Status            PostStatus         `bson:"status" json:"status"`
	CreatedAt         time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
	TitleOriginal     string             `bson:"title_original" json:"title_original"`
	ContentOriginal   string             `bson:"content_original" json:"content_original"`
	URLOriginal       string             `bson:"url_original" json:"url_original"`
	ImageURLsOriginal []string           `bson:"image_urls_original" json:"image_urls_original"`
}

// PostDetail is a post joined with its translations and admin message
// handles, as returned by GET /posts/{id}.
type PostDetail struct {
	Post          `bson:",inline"`
	Translations  []PostTranslation `json:"translations"`
	AdminMessages map[int64]int     `json:"admin_messages"`
}
