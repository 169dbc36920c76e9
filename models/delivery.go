package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostDelivery records the outcome of one publish attempt to one
// destination, so partial publish failures stay visible and retryable.
// Collection: post_deliveries.
type PostDelivery struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID        primitive.ObjectID `bson:"post_id" json:"post_id"`
	DestinationID primitive.ObjectID `bson:"destination_id" json:"destination_id"`
	Platform      Platform           `bson:"platform" json:"platform"`
	OK            bool               `bson:"ok" json:"ok"`
	Error         string             `bson:"error,omitempty" json:"error,omitempty"`
	DeliveredAt   time.Time          `bson:"delivered_at" json:"delivered_at"`
}
