package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Source is a polled content feed.
// Collection: sources (unique indexes on name and url).
type Source struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name           string               `bson:"name" json:"name"`
	URL            string               `bson:"url" json:"url"`
	DestinationIDs []primitive.ObjectID `bson:"destination_ids" json:"destination_ids"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
}
