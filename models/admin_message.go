package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostAdminMessage is one rendered review message on one admin chat.
// Stored as its own document rather than a serialized map on the post so
// concurrent surfaces cannot clobber each other's handles.
// Collection: post_admin_messages (unique index on post_id+chat_id).
type PostAdminMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID    primitive.ObjectID `bson:"post_id" json:"post_id"`
	ChatID    int64              `bson:"chat_id" json:"chat_id"`
	MessageID int                `bson:"message_id" json:"message_id"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
