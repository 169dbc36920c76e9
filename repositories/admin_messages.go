package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newswire/models"
)

type AdminMessageRepository struct {
	col *mongo.Collection
}

func NewAdminMessageRepository(db *mongo.Database) *AdminMessageRepository {
	return &AdminMessageRepository{col: db.Collection("post_admin_messages")}
}

// UpsertHandle records (or refreshes) one chat's message handle for a post.
func (r *AdminMessageRepository) UpsertHandle(ctx context.Context, postID primitive.ObjectID, chatID int64, messageID int) error {
	filter := bson.M{"post_id": postID, "chat_id": chatID}
	update := bson.M{
		"$set": bson.M{
			"message_id": messageID,
			"updated_at": time.Now(),
		},
		"$setOnInsert": bson.M{
			"post_id": postID,
			"chat_id": chatID,
		},
	}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// MapByPostID returns the post's {chat_id: message_id} handle map.
func (r *AdminMessageRepository) MapByPostID(ctx context.Context, postID primitive.ObjectID) (map[int64]int, error) {
	cur, err := r.col.Find(ctx, bson.M{"post_id": postID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	handles := map[int64]int{}
	var m models.PostAdminMessage
	for cur.Next(ctx) {
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		handles[m.ChatID] = m.MessageID
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return handles, nil
}

// DeleteByPostID drops all handles of a post (after a rejection broadcast).
func (r *AdminMessageRepository) DeleteByPostID(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"post_id": postID})
	return err
}
