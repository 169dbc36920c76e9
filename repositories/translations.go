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

type TranslationRepository struct {
	col *mongo.Collection
}

func NewTranslationRepository(db *mongo.Database) *TranslationRepository {
	return &TranslationRepository{col: db.Collection("post_translations")}
}

// UpsertMerge creates or merges the translation for (post_id, language).
// Only the populated fields of the update are written, so a later
// per-platform pass never blanks out earlier content.
func (r *TranslationRepository) UpsertMerge(ctx context.Context, postID primitive.ObjectID, u models.TranslationUpdate) (*models.PostTranslation, error) {
	set := u.SetFields()
	set["updated_at"] = time.Now()

	filter := bson.M{"post_id": postID, "language": u.Language}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"post_id":  postID,
			"language": u.Language,
		},
	}

	after := options.After
	res := r.col.FindOneAndUpdate(ctx, filter, update, &options.FindOneAndUpdateOptions{
		ReturnDocument: &after,
		Upsert:         boolPtr(true),
	})
	if res.Err() != nil {
		return nil, res.Err()
	}

	var t models.PostTranslation
	if err := res.Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByPostID returns all translations of a post.
func (r *TranslationRepository) ListByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.PostTranslation, error) {
	cur, err := r.col.Find(ctx, bson.M{"post_id": postID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PostTranslation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func boolPtr(b bool) *bool { return &b }
