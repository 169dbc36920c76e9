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

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// Insert creates a new post in status FETCHED. The unique index on
// url_original makes a concurrent duplicate fail with a duplicate-key
// error, which callers surface as a conflict.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) (*models.Post, error) {
	now := time.Now()
	p.Status = models.StatusFetched
	p.CreatedAt = now
	p.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return p, nil
}

// ExistsByURL reports whether a post with the given canonical URL exists.
func (r *PostRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"url_original": url},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByStatus returns posts in the given status, newest first.
func (r *PostRepository) ListByStatus(ctx context.Context, status models.PostStatus) ([]models.Post, error) {
	cur, err := r.col.Find(ctx, bson.M{"status": status},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Post
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TransitionStatus moves a post to the target status. A same-status call
// is a no-op success, which keeps redelivered transition requests
// idempotent. An illegal transition returns models.ErrInvalidTransition.
// The update is conditioned on the observed status, so a concurrent
// transition makes the write a no-op instead of clobbering a newer state.
func (r *PostRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, to models.PostStatus) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}

	switch models.DecideTransition(p.Status, to) {
	case models.TransitionNoop:
		return &p, nil
	case models.TransitionConflict:
		return &p, models.ErrInvalidTransition
	}

	after := options.After
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": p.Status},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after})
	if res.Err() == mongo.ErrNoDocuments {
		// Lost a race: someone else moved the post first. Report the
		// fresh state as a conflict.
		if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
			return nil, err
		}
		if p.Status == to {
			return &p, nil
		}
		return &p, models.ErrInvalidTransition
	}
	if res.Err() != nil {
		return nil, res.Err()
	}

	var updated models.Post
	if err := res.Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
