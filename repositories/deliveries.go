package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"newswire/models"
)

type DeliveryRepository struct {
	col *mongo.Collection
}

func NewDeliveryRepository(db *mongo.Database) *DeliveryRepository {
	return &DeliveryRepository{col: db.Collection("post_deliveries")}
}

func (r *DeliveryRepository) Insert(ctx context.Context, d *models.PostDelivery) error {
	d.DeliveredAt = time.Now()
	_, err := r.col.InsertOne(ctx, d)
	return err
}

func (r *DeliveryRepository) ListByPostID(ctx context.Context, postID primitive.ObjectID) ([]models.PostDelivery, error) {
	cur, err := r.col.Find(ctx, bson.M{"post_id": postID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.PostDelivery
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
