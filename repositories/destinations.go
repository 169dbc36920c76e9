package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"newswire/models"
)

type DestinationRepository struct {
	col *mongo.Collection
}

func NewDestinationRepository(db *mongo.Database) *DestinationRepository {
	return &DestinationRepository{col: db.Collection("destinations")}
}

func (r *DestinationRepository) Insert(ctx context.Context, d *models.Destination) (*models.Destination, error) {
	d.CreatedAt = time.Now()
	if d.Credentials == nil {
		d.Credentials = map[string]string{}
	}
	res, err := r.col.InsertOne(ctx, d)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		d.ID = oid
	}
	return d, nil
}

func (r *DestinationRepository) List(ctx context.Context) ([]models.Destination, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Destination
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FindByIDs resolves a set of destination ids (a source's links).
func (r *DestinationRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Destination, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Destination
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
