package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"newswire/models"
)

type SourceRepository struct {
	col *mongo.Collection
}

func NewSourceRepository(db *mongo.Database) *SourceRepository {
	return &SourceRepository{col: db.Collection("sources")}
}

func (r *SourceRepository) Insert(ctx context.Context, s *models.Source) (*models.Source, error) {
	s.CreatedAt = time.Now()
	if s.DestinationIDs == nil {
		s.DestinationIDs = []primitive.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, s)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		s.ID = oid
	}
	return s, nil
}

func (r *SourceRepository) List(ctx context.Context) ([]models.Source, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Source
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SourceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Source, error) {
	var s models.Source
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LinkDestination attaches a destination to a source. $addToSet keeps the
// link set duplicate-free.
func (r *SourceRepository) LinkDestination(ctx context.Context, sourceID, destinationID primitive.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, sourceID, bson.M{
		"$addToSet": bson.M{"destination_ids": destinationID},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
