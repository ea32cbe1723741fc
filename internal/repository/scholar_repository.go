package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/keris/scholar-backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// ScholarRepository persists scholar records.
type ScholarRepository interface {
	FindAll(ctx context.Context) ([]model.Scholar, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Scholar, error)
	Insert(ctx context.Context, scholar *model.Scholar) (*model.InsertResult, error)
	// UpdateFields applies fields with a single $set on the matching document.
	UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*model.UpdateResult, error)
	// Delete removes the matching document and reports how many were deleted.
	Delete(ctx context.Context, id bson.ObjectID) (int64, error)
}

type scholarRepository struct {
	coll *mongo.Collection
}

// NewScholarRepository creates a ScholarRepository backed by coll.
func NewScholarRepository(coll *mongo.Collection) ScholarRepository {
	return &scholarRepository{coll: coll}
}

func (r *scholarRepository) FindAll(ctx context.Context) ([]model.Scholar, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find scholars: %w", err)
	}

	scholars := []model.Scholar{}
	if err := cursor.All(ctx, &scholars); err != nil {
		return nil, fmt.Errorf("decode scholars: %w", err)
	}
	return scholars, nil
}

func (r *scholarRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Scholar, error) {
	s := &model.Scholar{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find scholar %s: %w", id.Hex(), err)
	}
	return s, nil
}

func (r *scholarRepository) Insert(ctx context.Context, scholar *model.Scholar) (*model.InsertResult, error) {
	res, err := r.coll.InsertOne(ctx, scholar)
	if err != nil {
		return nil, fmt.Errorf("insert scholar: %w", err)
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert scholar: unexpected id type %T", res.InsertedID)
	}
	scholar.ID = id

	return &model.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (r *scholarRepository) UpdateFields(ctx context.Context, id bson.ObjectID, fields bson.M) (*model.UpdateResult, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return nil, fmt.Errorf("update scholar %s: %w", id.Hex(), err)
	}

	return &model.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}

func (r *scholarRepository) Delete(ctx context.Context, id bson.ObjectID) (int64, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, fmt.Errorf("delete scholar %s: %w", id.Hex(), err)
	}
	return res.DeletedCount, nil
}
