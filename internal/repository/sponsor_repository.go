package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/keris/scholar-backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// SponsorRepository reads sponsor documents.
type SponsorRepository interface {
	FindAll(ctx context.Context) ([]model.Sponsor, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*model.Sponsor, error)
}

type sponsorRepository struct {
	coll *mongo.Collection
}

func NewSponsorRepository(coll *mongo.Collection) SponsorRepository {
	return &sponsorRepository{coll: coll}
}

func (r *sponsorRepository) FindAll(ctx context.Context) ([]model.Sponsor, error) {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find sponsors: %w", err)
	}

	sponsors := []model.Sponsor{}
	if err := cursor.All(ctx, &sponsors); err != nil {
		return nil, fmt.Errorf("decode sponsors: %w", err)
	}
	return sponsors, nil
}

func (r *sponsorRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Sponsor, error) {
	s := &model.Sponsor{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find sponsor %s: %w", id.Hex(), err)
	}
	return s, nil
}
