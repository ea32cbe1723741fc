package service

import (
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Sentinel errors shared by the record and sponsor services.
var (
	ErrInvalidID = errors.New("invalid identifier")
	ErrNotFound  = errors.New("not found")
	ErrNoUpdates = errors.New("no updates provided")
)

// parseID converts a hex identifier into an ObjectID before any store access.
func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
