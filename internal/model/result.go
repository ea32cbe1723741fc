package model

import "go.mongodb.org/mongo-driver/v2/bson"

// InsertResult is the store acknowledgment of a scholar insert.
type InsertResult struct {
	Acknowledged bool          `json:"acknowledged"`
	InsertedID   bson.ObjectID `json:"insertedId"`
}

// UpdateResult is the store acknowledgment of a partial scholar update.
type UpdateResult struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}
