package alert

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore persists alerts in the "alerts" collection.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongoStore creates an alert store over the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("alerts")}
}

// Insert stores the alert and fills in its generated ID.
func (s *MongoStore) Insert(ctx context.Context, a *Alert) error {
	res, err := s.col.InsertOne(ctx, a)
	if err != nil {
		return fmt.Errorf("inserting alert: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = id
	}
	return nil
}

// MarkSent flips the alert's status from pending to sent.
func (s *MongoStore) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": StatusSent}})
	if err != nil {
		return fmt.Errorf("marking alert sent: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("alert %s not found", id.Hex())
	}
	return nil
}
