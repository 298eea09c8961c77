package auth

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const collectionName = "users"

// MongoUserStore is the document store implementation of UserStore.
type MongoUserStore struct {
	col *mongo.Collection
}

// NewMongoUserStore creates a store over the given database.
func NewMongoUserStore(db *mongo.Database) *MongoUserStore {
	return &MongoUserStore{col: db.Collection(collectionName)}
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &u, nil
}

func (s *MongoUserStore) Insert(ctx context.Context, u *User) error {
	if _, err := s.col.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) Update(ctx context.Context, email string, u *User) error {
	update := bson.M{"$set": bson.M{
		"firstName":       u.FirstName,
		"lastName":        u.LastName,
		"hashed_password": u.HashedPassword,
	}}

	res, err := s.col.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
