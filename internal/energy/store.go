package energy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const collectionName = "energy"

// Store provides CRUD and filtered listing over the energy collection.
type Store struct {
	col    *mongo.Collection
	logger *zap.Logger
}

// NewStore creates a store over the given database.
func NewStore(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		col:    db.Collection(collectionName),
		logger: logger,
	}
}

// List returns one page of records matching the filter, in store-native
// order, plus the total match count ignoring pagination. Page and limit
// must both be >= 1.
func (s *Store) List(ctx context.Context, f ListFilter, page, limit int) (ListResult, error) {
	query, dateErr := buildListFilter(f)
	if dateErr != nil {
		// The request is still served; the bad filter is just dropped.
		s.logger.Warn("bad date filter", zap.Error(dateErr))
	}

	total, err := s.col.CountDocuments(ctx, query)
	if err != nil {
		return ListResult{}, fmt.Errorf("counting energy records: %w", err)
	}

	skip := int64((page - 1) * limit)
	cursor, err := s.col.Find(ctx, query, options.Find().SetSkip(skip).SetLimit(int64(limit)))
	if err != nil {
		return ListResult{}, fmt.Errorf("listing energy records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0, limit)
	if err := cursor.All(ctx, &records); err != nil {
		return ListResult{}, fmt.Errorf("decoding energy records: %w", err)
	}

	return ListResult{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Records: records,
	}, nil
}

// Create inserts one record and returns its generated identifier. The
// date is normalized to midnight UTC of its calendar day.
func (s *Store) Create(ctx context.Context, r Record) (string, error) {
	r.ID = primitive.NilObjectID
	r.Date = normalizeDate(r.Date)

	res, err := s.col.InsertOne(ctx, r)
	if err != nil {
		return "", fmt.Errorf("inserting energy record: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id.Hex(), nil
}

// Update replaces all fields of the record at id. Returns ErrNotFound
// when the id is absent or malformed.
func (s *Store) Update(ctx context.Context, id string, r Record) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	r.Date = normalizeDate(r.Date)
	update := bson.M{"$set": bson.M{
		"country":   r.Country,
		"type":      r.Type,
		"source":    r.Source,
		"value_kwh": r.ValueKWh,
		"date":      r.Date,
	}}

	res, err := s.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("updating energy record: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record at id. Returns ErrNotFound when the id is
// absent or malformed.
func (s *Store) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("deleting energy record: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed wipes the collection and bulk-inserts the given records,
// returning the inserted count. Destructive: callers must obtain an
// explicit confirmation from the operator before invoking it.
func (s *Store) Seed(ctx context.Context, records []Record) (int, error) {
	op := uuid.New().String()
	s.logger.Info("reseeding energy collection",
		zap.String("op", op),
		zap.Int("records", len(records)))

	if _, err := s.col.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, fmt.Errorf("clearing energy collection: %w", err)
	}

	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(records))
	for i, r := range records {
		r.ID = primitive.NilObjectID
		docs[i] = r
	}

	res, err := s.col.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("bulk inserting energy records: %w", err)
	}

	s.logger.Info("reseed complete",
		zap.String("op", op),
		zap.Int("inserted", len(res.InsertedIDs)))

	return len(res.InsertedIDs), nil
}
