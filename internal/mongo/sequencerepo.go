package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const serverSequenceCounter = "order_events:server_sequence"

// SequenceRepo hands out server sequence numbers from a single counter
// document. The $inc findAndModify is the linearization point: two
// concurrent emitters can never observe or reuse the same value, across all
// orders and all producers.
type SequenceRepo struct {
	collection *mongo.Collection
}

func NewSequenceRepo(db *mongo.Database) *SequenceRepo {
	return &SequenceRepo{
		collection: db.Collection("counters"),
	}
}

func (r *SequenceRepo) Next(ctx context.Context) (int64, error) {
	filter := bson.M{"_id": serverSequenceCounter}
	update := bson.M{"$inc": bson.M{"value": int64(1)}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Value int64 `bson:"value"`
	}
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("cannot advance server sequence: %w", err)
	}

	return doc.Value, nil
}
