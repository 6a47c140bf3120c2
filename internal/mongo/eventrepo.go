package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/orderledger/internal/ledger"
)

// EventRepo is the append-only event log collection. Inserts are idempotent
// by event id (the collection primary key); nothing ever updates or deletes
// an admitted event.
type EventRepo struct {
	collection *mongo.Collection
}

func NewEventRepo(db *mongo.Database) *EventRepo {
	return &EventRepo{
		collection: db.Collection("order_events"),
	}
}

// EnsureIndexes creates the ordering indexes used by replay and catch-up
// sync.
func (r *EventRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}, {Key: "server_sequence", Value: 1}}},
		{Keys: bson.D{{Key: "location_id", Value: 1}, {Key: "server_sequence", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("cannot create event indexes: %w", err)
	}
	return nil
}

func (r *EventRepo) Insert(ctx context.Context, event *ledger.Event) error {
	if event == nil {
		return fmt.Errorf("event is nil")
	}

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ledger.ErrDuplicateEvent
		}
		return fmt.Errorf("cannot insert event: %w", err)
	}

	return nil
}

func (r *EventRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ledger.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "server_sequence", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"order_id": orderID}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list events by order: %w", err)
	}
	defer cursor.Close(ctx)

	var result []ledger.Event
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode events: %w", err)
	}

	return result, nil
}

// ListSince pages forward through a location's stream for catch-up sync. It
// fetches limit+1 rows to compute HasMore without a second query.
func (r *EventRepo) ListSince(ctx context.Context, locationID uuid.UUID, afterSequence int64, limit int) (ledger.Page, error) {
	if limit <= 0 {
		limit = 100
	}

	filter := bson.M{
		"location_id":     locationID,
		"server_sequence": bson.M{"$gt": afterSequence},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "server_sequence", Value: 1}}).
		SetLimit(int64(limit + 1))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return ledger.Page{}, fmt.Errorf("cannot list events since sequence %d: %w", afterSequence, err)
	}
	defer cursor.Close(ctx)

	var result []ledger.Event
	if err := cursor.All(ctx, &result); err != nil {
		return ledger.Page{}, fmt.Errorf("cannot decode events: %w", err)
	}

	page := ledger.Page{Events: result}
	if len(result) > limit {
		page.Events = result[:limit]
		page.HasMore = true
	}
	return page, nil
}

func (r *EventRepo) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return 0, fmt.Errorf("cannot count events by order: %w", err)
	}
	return count, nil
}
