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

// SnapshotRepo persists the read model: one order row plus its item rows,
// replaced wholesale on every projection.
type SnapshotRepo struct {
	client *mongo.Client
	orders *mongo.Collection
	items  *mongo.Collection
}

func NewSnapshotRepo(db *mongo.Database) *SnapshotRepo {
	return &SnapshotRepo{
		client: db.Client(),
		orders: db.Collection("order_snapshots"),
		items:  db.Collection("order_item_snapshots"),
	}
}

// Apply commits the upsert/delete/insert triple in one transaction. Deleting
// and reinserting the item rows guarantees the row set exactly matches the
// reduced state even when items were removed; a failure rolls the whole unit
// back, leaving the previous snapshot intact.
func (r *SnapshotRepo) Apply(ctx context.Context, snapshot *ledger.OrderSnapshot, items []ledger.OrderItemSnapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is nil")
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("cannot start snapshot session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"_id": snapshot.OrderID}
		opts := options.Replace().SetUpsert(true)
		if _, err := r.orders.ReplaceOne(sc, filter, snapshot, opts); err != nil {
			return nil, fmt.Errorf("cannot upsert order snapshot: %w", err)
		}

		if _, err := r.items.DeleteMany(sc, bson.M{"order_id": snapshot.OrderID}); err != nil {
			return nil, fmt.Errorf("cannot delete item snapshots: %w", err)
		}

		if len(items) > 0 {
			docs := make([]interface{}, len(items))
			for i := range items {
				docs[i] = items[i]
			}
			if _, err := r.items.InsertMany(sc, docs); err != nil {
				return nil, fmt.Errorf("cannot insert item snapshots: %w", err)
			}
		}

		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("cannot apply snapshot: %w", err)
	}

	return nil
}

func (r *SnapshotRepo) Get(ctx context.Context, orderID uuid.UUID) (*ledger.OrderSnapshot, error) {
	var snapshot ledger.OrderSnapshot
	err := r.orders.FindOne(ctx, bson.M{"_id": orderID}).Decode(&snapshot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("cannot get order snapshot: %w", err)
	}
	return &snapshot, nil
}
