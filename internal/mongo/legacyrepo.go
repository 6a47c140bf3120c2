package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/appetiteclub/orderledger/internal/migration"
)

// LegacyOrderRepo reads the pre-event-sourcing collections. The backfill
// never writes to them.
type LegacyOrderRepo struct {
	orders    *mongo.Collection
	items     *mongo.Collection
	payments  *mongo.Collection
	discounts *mongo.Collection
}

func NewLegacyOrderRepo(db *mongo.Database) *LegacyOrderRepo {
	return &LegacyOrderRepo{
		orders:    db.Collection("orders"),
		items:     db.Collection("order_items"),
		payments:  db.Collection("order_payments"),
		discounts: db.Collection("order_discounts"),
	}
}

func (r *LegacyOrderRepo) ListPage(ctx context.Context, offset, limit int) ([]migration.LegacyOrder, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.orders.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list legacy orders: %w", err)
	}
	defer cursor.Close(ctx)

	var result []migration.LegacyOrder
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode legacy orders: %w", err)
	}

	return result, nil
}

func (r *LegacyOrderRepo) ItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]migration.LegacyItem, error) {
	cursor, err := r.items.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("cannot list legacy items: %w", err)
	}
	defer cursor.Close(ctx)

	var result []migration.LegacyItem
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode legacy items: %w", err)
	}

	return result, nil
}

func (r *LegacyOrderRepo) PaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]migration.LegacyPayment, error) {
	cursor, err := r.payments.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("cannot list legacy payments: %w", err)
	}
	defer cursor.Close(ctx)

	var result []migration.LegacyPayment
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode legacy payments: %w", err)
	}

	return result, nil
}

func (r *LegacyOrderRepo) DiscountsByOrder(ctx context.Context, orderID uuid.UUID) ([]migration.LegacyDiscount, error) {
	cursor, err := r.discounts.Find(ctx, bson.M{"order_id": orderID})
	if err != nil {
		return nil, fmt.Errorf("cannot list legacy discounts: %w", err)
	}
	defer cursor.Close(ctx)

	var result []migration.LegacyDiscount
	if err := cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("cannot decode legacy discounts: %w", err)
	}

	return result, nil
}
