package seeding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SeedLegacyOrders creates demo pre-event-sourcing orders covering the shapes
// the backfill has to handle: an open order, a closed and paid order with a
// voided payment and a comped item, and an open bar tab.
func SeedLegacyOrders(ctx context.Context, db *mongo.Database) error {
	ordersCollection := db.Collection("orders")
	itemsCollection := db.Collection("order_items")
	paymentsCollection := db.Collection("order_payments")
	discountsCollection := db.Collection("order_discounts")

	now := time.Now().UTC()
	locationID := uuid.New()
	employeeID := uuid.New()

	upsertOrder := func(doc bson.M) error {
		_, err := ordersCollection.UpdateOne(ctx, bson.M{"_id": doc["_id"]}, bson.M{"$setOnInsert": doc}, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("cannot create demo order: %w", err)
		}
		return nil
	}

	// Scenario 1: open dine-in order, nothing sent yet.
	order1ID := uuid.New()
	if err := upsertOrder(bson.M{
		"_id":          order1ID,
		"location_id":  locationID,
		"employee_id":  employeeID,
		"order_type":   "dine_in",
		"guest_count":  2,
		"order_number": 101,
		"status":       "open",
		"created_at":   now.Add(-45 * time.Minute),
		"created_by":   "demo-seed",
	}); err != nil {
		return err
	}

	items1 := []interface{}{
		bson.M{
			"_id":          uuid.New(),
			"order_id":     order1ID,
			"menu_item_id": uuid.New(),
			"name":         "Margherita Pizza",
			"price_cents":  int64(1450),
			"quantity":     1,
			"status":       "active",
			"created_at":   now.Add(-44 * time.Minute),
			"created_by":   "demo-seed",
		},
		bson.M{
			"_id":          uuid.New(),
			"order_id":     order1ID,
			"menu_item_id": uuid.New(),
			"name":         "House Salad",
			"price_cents":  int64(900),
			"quantity":     2,
			"is_held":      true,
			"status":       "active",
			"created_at":   now.Add(-43 * time.Minute),
			"created_by":   "demo-seed",
		},
	}
	if _, err := itemsCollection.InsertMany(ctx, items1); err != nil {
		return fmt.Errorf("cannot create demo items: %w", err)
	}

	// Scenario 2: closed and paid order with a comped item, an order
	// discount, and a voided payment followed by a successful one.
	order2ID := uuid.New()
	sentAt := now.Add(-2 * time.Hour)
	closedAt := now.Add(-time.Hour)
	if err := upsertOrder(bson.M{
		"_id":             order2ID,
		"location_id":     locationID,
		"employee_id":     employeeID,
		"order_type":      "dine_in",
		"guest_count":     4,
		"order_number":    102,
		"status":          "paid",
		"tax_total_cents": int64(312),
		"sent_at":         sentAt,
		"closed_at":       closedAt,
		"created_at":      now.Add(-3 * time.Hour),
		"created_by":      "demo-seed",
	}); err != nil {
		return err
	}

	compedItemID := uuid.New()
	items2 := []interface{}{
		bson.M{
			"_id":            uuid.New(),
			"order_id":       order2ID,
			"menu_item_id":   uuid.New(),
			"name":           "Ribeye Steak",
			"price_cents":    int64(3900),
			"quantity":       1,
			"status":         "active",
			"kitchen_status": "FIRED",
			"created_at":     now.Add(-175 * time.Minute),
			"created_by":     "demo-seed",
		},
		bson.M{
			"_id":            compedItemID,
			"order_id":       order2ID,
			"menu_item_id":   uuid.New(),
			"name":           "Burnt Creme Brulee",
			"price_cents":    int64(850),
			"quantity":       1,
			"status":         "comped",
			"kitchen_status": "FIRED",
			"created_at":     now.Add(-170 * time.Minute),
			"created_by":     "demo-seed",
		},
		bson.M{
			"_id":              uuid.New(),
			"order_id":         order2ID,
			"menu_item_id":     uuid.New(),
			"name":             "Fresh Salmon",
			"sold_by_weight":   true,
			"weight":           0.62,
			"unit_price_cents": int64(4200),
			"weight_unit":      "kg",
			"quantity":         1,
			"status":           "active",
			"kitchen_status":   "FIRED",
			"created_at":       now.Add(-172 * time.Minute),
			"created_by":       "demo-seed",
		},
	}
	if _, err := itemsCollection.InsertMany(ctx, items2); err != nil {
		return fmt.Errorf("cannot create demo items: %w", err)
	}

	discounts2 := []interface{}{
		bson.M{
			"_id":          uuid.New(),
			"order_id":     order2ID,
			"type":         "percent",
			"value":        10.0,
			"amount_cents": int64(650),
			"reason":       "regular guest",
			"created_at":   now.Add(-90 * time.Minute),
			"created_by":   "demo-seed",
		},
	}
	if _, err := discountsCollection.InsertMany(ctx, discounts2); err != nil {
		return fmt.Errorf("cannot create demo discounts: %w", err)
	}

	payments2 := []interface{}{
		bson.M{
			"_id":          uuid.New(),
			"order_id":     order2ID,
			"method":       "card",
			"amount_cents": int64(6500),
			"tip_cents":    int64(0),
			"total_cents":  int64(6500),
			"card_brand":   "visa",
			"card_last4":   "4242",
			"status":       "voided",
			"created_at":   now.Add(-70 * time.Minute),
			"created_by":   "demo-seed",
		},
		bson.M{
			"_id":          uuid.New(),
			"order_id":     order2ID,
			"method":       "card",
			"amount_cents": int64(6500),
			"tip_cents":    int64(1200),
			"total_cents":  int64(7700),
			"card_brand":   "mastercard",
			"card_last4":   "5100",
			"status":       "approved",
			"created_at":   now.Add(-65 * time.Minute),
			"created_by":   "demo-seed",
		},
	}
	if _, err := paymentsCollection.InsertMany(ctx, payments2); err != nil {
		return fmt.Errorf("cannot create demo payments: %w", err)
	}

	// Scenario 3: open bar tab with a pre-auth.
	order3ID := uuid.New()
	if err := upsertOrder(bson.M{
		"_id":          order3ID,
		"location_id":  locationID,
		"employee_id":  employeeID,
		"order_type":   "bar_tab",
		"tab_name":     "Jordan",
		"pre_auth_id":  "auth_demo_0001",
		"card_last4":   "0004",
		"guest_count":  1,
		"order_number": 103,
		"status":       "open",
		"notes":        "running tab, close at shift end",
		"created_at":   now.Add(-20 * time.Minute),
		"created_by":   "demo-seed",
	}); err != nil {
		return err
	}

	items3 := []interface{}{
		bson.M{
			"_id":          uuid.New(),
			"order_id":     order3ID,
			"menu_item_id": uuid.New(),
			"name":         "Old Fashioned",
			"price_cents":  int64(1400),
			"quantity":     2,
			"status":       "active",
			"created_at":   now.Add(-18 * time.Minute),
			"created_by":   "demo-seed",
		},
	}
	if _, err := itemsCollection.InsertMany(ctx, items3); err != nil {
		return fmt.Errorf("cannot create demo items: %w", err)
	}

	return nil
}
