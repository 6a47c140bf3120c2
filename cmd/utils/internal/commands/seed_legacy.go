package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/appetiteclub/orderledger/cmd/utils/internal/seeding"
	"github.com/appetiteclub/orderledger/internal/mongo"
)

const legacySeedID = "legacy_orders_demo_v1"

// SeedLegacy writes demo rows into the pre-event-sourcing collections so the
// backfill has something to migrate on a fresh database.
func SeedLegacy(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Info("Starting legacy demo seeding...")

	baseRepo := mongo.NewBaseRepo(config, logger)
	if err := baseRepo.Start(ctx); err != nil {
		return fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	defer func() {
		_ = baseRepo.Stop(context.Background())
	}()

	db := baseRepo.GetDatabase()

	seedsCollection := db.Collection("_seeds")
	count, err := seedsCollection.CountDocuments(ctx, bson.M{"_id": legacySeedID})
	if err != nil {
		return fmt.Errorf("cannot check seed status: %w", err)
	}
	if count > 0 {
		logger.Info("Legacy demo seeds already applied, skipping")
		return nil
	}

	if err := seeding.SeedLegacyOrders(ctx, db); err != nil {
		return fmt.Errorf("cannot seed legacy orders: %w", err)
	}

	_, err = seedsCollection.InsertOne(ctx, bson.M{
		"_id":         legacySeedID,
		"description": "Create demo legacy orders covering open, tab, and closed shapes",
		"applied_at":  bson.M{"$currentDate": bson.M{"$type": "timestamp"}},
	})
	if err != nil {
		logger.Infof("⚠️  Failed to mark seed as applied: %v", err)
	}

	logger.Info("Legacy demo seeds applied successfully")
	return nil
}
