package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/appetiteclub/orderledger/internal/mongo"
)

// ClearLegacy removes the seeded demo rows from the legacy collections.
func ClearLegacy(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Info("Starting legacy demo cleanup...")

	baseRepo := mongo.NewBaseRepo(config, logger)
	if err := baseRepo.Start(ctx); err != nil {
		return fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	defer func() {
		_ = baseRepo.Stop(context.Background())
	}()

	db := baseRepo.GetDatabase()
	filter := bson.M{"created_by": "demo-seed"}

	for _, name := range []string{"order_items", "order_payments", "order_discounts", "orders"} {
		result, err := db.Collection(name).DeleteMany(ctx, filter)
		if err != nil {
			return fmt.Errorf("cannot delete demo rows from %s: %w", name, err)
		}
		logger.Info("Deleted demo rows", "collection", name, "count", result.DeletedCount)
	}

	trackerResult, err := db.Collection("_seeds").DeleteOne(ctx, bson.M{"_id": legacySeedID})
	if err != nil {
		return fmt.Errorf("cannot delete seed tracker: %w", err)
	}
	logger.Info("Cleared seed tracker", "deleted", trackerResult.DeletedCount)

	return nil
}
