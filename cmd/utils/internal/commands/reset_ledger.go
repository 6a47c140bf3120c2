package commands

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/orderledger/internal/mongo"
)

var ledgerCollections = []string{
	"order_events",
	"counters",
	"order_snapshots",
	"order_item_snapshots",
}

// ResetLedger drops the event log, the sequence counters, and the snapshot
// projections. The legacy collections are left untouched so the backfill can
// rebuild everything from them.
func ResetLedger(ctx context.Context, config *apt.Config, logger apt.Logger) error {
	logger.Infof("⚠️  DANGER: This will drop the event log and all projections!")
	logger.Infof("⚠️  This action cannot be undone!")

	baseRepo := mongo.NewBaseRepo(config, logger)
	if err := baseRepo.Start(ctx); err != nil {
		return fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	defer func() {
		_ = baseRepo.Stop(context.Background())
	}()

	db := baseRepo.GetDatabase()
	for _, name := range ledgerCollections {
		logger.Info("Dropping collection", "collection", name)
		if err := db.Collection(name).Drop(ctx); err != nil {
			logger.Infof("⚠️  Failed to drop collection %s (may not exist): %v", name, err)
		} else {
			logger.Info("Collection dropped", "collection", name)
		}
	}

	logger.Info("Ledger collections have been dropped")
	return nil
}
