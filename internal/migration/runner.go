package migration

import (
	"context"
	"fmt"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/orderledger/internal/ledger"
)

const defaultBatchSize = 100

// Runner backfills event history for legacy orders. Orders are processed in
// fixed-size pages; any order that already has events is skipped, so the run
// is idempotent and safe to interrupt and restart.
type Runner struct {
	legacyRepo LegacyOrderRepo
	eventRepo  ledger.EventRepo
	emitter    *ledger.Emitter
	projector  *ledger.Projector
	batchSize  int
	logger     apt.Logger
}

func NewRunner(legacyRepo LegacyOrderRepo, eventRepo ledger.EventRepo, emitter *ledger.Emitter, projector *ledger.Projector, batchSize int, logger apt.Logger) *Runner {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Runner{
		legacyRepo: legacyRepo,
		eventRepo:  eventRepo,
		emitter:    emitter,
		projector:  projector,
		batchSize:  batchSize,
		logger:     logger,
	}
}

// Stats summarizes one run.
type Stats struct {
	Seen     int
	Migrated int
	Skipped  int
	Failed   int
}

func (r *Runner) Run(ctx context.Context) (Stats, error) {
	stats := Stats{}
	offset := 0

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		page, err := r.legacyRepo.ListPage(ctx, offset, r.batchSize)
		if err != nil {
			return stats, fmt.Errorf("cannot list legacy orders: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, order := range page {
			stats.Seen++
			migrated, err := r.migrateOrder(ctx, order)
			if err != nil {
				stats.Failed++
				r.logger.Error("cannot migrate legacy order", "order_id", order.ID, "error", err)
				continue
			}
			if migrated {
				stats.Migrated++
			} else {
				stats.Skipped++
			}
		}

		offset += len(page)
	}

	r.logger.Info("legacy migration finished",
		"seen", stats.Seen, "migrated", stats.Migrated, "skipped", stats.Skipped, "failed", stats.Failed)
	return stats, nil
}

func (r *Runner) migrateOrder(ctx context.Context, order LegacyOrder) (bool, error) {
	count, err := r.eventRepo.CountByOrder(ctx, order.ID)
	if err != nil {
		return false, fmt.Errorf("cannot count existing events: %w", err)
	}
	if count > 0 {
		// Already event-sourced: never re-synthesize or duplicate.
		return false, nil
	}

	items, err := r.legacyRepo.ItemsByOrder(ctx, order.ID)
	if err != nil {
		return false, fmt.Errorf("cannot load legacy items: %w", err)
	}
	payments, err := r.legacyRepo.PaymentsByOrder(ctx, order.ID)
	if err != nil {
		return false, fmt.Errorf("cannot load legacy payments: %w", err)
	}
	discounts, err := r.legacyRepo.DiscountsByOrder(ctx, order.ID)
	if err != nil {
		return false, fmt.Errorf("cannot load legacy discounts: %w", err)
	}

	inputs := Synthesize(order, items, payments, discounts)

	receipts := r.emitter.EmitMany(ctx, order.LocationID, order.ID, inputs, &ledger.EmitOptions{
		DeviceID:        DeviceID,
		DeviceCreatedAt: order.CreatedAt,
	})
	for i, receipt := range receipts {
		if receipt == nil {
			return false, fmt.Errorf("emission %d of %d failed", i+1, len(receipts))
		}
	}

	// Replay through the canonical path and project, exactly like live
	// traffic.
	events, err := r.eventRepo.ListByOrder(ctx, order.ID)
	if err != nil {
		return false, fmt.Errorf("cannot reload synthesized events: %w", err)
	}
	if len(events) == 0 {
		return false, fmt.Errorf("no events after synthesis")
	}

	state := ledger.Replay(order.ID, events)
	lastSequence := events[len(events)-1].ServerSequence
	if err := r.projector.Project(ctx, state, order.LocationID, lastSequence); err != nil {
		return false, err
	}

	return true, nil
}
