// Command migrate backfills event history for orders that predate event
// sourcing. It is idempotent per order and safe to re-run after an
// interrupt: orders that already have events are skipped.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/appetiteclub/orderledger/internal/ledger"
	"github.com/appetiteclub/orderledger/internal/migration"
	"github.com/appetiteclub/orderledger/internal/mongo"
	"github.com/appetiteclub/orderledger/pkg/stream"
)

const (
	appNamespace = "ORDERLEDGER"
	appName      = "orderledger-migrate"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}
	defer func() {
		_ = baseRepo.Stop(context.Background())
	}()

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	eventRepo := mongo.NewEventRepo(db)
	if err := eventRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot ensure event indexes: %v", appName, appVersion, err)
	}
	sequenceRepo := mongo.NewSequenceRepo(db)
	snapshotRepo := mongo.NewSnapshotRepo(db)
	legacyRepo := mongo.NewLegacyOrderRepo(db)

	// Broadcast is optional for backfill: without NATS the events are still
	// admitted and projected, they just are not fanned out.
	var publisher events.Publisher
	natsURL := config.GetStringOrDef("nats.url", "")
	if natsURL != "" {
		pub, err := stream.NewNATSPublisher(natsURL)
		if err != nil {
			log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
		}
		defer func() {
			_ = pub.Close()
		}()
		publisher = pub
	}

	batchSize := 0
	if raw, _ := config.GetString("migration.batch.size"); raw != "" {
		batchSize, err = strconv.Atoi(raw)
		if err != nil {
			log.Fatalf("%s(%s) invalid migration.batch.size: %v", appName, appVersion, err)
		}
	}

	emitter := ledger.NewEmitter(eventRepo, sequenceRepo, publisher, logger)
	projector := ledger.NewProjector(snapshotRepo, logger)

	runner := migration.NewRunner(legacyRepo, eventRepo, emitter, projector, batchSize, logger)

	logger.Infof("Starting %s(%s)", appName, appVersion)
	stats, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("%s(%s) failed: %v (seen=%d migrated=%d skipped=%d failed=%d)",
			appName, appVersion, err, stats.Seen, stats.Migrated, stats.Skipped, stats.Failed)
	}
	if stats.Failed > 0 {
		logger.Error("migration finished with failures",
			"seen", stats.Seen, "migrated", stats.Migrated, "skipped", stats.Skipped, "failed", stats.Failed)
		os.Exit(1)
	}

	logger.Infof("%s(%s) finished: seen=%d migrated=%d skipped=%d",
		appName, appVersion, stats.Seen, stats.Migrated, stats.Skipped)
}
