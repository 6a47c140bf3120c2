package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/orderledger/cmd/utils/internal/commands"
)

const (
	appName    = "orderledger-utils"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config, err := apt.LoadConfig("ORDERLEDGER", os.Args[2:])
	if err != nil {
		log.Fatalf("Cannot load config: %v", err)
	}

	logLevel, _ := config.GetString("log.level")
	if logLevel == "" {
		logLevel = "info"
	}
	logger := apt.NewLogger(logLevel)

	ctx := context.Background()
	command := os.Args[1]

	switch command {
	case "seed-legacy":
		if err := commands.SeedLegacy(ctx, config, logger); err != nil {
			log.Fatalf("❌ Legacy seeding failed: %v", err)
		}
		logger.Info("✅ Legacy demo data seeded successfully")

	case "clear-legacy":
		if err := commands.ClearLegacy(ctx, config, logger); err != nil {
			log.Fatalf("❌ Clear legacy data failed: %v", err)
		}
		logger.Info("✅ Legacy demo data cleared successfully")

	case "reset-ledger":
		if err := commands.ResetLedger(ctx, config, logger); err != nil {
			log.Fatalf("❌ Ledger reset failed: %v", err)
		}
		logger.Info("✅ Ledger reset completed successfully")

	case "version":
		fmt.Printf("%s version %s\n", appName, appVersion)

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - Order ledger utility commands

Usage:
  %s <command> [options]

Commands:
  seed-legacy   Seed demo pre-event-sourcing orders for exercising the backfill
  clear-legacy  Remove the seeded demo legacy orders
  reset-ledger  Drop the event log, counters, and snapshots - USE WITH CAUTION
  version       Print version information
  help          Show this help message

Environment Variables:
  ORDERLEDGER_DB_MONGO_URL    MongoDB connection URL (default: mongodb://localhost:27017)
  ORDERLEDGER_DB_MONGO_NAME   Database name (default: appetite_orderledger)
  ORDERLEDGER_LOG_LEVEL       Log level: debug, info, warn, error (default: info)

Examples:
  %s seed-legacy
  %s reset-ledger
  ORDERLEDGER_DB_MONGO_URL=mongodb://localhost:27017 %s clear-legacy

`, appName, appName, appName, appName, appName)
}
