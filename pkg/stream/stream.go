// Package stream carries the order ledger wire contract: the NATS topic the
// emitter fans out on and thin publisher/subscriber wrappers around a NATS
// connection. Consumers (kitchen displays, terminals, the projection
// subscriber) decode the broadcast payload as the ledger event envelope.
package stream

const (
	// OrderLedgerTopic receives every admitted ledger event for a location.
	OrderLedgerTopic = "orders.ledger"

	// OrderSyncTopic carries device sync batches awaiting admission.
	OrderSyncTopic = "orders.ledger.sync"

	// OrderSyncReceiptTopic carries per-batch admission outcomes back to
	// devices.
	OrderSyncReceiptTopic = "orders.ledger.sync.receipts"

	// OrderCatchupTopic carries cursor-paginated read requests from devices
	// rejoining after being offline.
	OrderCatchupTopic = "orders.ledger.catchup"

	// OrderCatchupReplyTopic carries catch-up pages back to devices.
	OrderCatchupReplyTopic = "orders.ledger.catchup.replies"
)
