package ledger

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current version of the event wire contract. Consumers
// must ignore fields they do not recognize, so bumps are additive only.
const SchemaVersion = 1

// Event types. The tag set is closed and shared with the mobile counterpart;
// both sides must fold identical events into identical state.
const (
	EventOrderCreated         = "ORDER_CREATED"
	EventItemAdded            = "ITEM_ADDED"
	EventItemRemoved          = "ITEM_REMOVED"
	EventItemUpdated          = "ITEM_UPDATED"
	EventOrderSent            = "ORDER_SENT"
	EventPaymentApplied       = "PAYMENT_APPLIED"
	EventPaymentVoided        = "PAYMENT_VOIDED"
	EventOrderClosed          = "ORDER_CLOSED"
	EventOrderReopened        = "ORDER_REOPENED"
	EventDiscountApplied      = "DISCOUNT_APPLIED"
	EventDiscountRemoved      = "DISCOUNT_REMOVED"
	EventTabOpened            = "TAB_OPENED"
	EventTabClosed            = "TAB_CLOSED"
	EventGuestCountChanged    = "GUEST_COUNT_CHANGED"
	EventNoteChanged          = "NOTE_CHANGED"
	EventOrderMetadataUpdated = "ORDER_METADATA_UPDATED"
	EventCompVoidApplied      = "COMP_VOID_APPLIED"
)

var knownTypes = map[string]bool{
	EventOrderCreated:         true,
	EventItemAdded:            true,
	EventItemRemoved:          true,
	EventItemUpdated:          true,
	EventOrderSent:            true,
	EventPaymentApplied:       true,
	EventPaymentVoided:        true,
	EventOrderClosed:          true,
	EventOrderReopened:        true,
	EventDiscountApplied:      true,
	EventDiscountRemoved:      true,
	EventTabOpened:            true,
	EventTabClosed:            true,
	EventGuestCountChanged:    true,
	EventNoteChanged:          true,
	EventOrderMetadataUpdated: true,
	EventCompVoidApplied:      true,
}

// KnownType reports whether t is part of the closed event type set.
func KnownType(t string) bool {
	return knownTypes[t]
}

// Event is one immutable fact appended to an order's log. Events are never
// updated or deleted; ServerSequence is assigned exactly once at admission
// time and is the only true ordering key. DeviceCounter exists for
// provenance, not ordering.
type Event struct {
	EventID         uuid.UUID       `json:"eventId" bson:"_id"`
	OrderID         uuid.UUID       `json:"orderId" bson:"order_id"`
	LocationID      uuid.UUID       `json:"locationId" bson:"location_id"`
	DeviceID        string          `json:"deviceId" bson:"device_id"`
	DeviceCounter   int64           `json:"deviceCounter" bson:"device_counter"`
	ServerSequence  int64           `json:"serverSequence" bson:"server_sequence"`
	Type            string          `json:"type" bson:"type"`
	Payload         json.RawMessage `json:"payload" bson:"payload"`
	SchemaVersion   int             `json:"schemaVersion" bson:"schema_version"`
	CorrelationID   *string         `json:"correlationId,omitempty" bson:"correlation_id,omitempty"`
	DeviceCreatedAt time.Time       `json:"deviceCreatedAt" bson:"device_created_at"`
}
