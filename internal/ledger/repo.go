package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrDuplicateEvent is returned by EventRepo.Insert when the event id has
// already been admitted. The insert is idempotent: the stored event is
// untouched.
var ErrDuplicateEvent = errors.New("event already exists")

// Page is one slice of an order stream for cursor-paginated catch-up sync.
type Page struct {
	Events  []Event
	HasMore bool
}

// EventRepo is the durable, append-only event log. Events are never updated
// or deleted once admitted.
type EventRepo interface {
	Insert(ctx context.Context, event *Event) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Event, error)
	ListSince(ctx context.Context, locationID uuid.UUID, afterSequence int64, limit int) (Page, error)
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error)
}

// SequenceRepo hands out server sequence numbers. Next must be backed by an
// atomic fetch-and-increment at the storage layer so concurrent emitters
// never observe or reuse a value; it is never computed as max(existing)+1.
type SequenceRepo interface {
	Next(ctx context.Context) (int64, error)
}

// SnapshotRepo persists the read model. Apply must commit the order row
// upsert, the item row delete, and the item row insert as one atomic unit; a
// failure leaves the previously committed snapshot intact.
type SnapshotRepo interface {
	Apply(ctx context.Context, snapshot *OrderSnapshot, items []OrderItemSnapshot) error
	Get(ctx context.Context, orderID uuid.UUID) (*OrderSnapshot, error)
}
