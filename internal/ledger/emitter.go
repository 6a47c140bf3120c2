package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/orderledger/pkg/stream"
)

// Emitter admits events into the log: it assigns each one a strictly
// increasing server sequence, persists it, and hands it to the broadcast
// publisher. Emission is best-effort by contract: failures are logged and
// surfaced as a nil receipt, never as an error, so callers can fire and
// forget.
type Emitter struct {
	eventRepo    EventRepo
	sequenceRepo SequenceRepo
	publisher    events.Publisher
	logger       apt.Logger
}

func NewEmitter(eventRepo EventRepo, sequenceRepo SequenceRepo, publisher events.Publisher, logger apt.Logger) *Emitter {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Emitter{
		eventRepo:    eventRepo,
		sequenceRepo: sequenceRepo,
		publisher:    publisher,
		logger:       logger,
	}
}

// Receipt acknowledges one admitted event.
type Receipt struct {
	EventID        uuid.UUID `json:"eventId"`
	ServerSequence int64     `json:"serverSequence"`
}

// EmitOptions carries the optional provenance fields of an emission. A zero
// EventID means the emitter generates one; callers retrying an exact emission
// supply the original id to make the insert idempotent.
type EmitOptions struct {
	EventID         uuid.UUID
	DeviceID        string
	DeviceCounter   int64
	CorrelationID   *string
	SchemaVersion   int
	DeviceCreatedAt time.Time
}

// Input is one event of a multi-event emission.
type Input struct {
	Type    string
	Payload any
}

// BatchRecord is one entry of the device sync admission contract.
type BatchRecord struct {
	EventID         uuid.UUID       `json:"eventId"`
	OrderID         uuid.UUID       `json:"orderId"`
	DeviceID        string          `json:"deviceId"`
	DeviceCounter   int64           `json:"deviceCounter"`
	Type            string          `json:"type"`
	PayloadJSON     json.RawMessage `json:"payloadJson"`
	SchemaVersion   int             `json:"schemaVersion,omitempty"`
	CorrelationID   *string         `json:"correlationId,omitempty"`
	DeviceCreatedAt time.Time       `json:"deviceCreatedAt"`
}

// BatchResult reports per-record admission outcomes.
type BatchResult struct {
	Accepted []Receipt  `json:"accepted"`
	Rejected []Rejected `json:"rejected"`
}

type Rejected struct {
	EventID uuid.UUID `json:"eventId"`
	Reason  string    `json:"reason"`
}

// Emit admits a single event. It returns nil on any failure; the failure is
// logged with event context and never propagated.
func (e *Emitter) Emit(ctx context.Context, locationID, orderID uuid.UUID, eventType string, payload any, opts *EmitOptions) *Receipt {
	raw, err := json.Marshal(payload)
	if err != nil {
		e.logger.Error("cannot marshal event payload", "order_id", orderID, "type", eventType, "error", err)
		return nil
	}

	event := e.buildEvent(locationID, orderID, eventType, raw, opts)

	receipt, err := e.admit(ctx, event)
	if err != nil {
		e.logger.Error("cannot emit event", "order_id", orderID, "type", eventType, "event_id", event.EventID, "error", err)
		return nil
	}
	return receipt
}

// EmitMany admits events for one order in strict program order, each with its
// own sequence. The receipt slice is positional; a nil entry marks a failed
// admission.
func (e *Emitter) EmitMany(ctx context.Context, locationID, orderID uuid.UUID, inputs []Input, opts *EmitOptions) []*Receipt {
	receipts := make([]*Receipt, len(inputs))
	for i, input := range inputs {
		perEvent := EmitOptions{}
		if opts != nil {
			perEvent = *opts
		}
		perEvent.EventID = uuid.Nil // each event gets its own id
		receipts[i] = e.Emit(ctx, locationID, orderID, input.Type, input.Payload, &perEvent)
	}
	return receipts
}

// EmitBatch is the device sync admission path: pre-marshaled payloads,
// caller-supplied event ids, per-record accept/reject outcomes.
func (e *Emitter) EmitBatch(ctx context.Context, locationID uuid.UUID, records []BatchRecord) BatchResult {
	result := BatchResult{}
	for _, record := range records {
		if !KnownType(record.Type) {
			result.Rejected = append(result.Rejected, Rejected{EventID: record.EventID, Reason: "unknown event type"})
			continue
		}

		event := e.buildEvent(locationID, record.OrderID, record.Type, record.PayloadJSON, &EmitOptions{
			EventID:         record.EventID,
			DeviceID:        record.DeviceID,
			DeviceCounter:   record.DeviceCounter,
			CorrelationID:   record.CorrelationID,
			SchemaVersion:   record.SchemaVersion,
			DeviceCreatedAt: record.DeviceCreatedAt,
		})

		receipt, err := e.admit(ctx, event)
		if err != nil {
			reason := "cannot persist event"
			if errors.Is(err, ErrDuplicateEvent) {
				reason = "duplicate event id"
			}
			e.logger.Info("rejected batch event", "event_id", record.EventID, "type", record.Type, "reason", reason, "error", err)
			result.Rejected = append(result.Rejected, Rejected{EventID: record.EventID, Reason: reason})
			continue
		}
		result.Accepted = append(result.Accepted, *receipt)
	}
	return result
}

func (e *Emitter) buildEvent(locationID, orderID uuid.UUID, eventType string, payload json.RawMessage, opts *EmitOptions) *Event {
	if opts == nil {
		opts = &EmitOptions{}
	}

	eventID := opts.EventID
	if eventID == uuid.Nil {
		eventID = apt.GenerateNewID()
	}
	schemaVersion := opts.SchemaVersion
	if schemaVersion == 0 {
		schemaVersion = SchemaVersion
	}
	deviceCreatedAt := opts.DeviceCreatedAt
	if deviceCreatedAt.IsZero() {
		deviceCreatedAt = time.Now().UTC()
	}

	return &Event{
		EventID:         eventID,
		OrderID:         orderID,
		LocationID:      locationID,
		DeviceID:        opts.DeviceID,
		DeviceCounter:   opts.DeviceCounter,
		Type:            eventType,
		Payload:         payload,
		SchemaVersion:   schemaVersion,
		CorrelationID:   opts.CorrelationID,
		DeviceCreatedAt: deviceCreatedAt,
	}
}

// admit assigns the sequence, persists the event, and broadcasts it. The
// broadcast runs detached: publish failures are logged and swallowed, never
// reported to the caller.
func (e *Emitter) admit(ctx context.Context, event *Event) (*Receipt, error) {
	seq, err := e.sequenceRepo.Next(ctx)
	if err != nil {
		return nil, err
	}
	event.ServerSequence = seq

	if err := e.eventRepo.Insert(ctx, event); err != nil {
		return nil, err
	}

	e.broadcast(*event)

	return &Receipt{EventID: event.EventID, ServerSequence: event.ServerSequence}, nil
}

func (e *Emitter) broadcast(event Event) {
	if e.publisher == nil {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		e.logger.Error("cannot marshal event for broadcast", "event_id", event.EventID, "error", err)
		return
	}
	go func() {
		if err := e.publisher.Publish(context.Background(), stream.OrderLedgerTopic, msg); err != nil {
			e.logger.Info("cannot broadcast event", "event_id", event.EventID, "type", event.Type, "error", err)
		}
	}()
}
