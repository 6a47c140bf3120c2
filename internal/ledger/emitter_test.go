package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestEmitAssignsSequence(t *testing.T) {
	eventRepo := NewMockEventRepo()
	emitter := NewEmitter(eventRepo, NewMockSequenceRepo(), nil, nil)
	locationID := uuid.New()
	orderID := uuid.New()

	first := emitter.Emit(context.Background(), locationID, orderID, EventOrderCreated, OrderCreatedPayload{
		LocationID: locationID, EmployeeID: uuid.New(), OrderType: "dine_in", GuestCount: 1, OrderNumber: 1,
	}, nil)
	second := emitter.Emit(context.Background(), locationID, orderID, EventGuestCountChanged, GuestCountChangedPayload{Count: 2}, nil)

	if first == nil || second == nil {
		t.Fatal("Emit() returned nil receipt")
	}
	if first.ServerSequence != 1 || second.ServerSequence != 2 {
		t.Errorf("sequences = %d, %d, want 1, 2", first.ServerSequence, second.ServerSequence)
	}

	stored, err := eventRepo.ListByOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("ListByOrder() error: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored events = %d, want 2", len(stored))
	}
	if stored[0].SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %d, want %d", stored[0].SchemaVersion, SchemaVersion)
	}
}

func TestEmitReturnsNilOnSequenceFailure(t *testing.T) {
	sequenceRepo := NewMockSequenceRepo()
	sequenceRepo.NextFunc = func(ctx context.Context) (int64, error) {
		return 0, errMockFailure
	}
	emitter := NewEmitter(NewMockEventRepo(), sequenceRepo, nil, nil)

	receipt := emitter.Emit(context.Background(), uuid.New(), uuid.New(), EventNoteChanged, NoteChangedPayload{}, nil)

	if receipt != nil {
		t.Errorf("Emit() = %+v, want nil on sequence failure", receipt)
	}
}

func TestEmitReturnsNilOnInsertFailure(t *testing.T) {
	eventRepo := NewMockEventRepo()
	eventRepo.InsertFunc = func(ctx context.Context, event *Event) error {
		return errMockFailure
	}
	emitter := NewEmitter(eventRepo, NewMockSequenceRepo(), nil, nil)

	receipt := emitter.Emit(context.Background(), uuid.New(), uuid.New(), EventNoteChanged, NoteChangedPayload{}, nil)

	if receipt != nil {
		t.Errorf("Emit() = %+v, want nil on insert failure", receipt)
	}
}

func TestEmitBroadcastFailureDoesNotFailEmit(t *testing.T) {
	publisher := NewMockPublisher()
	published := make(chan struct{}, 1)
	publisher.PublishFunc = func(ctx context.Context, topic string, msg []byte) error {
		published <- struct{}{}
		return errMockFailure
	}
	emitter := NewEmitter(NewMockEventRepo(), NewMockSequenceRepo(), publisher, nil)

	receipt := emitter.Emit(context.Background(), uuid.New(), uuid.New(), EventNoteChanged, NoteChangedPayload{}, nil)

	if receipt == nil {
		t.Fatal("Emit() returned nil despite successful persistence")
	}
	<-published
}

func TestEmitBroadcastsEnvelope(t *testing.T) {
	publisher := NewMockPublisher()
	published := make(chan []byte, 1)
	publisher.PublishFunc = func(ctx context.Context, topic string, msg []byte) error {
		published <- msg
		return nil
	}
	emitter := NewEmitter(NewMockEventRepo(), NewMockSequenceRepo(), publisher, nil)
	orderID := uuid.New()

	receipt := emitter.Emit(context.Background(), uuid.New(), orderID, EventGuestCountChanged, GuestCountChangedPayload{Count: 4}, nil)
	if receipt == nil {
		t.Fatal("Emit() returned nil")
	}

	var event Event
	if err := json.Unmarshal(<-published, &event); err != nil {
		t.Fatalf("cannot decode broadcast: %v", err)
	}
	if event.OrderID != orderID {
		t.Errorf("broadcast order id = %s, want %s", event.OrderID, orderID)
	}
	if event.ServerSequence != receipt.ServerSequence {
		t.Errorf("broadcast sequence = %d, want %d", event.ServerSequence, receipt.ServerSequence)
	}
}

func TestEmitManyPreservesProgramOrder(t *testing.T) {
	eventRepo := NewMockEventRepo()
	emitter := NewEmitter(eventRepo, NewMockSequenceRepo(), nil, nil)
	orderID := uuid.New()

	receipts := emitter.EmitMany(context.Background(), uuid.New(), orderID, []Input{
		{Type: EventOrderCreated, Payload: OrderCreatedPayload{OrderType: "dine_in", GuestCount: 1, OrderNumber: 7}},
		{Type: EventGuestCountChanged, Payload: GuestCountChangedPayload{Count: 3}},
		{Type: EventNoteChanged, Payload: NoteChangedPayload{}},
	}, &EmitOptions{DeviceID: "terminal-1"})

	if len(receipts) != 3 {
		t.Fatalf("receipts = %d, want 3", len(receipts))
	}
	for i, receipt := range receipts {
		if receipt == nil {
			t.Fatalf("receipt %d is nil", i)
		}
		if receipt.ServerSequence != int64(i+1) {
			t.Errorf("receipt %d sequence = %d, want %d", i, receipt.ServerSequence, i+1)
		}
	}

	stored, _ := eventRepo.ListByOrder(context.Background(), orderID)
	wantTypes := []string{EventOrderCreated, EventGuestCountChanged, EventNoteChanged}
	for i, event := range stored {
		if event.Type != wantTypes[i] {
			t.Errorf("stored[%d].Type = %q, want %q", i, event.Type, wantTypes[i])
		}
		if event.DeviceID != "terminal-1" {
			t.Errorf("stored[%d].DeviceID = %q, want terminal-1", i, event.DeviceID)
		}
	}
}

func TestEmitBatch(t *testing.T) {
	eventRepo := NewMockEventRepo()
	emitter := NewEmitter(eventRepo, NewMockSequenceRepo(), nil, nil)
	locationID := uuid.New()
	orderID := uuid.New()
	dupID := uuid.New()

	records := []BatchRecord{
		{EventID: uuid.New(), OrderID: orderID, DeviceID: "hh-1", Type: EventOrderCreated, PayloadJSON: []byte(`{"orderType":"dine_in","guestCount":1,"orderNumber":9}`)},
		{EventID: dupID, OrderID: orderID, DeviceID: "hh-1", Type: EventGuestCountChanged, PayloadJSON: []byte(`{"count":2}`)},
		{EventID: dupID, OrderID: orderID, DeviceID: "hh-1", Type: EventGuestCountChanged, PayloadJSON: []byte(`{"count":2}`)},
		{EventID: uuid.New(), OrderID: orderID, DeviceID: "hh-1", Type: "ITEM_GIFTED", PayloadJSON: []byte(`{}`)},
	}

	result := emitter.EmitBatch(context.Background(), locationID, records)

	if len(result.Accepted) != 2 {
		t.Errorf("accepted = %d, want 2", len(result.Accepted))
	}
	if len(result.Rejected) != 2 {
		t.Fatalf("rejected = %d, want 2", len(result.Rejected))
	}
	if result.Rejected[0].EventID != dupID || result.Rejected[0].Reason != "duplicate event id" {
		t.Errorf("rejected[0] = %+v, want duplicate event id for %s", result.Rejected[0], dupID)
	}
	if result.Rejected[1].Reason != "unknown event type" {
		t.Errorf("rejected[1].Reason = %q, want unknown event type", result.Rejected[1].Reason)
	}
}

func TestEmitBatchIsIdempotentAcrossRetries(t *testing.T) {
	eventRepo := NewMockEventRepo()
	emitter := NewEmitter(eventRepo, NewMockSequenceRepo(), nil, nil)
	locationID := uuid.New()
	orderID := uuid.New()

	records := []BatchRecord{
		{EventID: uuid.New(), OrderID: orderID, Type: EventGuestCountChanged, PayloadJSON: []byte(`{"count":2}`)},
	}

	first := emitter.EmitBatch(context.Background(), locationID, records)
	second := emitter.EmitBatch(context.Background(), locationID, records)

	if len(first.Accepted) != 1 || len(second.Rejected) != 1 {
		t.Errorf("retry not rejected: first=%+v second=%+v", first, second)
	}
	count, _ := eventRepo.CountByOrder(context.Background(), orderID)
	if count != 1 {
		t.Errorf("stored events = %d, want 1", count)
	}
}
