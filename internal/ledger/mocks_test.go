package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"
)

// MockEventRepo is an in-memory EventRepo for testing.
type MockEventRepo struct {
	mu         sync.RWMutex
	events     map[uuid.UUID]Event
	InsertFunc func(ctx context.Context, event *Event) error
}

func NewMockEventRepo() *MockEventRepo {
	return &MockEventRepo{
		events: make(map[uuid.UUID]Event),
	}
}

func (m *MockEventRepo) Insert(ctx context.Context, event *Event) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.EventID]; ok {
		return ErrDuplicateEvent
	}
	m.events[event.EventID] = *event
	return nil
}

func (m *MockEventRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []Event
	for _, e := range m.events {
		if e.OrderID == orderID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ServerSequence < result[j].ServerSequence
	})
	return result, nil
}

func (m *MockEventRepo) ListSince(ctx context.Context, locationID uuid.UUID, afterSequence int64, limit int) (Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var all []Event
	for _, e := range m.events {
		if e.LocationID == locationID && e.ServerSequence > afterSequence {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ServerSequence < all[j].ServerSequence
	})
	page := Page{Events: all}
	if limit > 0 && len(all) > limit {
		page.Events = all[:limit]
		page.HasMore = true
	}
	return page, nil
}

func (m *MockEventRepo) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var count int64
	for _, e := range m.events {
		if e.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

// MockSequenceRepo hands out sequences from an in-memory counter.
type MockSequenceRepo struct {
	mu       sync.Mutex
	next     int64
	NextFunc func(ctx context.Context) (int64, error)
}

func NewMockSequenceRepo() *MockSequenceRepo {
	return &MockSequenceRepo{}
}

func (m *MockSequenceRepo) Next(ctx context.Context) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return m.next, nil
}

// MockSnapshotRepo records applied snapshots.
type MockSnapshotRepo struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]OrderSnapshot
	items     map[uuid.UUID][]OrderItemSnapshot
	ApplyFunc func(ctx context.Context, snapshot *OrderSnapshot, items []OrderItemSnapshot) error
}

func NewMockSnapshotRepo() *MockSnapshotRepo {
	return &MockSnapshotRepo{
		snapshots: make(map[uuid.UUID]OrderSnapshot),
		items:     make(map[uuid.UUID][]OrderItemSnapshot),
	}
}

func (m *MockSnapshotRepo) Apply(ctx context.Context, snapshot *OrderSnapshot, items []OrderItemSnapshot) error {
	if m.ApplyFunc != nil {
		return m.ApplyFunc(ctx, snapshot, items)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.OrderID] = *snapshot
	m.items[snapshot.OrderID] = items
	return nil
}

func (m *MockSnapshotRepo) Get(ctx context.Context, orderID uuid.UUID) (*OrderSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[orderID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

func (m *MockSnapshotRepo) ItemsFor(orderID uuid.UUID) []OrderItemSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[orderID]
}

// MockPublisher records published messages.
type MockPublisher struct {
	mu          sync.Mutex
	published   []publishedMsg
	PublishFunc func(ctx context.Context, topic string, msg []byte) error
}

type publishedMsg struct {
	Topic string
	Msg   []byte
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, msg []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, msg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedMsg{Topic: topic, Msg: msg})
	return nil
}

func (m *MockPublisher) Published() []publishedMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedMsg, len(m.published))
	copy(out, m.published)
	return out
}

// MockSubscriber captures handlers so tests can deliver messages directly.
type MockSubscriber struct {
	mu       sync.Mutex
	handlers map[string]events.HandlerFunc
}

func NewMockSubscriber() *MockSubscriber {
	return &MockSubscriber{
		handlers: make(map[string]events.HandlerFunc),
	}
}

func (m *MockSubscriber) Subscribe(ctx context.Context, topic string, handler events.HandlerFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *MockSubscriber) Deliver(ctx context.Context, topic string, msg []byte) error {
	m.mu.Lock()
	handler := m.handlers[topic]
	m.mu.Unlock()
	if handler == nil {
		return fmt.Errorf("no handler for topic %s", topic)
	}
	return handler(ctx, msg)
}

var errMockFailure = fmt.Errorf("mock failure")
