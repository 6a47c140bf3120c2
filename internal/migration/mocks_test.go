package migration

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/appetiteclub/orderledger/internal/ledger"
)

// In-memory ledger stores for exercising the runner end to end.

type memEventRepo struct {
	mu     sync.RWMutex
	events map[uuid.UUID]ledger.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]ledger.Event)}
}

func (m *memEventRepo) Insert(ctx context.Context, event *ledger.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.EventID]; ok {
		return ledger.ErrDuplicateEvent
	}
	m.events[event.EventID] = *event
	return nil
}

func (m *memEventRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]ledger.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []ledger.Event
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

func (m *memEventRepo) ListSince(ctx context.Context, locationID uuid.UUID, afterSequence int64, limit int) (ledger.Page, error) {
	return ledger.Page{}, nil
}

func (m *memEventRepo) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, error) {
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

type memSequenceRepo struct {
	mu   sync.Mutex
	next int64
}

func (m *memSequenceRepo) Next(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	return m.next, nil
}

type memSnapshotRepo struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]ledger.OrderSnapshot
	items     map[uuid.UUID][]ledger.OrderItemSnapshot
}

func newMemSnapshotRepo() *memSnapshotRepo {
	return &memSnapshotRepo{
		snapshots: make(map[uuid.UUID]ledger.OrderSnapshot),
		items:     make(map[uuid.UUID][]ledger.OrderItemSnapshot),
	}
}

func (m *memSnapshotRepo) Apply(ctx context.Context, snapshot *ledger.OrderSnapshot, items []ledger.OrderItemSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snapshot.OrderID] = *snapshot
	m.items[snapshot.OrderID] = items
	return nil
}

func (m *memSnapshotRepo) Get(ctx context.Context, orderID uuid.UUID) (*ledger.OrderSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.snapshots[orderID]
	if !ok {
		return nil, nil
	}
	return &snapshot, nil
}

// mockLegacyRepo serves a fixed legacy data set.
type mockLegacyRepo struct {
	orders    []LegacyOrder
	items     map[uuid.UUID][]LegacyItem
	payments  map[uuid.UUID][]LegacyPayment
	discounts map[uuid.UUID][]LegacyDiscount
	itemsErr  map[uuid.UUID]error
}

func newMockLegacyRepo() *mockLegacyRepo {
	return &mockLegacyRepo{
		items:     make(map[uuid.UUID][]LegacyItem),
		payments:  make(map[uuid.UUID][]LegacyPayment),
		discounts: make(map[uuid.UUID][]LegacyDiscount),
		itemsErr:  make(map[uuid.UUID]error),
	}
}

func (m *mockLegacyRepo) ListPage(ctx context.Context, offset, limit int) ([]LegacyOrder, error) {
	if offset >= len(m.orders) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.orders) {
		end = len(m.orders)
	}
	return m.orders[offset:end], nil
}

func (m *mockLegacyRepo) ItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]LegacyItem, error) {
	if err := m.itemsErr[orderID]; err != nil {
		return nil, err
	}
	return m.items[orderID], nil
}

func (m *mockLegacyRepo) PaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]LegacyPayment, error) {
	return m.payments[orderID], nil
}

func (m *mockLegacyRepo) DiscountsByOrder(ctx context.Context, orderID uuid.UUID) ([]LegacyDiscount, error) {
	return m.discounts[orderID], nil
}
