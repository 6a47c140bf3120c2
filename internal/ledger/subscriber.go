package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"
	"github.com/google/uuid"

	"github.com/appetiteclub/orderledger/pkg/stream"
)

// ProjectionSubscriber keeps snapshots current by listening to the broadcast
// fan-out: on every admitted event it replays the order from the log and
// re-projects. Losing a message is harmless because the next event for the
// order triggers a full replay anyway.
type ProjectionSubscriber struct {
	subscriber events.Subscriber
	eventRepo  EventRepo
	projector  *Projector
	logger     apt.Logger
}

func NewProjectionSubscriber(sub events.Subscriber, eventRepo EventRepo, projector *Projector, logger apt.Logger) *ProjectionSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &ProjectionSubscriber{
		subscriber: sub,
		eventRepo:  eventRepo,
		projector:  projector,
		logger:     logger,
	}
}

func (s *ProjectionSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting projection subscriber", "topic", stream.OrderLedgerTopic)
	if s.subscriber == nil {
		return fmt.Errorf("projection subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, stream.OrderLedgerTopic, s.handleEvent)
}

func (s *ProjectionSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var event Event
	if err := json.Unmarshal(msg, &event); err != nil {
		s.logger.Info("invalid ledger event", "error", err)
		return nil
	}
	if event.OrderID == uuid.Nil {
		s.logger.Debug("ledger event missing order id", "event_id", event.EventID)
		return nil
	}

	if err := s.ProjectOrder(ctx, event.OrderID, event.LocationID); err != nil {
		// Snapshot may be briefly stale; the log stays authoritative.
		s.logger.Info("cannot project order", "order_id", event.OrderID, "error", err)
	}
	return nil
}

// ProjectOrder replays the full order log and persists a fresh snapshot.
func (s *ProjectionSubscriber) ProjectOrder(ctx context.Context, orderID, locationID uuid.UUID) error {
	orderEvents, err := s.eventRepo.ListByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("cannot load events for order %s: %w", orderID, err)
	}
	if len(orderEvents) == 0 {
		return nil
	}

	state := Replay(orderID, orderEvents)
	lastSequence := orderEvents[len(orderEvents)-1].ServerSequence
	return s.projector.Project(ctx, state, locationID, lastSequence)
}
