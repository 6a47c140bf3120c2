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

// CatchupRequest asks for the location's events after a sequence cursor.
// Devices page forward by resending with the last sequence they received
// until HasMore is false.
type CatchupRequest struct {
	RequestID     uuid.UUID `json:"requestId"`
	LocationID    uuid.UUID `json:"locationId"`
	AfterSequence int64     `json:"afterSequence"`
	Limit         int       `json:"limit,omitempty"`
}

// CatchupReply is one page of the location's stream.
type CatchupReply struct {
	RequestID uuid.UUID `json:"requestId"`
	Events    []Event   `json:"events"`
	HasMore   bool      `json:"hasMore"`
}

// CatchupSubscriber serves cursor-paginated reads of the event stream so
// devices rejoining after an offline stretch can fold forward from their last
// known sequence.
type CatchupSubscriber struct {
	subscriber events.Subscriber
	publisher  events.Publisher
	eventRepo  EventRepo
	logger     apt.Logger
}

func NewCatchupSubscriber(sub events.Subscriber, pub events.Publisher, eventRepo EventRepo, logger apt.Logger) *CatchupSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &CatchupSubscriber{
		subscriber: sub,
		publisher:  pub,
		eventRepo:  eventRepo,
		logger:     logger,
	}
}

func (s *CatchupSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting catchup subscriber", "topic", stream.OrderCatchupTopic)
	if s.subscriber == nil {
		return fmt.Errorf("catchup subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, stream.OrderCatchupTopic, s.handleRequest)
}

func (s *CatchupSubscriber) handleRequest(ctx context.Context, msg []byte) error {
	var req CatchupRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		s.logger.Info("invalid catchup request", "error", err)
		return nil
	}
	if req.LocationID == uuid.Nil {
		s.logger.Debug("catchup request missing location id", "request_id", req.RequestID)
		return nil
	}

	page, err := s.eventRepo.ListSince(ctx, req.LocationID, req.AfterSequence, req.Limit)
	if err != nil {
		s.logger.Error("cannot read catchup page",
			"request_id", req.RequestID, "location_id", req.LocationID, "error", err)
		return nil
	}

	reply := CatchupReply{
		RequestID: req.RequestID,
		Events:    page.Events,
		HasMore:   page.HasMore,
	}
	if reply.Events == nil {
		reply.Events = []Event{}
	}
	out, err := json.Marshal(reply)
	if err != nil {
		s.logger.Error("cannot marshal catchup reply", "request_id", req.RequestID, "error", err)
		return nil
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, stream.OrderCatchupReplyTopic, out); err != nil {
			s.logger.Info("cannot publish catchup reply", "request_id", req.RequestID, "error", err)
		}
	}
	return nil
}
