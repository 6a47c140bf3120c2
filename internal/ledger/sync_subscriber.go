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

// SyncBatch is a device's offline backlog submitted for admission.
type SyncBatch struct {
	BatchID    uuid.UUID     `json:"batchId"`
	LocationID uuid.UUID     `json:"locationId"`
	Records    []BatchRecord `json:"records"`
}

// SyncReceipt is the admission outcome published back to devices. Devices
// correlate by batch id and drop locally queued events once accepted.
type SyncReceipt struct {
	BatchID  uuid.UUID  `json:"batchId"`
	Accepted []Receipt  `json:"accepted"`
	Rejected []Rejected `json:"rejected"`
}

// SyncSubscriber admits device sync batches arriving over the relay.
// Admission is best-effort: a malformed batch is logged and dropped, and
// receipt publication failures never block admission.
type SyncSubscriber struct {
	subscriber events.Subscriber
	publisher  events.Publisher
	emitter    *Emitter
	logger     apt.Logger
}

func NewSyncSubscriber(sub events.Subscriber, pub events.Publisher, emitter *Emitter, logger apt.Logger) *SyncSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &SyncSubscriber{
		subscriber: sub,
		publisher:  pub,
		emitter:    emitter,
		logger:     logger,
	}
}

func (s *SyncSubscriber) Start(ctx context.Context) error {
	s.logger.Info("starting sync subscriber", "topic", stream.OrderSyncTopic)
	if s.subscriber == nil {
		return fmt.Errorf("sync subscriber not configured")
	}
	return s.subscriber.Subscribe(ctx, stream.OrderSyncTopic, s.handleBatch)
}

func (s *SyncSubscriber) handleBatch(ctx context.Context, msg []byte) error {
	var batch SyncBatch
	if err := json.Unmarshal(msg, &batch); err != nil {
		s.logger.Info("invalid sync batch", "error", err)
		return nil
	}
	if len(batch.Records) == 0 {
		return nil
	}

	result := s.emitter.EmitBatch(ctx, batch.LocationID, batch.Records)
	s.logger.Debug("admitted sync batch",
		"batch_id", batch.BatchID, "accepted", len(result.Accepted), "rejected", len(result.Rejected))

	receipt := SyncReceipt{
		BatchID:  batch.BatchID,
		Accepted: result.Accepted,
		Rejected: result.Rejected,
	}
	out, err := json.Marshal(receipt)
	if err != nil {
		s.logger.Error("cannot marshal sync receipt", "batch_id", batch.BatchID, "error", err)
		return nil
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, stream.OrderSyncReceiptTopic, out); err != nil {
			s.logger.Info("cannot publish sync receipt", "batch_id", batch.BatchID, "error", err)
		}
	}
	return nil
}
