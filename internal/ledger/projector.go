package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// OrderSnapshot is the denormalized order-level read row. It is disposable:
// every field is rederivable from the event log.
type OrderSnapshot struct {
	OrderID           uuid.UUID  `json:"orderId" bson:"_id"`
	LocationID        uuid.UUID  `json:"locationId" bson:"location_id"`
	EmployeeID        uuid.UUID  `json:"employeeId" bson:"employee_id"`
	OrderType         string     `json:"orderType" bson:"order_type"`
	TableID           *uuid.UUID `json:"tableId,omitempty" bson:"table_id,omitempty"`
	TabName           *string    `json:"tabName,omitempty" bson:"tab_name,omitempty"`
	TabStatus         *string    `json:"tabStatus,omitempty" bson:"tab_status,omitempty"`
	GuestCount        int        `json:"guestCount" bson:"guest_count"`
	OrderNumber       int        `json:"orderNumber" bson:"order_number"`
	DisplayNumber     *string    `json:"displayNumber,omitempty" bson:"display_number,omitempty"`
	Status            string     `json:"status" bson:"status"`
	Notes             *string    `json:"notes,omitempty" bson:"notes,omitempty"`
	HasPreAuth        bool       `json:"hasPreAuth" bson:"has_pre_auth"`
	CardLast4         *string    `json:"cardLast4,omitempty" bson:"card_last4,omitempty"`
	IsClosed          bool       `json:"isClosed" bson:"is_closed"`
	SubtotalCents     int64      `json:"subtotalCents" bson:"subtotal_cents"`
	DiscountCents     int64      `json:"discountCents" bson:"discount_cents"`
	TaxTotalCents     int64      `json:"taxTotalCents" bson:"tax_total_cents"`
	TipTotalCents     int64      `json:"tipTotalCents" bson:"tip_total_cents"`
	GrandTotalCents   int64      `json:"grandTotalCents" bson:"grand_total_cents"`
	PaidCents         int64      `json:"paidCents" bson:"paid_cents"`
	ItemCount         int        `json:"itemCount" bson:"item_count"`
	HasHeldItems      bool       `json:"hasHeldItems" bson:"has_held_items"`
	LastEventSequence int64      `json:"lastEventSequence" bson:"last_event_sequence"`
	UpdatedAt         time.Time  `json:"updatedAt" bson:"updated_at"`
}

// OrderItemSnapshot is one denormalized line item row. Voided and comped
// items keep rows so reporting retains history.
type OrderItemSnapshot struct {
	LineItemID     uuid.UUID `json:"lineItemId" bson:"_id"`
	OrderID        uuid.UUID `json:"orderId" bson:"order_id"`
	LocationID     uuid.UUID `json:"locationId" bson:"location_id"`
	MenuItemID     uuid.UUID `json:"menuItemId" bson:"menu_item_id"`
	Name           string    `json:"name" bson:"name"`
	PriceCents     int64     `json:"priceCents" bson:"price_cents"`
	Quantity       int       `json:"quantity" bson:"quantity"`
	SoldByWeight   bool      `json:"soldByWeight" bson:"sold_by_weight"`
	Weight         *float64  `json:"weight,omitempty" bson:"weight,omitempty"`
	UnitPriceCents *int64    `json:"unitPriceCents,omitempty" bson:"unit_price_cents,omitempty"`
	WeightUnit     *string   `json:"weightUnit,omitempty" bson:"weight_unit,omitempty"`
	SeatNumber     *int      `json:"seatNumber,omitempty" bson:"seat_number,omitempty"`
	CourseNumber   *int      `json:"courseNumber,omitempty" bson:"course_number,omitempty"`
	SpecialNotes   *string   `json:"specialNotes,omitempty" bson:"special_notes,omitempty"`
	Status         string    `json:"status" bson:"status"`
	KitchenStatus  *string   `json:"kitchenStatus,omitempty" bson:"kitchen_status,omitempty"`
	IsHeld         bool      `json:"isHeld" bson:"is_held"`
	IsCompleted    bool      `json:"isCompleted" bson:"is_completed"`
	TotalCents     int64     `json:"totalCents" bson:"total_cents"`
	DiscountsJSON  string    `json:"discountsJson" bson:"discounts_json"`
	UpdatedAt      time.Time `json:"updatedAt" bson:"updated_at"`
}

// ProjectSnapshot maps a reduced state onto its order-level row.
func ProjectSnapshot(state OrderState, locationID uuid.UUID, lastEventSequence int64) OrderSnapshot {
	return OrderSnapshot{
		OrderID:           state.OrderID,
		LocationID:        locationID,
		EmployeeID:        state.EmployeeID,
		OrderType:         state.OrderType,
		TableID:           state.TableID,
		TabName:           state.TabName,
		TabStatus:         state.TabStatus,
		GuestCount:        state.GuestCount,
		OrderNumber:       state.OrderNumber,
		DisplayNumber:     state.DisplayNumber,
		Status:            state.Status,
		Notes:             state.Notes,
		HasPreAuth:        state.HasPreAuth,
		CardLast4:         state.CardLast4,
		IsClosed:          state.IsClosed,
		SubtotalCents:     SubtotalCents(state),
		DiscountCents:     DiscountTotalCents(state),
		TaxTotalCents:     state.TaxTotalCents,
		TipTotalCents:     TipTotalCents(state),
		GrandTotalCents:   GrandTotalCents(state),
		PaidCents:         PaidCents(state),
		ItemCount:         ActiveItemCount(state),
		HasHeldItems:      HasHeldItems(state),
		LastEventSequence: lastEventSequence,
		UpdatedAt:         time.Now().UTC(),
	}
}

// ProjectItemSnapshots maps every current item, voided and comped included,
// onto its row. Rows are ordered by line item id for stable output.
func ProjectItemSnapshots(state OrderState, locationID uuid.UUID) []OrderItemSnapshot {
	rows := make([]OrderItemSnapshot, 0, len(state.Items))
	now := time.Now().UTC()
	for _, item := range state.Items {
		rows = append(rows, OrderItemSnapshot{
			LineItemID:     item.LineItemID,
			OrderID:        state.OrderID,
			LocationID:     locationID,
			MenuItemID:     item.MenuItemID,
			Name:           item.Name,
			PriceCents:     item.PriceCents,
			Quantity:       item.Quantity,
			SoldByWeight:   item.SoldByWeight,
			Weight:         item.Weight,
			UnitPriceCents: item.UnitPriceCents,
			WeightUnit:     item.WeightUnit,
			SeatNumber:     item.SeatNumber,
			CourseNumber:   item.CourseNumber,
			SpecialNotes:   item.SpecialNotes,
			Status:         item.Status,
			KitchenStatus:  item.KitchenStatus,
			IsHeld:         item.IsHeld,
			IsCompleted:    item.IsCompleted,
			TotalCents:     ItemTotalCents(item),
			DiscountsJSON:  serializeItemDiscounts(item),
			UpdatedAt:      now,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].LineItemID.String() < rows[j].LineItemID.String()
	})
	return rows
}

type itemDiscountRow struct {
	DiscountID  uuid.UUID `json:"discountId"`
	AmountCents int64     `json:"amountCents"`
	Percent     *float64  `json:"percent,omitempty"`
	Reason      *string   `json:"reason,omitempty"`
}

func serializeItemDiscounts(item OrderLineItem) string {
	rows := make([]itemDiscountRow, 0, len(item.ItemDiscounts))
	for _, d := range item.ItemDiscounts {
		rows = append(rows, itemDiscountRow{
			DiscountID:  d.DiscountID,
			AmountCents: d.AmountCents,
			Percent:     d.Percent,
			Reason:      d.Reason,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].DiscountID.String() < rows[j].DiscountID.String()
	})
	out, err := json.Marshal(rows)
	if err != nil {
		return "[]"
	}
	return string(out)
}

// Projector runs the projection pipeline against the snapshot store.
type Projector struct {
	snapshotRepo SnapshotRepo
	logger       apt.Logger
}

func NewProjector(snapshotRepo SnapshotRepo, logger apt.Logger) *Projector {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Projector{
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// Project derives both row shapes and persists them atomically. On failure
// the previous snapshot stays visible; the event log remains the source of
// truth, so the caller can always re-project.
func (p *Projector) Project(ctx context.Context, state OrderState, locationID uuid.UUID, lastEventSequence int64) error {
	snapshot := ProjectSnapshot(state, locationID, lastEventSequence)
	items := ProjectItemSnapshots(state, locationID)

	if err := p.snapshotRepo.Apply(ctx, &snapshot, items); err != nil {
		return fmt.Errorf("cannot apply projection for order %s: %w", state.OrderID, err)
	}
	return nil
}
