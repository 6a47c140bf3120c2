package ledger

import (
	"github.com/google/uuid"
)

// Item lifecycle statuses.
const (
	ItemStatusActive = "active"
	ItemStatusComped = "comped"
	ItemStatusVoided = "voided"
)

// Payment statuses.
const (
	PaymentStatusApproved = "approved"
	PaymentStatusVoided   = "voided"
)

// Order statuses managed by the reducer.
const (
	OrderStatusOpen = "open"
	OrderStatusSent = "sent"
)

// KitchenStatusFired marks a line item that has been sent to the kitchen.
const KitchenStatusFired = "FIRED"

// Discount types.
const (
	DiscountTypePercent = "percent"
	DiscountTypeFixed   = "fixed"
)

// OrderState is the order aggregate, fully derived by replaying events from
// EmptyOrderState. It is a value, never a persisted row; reducer transitions
// return fresh copies and never mutate a previous state in place.
type OrderState struct {
	OrderID       uuid.UUID
	LocationID    uuid.UUID
	EmployeeID    uuid.UUID
	OrderType     string
	TableID       *uuid.UUID
	TabName       *string
	TabStatus     *string
	GuestCount    int
	OrderNumber   int
	DisplayNumber *string
	Status        string
	Notes         *string
	HasPreAuth    bool
	CardLast4     *string
	TaxTotalCents int64
	IsClosed      bool

	Items     map[uuid.UUID]OrderLineItem
	Payments  map[uuid.UUID]OrderPayment
	Discounts map[uuid.UUID]OrderDiscount
}

// OrderLineItem is one ordered item within the aggregate.
type OrderLineItem struct {
	LineItemID      uuid.UUID
	MenuItemID      uuid.UUID
	Name            string
	PriceCents      int64
	Quantity        int
	ModifiersJSON   *string
	SpecialNotes    *string
	SeatNumber      *int
	CourseNumber    *int
	PricingOptionID *uuid.UUID
	CostAtSaleCents *int64

	SoldByWeight   bool
	Weight         *float64
	UnitPriceCents *int64
	WeightUnit     *string
	GrossWeight    *float64
	TareWeight     *float64

	Status        string
	KitchenStatus *string
	IsHeld        bool
	IsCompleted   bool
	ResendCount   int
	DelayMinutes  *int

	ItemDiscounts map[uuid.UUID]ItemDiscount
}

type OrderPayment struct {
	PaymentID   uuid.UUID
	Method      string
	AmountCents int64
	TipCents    int64
	TotalCents  int64
	CardBrand   *string
	CardLast4   *string
	Status      string
}

type OrderDiscount struct {
	DiscountID  uuid.UUID
	Type        string
	Value       float64
	AmountCents int64
	Reason      *string
}

type ItemDiscount struct {
	DiscountID  uuid.UUID
	AmountCents int64
	Percent     *float64
	Reason      *string
}

// EmptyOrderState is the seed every replay starts from.
func EmptyOrderState(orderID uuid.UUID) OrderState {
	return OrderState{
		OrderID:   orderID,
		Status:    OrderStatusOpen,
		Items:     map[uuid.UUID]OrderLineItem{},
		Payments:  map[uuid.UUID]OrderPayment{},
		Discounts: map[uuid.UUID]OrderDiscount{},
	}
}

// The clone helpers implement copy-on-write: a transition that touches a map
// first copies it so callers never hold aliases into a previous state.

func cloneItems(items map[uuid.UUID]OrderLineItem) map[uuid.UUID]OrderLineItem {
	out := make(map[uuid.UUID]OrderLineItem, len(items))
	for k, v := range items {
		out[k] = v
	}
	return out
}

func clonePayments(payments map[uuid.UUID]OrderPayment) map[uuid.UUID]OrderPayment {
	out := make(map[uuid.UUID]OrderPayment, len(payments))
	for k, v := range payments {
		out[k] = v
	}
	return out
}

func cloneDiscounts(discounts map[uuid.UUID]OrderDiscount) map[uuid.UUID]OrderDiscount {
	out := make(map[uuid.UUID]OrderDiscount, len(discounts))
	for k, v := range discounts {
		out[k] = v
	}
	return out
}

func cloneItemDiscounts(discounts map[uuid.UUID]ItemDiscount) map[uuid.UUID]ItemDiscount {
	out := make(map[uuid.UUID]ItemDiscount, len(discounts))
	for k, v := range discounts {
		out[k] = v
	}
	return out
}
