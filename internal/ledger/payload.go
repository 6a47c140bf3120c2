package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Payload shapes, one per event type. Field names and optionality are the
// wire contract shared with the mobile counterpart: money is integer cents,
// never floating currency. Unknown fields are ignored on decode so that
// future additive fields never fail existing consumers.

type OrderCreatedPayload struct {
	LocationID    uuid.UUID  `json:"locationId"`
	EmployeeID    uuid.UUID  `json:"employeeId"`
	OrderType     string     `json:"orderType"`
	TableID       *uuid.UUID `json:"tableId,omitempty"`
	TabName       *string    `json:"tabName,omitempty"`
	GuestCount    int        `json:"guestCount"`
	OrderNumber   int        `json:"orderNumber"`
	DisplayNumber *string    `json:"displayNumber,omitempty"`
}

type ItemAddedPayload struct {
	LineItemID      uuid.UUID  `json:"lineItemId"`
	MenuItemID      uuid.UUID  `json:"menuItemId"`
	Name            string     `json:"name"`
	PriceCents      int64      `json:"priceCents"`
	Quantity        int        `json:"quantity"`
	ModifiersJSON   *string    `json:"modifiersJson,omitempty"`
	SpecialNotes    *string    `json:"specialNotes,omitempty"`
	SeatNumber      *int       `json:"seatNumber,omitempty"`
	CourseNumber    *int       `json:"courseNumber,omitempty"`
	IsHeld          bool       `json:"isHeld"`
	SoldByWeight    bool       `json:"soldByWeight"`
	Weight          *float64   `json:"weight,omitempty"`
	UnitPriceCents  *int64     `json:"unitPriceCents,omitempty"`
	WeightUnit      *string    `json:"weightUnit,omitempty"`
	GrossWeight     *float64   `json:"grossWeight,omitempty"`
	TareWeight      *float64   `json:"tareWeight,omitempty"`
	PricingOptionID *uuid.UUID `json:"pricingOptionId,omitempty"`
	CostAtSaleCents *int64     `json:"costAtSaleCents,omitempty"`
}

type ItemRemovedPayload struct {
	LineItemID uuid.UUID `json:"lineItemId"`
	Reason     *string   `json:"reason,omitempty"`
}

// ItemUpdatedPayload carries any subset of mutable item fields; nil means
// "leave unchanged".
type ItemUpdatedPayload struct {
	LineItemID    uuid.UUID `json:"lineItemId"`
	IsHeld        *bool     `json:"isHeld,omitempty"`
	SpecialNotes  *string   `json:"specialNotes,omitempty"`
	CourseNumber  *int      `json:"courseNumber,omitempty"`
	SeatNumber    *int      `json:"seatNumber,omitempty"`
	Quantity      *int      `json:"quantity,omitempty"`
	DelayMinutes  *int      `json:"delayMinutes,omitempty"`
	KitchenStatus *string   `json:"kitchenStatus,omitempty"`
	Status        *string   `json:"status,omitempty"`
	IsCompleted   *bool     `json:"isCompleted,omitempty"`
	ResendCount   *int      `json:"resendCount,omitempty"`
}

// OrderSentPayload: an empty SentItemIDs means "send all eligible items".
type OrderSentPayload struct {
	SentItemIDs []uuid.UUID `json:"sentItemIds"`
}

type PaymentAppliedPayload struct {
	PaymentID   uuid.UUID `json:"paymentId"`
	Method      string    `json:"method"`
	AmountCents int64     `json:"amountCents"`
	TipCents    int64     `json:"tipCents"`
	TotalCents  int64     `json:"totalCents"`
	CardBrand   *string   `json:"cardBrand,omitempty"`
	CardLast4   *string   `json:"cardLast4,omitempty"`
	Status      string    `json:"status"`
}

type PaymentVoidedPayload struct {
	PaymentID  uuid.UUID  `json:"paymentId"`
	Reason     *string    `json:"reason,omitempty"`
	EmployeeID *uuid.UUID `json:"employeeId,omitempty"`
}

type OrderClosedPayload struct {
	ClosedStatus string `json:"closedStatus"`
}

type OrderReopenedPayload struct {
	Reason *string `json:"reason,omitempty"`
}

// DiscountAppliedPayload targets the order when LineItemID is nil, otherwise
// the named line item. The dispatch is on payload shape alone; there is no
// explicit scope field in the wire format.
type DiscountAppliedPayload struct {
	DiscountID  uuid.UUID  `json:"discountId"`
	Type        string     `json:"type"`
	Value       float64    `json:"value"`
	AmountCents int64      `json:"amountCents"`
	Reason      *string    `json:"reason,omitempty"`
	LineItemID  *uuid.UUID `json:"lineItemId,omitempty"`
}

type DiscountRemovedPayload struct {
	DiscountID uuid.UUID  `json:"discountId"`
	LineItemID *uuid.UUID `json:"lineItemId,omitempty"`
}

type TabOpenedPayload struct {
	CardLast4 *string `json:"cardLast4,omitempty"`
	PreAuthID *string `json:"preAuthId,omitempty"`
	TabName   *string `json:"tabName,omitempty"`
}

type TabClosedPayload struct {
	EmployeeID          uuid.UUID `json:"employeeId"`
	TipCents            *int64    `json:"tipCents,omitempty"`
	AdjustedAmountCents *int64    `json:"adjustedAmountCents,omitempty"`
}

type GuestCountChangedPayload struct {
	Count int `json:"count"`
}

type NoteChangedPayload struct {
	Note *string `json:"note,omitempty"`
}

type OrderMetadataUpdatedPayload struct {
	TabName       *string    `json:"tabName,omitempty"`
	TableID       *uuid.UUID `json:"tableId,omitempty"`
	TableName     *string    `json:"tableName,omitempty"`
	EmployeeID    *uuid.UUID `json:"employeeId,omitempty"`
	TaxTotalCents *int64     `json:"taxTotalCents,omitempty"`
}

// Comp/void actions.
const (
	ActionComp   = "comp"
	ActionVoid   = "void"
	ActionUncomp = "uncomp"
	ActionUnvoid = "unvoid"
)

type CompVoidAppliedPayload struct {
	LineItemID   *uuid.UUID `json:"lineItemId,omitempty"`
	Action       string     `json:"action"`
	Reason       *string    `json:"reason,omitempty"`
	EmployeeID   uuid.UUID  `json:"employeeId"`
	ApprovedByID *uuid.UUID `json:"approvedById,omitempty"`
}

// DecodePayload unmarshals an event's raw payload into its typed shape.
// Unknown event types yield an error; consumers are expected to skip them
// rather than fail closed.
func DecodePayload(e Event) (any, error) {
	var p any
	switch e.Type {
	case EventOrderCreated:
		p = &OrderCreatedPayload{}
	case EventItemAdded:
		p = &ItemAddedPayload{}
	case EventItemRemoved:
		p = &ItemRemovedPayload{}
	case EventItemUpdated:
		p = &ItemUpdatedPayload{}
	case EventOrderSent:
		p = &OrderSentPayload{}
	case EventPaymentApplied:
		p = &PaymentAppliedPayload{}
	case EventPaymentVoided:
		p = &PaymentVoidedPayload{}
	case EventOrderClosed:
		p = &OrderClosedPayload{}
	case EventOrderReopened:
		p = &OrderReopenedPayload{}
	case EventDiscountApplied:
		p = &DiscountAppliedPayload{}
	case EventDiscountRemoved:
		p = &DiscountRemovedPayload{}
	case EventTabOpened:
		p = &TabOpenedPayload{}
	case EventTabClosed:
		p = &TabClosedPayload{}
	case EventGuestCountChanged:
		p = &GuestCountChangedPayload{}
	case EventNoteChanged:
		p = &NoteChangedPayload{}
	case EventOrderMetadataUpdated:
		p = &OrderMetadataUpdatedPayload{}
	case EventCompVoidApplied:
		p = &CompVoidAppliedPayload{}
	default:
		return nil, fmt.Errorf("unknown event type %q", e.Type)
	}
	if err := json.Unmarshal(e.Payload, p); err != nil {
		return nil, fmt.Errorf("cannot decode %s payload: %w", e.Type, err)
	}
	return p, nil
}
