package migration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Legacy row shapes: the final mutable order row and its children as they
// existed before event sourcing. The synthesizer only reads them.

type LegacyOrder struct {
	ID            uuid.UUID  `bson:"_id"`
	LocationID    uuid.UUID  `bson:"location_id"`
	EmployeeID    uuid.UUID  `bson:"employee_id"`
	OrderType     string     `bson:"order_type"`
	TableID       *uuid.UUID `bson:"table_id,omitempty"`
	TabName       *string    `bson:"tab_name,omitempty"`
	PreAuthID     *string    `bson:"pre_auth_id,omitempty"`
	CardLast4     *string    `bson:"card_last4,omitempty"`
	GuestCount    int        `bson:"guest_count"`
	OrderNumber   int        `bson:"order_number"`
	DisplayNumber *string    `bson:"display_number,omitempty"`
	Status        string     `bson:"status"`
	Notes         *string    `bson:"notes,omitempty"`
	TaxTotalCents int64      `bson:"tax_total_cents"`
	SentAt        *time.Time `bson:"sent_at,omitempty"`
	ClosedAt      *time.Time `bson:"closed_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
}

type LegacyItem struct {
	ID             uuid.UUID  `bson:"_id"`
	OrderID        uuid.UUID  `bson:"order_id"`
	MenuItemID     uuid.UUID  `bson:"menu_item_id"`
	Name           string     `bson:"name"`
	PriceCents     int64      `bson:"price_cents"`
	Quantity       int        `bson:"quantity"`
	ModifiersJSON  *string    `bson:"modifiers_json,omitempty"`
	SpecialNotes   *string    `bson:"special_notes,omitempty"`
	SeatNumber     *int       `bson:"seat_number,omitempty"`
	CourseNumber   *int       `bson:"course_number,omitempty"`
	IsHeld         bool       `bson:"is_held"`
	SoldByWeight   bool       `bson:"sold_by_weight"`
	Weight         *float64   `bson:"weight,omitempty"`
	UnitPriceCents *int64     `bson:"unit_price_cents,omitempty"`
	WeightUnit     *string    `bson:"weight_unit,omitempty"`
	Status         string     `bson:"status"`
	KitchenStatus  *string    `bson:"kitchen_status,omitempty"`
	IsDeleted      bool       `bson:"is_deleted"`
	CreatedAt      time.Time  `bson:"created_at"`
}

type LegacyPayment struct {
	ID          uuid.UUID `bson:"_id"`
	OrderID     uuid.UUID `bson:"order_id"`
	Method      string    `bson:"method"`
	AmountCents int64     `bson:"amount_cents"`
	TipCents    int64     `bson:"tip_cents"`
	TotalCents  int64     `bson:"total_cents"`
	CardBrand   *string   `bson:"card_brand,omitempty"`
	CardLast4   *string   `bson:"card_last4,omitempty"`
	Status      string    `bson:"status"`
	CreatedAt   time.Time `bson:"created_at"`
}

type LegacyDiscount struct {
	ID          uuid.UUID  `bson:"_id"`
	OrderID     uuid.UUID  `bson:"order_id"`
	LineItemID  *uuid.UUID `bson:"line_item_id,omitempty"`
	Type        string     `bson:"type"`
	Value       float64    `bson:"value"`
	AmountCents int64      `bson:"amount_cents"`
	Reason      *string    `bson:"reason,omitempty"`
	CreatedAt   time.Time  `bson:"created_at"`
}

// LegacyOrderRepo reads pre-event-sourcing orders in fixed-size pages so the
// backfill bounds its memory and can be resumed after an interrupt.
type LegacyOrderRepo interface {
	ListPage(ctx context.Context, offset, limit int) ([]LegacyOrder, error)
	ItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]LegacyItem, error)
	PaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]LegacyPayment, error)
	DiscountsByOrder(ctx context.Context, orderID uuid.UUID) ([]LegacyDiscount, error)
}
