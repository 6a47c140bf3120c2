package ledger

import (
	"encoding/json"

	"github.com/google/uuid"
)

// alwaysApplied lists the event types that still fold after ORDER_CLOSED:
// payments can be voided and tabs closed out as cleanup, and a close can be
// reopened or repeated. Every other type is a no-op on a closed order.
var alwaysApplied = map[string]bool{
	EventOrderCreated:  true,
	EventPaymentVoided: true,
	EventOrderClosed:   true,
	EventOrderReopened: true,
	EventTabClosed:     true,
}

// Reduce folds one event into the order state. It is total and pure: same
// inputs always yield the same output, malformed or out-of-place inputs
// resolve to "state unchanged" rather than an error, and the previous state
// is never mutated.
func Reduce(state OrderState, event Event) OrderState {
	if state.IsClosed && !alwaysApplied[event.Type] {
		return state
	}

	switch event.Type {
	case EventOrderCreated:
		var p OrderCreatedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyOrderCreated(state, p)
	case EventItemAdded:
		var p ItemAddedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyItemAdded(state, p)
	case EventItemRemoved:
		var p ItemRemovedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyItemRemoved(state, p)
	case EventItemUpdated:
		var p ItemUpdatedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyItemUpdated(state, p)
	case EventOrderSent:
		var p OrderSentPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyOrderSent(state, p)
	case EventPaymentApplied:
		var p PaymentAppliedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyPaymentApplied(state, p)
	case EventPaymentVoided:
		var p PaymentVoidedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyPaymentVoided(state, p)
	case EventOrderClosed:
		var p OrderClosedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyOrderClosed(state, p)
	case EventOrderReopened:
		return applyOrderReopened(state)
	case EventDiscountApplied:
		var p DiscountAppliedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyDiscountApplied(state, p)
	case EventDiscountRemoved:
		var p DiscountRemovedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyDiscountRemoved(state, p)
	case EventTabOpened:
		var p TabOpenedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyTabOpened(state, p)
	case EventTabClosed:
		return applyTabClosed(state)
	case EventGuestCountChanged:
		var p GuestCountChangedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		state.GuestCount = p.Count
		return state
	case EventNoteChanged:
		var p NoteChangedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		state.Notes = p.Note
		return state
	case EventOrderMetadataUpdated:
		var p OrderMetadataUpdatedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyOrderMetadataUpdated(state, p)
	case EventCompVoidApplied:
		var p CompVoidAppliedPayload
		if json.Unmarshal(event.Payload, &p) != nil {
			return state
		}
		return applyCompVoidApplied(state, p)
	default:
		// Unknown future event types fold as no-ops.
		return state
	}
}

// Replay reconstructs order state by left-folding the ordered event list over
// the empty seed. This is the only reconstruction path: live application,
// catch-up sync, and migration backfill all go through it.
func Replay(orderID uuid.UUID, events []Event) OrderState {
	state := EmptyOrderState(orderID)
	for _, event := range events {
		state = Reduce(state, event)
	}
	return state
}

func applyOrderCreated(s OrderState, p OrderCreatedPayload) OrderState {
	s.LocationID = p.LocationID
	s.EmployeeID = p.EmployeeID
	s.OrderType = p.OrderType
	s.TableID = p.TableID
	s.TabName = p.TabName
	s.GuestCount = p.GuestCount
	s.OrderNumber = p.OrderNumber
	s.DisplayNumber = p.DisplayNumber
	s.Status = OrderStatusOpen
	s.IsClosed = false
	return s
}

func applyItemAdded(s OrderState, p ItemAddedPayload) OrderState {
	// First write wins: a replayed duplicate never overwrites the original.
	if _, ok := s.Items[p.LineItemID]; ok {
		return s
	}

	item := OrderLineItem{
		LineItemID:      p.LineItemID,
		MenuItemID:      p.MenuItemID,
		Name:            p.Name,
		PriceCents:      p.PriceCents,
		Quantity:        p.Quantity,
		ModifiersJSON:   p.ModifiersJSON,
		SpecialNotes:    p.SpecialNotes,
		SeatNumber:      p.SeatNumber,
		CourseNumber:    p.CourseNumber,
		PricingOptionID: p.PricingOptionID,
		CostAtSaleCents: p.CostAtSaleCents,
		SoldByWeight:    p.SoldByWeight,
		Weight:          p.Weight,
		UnitPriceCents:  p.UnitPriceCents,
		WeightUnit:      p.WeightUnit,
		GrossWeight:     p.GrossWeight,
		TareWeight:      p.TareWeight,
		Status:          ItemStatusActive,
		IsHeld:          p.IsHeld,
		ResendCount:     0,
		ItemDiscounts:   map[uuid.UUID]ItemDiscount{},
	}

	s.Items = cloneItems(s.Items)
	s.Items[p.LineItemID] = item
	return s
}

func applyItemRemoved(s OrderState, p ItemRemovedPayload) OrderState {
	if _, ok := s.Items[p.LineItemID]; !ok {
		return s
	}
	s.Items = cloneItems(s.Items)
	delete(s.Items, p.LineItemID)
	return s
}

func applyItemUpdated(s OrderState, p ItemUpdatedPayload) OrderState {
	item, ok := s.Items[p.LineItemID]
	if !ok {
		return s
	}

	if p.IsHeld != nil {
		item.IsHeld = *p.IsHeld
	}
	if p.SpecialNotes != nil {
		item.SpecialNotes = p.SpecialNotes
	}
	if p.CourseNumber != nil {
		item.CourseNumber = p.CourseNumber
	}
	if p.SeatNumber != nil {
		item.SeatNumber = p.SeatNumber
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.DelayMinutes != nil {
		item.DelayMinutes = p.DelayMinutes
	}
	if p.KitchenStatus != nil {
		item.KitchenStatus = p.KitchenStatus
	}
	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.IsCompleted != nil {
		item.IsCompleted = *p.IsCompleted
	}
	if p.ResendCount != nil {
		item.ResendCount = *p.ResendCount
	}

	s.Items = cloneItems(s.Items)
	s.Items[p.LineItemID] = item
	return s
}

func applyOrderSent(s OrderState, p OrderSentPayload) OrderState {
	fired := false
	items := cloneItems(s.Items)

	if len(p.SentItemIDs) == 0 {
		// Send-all: fire every active, unheld item not already in the kitchen.
		for id, item := range items {
			if itemFireable(item) {
				item.KitchenStatus = ptr(KitchenStatusFired)
				items[id] = item
				fired = true
			}
		}
	} else {
		for _, id := range p.SentItemIDs {
			item, ok := items[id]
			if !ok || !itemFireable(item) {
				continue
			}
			item.KitchenStatus = ptr(KitchenStatusFired)
			items[id] = item
			fired = true
		}
	}

	if fired {
		s.Items = items
	}
	if s.Status == OrderStatusOpen {
		s.Status = OrderStatusSent
	}
	return s
}

func itemFireable(item OrderLineItem) bool {
	if item.Status != ItemStatusActive || item.IsHeld {
		return false
	}
	return item.KitchenStatus == nil || *item.KitchenStatus != KitchenStatusFired
}

func applyPaymentApplied(s OrderState, p PaymentAppliedPayload) OrderState {
	if _, ok := s.Payments[p.PaymentID]; ok {
		return s
	}
	s.Payments = clonePayments(s.Payments)
	s.Payments[p.PaymentID] = OrderPayment{
		PaymentID:   p.PaymentID,
		Method:      p.Method,
		AmountCents: p.AmountCents,
		TipCents:    p.TipCents,
		TotalCents:  p.TotalCents,
		CardBrand:   p.CardBrand,
		CardLast4:   p.CardLast4,
		Status:      p.Status,
	}
	return s
}

func applyPaymentVoided(s OrderState, p PaymentVoidedPayload) OrderState {
	payment, ok := s.Payments[p.PaymentID]
	if !ok {
		return s
	}
	// Amounts stay as-is; total calculations filter on approved status.
	payment.Status = PaymentStatusVoided
	s.Payments = clonePayments(s.Payments)
	s.Payments[p.PaymentID] = payment
	return s
}

func applyOrderClosed(s OrderState, p OrderClosedPayload) OrderState {
	s.IsClosed = true
	if p.ClosedStatus != "" {
		s.Status = p.ClosedStatus
	}
	return s
}

func applyOrderReopened(s OrderState) OrderState {
	s.IsClosed = false
	s.Status = OrderStatusOpen
	return s
}

func applyDiscountApplied(s OrderState, p DiscountAppliedPayload) OrderState {
	if p.LineItemID != nil {
		item, ok := s.Items[*p.LineItemID]
		if !ok {
			return s
		}
		discount := ItemDiscount{
			DiscountID:  p.DiscountID,
			AmountCents: p.AmountCents,
			Reason:      p.Reason,
		}
		if p.Type == DiscountTypePercent {
			discount.Percent = ptr(p.Value)
		}
		item.ItemDiscounts = cloneItemDiscounts(item.ItemDiscounts)
		item.ItemDiscounts[p.DiscountID] = discount
		s.Items = cloneItems(s.Items)
		s.Items[*p.LineItemID] = item
		return s
	}

	s.Discounts = cloneDiscounts(s.Discounts)
	s.Discounts[p.DiscountID] = OrderDiscount{
		DiscountID:  p.DiscountID,
		Type:        p.Type,
		Value:       p.Value,
		AmountCents: p.AmountCents,
		Reason:      p.Reason,
	}
	return s
}

func applyDiscountRemoved(s OrderState, p DiscountRemovedPayload) OrderState {
	if p.LineItemID != nil {
		item, ok := s.Items[*p.LineItemID]
		if !ok {
			return s
		}
		if _, ok := item.ItemDiscounts[p.DiscountID]; !ok {
			return s
		}
		item.ItemDiscounts = cloneItemDiscounts(item.ItemDiscounts)
		delete(item.ItemDiscounts, p.DiscountID)
		s.Items = cloneItems(s.Items)
		s.Items[*p.LineItemID] = item
		return s
	}

	if _, ok := s.Discounts[p.DiscountID]; !ok {
		return s
	}
	s.Discounts = cloneDiscounts(s.Discounts)
	delete(s.Discounts, p.DiscountID)
	return s
}

func applyTabOpened(s OrderState, p TabOpenedPayload) OrderState {
	s.TabStatus = ptr("open")
	s.HasPreAuth = p.PreAuthID != nil
	// Merge, not replace: only overwrite when the payload supplies a value.
	if p.CardLast4 != nil {
		s.CardLast4 = p.CardLast4
	}
	if p.TabName != nil {
		s.TabName = p.TabName
	}
	return s
}

func applyTabClosed(s OrderState) OrderState {
	s.TabStatus = ptr("closed")
	return s
}

func applyOrderMetadataUpdated(s OrderState, p OrderMetadataUpdatedPayload) OrderState {
	if p.TabName != nil {
		s.TabName = p.TabName
	}
	if p.TableID != nil {
		s.TableID = p.TableID
	}
	if p.EmployeeID != nil {
		s.EmployeeID = *p.EmployeeID
	}
	if p.TaxTotalCents != nil {
		s.TaxTotalCents = *p.TaxTotalCents
	}
	return s
}

func applyCompVoidApplied(s OrderState, p CompVoidAppliedPayload) OrderState {
	if p.LineItemID == nil {
		return s
	}
	item, ok := s.Items[*p.LineItemID]
	if !ok {
		return s
	}

	switch p.Action {
	case ActionComp:
		item.Status = ItemStatusComped
	case ActionVoid:
		item.Status = ItemStatusVoided
	case ActionUncomp, ActionUnvoid:
		item.Status = ItemStatusActive
	default:
		return s
	}

	s.Items = cloneItems(s.Items)
	s.Items[*p.LineItemID] = item
	return s
}

func ptr[T any](v T) *T {
	return &v
}
