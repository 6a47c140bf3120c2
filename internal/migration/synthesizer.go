package migration

import (
	"sort"

	"github.com/appetiteclub/orderledger/internal/ledger"
)

// DeviceID tags every synthesized event so backfilled history is
// distinguishable from device-recorded history.
const DeviceID = "migration"

var terminalStatuses = map[string]bool{
	"closed":    true,
	"paid":      true,
	"cancelled": true,
}

// Synthesize reconstructs a plausible event history for one legacy order.
// Replaying the result yields a state consistent with the final legacy rows.
// The construction order is fixed: created, items, sent, order discounts,
// item discounts, comp/void, tab open, payments (voided ones as an
// apply/void pair), tab close, note, close.
func Synthesize(order LegacyOrder, items []LegacyItem, payments []LegacyPayment, discounts []LegacyDiscount) []ledger.Input {
	var out []ledger.Input

	out = append(out, ledger.Input{
		Type: ledger.EventOrderCreated,
		Payload: ledger.OrderCreatedPayload{
			LocationID:    order.LocationID,
			EmployeeID:    order.EmployeeID,
			OrderType:     order.OrderType,
			TableID:       order.TableID,
			TabName:       order.TabName,
			GuestCount:    order.GuestCount,
			OrderNumber:   order.OrderNumber,
			DisplayNumber: order.DisplayNumber,
		},
	})

	if order.TaxTotalCents != 0 {
		tax := order.TaxTotalCents
		out = append(out, ledger.Input{
			Type:    ledger.EventOrderMetadataUpdated,
			Payload: ledger.OrderMetadataUpdatedPayload{TaxTotalCents: &tax},
		})
	}

	kept := keptItems(items)
	for _, item := range kept {
		out = append(out, ledger.Input{
			Type: ledger.EventItemAdded,
			Payload: ledger.ItemAddedPayload{
				LineItemID:     item.ID,
				MenuItemID:     item.MenuItemID,
				Name:           item.Name,
				PriceCents:     item.PriceCents,
				Quantity:       item.Quantity,
				ModifiersJSON:  item.ModifiersJSON,
				SpecialNotes:   item.SpecialNotes,
				SeatNumber:     item.SeatNumber,
				CourseNumber:   item.CourseNumber,
				IsHeld:         item.IsHeld,
				SoldByWeight:   item.SoldByWeight,
				Weight:         item.Weight,
				UnitPriceCents: item.UnitPriceCents,
				WeightUnit:     item.WeightUnit,
			},
		})
	}

	if order.SentAt != nil {
		sent := ledger.OrderSentPayload{SentItemIDs: nil}
		for _, item := range kept {
			if itemWasFired(item) {
				sent.SentItemIDs = append(sent.SentItemIDs, item.ID)
			}
		}
		// An empty id list means "send all" to the reducer, which would fire
		// items the legacy rows say were never fired.
		if len(sent.SentItemIDs) > 0 {
			out = append(out, ledger.Input{Type: ledger.EventOrderSent, Payload: sent})
		}
	}

	for _, d := range discounts {
		if d.LineItemID == nil {
			out = append(out, discountInput(d))
		}
	}
	for _, d := range discounts {
		if d.LineItemID != nil {
			out = append(out, discountInput(d))
		}
	}

	for _, item := range kept {
		action := ""
		switch item.Status {
		case ledger.ItemStatusComped:
			action = ledger.ActionComp
		case ledger.ItemStatusVoided:
			action = ledger.ActionVoid
		}
		if action == "" {
			continue
		}
		id := item.ID
		out = append(out, ledger.Input{
			Type: ledger.EventCompVoidApplied,
			Payload: ledger.CompVoidAppliedPayload{
				LineItemID: &id,
				Action:     action,
				EmployeeID: order.EmployeeID,
			},
		})
	}

	isTab := order.TabName != nil || order.PreAuthID != nil
	if isTab {
		out = append(out, ledger.Input{
			Type: ledger.EventTabOpened,
			Payload: ledger.TabOpenedPayload{
				CardLast4: order.CardLast4,
				PreAuthID: order.PreAuthID,
				TabName:   order.TabName,
			},
		})
	}

	// Voided legacy payments become an apply/void pair: the reducer has no
	// "create already-voided" event. If a legacy payment was ever created
	// directly in a voided state this overstates its history; see DESIGN.md.
	for _, p := range sortedPayments(payments) {
		out = append(out, ledger.Input{
			Type: ledger.EventPaymentApplied,
			Payload: ledger.PaymentAppliedPayload{
				PaymentID:   p.ID,
				Method:      p.Method,
				AmountCents: p.AmountCents,
				TipCents:    p.TipCents,
				TotalCents:  p.TotalCents,
				CardBrand:   p.CardBrand,
				CardLast4:   p.CardLast4,
				Status:      ledger.PaymentStatusApproved,
			},
		})
		if p.Status == ledger.PaymentStatusVoided {
			out = append(out, ledger.Input{
				Type:    ledger.EventPaymentVoided,
				Payload: ledger.PaymentVoidedPayload{PaymentID: p.ID},
			})
		}
	}

	if isTab && terminalStatuses[order.Status] {
		out = append(out, ledger.Input{
			Type:    ledger.EventTabClosed,
			Payload: ledger.TabClosedPayload{EmployeeID: order.EmployeeID},
		})
	}

	if order.Notes != nil {
		out = append(out, ledger.Input{
			Type:    ledger.EventNoteChanged,
			Payload: ledger.NoteChangedPayload{Note: order.Notes},
		})
	}

	if terminalStatuses[order.Status] {
		out = append(out, ledger.Input{
			Type:    ledger.EventOrderClosed,
			Payload: ledger.OrderClosedPayload{ClosedStatus: order.Status},
		})
	}

	return out
}

func keptItems(items []LegacyItem) []LegacyItem {
	kept := make([]LegacyItem, 0, len(items))
	for _, item := range items {
		if !item.IsDeleted {
			kept = append(kept, item)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].CreatedAt.Before(kept[j].CreatedAt)
	})
	return kept
}

func itemWasFired(item LegacyItem) bool {
	return item.KitchenStatus != nil && *item.KitchenStatus != ""
}

func sortedPayments(payments []LegacyPayment) []LegacyPayment {
	out := make([]LegacyPayment, len(payments))
	copy(out, payments)
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func discountInput(d LegacyDiscount) ledger.Input {
	return ledger.Input{
		Type: ledger.EventDiscountApplied,
		Payload: ledger.DiscountAppliedPayload{
			DiscountID:  d.ID,
			Type:        d.Type,
			Value:       d.Value,
			AmountCents: d.AmountCents,
			Reason:      d.Reason,
			LineItemID:  d.LineItemID,
		},
	}
}
