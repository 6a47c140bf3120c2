package ledger

import "math"

// Derived monetary functions. These are pure views over OrderState and must
// stay bit-for-bit identical to the mobile counterpart's calculations:
// integer cents throughout, weight totals rounded once at the item level.

// ItemBaseTotalCents is the item's price before any discount. Weight-sold
// items price as round(weight * unitPriceCents); all others as
// priceCents * quantity.
func ItemBaseTotalCents(item OrderLineItem) int64 {
	if item.SoldByWeight && item.Weight != nil && item.UnitPriceCents != nil {
		return int64(math.Round(*item.Weight * float64(*item.UnitPriceCents)))
	}
	return item.PriceCents * int64(item.Quantity)
}

// ItemTotalCents is the item's price after its own nested discounts, floored
// at zero. This is the per-item total carried on item snapshot rows; the
// order subtotal sums base totals so that discounts are only subtracted once,
// via DiscountTotalCents.
func ItemTotalCents(item OrderLineItem) int64 {
	total := ItemBaseTotalCents(item)
	for _, d := range item.ItemDiscounts {
		total -= d.AmountCents
	}
	return max(total, 0)
}

// ItemIsActive reports whether the item counts toward aggregate sums.
func ItemIsActive(item OrderLineItem) bool {
	return item.Status != ItemStatusVoided && item.Status != ItemStatusComped
}

// SubtotalCents sums active items' base totals.
func SubtotalCents(state OrderState) int64 {
	var subtotal int64
	for _, item := range state.Items {
		if ItemIsActive(item) {
			subtotal += ItemBaseTotalCents(item)
		}
	}
	return subtotal
}

// DiscountTotalCents sums order-level discounts plus active items' nested
// discounts.
func DiscountTotalCents(state OrderState) int64 {
	var total int64
	for _, d := range state.Discounts {
		total += d.AmountCents
	}
	for _, item := range state.Items {
		if !ItemIsActive(item) {
			continue
		}
		for _, d := range item.ItemDiscounts {
			total += d.AmountCents
		}
	}
	return total
}

// GrandTotalCents is max(0, subtotal - discounts + tax).
func GrandTotalCents(state OrderState) int64 {
	return max(SubtotalCents(state)-DiscountTotalCents(state)+state.TaxTotalCents, 0)
}

// PaidCents sums approved payment amounts; voided payments keep their
// amounts but are excluded here.
func PaidCents(state OrderState) int64 {
	var paid int64
	for _, p := range state.Payments {
		if p.Status == PaymentStatusApproved {
			paid += p.AmountCents
		}
	}
	return paid
}

// TipTotalCents sums approved payment tips.
func TipTotalCents(state OrderState) int64 {
	var tips int64
	for _, p := range state.Payments {
		if p.Status == PaymentStatusApproved {
			tips += p.TipCents
		}
	}
	return tips
}

// ActiveItemCount counts items that are neither voided nor comped.
func ActiveItemCount(state OrderState) int {
	count := 0
	for _, item := range state.Items {
		if ItemIsActive(item) {
			count++
		}
	}
	return count
}

// HasHeldItems reports whether any active item is held back from the kitchen.
func HasHeldItems(state OrderState) bool {
	for _, item := range state.Items {
		if ItemIsActive(item) && item.IsHeld {
			return true
		}
	}
	return false
}
