package wizard

import (
	"fmt"

	"github.com/iliyamo/event-booking-wizard/internal/model"
)

const (
	// MaxQuantity is the largest quantity selectable per tier.
	MaxQuantity = 10
	// PlatformFeePercent is applied to the subtotal.
	PlatformFeePercent = 7
	// MaxSubtotalCents caps an order at $1,000,000 so subtotal plus fee
	// always fits the uint32 cent amounts used downstream.
	MaxSubtotalCents = 100_000_000
)

// TicketSelector tracks the quantity chosen per tier.
type TicketSelector struct {
	Tiers      []model.TicketTier `json:"tiers"`
	Quantities map[uint64]int     `json:"quantities"`
}

// NewTicketSelector starts with zero of every tier.
func NewTicketSelector(tiers []model.TicketTier) *TicketSelector {
	return &TicketSelector{Tiers: tiers, Quantities: make(map[uint64]int, len(tiers))}
}

func (s *TicketSelector) tier(id uint64) (model.TicketTier, bool) {
	for _, t := range s.Tiers {
		if t.ID == id {
			return t, true
		}
	}
	return model.TicketTier{}, false
}

// SetQuantity sets qty for tierID, clamped to [0, MaxQuantity].  A
// quantity that would push the subtotal past MaxSubtotalCents is refused
// with ErrOrderTooLarge and leaves the selection unchanged.
func (s *TicketSelector) SetQuantity(tierID uint64, qty int) error {
	t, ok := s.tier(tierID)
	if !ok {
		return ErrUnknownTier
	}
	qty = min(max(qty, 0), MaxQuantity)
	next := s.subtotal() - uint64(t.PriceCents)*uint64(s.Quantities[tierID]) + uint64(t.PriceCents)*uint64(qty)
	if next > MaxSubtotalCents {
		return ErrOrderTooLarge
	}
	if s.Quantities == nil {
		s.Quantities = make(map[uint64]int)
	}
	if qty == 0 {
		delete(s.Quantities, tierID)
		return nil
	}
	s.Quantities[tierID] = qty
	return nil
}

// TotalTickets is the sum of all quantities.
func (s *TicketSelector) TotalTickets() int {
	n := 0
	for _, q := range s.Quantities {
		n += q
	}
	return n
}

// Subtotal is Σ price × quantity in cents, saturated at MaxSubtotalCents.
func (s *TicketSelector) Subtotal() uint32 {
	return uint32(min(s.subtotal(), MaxSubtotalCents))
}

func (s *TicketSelector) subtotal() uint64 {
	var sum uint64
	for _, t := range s.Tiers {
		sum += uint64(t.PriceCents) * uint64(s.Quantities[t.ID])
	}
	return sum
}

// Lines returns the non-empty selections in catalogue order.
func (s *TicketSelector) Lines() []model.PurchaseLine {
	lines := make([]model.PurchaseLine, 0, len(s.Quantities))
	for _, t := range s.Tiers {
		if q := s.Quantities[t.ID]; q > 0 {
			lines = append(lines, model.PurchaseLine{TierID: t.ID, TierName: t.Name, Quantity: q, PriceCents: t.PriceCents})
		}
	}
	return lines
}

// Totals is the price breakdown of an order.
type Totals struct {
	SubtotalCents uint32 `json:"subtotal_cents"`
	FeeCents      uint32 `json:"fee_cents"`
	DiscountCents uint32 `json:"discount_cents"`
	TotalCents    uint32 `json:"total_cents"`
}

// PlatformFee is 7% of subtotal rounded half up to a whole cent.
func PlatformFee(subtotal uint32) uint32 {
	return uint32((uint64(subtotal)*PlatformFeePercent + 50) / 100)
}

// ComputeTotals applies the fee and a discount capped at subtotal + fee.
func ComputeTotals(subtotal, discount uint32) Totals {
	fee := PlatformFee(subtotal)
	gross := subtotal + fee
	discount = min(discount, gross)
	return Totals{
		SubtotalCents: subtotal,
		FeeCents:      fee,
		DiscountCents: discount,
		TotalCents:    gross - discount,
	}
}

// FormatCents renders cents as dollars, e.g. 16050 -> "$160.50".
func FormatCents(c uint32) string {
	return fmt.Sprintf("$%d.%02d", c/100, c%100)
}
