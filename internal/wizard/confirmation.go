package wizard

import "github.com/iliyamo/event-booking-wizard/internal/model"

// Confirmation summarises a committed order.
type Confirmation struct {
	PurchaseID      uint64               `json:"purchase_id"`
	EventID         uint64               `json:"event_id"`
	Lines           []model.PurchaseLine `json:"lines"`
	Seats           []int                `json:"seats"`
	SeatLabels      []string             `json:"seat_labels"`
	Buyer           Buyer                `json:"buyer"`
	Totals          Totals               `json:"totals"`
	TotalDisplay    string               `json:"total_display"`
	PaymentIntentID string               `json:"payment_intent_id,omitempty"`
}

// NewConfirmation builds the summary for a stored order.
func NewConfirmation(purchaseID uint64, o Order, intentID string) Confirmation {
	labels := make([]string, 0, len(o.Seats))
	for _, id := range o.Seats {
		labels = append(labels, SeatLabel(id))
	}
	return Confirmation{
		PurchaseID:      purchaseID,
		EventID:         o.EventID,
		Lines:           o.Lines,
		Seats:           o.Seats,
		SeatLabels:      labels,
		Buyer:           o.Buyer,
		Totals:          o.Totals,
		TotalDisplay:    FormatCents(o.Totals.TotalCents),
		PaymentIntentID: intentID,
	}
}
