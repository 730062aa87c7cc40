// Package wizard models the ticket booking wizard: tier quantities, seat
// selection, checkout and confirmation, moved through a linear sequence
// of steps.  It holds no I/O; callers load and persist a Wizard between
// requests.
package wizard

import (
	"github.com/iliyamo/event-booking-wizard/internal/model"
	"github.com/iliyamo/event-booking-wizard/internal/payment"
)

// Step is a wizard position.
type Step string

const (
	StepTickets   Step = "tickets"
	StepSeats     Step = "seats"
	StepCheckout  Step = "checkout"
	StepPayment   Step = "payment"
	StepConfirmed Step = "confirmed"
)

// Wizard is the full state of one booking attempt.
type Wizard struct {
	ID             string              `json:"id"`
	UserID         uint64              `json:"user_id"`
	EventID        uint64              `json:"event_id"`
	Step           Step                `json:"step"`
	Tickets        *TicketSelector     `json:"tickets"`
	Seats          *SeatMap            `json:"seats"`
	Buyer          Buyer               `json:"buyer"`
	UseLoyalty     bool                `json:"use_loyalty"`
	LoyaltyBalance uint32              `json:"loyalty_balance"`
	Payment        payment.Transaction `json:"payment"`
	Confirmation   *Confirmation       `json:"confirmation,omitempty"`
	Notice         string              `json:"notice,omitempty"`
}

// Order is the payload stashed while a checkout awaits payment.
type Order struct {
	EventID    uint64               `json:"event_id"`
	Lines      []model.PurchaseLine `json:"lines"`
	Seats      []int                `json:"seats"`
	Buyer      Buyer                `json:"buyer"`
	UseLoyalty bool                 `json:"use_loyalty"`
	Totals     Totals               `json:"totals"`
}

// New starts a wizard on the tickets step.
func New(id string, userID uint64, event model.Event, tiers []model.TicketTier, occupied []int, loyaltyBalance uint32) *Wizard {
	return &Wizard{
		ID:             id,
		UserID:         userID,
		EventID:        event.ID,
		Step:           StepTickets,
		Tickets:        NewTicketSelector(tiers),
		Seats:          NewSeatMap(occupied),
		LoyaltyBalance: loyaltyBalance,
	}
}

// SetQuantity changes a tier quantity.  The seat ceiling follows the new
// ticket total.
func (w *Wizard) SetQuantity(tierID uint64, qty int) error {
	if w.Step != StepTickets {
		return ErrInvalidStep
	}
	if err := w.Tickets.SetQuantity(tierID, qty); err != nil {
		return err
	}
	w.Seats.SetLimit(w.Tickets.TotalTickets())
	return nil
}

// ToggleSeat selects or deselects a seat.
func (w *Wizard) ToggleSeat(id int) (bool, error) {
	if w.Step != StepSeats {
		return false, ErrInvalidStep
	}
	return w.Seats.SelectSeat(id)
}

// Continue advances from tickets to seats and from seats to checkout.
func (w *Wizard) Continue() error {
	switch w.Step {
	case StepTickets:
		if w.Tickets.TotalTickets() == 0 {
			return ErrNoTickets
		}
		w.Seats.SetLimit(w.Tickets.TotalTickets())
		w.Step = StepSeats
	case StepSeats:
		if len(w.Seats.Selected) != w.Tickets.TotalTickets() {
			return ErrSeatCountMismatch
		}
		w.Step = StepCheckout
	default:
		return ErrInvalidStep
	}
	w.Notice = ""
	return nil
}

// Back returns to the previous editing step.
func (w *Wizard) Back() error {
	switch w.Step {
	case StepSeats:
		w.Step = StepTickets
	case StepCheckout:
		w.Step = StepSeats
	case StepPayment:
		return ErrPaymentPending
	default:
		return ErrInvalidStep
	}
	w.Notice = ""
	return nil
}

// Totals prices the current selection with the loyalty toggle applied.
func (w *Wizard) Totals() Totals {
	return ComputeTotals(w.Tickets.Subtotal(), LoyaltyDiscount(w.LoyaltyBalance, w.UseLoyalty))
}

// Checkout validates the buyer and prices the order.  A positive total
// stashes the order and moves to the payment step; a free order stays on
// checkout for the caller to commit directly.
func (w *Wizard) Checkout(buyer Buyer, useLoyalty bool) (Order, error) {
	if w.Step != StepCheckout {
		if w.Step == StepPayment {
			return Order{}, ErrPaymentPending
		}
		return Order{}, ErrInvalidStep
	}
	buyer = buyer.Normalize()
	if err := buyer.Validate(); err != nil {
		return Order{}, err
	}
	w.Buyer = buyer
	w.UseLoyalty = useLoyalty
	order := Order{
		EventID:    w.EventID,
		Lines:      w.Tickets.Lines(),
		Seats:      w.Seats.SelectedSorted(),
		Buyer:      buyer,
		UseLoyalty: useLoyalty,
		Totals:     w.Totals(),
	}
	if order.Totals.TotalCents > 0 {
		if err := w.Payment.Stash(order, order.Totals.TotalCents); err != nil {
			return Order{}, err
		}
		w.Step = StepPayment
	}
	w.Notice = ""
	return order, nil
}

// CancelPayment drops the stashed order and returns to checkout.
func (w *Wizard) CancelPayment() error {
	if w.Step != StepPayment {
		return ErrInvalidStep
	}
	if err := w.Payment.Cancel(); err != nil {
		return err
	}
	w.Step = StepCheckout
	return nil
}

// Complete records the confirmation and ends the wizard.
func (w *Wizard) Complete(c Confirmation) {
	w.Confirmation = &c
	w.Step = StepConfirmed
	w.Notice = ""
}

// Reopen moves a failed commit back to an editing step with a notice.
// Seats taken meanwhile send the user back to the seat map.
func (w *Wizard) Reopen(notice string, seatsTaken bool) {
	w.Step = StepCheckout
	if seatsTaken {
		w.Step = StepSeats
	}
	w.Notice = notice
}
