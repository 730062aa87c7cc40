package reschedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/event-booking-wizard/internal/model"
	"github.com/iliyamo/event-booking-wizard/internal/payment"
)

// State of a reschedule dialog.
type State string

const (
	StateEditing         State = "editing"
	StateAwaitingPayment State = "awaiting_payment"
	StateSubmitting      State = "submitting"
	StateClosed          State = "closed"
)

var (
	ErrNotEditing   = errors.New("dialog is not editable")
	ErrConflict     = errors.New("the selected dates are already booked")
	ErrNoPayment    = errors.New("no payment is pending")
	ErrDialogClosed = errors.New("dialog is closed")
	ErrSameWindow   = errors.New("booking already has this window")
)

// Request is the payload replayed to the booking update.
type Request struct {
	BookingID  uint64           `json:"booking_id"`
	TimingMode model.TimingMode `json:"timing_mode"`
	Window     model.Window     `json:"window"`
	Reason     string           `json:"reason,omitempty"`
}

// Outcome tells the caller what Submit did.
type Outcome string

const (
	OutcomeSubmitted       Outcome = "submitted"
	OutcomeAwaitingPayment Outcome = "awaiting_payment"
)

// Dialog is a reschedule session for one booking.
type Dialog struct {
	ID              string              `json:"id"`
	UserID          uint64              `json:"user_id"`
	BookingID       uint64              `json:"booking_id"`
	VendorID        uint64              `json:"vendor_id"`
	FeeCents        uint32              `json:"fee_cents"`
	Original        model.Window        `json:"original"`
	Draft           model.BookingDraft  `json:"draft"`
	State           State               `json:"state"`
	Error           string              `json:"error,omitempty"`
	Payment         payment.Transaction `json:"payment"`
	Result          *model.Window       `json:"result,omitempty"`
	PaymentIntentID string              `json:"payment_intent_id,omitempty"`
}

// Evaluation is the derived view of the current draft.
type Evaluation struct {
	Window    *model.Window `json:"window,omitempty"`
	Conflict  bool          `json:"conflict"`
	CanSubmit bool          `json:"can_submit"`
	Warning   string        `json:"warning,omitempty"`
}

// NewDialog opens a dialog seeded with the booking's current window.
func NewDialog(id string, userID uint64, b model.VendorBooking) *Dialog {
	mode := b.TimingMode
	if !mode.Valid() {
		mode = model.TimingFullDay
		if !b.DateEnd.Equal(b.DateStart) {
			mode = model.TimingMultiDay
		} else if b.StartTime != dayStart || b.EndTime != dayEnd {
			mode = model.TimingHourly
		}
	}
	draft := model.BookingDraft{
		TimingMode: mode,
		StartDate:  b.DateStart.Format(model.DateLayout),
	}
	switch mode {
	case model.TimingMultiDay:
		draft.EndDate = b.DateEnd.Format(model.DateLayout)
	case model.TimingHourly:
		draft.TimeSlot = b.StartTime + "-" + b.EndTime
	}
	return &Dialog{
		ID:        id,
		UserID:    userID,
		BookingID: b.ID,
		VendorID:  b.VendorID,
		FeeCents:  b.RescheduleFeeCents,
		Original: model.Window{
			DateStart: b.DateStart.Format(model.DateLayout),
			EndDate:   b.DateEnd.Format(model.DateLayout),
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		},
		Draft: draft,
		State: StateEditing,
	}
}

// Edit replaces the draft.
func (d *Dialog) Edit(draft model.BookingDraft) error {
	if d.State != StateEditing {
		return ErrNotEditing
	}
	d.Draft = draft
	d.Error = ""
	return nil
}

// Evaluate resolves the draft and checks it against bookings.  It is
// recomputed on every read and never stored.
func (d *Dialog) Evaluate(bookings []model.VendorBooking) Evaluation {
	w, err := Resolve(d.Draft)
	if err != nil {
		return Evaluation{Warning: err.Error()}
	}
	ev := Evaluation{Window: &w}
	if Conflicts(w, d.Draft.TimingMode, bookings, d.BookingID) {
		ev.Conflict = true
		ev.Warning = ErrConflict.Error()
		return ev
	}
	ev.CanSubmit = d.State == StateEditing
	return ev
}

// Submit resolves and checks the draft.  With a fee the request is
// stashed for payment; without one mutate runs immediately.
func (d *Dialog) Submit(ctx context.Context, bookings []model.VendorBooking, mutate payment.CommitFunc) (Outcome, error) {
	if err := d.editable(); err != nil {
		return "", err
	}
	w, err := Resolve(d.Draft)
	if err != nil {
		return "", err
	}
	if w == d.Original {
		return "", ErrSameWindow
	}
	if Conflicts(w, d.Draft.TimingMode, bookings, d.BookingID) {
		return "", ErrConflict
	}
	req := Request{BookingID: d.BookingID, TimingMode: d.Draft.TimingMode, Window: w, Reason: d.Draft.Reason}

	if d.FeeCents > 0 {
		if err := d.Payment.Stash(req, d.FeeCents); err != nil {
			return "", err
		}
		d.State = StateAwaitingPayment
		d.Error = ""
		return OutcomeAwaitingPayment, nil
	}

	d.State = StateSubmitting
	if err := d.Payment.CommitDirect(ctx, req, mutate); err != nil {
		d.State = StateEditing
		d.Error = err.Error()
		return "", err
	}
	d.close(&w, "")
	return OutcomeSubmitted, nil
}

// ConfirmPayment pays the fee and replays the stashed request.  A
// gateway failure keeps the payment pending; a failed update returns the
// dialog to editing.
func (d *Dialog) ConfirmPayment(ctx context.Context, gw payment.Gateway, method string, mutate payment.CommitFunc) (string, error) {
	if d.State != StateAwaitingPayment {
		return "", ErrNoPayment
	}
	var w model.Window
	d.State = StateSubmitting
	intentID, err := d.Payment.Confirm(ctx, gw, method, fmt.Sprintf("reschedule:%d", d.BookingID), func(ctx context.Context, raw json.RawMessage, intentID string) error {
		req, err := DecodeRequest(raw)
		if err != nil {
			return err
		}
		w = req.Window
		return mutate(ctx, raw, intentID)
	})
	if err != nil {
		if d.Payment.Pending() {
			d.State = StateAwaitingPayment
		} else {
			d.State = StateEditing
		}
		d.Error = err.Error()
		return "", err
	}
	d.close(&w, intentID)
	return intentID, nil
}

// CancelPayment discards the stashed request and resumes editing.
func (d *Dialog) CancelPayment() error {
	if d.State != StateAwaitingPayment {
		return ErrNoPayment
	}
	if err := d.Payment.Cancel(); err != nil {
		return err
	}
	d.State = StateEditing
	d.Error = ""
	return nil
}

// Close ends the dialog, aborting any pending payment.
func (d *Dialog) Close() {
	d.Payment.Abort()
	d.State = StateClosed
}

func (d *Dialog) close(w *model.Window, intentID string) {
	d.Result = w
	d.PaymentIntentID = intentID
	d.Error = ""
	d.State = StateClosed
}

func (d *Dialog) editable() error {
	switch d.State {
	case StateEditing:
		return nil
	case StateClosed:
		return ErrDialogClosed
	}
	return ErrNotEditing
}

// DecodeRequest parses a stashed request payload.
func DecodeRequest(raw []byte) (Request, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return Request{}, fmt.Errorf("decode reschedule request: %w", err)
	}
	return req, nil
}
