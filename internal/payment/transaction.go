// Package payment implements the two-phase hand-off used when an action
// carries a fee: the action's payload is stashed, the user confirms a
// payment method, and only then is the payload replayed to the mutation.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// State of a Transaction.
type State string

const (
	StateDraft           State = "draft"
	StateAwaitingPayment State = "awaiting_payment"
	StateCommitted       State = "committed"
	StateAborted         State = "aborted"
)

var (
	ErrNotAwaitingPayment = errors.New("no payment is pending")
	ErrPaymentPending     = errors.New("a payment is already pending")
	ErrZeroAmount         = errors.New("payment amount must be positive")
	ErrFinished           = errors.New("transaction already finished")
	ErrGateway            = errors.New("payment gateway failed")
)

// CommitFunc applies a stashed payload.  intentID is empty for actions
// that did not require payment.
type CommitFunc func(ctx context.Context, payload json.RawMessage, intentID string) error

// CarriedIntent is a paid intent whose mutation failed.  It is reused by
// the next confirmation of the same amount instead of charging again.
type CarriedIntent struct {
	ID          string `json:"id"`
	AmountCents uint32 `json:"amount_cents"`
}

// Transaction is the explicit saga object behind the payment hand-off.
// The zero value is a Draft.
type Transaction struct {
	State       State           `json:"state"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	AmountCents uint32          `json:"amount_cents,omitempty"`
	IntentID    string          `json:"payment_intent_id,omitempty"`
	Carried     *CarriedIntent  `json:"carried_intent,omitempty"`
}

func (t *Transaction) state() State {
	if t.State == "" {
		return StateDraft
	}
	return t.State
}

// Pending reports whether a payload is waiting for payment confirmation.
func (t *Transaction) Pending() bool { return t.state() == StateAwaitingPayment }

// Finished reports whether the transaction reached a terminal state.
func (t *Transaction) Finished() bool {
	s := t.state()
	return s == StateCommitted || s == StateAborted
}

// Stash stores payload and moves the transaction to AwaitingPayment.
func (t *Transaction) Stash(payload any, amountCents uint32) error {
	switch t.state() {
	case StateAwaitingPayment:
		return ErrPaymentPending
	case StateCommitted, StateAborted:
		return ErrFinished
	}
	if amountCents == 0 {
		return ErrZeroAmount
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	t.Payload = raw
	t.AmountCents = amountCents
	t.State = StateAwaitingPayment
	return nil
}

// Cancel discards the stashed payload and returns to Draft.
func (t *Transaction) Cancel() error {
	if t.state() != StateAwaitingPayment {
		return ErrNotAwaitingPayment
	}
	t.clear()
	t.State = StateDraft
	return nil
}

// Abort ends the transaction without committing.
func (t *Transaction) Abort() {
	if t.Finished() {
		return
	}
	t.clear()
	t.State = StateAborted
}

// Confirm charges the pending amount through gw and replays the stashed
// payload to commit.  A gateway error leaves the transaction awaiting
// payment so the user can retry.  A commit error returns it to Draft and
// keeps the paid intent for the next attempt.
func (t *Transaction) Confirm(ctx context.Context, gw Gateway, method, reference string, commit CommitFunc) (string, error) {
	if t.state() != StateAwaitingPayment {
		return "", ErrNotAwaitingPayment
	}

	var intentID string
	if t.Carried != nil && t.Carried.AmountCents == t.AmountCents {
		intentID = t.Carried.ID
	} else {
		intent, err := gw.CreateIntent(ctx, IntentRequest{
			Reference:   reference,
			AmountCents: t.AmountCents,
			Method:      method,
		})
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrGateway, err)
		}
		intentID = intent.ID
	}

	if err := commit(ctx, t.Payload, intentID); err != nil {
		t.Carried = &CarriedIntent{ID: intentID, AmountCents: t.AmountCents}
		t.clear()
		t.State = StateDraft
		return "", err
	}
	t.Carried = nil
	t.clear()
	t.IntentID = intentID
	t.State = StateCommitted
	return intentID, nil
}

// CommitDirect runs commit for an action that needs no payment.  On
// failure the transaction stays in Draft.
func (t *Transaction) CommitDirect(ctx context.Context, payload any, commit CommitFunc) error {
	switch t.state() {
	case StateAwaitingPayment:
		return ErrPaymentPending
	case StateCommitted, StateAborted:
		return ErrFinished
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := commit(ctx, raw, ""); err != nil {
		return err
	}
	t.State = StateCommitted
	return nil
}

func (t *Transaction) clear() {
	t.Payload = nil
	t.AmountCents = 0
}
