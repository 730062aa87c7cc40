package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/event-booking-wizard/internal/model"
)

// PaymentIntentRepo is the ledger behind payment.LedgerGateway.
type PaymentIntentRepo struct {
    db *sql.DB
}

// NewPaymentIntentRepo returns a new PaymentIntentRepo bound to the given database.
func NewPaymentIntentRepo(db *sql.DB) *PaymentIntentRepo { return &PaymentIntentRepo{db: db} }

// Insert stores an intent.
func (r *PaymentIntentRepo) Insert(ctx context.Context, pi model.PaymentIntent) error {
    const q = `INSERT INTO payment_intents (id, reference, amount_cents, method, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`
    _, err := r.db.ExecContext(ctx, q, pi.ID, pi.Reference, pi.AmountCents, pi.Method, pi.Status, pi.CreatedAt.UTC())
    return err
}
