package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/event-booking-wizard/internal/model"
)

// PurchaseRepo writes completed checkouts.  A purchase, its tier lines,
// its seats and the loyalty debit are stored in one transaction so a
// seat race or an overspent balance leaves nothing behind.
type PurchaseRepo struct {
    db      *sql.DB
    loyalty *LoyaltyRepo
}

// NewPurchaseRepo returns a new PurchaseRepo bound to the given database.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo {
    return &PurchaseRepo{db: db, loyalty: NewLoyaltyRepo(db)}
}

// Create inserts p and debits loyaltyPoints from the buyer.  On success the
// generated ID and CreatedAt are set on p.  A seat already sold for the
// event yields ErrSeatTaken; a balance lower than loyaltyPoints yields
// ErrInsufficientPoints.
func (r *PurchaseRepo) Create(ctx context.Context, p *model.Purchase, loyaltyPoints uint32) (err error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    defer func() {
        if err != nil {
            _ = tx.Rollback()
        }
    }()

    if err = r.loyalty.DebitTx(ctx, tx, p.UserID, loyaltyPoints); err != nil {
        return err
    }

    const ins = `INSERT INTO purchases (user_id, event_id, buyer_name, buyer_email, subtotal_cents, fee_cents, discount_cents, total_cents, payment_ref)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    var ref sql.NullString
    if p.PaymentRef != nil {
        ref = sql.NullString{String: *p.PaymentRef, Valid: true}
    }
    res, err := tx.ExecContext(ctx, ins, p.UserID, p.EventID, p.BuyerName, p.BuyerEmail,
        p.SubtotalCents, p.FeeCents, p.DiscountCents, p.TotalCents, ref)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    p.ID = uint64(id)

    if err = r.insertLinesTx(ctx, tx, p); err != nil {
        return err
    }
    if err = r.insertSeatsTx(ctx, tx, p); err != nil {
        if isDuplicateKey(err) {
            err = ErrSeatTaken
        }
        return err
    }
    if err = tx.QueryRowContext(ctx, `SELECT created_at FROM purchases WHERE id = ?`, p.ID).Scan(&p.CreatedAt); err != nil {
        return err
    }
    return tx.Commit()
}

func (r *PurchaseRepo) insertLinesTx(ctx context.Context, tx *sql.Tx, p *model.Purchase) error {
    if len(p.Lines) == 0 {
        return nil
    }
    query := `INSERT INTO purchase_lines (purchase_id, tier_id, quantity, price_cents) VALUES `
    args := make([]interface{}, 0, len(p.Lines)*4)
    for i, l := range p.Lines {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?)"
        args = append(args, p.ID, l.TierID, l.Quantity, l.PriceCents)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}

func (r *PurchaseRepo) insertSeatsTx(ctx context.Context, tx *sql.Tx, p *model.Purchase) error {
    if len(p.Seats) == 0 {
        return nil
    }
    query := `INSERT INTO purchase_seats (purchase_id, event_id, seat_id) VALUES `
    args := make([]interface{}, 0, len(p.Seats)*3)
    for i, s := range p.Seats {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?)"
        args = append(args, p.ID, p.EventID, s)
    }
    _, err := tx.ExecContext(ctx, query, args...)
    return err
}
