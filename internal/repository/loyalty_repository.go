package repository

import (
    "context"
    "database/sql"
    "errors"
)

// LoyaltyRepo stores loyalty point balances.  One point is worth one
// cent at checkout.
type LoyaltyRepo struct {
    db *sql.DB
}

// NewLoyaltyRepo returns a new LoyaltyRepo bound to the given database.
func NewLoyaltyRepo(db *sql.DB) *LoyaltyRepo { return &LoyaltyRepo{db: db} }

// Balance returns the user's points.  Users without an account have zero.
func (r *LoyaltyRepo) Balance(ctx context.Context, userID uint64) (uint32, error) {
    var pts uint32
    err := r.db.QueryRowContext(ctx, `SELECT points FROM loyalty_accounts WHERE user_id = ?`, userID).Scan(&pts)
    if errors.Is(err, sql.ErrNoRows) {
        return 0, nil
    }
    return pts, err
}

// DebitTx subtracts points inside the caller's transaction.  The guard in
// the WHERE clause keeps the balance from going negative when two
// checkouts spend the same points.
func (r *LoyaltyRepo) DebitTx(ctx context.Context, tx *sql.Tx, userID uint64, points uint32) error {
    if points == 0 {
        return nil
    }
    res, err := tx.ExecContext(ctx,
        `UPDATE loyalty_accounts SET points = points - ? WHERE user_id = ? AND points >= ?`,
        points, userID, points)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrInsufficientPoints
    }
    return nil
}
