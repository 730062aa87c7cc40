package repository

import (
    "context"
    "database/sql"
)

// SeatRepo derives seat occupancy for an event.  A seat is occupied when
// it has been sold or is withheld from sale.
type SeatRepo struct {
    db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the given database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// OccupiedSeats returns the occupied seat ids of an event in ascending
// order.
func (r *SeatRepo) OccupiedSeats(ctx context.Context, eventID uint64) ([]int, error) {
    const q = `SELECT seat_id FROM event_blocked_seats WHERE event_id = ?
               UNION
               SELECT seat_id FROM purchase_seats WHERE event_id = ?
               ORDER BY seat_id`
    rows, err := r.db.QueryContext(ctx, q, eventID, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := []int{}
    for rows.Next() {
        var id int
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        seats = append(seats, id)
    }
    return seats, rows.Err()
}
