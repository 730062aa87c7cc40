// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
    "errors"

    "github.com/go-sql-driver/mysql"
)

// ErrEventNotFound indicates that an event was not located in the DB.
var ErrEventNotFound = errors.New("event not found")

// ErrBookingNotFound indicates that a vendor booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrSeatTaken is returned when a purchase races another buyer for a seat.
var ErrSeatTaken = errors.New("seat already sold")

// ErrInsufficientPoints is returned when a loyalty debit exceeds the balance.
var ErrInsufficientPoints = errors.New("insufficient loyalty points")

// isDuplicateKey reports MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == 1062
}
