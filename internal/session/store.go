// Package session keeps wizard and reschedule dialog state between
// requests.  Values are stored as JSON under a kind and an id and expire
// after a TTL.  A short-lived lock per session serialises submits.
package session

import (
    "context"
    "errors"
    "time"
)

// Kinds of session.
const (
    KindWizard     = "wizard"
    KindReschedule = "reschedule"
)

var (
    // ErrNotFound is returned for a missing or expired session.
    ErrNotFound = errors.New("session not found")
    // ErrLocked is returned when another submit holds the session lock.
    ErrLocked = errors.New("session locked")
)

// Store persists session values.
type Store interface {
    Get(ctx context.Context, kind, id string, v any) error
    Put(ctx context.Context, kind, id string, v any, ttl time.Duration) error
    Delete(ctx context.Context, kind, id string) error
    // Lock takes the submit lock of a session.  The returned release func
    // frees it; the lock also lapses after ttl.
    Lock(ctx context.Context, kind, id string, ttl time.Duration) (release func(), err error)
}

func key(kind, id string) string { return "sess:" + kind + ":" + id }

func lockKey(kind, id string) string { return "lock:" + kind + ":" + id }
