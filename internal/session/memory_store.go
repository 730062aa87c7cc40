package session

import (
    "context"
    "encoding/json"
    "sync"
    "time"

    "github.com/iliyamo/event-booking-wizard/internal/clock"
)

type memEntry struct {
    data    []byte
    expires time.Time
}

// MemoryStore keeps sessions in process.  It is used when Redis is not
// reachable and in tests.  Values are JSON encoded so callers see the same
// copy semantics as with Redis.
type MemoryStore struct {
    mu    sync.Mutex
    clock clock.Clock
    data  map[string]memEntry
    locks map[string]time.Time
}

// NewMemoryStore returns an empty store that reads time from clk.
func NewMemoryStore(clk clock.Clock) *MemoryStore {
    return &MemoryStore{
        clock: clk,
        data:  map[string]memEntry{},
        locks: map[string]time.Time{},
    }
}

func (s *MemoryStore) Get(_ context.Context, kind, id string, v any) error {
    s.mu.Lock()
    e, ok := s.data[key(kind, id)]
    if ok && !s.clock.Now().Before(e.expires) {
        delete(s.data, key(kind, id))
        ok = false
    }
    s.mu.Unlock()
    if !ok {
        return ErrNotFound
    }
    return json.Unmarshal(e.data, v)
}

func (s *MemoryStore) Put(_ context.Context, kind, id string, v any, ttl time.Duration) error {
    bs, err := json.Marshal(v)
    if err != nil {
        return err
    }
    s.mu.Lock()
    s.data[key(kind, id)] = memEntry{data: bs, expires: s.clock.Now().Add(ttl)}
    s.mu.Unlock()
    return nil
}

func (s *MemoryStore) Delete(_ context.Context, kind, id string) error {
    s.mu.Lock()
    delete(s.data, key(kind, id))
    s.mu.Unlock()
    return nil
}

func (s *MemoryStore) Lock(_ context.Context, kind, id string, ttl time.Duration) (func(), error) {
    k := lockKey(kind, id)
    s.mu.Lock()
    defer s.mu.Unlock()
    now := s.clock.Now()
    if until, held := s.locks[k]; held && now.Before(until) {
        return nil, ErrLocked
    }
    until := now.Add(ttl)
    s.locks[k] = until
    return func() {
        s.mu.Lock()
        if s.locks[k].Equal(until) {
            delete(s.locks, k)
        }
        s.mu.Unlock()
    }, nil
}
