package session

import (
    "context"
    "encoding/json"
    "errors"
    "time"

    "github.com/google/uuid"
    "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token, so a
// lock that lapsed and was taken by another submit is left alone.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisStore keeps sessions in Redis.
type RedisStore struct {
    rdb *redis.Client
}

// NewRedisStore returns a store backed by rdb.
func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Get(ctx context.Context, kind, id string, v any) error {
    bs, err := s.rdb.Get(ctx, key(kind, id)).Bytes()
    if errors.Is(err, redis.Nil) {
        return ErrNotFound
    }
    if err != nil {
        return err
    }
    return json.Unmarshal(bs, v)
}

func (s *RedisStore) Put(ctx context.Context, kind, id string, v any, ttl time.Duration) error {
    bs, err := json.Marshal(v)
    if err != nil {
        return err
    }
    return s.rdb.Set(ctx, key(kind, id), bs, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, kind, id string) error {
    return s.rdb.Del(ctx, key(kind, id)).Err()
}

func (s *RedisStore) Lock(ctx context.Context, kind, id string, ttl time.Duration) (func(), error) {
    k := lockKey(kind, id)
    token := uuid.NewString()
    ok, err := s.rdb.SetNX(ctx, k, token, ttl).Result()
    if err != nil {
        return nil, err
    }
    if !ok {
        return nil, ErrLocked
    }
    return func() {
        // The request context may already be cancelled.
        ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
        defer cancel()
        _ = releaseScript.Run(ctx, s.rdb, []string{k}, token).Err()
    }, nil
}
