package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token, so a
// lock that expired and was taken by another server is left alone.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// ErrLockTimeout is returned when a key stays held for longer than the
// configured wait.
var ErrLockTimeout = errors.New("lock wait timed out")

// Redis is a distributed Locker built on SET NX PX.  Each held key expires
// after TTL even if the holder dies; Wait bounds how long Lock polls.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

// NewRedis returns a Redis locker.  Zero durations fall back to a 10s TTL,
// a 5s wait and a 25ms poll interval.
func NewRedis(rdb *redis.Client, prefix string, ttl, wait time.Duration) *Redis {
	if prefix == "" {
		prefix = "lock"
	}
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Redis{rdb: rdb, prefix: prefix, ttl: ttl, wait: wait, poll: 25 * time.Millisecond}
}

type heldKey struct {
	key, token string
}

// Lock acquires every key in sorted order.
func (l *Redis) Lock(ctx context.Context, keys ...string) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	held := make([]heldKey, 0, len(keys))
	for _, key := range uniqueSorted(keys) {
		h, err := l.acquire(ctx, l.prefix+":"+key)
		if err != nil {
			l.release(held)
			return nil, err
		}
		held = append(held, h)
	}
	return func() { l.release(held) }, nil
}

func (l *Redis) acquire(ctx context.Context, key string) (heldKey, error) {
	token := uuid.NewString()
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return heldKey{}, fmt.Errorf("%w: %s", ErrLockTimeout, key)
			}
			return heldKey{}, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			return heldKey{key: key, token: token}, nil
		}
		t := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return heldKey{}, fmt.Errorf("%w: %s", ErrLockTimeout, key)
		case <-t.C:
		}
	}
}

// release runs on a fresh context so that a cancelled request still frees
// its keys.
func (l *Redis) release(held []heldKey) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for i := len(held) - 1; i >= 0; i-- {
		_ = releaseScript.Run(ctx, l.rdb, []string{held[i].key}, held[i].token).Err()
	}
}
