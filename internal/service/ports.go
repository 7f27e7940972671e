package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iliyamo/restaurant-reservation/internal/queue"
)

// Locker provides mutual exclusion keyed by string.  Lock blocks until every
// key is held or ctx is done; the returned func releases all of them.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// EventPublisher delivers reservation events.  Publishing is best effort:
// callers log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReservationEvent) error
}

func tableKey(id uint64) string { return fmt.Sprintf("table:%d", id) }

func reservationKey(id uint64) string { return fmt.Sprintf("reservation:%d", id) }

// sortedKeys returns keys in a fixed order so that callers locking several
// keys never wait on each other in a cycle.
func sortedKeys(keys ...string) []string {
	out := append([]string(nil), keys...)
	sort.Strings(out)
	return out
}

// releaseOnce wraps unlock so it can be deferred and also called early: the
// first call releases, later calls do nothing.
func releaseOnce(unlock func()) func() {
	var once sync.Once
	return func() { once.Do(unlock) }
}
