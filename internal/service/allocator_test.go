package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/lock"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memory"
)

func TestAssignSeatsReservation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tbl := f.table(t, "Bar #1", 4)
	r := f.booking(t, 3)

	got, err := f.allocator.Assign(ctx, tbl.ID, r.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReservationID)
	assert.Equal(t, r.ID, *got.ReservationID)

	stored, err := f.reservations.Read(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusSeated, stored.Status)

	assert.Equal(t, []string{queue.EventReservationCreated, queue.EventReservationSeated}, f.events.kinds())
	seated := f.events.events[1]
	assert.Equal(t, tbl.ID, seated.TableID)
	assert.Equal(t, "Bar #1", seated.TableName)
}

func TestAssignRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("capacity", func(t *testing.T) {
		f := newFixture()
		tbl := f.table(t, "Two top", 2)
		r := f.booking(t, 5)
		_, err := f.allocator.Assign(ctx, tbl.ID, r.ID)
		assert.True(t, IsKind(err, KindInsufficientCapacity))
		assertFree(t, f, tbl.ID)
	})

	t.Run("occupied", func(t *testing.T) {
		f := newFixture()
		tbl := f.table(t, "Patio", 6)
		first, second := f.booking(t, 2), f.booking(t, 2)
		_, err := f.allocator.Assign(ctx, tbl.ID, first.ID)
		require.NoError(t, err)
		_, err = f.allocator.Assign(ctx, tbl.ID, second.ID)
		assert.True(t, IsKind(err, KindTableOccupied))
	})

	t.Run("already seated elsewhere", func(t *testing.T) {
		f := newFixture()
		a, b := f.table(t, "A1", 4), f.table(t, "B1", 4)
		r := f.booking(t, 2)
		_, err := f.allocator.Assign(ctx, a.ID, r.ID)
		require.NoError(t, err)
		_, err = f.allocator.Assign(ctx, b.ID, r.ID)
		assert.True(t, IsKind(err, KindAlreadySeated))
		assertFree(t, f, b.ID)
	})

	t.Run("cancelled reservation", func(t *testing.T) {
		f := newFixture()
		tbl := f.table(t, "A1", 4)
		r := f.booking(t, 2)
		_, err := f.reservations.UpdateStatus(ctx, r.ID, "cancelled")
		require.NoError(t, err)
		_, err = f.allocator.Assign(ctx, tbl.ID, r.ID)
		assert.True(t, IsKind(err, KindIllegalTransition))
		assertFree(t, f, tbl.ID)
	})

	t.Run("missing rows", func(t *testing.T) {
		f := newFixture()
		tbl := f.table(t, "A1", 4)
		r := f.booking(t, 2)
		_, err := f.allocator.Assign(ctx, 999, r.ID)
		assert.True(t, IsKind(err, KindNotFound))
		_, err = f.allocator.Assign(ctx, tbl.ID, 999)
		assert.True(t, IsKind(err, KindNotFound))
	})
}

func TestAssignSameReservationIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tbl := f.table(t, "A1", 4)
	r := f.booking(t, 2)

	_, err := f.allocator.Assign(ctx, tbl.ID, r.ID)
	require.NoError(t, err)
	again, err := f.allocator.Assign(ctx, tbl.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, *again.ReservationID)
	assert.Equal(t, []string{queue.EventReservationCreated, queue.EventReservationSeated}, f.events.kinds())
}

func TestUnassignFinishesAndFrees(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tbl := f.table(t, "A1", 4)
	r := f.booking(t, 2)
	_, err := f.allocator.Assign(ctx, tbl.ID, r.ID)
	require.NoError(t, err)

	freed, err := f.allocator.Unassign(ctx, tbl.ID)
	require.NoError(t, err)
	assert.Nil(t, freed.ReservationID)

	stored, err := f.reservations.Read(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, stored.Status)
	assert.Equal(t, queue.EventReservationFinished, f.events.kinds()[2])

	_, err = f.allocator.Unassign(ctx, tbl.ID)
	assert.True(t, IsKind(err, KindTableNotOccupied))
	_, err = f.allocator.Unassign(ctx, 42)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestUnassignAlreadyFinishedOnlyClearsTable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tbl := f.table(t, "A1", 4)
	r := f.booking(t, 2)
	_, err := f.allocator.Assign(ctx, tbl.ID, r.ID)
	require.NoError(t, err)
	_, err = f.reservations.UpdateStatus(ctx, r.ID, "finished")
	require.NoError(t, err)
	before := len(f.events.kinds())

	freed, err := f.allocator.Unassign(ctx, tbl.ID)
	require.NoError(t, err)
	assert.Nil(t, freed.ReservationID)
	assert.Len(t, f.events.kinds(), before)
}

var errBoom = errors.New("disk on fire")

// brokenStore fails reservation status writes inside transactions.
type brokenStore struct{ repository.Store }

func (b brokenStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return b.Store.InTx(ctx, func(tx repository.Store) error { return fn(brokenStore{tx}) })
}

func (b brokenStore) Reservations() repository.ReservationStore {
	return brokenReservations{b.Store.Reservations()}
}

type brokenReservations struct{ repository.ReservationStore }

func (brokenReservations) Update(context.Context, uint64, model.Status) (model.Reservation, error) {
	return model.Reservation{}, errBoom
}

func (brokenReservations) Finish(context.Context, uint64) (model.Reservation, error) {
	return model.Reservation{}, errBoom
}

func TestAssignRollsBackOnStoreFailure(t *testing.T) {
	base := memory.NewStore()
	healthy := newFixtureWith(base)
	tbl := healthy.table(t, "A1", 4)
	r := healthy.booking(t, 2)

	broken := newFixtureWith(brokenStore{base})
	_, err := broken.allocator.Assign(context.Background(), tbl.ID, r.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindStore))
	assert.ErrorIs(t, err, errBoom)

	assertFree(t, healthy, tbl.ID)
	stored, err := healthy.reservations.Read(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBooked, stored.Status)
}

func TestUnassignRollsBackOnStoreFailure(t *testing.T) {
	base := memory.NewStore()
	healthy := newFixtureWith(base)
	tbl := healthy.table(t, "A1", 4)
	r := healthy.booking(t, 2)
	_, err := healthy.allocator.Assign(context.Background(), tbl.ID, r.ID)
	require.NoError(t, err)

	broken := newFixtureWith(brokenStore{base})
	_, err = broken.allocator.Unassign(context.Background(), tbl.ID)
	assert.True(t, IsKind(err, KindStore))

	got, err := base.Tables().Read(context.Background(), tbl.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ReservationID)
	assert.Equal(t, r.ID, *got.ReservationID)
}

func TestConcurrentAssignsSeatExactlyOne(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tbl := f.table(t, "Chef's table", 8)

	const n = 16
	ids := make([]uint64, n)
	for i := range ids {
		ids[i] = f.booking(t, 2).ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		occupied int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			_, err := f.allocator.Assign(ctx, tbl.ID, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case IsKind(err, KindTableOccupied):
				occupied++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, occupied)

	list, err := f.reservations.List(ctx, "2026-10-16", "")
	require.NoError(t, err)
	seated := 0
	for _, r := range list {
		if r.Status == model.StatusSeated {
			seated++
		}
	}
	assert.Equal(t, 1, seated)
}

func TestAssignHonoursCancelledContext(t *testing.T) {
	f := newFixture()
	tbl := f.table(t, "A1", 4)
	r := f.booking(t, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.allocator.Assign(ctx, tbl.ID, r.ID)
	assert.True(t, IsKind(err, KindStore))
	assertFree(t, f, tbl.ID)
}

// stallingPublisher parks every event of one kind until release is closed.
type stallingPublisher struct {
	kind    string
	entered chan struct{}
	release chan struct{}
}

func newStallingPublisher(kind string) *stallingPublisher {
	return &stallingPublisher{kind: kind, entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (p *stallingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	if ev.Kind != p.kind {
		return nil
	}
	p.entered <- struct{}{}
	<-p.release
	return nil
}

func (p *stallingPublisher) waitEntered(t *testing.T) {
	t.Helper()
	select {
	case <-p.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher was never called")
	}
}

func TestSlowPublishDoesNotHoldTableLock(t *testing.T) {
	store := memory.NewStore()
	f := newFixtureWith(store)
	pub := newStallingPublisher(queue.EventReservationSeated)
	alloc := NewAllocator(store, lock.NewKeyed(), pub, nil, nil)
	tbl := f.table(t, "Booth", 4)
	r := f.booking(t, 2)

	done := make(chan error, 1)
	go func() {
		_, err := alloc.Assign(context.Background(), tbl.ID, r.ID)
		done <- err
	}()
	pub.waitEntered(t)

	// The seated event is still in flight; the table must already be free to lock.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := alloc.Unassign(ctx, tbl.ID)
	require.NoError(t, err)
	assertFree(t, f, tbl.ID)

	close(pub.release)
	require.NoError(t, <-done)
}

func assertFree(t *testing.T, f *fixture, tableID uint64) {
	t.Helper()
	got, err := f.store.Tables().Read(context.Background(), tableID)
	require.NoError(t, err)
	assert.Nil(t, got.ReservationID)
}
