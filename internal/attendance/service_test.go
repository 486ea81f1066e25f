package attendance

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
	"github.com/kizunalink/kizuna-backend/internal/event"
)

type key struct{ eventID, userID uint }

// fakeLedger mimics the row store including the uniqueness guarantee the
// composite index gives the real one, so it is safe under concurrent joins.
type fakeLedger struct {
	mu   sync.Mutex
	rows map[key]*Attendance
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: map[key]*Attendance{}}
}

func (l *fakeLedger) InsertIfAbsent(ctx context.Context, a *Attendance) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key{a.EventID, a.UserID}
	if _, ok := l.rows[k]; ok {
		return false, nil
	}
	copied := *a
	l.rows[k] = &copied
	return true, nil
}

func (l *fakeLedger) DeleteIfPresent(ctx context.Context, eventID, userID uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := key{eventID, userID}
	if _, ok := l.rows[k]; !ok {
		return false, nil
	}
	delete(l.rows, k)
	return true, nil
}

func (l *fakeLedger) CountForEvent(ctx context.Context, eventID uint) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k := range l.rows {
		if k.eventID == eventID {
			n++
		}
	}
	return n, nil
}

func (l *fakeLedger) ExistsFor(ctx context.Context, eventID, userID uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.rows[key{eventID, userID}]
	return ok, nil
}

func (l *fakeLedger) LiveUserIDs(ctx context.Context, eventID uint) ([]uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []uint
	for k := range l.rows {
		if k.eventID == eventID {
			out = append(out, k.userID)
		}
	}
	return out, nil
}

func (l *fakeLedger) EventIDsForUser(ctx context.Context, userID uint) ([]uint, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []uint
	for k := range l.rows {
		if k.userID == userID {
			out = append(out, k.eventID)
		}
	}
	return out, nil
}

func (l *fakeLedger) ListForEvent(ctx context.Context, eventID uint) ([]RosterEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []RosterEntry
	for k, a := range l.rows {
		if k.eventID == eventID {
			out = append(out, RosterEntry{
				UserID:             a.UserID,
				Greeting:           a.Greeting,
				AfterPartyInterest: a.AfterPartyInterest,
			})
		}
	}
	return out, nil
}

type fakeEvents struct {
	events map[uint]*event.Event
}

func (r *fakeEvents) Insert(e *event.Event) error { panic("unused") }

func (r *fakeEvents) FetchByID(id uint) (*event.Event, error) {
	e, ok := r.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEvents) FetchByIDs(ids []uint) ([]event.Event, error)            { panic("unused") }
func (r *fakeEvents) FetchByFilter(f event.ListFilter) ([]event.Event, error) { panic("unused") }
func (r *fakeEvents) FetchByHost(hostID uint) ([]event.Event, error)          { panic("unused") }
func (r *fakeEvents) UpdateStatus(id uint, status string) error               { panic("unused") }
func (r *fakeEvents) UpdateCoverImage(id uint, url string) error              { panic("unused") }

func newTestService(events ...*event.Event) (*Service, *fakeLedger) {
	byID := map[uint]*event.Event{}
	for _, e := range events {
		byID[e.ID] = e
	}
	ledger := newFakeLedger()
	return NewService(ledger, &fakeEvents{events: byID}, nil), ledger
}

func scheduledEvent(id, hostID uint) *event.Event {
	return &event.Event{
		ID:       id,
		HostID:   hostID,
		Title:    "Board Game Night",
		City:     "Tokyo",
		Category: "Social",
		StartsAt: time.Date(2025, 10, 24, 19, 0, 0, 0, time.UTC),
		Status:   event.StatusScheduled,
	}
}

func attendee(id uint) auth.Identity {
	return auth.Identity{UserID: id, FullName: "Kenji Sato"}
}

func TestRequestAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("first join creates a row", func(t *testing.T) {
		svc, ledger := newTestService(scheduledEvent(1, 10))

		a, err := svc.RequestAttendance(ctx, attendee(7), 1, &JoinRequest{Greeting: "yoroshiku"}, "")
		require.NoError(t, err)
		assert.Equal(t, uint(7), a.UserID)

		count, _ := ledger.CountForEvent(ctx, 1)
		assert.Equal(t, 1, count)
	})

	t.Run("duplicate join reports already attending", func(t *testing.T) {
		svc, ledger := newTestService(scheduledEvent(1, 10))

		_, err := svc.RequestAttendance(ctx, attendee(7), 1, &JoinRequest{}, "")
		require.NoError(t, err)

		_, err = svc.RequestAttendance(ctx, attendee(7), 1, &JoinRequest{}, "")
		assert.ErrorIs(t, err, domain.ErrAlreadyAttending)

		count, _ := ledger.CountForEvent(ctx, 1)
		assert.Equal(t, 1, count)
	})

	t.Run("cancelled event rejects joins", func(t *testing.T) {
		ev := scheduledEvent(1, 10)
		ev.Status = event.StatusCancelled
		svc, _ := newTestService(ev)

		_, err := svc.RequestAttendance(ctx, attendee(7), 1, &JoinRequest{}, "")
		assert.ErrorIs(t, err, domain.ErrEventCancelled)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.RequestAttendance(ctx, attendee(7), 404, &JoinRequest{}, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("concurrent joins leave exactly one row", func(t *testing.T) {
		svc, ledger := newTestService(scheduledEvent(1, 10))

		const n = 32
		var wg sync.WaitGroup
		var created int32
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.RequestAttendance(ctx, attendee(7), 1, &JoinRequest{}, ""); err == nil {
					atomic.AddInt32(&created, 1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(1), created)
		count, _ := ledger.CountForEvent(ctx, 1)
		assert.Equal(t, 1, count)
	})
}

func TestWithdrawAttendance(t *testing.T) {
	ctx := context.Background()

	t.Run("removes an existing row", func(t *testing.T) {
		svc, ledger := newTestService(scheduledEvent(1, 10))

		_, err := svc.RequestAttendance(ctx, attendee(7), 1, &JoinRequest{}, "")
		require.NoError(t, err)

		require.NoError(t, svc.WithdrawAttendance(ctx, attendee(7), 1, ""))

		exists, _ := ledger.ExistsFor(ctx, 1, 7)
		assert.False(t, exists)
	})

	t.Run("withdraw without a row is a no-op success", func(t *testing.T) {
		svc, _ := newTestService(scheduledEvent(1, 10))

		assert.NoError(t, svc.WithdrawAttendance(ctx, attendee(7), 1, ""))
		assert.NoError(t, svc.WithdrawAttendance(ctx, attendee(7), 1, ""))
	})
}

func TestRoster(t *testing.T) {
	ctx := context.Background()

	t.Run("host reads the roster", func(t *testing.T) {
		svc, _ := newTestService(scheduledEvent(1, 10))

		_, err := svc.RequestAttendance(ctx, attendee(7), 1, &JoinRequest{Greeting: "hello", AfterPartyInterest: true}, "")
		require.NoError(t, err)

		entries, err := svc.Roster(ctx, attendee(10), 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "hello", entries[0].Greeting)
		assert.True(t, entries[0].AfterPartyInterest)
	})

	t.Run("non-host is forbidden", func(t *testing.T) {
		svc, _ := newTestService(scheduledEvent(1, 10))

		_, err := svc.Roster(ctx, attendee(7), 1)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
