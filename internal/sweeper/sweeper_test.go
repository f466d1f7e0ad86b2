package sweeper

import (
    "context"
    "testing"
    "time"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
    "github.com/iliyamo/restaurant-table-reservation/internal/queue"
    "github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// fakeStore keeps reservations in memory and mimics the guarded
// update: Expire only succeeds while the row is still Booked.
type fakeStore struct {
    rows map[uint64]*model.Reservation
}

func (f *fakeStore) ListOverdueBooked(_ context.Context, cutoff time.Time) ([]model.Reservation, error) {
    out := []model.Reservation{}
    for _, r := range f.rows {
        if r.Status == string(booking.StatusBooked) && r.StartTime.Before(cutoff) {
            out = append(out, *r)
        }
    }
    return out, nil
}

func (f *fakeStore) Expire(_ context.Context, id uint64) error {
    r, ok := f.rows[id]
    if !ok || r.Status != string(booking.StatusBooked) {
        return repository.ErrStatusChanged
    }
    r.Status = string(booking.StatusExpired)
    return nil
}

func newSweeper(store *fakeStore, now time.Time, events *[]queue.ReservationEvent) *Sweeper {
    var pub Publisher
    if events != nil {
        pub = func(_ context.Context, ev queue.ReservationEvent) error {
            *events = append(*events, ev)
            return nil
        }
    }
    s := New(store, pub, 2*time.Hour, time.Minute)
    s.now = func() time.Time { return now }
    return s
}

func TestSweepExpiresOnlyOverdueBooked(t *testing.T) {
    now := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)
    store := &fakeStore{rows: map[uint64]*model.Reservation{
        // started 19:00, grace ended 21:00: overdue
        1: {ID: 1, TableID: 10, Status: string(booking.StatusBooked),
            StartTime: now.Add(-210 * time.Minute), Duration: 2 * time.Hour},
        // started 21:00, grace runs until 23:00: not yet
        2: {ID: 2, TableID: 11, Status: string(booking.StatusBooked),
            StartTime: now.Add(-90 * time.Minute), Duration: 2 * time.Hour},
        // overdue by time but already confirmed
        3: {ID: 3, TableID: 12, Status: string(booking.StatusConfirmed),
            StartTime: now.Add(-210 * time.Minute), Duration: 2 * time.Hour},
    }}
    events := []queue.ReservationEvent{}
    s := newSweeper(store, now, &events)

    n, err := s.Sweep(context.Background())
    if err != nil {
        t.Fatalf("Sweep: %v", err)
    }
    if n != 1 {
        t.Fatalf("expired %d reservations, want 1", n)
    }
    if got := store.rows[1].Status; got != string(booking.StatusExpired) {
        t.Errorf("reservation 1 status = %s, want Expired", got)
    }
    if got := store.rows[2].Status; got != string(booking.StatusBooked) {
        t.Errorf("reservation 2 status = %s, want Booked", got)
    }
    if got := store.rows[3].Status; got != string(booking.StatusConfirmed) {
        t.Errorf("reservation 3 status = %s, want Confirmed", got)
    }
    if len(events) != 1 || events[0].Event != queue.EventReservationExpired || events[0].ReservationID != 1 {
        t.Errorf("published events = %+v, want one Expired event for reservation 1", events)
    }
}

func TestSweepIsIdempotent(t *testing.T) {
    now := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)
    store := &fakeStore{rows: map[uint64]*model.Reservation{
        1: {ID: 1, TableID: 10, Status: string(booking.StatusBooked),
            StartTime: now.Add(-4 * time.Hour), Duration: 2 * time.Hour},
    }}
    s := newSweeper(store, now, nil)

    first, err := s.Sweep(context.Background())
    if err != nil {
        t.Fatalf("first Sweep: %v", err)
    }
    second, err := s.Sweep(context.Background())
    if err != nil {
        t.Fatalf("second Sweep: %v", err)
    }
    if first != 1 || second != 0 {
        t.Errorf("sweep counts = %d, %d; want 1, 0", first, second)
    }
}

func TestSweepSkipsConcurrentlyChangedRows(t *testing.T) {
    now := time.Date(2025, 6, 1, 22, 30, 0, 0, time.UTC)
    store := &fakeStore{rows: map[uint64]*model.Reservation{
        1: {ID: 1, TableID: 10, Status: string(booking.StatusBooked),
            StartTime: now.Add(-4 * time.Hour), Duration: 2 * time.Hour},
        2: {ID: 2, TableID: 11, Status: string(booking.StatusBooked),
            StartTime: now.Add(-4 * time.Hour), Duration: 2 * time.Hour},
    }}
    events := []queue.ReservationEvent{}
    s := newSweeper(store, now, &events)

    // staff confirms reservation 2 between the listing and the update
    listed, err := s.store.ListOverdueBooked(context.Background(), now.Add(-2*time.Hour))
    if err != nil {
        t.Fatalf("ListOverdueBooked: %v", err)
    }
    if len(listed) != 2 {
        t.Fatalf("listed %d overdue, want 2", len(listed))
    }
    store.rows[2].Status = string(booking.StatusConfirmed)

    n, err := s.Sweep(context.Background())
    if err != nil {
        t.Fatalf("Sweep: %v", err)
    }
    if n != 1 {
        t.Fatalf("expired %d reservations, want 1", n)
    }
    if got := store.rows[2].Status; got != string(booking.StatusConfirmed) {
        t.Errorf("reservation 2 status = %s, want Confirmed", got)
    }
    if len(events) != 1 || events[0].ReservationID != 1 {
        t.Errorf("published events = %+v, want one event for reservation 1", events)
    }
}
