// Package sweeper runs the background job that expires reservations
// nobody confirmed.  A Booked reservation whose start time is more than
// the grace period in the past is moved to Expired so its table frees
// up for walk-ins.
package sweeper

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
    "github.com/iliyamo/restaurant-table-reservation/internal/queue"
    "github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Store is the slice of the reservation repository the sweeper needs.
type Store interface {
    ListOverdueBooked(ctx context.Context, cutoff time.Time) ([]model.Reservation, error)
    Expire(ctx context.Context, id uint64) error
}

// Publisher emits a lifecycle event for each expired reservation.
// Publish failures are logged and do not undo the expiry.
type Publisher func(ctx context.Context, event queue.ReservationEvent) error

// Sweeper periodically expires overdue Booked reservations.  Every
// expiry goes through a guarded status update, so running several
// sweeps concurrently, or a sweep racing a staff confirmation, never
// double-transitions a row.
type Sweeper struct {
    store    Store
    publish  Publisher
    grace    time.Duration
    interval time.Duration
    now      func() time.Time
}

// New returns a Sweeper.  publish may be nil when no broker is
// configured.
func New(store Store, publish Publisher, grace, interval time.Duration) *Sweeper {
    return &Sweeper{
        store:    store,
        publish:  publish,
        grace:    grace,
        interval: interval,
        now:      func() time.Time { return time.Now().UTC() },
    }
}

// Run sweeps once immediately and then on every tick until ctx is
// cancelled.  Intended to be started as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
    log.Printf("sweeper: started (interval=%s grace=%s)", s.interval, s.grace)
    if n, err := s.Sweep(ctx); err != nil {
        log.Printf("sweeper: sweep failed: %v", err)
    } else if n > 0 {
        log.Printf("sweeper: expired %d reservations", n)
    }
    ticker := time.NewTicker(s.interval)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            log.Printf("sweeper: stopped")
            return
        case <-ticker.C:
            if n, err := s.Sweep(ctx); err != nil {
                log.Printf("sweeper: sweep failed: %v", err)
            } else if n > 0 {
                log.Printf("sweeper: expired %d reservations", n)
            }
        }
    }
}

// Sweep expires every overdue Booked reservation and returns how many
// rows it transitioned.  Rows whose status changed between the listing
// and the guarded update are skipped, which makes a sweep idempotent:
// running it twice over the same data expires each reservation exactly
// once.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
    cutoff := s.now().Add(-s.grace)
    overdue, err := s.store.ListOverdueBooked(ctx, cutoff)
    if err != nil {
        return 0, err
    }
    expired := 0
    for _, res := range overdue {
        if !booking.Expirable(booking.Status(res.Status), res.StartTime, s.grace, s.now()) {
            continue
        }
        if err := s.store.Expire(ctx, res.ID); err != nil {
            if errors.Is(err, repository.ErrStatusChanged) {
                continue
            }
            log.Printf("sweeper: expire reservation %d failed: %v", res.ID, err)
            continue
        }
        expired++
        if s.publish != nil {
            _ = s.publish(ctx, queue.ReservationEvent{
                Event:         queue.EventReservationExpired,
                ReservationID: res.ID,
                TableID:       res.TableID,
                Status:        string(booking.StatusExpired),
                PartySize:     res.PartySize,
                StartsAt:      res.StartTime.UTC().Format(time.RFC3339),
                EndsAt:        res.StartTime.Add(res.Duration).UTC().Format(time.RFC3339),
                Source:        res.Source,
                OccurredAt:    s.now().Format(time.RFC3339),
            })
        }
    }
    return expired, nil
}
