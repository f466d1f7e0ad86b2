package booking

import "time"

// Interval is a half-open time window [Start, End).  Two intervals
// conflict iff each starts before the other ends, so touching endpoints
// never conflict and back-to-back reservations are allowed.
type Interval struct {
    Start time.Time
    End   time.Time
}

// NewInterval builds the occupied window for a reservation starting at
// start with the given service duration.
func NewInterval(start time.Time, duration time.Duration) Interval {
    return Interval{Start: start, End: start.Add(duration)}
}

// Overlaps reports whether the two half-open intervals share any instant.
func (iv Interval) Overlaps(other Interval) bool {
    return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Contains reports whether t falls inside the half-open interval.
func (iv Interval) Contains(t time.Time) bool {
    return !t.Before(iv.Start) && t.Before(iv.End)
}

// BlockingReservation is the subset of a reservation row needed for
// conflict checks and status derivation.  Callers load these for a
// single table; only rows whose status is Booked or Confirmed ever
// block, and the functions below skip everything else.
type BlockingReservation struct {
    ReservationID uint64
    Status        Status
    Start         time.Time
    Duration      time.Duration
}

// Window returns the reservation's occupied interval.
func (b BlockingReservation) Window() Interval {
    return NewInterval(b.Start, b.Duration)
}

// FindConflict returns the first blocking reservation whose occupied
// window overlaps the candidate interval.  The boolean result is false
// when the candidate is free.
func FindConflict(candidate Interval, existing []BlockingReservation) (BlockingReservation, bool) {
    for _, b := range existing {
        if !b.Status.Blocking() {
            continue
        }
        if candidate.Overlaps(b.Window()) {
            return b, true
        }
    }
    return BlockingReservation{}, false
}

// HasConflict reports whether a reservation starting at start for
// duration would overlap any blocking reservation in existing.
func HasConflict(start time.Time, duration time.Duration, existing []BlockingReservation) bool {
    _, found := FindConflict(NewInterval(start, duration), existing)
    return found
}
