package booking

import "time"

// Timing bundles the service timing constants.  Values are loaded from
// configuration at startup; DefaultTiming matches the restaurant's
// standing policy.
type Timing struct {
    Duration   time.Duration // length of the occupied interval
    CancelLead time.Duration // guest cancel deadline = start - CancelLead
    Grace      time.Duration // Booked expires after start + Grace
    StatusLead time.Duration // derived status shows a reservation this long before start
}

// DefaultTiming returns the standard policy: two hour seatings, guests
// may self-cancel until one hour before start, an unconfirmed booking
// expires two hours after its start, and staff see an upcoming
// reservation thirty minutes ahead.
func DefaultTiming() Timing {
    return Timing{
        Duration:   2 * time.Hour,
        CancelLead: time.Hour,
        Grace:      2 * time.Hour,
        StatusLead: 30 * time.Minute,
    }
}

// CancelDeadline computes the latest moment a guest may self-cancel a
// reservation starting at start.  The deadline is fixed at creation
// time and stored on the row.
func (t Timing) CancelDeadline(start time.Time) time.Time {
    return start.Add(-t.CancelLead)
}

// statusWindow is the interval during which a reservation influences
// its table's derived status: it opens StatusLead before the start so
// staff see the table as taken before the guest arrives.
func (t Timing) statusWindow(b BlockingReservation) Interval {
    return Interval{Start: b.Start.Add(-t.StatusLead), End: b.Start.Add(b.Duration)}
}

// EffectiveStatus computes the status a client sees for a table.
// Precedence, first match wins:
//
//  1. a Locked or Maintenance base flag always wins
//  2. a Confirmed reservation whose status window contains now → Occupied
//  3. a Booked reservation whose status window contains now → Reserved
//  4. otherwise Empty
//
// The function never mutates anything; status is recomputed on every
// read so it is always consistent with now and no background job has to
// flip table rows when intervals open or close.
func EffectiveStatus(base TableStatus, touching []BlockingReservation, now time.Time, timing Timing) TableStatus {
    if base == TableLocked || base == TableMaintenance {
        return base
    }
    reserved := false
    for _, b := range touching {
        if !b.Status.Blocking() || !timing.statusWindow(b).Contains(now) {
            continue
        }
        if b.Status == StatusConfirmed {
            return TableOccupied
        }
        reserved = true
    }
    if reserved {
        return TableReserved
    }
    return TableEmpty
}

// Occupying returns the Confirmed reservation whose status window
// contains now, if any.  Table administration uses this to auto-complete
// the in-progress reservation when staff manually free a table.
func Occupying(touching []BlockingReservation, now time.Time, timing Timing) (BlockingReservation, bool) {
    for _, b := range touching {
        if b.Status == StatusConfirmed && timing.statusWindow(b).Contains(now) {
            return b, true
        }
    }
    return BlockingReservation{}, false
}
