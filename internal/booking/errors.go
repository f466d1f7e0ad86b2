package booking

import (
    "errors"
    "fmt"
    "time"
)

// ErrDeadlinePassed is returned when a guest attempts to cancel after
// the reservation's cancellation deadline.  Staff cancellations are
// never subject to the deadline.
var ErrDeadlinePassed = errors.New("cancellation deadline has passed")

// ErrInvalidStatus is returned when a caller attempts to store a
// derived-only status (Reserved/Occupied) as a table's base flag.
var ErrInvalidStatus = errors.New("status is derived and cannot be set directly")

// ErrVersionConflict is returned when a table update carries a stale
// version.  The caller should re-fetch the table and retry.
var ErrVersionConflict = errors.New("table was modified by someone else")

// InvalidTransitionError reports an illegal lifecycle transition.  It
// carries the current and requested status so handlers can render a
// useful message.
type InvalidTransitionError struct {
    From Status
    To   Status
}

func (e *InvalidTransitionError) Error() string {
    return fmt.Sprintf("cannot transition reservation from %s to %s", e.From, e.To)
}

// IsInvalidTransition reports whether err wraps an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
    var ite *InvalidTransitionError
    return errors.As(err, &ite)
}

// SlotConflictError reports that a candidate interval overlaps an
// existing blocking reservation on the same table.
type SlotConflictError struct {
    TableID       uint64
    ReservationID uint64 // the conflicting reservation
    Start         time.Time
    End           time.Time
}

func (e *SlotConflictError) Error() string {
    return fmt.Sprintf("table %d is already reserved from %s to %s",
        e.TableID, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}

// CapacityError reports that a party does not fit the table.
type CapacityError struct {
    Seats     int
    PartySize int
}

func (e *CapacityError) Error() string {
    return fmt.Sprintf("table seats %d, not enough for a party of %d", e.Seats, e.PartySize)
}
