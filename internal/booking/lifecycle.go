package booking

import "time"

// legal enumerates every allowed lifecycle transition.  The zero value
// of the inner map means the transition is illegal.  Keeping the table
// here means the sweeper, the reservation handlers and table
// administration all share one set of rules.
var legal = map[Status]map[Status]bool{
    StatusBooked: {
        StatusConfirmed: true,
        StatusCancelled: true,
        StatusExpired:   true,
    },
    StatusConfirmed: {
        StatusCancelled: true,
        StatusCompleted: true,
    },
}

// CanTransition reports whether from → to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
    return legal[from][to]
}

// Transition validates a lifecycle move and returns an
// InvalidTransitionError when it is not allowed.  It checks only the
// state table; time-based preconditions (cancellation deadline, grace
// period) have their own helpers below.
func Transition(from, to Status) error {
    if !CanTransition(from, to) {
        return &InvalidTransitionError{From: from, To: to}
    }
    return nil
}

// GuestCancel validates a guest-initiated cancellation: the reservation
// must still be cancellable and the cancellation deadline must not have
// passed.  Staff cancellations skip the deadline and should call
// Transition directly.
func GuestCancel(current Status, deadline, now time.Time) error {
    if err := Transition(current, StatusCancelled); err != nil {
        return err
    }
    if now.After(deadline) {
        return ErrDeadlinePassed
    }
    return nil
}

// Expirable reports whether a reservation should be swept to Expired:
// it is still Booked and its start plus the grace period is in the
// past.  Confirmed, Cancelled and Completed reservations are never
// expirable.
func Expirable(current Status, start time.Time, grace time.Duration, now time.Time) bool {
    return current == StatusBooked && now.After(start.Add(grace))
}
