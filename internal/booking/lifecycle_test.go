package booking

import (
    "errors"
    "testing"
    "time"
)

func TestTransitionTable(t *testing.T) {
    all := []Status{StatusBooked, StatusConfirmed, StatusCompleted, StatusCancelled, StatusExpired}

    allowed := map[Status]map[Status]bool{
        StatusBooked:    {StatusConfirmed: true, StatusCancelled: true, StatusExpired: true},
        StatusConfirmed: {StatusCancelled: true, StatusCompleted: true},
    }

    for _, from := range all {
        for _, to := range all {
            err := Transition(from, to)
            if allowed[from][to] {
                if err != nil {
                    t.Errorf("Transition(%s, %s) = %v, want nil", from, to, err)
                }
                continue
            }
            var ite *InvalidTransitionError
            if !errors.As(err, &ite) {
                t.Errorf("Transition(%s, %s) = %v, want InvalidTransitionError", from, to, err)
                continue
            }
            if ite.From != from || ite.To != to {
                t.Errorf("InvalidTransitionError carries %s→%s, want %s→%s", ite.From, ite.To, from, to)
            }
        }
    }
}

func TestTerminalStatesRejectEverything(t *testing.T) {
    for _, from := range []Status{StatusCompleted, StatusCancelled, StatusExpired} {
        if !from.Terminal() {
            t.Errorf("%s should be terminal", from)
        }
        for _, to := range []Status{StatusBooked, StatusConfirmed, StatusCompleted, StatusCancelled, StatusExpired} {
            if CanTransition(from, to) {
                t.Errorf("terminal %s must not transition to %s", from, to)
            }
        }
    }
}

func TestGuestCancelDeadline(t *testing.T) {
    start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
    deadline := start.Add(-time.Hour) // 18:00

    tests := []struct {
        name    string
        status  Status
        now     time.Time
        wantErr error
    }{
        {name: "beforeDeadline", status: StatusBooked, now: deadline.Add(-time.Minute)},
        {name: "exactlyAtDeadline", status: StatusBooked, now: deadline},
        {name: "afterDeadline", status: StatusBooked, now: deadline.Add(30 * time.Minute), wantErr: ErrDeadlinePassed},
        {name: "confirmedAfterDeadline", status: StatusConfirmed, now: deadline.Add(30 * time.Minute), wantErr: ErrDeadlinePassed},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            err := GuestCancel(tt.status, deadline, tt.now)
            if !errors.Is(err, tt.wantErr) {
                t.Errorf("GuestCancel() = %v, want %v", err, tt.wantErr)
            }
        })
    }

    // terminal states fail the transition check before the deadline check
    err := GuestCancel(StatusCancelled, deadline, deadline.Add(-time.Hour))
    if !IsInvalidTransition(err) {
        t.Errorf("GuestCancel on a cancelled reservation = %v, want InvalidTransitionError", err)
    }
}

func TestExpirable(t *testing.T) {
    start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
    grace := 2 * time.Hour

    tests := []struct {
        name   string
        status Status
        now    time.Time
        want   bool
    }{
        {name: "bookedPastGrace", status: StatusBooked, now: start.Add(grace).Add(time.Minute), want: true},
        {name: "bookedWithinGrace", status: StatusBooked, now: start.Add(time.Hour), want: false},
        {name: "bookedExactlyAtGrace", status: StatusBooked, now: start.Add(grace), want: false},
        {name: "confirmedPastGrace", status: StatusConfirmed, now: start.Add(3 * time.Hour), want: false},
        {name: "cancelledPastGrace", status: StatusCancelled, now: start.Add(3 * time.Hour), want: false},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := Expirable(tt.status, start, grace, tt.now); got != tt.want {
                t.Errorf("Expirable(%s, now=%s) = %v, want %v", tt.status, tt.now, got, tt.want)
            }
        })
    }
}
