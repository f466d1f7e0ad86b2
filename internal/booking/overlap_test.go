package booking

import (
    "math/rand"
    "testing"
    "time"
)

var base = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func blocking(status Status, start time.Time) BlockingReservation {
    return BlockingReservation{Status: status, Start: start, Duration: 2 * time.Hour}
}

func TestIntervalOverlaps(t *testing.T) {
    tests := []struct {
        name string
        a, b Interval
        want bool
    }{
        {
            name: "identical",
            a:    NewInterval(base, 2*time.Hour),
            b:    NewInterval(base, 2*time.Hour),
            want: true,
        },
        {
            name: "partialOverlap",
            a:    NewInterval(base, 2*time.Hour),
            b:    NewInterval(base.Add(time.Hour), 2*time.Hour),
            want: true,
        },
        {
            name: "containment",
            a:    NewInterval(base, 4*time.Hour),
            b:    NewInterval(base.Add(time.Hour), time.Hour),
            want: true,
        },
        {
            name: "backToBack",
            a:    NewInterval(base, 2*time.Hour),
            b:    NewInterval(base.Add(2*time.Hour), 2*time.Hour),
            want: false,
        },
        {
            name: "disjoint",
            a:    NewInterval(base, 2*time.Hour),
            b:    NewInterval(base.Add(5*time.Hour), 2*time.Hour),
            want: false,
        },
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := tt.a.Overlaps(tt.b); got != tt.want {
                t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
            }
            // overlap is symmetric
            if got := tt.b.Overlaps(tt.a); got != tt.want {
                t.Errorf("Overlaps(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
            }
        })
    }
}

func TestHasConflictBlockingStatusesOnly(t *testing.T) {
    start := base
    existing := []BlockingReservation{
        blocking(StatusCancelled, start),
        blocking(StatusExpired, start),
        blocking(StatusCompleted, start),
    }
    if HasConflict(start, 2*time.Hour, existing) {
        t.Error("terminal reservations must never block")
    }
    existing = append(existing, blocking(StatusBooked, start))
    if !HasConflict(start, 2*time.Hour, existing) {
        t.Error("a Booked reservation over the same window must block")
    }
}

// Scenario: a 19:00 booking with a two hour duration blocks a 20:00
// candidate but not a 21:00 one.
func TestHasConflictScenarios(t *testing.T) {
    nineteen := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
    existing := []BlockingReservation{blocking(StatusBooked, nineteen)}

    if !HasConflict(nineteen.Add(time.Hour), 2*time.Hour, existing) {
        t.Error("20:00 candidate should conflict with the 19:00-21:00 booking")
    }
    if HasConflict(nineteen.Add(2*time.Hour), 2*time.Hour, existing) {
        t.Error("21:00 candidate is back-to-back and should be allowed")
    }
}

func TestFindConflictReturnsMatch(t *testing.T) {
    existing := []BlockingReservation{
        {ReservationID: 7, Status: StatusConfirmed, Start: base, Duration: 2 * time.Hour},
    }
    got, found := FindConflict(NewInterval(base.Add(30*time.Minute), 2*time.Hour), existing)
    if !found {
        t.Fatal("expected a conflict")
    }
    if got.ReservationID != 7 {
        t.Errorf("FindConflict ReservationID = %d, want 7", got.ReservationID)
    }
}

// Property: build a schedule by admitting random candidates only when
// HasConflict says the slot is free, then assert no pair of admitted
// intervals overlaps.  This is the no-overlap invariant the create path
// relies on.
func TestNoOverlapInvariant(t *testing.T) {
    rng := rand.New(rand.NewSource(42))
    const rounds = 200

    var admitted []BlockingReservation
    for i := 0; i < rounds; i++ {
        start := base.Add(time.Duration(rng.Intn(48*60)) * time.Minute)
        if HasConflict(start, 2*time.Hour, admitted) {
            continue
        }
        admitted = append(admitted, blocking(StatusBooked, start))
    }
    if len(admitted) < 2 {
        t.Fatalf("property test admitted only %d reservations", len(admitted))
    }

    for i := 0; i < len(admitted); i++ {
        for j := i + 1; j < len(admitted); j++ {
            a, b := admitted[i].Window(), admitted[j].Window()
            if a.Overlaps(b) {
                t.Fatalf("admitted intervals overlap: %v and %v", a, b)
            }
        }
    }
}
