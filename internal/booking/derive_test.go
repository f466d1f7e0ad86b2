package booking

import (
    "testing"
    "time"
)

func TestEffectiveStatusPrecedence(t *testing.T) {
    timing := DefaultTiming()
    start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
    confirmed := []BlockingReservation{blocking(StatusConfirmed, start)}
    booked := []BlockingReservation{blocking(StatusBooked, start)}
    during := start.Add(30 * time.Minute)

    tests := []struct {
        name     string
        base     TableStatus
        touching []BlockingReservation
        now      time.Time
        want     TableStatus
    }{
        {name: "lockedAlwaysWins", base: TableLocked, touching: confirmed, now: during, want: TableLocked},
        {name: "maintenanceAlwaysWins", base: TableMaintenance, touching: confirmed, now: during, want: TableMaintenance},
        {name: "confirmedDuringWindow", base: TableEmpty, touching: confirmed, now: during, want: TableOccupied},
        {name: "bookedDuringWindow", base: TableEmpty, touching: booked, now: during, want: TableReserved},
        {name: "bookedInLeadWindow", base: TableEmpty, touching: booked, now: start.Add(-15 * time.Minute), want: TableReserved},
        {name: "beforeLeadWindow", base: TableEmpty, touching: booked, now: start.Add(-time.Hour), want: TableEmpty},
        {name: "afterWindowEnds", base: TableEmpty, touching: confirmed, now: start.Add(2 * time.Hour), want: TableEmpty},
        {name: "noReservations", base: TableEmpty, touching: nil, now: during, want: TableEmpty},
        {name: "confirmedBeatsBooked", base: TableEmpty, touching: append(append([]BlockingReservation{}, booked...), confirmed...), now: during, want: TableOccupied},
        {name: "terminalIgnored", base: TableEmpty, touching: []BlockingReservation{blocking(StatusCancelled, start)}, now: during, want: TableEmpty},
    }

    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            if got := EffectiveStatus(tt.base, tt.touching, tt.now, timing); got != tt.want {
                t.Errorf("EffectiveStatus() = %s, want %s", got, tt.want)
            }
        })
    }
}

// Scenario: a Confirmed 19:00-21:00 reservation shows Occupied at
// 19:30; the same table with only a Booked reservation shows Reserved
// at 18:45 (inside the 30 minute lead window).
func TestEffectiveStatusScenario(t *testing.T) {
    timing := DefaultTiming()
    start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)

    got := EffectiveStatus(TableEmpty, []BlockingReservation{blocking(StatusConfirmed, start)},
        time.Date(2025, 1, 1, 19, 30, 0, 0, time.UTC), timing)
    if got != TableOccupied {
        t.Errorf("confirmed at 19:30 = %s, want Occupied", got)
    }

    got = EffectiveStatus(TableEmpty, []BlockingReservation{blocking(StatusBooked, start)},
        time.Date(2025, 1, 1, 18, 45, 0, 0, time.UTC), timing)
    if got != TableReserved {
        t.Errorf("booked at 18:45 = %s, want Reserved", got)
    }
}

func TestOccupying(t *testing.T) {
    timing := DefaultTiming()
    start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
    now := start.Add(time.Hour)

    touching := []BlockingReservation{
        {ReservationID: 1, Status: StatusBooked, Start: start, Duration: 2 * time.Hour},
        {ReservationID: 2, Status: StatusConfirmed, Start: start, Duration: 2 * time.Hour},
    }
    got, ok := Occupying(touching, now, timing)
    if !ok || got.ReservationID != 2 {
        t.Errorf("Occupying() = (%v, %v), want reservation 2", got, ok)
    }

    if _, ok := Occupying(touching[:1], now, timing); ok {
        t.Error("a Booked reservation must not count as occupying")
    }
}

func TestCancelDeadline(t *testing.T) {
    timing := DefaultTiming()
    start := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
    want := time.Date(2025, 1, 1, 18, 0, 0, 0, time.UTC)
    if got := timing.CancelDeadline(start); !got.Equal(want) {
        t.Errorf("CancelDeadline(19:00) = %s, want 18:00", got)
    }
}
