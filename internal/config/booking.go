package config

import (
    "time"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
)

// LoadTiming reads the reservation timing policy from environment
// variables, falling back to the restaurant's standing defaults (two
// hour seatings, one hour cancel lead, two hour grace, thirty minute
// status lead).  Values use Go duration syntax, e.g. "90m" or "2h".
func LoadTiming() booking.Timing {
    def := booking.DefaultTiming()
    return booking.Timing{
        Duration:   parseDur(getenv("RESERVATION_DURATION", def.Duration.String())),
        CancelLead: parseDur(getenv("RESERVATION_CANCEL_LEAD", def.CancelLead.String())),
        Grace:      parseDur(getenv("RESERVATION_GRACE", def.Grace.String())),
        StatusLead: parseDur(getenv("RESERVATION_STATUS_LEAD", def.StatusLead.String())),
    }
}

// LoadSweepInterval returns how often the expiry sweeper runs.
func LoadSweepInterval() time.Duration {
    d := parseDur(getenv("SWEEP_INTERVAL", "1m"))
    if d < time.Second {
        d = time.Minute
    }
    return d
}
