// Package queue defines message payloads exchanged over the message broker.
package queue

// Lifecycle event names published to the reservation.events queue.
const (
    EventReservationCreated   = "reservation.created"
    EventReservationConfirmed = "reservation.confirmed"
    EventReservationCancelled = "reservation.cancelled"
    EventReservationCompleted = "reservation.completed"
    EventReservationExpired   = "reservation.expired"
    EventTableStatusChanged   = "table.status_changed"
)

// ReservationEvent is published whenever a reservation changes
// lifecycle status.  It carries enough information for downstream
// consumers to notify guests or feed analytics without querying the
// primary database.
type ReservationEvent struct {
    Event         string `json:"event"`
    ReservationID uint64 `json:"reservation_id"`
    TableID       uint64 `json:"table_id"`
    Status        string `json:"status"`
    PartySize     int    `json:"party_size"`
    StartsAt      string `json:"starts_at"`
    EndsAt        string `json:"ends_at"`
    Source        string `json:"source"`
    OccurredAt    string `json:"occurred_at"`
}

// TableStatusEvent is published when staff change a table's base
// status through table administration.
type TableStatusEvent struct {
    Event      string `json:"event"`
    TableID    uint64 `json:"table_id"`
    OldStatus  string `json:"old_status"`
    NewStatus  string `json:"new_status"`
    Version    uint32 `json:"version"`
    OccurredAt string `json:"occurred_at"`
}
