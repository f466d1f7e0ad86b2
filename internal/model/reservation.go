package model

import "time"

// Reservation records a request to occupy one table for one contiguous
// interval [StartTime, StartTime+Duration).  A reservation references
// either a registered customer (CustomerID) or carries inline guest
// contact fields; at least one of the two is always present.  The
// LookupToken is an unguessable string handed to guests for
// self-service lookup and cancellation and is distinct from the id.
//
// Fields:
//  ID             – primary key identifier.
//  TableID        – table being reserved.
//  CustomerID     – registered customer reference (nullable).
//  GuestName      – guest contact name (nullable).
//  GuestPhone     – guest contact phone (nullable).
//  GuestEmail     – guest contact email (nullable).
//  PartySize      – number of guests; at most the table's seat count.
//  StartTime      – start of the occupied interval (UTC).
//  Duration       – length of the occupied interval.
//  Status         – lifecycle status (Booked, Confirmed, Completed,
//                   Cancelled, Expired).
//  Source         – Online or StaffEntered.
//  LookupToken    – unique guest-facing token.
//  CancelDeadline – latest moment a guest may self-cancel.
//  Note           – optional note.
//  StaffID        – staff member who entered the reservation (nullable).
//  CreatedAt      – creation timestamp.
//  CancelledAt    – when the reservation was cancelled (nullable).
//  UpdatedAt      – last update timestamp.
type Reservation struct {
    ID             uint64        // reservations.id
    TableID        uint64        // reservations.table_id
    CustomerID     *uint64       // reservations.customer_id (nullable)
    GuestName      *string       // reservations.guest_name (nullable)
    GuestPhone     *string       // reservations.guest_phone (nullable)
    GuestEmail     *string       // reservations.guest_email (nullable)
    PartySize      int           // reservations.party_size
    StartTime      time.Time     // reservations.start_time
    Duration       time.Duration // reservations.duration_min (stored in minutes)
    Status         string        // reservations.status
    Source         string        // reservations.source
    LookupToken    string        // reservations.lookup_token
    CancelDeadline time.Time     // reservations.cancel_deadline
    Note           *string       // reservations.note (nullable)
    StaffID        *uint64       // reservations.staff_id (nullable)
    CreatedAt      time.Time     // reservations.created_at
    CancelledAt    *time.Time    // reservations.cancelled_at (nullable)
    UpdatedAt      time.Time     // reservations.updated_at
}
