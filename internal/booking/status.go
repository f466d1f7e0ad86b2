// Package booking holds the reservation rules that do not touch the
// database: interval overlap checking, the reservation lifecycle state
// machine, effective table status derivation and lookup token generation.
// Repositories and handlers call into this package so the rules live in
// exactly one place.
package booking

// Status is the lifecycle state of a reservation.  A reservation is
// created as Booked and moves through the transitions defined in
// lifecycle.go.  Completed, Cancelled and Expired are terminal and the
// row is kept as history once reached.
type Status string

const (
    StatusBooked    Status = "Booked"    // created, guest not yet arrived
    StatusConfirmed Status = "Confirmed" // staff confirmed the guest arrived
    StatusCompleted Status = "Completed" // table closed out after a confirmed visit
    StatusCancelled Status = "Cancelled" // cancelled by guest or staff
    StatusExpired   Status = "Expired"   // never confirmed within the grace period
)

// Blocking reports whether a reservation in this status counts toward
// conflict checks and derived table status.  Exactly Booked and
// Confirmed block; terminal reservations never do.
func (s Status) Blocking() bool {
    return s == StatusBooked || s == StatusConfirmed
}

// Terminal reports whether the status permits no further transitions.
func (s Status) Terminal() bool {
    switch s {
    case StatusCompleted, StatusCancelled, StatusExpired:
        return true
    }
    return false
}

// Valid reports whether s is one of the known reservation statuses.
func (s Status) Valid() bool {
    switch s {
    case StatusBooked, StatusConfirmed, StatusCompleted, StatusCancelled, StatusExpired:
        return true
    }
    return false
}

// TableStatus is the externally visible status of a table.  Empty,
// Locked and Maintenance are base statuses stored on the table row and
// changed only through table administration.  Reserved and Occupied are
// derived from live reservation data and are never stored.
type TableStatus string

const (
    TableEmpty       TableStatus = "Empty"
    TableReserved    TableStatus = "Reserved"
    TableOccupied    TableStatus = "Occupied"
    TableLocked      TableStatus = "Locked"
    TableMaintenance TableStatus = "Maintenance"
)

// BaseStatus reports whether s may be stored as a table's base flag.
func (s TableStatus) BaseStatus() bool {
    switch s {
    case TableEmpty, TableLocked, TableMaintenance:
        return true
    }
    return false
}

// Derived reports whether s is computed from reservations and must
// never be written to the table row.
func (s TableStatus) Derived() bool {
    return s == TableReserved || s == TableOccupied
}

// Source identifies who entered a reservation.
type Source string

const (
    SourceOnline       Source = "Online"       // guest self-service
    SourceStaffEntered Source = "StaffEntered" // created by staff
)
