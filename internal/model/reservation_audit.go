package model

import "time"

// ReservationAudit is an append-only record of a reservation status
// transition.  Audit rows are never updated or deleted; they exist
// purely as history and feed the reporting subsystem.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – reservation this entry belongs to.
//  Action        – action name (Created, Confirmed, Cancelled, ...).
//  Note          – free-text detail.
//  StaffID       – acting staff member (nil for guest or system actions).
//  CreatedAt     – when the transition happened.
type ReservationAudit struct {
    ID            uint64    // reservation_audit.id
    ReservationID uint64    // reservation_audit.reservation_id
    Action        string    // reservation_audit.action
    Note          string    // reservation_audit.note
    StaffID       *uint64   // reservation_audit.staff_id (nullable)
    CreatedAt     time.Time // reservation_audit.created_at
}
