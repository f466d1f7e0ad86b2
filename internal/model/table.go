package model

import "time"

// Table represents a physical table in the restaurant.  The stored
// BaseStatus only ever holds an administrative flag (Empty, Locked or
// Maintenance); Reserved and Occupied are derived from live reservation
// data on every read and are never written to this row.  Version is an
// optimistic concurrency counter incremented on every base status
// mutation.
//
// Fields:
//  ID         – primary key identifier.
//  AreaID     – area the table belongs to.
//  Name       – table name, unique per area.
//  Seats      – seat capacity (positive).
//  BaseStatus – stored administrative flag.
//  Position   – optional free-form placement hint for the floor plan.
//  Note       – optional note.
//  Version    – optimistic locking counter.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Table struct {
    ID         uint64    // tables.id
    AreaID     uint64    // tables.area_id
    Name       string    // tables.name
    Seats      int       // tables.seats
    BaseStatus string    // tables.base_status
    Position   *string   // tables.position (nullable)
    Note       *string   // tables.note (nullable)
    Version    uint32    // tables.version
    CreatedAt  time.Time // tables.created_at
    UpdatedAt  time.Time // tables.updated_at
}
