package model

import "time"

// Area represents a seating area of the restaurant (e.g. terrace,
// main room).  Tables belong to exactly one area and table names are
// unique within it.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique area name.
//  Description – optional free-text description.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Area struct {
    ID          uint64    // areas.id
    Name        string    // areas.name
    Description *string   // areas.description (nullable)
    CreatedAt   time.Time // areas.created_at
    UpdatedAt   time.Time // areas.updated_at
}
