// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting SQL errors. Domain rule violations (slot conflicts,
// illegal transitions, stale versions) are typed in internal/booking;
// the sentinels here cover pure data-access outcomes.
package repository

import "errors"

// ErrTableNotFound is returned when a table id does not exist.
var ErrTableNotFound = errors.New("table not found")

// ErrAreaNotFound is returned when an area id does not exist.
var ErrAreaNotFound = errors.New("area not found")

// ErrReservationNotFound is returned when a reservation cannot be
// located by id or lookup token.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrDuplicateName is returned when a table or area name collides with
// an existing one in the same scope. Handlers should translate this
// into an HTTP 409 response.
var ErrDuplicateName = errors.New("name already exists")

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing a table that still has active
// reservations. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")
