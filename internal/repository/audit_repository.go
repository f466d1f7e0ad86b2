package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// AuditRepo provides access to the append-only reservation_audit
// table.  Entries are only ever inserted; history is retained
// indefinitely as a reporting input.
type AuditRepo struct {
    db *sql.DB
}

// NewAuditRepo returns a new AuditRepo bound to the given database.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// InsertTx appends one audit entry within the scope of an existing
// transaction.  Every successful lifecycle transition writes exactly
// one entry through this method.
func (r *AuditRepo) InsertTx(ctx context.Context, tx *sql.Tx, reservationID uint64, action, note string, staffID *uint64) error {
    const q = `INSERT INTO reservation_audit (reservation_id, action, note, staff_id) VALUES (?, ?, ?, ?)`
    _, err := tx.ExecContext(ctx, q, reservationID, action, note, staffID)
    return err
}

// InsertTableStatusTx appends one entry to the table_status_audit
// table recording a manual base status change, within the transaction
// that performed the change.
func (r *AuditRepo) InsertTableStatusTx(ctx context.Context, tx *sql.Tx, tableID uint64, oldStatus, newStatus string, staffID uint64) error {
    const q = `INSERT INTO table_status_audit (table_id, old_status, new_status, staff_id) VALUES (?, ?, ?, ?)`
    _, err := tx.ExecContext(ctx, q, tableID, oldStatus, newStatus, staffID)
    return err
}

// ListByReservation returns the full audit trail for a reservation,
// newest entry first.
func (r *AuditRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.ReservationAudit, error) {
    const q = `SELECT id, reservation_id, action, note, staff_id, created_at
               FROM reservation_audit
               WHERE reservation_id = ?
               ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, reservationID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.ReservationAudit, 0)
    for rows.Next() {
        var a model.ReservationAudit
        var staffID sql.NullInt64
        if err := rows.Scan(&a.ID, &a.ReservationID, &a.Action, &a.Note, &staffID, &a.CreatedAt); err != nil {
            return nil, err
        }
        if staffID.Valid {
            v := uint64(staffID.Int64)
            a.StaffID = &v
        }
        out = append(out, a)
    }
    return out, rows.Err()
}
