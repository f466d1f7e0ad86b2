package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// TableRepo provides data access to the tables and areas tables.  The
// base_status column only ever stores an administrative flag; derived
// statuses are computed by callers from live reservation data.
type TableRepo struct {
    db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions.
func (r *TableRepo) DB() *sql.DB { return r.db }

const tableColumns = `id, area_id, name, seats, base_status, position, note, version, created_at, updated_at`

func scanTable(row interface{ Scan(...interface{}) error }) (model.Table, error) {
    var t model.Table
    var pos, note sql.NullString
    err := row.Scan(&t.ID, &t.AreaID, &t.Name, &t.Seats, &t.BaseStatus,
        &pos, &note, &t.Version, &t.CreatedAt, &t.UpdatedAt)
    if err != nil {
        return model.Table{}, err
    }
    if pos.Valid {
        v := pos.String
        t.Position = &v
    }
    if note.Valid {
        v := note.String
        t.Note = &v
    }
    return t, nil
}

// GetByID returns a single table or ErrTableNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (model.Table, error) {
    const q = `SELECT ` + tableColumns + ` FROM tables WHERE id = ?`
    t, err := scanTable(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return model.Table{}, ErrTableNotFound
    }
    return t, err
}

// GetByIDForUpdateTx reads a table row inside the given transaction
// while taking a row lock (SELECT ... FOR UPDATE).  The create path
// relies on this lock to serialize the conflict-check-then-insert
// sequence per table: a second create for the same table blocks here
// until the first commits, then sees its inserted reservation.
func (r *TableRepo) GetByIDForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Table, error) {
    const q = `SELECT ` + tableColumns + ` FROM tables WHERE id = ? FOR UPDATE`
    t, err := scanTable(tx.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return model.Table{}, ErrTableNotFound
    }
    return t, err
}

// TableWithArea pairs a table with the name of its area for listing.
type TableWithArea struct {
    model.Table
    AreaName string
}

// List returns all tables joined with their area names, optionally
// filtered by area.  Ordered by area then table name so the floor plan
// renders deterministically.
func (r *TableRepo) List(ctx context.Context, areaID *uint64) ([]TableWithArea, error) {
    q := `SELECT t.id, t.area_id, t.name, t.seats, t.base_status, t.position, t.note,
                 t.version, t.created_at, t.updated_at, a.name
          FROM tables t
          JOIN areas a ON a.id = t.area_id`
    args := []interface{}{}
    if areaID != nil {
        q += ` WHERE t.area_id = ?`
        args = append(args, *areaID)
    }
    q += ` ORDER BY a.name, t.name`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]TableWithArea, 0)
    for rows.Next() {
        var t TableWithArea
        var pos, note sql.NullString
        if err := rows.Scan(&t.ID, &t.AreaID, &t.Name, &t.Seats, &t.BaseStatus,
            &pos, &note, &t.Version, &t.CreatedAt, &t.UpdatedAt, &t.AreaName); err != nil {
            return nil, err
        }
        if pos.Valid {
            v := pos.String
            t.Position = &v
        }
        if note.Valid {
            v := note.String
            t.Note = &v
        }
        out = append(out, t)
    }
    return out, rows.Err()
}

// Create inserts a new table.  Returns ErrAreaNotFound when the area
// does not exist and ErrDuplicateName when the name is taken within
// the area.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
    var exists bool
    if err := r.db.QueryRowContext(ctx,
        `SELECT EXISTS(SELECT 1 FROM areas WHERE id = ?)`, t.AreaID).Scan(&exists); err != nil {
        return err
    }
    if !exists {
        return ErrAreaNotFound
    }
    const q = `INSERT INTO tables (area_id, name, seats, base_status, position, note)
               VALUES (?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, t.AreaID, t.Name, t.Seats, t.BaseStatus, t.Position, t.Note)
    if err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicateName
        }
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    got, err := r.GetByID(ctx, t.ID)
    if err != nil {
        return err
    }
    *t = got
    return nil
}

// Update edits a table's name, seats, position and note.  Base status
// changes go through UpdateBaseStatusTx instead so the optimistic
// version counter is not churned by plain edits.
func (r *TableRepo) Update(ctx context.Context, t *model.Table) error {
    const q = `UPDATE tables SET name = ?, seats = ?, position = ?, note = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, t.Name, t.Seats, t.Position, t.Note, t.ID)
    if err != nil {
        if isDuplicateKey(err) {
            return ErrDuplicateName
        }
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // the row may exist with identical values; distinguish from missing
        var exists bool
        if err := r.db.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM tables WHERE id = ?)`, t.ID).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrTableNotFound
        }
    }
    got, err := r.GetByID(ctx, t.ID)
    if err != nil {
        return err
    }
    *t = got
    return nil
}

// Delete removes a table.  The caller must first verify no blocking
// reservations reference it; the FK restriction is the last line of
// defense and surfaces as ErrConflict.
func (r *TableRepo) Delete(ctx context.Context, id uint64) error {
    res, err := r.db.ExecContext(ctx, `DELETE FROM tables WHERE id = ?`, id)
    if err != nil {
        if isForeignKeyViolation(err) {
            return ErrConflict
        }
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrTableNotFound
    }
    return nil
}

// UpdateBaseStatusTx writes a new base status under optimistic
// concurrency control: the UPDATE only matches when the stored version
// equals expectedVersion, and it increments the version on success.
// When no row matches, the table is either missing (ErrTableNotFound)
// or was modified concurrently (booking.ErrVersionConflict).
func (r *TableRepo) UpdateBaseStatusTx(ctx context.Context, tx *sql.Tx, id uint64, newStatus booking.TableStatus, expectedVersion uint32) (model.Table, error) {
    const q = `UPDATE tables SET base_status = ?, version = version + 1
               WHERE id = ? AND version = ?`
    res, err := tx.ExecContext(ctx, q, string(newStatus), id, expectedVersion)
    if err != nil {
        return model.Table{}, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return model.Table{}, err
    }
    if n == 0 {
        var exists bool
        if err := tx.QueryRowContext(ctx,
            `SELECT EXISTS(SELECT 1 FROM tables WHERE id = ?)`, id).Scan(&exists); err != nil {
            return model.Table{}, err
        }
        if !exists {
            return model.Table{}, ErrTableNotFound
        }
        return model.Table{}, booking.ErrVersionConflict
    }
    const sel = `SELECT ` + tableColumns + ` FROM tables WHERE id = ?`
    return scanTable(tx.QueryRowContext(ctx, sel, id))
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
    return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}

// isForeignKeyViolation detects MySQL error 1451 (row is referenced).
func isForeignKeyViolation(err error) bool {
    return err != nil && strings.Contains(strings.ToLower(err.Error()), "1451")
}
