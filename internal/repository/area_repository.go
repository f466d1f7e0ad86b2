package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// AreaRepo provides data access to the areas table.  Areas group
// tables for the floor plan; they are created by administrators and
// rarely change.
type AreaRepo struct {
    db *sql.DB
}

// NewAreaRepo returns a new AreaRepo bound to the given database.
func NewAreaRepo(db *sql.DB) *AreaRepo { return &AreaRepo{db: db} }

// List returns all areas ordered by name.
func (r *AreaRepo) List(ctx context.Context) ([]model.Area, error) {
    const q = `SELECT id, name, description, created_at, updated_at FROM areas ORDER BY name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Area, 0)
    for rows.Next() {
        var a model.Area
        var desc sql.NullString
        if err := rows.Scan(&a.ID, &a.Name, &desc, &a.CreatedAt, &a.UpdatedAt); err != nil {
            return nil, err
        }
        if desc.Valid {
            v := desc.String
            a.Description = &v
        }
        out = append(out, a)
    }
    return out, rows.Err()
}

// Create inserts a new area.  Duplicate names surface as
// ErrDuplicateName.
func (r *AreaRepo) Create(ctx context.Context, a *model.Area) error {
    const q = `INSERT INTO areas (name, description) VALUES (?, ?)`
    res, err := r.db.ExecContext(ctx, q, a.Name, a.Description)
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
    a.ID = uint64(id)
    const sel = `SELECT id, name, description, created_at, updated_at FROM areas WHERE id = ?`
    var desc sql.NullString
    if err := r.db.QueryRowContext(ctx, sel, a.ID).Scan(&a.ID, &a.Name, &desc, &a.CreatedAt, &a.UpdatedAt); err != nil {
        return err
    }
    if desc.Valid {
        v := desc.String
        a.Description = &v
    }
    return nil
}
