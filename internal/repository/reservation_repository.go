package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// ErrStatusChanged is returned when a guarded status UPDATE matched no
// row because the reservation's status moved concurrently.  The sweeper
// treats this as a skip; handlers re-read under lock so they should
// never see it.
var ErrStatusChanged = errors.New("reservation status changed concurrently")

// ReservationRepo provides data access to the reservations and
// reservation_audit tables.  All timestamps are stored in UTC; the DSN
// uses parseTime with a UTC location so DATETIME columns scan directly
// into time.Time.  Durations are persisted as whole minutes.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given
// database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so handlers can begin transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, table_id, customer_id, guest_name, guest_phone, guest_email,
    party_size, start_time, duration_min, status, source, lookup_token, cancel_deadline,
    note, staff_id, created_at, cancelled_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (model.Reservation, error) {
    var (
        res          model.Reservation
        customerID   sql.NullInt64
        gName        sql.NullString
        gPhone       sql.NullString
        gEmail       sql.NullString
        durationMin  int64
        note         sql.NullString
        staffID      sql.NullInt64
        cancelledAt  sql.NullTime
    )
    err := row.Scan(&res.ID, &res.TableID, &customerID, &gName, &gPhone, &gEmail,
        &res.PartySize, &res.StartTime, &durationMin, &res.Status, &res.Source,
        &res.LookupToken, &res.CancelDeadline, &note, &staffID, &res.CreatedAt,
        &cancelledAt, &res.UpdatedAt)
    if err != nil {
        return model.Reservation{}, err
    }
    res.Duration = time.Duration(durationMin) * time.Minute
    if customerID.Valid {
        v := uint64(customerID.Int64)
        res.CustomerID = &v
    }
    if gName.Valid {
        v := gName.String
        res.GuestName = &v
    }
    if gPhone.Valid {
        v := gPhone.String
        res.GuestPhone = &v
    }
    if gEmail.Valid {
        v := gEmail.String
        res.GuestEmail = &v
    }
    if note.Valid {
        v := note.String
        res.Note = &v
    }
    if staffID.Valid {
        v := uint64(staffID.Int64)
        res.StaffID = &v
    }
    if cancelledAt.Valid {
        v := cancelledAt.Time
        res.CancelledAt = &v
    }
    return res, nil
}

// CreateTx inserts a new reservation within the scope of an existing
// transaction and populates the generated id and database defaults on
// the provided record.  The caller must commit or roll back.  The
// caller is also responsible for having performed the conflict check
// inside the same transaction while holding the table row lock.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
    const q = `INSERT INTO reservations (table_id, customer_id, guest_name, guest_phone, guest_email,
                   party_size, start_time, duration_min, status, source, lookup_token,
                   cancel_deadline, note, staff_id)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q, res.TableID, res.CustomerID, res.GuestName,
        res.GuestPhone, res.GuestEmail, res.PartySize, res.StartTime.UTC(),
        int64(res.Duration/time.Minute), res.Status, res.Source, res.LookupToken,
        res.CancelDeadline.UTC(), res.Note, res.StaffID)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    const sel = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    got, err := scanReservation(tx.QueryRowContext(ctx, sel, res.ID))
    if err != nil {
        return err
    }
    *res = got
    return nil
}

// GetByID returns a reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return model.Reservation{}, ErrReservationNotFound
    }
    return res, err
}

// GetByIDTx reads a reservation inside the given transaction while
// taking a row lock so the subsequent status transition cannot race a
// concurrent one.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? FOR UPDATE`
    res, err := scanReservation(tx.QueryRowContext(ctx, q, id))
    if err == sql.ErrNoRows {
        return model.Reservation{}, ErrReservationNotFound
    }
    return res, err
}

// GetByToken returns a reservation by its guest lookup token.
func (r *ReservationRepo) GetByToken(ctx context.Context, token string) (model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE lookup_token = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, token))
    if err == sql.ErrNoRows {
        return model.Reservation{}, ErrReservationNotFound
    }
    return res, err
}

// GetByTokenTx is GetByToken with a row lock, used by the guest cancel
// path.
func (r *ReservationRepo) GetByTokenTx(ctx context.Context, tx *sql.Tx, token string) (model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE lookup_token = ? FOR UPDATE`
    res, err := scanReservation(tx.QueryRowContext(ctx, q, token))
    if err == sql.ErrNoRows {
        return model.Reservation{}, ErrReservationNotFound
    }
    return res, err
}

// BlockingByTableTx returns every Booked or Confirmed reservation for a
// table, loaded inside the transaction that holds the table row lock.
// The conflict check must run against this exact stored set, never an
// approximation.
func (r *ReservationRepo) BlockingByTableTx(ctx context.Context, tx *sql.Tx, tableID uint64) ([]booking.BlockingReservation, error) {
    const q = `SELECT id, status, start_time, duration_min FROM reservations
               WHERE table_id = ? AND status IN (?, ?)`
    rows, err := tx.QueryContext(ctx, q, tableID, string(booking.StatusBooked), string(booking.StatusConfirmed))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectBlocking(rows)
}

// TouchingNow returns, per table, the blocking reservations whose
// status window can contain now.  The lead parameter matches the
// derived-status lead window: a reservation starts influencing its
// table that long before its start time.  Used by the table listing
// read path to derive effective statuses in one query.
func (r *ReservationRepo) TouchingNow(ctx context.Context, now time.Time, lead time.Duration) (map[uint64][]booking.BlockingReservation, error) {
    const q = `SELECT table_id, id, status, start_time, duration_min FROM reservations
               WHERE status IN (?, ?)
                 AND start_time <= ?
                 AND DATE_ADD(start_time, INTERVAL duration_min MINUTE) > ?`
    rows, err := r.db.QueryContext(ctx, q,
        string(booking.StatusBooked), string(booking.StatusConfirmed),
        now.UTC().Add(lead), now.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make(map[uint64][]booking.BlockingReservation)
    for rows.Next() {
        var tableID uint64
        var b booking.BlockingReservation
        var status string
        var durationMin int64
        if err := rows.Scan(&tableID, &b.ReservationID, &status, &b.Start, &durationMin); err != nil {
            return nil, err
        }
        b.Status = booking.Status(status)
        b.Duration = time.Duration(durationMin) * time.Minute
        out[tableID] = append(out[tableID], b)
    }
    return out, rows.Err()
}

// TouchingNowForTableTx is the single-table, in-transaction variant of
// TouchingNow.  Table administration uses it to find the reservation
// currently occupying a table before freeing it.
func (r *ReservationRepo) TouchingNowForTableTx(ctx context.Context, tx *sql.Tx, tableID uint64, now time.Time, lead time.Duration) ([]booking.BlockingReservation, error) {
    const q = `SELECT id, status, start_time, duration_min FROM reservations
               WHERE table_id = ? AND status IN (?, ?)
                 AND start_time <= ?
                 AND DATE_ADD(start_time, INTERVAL duration_min MINUTE) > ?
               FOR UPDATE`
    rows, err := tx.QueryContext(ctx, q, tableID,
        string(booking.StatusBooked), string(booking.StatusConfirmed),
        now.UTC().Add(lead), now.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return collectBlocking(rows)
}

func collectBlocking(rows *sql.Rows) ([]booking.BlockingReservation, error) {
    out := make([]booking.BlockingReservation, 0)
    for rows.Next() {
        var b booking.BlockingReservation
        var status string
        var durationMin int64
        if err := rows.Scan(&b.ReservationID, &status, &b.Start, &durationMin); err != nil {
            return nil, err
        }
        b.Status = booking.Status(status)
        b.Duration = time.Duration(durationMin) * time.Minute
        out = append(out, b)
    }
    return out, rows.Err()
}

// UpdateStatusTx performs a guarded status transition: the UPDATE only
// matches while the stored status still equals from.  When
// setCancelledAt is true the cancelled_at column is stamped.  A zero
// row count surfaces as ErrStatusChanged.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to booking.Status, setCancelledAt bool) error {
    var (
        res sql.Result
        err error
    )
    if setCancelledAt {
        res, err = tx.ExecContext(ctx,
            `UPDATE reservations SET status = ?, cancelled_at = UTC_TIMESTAMP() WHERE id = ? AND status = ?`,
            string(to), id, string(from))
    } else {
        res, err = tx.ExecContext(ctx,
            `UPDATE reservations SET status = ? WHERE id = ? AND status = ?`,
            string(to), id, string(from))
    }
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrStatusChanged
    }
    return nil
}

// HasBlockingForTable reports whether any Booked or Confirmed
// reservation references the table.  Table deletion is refused while
// this holds.
func (r *ReservationRepo) HasBlockingForTable(ctx context.Context, tableID uint64) (bool, error) {
    const q = `SELECT EXISTS(SELECT 1 FROM reservations WHERE table_id = ? AND status IN (?, ?))`
    var exists bool
    err := r.db.QueryRowContext(ctx, q, tableID,
        string(booking.StatusBooked), string(booking.StatusConfirmed)).Scan(&exists)
    return exists, err
}

// ListFilter narrows the staff reservation listing.
type ListFilter struct {
    Status *booking.Status // exact status match
    From   *time.Time      // start_time lower bound (inclusive)
    To     *time.Time      // start_time upper bound (inclusive)
    Page   int             // 1-based page number
    Limit  int             // page size
}

// ReservationDetail pairs a reservation with its table and area names
// for display.
type ReservationDetail struct {
    model.Reservation
    TableName string
    AreaName  string
}

// List returns reservations matching the filter, newest first, along
// with the total row count for pagination.
func (r *ReservationRepo) List(ctx context.Context, f ListFilter) ([]ReservationDetail, int, error) {
    where := ` WHERE 1=1`
    args := []interface{}{}
    if f.Status != nil {
        where += ` AND res.status = ?`
        args = append(args, string(*f.Status))
    }
    if f.From != nil {
        where += ` AND res.start_time >= ?`
        args = append(args, f.From.UTC())
    }
    if f.To != nil {
        where += ` AND res.start_time <= ?`
        args = append(args, f.To.UTC())
    }

    var total int
    countQ := `SELECT COUNT(*) FROM reservations res` + where
    if err := r.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    if f.Limit <= 0 {
        f.Limit = 10
    }
    if f.Page <= 0 {
        f.Page = 1
    }
    q := `SELECT res.id, res.table_id, res.customer_id, res.guest_name, res.guest_phone, res.guest_email,
                 res.party_size, res.start_time, res.duration_min, res.status, res.source, res.lookup_token,
                 res.cancel_deadline, res.note, res.staff_id, res.created_at, res.cancelled_at, res.updated_at,
                 t.name, a.name
          FROM reservations res
          JOIN tables t ON t.id = res.table_id
          JOIN areas a ON a.id = t.area_id` + where + `
          ORDER BY res.created_at DESC
          LIMIT ? OFFSET ?`
    args = append(args, f.Limit, (f.Page-1)*f.Limit)
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()
    out := make([]ReservationDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows)
        if err != nil {
            return nil, 0, err
        }
        out = append(out, d)
    }
    return out, total, rows.Err()
}

// ListByTable returns the most recent reservations for one table,
// newest start first.  Shown on the table detail page.
func (r *ReservationRepo) ListByTable(ctx context.Context, tableID uint64, limit int) ([]ReservationDetail, error) {
    if limit <= 0 {
        limit = 5
    }
    const q = `SELECT res.id, res.table_id, res.customer_id, res.guest_name, res.guest_phone, res.guest_email,
                      res.party_size, res.start_time, res.duration_min, res.status, res.source, res.lookup_token,
                      res.cancel_deadline, res.note, res.staff_id, res.created_at, res.cancelled_at, res.updated_at,
                      t.name, a.name
               FROM reservations res
               JOIN tables t ON t.id = res.table_id
               JOIN areas a ON a.id = t.area_id
               WHERE res.table_id = ?
               ORDER BY res.start_time DESC
               LIMIT ?`
    rows, err := r.db.QueryContext(ctx, q, tableID, limit)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]ReservationDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, d)
    }
    return out, rows.Err()
}

func scanDetail(rows *sql.Rows) (ReservationDetail, error) {
    var (
        d           ReservationDetail
        customerID  sql.NullInt64
        gName       sql.NullString
        gPhone      sql.NullString
        gEmail      sql.NullString
        durationMin int64
        note        sql.NullString
        staffID     sql.NullInt64
        cancelledAt sql.NullTime
    )
    err := rows.Scan(&d.ID, &d.TableID, &customerID, &gName, &gPhone, &gEmail,
        &d.PartySize, &d.StartTime, &durationMin, &d.Status, &d.Source,
        &d.LookupToken, &d.CancelDeadline, &note, &staffID, &d.CreatedAt,
        &cancelledAt, &d.UpdatedAt, &d.TableName, &d.AreaName)
    if err != nil {
        return ReservationDetail{}, err
    }
    d.Duration = time.Duration(durationMin) * time.Minute
    if customerID.Valid {
        v := uint64(customerID.Int64)
        d.CustomerID = &v
    }
    if gName.Valid {
        v := gName.String
        d.GuestName = &v
    }
    if gPhone.Valid {
        v := gPhone.String
        d.GuestPhone = &v
    }
    if gEmail.Valid {
        v := gEmail.String
        d.GuestEmail = &v
    }
    if note.Valid {
        v := note.String
        d.Note = &v
    }
    if staffID.Valid {
        v := uint64(staffID.Int64)
        d.StaffID = &v
    }
    if cancelledAt.Valid {
        v := cancelledAt.Time
        d.CancelledAt = &v
    }
    return d, nil
}

// ListOverdueBooked returns reservations still Booked whose start time
// is before cutoff (now minus the grace period).  The sweeper expires
// these one at a time so a single bad row never halts the sweep.
func (r *ReservationRepo) ListOverdueBooked(ctx context.Context, cutoff time.Time) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
               WHERE status = ? AND start_time < ?`
    rows, err := r.db.QueryContext(ctx, q, string(booking.StatusBooked), cutoff.UTC())
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, res)
    }
    return out, rows.Err()
}

// Expire transitions one Booked reservation to Expired and appends the
// audit entry, in its own transaction.  The guarded UPDATE makes the
// call idempotent: when the row was confirmed, cancelled or already
// expired in the meantime, nothing matches and ErrStatusChanged is
// returned for the caller to skip.
func (r *ReservationRepo) Expire(ctx context.Context, id uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := r.UpdateStatusTx(ctx, tx, id, booking.StatusBooked, booking.StatusExpired, false); err != nil {
        return err
    }
    const q = `INSERT INTO reservation_audit (reservation_id, action, note, staff_id) VALUES (?, ?, ?, NULL)`
    if _, err := tx.ExecContext(ctx, q, id, "Expired", "not confirmed within the grace period"); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}
