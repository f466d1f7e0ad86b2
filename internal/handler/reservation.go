package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
    "github.com/iliyamo/restaurant-table-reservation/internal/queue"
    "github.com/iliyamo/restaurant-table-reservation/internal/repository"
    queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

// ReservationHandler groups the repositories and timing policy needed
// to create reservations and drive them through their lifecycle.  Each
// mutating method runs its critical DB operations inside a single
// transaction so the conflict check, the insert or transition and the
// audit entry commit or roll back together.  Lifecycle events are
// published after commit and publish failures never fail the request.
type ReservationHandler struct {
    TableRepo       *repository.TableRepo
    ReservationRepo *repository.ReservationRepo
    AuditRepo       *repository.AuditRepo
    Timing          booking.Timing
}

// NewReservationHandler constructs a ReservationHandler.  All
// repositories must be non-nil.
func NewReservationHandler(tableRepo *repository.TableRepo, reservationRepo *repository.ReservationRepo, auditRepo *repository.AuditRepo, timing booking.Timing) *ReservationHandler {
    if tableRepo == nil || reservationRepo == nil || auditRepo == nil {
        panic("nil repository passed to NewReservationHandler")
    }
    return &ReservationHandler{
        TableRepo:       tableRepo,
        ReservationRepo: reservationRepo,
        AuditRepo:       auditRepo,
        Timing:          timing,
    }
}

type createReservationReq struct {
    TableID    uint64  `json:"table_id"`
    PartySize  int     `json:"party_size"`
    StartTime  string  `json:"start_time"` // RFC3339
    CustomerID *uint64 `json:"customer_id"`
    GuestName  *string `json:"guest_name"`
    GuestPhone *string `json:"guest_phone"`
    GuestEmail *string `json:"guest_email"`
    Note       *string `json:"note"`
}

// CreateStaff handles POST /v1/staff/reservations.  The reservation is
// recorded with source StaffEntered and the acting staff id from the
// JWT.
func (h *ReservationHandler) CreateStaff(c echo.Context) error {
    staffID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    return h.create(c, booking.SourceStaffEntered, &staffID)
}

// create validates the request and runs the conflict-check-then-insert
// sequence.  The table row is read FOR UPDATE inside the transaction so
// two concurrent creates for the same table serialize: the second
// blocks on the row lock until the first commits and then sees its
// reservation in the blocking set.
func (h *ReservationHandler) create(c echo.Context, source booking.Source, staffID *uint64) error {
    var req createReservationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.TableID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "table_id is required"})
    }
    if req.PartySize <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "party_size must be positive"})
    }
    start, err := parseStartTime(req.StartTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be RFC3339"})
    }
    now := time.Now().UTC()
    if !start.After(now) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be in the future"})
    }
    // either a customer reference or guest contact details must be present
    hasGuestContact := req.GuestName != nil && *req.GuestName != ""
    if req.CustomerID == nil && !hasGuestContact {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id or guest contact details required"})
    }

    token, err := booking.NewLookupToken()
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate lookup token"})
    }

    ctx := c.Request().Context()
    tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // lock the table row for the rest of the transaction
    table, err := h.TableRepo.GetByIDForUpdateTx(ctx, tx, req.TableID)
    if err != nil {
        if errors.Is(err, repository.ErrTableNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if req.PartySize > table.Seats {
        capErr := &booking.CapacityError{Seats: table.Seats, PartySize: req.PartySize}
        return c.JSON(http.StatusBadRequest, echo.Map{"error": capErr.Error()})
    }

    blockers, err := h.ReservationRepo.BlockingByTableTx(ctx, tx, table.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
    }
    candidate := booking.NewInterval(start, h.Timing.Duration)
    if conflict, found := booking.FindConflict(candidate, blockers); found {
        w := conflict.Window()
        slotErr := &booking.SlotConflictError{
            TableID:       table.ID,
            ReservationID: conflict.ReservationID,
            Start:         w.Start,
            End:           w.End,
        }
        return c.JSON(http.StatusConflict, echo.Map{
            "error":          slotErr.Error(),
            "conflict_start": w.Start.Format(time.RFC3339),
            "conflict_end":   w.End.Format(time.RFC3339),
        })
    }

    res := &model.Reservation{
        TableID:        table.ID,
        CustomerID:     req.CustomerID,
        GuestName:      req.GuestName,
        GuestPhone:     req.GuestPhone,
        GuestEmail:     req.GuestEmail,
        PartySize:      req.PartySize,
        StartTime:      start,
        Duration:       h.Timing.Duration,
        Status:         string(booking.StatusBooked),
        Source:         string(source),
        LookupToken:    token,
        CancelDeadline: h.Timing.CancelDeadline(start),
        Note:           req.Note,
        StaffID:        staffID,
    }
    if err := h.ReservationRepo.CreateTx(ctx, tx, res); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create reservation"})
    }
    note := "reservation created for " + strconv.Itoa(req.PartySize) + " guests"
    if err := h.AuditRepo.InsertTx(ctx, tx, res.ID, "Created", note, staffID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record audit entry"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    h.publishEvent(ctx, queue.EventReservationCreated, res)

    return c.JSON(http.StatusCreated, reservationJSON(*res, true))
}

// Confirm handles POST /v1/staff/reservations/:id/confirm.  It moves a
// Booked reservation to Confirmed when the guest arrives.
func (h *ReservationHandler) Confirm(c echo.Context) error {
    return h.transition(c, booking.StatusConfirmed, "Confirmed", "guest arrived", queue.EventReservationConfirmed)
}

// Complete handles POST /v1/staff/reservations/:id/complete.  It
// closes out a Confirmed reservation.
func (h *ReservationHandler) Complete(c echo.Context) error {
    return h.transition(c, booking.StatusCompleted, "Completed", "table closed out", queue.EventReservationCompleted)
}

func (h *ReservationHandler) transition(c echo.Context, to booking.Status, action, note string, event string) error {
    staffID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || resID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    ctx := c.Request().Context()
    tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := h.ReservationRepo.GetByIDTx(ctx, tx, resID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    current := booking.Status(res.Status)
    if err := booking.Transition(current, to); err != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "current_status": res.Status})
    }
    if err := h.ReservationRepo.UpdateStatusTx(ctx, tx, res.ID, current, to, false); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
    }
    if err := h.AuditRepo.InsertTx(ctx, tx, res.ID, action, note, &staffID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record audit entry"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    res.Status = string(to)
    h.publishEvent(ctx, event, &res)

    return c.JSON(http.StatusOK, reservationJSON(res, true))
}

type cancelReq struct {
    Reason *string `json:"reason"`
}

// CancelStaff handles DELETE /v1/staff/reservations/:id.  Staff may
// cancel Booked and Confirmed reservations at any time; the
// cancellation deadline only binds guests.
func (h *ReservationHandler) CancelStaff(c echo.Context) error {
    staffID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || resID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    var req cancelReq
    _ = c.Bind(&req) // body is optional

    ctx := c.Request().Context()
    tx, err := h.ReservationRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    res, err := h.ReservationRepo.GetByIDTx(ctx, tx, resID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    current := booking.Status(res.Status)
    if err := booking.Transition(current, booking.StatusCancelled); err != nil {
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "current_status": res.Status})
    }
    if err := h.ReservationRepo.UpdateStatusTx(ctx, tx, res.ID, current, booking.StatusCancelled, true); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
    }
    note := "cancelled by staff"
    if req.Reason != nil && *req.Reason != "" {
        note = *req.Reason
    }
    if err := h.AuditRepo.InsertTx(ctx, tx, res.ID, "Cancelled", note, &staffID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record audit entry"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    res.Status = string(booking.StatusCancelled)
    h.publishEvent(ctx, queue.EventReservationCancelled, &res)

    return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/staff/reservations.  Supported query
// parameters: status, from, to (RFC3339), page, limit.
func (h *ReservationHandler) List(c echo.Context) error {
    var f repository.ListFilter
    if s := c.QueryParam("status"); s != "" {
        st := booking.Status(s)
        if !st.Valid() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
        }
        f.Status = &st
    }
    if s := c.QueryParam("from"); s != "" {
        t, err := parseStartTime(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "from must be RFC3339"})
        }
        f.From = &t
    }
    if s := c.QueryParam("to"); s != "" {
        t, err := parseStartTime(s)
        if err != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must be RFC3339"})
        }
        f.To = &t
    }
    f.Page, _ = strconv.Atoi(c.QueryParam("page"))
    f.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
    if f.Page <= 0 {
        f.Page = 1
    }
    if f.Limit <= 0 || f.Limit > 100 {
        f.Limit = 10
    }

    details, total, err := h.ReservationRepo.List(c.Request().Context(), f)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    items := make([]echo.Map, 0, len(details))
    for _, d := range details {
        m := reservationJSON(d.Reservation, true)
        m["table_name"] = d.TableName
        m["area_name"] = d.AreaName
        items = append(items, m)
    }
    totalPages := (total + f.Limit - 1) / f.Limit
    return c.JSON(http.StatusOK, echo.Map{
        "items": items,
        "pagination": echo.Map{
            "page":        f.Page,
            "limit":       f.Limit,
            "total":       total,
            "total_pages": totalPages,
        },
    })
}

// Get handles GET /v1/staff/reservations/:id.  The response includes
// the full audit trail.
func (h *ReservationHandler) Get(c echo.Context) error {
    resID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || resID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    ctx := c.Request().Context()
    res, err := h.ReservationRepo.GetByID(ctx, resID)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    trail, err := h.AuditRepo.ListByReservation(ctx, res.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load audit trail"})
    }
    history := make([]echo.Map, 0, len(trail))
    for _, a := range trail {
        entry := echo.Map{
            "action":     a.Action,
            "note":       a.Note,
            "created_at": a.CreatedAt.UTC().Format(time.RFC3339),
        }
        if a.StaffID != nil {
            entry["staff_id"] = *a.StaffID
        }
        history = append(history, entry)
    }
    item := reservationJSON(res, true)
    item["history"] = history
    return c.JSON(http.StatusOK, echo.Map{"item": item})
}

// publishEvent emits a lifecycle event after commit.  Failures are
// logged by the publisher and ignored here.
func (h *ReservationHandler) publishEvent(ctx context.Context, event string, res *model.Reservation) {
    _ = queue_publisher.PublishReservationEvent(ctx, queue.ReservationEvent{
        Event:         event,
        ReservationID: res.ID,
        TableID:       res.TableID,
        Status:        res.Status,
        PartySize:     res.PartySize,
        StartsAt:      res.StartTime.UTC().Format(time.RFC3339),
        EndsAt:        res.StartTime.Add(res.Duration).UTC().Format(time.RFC3339),
        Source:        res.Source,
        OccurredAt:    time.Now().UTC().Format(time.RFC3339),
    })
}
