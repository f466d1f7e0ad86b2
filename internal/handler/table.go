package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
    "github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// TableHandler serves the floor plan read paths and the staff table
// CRUD.  Statuses returned by the read paths are always derived from
// live reservation data at request time; the stored base status is only
// one input.
type TableHandler struct {
    TableRepo       *repository.TableRepo
    AreaRepo        *repository.AreaRepo
    ReservationRepo *repository.ReservationRepo
    AuditRepo       *repository.AuditRepo
    Timing          booking.Timing
}

// NewTableHandler constructs a TableHandler.
func NewTableHandler(tableRepo *repository.TableRepo, areaRepo *repository.AreaRepo, reservationRepo *repository.ReservationRepo, auditRepo *repository.AuditRepo, timing booking.Timing) *TableHandler {
    if tableRepo == nil || areaRepo == nil || reservationRepo == nil || auditRepo == nil {
        panic("nil repository passed to NewTableHandler")
    }
    return &TableHandler{
        TableRepo:       tableRepo,
        AreaRepo:        areaRepo,
        ReservationRepo: reservationRepo,
        AuditRepo:       auditRepo,
        Timing:          timing,
    }
}

func tableJSON(t model.Table, areaName string, status booking.TableStatus) echo.Map {
    m := echo.Map{
        "id":          t.ID,
        "area_id":     t.AreaID,
        "area_name":   areaName,
        "name":        t.Name,
        "seats":       t.Seats,
        "status":      string(status),
        "base_status": t.BaseStatus,
        "version":     t.Version,
    }
    if t.Position != nil {
        m["position"] = *t.Position
    }
    if t.Note != nil {
        m["note"] = *t.Note
    }
    return m
}

// List handles GET /v1/tables.  Tables come back grouped by area with
// their effective status computed against the reservations touching the
// current moment.  An optional area_id query parameter narrows the
// result.
func (h *TableHandler) List(c echo.Context) error {
    var areaID *uint64
    if s := c.QueryParam("area_id"); s != "" {
        id, err := strconv.ParseUint(s, 10, 64)
        if err != nil || id == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid area_id"})
        }
        areaID = &id
    }

    ctx := c.Request().Context()
    tables, err := h.TableRepo.List(ctx, areaID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tables"})
    }
    now := time.Now().UTC()
    touching, err := h.ReservationRepo.TouchingNow(ctx, now, h.Timing.StatusLead)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }

    // group by area, preserving the repository's area ordering
    order := make([]string, 0)
    grouped := make(map[string][]echo.Map)
    for _, t := range tables {
        status := booking.EffectiveStatus(booking.TableStatus(t.BaseStatus), touching[t.ID], now, h.Timing)
        if _, seen := grouped[t.AreaName]; !seen {
            order = append(order, t.AreaName)
        }
        grouped[t.AreaName] = append(grouped[t.AreaName], tableJSON(t.Table, t.AreaName, status))
    }
    areas := make([]echo.Map, 0, len(order))
    for _, name := range order {
        areas = append(areas, echo.Map{"area": name, "tables": grouped[name]})
    }
    return c.JSON(http.StatusOK, echo.Map{"areas": areas, "as_of": now.Format(time.RFC3339)})
}

// Get handles GET /v1/tables/:id.  The detail view includes the derived
// status and the table's most recent reservations.
func (h *TableHandler) Get(c echo.Context) error {
    tableID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || tableID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
    }
    ctx := c.Request().Context()
    table, err := h.TableRepo.GetByID(ctx, tableID)
    if err != nil {
        if errors.Is(err, repository.ErrTableNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    now := time.Now().UTC()
    touching, err := h.ReservationRepo.TouchingNow(ctx, now, h.Timing.StatusLead)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    status := booking.EffectiveStatus(booking.TableStatus(table.BaseStatus), touching[table.ID], now, h.Timing)

    recent, err := h.ReservationRepo.ListByTable(ctx, table.ID, 10)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
    }
    history := make([]echo.Map, 0, len(recent))
    for _, d := range recent {
        m := echo.Map{
            "id":         d.ID,
            "party_size": d.PartySize,
            "start_time": d.StartTime.UTC().Format(time.RFC3339),
            "end_time":   d.StartTime.Add(d.Duration).UTC().Format(time.RFC3339),
            "status":     d.Status,
            "source":     d.Source,
        }
        if d.GuestName != nil {
            m["guest_name"] = *d.GuestName
        }
        history = append(history, m)
    }

    areaName := ""
    if areas, err := h.AreaRepo.List(ctx); err == nil {
        for _, a := range areas {
            if a.ID == table.AreaID {
                areaName = a.Name
                break
            }
        }
    }
    item := tableJSON(table, areaName, status)
    item["recent_reservations"] = history
    return c.JSON(http.StatusOK, echo.Map{"item": item, "as_of": now.Format(time.RFC3339)})
}

type tableReq struct {
    AreaID   uint64  `json:"area_id"`
    Name     string  `json:"name"`
    Seats    int     `json:"seats"`
    Position *string `json:"position"`
    Note     *string `json:"note"`
}

// Create handles POST /v1/staff/tables.  New tables start with an
// Empty base status and version zero.
func (h *TableHandler) Create(c echo.Context) error {
    var req tableReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.AreaID == 0 || req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "area_id and name are required"})
    }
    if req.Seats <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be positive"})
    }
    t := model.Table{
        AreaID:     req.AreaID,
        Name:       req.Name,
        Seats:      req.Seats,
        BaseStatus: string(booking.TableEmpty),
        Position:   req.Position,
        Note:       req.Note,
    }
    err := h.TableRepo.Create(c.Request().Context(), &t)
    switch {
    case errors.Is(err, repository.ErrAreaNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "area not found"})
    case errors.Is(err, repository.ErrDuplicateName):
        return c.JSON(http.StatusConflict, echo.Map{"error": "a table with this name already exists in the area"})
    case err != nil:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create table"})
    }
    return c.JSON(http.StatusCreated, tableJSON(t, "", booking.TableStatus(t.BaseStatus)))
}

// Update handles PUT /v1/staff/tables/:id for name, seats, position and
// note edits.  Base status changes use the dedicated status endpoint.
func (h *TableHandler) Update(c echo.Context) error {
    tableID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || tableID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
    }
    var req tableReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    if req.Seats <= 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats must be positive"})
    }
    t := model.Table{
        ID:       tableID,
        Name:     req.Name,
        Seats:    req.Seats,
        Position: req.Position,
        Note:     req.Note,
    }
    err = h.TableRepo.Update(c.Request().Context(), &t)
    switch {
    case errors.Is(err, repository.ErrTableNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
    case errors.Is(err, repository.ErrDuplicateName):
        return c.JSON(http.StatusConflict, echo.Map{"error": "a table with this name already exists in the area"})
    case err != nil:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update table"})
    }
    return c.JSON(http.StatusOK, tableJSON(t, "", booking.TableStatus(t.BaseStatus)))
}

// Delete handles DELETE /v1/staff/tables/:id.  Deletion is refused
// while any Booked or Confirmed reservation references the table so
// active bookings never lose their table.
func (h *TableHandler) Delete(c echo.Context) error {
    tableID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || tableID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
    }
    ctx := c.Request().Context()
    blocked, err := h.ReservationRepo.HasBlockingForTable(ctx, tableID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if blocked {
        return c.JSON(http.StatusConflict, echo.Map{"error": "table has active reservations"})
    }
    err = h.TableRepo.Delete(ctx, tableID)
    switch {
    case errors.Is(err, repository.ErrTableNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "table has active reservations"})
    case err != nil:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete table"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ListAreas handles GET /v1/staff/areas.
func (h *TableHandler) ListAreas(c echo.Context) error {
    areas, err := h.AreaRepo.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load areas"})
    }
    items := make([]echo.Map, 0, len(areas))
    for _, a := range areas {
        m := echo.Map{"id": a.ID, "name": a.Name}
        if a.Description != nil {
            m["description"] = *a.Description
        }
        items = append(items, m)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type areaReq struct {
    Name        string  `json:"name"`
    Description *string `json:"description"`
}

// CreateArea handles POST /v1/staff/areas.
func (h *TableHandler) CreateArea(c echo.Context) error {
    var req areaReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    a := model.Area{Name: req.Name, Description: req.Description}
    if err := h.AreaRepo.Create(c.Request().Context(), &a); err != nil {
        if errors.Is(err, repository.ErrDuplicateName) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "an area with this name already exists"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create area"})
    }
    m := echo.Map{"id": a.ID, "name": a.Name}
    if a.Description != nil {
        m["description"] = *a.Description
    }
    return c.JSON(http.StatusCreated, m)
}
