package handler

import (
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/queue"
    "github.com/iliyamo/restaurant-table-reservation/internal/repository"
    queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

type setStatusReq struct {
    Status  string `json:"status"`
    Version uint32 `json:"version"`
}

// SetStatus handles PUT /v1/staff/tables/:id/status.  Only the stored
// administrative flags (Empty, Locked, Maintenance) may be written;
// Reserved and Occupied are derived and rejected here.  The write is
// guarded by the optimistic version counter the client read, so two
// staff members editing the same table cannot silently overwrite each
// other.
//
// Setting a table back to Empty while a Confirmed reservation is in
// progress auto-completes that reservation in the same transaction, so
// "the party left" is one action at the front desk.
func (h *TableHandler) SetStatus(c echo.Context) error {
    staffID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    tableID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || tableID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
    }
    var req setStatusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    newStatus := booking.TableStatus(req.Status)
    if !newStatus.BaseStatus() {
        return c.JSON(http.StatusBadRequest, echo.Map{
            "error":   booking.ErrInvalidStatus.Error(),
            "allowed": []string{string(booking.TableEmpty), string(booking.TableLocked), string(booking.TableMaintenance)},
        })
    }

    ctx := c.Request().Context()
    now := time.Now().UTC()
    tx, err := h.TableRepo.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    table, err := h.TableRepo.GetByIDForUpdateTx(ctx, tx, tableID)
    if err != nil {
        if errors.Is(err, repository.ErrTableNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    var completed *booking.BlockingReservation
    if newStatus == booking.TableEmpty {
        touching, err := h.ReservationRepo.TouchingNowForTableTx(ctx, tx, table.ID, now, h.Timing.StatusLead)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load reservations"})
        }
        if occ, ok := booking.Occupying(touching, now, h.Timing); ok {
            if err := h.ReservationRepo.UpdateStatusTx(ctx, tx, occ.ReservationID,
                booking.StatusConfirmed, booking.StatusCompleted, false); err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to complete reservation"})
            }
            if err := h.AuditRepo.InsertTx(ctx, tx, occ.ReservationID, "Completed",
                "completed when the table was freed", &staffID); err != nil {
                return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record audit entry"})
            }
            completed = &occ
        }
    }

    oldStatus := table.BaseStatus
    updated, err := h.TableRepo.UpdateBaseStatusTx(ctx, tx, table.ID, newStatus, req.Version)
    if err != nil {
        switch {
        case errors.Is(err, booking.ErrVersionConflict):
            return c.JSON(http.StatusConflict, echo.Map{
                "error":           "table was modified concurrently, reload and retry",
                "current_version": table.Version,
            })
        case errors.Is(err, repository.ErrTableNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "table not found"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
        }
    }
    if err := h.AuditRepo.InsertTableStatusTx(ctx, tx, table.ID, oldStatus, string(newStatus), staffID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to record audit entry"})
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
    }
    committed = true

    _ = queue_publisher.PublishTableStatusEvent(ctx, queue.TableStatusEvent{
        Event:      queue.EventTableStatusChanged,
        TableID:    updated.ID,
        OldStatus:  oldStatus,
        NewStatus:  updated.BaseStatus,
        Version:    updated.Version,
        OccurredAt: now.Format(time.RFC3339),
    })
    if completed != nil {
        _ = queue_publisher.PublishReservationEvent(ctx, queue.ReservationEvent{
            Event:         queue.EventReservationCompleted,
            ReservationID: completed.ReservationID,
            TableID:       updated.ID,
            Status:        string(booking.StatusCompleted),
            StartsAt:      completed.Start.UTC().Format(time.RFC3339),
            EndsAt:        completed.Start.Add(completed.Duration).UTC().Format(time.RFC3339),
            OccurredAt:    now.Format(time.RFC3339),
        })
    }

    resp := tableJSON(updated, "", booking.TableStatus(updated.BaseStatus))
    if completed != nil {
        resp["completed_reservation_id"] = completed.ReservationID
    }
    return c.JSON(http.StatusOK, resp)
}
