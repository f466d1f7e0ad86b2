package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/queue"
    "github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// CreateGuest handles POST /v1/reservations.  The route is public, so
// the reservation is recorded with source Online and no acting staff
// member.  The response carries the lookup token the guest needs for
// later retrieval and cancellation.
func (h *ReservationHandler) CreateGuest(c echo.Context) error {
    return h.create(c, booking.SourceOnline, nil)
}

// GetByToken handles GET /v1/reservations/token/:token.  Tokens are
// unguessable, so possession of one is the only credential required.
// The rendered reservation omits internal references (customer id,
// staff id).
func (h *ReservationHandler) GetByToken(c echo.Context) error {
    token := c.Param("token")
    if len(token) != booking.LookupTokenLen {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
    }
    res, err := h.ReservationRepo.GetByToken(c.Request().Context(), token)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, reservationJSON(res, false))
}

// CancelByToken handles DELETE /v1/reservations/token/:token.  Guests
// may cancel up to one hour before the start time; past the deadline
// they are told to call the restaurant instead.
func (h *ReservationHandler) CancelByToken(c echo.Context) error {
    token := c.Param("token")
    if len(token) != booking.LookupTokenLen {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
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

    res, err := h.ReservationRepo.GetByTokenTx(ctx, tx, token)
    if err != nil {
        if errors.Is(err, repository.ErrReservationNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    current := booking.Status(res.Status)
    now := time.Now().UTC()
    if err := booking.GuestCancel(current, res.CancelDeadline, now); err != nil {
        if errors.Is(err, booking.ErrDeadlinePassed) {
            return c.JSON(http.StatusConflict, echo.Map{
                "error":           "cancellation deadline has passed, please call the restaurant",
                "cancel_deadline": res.CancelDeadline.UTC().Format(time.RFC3339),
            })
        }
        return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "current_status": res.Status})
    }
    if err := h.ReservationRepo.UpdateStatusTx(ctx, tx, res.ID, current, booking.StatusCancelled, true); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
    }
    if err := h.AuditRepo.InsertTx(ctx, tx, res.ID, "Cancelled", "cancelled by guest", nil); err != nil {
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
