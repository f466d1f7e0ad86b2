package handler // handler defines http handlers

import (
    "errors"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// actingStaffID returns the authenticated staff id as a nullable
// pointer.  Guest routes carry no JWT, so absence simply means
// guest-initiated.
func actingStaffID(c echo.Context) *uint64 {
    id, err := getUserID(c)
    if err != nil {
        return nil
    }
    return &id
}

// parseStartTime accepts RFC3339 timestamps and normalizes to UTC.
func parseStartTime(s string) (time.Time, error) {
    t, err := time.Parse(time.RFC3339, s)
    if err != nil {
        return time.Time{}, err
    }
    return t.UTC(), nil
}

// reservationJSON renders a reservation for API responses.  When
// sensitive is false the customer reference and acting staff id are
// stripped, which is the shape guests see on the token lookup path.
func reservationJSON(res model.Reservation, sensitive bool) echo.Map {
    m := echo.Map{
        "id":              res.ID,
        "table_id":        res.TableID,
        "party_size":      res.PartySize,
        "start_time":      res.StartTime.UTC().Format(time.RFC3339),
        "end_time":        res.StartTime.Add(res.Duration).UTC().Format(time.RFC3339),
        "status":          res.Status,
        "source":          res.Source,
        "cancel_deadline": res.CancelDeadline.UTC().Format(time.RFC3339),
    }
    if res.GuestName != nil {
        m["guest_name"] = *res.GuestName
    }
    if res.GuestPhone != nil {
        m["guest_phone"] = *res.GuestPhone
    }
    if res.GuestEmail != nil {
        m["guest_email"] = *res.GuestEmail
    }
    if res.Note != nil {
        m["note"] = *res.Note
    }
    if res.CancelledAt != nil {
        m["cancelled_at"] = res.CancelledAt.UTC().Format(time.RFC3339)
    }
    m["created_at"] = res.CreatedAt.UTC().Format(time.RFC3339)
    if sensitive {
        if res.CustomerID != nil {
            m["customer_id"] = *res.CustomerID
        }
        if res.StaffID != nil {
            m["staff_id"] = *res.StaffID
        }
        m["lookup_token"] = res.LookupToken
    }
    return m
}
