package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/handler"
    "github.com/iliyamo/restaurant-table-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health
// check, used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // refresh rotates the refresh token; refresh-access issues a new
    // access token without rotating
    g.POST("/refresh", a.Refresh)
    g.POST("/refresh-access", a.RefreshAccess)
    // logout takes the refresh token in the body, so it needs no JWT
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole("STAFF", "ADMIN"))
    auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest-facing endpoints: the floor plan
// read paths and guest reservation self-service.  No JWT is applied;
// the lookup token is the only credential on the token routes.  The
// optional middleware (rate limiting on writes, response caching on
// reads) is passed in by main when Redis is available.
func RegisterPublic(e *echo.Echo, t *handler.TableHandler, r *handler.ReservationHandler, writeLimit, readCache echo.MiddlewareFunc) {
    tables := e.Group("/v1/tables")
    if readCache != nil {
        tables.Use(readCache)
    }
    tables.GET("", t.List)
    tables.GET("/:id", t.Get)

    res := e.Group("/v1/reservations")
    if writeLimit != nil {
        res.Use(writeLimit)
    }
    res.POST("", r.CreateGuest)
    res.GET("/token/:token", r.GetByToken)
    res.DELETE("/token/:token", r.CancelByToken)
}

// RegisterStaff registers the staff-facing reservation and table
// management endpoints under /v1/staff.  Every route requires a valid
// access token carrying the STAFF or ADMIN role; table and area
// administration additionally requires ADMIN.
func RegisterStaff(e *echo.Echo, t *handler.TableHandler, r *handler.ReservationHandler, jwtSecret string) {
    staff := e.Group("/v1/staff")
    staff.Use(middleware.JWTAuth(jwtSecret))
    staff.Use(middleware.RequireRole("STAFF", "ADMIN"))

    staff.POST("/reservations", r.CreateStaff)
    staff.GET("/reservations", r.List)
    staff.GET("/reservations/:id", r.Get)
    staff.POST("/reservations/:id/confirm", r.Confirm)
    staff.POST("/reservations/:id/complete", r.Complete)
    staff.DELETE("/reservations/:id", r.CancelStaff)

    // freeing, locking or flagging a table is a front desk action
    staff.PUT("/tables/:id/status", t.SetStatus)

    admin := e.Group("/v1/staff")
    admin.Use(middleware.JWTAuth(jwtSecret))
    admin.Use(middleware.RequireRole("ADMIN"))

    admin.POST("/tables", t.Create)
    admin.PUT("/tables/:id", t.Update)
    admin.DELETE("/tables/:id", t.Delete)
    admin.GET("/areas", t.ListAreas)
    admin.POST("/areas", t.CreateArea)
}
