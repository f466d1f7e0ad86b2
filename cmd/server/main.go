package main // Entry point package

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/config"
    "github.com/iliyamo/restaurant-table-reservation/internal/database"
    "github.com/iliyamo/restaurant-table-reservation/internal/handler"
    "github.com/iliyamo/restaurant-table-reservation/internal/middleware"
    "github.com/iliyamo/restaurant-table-reservation/internal/queue"
    "github.com/iliyamo/restaurant-table-reservation/internal/repository"
    "github.com/iliyamo/restaurant-table-reservation/internal/router"
    "github.com/iliyamo/restaurant-table-reservation/internal/sweeper"
    queue_publisher "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

func main() {
    // .env is optional; real deployments set the environment directly
    _ = godotenv.Load()

    cfg := config.Load()
    timing := config.LoadTiming()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    userRepo := repository.NewUserRepo(db)
    tokenRepo := repository.NewTokenRepo(db)
    areaRepo := repository.NewAreaRepo(db)
    tableRepo := repository.NewTableRepo(db)
    reservationRepo := repository.NewReservationRepo(db)
    auditRepo := repository.NewAuditRepo(db)

    authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
    tableHandler := handler.NewTableHandler(tableRepo, areaRepo, reservationRepo, auditRepo, timing)
    reservationHandler := handler.NewReservationHandler(tableRepo, reservationRepo, auditRepo, timing)

    // Redis backs rate limiting and response caching.  A nil client
    // disables both; the core reservation flow has no Redis dependency.
    rdb := config.NewRedisClient()
    var writeLimit, readCache echo.MiddlewareFunc
    if rdb != nil {
        writeLimit = middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
        readCache = middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
    } else {
        log.Printf("redis unavailable; rate limiting and response caching disabled")
    }

    e := echo.New()
    router.RegisterRoutes(e)
    router.RegisterAuth(e, authHandler, cfg.JWTSecret)
    router.RegisterPublic(e, tableHandler, reservationHandler, writeLimit, readCache)
    router.RegisterStaff(e, tableHandler, reservationHandler, cfg.JWTSecret)

    // background expiry sweep for Booked reservations nobody confirmed
    sw := sweeper.New(reservationRepo, queue_publisher.PublishReservationEvent,
        timing.Grace, config.LoadSweepInterval())
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    go sw.Run(ctx)

    // event consumer tails reservation.events into logs/reservation.log
    go func() {
        if err := queue.StartEventConsumer(); err != nil {
            log.Printf("event consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
