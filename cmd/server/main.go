package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/database"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/lock"
	"github.com/iliyamo/restaurant-reservation/internal/logging"
	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memory"
	"github.com/iliyamo/restaurant-reservation/internal/repository/mysql"
	"github.com/iliyamo/restaurant-reservation/internal/router"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	rules, err := service.NewRules(cfg.OpenTime, cfg.LastSeatingTime, cfg.ClosedWeekday, cfg.TimeZone)
	if err != nil {
		log.WithError(err).Fatal("invalid booking rules")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	rdb := config.NewRedisClient(cfg.Redis)
	var locker service.Locker = lock.NewKeyed()
	if rdb != nil {
		defer rdb.Close()
		locker = lock.NewRedis(rdb, "lock", cfg.LockTTL, cfg.LockWait)
	}

	var events service.EventPublisher = queue.Discard{}
	if cfg.EventsEnabled {
		pub := queue.NewPublisher(cfg.RabbitMQURL, logging.Component("publisher"))
		defer pub.Close()
		events = pub

		consumer := &queue.Consumer{URL: cfg.RabbitMQURL, Dir: cfg.EventLogDir, Log: logging.Component("event-consumer")}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("event consumer stopped")
			}
		}()
	}

	m := metrics.New()
	validator := service.NewValidator(rules, nil)
	reservations := service.NewReservations(store, validator, locker, events, m, logging.Component("reservations"))
	tables := service.NewTables(store, logging.Component("tables"))
	allocator := service.NewAllocator(store, locker, events, m, logging.Component("allocator"))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logging.Component("http")))
	router.RegisterRoutes(e, router.Deps{
		Reservations: handler.NewReservationHandler(reservations),
		Tables:       handler.NewTableHandler(tables, allocator),
		Redis:        rdb,
		Cache:        cfg.Cache,
		RateLimit:    cfg.RateLimit,
		JWTSecret:    cfg.JWTSecret,
	})
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; staff routes are unauthenticated")
	}

	addr := ":" + cfg.Port
	go func() {
		log.WithFields(log.Fields{"addr": addr, "env": cfg.Env, "store": cfg.StoreDriver}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
	log.Info("stopped")
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, func()) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using the in-memory store; data is lost on restart")
		return memory.NewStore(), func() {}
	}
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("prepare schema")
	}
	return mysql.NewStore(db), func() { _ = db.Close() }
}
