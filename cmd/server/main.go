package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-booking-wizard/internal/availability"
	"github.com/iliyamo/event-booking-wizard/internal/clock"
	"github.com/iliyamo/event-booking-wizard/internal/config"
	"github.com/iliyamo/event-booking-wizard/internal/database"
	"github.com/iliyamo/event-booking-wizard/internal/handler"
	"github.com/iliyamo/event-booking-wizard/internal/middleware"
	"github.com/iliyamo/event-booking-wizard/internal/payment"
	"github.com/iliyamo/event-booking-wizard/internal/queue"
	"github.com/iliyamo/event-booking-wizard/internal/repository"
	"github.com/iliyamo/event-booking-wizard/internal/router"
	"github.com/iliyamo/event-booking-wizard/internal/service"
	"github.com/iliyamo/event-booking-wizard/internal/session"
)

func main() {
	cfg := config.Load() // Load environment config
	log.SetLevel(config.ParseLogLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	clk := clock.NewSystem()

	// Redis is optional: without it sessions live in memory and the cache
	// and limiter pass requests through.
	rdb := config.NewRedisClient(ctx)
	var store session.Store
	if rdb != nil {
		defer rdb.Close()
		store = session.NewRedisStore(rdb)
	} else {
		log.Warn("redis unavailable; using in-memory sessions")
		store = session.NewMemoryStore(clk)
	}

	events := repository.NewEventRepo(db)
	bookings := repository.NewVendorBookingRepo(db)
	var source availability.Source = bookings
	if cfg.AvailabilityURL != "" {
		hs, err := availability.NewHTTPSource(cfg.AvailabilityURL, &http.Client{Timeout: 5 * time.Second})
		if err != nil {
			log.Fatalf("availability: %v", err)
		}
		source = hs
	}
	gateway := payment.NewLedgerGateway(repository.NewPaymentIntentRepo(db), clk)
	publisher := queue.NewPublisher(cfg.AMQPURL)

	wizards := service.NewBookingService(service.BookingDeps{
		Events:    events,
		Seats:     repository.NewSeatRepo(db),
		Loyalty:   repository.NewLoyaltyRepo(db),
		Purchases: repository.NewPurchaseRepo(db),
		Gateway:   gateway,
		Publisher: publisher,
		Store:     store,
		Clock:     clk,
		TTL:       cfg.SessionTTL,
		LockTTL:   cfg.SubmitLockTTL,
	})
	dialogs := service.NewRescheduleService(service.RescheduleDeps{
		Bookings:     bookings,
		Availability: source,
		Gateway:      gateway,
		Publisher:    publisher,
		Store:        store,
		Clock:        clk,
		TTL:          cfg.SessionTTL,
		LockTTL:      cfg.SubmitLockTTL,
	})

	if cfg.ConsumerEnabled {
		go func() {
			if err := queue.NewConsumer(cfg.AMQPURL, "logs").Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("booking-consumer: %v", err)
			}
		}()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Logger.SetLevel(config.ParseLogLevel(cfg.LogLevel))
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, handler.NewHealthHandler(db))
	router.RegisterPublic(e, handler.NewCatalogHandler(events, source), cache, limit)
	router.RegisterWizard(e, handler.NewWizardHandler(wizards), cfg.JWTSecret, limit)
	router.RegisterReschedule(e, handler.NewRescheduleHandler(dialogs), cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	log.Infof("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
