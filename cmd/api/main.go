package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"callboard/internal/appointments"
	"callboard/internal/audit"
	"callboard/internal/auth"
	"callboard/internal/calls"
	"callboard/internal/config"
	"callboard/internal/contacts"
	"callboard/internal/detail"
	"callboard/internal/httpapi"
	"callboard/internal/lifecycle"
	"callboard/internal/listview"
	"callboard/internal/reporting"
	"callboard/internal/store"
	"callboard/internal/store/postgres"
	"callboard/internal/timewindow"
	"callboard/pkg/logger"
	"callboard/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	loc, err := time.LoadLocation(cfg.Board.BusinessTimezone)
	if err != nil {
		log.Error("business timezone invalid", "zone", cfg.Board.BusinessTimezone, "err", err)
		os.Exit(1)
	}
	resolver := timewindow.NewResolver(loc, time.Now)

	records := postgres.New(db)

	// One controller per board view. The contacts view also carries the
	// engagement-status filter, woven into its query.
	contactFilter := httpapi.NewContactFilter()

	callsCtrl := listview.New(resolver, func(ctx context.Context, w timewindow.Window) ([]calls.Call, error) {
		return records.ListCalls(ctx, store.CallQuery{Window: &w})
	}, log.With("view", "calls"))
	contactsCtrl := listview.New(resolver, func(ctx context.Context, w timewindow.Window) ([]contacts.Contact, error) {
		return records.ListContacts(ctx, store.ContactQuery{Window: &w, Status: contactFilter.Get()})
	}, log.With("view", "contacts"))
	apptsCtrl := listview.New(resolver, func(ctx context.Context, w timewindow.Window) ([]appointments.Appointment, error) {
		return records.ListAppointments(ctx, store.AppointmentQuery{Window: &w, EarliestFirst: true})
	}, log.With("view", "appointments"))

	// Keep the calls board fresh without user interaction.
	callsCtrl.StartAutoRefresh(rootCtx, cfg.Board.RefreshInterval)
	defer callsCtrl.Close()

	h := httpapi.Handlers{
		Calls:         callsCtrl,
		Contacts:      contactsCtrl,
		Appointments:  apptsCtrl,
		ContactFilter: contactFilter,
		Lifecycle:     lifecycle.New(records, log, callsCtrl, contactsCtrl, apptsCtrl),
		Detail:        detail.NewAggregator(records),
		Store:         records,
		Summary:       reporting.NewService(records, resolver),
		Audit:         audit.NewService(audit.NewMemoryRepo()),
		Expansion:     detail.NewExpansion(),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, routeDeps{
		authMW:    auth.RequireAccessToken(verifier),
		rateLimit: httpapi.RateLimit(rdb, httpapi.RateLimitConfig{}),
		healthy: func(ctx context.Context) error {
			return utils.HealthCheck(ctx, db, 2*time.Second)
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
