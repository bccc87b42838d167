package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/availability"
	"shiftdesk/internal/domain/notifications"
	"shiftdesk/internal/domain/reports"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/domain/swap"
	"shiftdesk/internal/domain/timebank"
	"shiftdesk/internal/platform/config"
	"shiftdesk/internal/platform/crypto"
	"shiftdesk/internal/platform/db"
	"shiftdesk/internal/platform/email"
	"shiftdesk/internal/platform/events"
	"shiftdesk/internal/platform/jobs"
	"shiftdesk/internal/platform/logging"
	"shiftdesk/internal/platform/metrics"
	"shiftdesk/internal/storage/memory"
	"shiftdesk/internal/transport/http/api"
	audithandler "shiftdesk/internal/transport/http/handlers/audit"
	authhandler "shiftdesk/internal/transport/http/handlers/auth"
	availabilityhandler "shiftdesk/internal/transport/http/handlers/availability"
	jobshandler "shiftdesk/internal/transport/http/handlers/jobs"
	notificationshandler "shiftdesk/internal/transport/http/handlers/notifications"
	reportshandler "shiftdesk/internal/transport/http/handlers/reports"
	rosterhandler "shiftdesk/internal/transport/http/handlers/roster"
	staffhandler "shiftdesk/internal/transport/http/handlers/staff"
	swaphandler "shiftdesk/internal/transport/http/handlers/swap"
	timebankhandler "shiftdesk/internal/transport/http/handlers/timebank"
	"shiftdesk/internal/transport/http/middleware"
)

const eventQueueSize = 256

// App is a fully wired instance. Background workers start in New and stop in Close.
type App struct {
	Config config.Config
	Logger *zap.Logger
	DB     *pgxpool.Pool
	Router http.Handler

	Staff        *staff.Service
	Availability *availability.Service
	Roster       *roster.Service
	Swaps        *swap.Service
	TimeBank     *timebank.Service

	cancel    context.CancelFunc
	group     *errgroup.Group
	closeOnce sync.Once
}

// stores groups one implementation of every domain store.
type stores struct {
	auth          auth.StoreAPI
	staff         staff.StoreAPI
	availability  availability.StoreAPI
	roster        roster.StoreAPI
	swap          swap.StoreAPI
	timebank      timebank.StoreAPI
	notifications notifications.StoreAPI
	audit         audit.StoreAPI
	jobs          jobs.RunStore
}

func memoryStores() stores {
	mem := memory.New()
	return stores{
		auth:          mem,
		staff:         mem,
		availability:  mem,
		roster:        mem,
		swap:          mem,
		timebank:      mem,
		notifications: mem,
		audit:         mem,
		jobs:          mem,
	}
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		auth:          auth.NewStore(pool),
		staff:         staff.NewStore(pool),
		availability:  availability.NewStore(pool),
		roster:        roster.NewStore(pool),
		swap:          swap.NewStore(pool),
		timebank:      timebank.NewStore(pool),
		notifications: notifications.NewStore(pool),
		audit:         audit.NewStore(pool),
		jobs:          jobs.NewStore(pool),
	}
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	logger = logging.OrNop(logger)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}
	var st stores
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		st = memoryStores()
	default:
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.DB = pool
		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, err
			}
		}
		st = postgresStores(pool)
	}

	notes, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		app.closeDB()
		return nil, err
	}

	bus := events.NewBus(logger.Named("events"), eventQueueSize)
	authSvc := auth.NewService(st.auth, cfg.JWTSecret, cfg.TokenTTL, logger.Named("auth"))
	staffSvc := staff.NewService(st.staff, logger.Named("staff"))
	availSvc := availability.NewService(st.availability, cfg.AvailabilityHorizonDays, cfg.AvailabilityRetentionDays, loc, logger.Named("availability"))
	if notes.Configured() {
		availSvc.Notes = notes
	}
	rosterSvc := roster.NewService(st.roster, availSvc, staffSvc, bus, loc, logger.Named("roster"))
	swapSvc := swap.NewService(st.swap, rosterSvc, bus, logger.Named("swap"))
	timeSvc := timebank.NewService(st.timebank, staffSvc, bus, cfg.StandardLeaveHours, loc, logger.Named("timebank"))
	notifySvc := notifications.New(st.notifications, staffSvc, email.New(cfg, logger.Named("email")), cfg.EmailFrom, logger.Named("notifications"))
	notifySvc.Subscribe(bus)
	auditSvc := audit.New(st.audit, logger.Named("audit"))
	reportSvc := reports.NewService(rosterSvc, timeSvc, staffSvc, loc, logger.Named("reports"))
	jobSvc := jobs.New(st.jobs, logger.Named("jobs"))
	jobSvc.Every(jobs.JobAvailabilityRetention, cfg.RetentionInterval, availSvc.PruneJob)

	app.Staff, app.Availability, app.Roster, app.Swaps, app.TimeBank = staffSvc, availSvc, rosterSvc, swapSvc, timeSvc

	if cfg.RunSeed {
		if err := db.Seed(ctx, cfg, st.auth, staffSvc, rosterSvc, logger.Named("seed")); err != nil {
			app.closeDB()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	collector := metrics.New()
	collector.Register("events", bus.Stats)

	perms := auth.NewStaticPermissions()
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger.Named("http"), collector))
	router.Use(middleware.Recoverer(logger.Named("http")))
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(chimw.Timeout(cfg.RequestTimeout))
	router.Use(middleware.Auth(authSvc))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, middleware.WithLogger(logger.Named("ratelimit"))))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, middleware.WithLogger(logger.Named("ratelimit"))))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if app.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := app.DB.Ping(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authSvc, staffSvc).RegisterRoutes(r)
		staffhandler.NewHandler(staffSvc, timeSvc, perms, auditSvc).RegisterRoutes(r)
		availabilityhandler.NewHandler(availSvc, perms, auditSvc).RegisterRoutes(r)
		rosterhandler.NewHandler(rosterSvc, perms, auditSvc, availSvc.Today).RegisterRoutes(r)
		swaphandler.NewHandler(swapSvc, perms, auditSvc).RegisterRoutes(r)
		timebankhandler.NewHandler(timeSvc, perms, auditSvc).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc, perms).RegisterRoutes(r)
		reportshandler.NewHandler(reportSvc, perms, availSvc.Today).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, perms).RegisterRoutes(r)
		jobshandler.NewHandler(jobSvc, availSvc.PruneJob, perms, auditSvc).RegisterRoutes(r)
	})
	app.Router = router

	runCtx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error { return bus.Run(groupCtx) })
	group.Go(func() error { return jobSvc.Run(groupCtx) })
	app.cancel = cancel
	app.group = group

	logger.Info("app initialised",
		zap.String("store", cfg.StoreDriver),
		zap.String("timezone", loc.String()),
		zap.Int("areas", len(cfg.Areas)))
	return app, nil
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		a.Logger.Info("shiftdesk listening", zap.String("addr", a.Config.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

// Close stops the background workers, flushing queued events, and releases the pool.
func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.cancel != nil {
			a.cancel()
			if err := a.group.Wait(); err != nil {
				a.Logger.Warn("background worker stopped with error", zap.Error(err))
			}
		}
		a.closeDB()
	})
}

func (a *App) closeDB() {
	if a.DB != nil {
		a.DB.Close()
	}
}
