// Package app wires configuration, storage, services, and HTTP routing
// into a runnable application.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"

	"covtrack/internal/api"
	"covtrack/internal/config"
	"covtrack/internal/db/repository"
	"covtrack/internal/middleware"
	"covtrack/internal/reports"
	"covtrack/internal/service/coverage"
	"covtrack/internal/service/extract"
	"covtrack/internal/service/history"
	"covtrack/internal/service/metrics"
	"covtrack/internal/service/planning"
	"covtrack/internal/service/registry"
	"covtrack/internal/service/security"
	"covtrack/internal/ui"
)

// Deps are the externally-provided handles the app builds on.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// Services holds every constructed service so callers (CLI subcommands,
// tests) can reach them without going through HTTP.
type Services struct {
	Metrics        *metrics.Service
	MetricImporter *metrics.Importer
	Coverage       *coverage.Service
	CovImporter    *coverage.Importer
	Planning       *planning.Service
	Registry       *registry.Service
	Extract        *extract.Service
	History        *history.Service
	Security       *security.Service
	Reports        *reports.Store
}

// App is the assembled application.
type App struct {
	Deps
	Services Services
	Router   chi.Router

	cron *cron.Cron
}

// NewServices builds the repository and service graph on top of the given
// database pools. It does no seeding and starts no background work, so the
// CLI can use it as well as the server.
func NewServices(cfg *config.Config, writeDB, readDB *sql.DB) (Services, error) {
	// === Repositories ===
	// Write-pool for repos that mutate, read-pool alongside for queries.
	metricRepo := repository.NewMetricRepo(writeDB, readDB)
	coverageRepo := repository.NewCoverageRepo(writeDB, readDB)
	planningRepo := repository.NewPlanningRepo(writeDB, readDB)
	engineRepo := repository.NewEngineRepo(writeDB, readDB)
	exceptionRepo := repository.NewExceptionRepo(writeDB, readDB)
	historyRepo := repository.NewHistoryRepo(writeDB, readDB)
	userRepo := repository.NewUserRepo(writeDB, readDB)

	// === Stores ===
	reportStore, err := reports.NewStore(cfg.ReportDir)
	if err != nil {
		return Services{}, fmt.Errorf("report store: %w", err)
	}

	// === Services ===
	patterns, err := extract.LoadPatterns(cfg.PatternsFile)
	if err != nil {
		return Services{}, fmt.Errorf("load extraction patterns: %w", err)
	}
	extractSvc, err := extract.NewService(patterns, engineRepo)
	if err != nil {
		return Services{}, fmt.Errorf("extract service: %w", err)
	}

	metricSvc := metrics.NewService(metricRepo, historyRepo)
	coverageSvc := coverage.NewService(coverageRepo, metricRepo, exceptionRepo, historyRepo)

	return Services{
		Metrics:        metricSvc,
		MetricImporter: metrics.NewImporter(metricSvc, reportStore),
		Coverage:       coverageSvc,
		CovImporter:    coverage.NewImporter(coverageSvc, reportStore),
		Planning:       planning.NewService(planningRepo, metricRepo, exceptionRepo, historyRepo),
		Registry:       registry.NewService(engineRepo, exceptionRepo, historyRepo),
		Extract:        extractSvc,
		History:        history.NewService(historyRepo),
		Security:       security.NewService(userRepo, historyRepo, []byte(cfg.JWTSecret), cfg.TokenTTL),
		Reports:        reportStore,
	}, nil
}

// New builds repositories, services, and the HTTP router from deps. It
// also seeds the bootstrap admin account when no admin exists yet.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	svcs, err := NewServices(cfg, deps.WriteDB, deps.ReadDB)
	if err != nil {
		return nil, err
	}

	userRepo := repository.NewUserRepo(deps.WriteDB, deps.ReadDB)
	if err := seedAdmin(ctx, logger, cfg, userRepo, svcs.Security); err != nil {
		return nil, fmt.Errorf("seed admin: %w", err)
	}

	a := &App{Deps: deps, Services: svcs}
	a.Logger = logger
	a.Router = a.buildRouter()
	a.startReportPurge()
	return a, nil
}

func (a *App) buildRouter() chi.Router {
	cfg := a.Cfg
	secret := []byte(cfg.JWTSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(a.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiHandler := api.NewHandler(api.Deps{
		Metrics:        a.Services.Metrics,
		MetricImporter: a.Services.MetricImporter,
		Coverage:       a.Services.Coverage,
		CovImporter:    a.Services.CovImporter,
		Planning:       a.Services.Planning,
		Registry:       a.Services.Registry,
		Extract:        a.Services.Extract,
		History:        a.Services.History,
		Security:       a.Services.Security,
		Reports:        a.Services.Reports,
		Logger:         a.Logger,
	})
	apiHandler.MountRoutes(r, secret)

	uiHandler := &ui.Handler{
		Metrics:        a.Services.Metrics,
		MetricImporter: a.Services.MetricImporter,
		Coverage:       a.Services.Coverage,
		CovImporter:    a.Services.CovImporter,
		Planning:       a.Services.Planning,
		Registry:       a.Services.Registry,
		Extract:        a.Services.Extract,
		History:        a.Services.History,
		Security:       a.Services.Security,
		Reports:        a.Services.Reports,
		Production:     cfg.IsProduction(),
	}
	r.Route("/ui", func(r chi.Router) {
		ui.MountRoutes(r, uiHandler, middleware.AuthWithFailure(secret, ui.RedirectToLogin))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ui", http.StatusSeeOther)
	})

	return r
}

// startReportPurge schedules a daily sweep of expired import reports.
func (a *App) startReportPurge() {
	maxAge := a.Cfg.ReportMaxAge
	logger := a.Logger.With("component", "reports")

	a.cron = cron.New()
	_, err := a.cron.AddFunc("0 3 * * *", func() {
		n, err := a.Services.Reports.Purge(maxAge)
		if err != nil {
			logger.Warn("report purge failed", "error", err)
			return
		}
		if n > 0 {
			logger.Info("purged expired reports", "count", n, "max_age", maxAge)
		}
	})
	if err != nil {
		logger.Warn("could not schedule report purge", "error", err)
		return
	}
	a.cron.Start()
}

// Close stops background work. The database pools are owned by the caller.
func (a *App) Close() {
	if a.cron != nil {
		a.cron.Stop()
	}
}
