package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/core"
	"ems/internal/domain/leave"
	"ems/internal/domain/payroll"
	"ems/internal/domain/performance"
	"ems/internal/domain/recruiting"
	"ems/internal/platform/config"
	"ems/internal/platform/db"
	"ems/internal/platform/metrics"
	"ems/internal/transport/http/api"
	audithandler "ems/internal/transport/http/handlers/audit"
	authhandler "ems/internal/transport/http/handlers/auth"
	departmenthandler "ems/internal/transport/http/handlers/departments"
	employeehandler "ems/internal/transport/http/handlers/employees"
	leavehandler "ems/internal/transport/http/handlers/leave"
	performancehandler "ems/internal/transport/http/handlers/performance"
	positionhandler "ems/internal/transport/http/handlers/positions"
	recruitinghandler "ems/internal/transport/http/handlers/recruiting"
	salaryhandler "ems/internal/transport/http/handlers/salary"
	"ems/internal/transport/http/middleware"
)

type App struct {
	Config    config.Config
	DB        *pgxpool.Pool
	Router    http.Handler
	Collector *metrics.Collector
}

// New wires the application without starting the listener, so tests can
// drive the router directly.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return nil, err
		}
	}

	collector := metrics.New()
	router := buildRouter(cfg, pool, collector)

	return &App{Config: cfg, DB: pool, Router: router, Collector: collector}, nil
}

func buildRouter(cfg config.Config, pool *pgxpool.Pool, collector *metrics.Collector) http.Handler {
	authStore := auth.NewStore(pool)
	authService := auth.NewService(authStore)
	coreStore := core.NewStore(pool)
	coreService := core.NewService(coreStore)
	leaveService := leave.NewService(leave.NewStore(pool))
	performanceService := performance.NewService(performance.NewStore(pool))
	payrollService := payroll.NewService(payroll.NewStore(pool))
	recruitingService := recruiting.NewService(recruiting.NewStore(pool))
	auditService := audit.New(pool)
	idemStore := middleware.NewIdempotencyStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute, nil))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
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
		authhandler.NewHandler(authService, authStore, coreService, auditService, cfg.JWTSecret).RegisterRoutes(r)
		employeehandler.NewHandler(coreService, auditService).RegisterRoutes(r)
		departmenthandler.NewHandler(coreService, auditService).RegisterRoutes(r)
		positionhandler.NewHandler(coreService, auditService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService, auditService, idemStore).RegisterRoutes(r)
		performancehandler.NewHandler(performanceService, auditService).RegisterRoutes(r)
		salaryhandler.NewHandler(payrollService, coreStore, auditService).RegisterRoutes(r)
		recruitinghandler.NewHandler(recruitingService, coreStore, auditService, idemStore).RegisterRoutes(r)
		audithandler.NewHandler(auditService).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return router
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.DB.Close()

	log.Printf("EMS server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
