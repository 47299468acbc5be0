package server

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrforms/internal/domain/auth"
	"hrforms/internal/domain/profile"
	"hrforms/internal/domain/request"
	"hrforms/internal/platform/config"
	"hrforms/internal/platform/db"
	"hrforms/internal/platform/metrics"
	adminhandler "hrforms/internal/transport/http/handlers/admin"
	authhandler "hrforms/internal/transport/http/handlers/auth"
	profilehandler "hrforms/internal/transport/http/handlers/profiles"
	requesthandler "hrforms/internal/transport/http/handlers/requests"
	"hrforms/internal/transport/http/middleware"
)

// Deps are the stores the HTTP surface runs on.
type Deps struct {
	Requests request.Store
	Profiles profile.Writer
	Users    auth.UserStore
	// Ready reports whether backing services are reachable. Nil means always
	// ready.
	Ready func(ctx context.Context) error
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	configureLogging(cfg)

	ctx := context.Background()
	deps, closeFn, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("store setup failed: %v", err)
	}
	defer closeFn()

	users := auth.NewService(deps.Users)
	if err := db.Seed(ctx, users, deps.Profiles, cfg.SeedAdminUsername, cfg.SeedAdminPassword); err != nil {
		log.Fatalf("seed failed: %v", err)
	}

	router, err := NewRouter(cfg, deps)
	if err != nil {
		log.Fatalf("router setup failed: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Warn("server shutdown failed", "err", err)
		}
	}()

	slog.Info("HR forms server listening", "addr", cfg.Addr, "store", cfg.StoreDriver, "timezone", cfg.Timezone)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server failed: %v", err)
	}
}

func configureLogging(cfg config.Config) {
	level := slog.LevelInfo
	if cfg.Environment == "development" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}

func openStores(ctx context.Context, cfg config.Config) (Deps, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		slog.Warn("using in-memory stores; data is lost on restart")
		return Deps{
			Requests: request.NewMemoryStore(),
			Profiles: profile.NewMemoryStore(),
			Users:    auth.NewMemoryStore(),
		}, func() {}, nil
	}

	if cfg.RunMigrations {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return Deps{}, nil, err
		}
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return Deps{}, nil, err
	}
	return Deps{
		Requests: request.NewPGStore(pool),
		Profiles: profile.NewStore(pool),
		Users:    auth.NewStore(pool),
		Ready:    pingFunc(pool),
	}, pool.Close, nil
}

func pingFunc(pool *pgxpool.Pool) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

// NewRouter builds the full HTTP surface on deps.
func NewRouter(cfg config.Config, deps Deps) (http.Handler, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	service := request.NewService(deps.Requests, deps.Profiles, loc)
	service.Window = cfg.MutabilityWindow
	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, nil))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		users := auth.NewService(deps.Users)
		authHandler := authhandler.NewHandler(users, cfg.JWTSecret, cfg.TokenTTL)
		r.Post("/auth/login", authHandler.HandleLogin)

		profilehandler.NewHandler(deps.Profiles, users).RegisterRoutes(r)

		requesthandler.NewHandler(service, deps.Profiles, collector).RegisterRoutes(r)
		adminhandler.NewHandler(service, collector).RegisterRoutes(r)
	})

	return router, nil
}
