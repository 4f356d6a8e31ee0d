// Command server wires the scanledger HTTP service: stores, services, session
// registry, and the operator-facing router. Business logic lives in the
// internal packages; this file only assembles them.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"scanledger/internal/directory"
	directoryHandler "scanledger/internal/directory/handler"
	dirStore "scanledger/internal/directory/store"
	"scanledger/internal/ledger"
	ledgerHandler "scanledger/internal/ledger/handler"
	ledgerMetrics "scanledger/internal/ledger/metrics"
	ledgerStore "scanledger/internal/ledger/store"
	"scanledger/internal/platform/config"
	"scanledger/internal/platform/httpserver"
	"scanledger/internal/platform/logger"
	platformredis "scanledger/internal/platform/redis"
	"scanledger/internal/scan"
	"scanledger/internal/scan/debounce"
	scanHandler "scanledger/internal/scan/handler"
	scanMetrics "scanledger/internal/scan/metrics"
	"scanledger/internal/token"
	tokenHandler "scanledger/internal/token/handler"
	tokenMetrics "scanledger/internal/token/metrics"
	tokenStore "scanledger/internal/token/store"
	"scanledger/pkg/platform/audit/publisher"
	auditPostgres "scanledger/pkg/platform/audit/store/postgres"
	"scanledger/pkg/platform/middleware/auth"
	"scanledger/pkg/platform/middleware/requestid"
	"scanledger/pkg/platform/middleware/requesttime"
)

func main() {
	log := logger.New()

	cfg, err := config.Load(".")
	if err != nil {
		log.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Two drivers against the same database: database/sql for the row-shaped
	// stores, a pgx pool for the ledger's append path.
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("database open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("pgx pool failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	auditor := publisher.NewPublisher(auditPostgres.New(db),
		publisher.WithLogger(log),
		publisher.WithAsyncBuffer(256),
	)
	defer auditor.Close()

	directorySvc := directory.NewService(
		dirStore.NewPostgresDonorStore(db),
		dirStore.NewPostgresGroupStore(db),
	)
	ledgerSvc := ledger.NewService(ledgerStore.NewPostgres(pool), directorySvc,
		ledger.WithAudit(auditor),
		ledger.WithMetrics(ledgerMetrics.New()),
		ledger.WithLogger(log),
	)
	tokenSvc := token.NewService(tokenStore.NewPostgres(db), directorySvc, ledgerSvc, cfg.RedeemBaseURL,
		token.WithAudit(auditor),
		token.WithMetrics(tokenMetrics.New()),
		token.WithLogger(log),
	)

	newGuard := func() debounce.Guard { return debounce.NewMemory(cfg.DebounceWindow()) }
	if redisClient != nil {
		shared := debounce.NewRedis(redisClient.Client, cfg.DebounceWindow())
		newGuard = func() debounce.Guard { return shared }
	}
	sessionMetrics := scanMetrics.New()
	factory := scan.NewFactory(tokenSvc, ledgerSvc,
		scan.FactoryWithGuard(newGuard),
		scan.FactoryWithMetrics(sessionMetrics),
		scan.FactoryWithLogger(log),
	)
	registry := scan.NewRegistry(scan.RegistryWithMetrics(sessionMetrics))

	validator := auth.NewValidator(cfg.OperatorSigningKey)

	router := chi.NewRouter()
	router.Use(chimiddleware.Recoverer)
	router.Use(requestid.Middleware)
	router.Use(requesttime.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(auth.RequireOperator(validator, log))
		tokenHandler.New(tokenSvc, log).Register(r)
		ledgerHandler.New(ledgerSvc, log).Register(r)
		scanHandler.New(factory, registry, log).Register(r)
		directoryHandler.New(directorySvc, log).Register(r)
	})

	srv := httpserver.New(cfg.ServerAddr, router)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", "addr", cfg.ServerAddr)
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

	if err := group.Wait(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
