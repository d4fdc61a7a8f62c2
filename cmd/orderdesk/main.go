package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/orderdesk/internal/config"
	"github.com/efreitasn/orderdesk/internal/engine"
	"github.com/efreitasn/orderdesk/internal/events"
	"github.com/efreitasn/orderdesk/internal/handler"
	"github.com/efreitasn/orderdesk/internal/service"
	"github.com/efreitasn/orderdesk/internal/session"
	"github.com/efreitasn/orderdesk/internal/store"
	"github.com/efreitasn/orderdesk/internal/store/postgres"
	"github.com/efreitasn/orderdesk/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "orderdesk"

// catalogBackend is what both store backends offer for menus.
type catalogBackend interface {
	service.MenuReader
	store.CatalogWriter
}

// stores groups the persistence backends selected by STORE_BACKEND.
type stores struct {
	catalog catalogBackend
	orders  service.OrderStore
	users   service.UserStore
	close   func()
}

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		if !checkHealth(fmt.Sprintf("http://localhost:%s/healthz", port)) {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.Error("failed to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer st.close()

	if cfg.CatalogFile != "" {
		n, err := store.SeedCatalogFile(ctx, cfg.CatalogFile, st.catalog)
		if err != nil {
			logger.Error("failed to seed catalog", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("catalog seeded", slog.String("file", cfg.CatalogFile), slog.Int("menus", n))
	}

	// Sessions: Redis when configured, otherwise process-local.
	var tokens service.TokenStore
	if cfg.RedisURL != "" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisURL, cfg.TokenTTL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer rs.Close()
		tokens = rs
	} else {
		tokens = session.NewMemoryStore(cfg.TokenTTL)
	}

	// Order events are optional.
	var notifier service.OrderNotifier
	if cfg.AMQPURL != "" {
		pub, err := events.Dial(ctx, cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pub.Close()
		notifier = pub
	}

	// Engine and services.
	pricer := engine.NewPricer(st.catalog, cfg.LookupTimeout)
	orderSvc := service.NewOrderService(pricer, st.orders, notifier, cfg.CommitTimeout, logger)
	menuSvc := service.NewMenuService(st.catalog)
	userSvc := service.NewUserService(st.users, tokens, cfg.BcryptCost, logger)

	// Router.
	router := handler.NewRouter(orderSvc, menuSvc, userSvc, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(router, serviceName),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("store_backend", cfg.StoreBackend),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("tracer shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}

// checkHealth reports whether url answers 200.
func checkHealth(url string) bool {
	resp, err := http.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*stores, error) {
	if cfg.StoreBackend != config.BackendPostgres {
		return &stores{
			catalog: store.NewCatalogStore(),
			orders:  store.NewOrderStore(),
			users:   store.NewUserStore(),
			close:   func() {},
		}, nil
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &stores{
		catalog: postgres.NewCatalogStore(db),
		orders:  postgres.NewOrderStore(db),
		users:   postgres.NewUserStore(db),
		close:   db.Close,
	}, nil
}
