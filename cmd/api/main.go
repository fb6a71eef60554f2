package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/httpapi"
	"storefront/internal/identity"
	"storefront/internal/inspect"
	"storefront/internal/keyedmutex"
	"storefront/internal/order"
	"storefront/internal/outbox"
	"storefront/internal/profile"
	"storefront/internal/session"
	"storefront/internal/usertools"
	"storefront/pkg/logging"
)

func main() {
	cfg := config.Load()
	log := logging.New(slog.LevelInfo)

	db, err := openPostgres(cfg)
	if err != nil {
		log.Error("failed to connect to postgres", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := runMigrations(db, cfg.MigrationsDir); err != nil {
		log.Error("failed to run migrations", "err", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	sessions := session.NewStore(redisClient, cfg.SessionTTL)

	catalogRepo := catalog.NewRepository(db)
	inspector := inspect.NewInspector(catalogRepo)
	locks := keyedmutex.New()

	cartStores := cart.Stores{DB: db, Sessions: sessions, CartKey: cfg.SessionCartKey}
	profileStores := profile.Stores{
		DB:         db,
		Sessions:   sessions,
		AddressKey: cfg.SessionAddressKey,
		PersonKey:  cfg.SessionPersonKey,
	}

	carts := cart.NewService(log, inspector, locks)
	profiles := profile.NewService(log, locks)
	orders := order.NewPostgresRepository(db)
	tools := usertools.NewService(log, db, inspector, locks)

	var hooks []checkout.Hook
	if cfg.CheckoutDecrementStock {
		hooks = append(hooks, checkout.StockDecrementHook(log, catalogRepo))
	}
	checkouts := checkout.NewService(log, carts, profiles, orders, hooks...)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer := outbox.NewKafkaWriter(cfg.OrderTopic, cfg.KafkaBrokers...)
	defer writer.Close()
	go outbox.NewPoller(log, orders, writer).Run(ctx)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Log:            log,
		Verifier:       &tokenVerifier{db: db},
		Sessions:       sessions,
		Limiter:        httpapi.NewSlidingWindow(cfg.RateLimit, cfg.RateLimitWindow),
		Cart:           httpapi.NewCartHandler(carts, cartStores),
		Profile:        httpapi.NewProfileHandler(profiles, profileStores),
		Order:          httpapi.NewOrderHandler(checkouts, cartStores, profileStores),
		Session:        httpapi.NewSessionHandler(sessions),
		UserTools:      httpapi.NewUserToolsHandler(tools),
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}
	log.Info("server exited")
}

func openPostgres(cfg *config.Config) (*sql.DB, error) {
	conn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.PostgresHost,
		cfg.PostgresPort,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDB)

	db, err := sql.Open("postgres", conn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return db, nil
}

func runMigrations(db *sql.DB, dir string) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", dir),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// tokenVerifier looks opaque API tokens up in the users table. Token
// issuance itself is handled by the auth service.
type tokenVerifier struct {
	db *sql.DB
}

func (v *tokenVerifier) Verify(ctx context.Context, token string) (*identity.User, error) {
	var u identity.User
	err := v.db.QueryRowContext(ctx,
		`SELECT id, email, superuser FROM users WHERE api_token = $1`, token,
	).Scan(&u.ID, &u.Email, &u.Superuser)
	if err != nil {
		return nil, fmt.Errorf("token lookup failed: %w", err)
	}
	return &u, nil
}
