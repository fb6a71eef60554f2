package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/identity"
	"storefront/internal/inspect"
	"storefront/internal/keyedmutex"
	"storefront/internal/order"
	"storefront/internal/profile"
	"storefront/internal/session"
)

type dualBackends struct {
	svc      *Service
	carts    *cart.Service
	profiles *profile.Service
	cartSt   cart.Stores
	profSt   profile.Stores
	userID   int64
	mugID    int64
	plateID  int64
}

// setupDualBackends wires the checkout stack over both real backends at
// once: postgres for the authenticated user, a redis session for the
// anonymous visitor, sharing one catalog and one order repository.
func setupDualBackends(t *testing.T) *dualBackends {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := sql.Open("postgres", fmt.Sprintf(
		"host=%s port=%d user=testuser password=testpass dbname=testdb sslmode=disable",
		host, port.Int()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	require.NoError(t, err)
	m, err := migrate.NewWithDatabaseInstance("file://../../migrations", "postgres", driver)
	require.NoError(t, err)
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("migrations failed: %s", err)
	}

	f := &dualBackends{}
	require.NoError(t, db.QueryRow(
		`INSERT INTO users (email) VALUES ('user@example.com') RETURNING id`,
	).Scan(&f.userID))
	require.NoError(t, db.QueryRow(
		`INSERT INTO products (name, start_price, discount, available, quantity)
		 VALUES ('mug', 12.50, 20, TRUE, 10) RETURNING id`,
	).Scan(&f.mugID))
	require.NoError(t, db.QueryRow(
		`INSERT INTO products (name, start_price, available, quantity)
		 VALUES ('plate', 4.00, TRUE, 5) RETURNING id`,
	).Scan(&f.plateID))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	sessions := session.NewStore(client, time.Hour)
	require.NoError(t, sessions.Create(ctx, &session.Data{ID: "s1"}))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	locks := keyedmutex.New()
	products := catalog.NewRepository(db)

	f.carts = cart.NewService(log, inspect.NewInspector(products), locks)
	f.profiles = profile.NewService(log, locks)
	f.svc = NewService(log, f.carts, f.profiles, order.NewPostgresRepository(db))
	f.cartSt = cart.Stores{DB: db, Sessions: sessions, CartKey: session.DefaultCartKey}
	f.profSt = profile.Stores{
		DB:         db,
		Sessions:   sessions,
		AddressKey: session.DefaultAddressKey,
		PersonKey:  session.DefaultPersonKey,
	}
	return f
}

func (f *dualBackends) sources(ident identity.Identity) Sources {
	return Sources{
		Cart:    f.cartSt.StoreFor(ident),
		Person:  f.profSt.PersonStoreFor(ident),
		Address: f.profSt.AddressStoreFor(ident),
	}
}

// placeOrder runs the same shopping sequence against whichever backend the
// identity resolves to and checks out.
func (f *dualBackends) placeOrder(t *testing.T, ident identity.Identity) *domain.Order {
	t.Helper()
	ctx := context.Background()
	src := f.sources(ident)

	_, err := f.carts.GetOrCreate(ctx, src.Cart)
	require.NoError(t, err)
	_, err = f.carts.GetOrCreateItem(ctx, src.Cart, f.mugID, 2)
	require.NoError(t, err)
	_, err = f.carts.GetOrCreateItem(ctx, src.Cart, f.plateID, 1)
	require.NoError(t, err)

	// absolute above stock clamps to the 10 mugs in the catalog
	fifty := 50
	item, err := f.carts.ChangeQuantity(ctx, src.Cart, f.mugID, cart.QuantityChange{Absolute: &fifty})
	require.NoError(t, err)
	require.Equal(t, 10, item.Quantity)

	_, err = f.profiles.CreatePerson(ctx, src.Person, domain.Person{Firstname: "Ann", Lastname: "Lee"})
	require.NoError(t, err)
	_, err = f.profiles.CreateAddress(ctx, src.Address, domain.Address{
		Address:     "1 Main St",
		City:        "Springfield",
		Email:       "a@example.com",
		Phonenumber: "+100200300",
	})
	require.NoError(t, err)

	o, err := f.svc.CreateOrder(ctx, ident.UserID(), src, validInput())
	require.NoError(t, err)
	return o
}

func TestCreateOrder_BackendsAgree(t *testing.T) {
	f := setupDualBackends(t)

	userOrder := f.placeOrder(t, identity.FromUser(&identity.User{ID: f.userID, Email: "user@example.com"}))
	sessionOrder := f.placeOrder(t, identity.FromSession(&session.Data{ID: "s1"}))

	require.NotNil(t, userOrder.UserID)
	assert.Equal(t, f.userID, *userOrder.UserID)
	assert.Nil(t, sessionOrder.UserID)

	// 10 mugs at 12.50 less 20% plus one plate at 4.00
	assert.True(t, userOrder.TotalCost.Equal(sessionOrder.TotalCost),
		"totals differ: %s vs %s", userOrder.TotalCost, sessionOrder.TotalCost)
	assert.Equal(t, "104", userOrder.TotalCost.String())

	require.Len(t, userOrder.OrderContent, len(sessionOrder.OrderContent))
	for i, ul := range userOrder.OrderContent {
		sl := sessionOrder.OrderContent[i]
		assert.Equal(t, ul.ProductID, sl.ProductID)
		assert.Equal(t, ul.Quantity, sl.Quantity)
		assert.True(t, ul.Price.Equal(sl.Price),
			"line %d price differs: %s vs %s", i, ul.Price, sl.Price)
	}
	assert.Equal(t, userOrder.PersonContent, sessionOrder.PersonContent)
	assert.Equal(t, userOrder.AddressContent, sessionOrder.AddressContent)
}
