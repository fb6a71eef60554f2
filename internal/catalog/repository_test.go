package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront/internal/domain"
)

func setupTestDB(t *testing.T) *Repository {
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

	_, err = db.Exec(`INSERT INTO users (email) VALUES ('user@example.com')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO brands (title) VALUES ('acme')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO rubrics (title) VALUES ('kitchen'), ('office')`)
	require.NoError(t, err)
	_, err = db.Exec(
		`INSERT INTO products (name, start_price, discount, available, quantity)
		 VALUES ('mug', 12.50, 20, TRUE, 5)`)
	require.NoError(t, err)

	return NewRepository(db)
}

func TestGet_DerivesPrice(t *testing.T) {
	repo := setupTestDB(t)

	p, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "mug", p.Name)
	assert.True(t, p.StartPrice.Equal(decimal.RequireFromString("12.50")))
	assert.Equal(t, 20, p.Discount)
	// 12.50 - 20% = 10.00
	assert.True(t, p.Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, p.Available)
	assert.Equal(t, 5, p.Quantity)
}

func TestGet_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.Get(context.Background(), 999)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestDecrementStock(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.DecrementStock(ctx, 1, 3))

	p, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity)

	// more than remains: conditional update matches no row
	err = repo.DecrementStock(ctx, 1, 3)
	assert.True(t, domain.IsKind(err, domain.KindInsufficientStock))

	p, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Quantity, "failed decrement leaves stock untouched")
}

func TestExistenceProbes(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	ok, err := repo.UserExists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.UserExists(ctx, 99)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.BrandExists(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	missing, err := repo.RubricsExist(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Empty(t, missing)

	missing, err = repo.RubricsExist(ctx, []int64{1, 9})
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, missing)
}
