package order

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
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront/internal/domain"
)

func setupTestDB(t *testing.T) *PostgresRepository {
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

	return NewPostgresRepository(db)
}

func newTestOrder() *domain.Order {
	return &domain.Order{
		ID:          uuid.New(),
		Phonenumber: "+100200300",
		TotalCost:   decimal.RequireFromString("23.01"),
		OrderContent: []domain.OrderLine{
			{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("9.995")},
			{ProductID: 2, Quantity: 1, Price: decimal.RequireFromString("3.005")},
		},
		PersonContent: domain.PersonSnapshot{Firstname: "Ann", Lastname: "Lee"},
		AddressContent: domain.AddressSnapshot{
			Address:     "1 Main St",
			City:        "Springfield",
			Email:       "a@example.com",
			Phonenumber: "+100200300",
		},
		TimePlaced:        time.Now().UTC(),
		MoveTo:            domain.MoveToCustomerAddress,
		PaymentConditions: domain.PaymentCashOnDelivery,
		Status:            domain.OrderStatusOrdered,
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	o := newTestOrder()
	require.NoError(t, repo.Create(ctx, o))

	fetched, err := repo.GetOneComplex(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, fetched.ID)
	assert.Nil(t, fetched.UserID)
	assert.True(t, fetched.TotalCost.Equal(o.TotalCost))
	require.Len(t, fetched.OrderContent, 2)
	assert.Equal(t, int64(1), fetched.OrderContent[0].ProductID)
	assert.Equal(t, 2, fetched.OrderContent[0].Quantity)
	assert.Equal(t, "Ann", fetched.PersonContent.Firstname)
	assert.Equal(t, "Springfield", fetched.AddressContent.City)
	assert.Equal(t, domain.OrderStatusOrdered, fetched.Status)
	assert.Nil(t, fetched.TimeDelivered)
}

func TestCreate_DuplicateID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	o := newTestOrder()
	require.NoError(t, repo.Create(ctx, o))

	err := repo.Create(ctx, o)
	assert.True(t, domain.IsKind(err, domain.KindAlreadyExists))
}

func TestGetOne_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetOne(context.Background(), uuid.New())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestGetOne_SummaryOmitsContent(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	o := newTestOrder()
	require.NoError(t, repo.Create(ctx, o))

	fetched, err := repo.GetOne(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, fetched.OrderContent)
	assert.True(t, fetched.TotalCost.Equal(o.TotalCost))
}

func TestList_StatusFilterAndOrdering(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first := newTestOrder()
	first.TimePlaced = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, first))

	second := newTestOrder()
	require.NoError(t, repo.Create(ctx, second))

	orders, err := repo.List(ctx, Filter{}, 0, 0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second.ID, orders[0].ID, "newest first")

	_, err = repo.UpdateStatus(ctx, first.ID, domain.OrderStatusCancelled)
	require.NoError(t, err)

	cancelled := domain.OrderStatusCancelled
	orders, err = repo.List(ctx, Filter{Status: &cancelled}, 0, 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)
}

func TestUpdateStatus_DeliveredSetsTimestamp(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	o := newTestOrder()
	require.NoError(t, repo.Create(ctx, o))

	updated, err := repo.UpdateStatus(ctx, o.ID, domain.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, updated.Status)
	require.NotNil(t, updated.TimeDelivered)

	// terminal orders reject further edits
	_, err = repo.UpdateStatus(ctx, o.ID, domain.OrderStatusCancelled)
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.UpdateStatus(context.Background(), uuid.New(), "shipped")
	assert.True(t, domain.IsKind(err, domain.KindValidationFailed))
}

func TestOutboxSource(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	o := newTestOrder()
	require.NoError(t, repo.Create(ctx, o))

	events, err := repo.UnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventOrderPlaced, events[0].EventType)
	assert.Contains(t, string(events[0].Payload), o.ID.String())

	require.NoError(t, repo.MarkEventProcessed(ctx, events[0].ID))

	events, err = repo.UnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
