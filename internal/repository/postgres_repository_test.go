package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping PostgreSQL container test in short mode")
	}
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

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "./migrations",
	}

	repo, err := NewRepository(creds)
	require.NoError(t, err)

	err = repo.RunMigrations(creds)
	require.NoError(t, err)

	cleanup := func() {
		repo.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func createTestUser(t *testing.T, repo *Repository, email string) int64 {
	id, err := repo.CreateUser(context.Background(), &domain.User{Name: "Ana", Email: email, Password: "secret"})
	require.NoError(t, err)
	return id
}

func newTestOrder(userID int64) *domain.Order {
	return &domain.Order{
		UserID:        userID,
		TotalAmount:   decimal.RequireFromString("19290.00"),
		PaymentMethod: "Credit Card",
		Items: []domain.OrderItem{
			{ProductName: "Nike Air Max 270", Price: decimal.RequireFromString("7895.00"), Quantity: 2},
			{ProductName: "Converse Chuck Taylor", Price: decimal.RequireFromString("3500.00"), Quantity: 1},
		},
	}
}

func countRows(t *testing.T, repo *Repository, table string) int {
	var n int
	require.NoError(t, repo.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestListProducts_Seeded(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	products, err := repo.ListProducts(context.Background())
	require.NoError(t, err)

	require.Len(t, products, 6)
	assert.Equal(t, "Nike Air Max 270", products[0].Name)
	assert.True(t, decimal.RequireFromString("7895").Equal(products[0].Price))
	require.NotNil(t, products[0].Rating)
	assert.Nil(t, products[3].Rating)
	assert.Empty(t, products[5].Image)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	createTestUser(t, repo, "ana@example.com")

	_, err := repo.CreateUser(ctx, &domain.User{Name: "Other", Email: "ana@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	u, err := repo.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateOrder_WritesHeaderItemsAndEvent(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := createTestUser(t, repo, "ana@example.com")
	order := newTestOrder(userID)

	id, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, order.ID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	orders, err := repo.ListOrdersByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, order.TotalAmount.Equal(orders[0].TotalAmount))
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, "Nike Air Max 270", orders[0].Items[0].ProductName)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeOrderPlaced, events[0].EventType)
	assert.Equal(t, fmt.Sprint(id), events[0].AggregateID)
	assert.JSONEq(t,
		fmt.Sprintf(`{"order_id":%d,"user_id":%d,"total_amount":"19290","payment_method":"Credit Card","item_count":2}`, id, userID),
		string(events[0].Payload))
}

func TestCreateOrder_FailedItemRollsBackEverything(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := createTestUser(t, repo, "ana@example.com")
	order := newTestOrder(userID)
	order.Items[1].Quantity = 0 // violates the quantity check

	_, err := repo.CreateOrder(ctx, order)
	assert.ErrorIs(t, err, ErrOrderItemsFailed)

	assert.Equal(t, 0, countRows(t, repo, "orders"))
	assert.Equal(t, 0, countRows(t, repo, "order_items"))
	assert.Equal(t, 0, countRows(t, repo, "outbox_events"))
}

func TestCreateOrder_UnknownUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.CreateOrder(context.Background(), newTestOrder(9999))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListOrdersByUserID_NewestFirstAndScopedToUser(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	ana := createTestUser(t, repo, "ana@example.com")
	ben := createTestUser(t, repo, "ben@example.com")

	first, err := repo.CreateOrder(ctx, newTestOrder(ana))
	require.NoError(t, err)
	_, err = repo.CreateOrder(ctx, newTestOrder(ben))
	require.NoError(t, err)
	second, err := repo.CreateOrder(ctx, newTestOrder(ana))
	require.NoError(t, err)

	orders, err := repo.ListOrdersByUserID(ctx, ana)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second, orders[0].ID)
	assert.Equal(t, first, orders[1].ID)
	for _, o := range orders {
		assert.Equal(t, ana, o.UserID)
		assert.Len(t, o.Items, 2)
	}

	none, err := repo.ListOrdersByUserID(ctx, 424242)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMarkEventAsProcessed(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	userID := createTestUser(t, repo, "ana@example.com")
	_, err := repo.CreateOrder(ctx, newTestOrder(userID))
	require.NoError(t, err)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	events, err = repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
