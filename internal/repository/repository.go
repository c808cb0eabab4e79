package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/domain"
)

var (
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrOrderItemsFailed = errors.New("order items could not be written")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// OutboxEvent is a domain event waiting to be published.
type OutboxEvent struct {
	ID          int64
	EventID     string
	AggregateID string
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
}

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

type OrderRepository interface {
	// CreateOrder writes the header, every item and an OrderPlaced outbox
	// event in one transaction and returns the new order id.
	CreateOrder(ctx context.Context, order *domain.Order) (int64, error)
	ListOrdersByUserID(ctx context.Context, userID int64) ([]domain.Order, error)
}

type OutboxRepository interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkEventAsProcessed(ctx context.Context, id int64) error
}

type Store interface {
	ProductRepository
	UserRepository
	OrderRepository
	OutboxRepository
	Ping(ctx context.Context) error
	RunMigrations(*Credentials) error
	Close() error
}
