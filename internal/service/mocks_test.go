package service

import (
	"context"
	"sync"

	"github.com/Allengabo/Yankicks-web/internal/cache"
	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/repository"
)

type mockProductRepo struct {
	m        sync.RWMutex
	products []domain.Product
	err      error
	calls    int
	// gate blocks ListProducts until closed, when set
	gate chan struct{}
}

func (r *mockProductRepo) ListProducts(context.Context) ([]domain.Product, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.m.Lock()
	defer r.m.Unlock()
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.products, nil
}

func (r *mockProductRepo) callCount() int {
	r.m.RLock()
	defer r.m.RUnlock()
	return r.calls
}

type mockCache struct {
	m        sync.RWMutex
	products []domain.Product
	getErr   error
	sets     int
	setDone  chan struct{}
}

func (c *mockCache) Get(context.Context) ([]domain.Product, error) {
	c.m.RLock()
	defer c.m.RUnlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.products == nil {
		return nil, cache.ErrCacheMiss
	}
	return c.products, nil
}

func (c *mockCache) Set(_ context.Context, products []domain.Product) error {
	c.m.Lock()
	c.products = products
	c.sets++
	done := c.setDone
	c.m.Unlock()
	if done != nil {
		done <- struct{}{}
	}
	return nil
}

func (c *mockCache) Invalidate(context.Context) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.products = nil
	return nil
}

type mockUserRepo struct {
	m      sync.RWMutex
	users  map[string]*domain.User
	nextID int64
	err    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (r *mockUserRepo) CreateUser(_ context.Context, user *domain.User) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	if _, ok := r.users[user.Email]; ok {
		return 0, repository.ErrDuplicateEmail
	}
	r.nextID++
	u := *user
	u.ID = r.nextID
	r.users[user.Email] = &u
	return u.ID, nil
}

func (r *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

type mockOrderRepo struct {
	m       sync.RWMutex
	created []*domain.Order
	byUser  map[int64][]domain.Order
	err     error
	listErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{byUser: make(map[int64][]domain.Order)}
}

func (r *mockOrderRepo) CreateOrder(_ context.Context, order *domain.Order) (int64, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.created = append(r.created, order)
	order.ID = int64(len(r.created))
	order.Status = domain.OrderStatusPending
	r.byUser[order.UserID] = append([]domain.Order{*order}, r.byUser[order.UserID]...)
	return order.ID, nil
}

func (r *mockOrderRepo) ListOrdersByUserID(_ context.Context, userID int64) ([]domain.Order, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.byUser[userID], nil
}

func (r *mockOrderRepo) createCount() int {
	r.m.RLock()
	defer r.m.RUnlock()
	return len(r.created)
}
