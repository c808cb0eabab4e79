package cache

import (
	"context"
	"errors"

	"github.com/Allengabo/Yankicks-web/internal/domain"
)

type CatalogCache interface {
	Get(ctx context.Context) ([]domain.Product, error)
	Set(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// Noop never hits. Used when Redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context) ([]domain.Product, error) { return nil, ErrCacheMiss }

func (Noop) Set(context.Context, []domain.Product) error { return nil }

func (Noop) Invalidate(context.Context) error { return nil }
