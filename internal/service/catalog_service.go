package service

import (
	"context"
	"errors"

	"github.com/Allengabo/Yankicks-web/internal/cache"
	"github.com/Allengabo/Yankicks-web/internal/domain"
	"github.com/Allengabo/Yankicks-web/internal/repository"
	"github.com/Allengabo/Yankicks-web/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type CatalogService struct {
	repo  repository.ProductRepository
	cache cache.CatalogCache
	sfg   singleflight.Group
}

func NewCatalogService(repo repository.ProductRepository, c cache.CatalogCache) *CatalogService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CatalogService{repo: repo, cache: c}
}

// ListProducts returns the whole catalog. Cache failures are logged and
// the store is read instead.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		products, err := s.cache.Get(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.FromContext(ctx).Warn("catalog cache get failed", zap.Error(err))
		}

		products, err = s.repo.ListProducts(ctx)
		if err != nil {
			return nil, domain.NewConnectivity("could not load products", err)
		}
		if products == nil {
			products = []domain.Product{}
		}

		go func() {
			if errSet := s.cache.Set(context.WithoutCancel(ctx), products); errSet != nil {
				logger.FromContext(ctx).Warn("catalog cache set failed", zap.Error(errSet))
			}
		}()
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}
