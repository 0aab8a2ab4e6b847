package services

import (
	"context"

	"flagquiz/internal/datastore"
	"flagquiz/internal/models"
	"flagquiz/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceCountry struct {
	container     *do.Injector
	db            *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
}

func NewServiceCountry(container *do.Injector) (*ServiceCountry, error) {
	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceCountry{container, db, cache, readonlyCache}, nil
}

func (service *ServiceCountry) GetActiveCountries(ctx context.Context, scope models.ContinentScope) ([]models.Country, error) {
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyCountries(scope), CACHE_TTL_1_HOUR, func() ([]models.Country, error) {
		countries, err := datastore.GetActiveCountries(ctx, service.db, scope)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		return countries, nil
	})
}

// GetCountryPool reads the pool uncached for question generation; a stale
// pool could hand out a country deactivated mid-game.
func (service *ServiceCountry) GetCountryPool(ctx context.Context, scope models.ContinentScope) ([]models.Country, error) {
	countries, err := datastore.GetActiveCountries(ctx, service.db, scope)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return countries, nil
}
