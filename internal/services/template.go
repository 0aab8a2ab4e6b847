package services

import (
	"context"
	"database/sql"
	"errors"

	"flagquiz/internal/datastore"
	"flagquiz/internal/models"
	"flagquiz/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

type ServiceTemplate struct {
	container     *do.Injector
	db            *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
}

func NewServiceTemplate(container *do.Injector) (*ServiceTemplate, error) {
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

	return &ServiceTemplate{container, db, cache, readonlyCache}, nil
}

func (service *ServiceTemplate) GetActiveTemplates(ctx context.Context) ([]models.GameTemplate, error) {
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyTemplates(), CACHE_TTL_15_MINS, func() ([]models.GameTemplate, error) {
		templates, err := datastore.GetActiveTemplates(ctx, service.db)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		return templates, nil
	})
}

// ResolveGameConfig turns a create-game request into a full configuration.
// The template supplies the baseline when one is referenced, defaults
// otherwise, and each custom option overrides its field individually.
func (service *ServiceTemplate) ResolveGameConfig(ctx context.Context, req *models.CreateGameRequest) (*models.GameConfig, error) {
	var template *models.GameTemplate
	if req.TemplateID != nil {
		t, err := datastore.GetActiveTemplate(ctx, service.db, *req.TemplateID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("template not found"), errorx.NotExist)
		}
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		template = t
	}

	config := resolveGameConfig(template, req.CustomOptions)
	if !config.Difficulty.Valid() {
		return nil, errorx.Wrap(errors.New("invalid difficulty"), errorx.Validation)
	}
	if config.NumberOfFlags <= 0 || config.TimePerFlag <= 0 {
		return nil, errorx.Wrap(errors.New("number_of_flags and time_per_flag must be positive"), errorx.Validation)
	}

	return config, nil
}

func resolveGameConfig(template *models.GameTemplate, opts *models.CustomOptions) *models.GameConfig {
	config := &models.GameConfig{
		NumberOfFlags: DEFAULT_NUMBER_OF_FLAGS,
		TimePerFlag:   DEFAULT_TIME_PER_FLAG,
		Difficulty:    DefaultDifficulty,
		ContinentID:   nil,
	}

	if template != nil {
		config.NumberOfFlags = template.NumberOfFlags
		config.TimePerFlag = template.TimePerFlag
		config.Difficulty = template.Difficulty
		config.ContinentID = template.ContinentID
	}

	if opts != nil {
		if opts.NumberOfFlags != nil {
			config.NumberOfFlags = *opts.NumberOfFlags
		}
		if opts.TimePerFlag != nil {
			config.TimePerFlag = *opts.TimePerFlag
		}
		if opts.Difficulty != nil {
			config.Difficulty = *opts.Difficulty
		}
		if opts.ContinentID != nil {
			config.ContinentID = opts.ContinentID
		}
	}

	return config
}
