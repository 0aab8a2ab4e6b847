package handler

import (
	"context"
	"errors"
	"strings"

	"flagquiz/internal/interfaces"
	"flagquiz/internal/models"
	"flagquiz/internal/pkg/limiter"
	"flagquiz/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type ctxKey string

var ctxKeyAuthUser ctxKey = "AUTH_USER"

// Authn attaches the verified user to the request context. It does NOT
// terminate unauthenticated requests; handlers that need a user resolve it
// and fail there.
func Authn(verifier interface {
	Validate(token string) (*models.AuthUser, error)
},
) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return next(c)
			}

			parts := strings.Split(header, "Bearer")
			if len(parts) != 2 {
				return next(c)
			}

			token := strings.TrimSpace(parts[1])
			if len(token) == 0 {
				return next(c)
			}

			user, err := verifier.Validate(token)
			if err != nil {
				// although it's a client error, we don't want to leak details
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(errors.New("invalid access token"), errorx.Authn), -1)
				return nil
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, ctxKeyAuthUser, user)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func ResolveAuthUser(ctx context.Context) (*models.AuthUser, error) {
	user, ok := ctx.Value(ctxKeyAuthUser).(*models.AuthUser)
	if !ok {
		return nil, errorx.Wrap(errors.New("missing session"), errorx.Authn)
	}

	return user, nil
}

// ResolveVerifiedUser is ResolveAuthUser plus the verified-email check that
// game mutations require.
func ResolveVerifiedUser(ctx context.Context) (*models.AuthUser, error) {
	user, err := ResolveAuthUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.EmailVerified {
		return nil, errorx.Wrap(errors.New("email not verified"), errorx.Authn)
	}

	return user, nil
}

// middlewareRateLimitGame caps game mutations per user per minute. Requests
// without a user fall through; the handler rejects those anyway.
func middlewareRateLimitGame(container *do.Injector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			user, ok := ctx.Value(ctxKeyAuthUser).(*models.AuthUser)
			if !ok {
				return next(c)
			}

			l, err := do.Invoke[interfaces.Limiter](container)
			if err != nil {
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			err = l.Allow(ctx, services.LimitKeyUserGame(user.ID), redis_rate.PerMinute(services.GAME_RATE_LIMIT_PER_MINUTE))
			if errors.Is(err, limiter.ErrRateLimited) {
				//nolint:errcheck
				httpx.Abort(c, errorx.Wrap(err, errorx.RateLimiting), -1)
				return nil
			}
			if err != nil {
				return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
			}

			return next(c)
		}
	}
}
