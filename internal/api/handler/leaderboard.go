package handler

import (
	"errors"
	"strconv"

	"flagquiz/internal/models"
	"flagquiz/internal/pkg"
	"flagquiz/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupLeaderboard struct {
	container *do.Injector
}

func (gr *groupLeaderboard) GetPage(c echo.Context) error {
	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	kind := models.PeriodKind(c.Param("period"))
	if !kind.Valid() {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("unknown leaderboard period"), errorx.Validation))
	}

	scope, err := scopeFromQuery(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	periodKey, err := periodKeyFromQuery(c, kind)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit, offset := pagination(c)
	page, err := serviceLeaderboard.GetPage(c.Request().Context(), kind, periodKey, scope, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, page, nil)
}

func (gr *groupLeaderboard) GetUserRanks(c echo.Context) error {
	serviceLeaderboard, err := do.Invoke[*services.ServiceLeaderboard](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	userID, err := strconv.ParseInt(c.Param("user"), 10, 64)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid user id"), errorx.Validation))
	}

	scope, err := scopeFromQuery(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	ranks, err := serviceLeaderboard.GetUserRanks(c.Request().Context(), userID, scope)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, ranks, nil)
}

// periodKeyFromQuery reads the optional bucket selector of a period kind.
// Empty means the current bucket; the service validates the format.
func periodKeyFromQuery(c echo.Context, kind models.PeriodKind) (string, error) {
	switch kind {
	case models.PeriodDaily:
		return c.QueryParam("date"), nil
	case models.PeriodWeekly:
		return c.QueryParam("week_start"), nil
	case models.PeriodMonthly:
		month := c.QueryParam("month")
		year := c.QueryParam("year")
		if month == "" && year == "" {
			return "", nil
		}
		m, errM := strconv.Atoi(month)
		y, errY := strconv.Atoi(year)
		if errM != nil || errY != nil {
			return "", errorx.Wrap(errors.New("invalid month/year"), errorx.Validation)
		}
		return pkg.MonthKey(m, y), nil
	default:
		return "", nil
	}
}

func scopeFromQuery(c echo.Context) (models.ContinentScope, error) {
	raw := c.QueryParam("continent_id")
	if raw == "" {
		return models.GlobalScope(), nil
	}

	continentID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || continentID < 0 {
		return models.ContinentScope{}, errorx.Wrap(errors.New("invalid continent id"), errorx.Validation)
	}

	return models.ContinentScopeOf(continentID), nil
}
