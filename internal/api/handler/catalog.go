package handler

import (
	"flagquiz/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupCatalog struct {
	container *do.Injector
}

func (gr *groupCatalog) GetCountries(c echo.Context) error {
	serviceCountry, err := do.Invoke[*services.ServiceCountry](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	scope, err := scopeFromQuery(c)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	countries, err := serviceCountry.GetActiveCountries(c.Request().Context(), scope)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, countries, nil)
}

func (gr *groupCatalog) GetTemplates(c echo.Context) error {
	serviceTemplate, err := do.Invoke[*services.ServiceTemplate](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	templates, err := serviceTemplate.GetActiveTemplates(c.Request().Context())
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, templates, nil)
}
