package handler

import (
	"net/http"

	"flagquiz/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "🌍")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated requests.

		ca := groupCatalog{cfg.Container}
		routesAPIv1.GET("/countries", ca.GetCountries)
		routesAPIv1.GET("/templates", ca.GetTemplates)

		l := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard/ranks/:user", l.GetUserRanks)
		routesAPIv1.GET("/leaderboard/:period", l.GetPage)

		u := groupUser{cfg.Container}
		routesAPIv1.GET("/user/statistics", u.GetStatistics)

		routesAPIv1Games := routesAPIv1.Group("/games")
		{
			routesAPIv1Games.Use(middlewareRateLimitGame(cfg.Container))
			g := groupGame{cfg.Container}

			routesAPIv1Games.POST("", g.Create)
			routesAPIv1Games.GET("", g.List)
			routesAPIv1Games.GET("/:game", g.Show)
			routesAPIv1Games.GET("/:game/questions/next", g.NextQuestion)
			routesAPIv1Games.GET("/:game/questions/:number", g.ShowQuestion)
			routesAPIv1Games.POST("/:game/questions/:question/answer", g.Answer)
			routesAPIv1Games.POST("/:game/complete", g.Complete)
			routesAPIv1Games.POST("/:game/abandon", g.Abandon)
		}
	}

	return r, nil
}
