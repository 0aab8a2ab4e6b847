package handler

import (
	"errors"
	"net/http"
	"strconv"

	"flagquiz/internal/models"
	"flagquiz/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupGame struct {
	container *do.Injector
}

func (gr *groupGame) Create(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveVerifiedUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var req models.CreateGameRequest
	if err := c.Bind(&req); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	detail, err := serviceGame.CreateGame(ctx, user, &req)
	var inProgress *services.GameInProgressError
	if errors.As(err, &inProgress) {
		return c.JSON(http.StatusBadRequest, map[string]any{
			"error":       inProgress.Error(),
			"active_game": inProgress.Game,
		})
	}
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, detail, nil)
}

func (gr *groupGame) List(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveAuthUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	limit, offset := pagination(c)
	page, err := serviceGame.ListUserGames(ctx, user.ID, limit, offset)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, page, nil)
}

func (gr *groupGame) Show(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveAuthUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	detail, err := serviceGame.GetGame(ctx, user.ID, c.Param("game"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, detail, nil)
}

func (gr *groupGame) ShowQuestion(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveAuthUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	questionNumber, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(errors.New("invalid question number"), errorx.Validation))
	}

	question, err := serviceGame.GetQuestion(ctx, user.ID, c.Param("game"), questionNumber)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, question, nil)
}

func (gr *groupGame) NextQuestion(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveAuthUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	next, err := serviceGame.GetNextUnansweredQuestion(ctx, user.ID, c.Param("game"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, next, nil)
}

func (gr *groupGame) Answer(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveVerifiedUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var submission models.AnswerSubmission
	if err := c.Bind(&submission); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Validation))
	}

	result, err := serviceGame.SubmitAnswer(ctx, user.ID, c.Param("question"), c.Param("game"), &submission)
	var answered *services.AlreadyAnsweredError
	if errors.As(err, &answered) {
		return httpx.RestAbort(c, nil, errorx.Wrap(answered, errorx.Invalid))
	}
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, result, nil)
}

func (gr *groupGame) Complete(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveVerifiedUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	game, err := serviceGame.CompleteGame(ctx, user.ID, c.Param("game"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, game, nil)
}

func (gr *groupGame) Abandon(c echo.Context) error {
	serviceGame, err := do.Invoke[*services.ServiceGame](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	ctx := c.Request().Context()
	user, err := ResolveAuthUser(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	game, err := serviceGame.AbandonGame(ctx, user.ID, c.Param("game"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, game, nil)
}

func pagination(c echo.Context) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = services.LEADERBOARD_DEFAULT_LIMIT
	}
	if limit > services.LEADERBOARD_MAX_LIMIT {
		limit = services.LEADERBOARD_MAX_LIMIT
	}

	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	return limit, offset
}
