package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"flagquiz/internal/datastore"
	"flagquiz/internal/models"
	"flagquiz/internal/pkg"
	"flagquiz/internal/pkg/caching"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type ServiceGame struct {
	container     *do.Injector
	rs            *redsync.Redsync
	db            *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache

	serviceCountry     *ServiceCountry
	serviceTemplate    *ServiceTemplate
	serviceLeaderboard *ServiceLeaderboard
}

func NewServiceGame(container *do.Injector) (*ServiceGame, error) {
	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

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

	serviceCountry, err := do.Invoke[*ServiceCountry](container)
	if err != nil {
		return nil, err
	}

	serviceTemplate, err := do.Invoke[*ServiceTemplate](container)
	if err != nil {
		return nil, err
	}

	serviceLeaderboard, err := do.Invoke[*ServiceLeaderboard](container)
	if err != nil {
		return nil, err
	}

	return &ServiceGame{container, rs, db, cache, readonlyCache, serviceCountry, serviceTemplate, serviceLeaderboard}, nil
}

// CreateGame resolves the requested configuration, draws a question set and
// opens a new in-progress game. A user holds at most one in-progress game;
// the partial unique index on game backs up the in-transaction check, so a
// racing duplicate surfaces as an integrity violation rather than a second
// active game.
func (service *ServiceGame) CreateGame(ctx context.Context, user *models.AuthUser, req *models.CreateGameRequest) (*models.GameDetail, error) {
	mutex := service.rs.NewMutex(LockKeyUserGame(user.ID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrUserGameLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	active, err := datastore.GetActiveGame(ctx, service.db, user.ID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if active != nil {
		return nil, &GameInProgressError{Game: active}
	}

	config, err := service.serviceTemplate.ResolveGameConfig(ctx, req)
	if err != nil {
		return nil, err
	}

	scope := models.ScopeFromPtr(config.ContinentID)
	pool, err := service.serviceCountry.GetCountryPool(ctx, scope)
	if err != nil {
		return nil, err
	}

	game := &models.Game{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		TemplateID:     req.TemplateID,
		Status:         models.GameInProgress,
		TotalQuestions: config.NumberOfFlags,
		TimeLimit:      config.NumberOfFlags * config.TimePerFlag,
		Difficulty:     config.Difficulty,
		ContinentID:    config.ContinentID,
		StartedAt:      time.Now().UTC(),
	}

	questions, err := BuildQuestionSet(game.ID, pool, config.NumberOfFlags, config.TimePerFlag)
	if errors.Is(err, ErrInsufficientPool) {
		return nil, errorx.Wrap(err, errorx.Validation)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	err = service.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := datastore.EnsureUser(ctx, tx, &models.User{ID: user.ID, Username: user.Username, UpdatedAt: time.Now().UTC()}); err != nil {
			return err
		}
		if err := datastore.InsertGame(ctx, tx, game); err != nil {
			return err
		}
		return datastore.InsertQuestions(ctx, tx, questions)
	})
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.IntegrityViolation() {
			active, lookupErr := datastore.GetActiveGame(ctx, service.db, user.ID)
			if lookupErr == nil && active != nil {
				return nil, &GameInProgressError{Game: active}
			}
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	first, err := service.questionView(ctx, &questions[0])
	if err != nil {
		return nil, err
	}

	return &models.GameDetail{Game: game, CurrentQuestion: first}, nil
}

func (service *ServiceGame) GetGame(ctx context.Context, userID int64, gameID string) (*models.GameDetail, error) {
	game, err := service.getOwnedGame(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}

	detail := &models.GameDetail{Game: game}
	if game.Status != models.GameInProgress {
		return detail, nil
	}

	next, err := datastore.GetNextUnanswered(ctx, service.db, game.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if next != nil {
		detail.NextUnanswered = &models.QuestionRef{QuestionID: next.ID, QuestionNumber: next.QuestionNumber}
	}

	return detail, nil
}

func (service *ServiceGame) GetQuestion(ctx context.Context, userID int64, gameID string, questionNumber int) (*models.QuestionView, error) {
	game, err := service.getOwnedGame(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != models.GameInProgress {
		return nil, errorx.Wrap(errors.New("game is not in progress"), errorx.NotExist)
	}

	question, err := datastore.GetQuestionByNumber(ctx, service.db, gameID, questionNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("question not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return service.questionView(ctx, question)
}

func (service *ServiceGame) GetNextUnansweredQuestion(ctx context.Context, userID int64, gameID string) (*models.NextQuestion, error) {
	game, err := service.getOwnedGame(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != models.GameInProgress {
		return nil, errorx.Wrap(errors.New("game is not in progress"), errorx.NotExist)
	}

	next, err := datastore.GetNextUnanswered(ctx, service.db, game.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.NextQuestion{HasUnanswered: false}, nil
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	view, err := service.questionView(ctx, next)
	if err != nil {
		return nil, err
	}

	return &models.NextQuestion{HasUnanswered: true, Question: view}, nil
}

// SubmitAnswer stamps the submission onto its question and folds the earned
// points into the game. Answers are write-once: the stamp only lands while
// user_answer_id is still null, so a concurrent duplicate loses and gets
// AlreadyAnsweredError.
func (service *ServiceGame) SubmitAnswer(ctx context.Context, userID int64, questionID string, gameID string, submission *models.AnswerSubmission) (*models.AnswerResult, error) {
	game, err := service.getOwnedGame(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}
	if game.Status != models.GameInProgress {
		return nil, errorx.Wrap(errors.New("game is not in progress"), errorx.NotExist)
	}

	if submission.TimeTaken < 0 {
		return nil, errorx.Wrap(errors.New("time_taken must not be negative"), errorx.Validation)
	}

	question, err := datastore.GetQuestionByID(ctx, service.db, questionID, game.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("question not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if question.Answered() {
		return nil, &AlreadyAnsweredError{QuestionID: question.ID}
	}

	valid := false
	for _, option := range question.Options {
		if option.CountryID == submission.AnswerID {
			valid = true
			break
		}
	}
	if !valid {
		return nil, errorx.Wrap(errors.New("answer is not one of the question's options"), errorx.Validation)
	}

	isCorrect := submission.AnswerID == question.CountryID
	points := CalculatePoints(game.Difficulty, isCorrect, submission.TimeTaken, question.TimeLimit)

	var updated *models.Game
	err = service.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		stamped, err := datastore.StampAnswer(ctx, tx, question.ID, submission.AnswerID, submission.TimeTaken, points)
		if err != nil {
			return err
		}
		if stamped == 0 {
			return &AlreadyAnsweredError{QuestionID: question.ID}
		}

		updated, err = datastore.ApplyAnswer(ctx, tx, game.ID, points, isCorrect, submission.TimeTaken)
		return err
	})
	if err != nil {
		var answered *AlreadyAnsweredError
		if errors.As(err, &answered) {
			return nil, answered
		}
		// A completion that committed after the status check above makes
		// ApplyAnswer match nothing.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(errors.New("game is not in progress"), errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &models.AnswerResult{
		IsCorrect:       isCorrect,
		CorrectAnswerID: question.CountryID,
		PointsEarned:    points,
		TotalScore:      updated.Score,
	}, nil
}

// CompleteGame closes an in-progress game and publishes its score: lifetime
// user totals, the per-difficulty statistic slice and the four leaderboard
// periods, all in one transaction. The global leaderboard bucket always
// receives the score; the continent bucket too when the game was scoped.
// Unanswered questions simply earn nothing.
func (service *ServiceGame) CompleteGame(ctx context.Context, userID int64, gameID string) (*models.Game, error) {
	mutex := service.rs.NewMutex(LockKeyUserGame(userID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrUserGameLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	var game *models.Game
	err := service.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		game, err = datastore.TransitionGame(ctx, tx, gameID, userID, models.GameCompleted)
		if err != nil {
			return err
		}

		if err := datastore.ApplyGameTotals(ctx, tx, userID, game.CorrectAnswers, game.Score); err != nil {
			return err
		}

		if err := datastore.UpsertGameStatistic(ctx, tx, userID, game.Scope(), game.Difficulty, game.CorrectAnswers, game.Score); err != nil {
			return err
		}

		return service.publishScore(ctx, tx, game)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("no in-progress game to complete"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	service.serviceLeaderboard.RecordCompletion(ctx, game)

	return game, nil
}

func (service *ServiceGame) AbandonGame(ctx context.Context, userID int64, gameID string) (*models.Game, error) {
	game, err := datastore.TransitionGame(ctx, service.db, gameID, userID, models.GameAbandoned)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("no in-progress game to abandon"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return game, nil
}

func (service *ServiceGame) ListUserGames(ctx context.Context, userID int64, limit, offset int) (*models.GameListPage, error) {
	games, total, err := datastore.ListUserGames(ctx, service.db, userID, limit, offset)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &models.GameListPage{Games: games, Total: total}, nil
}

func (service *ServiceGame) GetUserStatistics(ctx context.Context, userID int64) ([]models.UserStatistic, error) {
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserStatistics(userID), CACHE_TTL_10_MINS, func() ([]models.UserStatistic, error) {
		statistics, err := datastore.GetUserStatistics(ctx, service.db, userID)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		return statistics, nil
	})
}

// publishScore writes the game's score into every period bucket it belongs
// to. Upserts add onto existing rows, so several completions in one period
// accumulate.
func (service *ServiceGame) publishScore(ctx context.Context, tx bun.Tx, game *models.Game) error {
	completedAt := time.Now().UTC()
	if game.CompletedAt != nil {
		completedAt = *game.CompletedAt
	}

	scopes := []models.ContinentScope{models.GlobalScope()}
	if !game.Scope().IsGlobal() {
		scopes = append(scopes, game.Scope())
	}

	month, year := pkg.MonthYear(completedAt)
	for _, scope := range scopes {
		if err := datastore.UpsertDailyScore(ctx, tx, game.UserID, scope, pkg.DayKey(completedAt), game.Score); err != nil {
			return err
		}
		if err := datastore.UpsertWeeklyScore(ctx, tx, game.UserID, scope, pkg.WeekStartKey(completedAt), game.Score); err != nil {
			return err
		}
		if err := datastore.UpsertMonthlyScore(ctx, tx, game.UserID, scope, month, year, game.Score); err != nil {
			return err
		}
		if err := datastore.UpsertAllTimeScore(ctx, tx, game.UserID, scope, game.Score); err != nil {
			return err
		}
	}

	return nil
}

func (service *ServiceGame) getOwnedGame(ctx context.Context, userID int64, gameID string) (*models.Game, error) {
	game, err := datastore.GetGameByID(ctx, service.db, gameID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errorx.Wrap(errors.New("game not found"), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return game, nil
}

func (service *ServiceGame) questionView(ctx context.Context, question *models.GameQuestion) (*models.QuestionView, error) {
	country, err := datastore.GetCountry(ctx, service.db, question.CountryID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return &models.QuestionView{
		ID:             question.ID,
		QuestionNumber: question.QuestionNumber,
		FlagURL:        country.FlagURL,
		Options:        question.Options,
		TimeLimit:      question.TimeLimit,
		IsAnswered:     question.Answered(),
	}, nil
}
