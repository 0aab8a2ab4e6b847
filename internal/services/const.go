package services

import (
	"errors"
	"fmt"
	"time"

	"flagquiz/internal/models"
)

var ErrUserGameLock = errors.New("user game locked")
var ErrInsufficientPool = errors.New("not enough countries for the requested game")
var ErrNoUnansweredQuestion = errors.New("no unanswered question left")

// GameInProgressError carries the blocking game so the handler can return it
// alongside the rejection.
type GameInProgressError struct {
	Game *models.Game
}

func (e *GameInProgressError) Error() string {
	return fmt.Sprintf("game %s already in progress", e.Game.ID)
}

// AlreadyAnsweredError reports a repeated submission for a question that has
// its answer stamped.
type AlreadyAnsweredError struct {
	QuestionID string
}

func (e *AlreadyAnsweredError) Error() string {
	return fmt.Sprintf("question %s already answered", e.QuestionID)
}

const (
	SERVER_MODE_DEVELOPMENT = "development"
	SERVER_MODE_STAGING     = "staging"
	SERVER_MODE_PRODUCTION  = "production"

	DEFAULT_NUMBER_OF_FLAGS = 10
	DEFAULT_TIME_PER_FLAG   = 30

	// Each question shows the answer plus this many distractors.
	DISTRACTORS_PER_QUESTION = 3
	// The pool must exceed the question count by this margin so the last
	// question still has distractors to draw from.
	POOL_MARGIN = 3

	LEADERBOARD_DEFAULT_LIMIT = 20
	LEADERBOARD_MAX_LIMIT     = 100

	GAME_RATE_LIMIT_PER_MINUTE = 60

	CACHE_TTL_1_MIN   = 1 * time.Minute
	CACHE_TTL_5_MINS  = 5 * time.Minute
	CACHE_TTL_10_MINS = 10 * time.Minute
	CACHE_TTL_15_MINS = 15 * time.Minute
	CACHE_TTL_1_HOUR  = 1 * time.Hour
)

var DefaultDifficulty = models.DifficultyMedium

func LockKeyUserGame(userID int64) string {
	return fmt.Sprintf("lock:user-game:%d", userID)
}

// db
func DBKeyCountries(scope models.ContinentScope) string {
	return fmt.Sprintf("countries:%d", scope.StorageKey())
}

func DBKeyContinents() string {
	return "continents:all"
}

func DBKeyTemplates() string {
	return "game_template:active"
}

func DBKeyUserStatistics(userID int64) string {
	return fmt.Sprintf("user_statistics:%d", userID)
}

func DBKeyLeaderboardPage(kind models.PeriodKind, periodKey string, scope models.ContinentScope, limit, offset int) string {
	return fmt.Sprintf("leaderboard_page:%s:%s:%d:%d:%d", kind, periodKey, scope.StorageKey(), limit, offset)
}

func DBKeyUserRanks(userID int64, scope models.ContinentScope) string {
	return fmt.Sprintf("user_ranks:%d:%d", userID, scope.StorageKey())
}

func LimitKeyUserGame(userID int64) string {
	return fmt.Sprintf("limit:user-game:%d", userID)
}
