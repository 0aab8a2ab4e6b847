package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"flagquiz/internal/datastore"
	"flagquiz/internal/models"
	"flagquiz/internal/pkg"
	"flagquiz/internal/pkg/caching"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// newServiceGame builds the game service against an in-memory SQLite
// database and a miniredis instance, so the full flows run through the
// real datastore queries, including the partial unique index and the
// conditional answer stamp.
func newServiceGame(t *testing.T) (*ServiceGame, *bun.DB) {
	t.Helper()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	for _, create := range []func(context.Context, *bun.DB) error{
		datastore.CreateTableContinent,
		datastore.CreateTableCountry,
		datastore.CreateTableUser,
		datastore.CreateTableGameTemplate,
		datastore.CreateTableGame,
		datastore.CreateTableGameQuestion,
		datastore.CreateTableUserStatistic,
		datastore.CreateTableLeaderboards,
	} {
		if err := create(ctx, db); err != nil {
			t.Fatalf("create table: %v", err)
		}
	}

	continent := models.Continent{ID: 1, Name: "Europe", Code: "EU"}
	if _, err := db.NewInsert().Model(&continent).Exec(ctx); err != nil {
		t.Fatalf("seed continent: %v", err)
	}
	countries := make([]models.Country, 0, 16)
	for i := 1; i <= 16; i++ {
		countries = append(countries, models.Country{
			ID:          int64(i),
			Name:        fmt.Sprintf("Country %02d", i),
			ContinentID: continent.ID,
			FlagURL:     fmt.Sprintf("https://flags.example.com/%02d.svg", i),
			IsActive:    true,
		})
	}
	if _, err := db.NewInsert().Model(&countries).Exec(ctx); err != nil {
		t.Fatalf("seed countries: %v", err)
	}

	c, err := caching.NewCacheRedis(client, false)
	if err != nil {
		t.Fatalf("cache: %v", err)
	}
	rs := redsync.New(goredis.NewPool(client))

	serviceCountry := &ServiceCountry{db: db, cache: c, readonlyCache: c}
	serviceTemplate := &ServiceTemplate{db: db, cache: c, readonlyCache: c}
	serviceLeaderboard := &ServiceLeaderboard{redisDB: client, db: db, cache: c, readonlyCache: c}

	return &ServiceGame{
		rs:                 rs,
		db:                 db,
		cache:              c,
		readonlyCache:      c,
		serviceCountry:     serviceCountry,
		serviceTemplate:    serviceTemplate,
		serviceLeaderboard: serviceLeaderboard,
	}, db
}

func createFiveFlagGame(t *testing.T, service *ServiceGame, user *models.AuthUser) *models.GameDetail {
	t.Helper()
	detail, err := service.CreateGame(context.Background(), user, &models.CreateGameRequest{
		CustomOptions: &models.CustomOptions{NumberOfFlags: intPtr(5), TimePerFlag: intPtr(30)},
	})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	return detail
}

// answerAllCorrectly walks the game to the end through the next-question
// endpoint, answering each question with its target at the full time limit
// (base points only), and returns the score accumulated.
func answerAllCorrectly(t *testing.T, service *ServiceGame, db *bun.DB, userID int64, gameID string) int {
	t.Helper()
	ctx := context.Background()

	score := 0
	for {
		next, err := service.GetNextUnansweredQuestion(ctx, userID, gameID)
		if err != nil {
			t.Fatalf("GetNextUnansweredQuestion: %v", err)
		}
		if !next.HasUnanswered {
			return score
		}

		question, err := datastore.GetQuestionByNumber(ctx, db, gameID, next.Question.QuestionNumber)
		if err != nil {
			t.Fatalf("GetQuestionByNumber: %v", err)
		}

		result, err := service.SubmitAnswer(ctx, userID, question.ID, gameID, &models.AnswerSubmission{
			AnswerID:  question.CountryID,
			TimeTaken: question.TimeLimit,
		})
		if err != nil {
			t.Fatalf("SubmitAnswer(%d): %v", next.Question.QuestionNumber, err)
		}
		if !result.IsCorrect {
			t.Fatalf("question %d scored incorrect for the target country", next.Question.QuestionNumber)
		}
		score += result.PointsEarned
	}
}

func TestCreateGameSingleActive(t *testing.T) {
	service, _ := newServiceGame(t)
	user := &models.AuthUser{ID: 7, Username: "ada", EmailVerified: true}

	first := createFiveFlagGame(t, service, user)
	if first.Status != models.GameInProgress {
		t.Fatalf("status = %s, want %s", first.Status, models.GameInProgress)
	}
	if first.CurrentQuestion == nil {
		t.Fatal("expected the first question on the created game")
	}

	_, err := service.CreateGame(context.Background(), user, &models.CreateGameRequest{})
	var inProgress *GameInProgressError
	if !errors.As(err, &inProgress) {
		t.Fatalf("second create error = %v, want GameInProgressError", err)
	}
	if inProgress.Game.ID != first.ID {
		t.Errorf("conflict carries game %s, want %s", inProgress.Game.ID, first.ID)
	}

	// Another user is unaffected.
	other := &models.AuthUser{ID: 8, Username: "lin", EmailVerified: true}
	if _, err := service.CreateGame(context.Background(), other, &models.CreateGameRequest{}); err != nil {
		t.Errorf("create for another user: %v", err)
	}
}

func TestSubmitAnswerWriteOnce(t *testing.T) {
	service, db := newServiceGame(t)
	ctx := context.Background()
	user := &models.AuthUser{ID: 7, Username: "ada", EmailVerified: true}

	detail := createFiveFlagGame(t, service, user)
	question, err := datastore.GetQuestionByNumber(ctx, db, detail.ID, 1)
	if err != nil {
		t.Fatalf("GetQuestionByNumber: %v", err)
	}

	result, err := service.SubmitAnswer(ctx, user.ID, question.ID, detail.ID, &models.AnswerSubmission{
		AnswerID:  question.CountryID,
		TimeTaken: question.TimeLimit,
	})
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !result.IsCorrect || result.PointsEarned != 20 {
		t.Fatalf("result = %+v, want correct with 20 points", result)
	}

	_, err = service.SubmitAnswer(ctx, user.ID, question.ID, detail.ID, &models.AnswerSubmission{
		AnswerID:  question.Options[0].CountryID,
		TimeTaken: 1,
	})
	var answered *AlreadyAnsweredError
	if !errors.As(err, &answered) {
		t.Fatalf("second submit error = %v, want AlreadyAnsweredError", err)
	}

	// Neither the stamp nor the score moved.
	stamped, err := datastore.GetQuestionByID(ctx, db, question.ID, detail.ID)
	if err != nil {
		t.Fatalf("GetQuestionByID: %v", err)
	}
	if stamped.UserAnswerID == nil || *stamped.UserAnswerID != question.CountryID {
		t.Errorf("stamped answer = %v, want %d", stamped.UserAnswerID, question.CountryID)
	}
	after, err := service.GetGame(ctx, user.ID, detail.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if after.Score != result.TotalScore {
		t.Errorf("score = %d, want %d after duplicate submit", after.Score, result.TotalScore)
	}
}

func TestCompleteGamePublishesScore(t *testing.T) {
	service, db := newServiceGame(t)
	ctx := context.Background()
	user := &models.AuthUser{ID: 7, Username: "ada", EmailVerified: true}

	detail := createFiveFlagGame(t, service, user)
	score := answerAllCorrectly(t, service, db, user.ID, detail.ID)
	if score != 100 {
		t.Fatalf("accumulated score = %d, want 100", score)
	}

	game, err := service.CompleteGame(ctx, user.ID, detail.ID)
	if err != nil {
		t.Fatalf("CompleteGame: %v", err)
	}
	if game.Status != models.GameCompleted || game.CompletedAt == nil {
		t.Fatalf("game = %+v, want completed with a completion stamp", game)
	}
	if game.Score != score {
		t.Fatalf("game score = %d, want %d", game.Score, score)
	}

	stored, err := datastore.GetUser(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if stored.TotalGamesPlayed != 1 || stored.TotalCorrectAnswers != 5 || stored.TotalScore != score {
		t.Errorf("user totals = %d/%d/%d, want 1/5/%d", stored.TotalGamesPlayed, stored.TotalCorrectAnswers, stored.TotalScore, score)
	}

	stats, err := datastore.GetUserStatistics(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if len(stats) != 1 || stats[0].TotalScore != score || stats[0].GamesPlayed != 1 {
		t.Errorf("statistics = %+v, want one slice with score %d", stats, score)
	}

	assertLeaderboardScores(t, db, user.ID, *game.CompletedAt, score)

	// A second completion in the same buckets accumulates.
	second := createFiveFlagGame(t, service, user)
	answerAllCorrectly(t, service, db, user.ID, second.ID)
	completed, err := service.CompleteGame(ctx, user.ID, second.ID)
	if err != nil {
		t.Fatalf("CompleteGame (second): %v", err)
	}
	assertLeaderboardScores(t, db, user.ID, *completed.CompletedAt, 2*score)

	// Completing a terminal game reports nothing to complete.
	if _, err := service.CompleteGame(ctx, user.ID, detail.ID); err == nil {
		t.Error("expected error completing an already-completed game")
	}
}

func assertLeaderboardScores(t *testing.T, db *bun.DB, userID int64, at time.Time, want int) {
	t.Helper()
	ctx := context.Background()
	scope := models.GlobalScope()
	month, year := pkg.MonthYear(at)

	reads := []struct {
		name string
		read func() ([]models.LeaderboardEntry, int, error)
	}{
		{"daily", func() ([]models.LeaderboardEntry, int, error) {
			return datastore.GetDailyPage(ctx, db, pkg.DayKey(at), scope, 10, 0)
		}},
		{"weekly", func() ([]models.LeaderboardEntry, int, error) {
			return datastore.GetWeeklyPage(ctx, db, pkg.WeekStartKey(at), scope, 10, 0)
		}},
		{"monthly", func() ([]models.LeaderboardEntry, int, error) {
			return datastore.GetMonthlyPage(ctx, db, month, year, scope, 10, 0)
		}},
		{"alltime", func() ([]models.LeaderboardEntry, int, error) {
			return datastore.GetAllTimePage(ctx, db, scope, 10, 0)
		}},
	}
	for _, r := range reads {
		entries, _, err := r.read()
		if err != nil {
			t.Fatalf("%s page: %v", r.name, err)
		}
		found := false
		for _, entry := range entries {
			if entry.UserID == userID {
				found = true
				if entry.Score != want {
					t.Errorf("%s score = %d, want %d", r.name, entry.Score, want)
				}
			}
		}
		if !found {
			t.Errorf("%s leaderboard has no entry for user %d", r.name, userID)
		}
	}
}

func TestAbandonGameLeavesAggregatesUntouched(t *testing.T) {
	service, db := newServiceGame(t)
	ctx := context.Background()
	user := &models.AuthUser{ID: 7, Username: "ada", EmailVerified: true}

	detail := createFiveFlagGame(t, service, user)
	question, err := datastore.GetQuestionByNumber(ctx, db, detail.ID, 1)
	if err != nil {
		t.Fatalf("GetQuestionByNumber: %v", err)
	}
	if _, err := service.SubmitAnswer(ctx, user.ID, question.ID, detail.ID, &models.AnswerSubmission{
		AnswerID:  question.CountryID,
		TimeTaken: 1,
	}); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}

	game, err := service.AbandonGame(ctx, user.ID, detail.ID)
	if err != nil {
		t.Fatalf("AbandonGame: %v", err)
	}
	if game.Status != models.GameAbandoned {
		t.Fatalf("status = %s, want %s", game.Status, models.GameAbandoned)
	}

	stored, err := datastore.GetUser(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if stored.TotalGamesPlayed != 0 || stored.TotalScore != 0 {
		t.Errorf("user totals = %d/%d, want untouched", stored.TotalGamesPlayed, stored.TotalScore)
	}
	stats, err := datastore.GetUserStatistics(ctx, db, user.ID)
	if err != nil {
		t.Fatalf("GetUserStatistics: %v", err)
	}
	if len(stats) != 0 {
		t.Errorf("statistics = %+v, want none", stats)
	}
	entries, _, err := datastore.GetAllTimePage(ctx, db, models.GlobalScope(), 10, 0)
	if err != nil {
		t.Fatalf("GetAllTimePage: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("alltime leaderboard = %+v, want empty", entries)
	}

	// The slot frees up for a new game.
	if _, err := service.CreateGame(ctx, user, &models.CreateGameRequest{}); err != nil {
		t.Errorf("create after abandon: %v", err)
	}
}

// A submission that raced a completion must not land points on the
// terminal game: ApplyAnswer matches only in-progress rows.
func TestApplyAnswerSkipsTerminalGame(t *testing.T) {
	service, db := newServiceGame(t)
	ctx := context.Background()
	user := &models.AuthUser{ID: 7, Username: "ada", EmailVerified: true}

	detail := createFiveFlagGame(t, service, user)
	if _, err := service.CompleteGame(ctx, user.ID, detail.ID); err != nil {
		t.Fatalf("CompleteGame: %v", err)
	}

	_, err := datastore.ApplyAnswer(ctx, db, detail.ID, 20, true, 5)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("ApplyAnswer on completed game error = %v, want sql.ErrNoRows", err)
	}

	after, err := service.GetGame(ctx, user.ID, detail.ID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if after.Score != 0 {
		t.Errorf("score = %d, want 0 on the untouched completed game", after.Score)
	}
}
