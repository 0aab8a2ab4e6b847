package datastore

import (
	"context"

	"flagquiz/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUserStatistic(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.UserStatistic)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.UserStatistic)(nil)).Index("index_user_statistic_key").Unique().IfNotExists().Column("user_id", "continent_key", "difficulty").Exec(ctx)
	return err
}

// UpsertGameStatistic folds one completed game into the (user, scope,
// difficulty) slice, creating the row on first completion.
func UpsertGameStatistic(ctx context.Context, db bun.IDB, userID int64, scope models.ContinentScope, difficulty models.Difficulty, correctAnswers, score int) error {
	stat := &models.UserStatistic{
		UserID:         userID,
		ContinentKey:   scope.StorageKey(),
		Difficulty:     difficulty,
		GamesPlayed:    1,
		CorrectAnswers: correctAnswers,
		TotalScore:     score,
	}

	_, err := db.NewInsert().Model(stat).
		On("CONFLICT (user_id, continent_key, difficulty) DO UPDATE").
		Set("games_played = user_statistic.games_played + 1").
		Set("correct_answers = user_statistic.correct_answers + EXCLUDED.correct_answers").
		Set("total_score = user_statistic.total_score + EXCLUDED.total_score").
		Exec(ctx)
	return err
}

func GetUserStatistics(ctx context.Context, db bun.IDB, userID int64) ([]models.UserStatistic, error) {
	var stats []models.UserStatistic
	err := db.NewSelect().Model(&stats).
		Where("user_id = ?", userID).
		Order("continent_key ASC", "difficulty ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
