package datastore

import (
	"context"
	"time"

	"flagquiz/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableUser(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.User)(nil)).IfNotExists().Exec(ctx)
	return err
}

func GetUser(ctx context.Context, db bun.IDB, userID int64) (*models.User, error) {
	var user models.User
	err := db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ApplyGameTotals folds one completed game into the user's lifetime totals.
func ApplyGameTotals(ctx context.Context, db bun.IDB, userID int64, correctAnswers, score int) error {
	_, err := db.NewUpdate().Model((*models.User)(nil)).
		Set("total_games_played = total_games_played + 1").
		Set("total_correct_answers = total_correct_answers + ?", correctAnswers).
		Set("total_score = total_score + ?", score).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", userID).
		Exec(ctx)
	return err
}

// EnsureUser creates the aggregate row on first sight of a user id. The
// auth system owns the rest of the profile.
func EnsureUser(ctx context.Context, db bun.IDB, user *models.User) error {
	_, err := db.NewInsert().Model(user).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Exec(ctx)
	return err
}
