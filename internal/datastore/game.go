package datastore

import (
	"context"
	"database/sql"
	"time"

	"flagquiz/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGame(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Game)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.Game)(nil)).Index("index_game_user_id").IfNotExists().Column("user_id").Exec(ctx)
	if err != nil {
		return err
	}

	// One in-progress game per user, enforced by the storage engine so
	// concurrent createGame calls cannot both succeed.
	_, err = db.NewRaw(`
		create unique index if not exists index_game_user_in_progress
			on game (user_id)
			where status = 'in_progress';`).Exec(ctx)
	return err
}

// GetActiveGame returns the user's in-progress game, or nil when none exists.
func GetActiveGame(ctx context.Context, db bun.IDB, userID int64) (*models.Game, error) {
	var game models.Game
	err := db.NewSelect().Model(&game).
		Where("user_id = ?", userID).
		Where("status = ?", models.GameInProgress).
		Limit(1).
		Scan(ctx)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func InsertGame(ctx context.Context, db bun.IDB, game *models.Game) error {
	_, err := db.NewInsert().Model(game).Exec(ctx)
	return err
}

func GetGameByID(ctx context.Context, db bun.IDB, gameID string, userID int64) (*models.Game, error) {
	var game models.Game
	err := db.NewSelect().Model(&game).Where("id = ?", gameID).Where("user_id = ?", userID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// ApplyAnswer folds one scored answer into the game's running totals and
// returns the updated row. The status predicate keeps a submission that
// raced a concurrent completion from landing points on a terminal game;
// such a submission gets sql.ErrNoRows and the stamp rolls back with it.
func ApplyAnswer(ctx context.Context, db bun.IDB, gameID string, points int, correct bool, timeTaken int) (*models.Game, error) {
	correctDelta := 0
	if correct {
		correctDelta = 1
	}

	var game models.Game
	err := db.NewUpdate().Model(&game).
		Set("score = score + ?", points).
		Set("correct_answers = correct_answers + ?", correctDelta).
		Set("time_spent = time_spent + ?", timeTaken).
		Where("id = ?", gameID).
		Where("status = ?", models.GameInProgress).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// TransitionGame moves an in-progress game owned by userID into a terminal
// status and stamps completed_at. Returns sql.ErrNoRows when the game is
// missing, not owned, or already terminal.
func TransitionGame(ctx context.Context, db bun.IDB, gameID string, userID int64, to models.GameStatus) (*models.Game, error) {
	var game models.Game
	err := db.NewUpdate().Model(&game).
		Set("status = ?", to).
		Set("completed_at = ?", time.Now().UTC()).
		Where("id = ?", gameID).
		Where("user_id = ?", userID).
		Where("status = ?", models.GameInProgress).
		Returning("*").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// ListUserGames pages through the user's game history, newest first.
func ListUserGames(ctx context.Context, db bun.IDB, userID int64, limit, offset int) ([]models.Game, int, error) {
	var games []models.Game
	total, err := db.NewSelect().Model(&games).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return games, total, nil
}
