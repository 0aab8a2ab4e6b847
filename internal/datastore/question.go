package datastore

import (
	"context"
	"time"

	"flagquiz/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableGameQuestion(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.GameQuestion)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.GameQuestion)(nil)).Index("index_game_question_game_id_number").Unique().IfNotExists().Column("game_id", "question_number").Exec(ctx)
	return err
}

func InsertQuestions(ctx context.Context, db bun.IDB, questions []models.GameQuestion) error {
	_, err := db.NewInsert().Model(&questions).Exec(ctx)
	return err
}

func GetQuestionByNumber(ctx context.Context, db bun.IDB, gameID string, questionNumber int) (*models.GameQuestion, error) {
	var question models.GameQuestion
	err := db.NewSelect().Model(&question).
		Where("game_id = ?", gameID).
		Where("question_number = ?", questionNumber).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

func GetQuestionByID(ctx context.Context, db bun.IDB, questionID string, gameID string) (*models.GameQuestion, error) {
	var question models.GameQuestion
	err := db.NewSelect().Model(&question).
		Where("id = ?", questionID).
		Where("game_id = ?", gameID).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetNextUnanswered returns the lowest-numbered question without an answer,
// or sql.ErrNoRows when the game is fully answered.
func GetNextUnanswered(ctx context.Context, db bun.IDB, gameID string) (*models.GameQuestion, error) {
	var question models.GameQuestion
	err := db.NewSelect().Model(&question).
		Where("game_id = ?", gameID).
		Where("user_answer_id IS NULL").
		Order("question_number ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// StampAnswer records the answer on a still-unanswered question. The guard
// on user_answer_id makes concurrent duplicate submissions lose the race
// instead of double-scoring; the caller checks the affected-row count.
func StampAnswer(ctx context.Context, db bun.IDB, questionID string, answerID int64, timeTaken, points int) (int64, error) {
	res, err := db.NewUpdate().Model((*models.GameQuestion)(nil)).
		Set("user_answer_id = ?", answerID).
		Set("time_taken = ?", timeTaken).
		Set("points_earned = ?", points).
		Set("answered_at = ?", time.Now().UTC()).
		Where("id = ?", questionID).
		Where("user_answer_id IS NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
