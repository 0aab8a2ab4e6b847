package models

import (
	"time"

	"github.com/uptrace/bun"
)

// QuestionOption is one multiple-choice entry. Only id and name ever leave
// the server; correctness is never flagged on the option itself.
type QuestionOption struct {
	CountryID int64  `json:"id"`
	Name      string `json:"name"`
}

// db
type GameQuestion struct {
	bun.BaseModel  `bun:"table:game_question"`
	ID             string           `bun:"id,pk" json:"id"`
	GameID         string           `bun:"game_id" json:"game_id"`
	QuestionNumber int              `bun:"question_number" json:"question_number"`
	CountryID      int64            `bun:"country_id" json:"-"`
	Options        []QuestionOption `bun:"options,type:jsonb" json:"options"`
	TimeLimit      int              `bun:"time_limit" json:"time_limit"`
	UserAnswerID   *int64           `bun:"user_answer_id" json:"user_answer_id"`
	TimeTaken      *int             `bun:"time_taken" json:"time_taken"`
	PointsEarned   *int             `bun:"points_earned" json:"points_earned"`
	AnsweredAt     *time.Time       `bun:"answered_at" json:"answered_at"`
}

func (q *GameQuestion) Answered() bool {
	return q.UserAnswerID != nil
}

// QuestionView is the client-facing question shape. The target country id
// stays server-side until the question is answered.
type QuestionView struct {
	ID             string           `json:"id"`
	QuestionNumber int              `json:"question_number"`
	FlagURL        string           `json:"flag_url"`
	Options        []QuestionOption `json:"options"`
	TimeLimit      int              `json:"time_limit"`
	IsAnswered     bool             `json:"is_answered"`
}

// QuestionRef points at a question without carrying its content.
type QuestionRef struct {
	QuestionID     string `json:"question_id"`
	QuestionNumber int    `json:"question_number"`
}

type NextQuestion struct {
	HasUnanswered bool          `json:"has_unanswered"`
	Question      *QuestionView `json:"question,omitempty"`
}

type AnswerSubmission struct {
	AnswerID  int64 `json:"answer_id"`
	TimeTaken int   `json:"time_taken"`
}

type AnswerResult struct {
	IsCorrect       bool  `json:"is_correct"`
	CorrectAnswerID int64 `json:"correct_answer_id"`
	PointsEarned    int   `json:"points_earned"`
	TotalScore      int   `json:"total_score"`
}
