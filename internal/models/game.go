package models

import (
	"time"

	"github.com/uptrace/bun"
)

type GameStatus string

const (
	GameInProgress GameStatus = "in_progress"
	GameCompleted  GameStatus = "completed"
	GameAbandoned  GameStatus = "abandoned"
)

func (s GameStatus) Terminal() bool {
	return s == GameCompleted || s == GameAbandoned
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

// db
type Game struct {
	bun.BaseModel  `bun:"table:game"`
	ID             string     `bun:"id,pk" json:"id"`
	UserID         int64      `bun:"user_id" json:"user_id"`
	TemplateID     *int64     `bun:"template_id" json:"template_id"`
	Status         GameStatus `bun:"status" json:"status"`
	TotalQuestions int        `bun:"total_questions" json:"total_questions"`
	TimeLimit      int        `bun:"time_limit" json:"time_limit"`
	Difficulty     Difficulty `bun:"difficulty" json:"difficulty"`
	ContinentID    *int64     `bun:"continent_id" json:"continent_id"`
	Score          int        `bun:"score" json:"score"`
	CorrectAnswers int        `bun:"correct_answers" json:"correct_answers"`
	TimeSpent      int        `bun:"time_spent" json:"time_spent"`
	StartedAt      time.Time  `bun:"started_at,default:current_timestamp" json:"started_at"`
	CompletedAt    *time.Time `bun:"completed_at" json:"completed_at"`
}

func (g *Game) Scope() ContinentScope {
	return ScopeFromPtr(g.ContinentID)
}

// GameConfig is the fully resolved configuration a game is created from.
type GameConfig struct {
	NumberOfFlags int
	TimePerFlag   int
	Difficulty    Difficulty
	ContinentID   *int64
}

// CustomOptions is the caller-supplied partial configuration. Set fields
// override the template's corresponding fields one by one.
type CustomOptions struct {
	NumberOfFlags *int        `json:"number_of_flags"`
	TimePerFlag   *int        `json:"time_per_flag"`
	Difficulty    *Difficulty `json:"difficulty"`
	ContinentID   *int64      `json:"continent_id"`
}

type CreateGameRequest struct {
	TemplateID    *int64         `json:"template_id"`
	CustomOptions *CustomOptions `json:"custom_options"`
}

// GameDetail is a game plus the question the client should show next.
type GameDetail struct {
	*Game
	CurrentQuestion *QuestionView `json:"current_question,omitempty"`
	NextUnanswered  *QuestionRef  `json:"next_unanswered_question,omitempty"`
}

type GameListPage struct {
	Games []Game `json:"games"`
	Total int    `json:"total"`
}
