package models

import "github.com/uptrace/bun"

// db
//
// One row per (user, continent-or-global, difficulty) slice, upserted at
// every game completion.
type UserStatistic struct {
	bun.BaseModel  `bun:"table:user_statistic"`
	UserID         int64      `bun:"user_id" json:"user_id"`
	ContinentKey   int64      `bun:"continent_key" json:"-"`
	Difficulty     Difficulty `bun:"difficulty" json:"difficulty"`
	GamesPlayed    int        `bun:"games_played" json:"games_played"`
	CorrectAnswers int        `bun:"correct_answers" json:"correct_answers"`
	TotalScore     int        `bun:"total_score" json:"total_score"`
}

func (s *UserStatistic) Scope() ContinentScope {
	return ScopeFromKey(s.ContinentKey)
}
