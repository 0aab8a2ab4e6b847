package models

import (
	"time"

	"github.com/uptrace/bun"
)

// db
//
// Only the lifetime aggregate fields belong to this service; identity and
// credentials are owned by the auth system and arrive as verified claims.
type User struct {
	bun.BaseModel       `bun:"table:app_user"`
	ID                  int64     `bun:"id,pk" json:"id"`
	Username            string    `bun:"username" json:"username"`
	PhotoURL            *string   `bun:"photo_url" json:"photo_url"`
	TotalGamesPlayed    int       `bun:"total_games_played" json:"total_games_played"`
	TotalCorrectAnswers int       `bun:"total_correct_answers" json:"total_correct_answers"`
	TotalScore          int       `bun:"total_score" json:"total_score"`
	CreatedAt           time.Time `bun:"created_at,default:current_timestamp" json:"-"`
	UpdatedAt           time.Time `bun:"updated_at" json:"-"`
}

// AuthUser is what the token verifier hands to handlers.
type AuthUser struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	EmailVerified bool   `json:"email_verified"`
}
