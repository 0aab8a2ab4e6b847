package models

import "github.com/uptrace/bun"

// db
type GameTemplate struct {
	bun.BaseModel `bun:"table:game_template"`
	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	Name          string     `bun:"name" json:"name"`
	NumberOfFlags int        `bun:"number_of_flags" json:"number_of_flags"`
	TimePerFlag   int        `bun:"time_per_flag" json:"time_per_flag"`
	Difficulty    Difficulty `bun:"difficulty" json:"difficulty"`
	ContinentID   *int64     `bun:"continent_id" json:"continent_id"`
	IsActive      bool       `bun:"is_active" json:"-"`
}
