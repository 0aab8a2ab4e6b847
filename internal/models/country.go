package models

import "github.com/uptrace/bun"

// db
type Continent struct {
	bun.BaseModel `bun:"table:continent"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name" json:"name"`
	Code          string `bun:"code" json:"code"`
}

// db
type Country struct {
	bun.BaseModel `bun:"table:country"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	Name          string `bun:"name" json:"name"`
	ContinentID   int64  `bun:"continent_id" json:"continent_id"`
	FlagURL       string `bun:"flag_url" json:"flag_url"`
	IsActive      bool   `bun:"is_active" json:"-"`
}
