package models

import "github.com/uptrace/bun"

type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
	PeriodAllTime PeriodKind = "alltime"
)

func (p PeriodKind) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	default:
		return false
	}
}

// db
type LeaderboardDaily struct {
	bun.BaseModel `bun:"table:leaderboard_daily"`
	UserID        int64  `bun:"user_id" json:"user_id"`
	ContinentKey  int64  `bun:"continent_key" json:"-"`
	Date          string `bun:"date" json:"date"`
	Score         int    `bun:"score" json:"score"`
}

// db
type LeaderboardWeekly struct {
	bun.BaseModel `bun:"table:leaderboard_weekly"`
	UserID        int64  `bun:"user_id" json:"user_id"`
	ContinentKey  int64  `bun:"continent_key" json:"-"`
	WeekStart     string `bun:"week_start" json:"week_start"`
	Score         int    `bun:"score" json:"score"`
}

// db
type LeaderboardMonthly struct {
	bun.BaseModel `bun:"table:leaderboard_monthly"`
	UserID        int64  `bun:"user_id" json:"user_id"`
	ContinentKey  int64  `bun:"continent_key" json:"-"`
	Month         int    `bun:"month" json:"month"`
	Year          int    `bun:"year" json:"year"`
	Score         int    `bun:"score" json:"score"`
}

// db
type LeaderboardAllTime struct {
	bun.BaseModel `bun:"table:leaderboard_alltime,alias:leaderboard_alltime"`
	UserID        int64 `bun:"user_id" json:"user_id"`
	ContinentKey  int64 `bun:"continent_key" json:"-"`
	Score         int   `bun:"score" json:"score"`
}

type LeaderboardEntry struct {
	Rank     int     `bun:"-" json:"rank"`
	UserID   int64   `bun:"user_id" json:"user_id"`
	Username string  `bun:"username" json:"username"`
	PhotoURL *string `bun:"photo_url" json:"photo_url"`
	Score    int     `bun:"score" json:"score"`
}

type LeaderboardPage struct {
	Entries []LeaderboardEntry `json:"leaderboard"`
	Total   int                `json:"total"`
}

type RankEntry struct {
	Rank  int `json:"rank"`
	Score int `json:"score"`
}

// UserRanks reports the user's position in the current global bucket of
// each period; a nil entry means no score recorded there yet.
type UserRanks struct {
	Daily   *RankEntry `json:"daily"`
	Weekly  *RankEntry `json:"weekly"`
	Monthly *RankEntry `json:"monthly"`
	AllTime *RankEntry `json:"all_time"`
}
