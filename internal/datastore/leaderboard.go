package datastore

import (
	"context"

	"flagquiz/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableLeaderboards(ctx context.Context, db *bun.DB) error {
	for _, model := range []any{
		(*models.LeaderboardDaily)(nil),
		(*models.LeaderboardWeekly)(nil),
		(*models.LeaderboardMonthly)(nil),
		(*models.LeaderboardAllTime)(nil),
	} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}

	_, err := db.NewCreateIndex().Model((*models.LeaderboardDaily)(nil)).Index("index_leaderboard_daily_key").Unique().IfNotExists().Column("user_id", "date", "continent_key").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LeaderboardWeekly)(nil)).Index("index_leaderboard_weekly_key").Unique().IfNotExists().Column("user_id", "week_start", "continent_key").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LeaderboardMonthly)(nil)).Index("index_leaderboard_monthly_key").Unique().IfNotExists().Column("user_id", "month", "year", "continent_key").Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().Model((*models.LeaderboardAllTime)(nil)).Index("index_leaderboard_alltime_key").Unique().IfNotExists().Column("user_id", "continent_key").Exec(ctx)
	return err
}

// Period scores accumulate: a second completion in the same bucket adds to
// the existing row instead of replacing it.

func UpsertDailyScore(ctx context.Context, db bun.IDB, userID int64, scope models.ContinentScope, date string, score int) error {
	row := &models.LeaderboardDaily{UserID: userID, ContinentKey: scope.StorageKey(), Date: date, Score: score}
	_, err := db.NewInsert().Model(row).
		On("CONFLICT (user_id, date, continent_key) DO UPDATE").
		Set("score = leaderboard_daily.score + EXCLUDED.score").
		Exec(ctx)
	return err
}

func UpsertWeeklyScore(ctx context.Context, db bun.IDB, userID int64, scope models.ContinentScope, weekStart string, score int) error {
	row := &models.LeaderboardWeekly{UserID: userID, ContinentKey: scope.StorageKey(), WeekStart: weekStart, Score: score}
	_, err := db.NewInsert().Model(row).
		On("CONFLICT (user_id, week_start, continent_key) DO UPDATE").
		Set("score = leaderboard_weekly.score + EXCLUDED.score").
		Exec(ctx)
	return err
}

func UpsertMonthlyScore(ctx context.Context, db bun.IDB, userID int64, scope models.ContinentScope, month, year, score int) error {
	row := &models.LeaderboardMonthly{UserID: userID, ContinentKey: scope.StorageKey(), Month: month, Year: year, Score: score}
	_, err := db.NewInsert().Model(row).
		On("CONFLICT (user_id, month, year, continent_key) DO UPDATE").
		Set("score = leaderboard_monthly.score + EXCLUDED.score").
		Exec(ctx)
	return err
}

func UpsertAllTimeScore(ctx context.Context, db bun.IDB, userID int64, scope models.ContinentScope, score int) error {
	row := &models.LeaderboardAllTime{UserID: userID, ContinentKey: scope.StorageKey(), Score: score}
	_, err := db.NewInsert().Model(row).
		On("CONFLICT (user_id, continent_key) DO UPDATE").
		Set("score = leaderboard_alltime.score + EXCLUDED.score").
		Exec(ctx)
	return err
}

// Page reads. Ties break on user_id ascending so ranks stay stable across
// requests; rank numbers are assigned by the caller from the page offset.

func GetDailyPage(ctx context.Context, db bun.IDB, date string, scope models.ContinentScope, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	var entries []models.LeaderboardEntry
	total, err := db.NewSelect().
		ColumnExpr("l.user_id, u.username, u.photo_url, l.score").
		TableExpr("leaderboard_daily AS l").
		Join("JOIN app_user AS u ON u.id = l.user_id").
		Where("l.date = ?", date).
		Where("l.continent_key = ?", scope.StorageKey()).
		OrderExpr("l.score DESC, l.user_id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx, &entries)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func GetWeeklyPage(ctx context.Context, db bun.IDB, weekStart string, scope models.ContinentScope, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	var entries []models.LeaderboardEntry
	total, err := db.NewSelect().
		ColumnExpr("l.user_id, u.username, u.photo_url, l.score").
		TableExpr("leaderboard_weekly AS l").
		Join("JOIN app_user AS u ON u.id = l.user_id").
		Where("l.week_start = ?", weekStart).
		Where("l.continent_key = ?", scope.StorageKey()).
		OrderExpr("l.score DESC, l.user_id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx, &entries)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func GetMonthlyPage(ctx context.Context, db bun.IDB, month, year int, scope models.ContinentScope, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	var entries []models.LeaderboardEntry
	total, err := db.NewSelect().
		ColumnExpr("l.user_id, u.username, u.photo_url, l.score").
		TableExpr("leaderboard_monthly AS l").
		Join("JOIN app_user AS u ON u.id = l.user_id").
		Where("l.month = ?", month).
		Where("l.year = ?", year).
		Where("l.continent_key = ?", scope.StorageKey()).
		OrderExpr("l.score DESC, l.user_id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx, &entries)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func GetAllTimePage(ctx context.Context, db bun.IDB, scope models.ContinentScope, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	var entries []models.LeaderboardEntry
	total, err := db.NewSelect().
		ColumnExpr("l.user_id, u.username, u.photo_url, l.score").
		TableExpr("leaderboard_alltime AS l").
		Join("JOIN app_user AS u ON u.id = l.user_id").
		Where("l.continent_key = ?", scope.StorageKey()).
		OrderExpr("l.score DESC, l.user_id ASC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx, &entries)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Bucket dumps feed the Redis mirror rebuild.

func GetDailyRows(ctx context.Context, db bun.IDB, date string) ([]models.LeaderboardDaily, error) {
	var rows []models.LeaderboardDaily
	err := db.NewSelect().Model(&rows).Where("date = ?", date).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func GetWeeklyRows(ctx context.Context, db bun.IDB, weekStart string) ([]models.LeaderboardWeekly, error) {
	var rows []models.LeaderboardWeekly
	err := db.NewSelect().Model(&rows).Where("week_start = ?", weekStart).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func GetMonthlyRows(ctx context.Context, db bun.IDB, month, year int) ([]models.LeaderboardMonthly, error) {
	var rows []models.LeaderboardMonthly
	err := db.NewSelect().Model(&rows).Where("month = ?", month).Where("year = ?", year).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func GetAllTimeRows(ctx context.Context, db bun.IDB) ([]models.LeaderboardAllTime, error) {
	var rows []models.LeaderboardAllTime
	err := db.NewSelect().Model(&rows).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
