package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strconv"
	"time"

	"flagquiz/internal/datastore"
	"flagquiz/internal/datastore/redis_store"
	"flagquiz/internal/models"
	"flagquiz/internal/pkg"
	"flagquiz/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

// The all-time mirror carries a fixed period segment.
const ALLTIME_PERIOD_KEY = "all"

type ServiceLeaderboard struct {
	container     *do.Injector
	redisDB       redis.UniversalClient
	db            *bun.DB
	cache         caching.Cache
	readonlyCache caching.ReadOnlyCache
}

func NewServiceLeaderboard(container *do.Injector) (*ServiceLeaderboard, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	db, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	return &ServiceLeaderboard{container, redisDB, db, cache, readonlyCache}, nil
}

// CurrentPeriodKey names the bucket of a kind that time t falls into.
func CurrentPeriodKey(kind models.PeriodKind, t time.Time) string {
	switch kind {
	case models.PeriodDaily:
		return pkg.DayKey(t)
	case models.PeriodWeekly:
		return pkg.WeekStartKey(t)
	case models.PeriodMonthly:
		month, year := pkg.MonthYear(t)
		return pkg.MonthKey(month, year)
	default:
		return ALLTIME_PERIOD_KEY
	}
}

// GetPage reads one bucket of a period, ranked. An empty periodKey means
// the bucket the current time falls into. Pages come from Postgres so
// username and photo ride along; the short cache absorbs repeated reads
// of the same page.
func (service *ServiceLeaderboard) GetPage(ctx context.Context, kind models.PeriodKind, periodKey string, scope models.ContinentScope, limit, offset int) (*models.LeaderboardPage, error) {
	if !kind.Valid() {
		return nil, errorx.Wrap(errors.New("unknown leaderboard period"), errorx.Validation)
	}
	if limit <= 0 {
		limit = LEADERBOARD_DEFAULT_LIMIT
	}
	if limit > LEADERBOARD_MAX_LIMIT {
		limit = LEADERBOARD_MAX_LIMIT
	}
	if offset < 0 {
		offset = 0
	}

	if periodKey == "" {
		periodKey = CurrentPeriodKey(kind, time.Now().UTC())
	}
	if err := validatePeriodKey(kind, periodKey); err != nil {
		return nil, err
	}

	key := DBKeyLeaderboardPage(kind, periodKey, scope, limit, offset)
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, key, CACHE_TTL_1_MIN, func() (*models.LeaderboardPage, error) {
		entries, total, err := service.readPage(ctx, kind, periodKey, scope, limit, offset)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}

		return &models.LeaderboardPage{Entries: AssignRanks(entries, offset), Total: total}, nil
	})
}

func validatePeriodKey(kind models.PeriodKind, periodKey string) error {
	switch kind {
	case models.PeriodDaily, models.PeriodWeekly:
		if _, err := time.Parse("2006-01-02", periodKey); err != nil {
			return errorx.Wrap(errors.New("invalid period key"), errorx.Validation)
		}
	case models.PeriodMonthly:
		if _, _, err := pkg.ParseMonthKey(periodKey); err != nil {
			return errorx.Wrap(errors.New("invalid period key"), errorx.Validation)
		}
	}
	return nil
}

func (service *ServiceLeaderboard) readPage(ctx context.Context, kind models.PeriodKind, periodKey string, scope models.ContinentScope, limit, offset int) ([]models.LeaderboardEntry, int, error) {
	switch kind {
	case models.PeriodDaily:
		return datastore.GetDailyPage(ctx, service.db, periodKey, scope, limit, offset)
	case models.PeriodWeekly:
		return datastore.GetWeeklyPage(ctx, service.db, periodKey, scope, limit, offset)
	case models.PeriodMonthly:
		month, year, _ := pkg.ParseMonthKey(periodKey)
		return datastore.GetMonthlyPage(ctx, service.db, month, year, scope, limit, offset)
	default:
		return datastore.GetAllTimePage(ctx, service.db, scope, limit, offset)
	}
}

// AssignRanks numbers entries from offset+1. Entries arrive already ordered
// by score descending with user id breaking ties.
func AssignRanks(entries []models.LeaderboardEntry, offset int) []models.LeaderboardEntry {
	for i := range entries {
		entries[i].Rank = offset + i + 1
	}
	return entries
}

// GetUserRanks reads the user's position in every current period bucket of
// a scope from the Redis mirrors. Kinds the user has no score in come back
// nil rather than failing the whole read.
func (service *ServiceLeaderboard) GetUserRanks(ctx context.Context, userID int64, scope models.ContinentScope) (*models.UserRanks, error) {
	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyUserRanks(userID, scope), CACHE_TTL_5_MINS, func() (*models.UserRanks, error) {
		if _, err := datastore.GetUser(ctx, service.db, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, errorx.Wrap(errors.New("user not found"), errorx.NotExist)
			}
			return nil, errorx.Wrap(err, errorx.Service)
		}

		now := time.Now().UTC()
		ranks := &models.UserRanks{}
		for _, kind := range []models.PeriodKind{models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly, models.PeriodAllTime} {
			entry, err := service.userRank(ctx, kind, CurrentPeriodKey(kind, now), scope, userID)
			if err != nil {
				return nil, errorx.Wrap(err, errorx.Service)
			}

			switch kind {
			case models.PeriodDaily:
				ranks.Daily = entry
			case models.PeriodWeekly:
				ranks.Weekly = entry
			case models.PeriodMonthly:
				ranks.Monthly = entry
			case models.PeriodAllTime:
				ranks.AllTime = entry
			}
		}
		return ranks, nil
	})
}

func (service *ServiceLeaderboard) userRank(ctx context.Context, kind models.PeriodKind, periodKey string, scope models.ContinentScope, userID int64) (*models.RankEntry, error) {
	rankScore, err := redis_store.GetRankWithScore(ctx, service.redisDB, kind, periodKey, scope, userID)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &models.RankEntry{Rank: int(rankScore.Rank) + 1, Score: int(rankScore.Score)}, nil
}

// RecordCompletion folds a completed game's score into the Redis mirrors
// and drops the caches the score just invalidated. The SQL rows are the
// source of truth and committed already; mirror drift heals at the next
// cron rebuild, so failures here only log.
func (service *ServiceLeaderboard) RecordCompletion(ctx context.Context, game *models.Game) {
	completedAt := time.Now().UTC()
	if game.CompletedAt != nil {
		completedAt = *game.CompletedAt
	}

	scopes := []models.ContinentScope{models.GlobalScope()}
	if !game.Scope().IsGlobal() {
		scopes = append(scopes, game.Scope())
	}

	for _, scope := range scopes {
		for _, kind := range []models.PeriodKind{models.PeriodDaily, models.PeriodWeekly, models.PeriodMonthly, models.PeriodAllTime} {
			err := redis_store.AddScore(ctx, service.redisDB, kind, CurrentPeriodKey(kind, completedAt), scope, game.UserID, game.Score)
			if err != nil {
				log.Printf("leaderboard mirror update failed (%s/%s): %v", kind, scope, err)
			}
		}

		if err := service.cache.Delete(ctx, DBKeyUserRanks(game.UserID, scope)); err != nil {
			log.Printf("user ranks cache invalidation failed: %v", err)
		}
	}

	if err := service.cache.Delete(ctx, DBKeyUserStatistics(game.UserID)); err != nil {
		log.Printf("user statistics cache invalidation failed: %v", err)
	}

	if err := caching.DeleteKeys(ctx, service.redisDB, "leaderboard_page:*"); err != nil {
		log.Printf("leaderboard page cache invalidation failed: %v", err)
	}
}

// RebuildMirrors rebuilds every current-period ZSET from the SQL rows and
// drops buckets belonging to expired periods. The cron runs this on a
// schedule so mirrors never drift for long.
func (service *ServiceLeaderboard) RebuildMirrors(ctx context.Context) error {
	start := time.Now()
	now := start.UTC()
	buckets := 0

	daily, err := datastore.GetDailyRows(ctx, service.db, pkg.DayKey(now))
	if err != nil {
		return err
	}
	n, err := service.replaceKind(ctx, models.PeriodDaily, pkg.DayKey(now), groupDaily(daily))
	if err != nil {
		return err
	}
	buckets += n

	weekly, err := datastore.GetWeeklyRows(ctx, service.db, pkg.WeekStartKey(now))
	if err != nil {
		return err
	}
	n, err = service.replaceKind(ctx, models.PeriodWeekly, pkg.WeekStartKey(now), groupWeekly(weekly))
	if err != nil {
		return err
	}
	buckets += n

	month, year := pkg.MonthYear(now)
	monthly, err := datastore.GetMonthlyRows(ctx, service.db, month, year)
	if err != nil {
		return err
	}
	n, err = service.replaceKind(ctx, models.PeriodMonthly, pkg.MonthKey(month, year), groupMonthly(monthly))
	if err != nil {
		return err
	}
	buckets += n

	alltime, err := datastore.GetAllTimeRows(ctx, service.db)
	if err != nil {
		return err
	}
	n, err = service.replaceKind(ctx, models.PeriodAllTime, ALLTIME_PERIOD_KEY, groupAllTime(alltime))
	if err != nil {
		return err
	}
	buckets += n

	mark := &redis_store.RebuildMark{RanAt: now, Duration: time.Since(start).Milliseconds(), Buckets: buckets}
	return redis_store.SetRebuildMark(ctx, service.redisDB, mark)
}

// replaceKind swaps in the fresh buckets of one kind, then deletes stale
// buckets of that kind that the current period no longer covers.
func (service *ServiceLeaderboard) replaceKind(ctx context.Context, kind models.PeriodKind, periodKey string, byScope map[int64][]redis.Z) (int, error) {
	scopes := make([]models.ContinentScope, 0, len(byScope))
	for scopeKey, members := range byScope {
		scope := models.ScopeFromKey(scopeKey)
		if err := redis_store.ReplaceLeaderboard(ctx, service.redisDB, kind, periodKey, scope, members); err != nil {
			return 0, err
		}
		scopes = append(scopes, scope)
	}

	keep := redis_store.KeepKey(kind, periodKey, scopes)
	if err := redis_store.DeleteStaleKinds(ctx, service.redisDB, kind, keep); err != nil {
		return 0, err
	}

	return len(byScope), nil
}

func groupDaily(rows []models.LeaderboardDaily) map[int64][]redis.Z {
	byScope := map[int64][]redis.Z{}
	for _, row := range rows {
		byScope[row.ContinentKey] = append(byScope[row.ContinentKey], member(row.UserID, row.Score))
	}
	return byScope
}

func groupWeekly(rows []models.LeaderboardWeekly) map[int64][]redis.Z {
	byScope := map[int64][]redis.Z{}
	for _, row := range rows {
		byScope[row.ContinentKey] = append(byScope[row.ContinentKey], member(row.UserID, row.Score))
	}
	return byScope
}

func groupMonthly(rows []models.LeaderboardMonthly) map[int64][]redis.Z {
	byScope := map[int64][]redis.Z{}
	for _, row := range rows {
		byScope[row.ContinentKey] = append(byScope[row.ContinentKey], member(row.UserID, row.Score))
	}
	return byScope
}

func groupAllTime(rows []models.LeaderboardAllTime) map[int64][]redis.Z {
	byScope := map[int64][]redis.Z{}
	for _, row := range rows {
		byScope[row.ContinentKey] = append(byScope[row.ContinentKey], member(row.UserID, row.Score))
	}
	return byScope
}

func member(userID int64, score int) redis.Z {
	return redis.Z{Score: float64(score), Member: strconv.FormatInt(userID, 10)}
}
