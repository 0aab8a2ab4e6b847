package redis_store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"flagquiz/internal/models"
	"flagquiz/internal/pkg/caching"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

// Mirror keys follow leaderboard:<kind>:<period key>:<scope key>. The
// all_time kind carries a fixed period segment so the shape stays uniform.
func dbKeyLeaderboard(kind models.PeriodKind, periodKey string, scope models.ContinentScope) string {
	return fmt.Sprintf("leaderboard:%s:%s:%d", kind, periodKey, scope.StorageKey())
}

func dbKeyLeaderboardKind(kind models.PeriodKind) string {
	return fmt.Sprintf("leaderboard:%s:*", kind)
}

func dbKeyRebuildMark() string {
	return "leaderboard:rebuild_mark"
}

func AddScore(ctx context.Context, cmd redis.Cmdable, kind models.PeriodKind, periodKey string, scope models.ContinentScope, userID int64, score int) error {
	return cmd.ZIncrBy(ctx, dbKeyLeaderboard(kind, periodKey, scope), float64(score), strconv.FormatInt(userID, 10)).Err()
}

// GetRank returns a zero-based rank. redis.Nil passes through when the user
// has no score in the bucket.
func GetRank(ctx context.Context, cmd redis.Cmdable, kind models.PeriodKind, periodKey string, scope models.ContinentScope, userID int64) (int64, error) {
	rank, err := cmd.ZRevRank(ctx, dbKeyLeaderboard(kind, periodKey, scope), strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return -1, err
	}

	return rank, nil
}

func GetScore(ctx context.Context, cmd redis.Cmdable, kind models.PeriodKind, periodKey string, scope models.ContinentScope, userID int64) (float64, error) {
	score, err := cmd.ZScore(ctx, dbKeyLeaderboard(kind, periodKey, scope), strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return -1, err
	}

	return score, nil
}

func GetRankWithScore(ctx context.Context, cmd redis.Cmdable, kind models.PeriodKind, periodKey string, scope models.ContinentScope, userID int64) (redis.RankScore, error) {
	rank, err := cmd.ZRevRankWithScore(ctx, dbKeyLeaderboard(kind, periodKey, scope), strconv.FormatInt(userID, 10)).Result()
	if err != nil {
		return redis.RankScore{}, err
	}

	return rank, nil
}

func GetParticipantsCount(ctx context.Context, cmd redis.Cmdable, kind models.PeriodKind, periodKey string, scope models.ContinentScope) (int64, error) {
	count, err := cmd.ZCard(ctx, dbKeyLeaderboard(kind, periodKey, scope)).Result()
	if err != nil {
		return 0, err
	}

	return count, nil
}

// ReplaceLeaderboard swaps a mirror bucket for a freshly built member set in
// one round trip. Scores accumulate per user before the pipeline runs so a
// user never loses a row to a later duplicate.
func ReplaceLeaderboard(ctx context.Context, cmd redis.Cmdable, kind models.PeriodKind, periodKey string, scope models.ContinentScope, members []redis.Z) error {
	key := dbKeyLeaderboard(kind, periodKey, scope)

	pipe := cmd.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		pipe.ZAdd(ctx, key, members...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// DeleteStaleKinds drops every bucket of a kind except the ones listed in
// keep. Expired daily and weekly buckets go away this way once the cron has
// moved on to the next period.
func DeleteStaleKinds(ctx context.Context, cmd redis.UniversalClient, kind models.PeriodKind, keep map[string]bool) error {
	iter := cmd.Scan(ctx, 0, dbKeyLeaderboardKind(kind), 0).Iterator()

	var stale []string
	for iter.Next(ctx) {
		if !keep[iter.Val()] {
			stale = append(stale, iter.Val())
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(stale) == 0 {
		return nil
	}

	return cmd.Del(ctx, stale...).Err()
}

func KeepKey(kind models.PeriodKind, periodKey string, scopes []models.ContinentScope) map[string]bool {
	keep := map[string]bool{}
	for _, scope := range scopes {
		keep[dbKeyLeaderboard(kind, periodKey, scope)] = true
	}
	return keep
}

func DeleteLeaderboards(ctx context.Context, cmd redis.UniversalClient) error {
	return caching.DeleteKeys(ctx, cmd, "leaderboard:*")
}

type RebuildMark struct {
	RanAt    time.Time `msgpack:"ran_at"`
	Duration int64     `msgpack:"duration_ms"`
	Buckets  int       `msgpack:"buckets"`
}

func SetRebuildMark(ctx context.Context, cmd redis.Cmdable, mark *RebuildMark) error {
	b, err := msgpack.Marshal(mark)
	if err != nil {
		return err
	}

	return cmd.Set(ctx, dbKeyRebuildMark(), b, 0).Err()
}

func GetRebuildMark(ctx context.Context, cmd redis.Cmdable) (*RebuildMark, error) {
	var v *RebuildMark
	b, err := cmd.Get(ctx, dbKeyRebuildMark()).Bytes()
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}
