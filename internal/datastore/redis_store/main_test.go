package redis_store

import (
	"context"
	"errors"
	"testing"
	"time"

	"flagquiz/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	s := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: s.Addr()})
}

func TestAddScoreAccumulates(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	scope := models.GlobalScope()

	if err := AddScore(ctx, client, models.PeriodDaily, "2024-03-13", scope, 42, 100); err != nil {
		t.Fatalf("AddScore: %v", err)
	}
	if err := AddScore(ctx, client, models.PeriodDaily, "2024-03-13", scope, 42, 50); err != nil {
		t.Fatalf("AddScore: %v", err)
	}

	score, err := GetScore(ctx, client, models.PeriodDaily, "2024-03-13", scope, 42)
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if score != 150 {
		t.Errorf("score = %v, want 150", score)
	}
}

func TestGetRankOrdersByScore(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	scope := models.ContinentScopeOf(2)

	for user, score := range map[int64]int{1: 50, 2: 200, 3: 120} {
		if err := AddScore(ctx, client, models.PeriodWeekly, "2024-03-11", scope, user, score); err != nil {
			t.Fatalf("AddScore: %v", err)
		}
	}

	rank, err := GetRank(ctx, client, models.PeriodWeekly, "2024-03-11", scope, 2)
	if err != nil {
		t.Fatalf("GetRank: %v", err)
	}
	if rank != 0 {
		t.Errorf("top scorer rank = %d, want 0", rank)
	}

	rank, err = GetRank(ctx, client, models.PeriodWeekly, "2024-03-11", scope, 1)
	if err != nil {
		t.Fatalf("GetRank: %v", err)
	}
	if rank != 2 {
		t.Errorf("lowest scorer rank = %d, want 2", rank)
	}
}

func TestGetRankMissingUser(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	_, err := GetRank(ctx, client, models.PeriodAllTime, "all", models.GlobalScope(), 999)
	if !errors.Is(err, redis.Nil) {
		t.Errorf("expected redis.Nil for absent member, got %v", err)
	}
}

func TestScopesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	if err := AddScore(ctx, client, models.PeriodDaily, "2024-03-13", models.GlobalScope(), 7, 100); err != nil {
		t.Fatalf("AddScore: %v", err)
	}
	if err := AddScore(ctx, client, models.PeriodDaily, "2024-03-13", models.ContinentScopeOf(1), 7, 40); err != nil {
		t.Fatalf("AddScore: %v", err)
	}

	global, _ := GetScore(ctx, client, models.PeriodDaily, "2024-03-13", models.GlobalScope(), 7)
	scoped, _ := GetScore(ctx, client, models.PeriodDaily, "2024-03-13", models.ContinentScopeOf(1), 7)
	if global != 100 || scoped != 40 {
		t.Errorf("scores = (%v, %v), want (100, 40)", global, scoped)
	}
}

func TestReplaceLeaderboard(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	scope := models.GlobalScope()

	if err := AddScore(ctx, client, models.PeriodMonthly, "2024-03", scope, 1, 999); err != nil {
		t.Fatalf("AddScore: %v", err)
	}

	members := []redis.Z{
		{Score: 10, Member: "1"},
		{Score: 20, Member: "2"},
	}
	if err := ReplaceLeaderboard(ctx, client, models.PeriodMonthly, "2024-03", scope, members); err != nil {
		t.Fatalf("ReplaceLeaderboard: %v", err)
	}

	score, err := GetScore(ctx, client, models.PeriodMonthly, "2024-03", scope, 1)
	if err != nil {
		t.Fatalf("GetScore: %v", err)
	}
	if score != 10 {
		t.Errorf("stale score survived replace: %v", score)
	}

	count, err := GetParticipantsCount(ctx, client, models.PeriodMonthly, "2024-03", scope)
	if err != nil {
		t.Fatalf("GetParticipantsCount: %v", err)
	}
	if count != 2 {
		t.Errorf("participants = %d, want 2", count)
	}
}

func TestDeleteStaleKinds(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)
	scope := models.GlobalScope()

	if err := AddScore(ctx, client, models.PeriodDaily, "2024-03-12", scope, 1, 10); err != nil {
		t.Fatalf("AddScore: %v", err)
	}
	if err := AddScore(ctx, client, models.PeriodDaily, "2024-03-13", scope, 1, 10); err != nil {
		t.Fatalf("AddScore: %v", err)
	}
	if err := AddScore(ctx, client, models.PeriodWeekly, "2024-03-11", scope, 1, 10); err != nil {
		t.Fatalf("AddScore: %v", err)
	}

	keep := KeepKey(models.PeriodDaily, "2024-03-13", []models.ContinentScope{scope})
	if err := DeleteStaleKinds(ctx, client, models.PeriodDaily, keep); err != nil {
		t.Fatalf("DeleteStaleKinds: %v", err)
	}

	if _, err := GetScore(ctx, client, models.PeriodDaily, "2024-03-12", scope, 1); !errors.Is(err, redis.Nil) {
		t.Error("expired daily bucket should be gone")
	}
	if _, err := GetScore(ctx, client, models.PeriodDaily, "2024-03-13", scope, 1); err != nil {
		t.Errorf("current daily bucket should survive: %v", err)
	}
	if _, err := GetScore(ctx, client, models.PeriodWeekly, "2024-03-11", scope, 1); err != nil {
		t.Errorf("other kinds must be untouched: %v", err)
	}
}

func TestRebuildMarkRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	mark := &RebuildMark{RanAt: time.Date(2024, 3, 13, 4, 0, 0, 0, time.UTC), Duration: 120, Buckets: 9}
	if err := SetRebuildMark(ctx, client, mark); err != nil {
		t.Fatalf("SetRebuildMark: %v", err)
	}

	got, err := GetRebuildMark(ctx, client)
	if err != nil {
		t.Fatalf("GetRebuildMark: %v", err)
	}
	if !got.RanAt.Equal(mark.RanAt) || got.Duration != mark.Duration || got.Buckets != mark.Buckets {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, mark)
	}
}
