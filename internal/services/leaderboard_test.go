package services

import (
	"testing"
	"time"

	"flagquiz/internal/models"
)

func TestCurrentPeriodKey(t *testing.T) {
	// Wednesday 2024-03-13 noon UTC.
	now := time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		kind models.PeriodKind
		want string
	}{
		{models.PeriodDaily, "2024-03-13"},
		{models.PeriodWeekly, "2024-03-11"},
		{models.PeriodMonthly, "2024-03"},
		{models.PeriodAllTime, "all"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := CurrentPeriodKey(tt.kind, now); got != tt.want {
				t.Errorf("CurrentPeriodKey(%s) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestValidatePeriodKey(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.PeriodKind
		key     string
		wantErr bool
	}{
		{"daily date", models.PeriodDaily, "2024-03-13", false},
		{"daily garbage", models.PeriodDaily, "13/03/2024", true},
		{"weekly monday", models.PeriodWeekly, "2024-03-11", false},
		{"monthly", models.PeriodMonthly, "2024-03", false},
		{"monthly day format", models.PeriodMonthly, "2024-03-01", true},
		{"alltime anything", models.PeriodAllTime, "all", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePeriodKey(tt.kind, tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePeriodKey(%s, %q) error = %v, wantErr %v", tt.kind, tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestAssignRanks(t *testing.T) {
	entries := []models.LeaderboardEntry{
		{UserID: 3, Score: 300},
		{UserID: 1, Score: 250},
		{UserID: 2, Score: 250},
	}

	ranked := AssignRanks(entries, 0)
	for i, want := range []int{1, 2, 3} {
		if ranked[i].Rank != want {
			t.Errorf("entry %d: rank = %d, want %d", i, ranked[i].Rank, want)
		}
	}

	// Second page continues from the offset.
	page2 := AssignRanks([]models.LeaderboardEntry{{UserID: 9, Score: 10}}, 20)
	if page2[0].Rank != 21 {
		t.Errorf("offset page rank = %d, want 21", page2[0].Rank)
	}
}

func TestAssignRanksEmpty(t *testing.T) {
	if got := AssignRanks(nil, 0); len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}
