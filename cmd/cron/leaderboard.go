package main

import (
	"context"
	"log"
	"os"
	"time"

	"flagquiz/internal/services"

	"github.com/robfig/cron/v3"
)

const defaultRebuildSchedule = "*/10 * * * *"

type LeaderboardJob struct {
	service *services.ServiceLeaderboard
}

func NewLeaderboardJob(service *services.ServiceLeaderboard) *LeaderboardJob {
	return &LeaderboardJob{service: service}
}

// Start registers the mirror rebuild on the configured schedule and runs it
// once up front so a fresh deployment serves ranks immediately.
func (j *LeaderboardJob) Start(cronRunner *cron.Cron) error {
	schedule := os.Getenv("CRONJOB_TIME_LEADERBOARD")
	if schedule == "" {
		schedule = defaultRebuildSchedule
	}

	if _, err := cronRunner.AddFunc(schedule, j.rebuild); err != nil {
		return err
	}

	log.Println("Leaderboard cronjob scheduled:", schedule)
	j.rebuild()
	return nil
}

func (j *LeaderboardJob) rebuild() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Rebuilding leaderboard mirrors ...")
	if err := j.service.RebuildMirrors(ctx); err != nil {
		log.Println("leaderboard rebuild failed:", err)
		return
	}
	log.Println("Leaderboard mirrors rebuilt")
}
