package services

import (
	"testing"

	"flagquiz/internal/models"
)

func TestCalculatePoints(t *testing.T) {
	tests := []struct {
		name       string
		difficulty models.Difficulty
		isCorrect  bool
		timeTaken  int
		timeLimit  int
		want       int
	}{
		{"easy fast answer gets full bonus", models.DifficultyEasy, true, 10, 30, 15},
		{"easy mid answer gets half bonus", models.DifficultyEasy, true, 20, 30, 12},
		{"easy slow answer gets base only", models.DifficultyEasy, true, 25, 30, 10},
		{"medium fast", models.DifficultyMedium, true, 5, 30, 30},
		{"medium mid", models.DifficultyMedium, true, 20, 30, 25},
		{"medium slow", models.DifficultyMedium, true, 29, 30, 20},
		{"hard fast", models.DifficultyHard, true, 14, 30, 45},
		{"hard mid", models.DifficultyHard, true, 22, 30, 37},
		{"hard slow", models.DifficultyHard, true, 30, 30, 30},
		{"exact half ratio earns half bonus", models.DifficultyEasy, true, 15, 30, 12},
		{"exact three quarter ratio earns no bonus", models.DifficultyEasy, true, 45, 60, 10},
		{"instant answer", models.DifficultyMedium, true, 0, 30, 30},
		{"wrong answer earns nothing", models.DifficultyHard, false, 1, 30, 0},
		{"wrong slow answer earns nothing", models.DifficultyEasy, false, 29, 30, 0},
		{"zero time limit falls back to base", models.DifficultyMedium, true, 10, 0, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePoints(tt.difficulty, tt.isCorrect, tt.timeTaken, tt.timeLimit)
			if got != tt.want {
				t.Errorf("CalculatePoints(%s, %v, %d, %d) = %d, want %d", tt.difficulty, tt.isCorrect, tt.timeTaken, tt.timeLimit, got, tt.want)
			}
		})
	}
}
