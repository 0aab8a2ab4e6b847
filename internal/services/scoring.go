package services

import "flagquiz/internal/models"

var basePoints = map[models.Difficulty]int{
	models.DifficultyEasy:   10,
	models.DifficultyMedium: 20,
	models.DifficultyHard:   30,
}

var maxBonusPoints = map[models.Difficulty]int{
	models.DifficultyEasy:   5,
	models.DifficultyMedium: 10,
	models.DifficultyHard:   15,
}

// CalculatePoints scores a single answer. A wrong answer earns nothing. A
// correct one earns the difficulty base plus a speed bonus: the full bonus
// under half the time limit, half of it (rounded down) under three quarters,
// nothing after that.
func CalculatePoints(difficulty models.Difficulty, isCorrect bool, timeTaken, timeLimit int) int {
	if !isCorrect {
		return 0
	}

	base := basePoints[difficulty]
	bonus := maxBonusPoints[difficulty]

	if timeLimit <= 0 {
		return base
	}

	ratio := float64(timeTaken) / float64(timeLimit)
	switch {
	case ratio < 0.5:
		return base + bonus
	case ratio < 0.75:
		return base + bonus/2
	default:
		return base
	}
}
