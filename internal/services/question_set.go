package services

import (
	"flagquiz/internal/models"
	"flagquiz/internal/pkg"

	"github.com/google/uuid"
)

// BuildQuestionSet draws count answer countries from the pool and attaches
// shuffled options to each. Distractors come only from the answer's
// continent, up to three; a thin continent legitimately yields a narrower
// option set. The pool must exceed count by POOL_MARGIN.
func BuildQuestionSet(gameID string, pool []models.Country, count, timePerFlag int) ([]models.GameQuestion, error) {
	if len(pool) < count+POOL_MARGIN {
		return nil, ErrInsufficientPool
	}

	shuffled := pkg.Shuffle(pool)
	answers := shuffled[:count]

	questions := make([]models.GameQuestion, 0, count)
	for i, answer := range answers {
		distractors := pickDistractors(answer, pool)

		options := make([]models.QuestionOption, 0, len(distractors)+1)
		options = append(options, models.QuestionOption{CountryID: answer.ID, Name: answer.Name})
		for _, d := range distractors {
			options = append(options, models.QuestionOption{CountryID: d.ID, Name: d.Name})
		}

		questions = append(questions, models.GameQuestion{
			ID:             uuid.NewString(),
			GameID:         gameID,
			QuestionNumber: i + 1,
			CountryID:      answer.ID,
			Options:        pkg.Shuffle(options),
			TimeLimit:      timePerFlag,
		})
	}

	return questions, nil
}

// pickDistractors takes up to DISTRACTORS_PER_QUESTION countries sharing
// the answer's continent, chosen uniformly from the pool.
func pickDistractors(answer models.Country, pool []models.Country) []models.Country {
	sameContinent := make([]models.Country, 0, len(pool))
	for _, c := range pool {
		if c.ID != answer.ID && c.ContinentID == answer.ContinentID {
			sameContinent = append(sameContinent, c)
		}
	}

	sameContinent = pkg.Shuffle(sameContinent)
	if len(sameContinent) > DISTRACTORS_PER_QUESTION {
		sameContinent = sameContinent[:DISTRACTORS_PER_QUESTION]
	}
	return sameContinent
}
