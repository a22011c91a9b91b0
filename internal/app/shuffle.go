package app

import (
	"math/rand"

	"quiz-runner/internal/domain"
)

// Shuffle returns a Fisher-Yates permutation of questions; the input slice is left untouched.
func Shuffle(questions []domain.Question, rnd *rand.Rand) []domain.Question {
	shuffled := make([]domain.Question, len(questions))
	copy(shuffled, questions)

	for i := len(shuffled) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}
