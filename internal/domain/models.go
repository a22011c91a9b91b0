package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBestScoreKey is the fixed key the best score is stored under.
const DefaultBestScoreKey = "bestScore"

// Question models a multiple-choice question with exactly one correct option.
type Question struct {
	Prompt  string   `json:"question" validate:"required"`
	Options []string `json:"options" validate:"min=2,unique,dive,required"`
	Answer  string   `json:"answer" validate:"required"`
}

// HasOption reports whether choice is one of the question's options.
func (q Question) HasOption(choice string) bool {
	for _, opt := range q.Options {
		if opt == choice {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no backing arrays with q.
func (q Question) Clone() Question {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return Question{Prompt: q.Prompt, Options: options, Answer: q.Answer}
}

// ParseBestScore decodes a persisted best score. An empty value means no record yet.
func ParseBestScore(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidBestScore, raw)
	}
	return n, nil
}

// FormatBestScore encodes a best score the way stores persist it.
func FormatBestScore(score int) string {
	if score < 0 {
		score = 0
	}
	return strconv.Itoa(score)
}
