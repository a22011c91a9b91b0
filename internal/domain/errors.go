package domain

import "errors"

var (
	// ErrLoadFailure is returned when the question source cannot be read.
	ErrLoadFailure = errors.New("question set could not be loaded")
	// ErrMalformedData indicates the question payload is not a non-empty list of valid questions.
	ErrMalformedData = errors.New("malformed question data")
	// ErrInvalidBestScore indicates a persisted best score is not a non-negative integer.
	ErrInvalidBestScore = errors.New("invalid best score value")
)
