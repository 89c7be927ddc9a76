package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz document could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrInvalidFormat is returned when a stored document matches none of the accepted shapes.
	ErrInvalidFormat = errors.New("invalid quiz format")
	// ErrEmptyQuiz is returned when a document normalizes to zero questions.
	ErrEmptyQuiz = errors.New("quiz has no questions")
	// ErrBadRequest indicates a payload is missing required fields.
	ErrBadRequest = errors.New("invalid payload")
	// ErrSubmissionNotFound is returned when a submission id has no record.
	ErrSubmissionNotFound = errors.New("submission not found")
)
