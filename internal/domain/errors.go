package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a player session has not been opened.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrInvalidTransition is returned when an action is not allowed in the current status.
	ErrInvalidTransition = errors.New("action not allowed in current session status")
	// ErrInvalidConfig indicates a quiz request with a missing topic, bad difficulty or count.
	ErrInvalidConfig = errors.New("invalid quiz configuration")
	// ErrUnknownExamType indicates an exam pattern missing from the catalog.
	ErrUnknownExamType = errors.New("unknown exam type")
	// ErrEmptyQuestionSet is a precondition violation: a round needs at least one question.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrMalformedQuestion indicates a question that cannot be played.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrGenerationFailed wraps any failure of the question generator.
	ErrGenerationFailed = errors.New("question generation failed")
)
