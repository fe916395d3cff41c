package domain

import (
	"strconv"
	"strings"
)

// QuestionType distinguishes how a question is answered and evaluated.
type QuestionType string

const (
	// QuestionMCQ has exactly one correct option among several.
	QuestionMCQ QuestionType = "MCQ"
	// QuestionMSQ requires selecting every correct option and nothing else.
	QuestionMSQ QuestionType = "MSQ"
	// QuestionNAT is answered by typing a value compared against a canonical string.
	QuestionNAT QuestionType = "NAT"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionMSQ, QuestionNAT:
		return true
	}
	return false
}

// Difficulty is the requested difficulty of a generated quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Question is immutable once generated.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Options       []string     `json:"options"`
	CorrectAnswer []string     `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
	Topic         string       `json:"topic"`
}

// HasOption reports whether opt is one of the question's options.
func (q Question) HasOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// QuizConfig is what a player asks the generator for.
type QuizConfig struct {
	Topic         string     `json:"topic"`
	ExamType      string     `json:"examType"`
	Difficulty    Difficulty `json:"difficulty"`
	QuestionCount int        `json:"questionCount"`
}

const (
	DefaultQuestionCount = 5
	DefaultExamType      = "GATE"
)

// Normalize trims free-text fields and fills defaults for omitted values.
func (c QuizConfig) Normalize() QuizConfig {
	c.Topic = strings.TrimSpace(c.Topic)
	c.ExamType = strings.TrimSpace(c.ExamType)
	if c.ExamType == "" {
		c.ExamType = DefaultExamType
	}
	if c.Difficulty == "" {
		c.Difficulty = DifficultyMedium
	}
	if c.QuestionCount == 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	return c
}

// Validate checks a normalized config. maxCount <= 0 disables the upper bound.
func (c QuizConfig) Validate(maxCount int) error {
	if c.Topic == "" {
		return ErrInvalidConfig
	}
	if !c.Difficulty.Valid() {
		return ErrInvalidConfig
	}
	if c.QuestionCount < 1 || (maxCount > 0 && c.QuestionCount > maxCount) {
		return ErrInvalidConfig
	}
	return nil
}

// Key identifies requests that would produce interchangeable question sets.
func (c QuizConfig) Key() string {
	return strings.Join([]string{
		strings.ToLower(c.Topic),
		strings.ToUpper(c.ExamType),
		string(c.Difficulty),
		strconv.Itoa(c.QuestionCount),
	}, "|")
}

// AnswerRecord is appended exactly once per question.
type AnswerRecord struct {
	QuestionID      string   `json:"questionId"`
	SelectedOptions []string `json:"selectedOptions"`
	IsCorrect       bool     `json:"isCorrect"`
	TimeTaken       int      `json:"timeTaken"`
}

// Status is the lifecycle state of a player session.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusPlaying Status = "playing"
	StatusResults Status = "results"
)

// CanStart reports whether a new quiz may be requested from s.
func (s Status) CanStart() bool { return s == StatusIdle }

// CanRestart reports whether the last configuration may be replayed from s.
func (s Status) CanRestart() bool { return s == StatusResults }

// CanGoHome reports whether s has anything to discard.
func (s Status) CanGoHome() bool { return s != StatusIdle }
