package domain

import "fmt"

// QuestionView is a question as shown to a player. Correct answers and the
// explanation are only filled in once the question has been answered.
type QuestionView struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	Options       []string     `json:"options"`
	Topic         string       `json:"topic"`
	CorrectAnswer []string     `json:"correctAnswer,omitempty"`
	Explanation   string       `json:"explanation,omitempty"`
}

// NewQuestionView builds the player-facing view of q.
func NewQuestionView(q Question, reveal bool) QuestionView {
	v := QuestionView{
		ID:      q.ID,
		Type:    q.Type,
		Text:    q.Text,
		Options: append([]string{}, q.Options...),
		Topic:   q.Topic,
	}
	if reveal {
		v.CorrectAnswer = append([]string{}, q.CorrectAnswer...)
		v.Explanation = q.Explanation
	}
	return v
}

// RoundView is a read-only snapshot of the round engine.
type RoundView struct {
	Index      int           `json:"index"`
	Total      int           `json:"total"`
	Question   QuestionView  `json:"question"`
	Remaining  int           `json:"remaining"`
	Score      float64       `json:"score"`
	Streak     int           `json:"streak"`
	Combo      float64       `json:"combo"`
	Selection  []string      `json:"selection"`
	Input      string        `json:"input"`
	Answered   bool          `json:"answered"`
	LastAnswer *AnswerRecord `json:"lastAnswer,omitempty"`
	Finished   bool          `json:"finished"`
}

// SessionView is what a connected client renders.
type SessionView struct {
	SessionID string      `json:"sessionId"`
	Status    Status      `json:"status"`
	Notice    string      `json:"notice,omitempty"`
	Config    *QuizConfig `json:"config,omitempty"`
	Round     *RoundView  `json:"round,omitempty"`
	Results   *Results    `json:"results,omitempty"`
}

// ReviewEntry is one line of the post-game solutions review.
type ReviewEntry struct {
	Index         int          `json:"index"`
	QuestionID    string       `json:"questionId"`
	Type          QuestionType `json:"type"`
	Text          string       `json:"text"`
	CorrectAnswer []string     `json:"correctAnswer"`
	YourAnswer    []string     `json:"yourAnswer"`
	Skipped       bool         `json:"skipped"`
	Correct       bool         `json:"correct"`
	TimeTaken     int          `json:"timeTaken"`
	Explanation   string       `json:"explanation"`
}

// TimingPoint is a per-question sample for the speed analysis chart.
type TimingPoint struct {
	Label   string `json:"label"`
	Time    int    `json:"time"`
	Correct bool   `json:"correct"`
}

// Results summarizes a finished session.
type Results struct {
	Score       float64        `json:"score"`
	Correct     int            `json:"correct"`
	Total       int            `json:"total"`
	Accuracy    int            `json:"accuracy"`
	AverageTime int            `json:"averageTime"`
	Review      []ReviewEntry  `json:"review"`
	Timing      []TimingPoint  `json:"timing"`
	Answers     []AnswerRecord `json:"answers"`
}

// CheckPlayable returns ErrMalformedQuestion (wrapped with the reason) when q
// cannot be driven through a round.
func CheckPlayable(q Question) error {
	if q.ID == "" || q.Text == "" {
		return fmt.Errorf("%w: missing id or text", ErrMalformedQuestion)
	}
	if len(q.CorrectAnswer) == 0 {
		return fmt.Errorf("%w: question %s has no correct answer", ErrMalformedQuestion, q.ID)
	}
	switch q.Type {
	case QuestionNAT:
		if len(q.CorrectAnswer) != 1 {
			return fmt.Errorf("%w: NAT question %s needs exactly one answer", ErrMalformedQuestion, q.ID)
		}
	case QuestionMCQ, QuestionMSQ:
		if len(q.Options) == 0 {
			return fmt.Errorf("%w: %s question %s has no options", ErrMalformedQuestion, q.Type, q.ID)
		}
	default:
		return fmt.Errorf("%w: question %s has unknown type %q", ErrMalformedQuestion, q.ID, q.Type)
	}
	return nil
}
