package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"exam-drill-service/internal/domain"
	"github.com/google/uuid"
)

type rawQuestion struct {
	ID            string   `json:"id"`
	Type          string   `json:"type"`
	Text          string   `json:"text"`
	Options       []string `json:"options"`
	CorrectAnswer []string `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// ParseQuiz decodes a {"quiz": [...]} document and keeps the playable items
// whose type is in allowed (any type when allowed is empty). Each dropped item
// is reported in dropped. Ids are replaced with fresh UUIDs, topic comes from
// cfg, and the set is cut to cfg.QuestionCount.
func ParseQuiz(data []byte, cfg domain.QuizConfig, allowed []domain.QuestionType) (questions []domain.Question, dropped []error, err error) {
	var doc struct {
		Quiz []rawQuestion `json:"quiz"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: decode quiz: %v", domain.ErrGenerationFailed, err)
	}

	for i, raw := range doc.Quiz {
		q, err := raw.toQuestion(cfg.Topic)
		if err == nil && !typeAllowed(q.Type, allowed) {
			err = fmt.Errorf("%w: %s is not used by %s", domain.ErrMalformedQuestion, q.Type, cfg.ExamType)
		}
		if err != nil {
			dropped = append(dropped, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		questions = append(questions, q)
	}
	if cfg.QuestionCount > 0 && len(questions) > cfg.QuestionCount {
		questions = questions[:cfg.QuestionCount]
	}
	if len(questions) == 0 {
		return nil, dropped, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, domain.ErrEmptyQuestionSet)
	}
	return questions, dropped, nil
}

func (r rawQuestion) toQuestion(topic string) (domain.Question, error) {
	q := domain.Question{
		ID:            uuid.NewString(),
		Type:          domain.QuestionType(strings.ToUpper(strings.TrimSpace(r.Type))),
		Text:          strings.TrimSpace(r.Text),
		Options:       trimAll(r.Options),
		CorrectAnswer: trimAll(r.CorrectAnswer),
		Explanation:   strings.TrimSpace(r.Explanation),
		Topic:         topic,
	}
	if q.Explanation == "" {
		return q, fmt.Errorf("%w: missing explanation", domain.ErrMalformedQuestion)
	}
	if q.Type == domain.QuestionNAT {
		q.Options = nil
	}
	if err := domain.CheckPlayable(q); err != nil {
		return q, err
	}
	switch q.Type {
	case domain.QuestionMCQ:
		if len(q.CorrectAnswer) != 1 {
			return q, fmt.Errorf("%w: MCQ needs exactly one correct answer", domain.ErrMalformedQuestion)
		}
	case domain.QuestionNAT:
		if q.CorrectAnswer[0] == "" {
			return q, fmt.Errorf("%w: NAT answer is blank", domain.ErrMalformedQuestion)
		}
	}
	if q.Type != domain.QuestionNAT {
		for _, ans := range q.CorrectAnswer {
			if !q.HasOption(ans) {
				return q, fmt.Errorf("%w: answer %q is not an option", domain.ErrMalformedQuestion, ans)
			}
		}
	}
	return q, nil
}

func typeAllowed(t domain.QuestionType, allowed []domain.QuestionType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
