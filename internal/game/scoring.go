package game

import (
	"math"
	"strings"

	"exam-drill-service/internal/domain"
)

// Evaluate reports whether selection answers q. For NAT questions selection
// holds the single trimmed input.
func Evaluate(q domain.Question, selection []string) bool {
	switch q.Type {
	case domain.QuestionNAT:
		if len(selection) == 0 || len(q.CorrectAnswer) == 0 {
			return false
		}
		return strings.TrimSpace(selection[0]) == q.CorrectAnswer[0]
	case domain.QuestionMSQ:
		selected := toSet(selection)
		correct := toSet(q.CorrectAnswer)
		if len(selected) != len(correct) {
			return false
		}
		for opt := range selected {
			if _, ok := correct[opt]; !ok {
				return false
			}
		}
		return true
	case domain.QuestionMCQ:
		if len(selection) == 0 {
			return false
		}
		for _, c := range q.CorrectAnswer {
			if c == selection[0] {
				return true
			}
		}
	}
	return false
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// combo tracks the consecutive-correct multiplier as a step count so the
// value never drifts outside [1, ComboMax].
type combo struct {
	steps int
}

func (c combo) multiplier(cfg Config) float64 {
	return math.Min(1+float64(c.steps)*cfg.ComboStep, cfg.ComboMax)
}

func (c combo) bump(cfg Config) combo {
	if c.multiplier(cfg) < cfg.ComboMax {
		c.steps++
	}
	return c
}

// awardPoints returns the points for a correct answer with remaining time units left.
func awardPoints(cfg Config, remaining int, multiplier float64) float64 {
	timeBonus := math.Floor(float64(cfg.TimeBonus) * float64(remaining))
	return (float64(cfg.BasePoints) + timeBonus) * multiplier
}

// penalize applies the MCQ negative marking, clamped at zero.
func penalize(cfg Config, score float64, qt domain.QuestionType) float64 {
	if qt != domain.QuestionMCQ {
		return score
	}
	return math.Max(0, score-cfg.MCQPenalty)
}
