package app

import (
	"fmt"
	"math"

	"exam-drill-service/internal/domain"
)

// Summarize builds the results review for a finished session. answers[i]
// belongs to questions[i].
func Summarize(questions []domain.Question, answers []domain.AnswerRecord, score float64) domain.Results {
	res := domain.Results{
		Score:   score,
		Total:   len(questions),
		Review:  make([]domain.ReviewEntry, 0, len(questions)),
		Timing:  make([]domain.TimingPoint, 0, len(answers)),
		Answers: append([]domain.AnswerRecord(nil), answers...),
	}

	totalTime := 0
	for i, a := range answers {
		totalTime += a.TimeTaken
		if a.IsCorrect {
			res.Correct++
		}
		res.Timing = append(res.Timing, domain.TimingPoint{
			Label:   fmt.Sprintf("Q%d", i+1),
			Time:    a.TimeTaken,
			Correct: a.IsCorrect,
		})
	}
	if res.Total > 0 {
		res.Accuracy = int(math.Round(float64(res.Correct) / float64(res.Total) * 100))
		res.AverageTime = int(math.Round(float64(totalTime) / float64(res.Total)))
	}

	for i, q := range questions {
		var a domain.AnswerRecord
		answered := i < len(answers)
		if answered {
			a = answers[i]
		}
		res.Review = append(res.Review, domain.ReviewEntry{
			Index:         i,
			QuestionID:    q.ID,
			Type:          q.Type,
			Text:          q.Text,
			CorrectAnswer: append([]string{}, q.CorrectAnswer...),
			YourAnswer:    append([]string{}, a.SelectedOptions...),
			Skipped:       !answered || skipped(a),
			Correct:       a.IsCorrect,
			TimeTaken:     a.TimeTaken,
			Explanation:   q.Explanation,
		})
	}
	return res
}

// skipped reports whether the player gave no answer at all; a NAT timeout
// records a single empty string.
func skipped(a domain.AnswerRecord) bool {
	for _, s := range a.SelectedOptions {
		if s != "" {
			return false
		}
	}
	return true
}
