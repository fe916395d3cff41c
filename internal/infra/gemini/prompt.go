package gemini

import (
	"fmt"
	"strings"

	"exam-drill-service/internal/domain"
	"exam-drill-service/internal/exam"
)

// SystemInstruction describes the question setter persona and the rules the
// model has to follow for cfg.
func SystemInstruction(cfg domain.QuizConfig, catalog *exam.Catalog) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert question setter for Indian competitive exams like %s.\n", cfg.ExamType)
	fmt.Fprintf(&b, "Your goal is to generate high-quality, exam-relevant questions on the topic: %q.\n\n", cfg.Topic)
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "1. Difficulty level: %s.\n", cfg.Difficulty)
	fmt.Fprintf(&b, "2. Total questions: %d.\n", cfg.QuestionCount)
	b.WriteString("3. Include a mix of question types if appropriate for the topic, but prioritize:\n")
	for _, p := range catalog.Patterns() {
		fmt.Fprintf(&b, "   - %s: %s\n", p.Code, p.Rule)
	}
	if pattern, err := catalog.Lookup(cfg.ExamType); err == nil && len(pattern.Types) > 0 {
		types := make([]string, 0, len(pattern.Types))
		for _, t := range pattern.Types {
			types = append(types, string(t))
		}
		fmt.Fprintf(&b, "   Only use these question types for %s: %s.\n", pattern.Code, strings.Join(types, ", "))
	}
	b.WriteString("4. For NAT (numerical answer type) do not provide options. The user must type the number.\n")
	b.WriteString("5. For MSQ (multiple select) ensure multiple options can be correct.\n")
	b.WriteString("6. Correct answers for MCQ and MSQ must be copied exactly from the options.\n")
	b.WriteString("7. Provide clear, step-by-step explanations for the solutions.\n")
	b.WriteString("8. Test application of concepts, not just memorization.\n")
	b.WriteString("9. For spatial or visual topics, describe the scenario in text.\n")
	return b.String()
}

// UserPrompt is the request turn sent with the system instruction.
func UserPrompt(cfg domain.QuizConfig) string {
	return fmt.Sprintf("Generate %d %s level questions for %s focusing on %s pattern.",
		cfg.QuestionCount, cfg.Difficulty, cfg.Topic, cfg.ExamType)
}
