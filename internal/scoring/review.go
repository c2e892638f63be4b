package scoring

import (
	"fmt"
	"strings"

	"quiz-results-service/internal/domain"
)

const noAnswer = "No answer"

// QuestionReview is the per-question breakdown of a finished attempt.
type QuestionReview struct {
	ID         int                 `json:"id"`
	Type       domain.QuestionType `json:"type"`
	Prompt     string              `json:"prompt"`
	Options    []string            `json:"options,omitempty"`
	UserAnswer string              `json:"userAnswer"`
	Correct    string              `json:"correctAnswer"`
	IsCorrect  bool                `json:"isCorrect"`
}

// Review renders each question of the attempt with the user's and the expected answer.
func Review(attempt domain.Attempt) []QuestionReview {
	answers := answersByID(attempt.Answers)
	out := make([]QuestionReview, 0, len(attempt.Questions))
	for _, q := range attempt.Questions {
		entry := answers[q.ID]
		out = append(out, QuestionReview{
			ID:         q.ID,
			Type:       q.Type,
			Prompt:     q.Prompt,
			Options:    q.Options,
			UserAnswer: render(q, entry.UserAnswer),
			Correct:    render(q, entry.Correct),
			IsCorrect:  IsCorrect(q.Type, entry.UserAnswer, entry.Correct),
		})
	}
	return out
}

func render(q domain.Question, v domain.Value) string {
	switch a := v.(type) {
	case nil:
		return noAnswer
	case domain.SingleAnswer:
		return optionLabel(q.Options, int(a))
	case domain.MultipleAnswer:
		labels := make([]string, 0, len(a))
		for _, i := range a {
			labels = append(labels, optionLabel(q.Options, i))
		}
		return strings.Join(labels, ", ")
	case domain.BoolAnswer:
		if a {
			return "True"
		}
		return "False"
	case domain.TextAnswer:
		if a == "" {
			return noAnswer
		}
		return string(a)
	}
	return noAnswer
}

func optionLabel(options []string, i int) string {
	if i >= 0 && i < len(options) {
		return options[i]
	}
	return fmt.Sprintf("Option %d", i)
}
