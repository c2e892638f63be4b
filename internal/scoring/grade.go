package scoring

import "quiz-results-service/internal/domain"

// Grade builds the answer snapshot stored on a new attempt: one entry per question,
// carrying the authoritative key next to what the user submitted. An unanswered
// multiple choice question is stored as the empty selection; other unanswered
// questions get a nil user answer.
func Grade(questions []domain.Question, keys []domain.AnswerKey, submitted []domain.SubmittedAnswer) []domain.AnswerEntry {
	keyByID := make(map[int]domain.Value, len(keys))
	for _, k := range keys {
		if _, seen := keyByID[k.ID]; !seen {
			keyByID[k.ID] = k.Correct
		}
	}
	userByID := make(map[int]domain.Value, len(submitted))
	for _, s := range submitted {
		if _, seen := userByID[s.ID]; !seen {
			userByID[s.ID] = s.UserAnswer
		}
	}

	entries := make([]domain.AnswerEntry, 0, len(questions))
	for _, q := range questions {
		user := userByID[q.ID]
		if user == nil && q.Type == domain.TypeMultiple {
			user = domain.MultipleAnswer{}
		}
		entries = append(entries, domain.AnswerEntry{
			ID:         q.ID,
			Correct:    keyByID[q.ID],
			UserAnswer: user,
		})
	}
	return entries
}

// CountCorrect returns how many questions of the attempt were answered correctly.
func CountCorrect(attempt domain.Attempt) int {
	answers := answersByID(attempt.Answers)
	n := 0
	for _, q := range attempt.Questions {
		if e, ok := answers[q.ID]; ok && IsCorrect(q.Type, e.UserAnswer, e.Correct) {
			n++
		}
	}
	return n
}
