package scoring

import "quiz-results-service/internal/domain"

// Score returns the attempt's percentage of correct answers, rounded half up.
// Questions without a matching answer entry count as unanswered. An attempt without
// questions scores 0.
func Score(attempt domain.Attempt) int {
	total := len(attempt.Questions)
	if total == 0 {
		return 0
	}
	return percent(CountCorrect(attempt), total)
}

// ScoreAttempt pairs an attempt with its computed score.
func ScoreAttempt(attempt domain.Attempt) domain.ScoredAttempt {
	return domain.ScoredAttempt{Attempt: attempt, Score: Score(attempt)}
}

// percent computes round(100*correct/total) with halves rounded up, in integers.
func percent(correct, total int) int {
	if total <= 0 || correct <= 0 {
		return 0
	}
	if correct > total {
		correct = total
	}
	return (200*correct + total) / (2 * total)
}

// answersByID indexes entries by question id; the first entry for an id wins.
func answersByID(entries []domain.AnswerEntry) map[int]domain.AnswerEntry {
	m := make(map[int]domain.AnswerEntry, len(entries))
	for _, e := range entries {
		if _, seen := m[e.ID]; !seen {
			m[e.ID] = e
		}
	}
	return m
}
