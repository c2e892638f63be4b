package ranking

import (
	"sort"

	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/scoring"
)

// Series returns the user's scores on one quiz in completion order.
func Series(attempts []domain.Attempt, quizName, username string) []domain.ProgressPoint {
	mine := make([]domain.Attempt, 0)
	for _, a := range attempts {
		if a.QuizName == quizName && a.Username == username {
			mine = append(mine, a)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].QuizDone.Before(mine[j].QuizDone)
	})

	points := make([]domain.ProgressPoint, 0, len(mine))
	for _, a := range mine {
		points = append(points, domain.ProgressPoint{Date: a.QuizDone, Score: scoring.Score(a)})
	}
	return points
}
