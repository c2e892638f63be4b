// Package ranking derives leaderboards and progress series from historical attempts.
package ranking

import (
	"sort"
	"strings"
	"time"

	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/scoring"
)

// AllQuizzes disables the quiz filter.
const AllQuizzes = "all"

const msPerDay = int64(24 * time.Hour / time.Millisecond)

// Query selects which attempts take part in a leaderboard. Now is the reference
// instant for the time window and is captured once by the caller.
type Query struct {
	QuizName string
	Window   domain.Window
	Now      time.Time
}

// Build ranks each user's best attempt per quiz. The result maps quiz name to rows
// ordered by rank; it is a pure function of attempts and q.
func Build(attempts []domain.Attempt, q Query) map[string][]domain.LeaderboardRow {
	best := make(map[string]map[string]domain.ScoredAttempt)
	for _, a := range attempts {
		if !InWindow(a.QuizDone, q.Window, q.Now) || !matchesQuiz(a.QuizName, q.QuizName) {
			continue
		}
		scored := scoring.ScoreAttempt(a)

		byUser, ok := best[a.QuizName]
		if !ok {
			byUser = make(map[string]domain.ScoredAttempt)
			best[a.QuizName] = byUser
		}
		if current, ok := byUser[a.Username]; !ok || Outranks(scored, current) {
			byUser[a.Username] = scored
		}
	}

	boards := make(map[string][]domain.LeaderboardRow, len(best))
	for quiz, byUser := range best {
		boards[quiz] = Rank(byUser)
	}
	return boards
}

// Rank orders best attempts with Outranks and assigns 1-based ranks by position.
func Rank(byUser map[string]domain.ScoredAttempt) []domain.LeaderboardRow {
	selected := make([]domain.ScoredAttempt, 0, len(byUser))
	for _, s := range byUser {
		selected = append(selected, s)
	}
	sort.Slice(selected, func(i, j int) bool {
		return Outranks(selected[i], selected[j])
	})

	rows := make([]domain.LeaderboardRow, 0, len(selected))
	for i, s := range selected {
		rows = append(rows, domain.LeaderboardRow{
			Rank:      i + 1,
			Username:  s.Username,
			Score:     s.Score,
			QuizDone:  s.QuizDone,
			AttemptID: s.ID,
		})
	}
	return rows
}

// Outranks is the leaderboard comparator: higher score first, then the earlier
// completion, then username so that the order is total.
func Outranks(a, b domain.ScoredAttempt) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.QuizDone.Equal(b.QuizDone) {
		return a.QuizDone.Before(b.QuizDone)
	}
	if a.Username != b.Username {
		return a.Username < b.Username
	}
	return a.ID < b.ID
}

// InWindow reports whether an attempt finished at done falls inside w relative to now.
// Ages are whole days, truncated from the millisecond difference.
func InWindow(done time.Time, w domain.Window, now time.Time) bool {
	maxDays, limited := w.MaxAgeDays()
	if !limited {
		return true
	}
	days := now.Sub(done).Milliseconds() / msPerDay
	return days <= maxDays
}

func matchesQuiz(name, filter string) bool {
	if filter == "" || strings.EqualFold(filter, AllQuizzes) {
		return true
	}
	return name == filter
}

// QuizNames lists the distinct quiz names present in attempts, sorted.
func QuizNames(attempts []domain.Attempt) []string {
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, a := range attempts {
		if _, ok := seen[a.QuizName]; ok {
			continue
		}
		seen[a.QuizName] = struct{}{}
		names = append(names, a.QuizName)
	}
	sort.Strings(names)
	return names
}
