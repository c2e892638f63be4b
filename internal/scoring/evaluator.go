// Package scoring evaluates answers and reduces attempts to percentage scores.
package scoring

import (
	"strings"

	"quiz-results-service/internal/domain"
)

// IsCorrect reports whether user matches correct for a question of type t.
// Absent values, mistyped values and unknown question types are never correct.
func IsCorrect(t domain.QuestionType, user, correct domain.Value) bool {
	if user == nil || correct == nil {
		return false
	}
	switch t {
	case domain.TypeSingle:
		u, uok := user.(domain.SingleAnswer)
		c, cok := correct.(domain.SingleAnswer)
		return uok && cok && u == c
	case domain.TypeMultiple:
		u, uok := user.(domain.MultipleAnswer)
		c, cok := correct.(domain.MultipleAnswer)
		return uok && cok && sameSet(u, c)
	case domain.TypeTrueFalse:
		u, uok := user.(domain.BoolAnswer)
		c, cok := correct.(domain.BoolAnswer)
		return uok && cok && u == c
	case domain.TypeText:
		u, uok := user.(domain.TextAnswer)
		c, cok := correct.(domain.TextAnswer)
		return uok && cok && textMatches(string(u), string(c))
	}
	return false
}

func sameSet(a, b []int) bool {
	as, bs := toSet(a), toSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func toSet(values []int) map[int]struct{} {
	m := make(map[int]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// textMatches compares trimmed, case-folded text. Empty strings never match.
func textMatches(user, correct string) bool {
	u := strings.TrimSpace(user)
	c := strings.TrimSpace(correct)
	if u == "" || c == "" {
		return false
	}
	return strings.EqualFold(u, c)
}
