package ranking

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"quiz-results-service/internal/domain"
)

var now = time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC)

// attemptScoring builds a ten-question true/false attempt answered correctly score/10 times.
func attemptScoring(id, quiz, user string, score int, done time.Time) domain.Attempt {
	questions := make([]domain.Question, 10)
	answers := make([]domain.AnswerEntry, 10)
	for i := range questions {
		questions[i] = domain.Question{ID: i + 1, Type: domain.TypeTrueFalse, Prompt: fmt.Sprintf("q%d", i+1)}
		answers[i] = domain.AnswerEntry{ID: i + 1, Correct: domain.BoolAnswer(true), UserAnswer: domain.BoolAnswer(i < score/10)}
	}
	return domain.Attempt{ID: id, QuizName: quiz, Username: user, QuizDone: done, Questions: questions, Answers: answers}
}

func TestBuildTieBreakByEarliestCompletion(t *testing.T) {
	t1 := now.Add(-2 * time.Hour)
	t2 := now.Add(-1 * time.Hour)
	attempts := []domain.Attempt{
		attemptScoring("b", "Geo", "userB", 80, t2),
		attemptScoring("a", "Geo", "userA", 80, t1),
	}

	rows := Build(attempts, Query{Window: domain.WindowAll, Now: now})["Geo"]
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].Username != "userA" || rows[0].Rank != 1 || rows[1].Username != "userB" || rows[1].Rank != 2 {
		t.Fatalf("expected userA ahead of userB, got %+v", rows)
	}
}

func TestBuildSelectsBestAttempt(t *testing.T) {
	attempts := []domain.Attempt{
		attemptScoring("1", "Geo", "alice", 60, now.Add(-3*time.Hour)),
		attemptScoring("2", "Geo", "alice", 90, now.Add(-2*time.Hour)),
		attemptScoring("3", "Geo", "alice", 90, now.Add(-1*time.Hour)),
		attemptScoring("4", "Geo", "bob", 70, now.Add(-1*time.Hour)),
	}

	rows := Build(attempts, Query{Window: domain.WindowAll, Now: now})["Geo"]
	if len(rows) != 2 {
		t.Fatalf("expected one row per user, got %+v", rows)
	}
	if rows[0].Username != "alice" || rows[0].Score != 90 || rows[0].AttemptID != "2" {
		t.Fatalf("expected alice's earliest 90, got %+v", rows[0])
	}
	if rows[1].Username != "bob" || rows[1].Score != 70 {
		t.Fatalf("unexpected second row %+v", rows[1])
	}
}

func TestBuildTimeWindow(t *testing.T) {
	old := attemptScoring("old", "Geo", "alice", 50, now.Add(-10*24*time.Hour))

	tests := []struct {
		window domain.Window
		want   int
	}{
		{domain.WindowWeekly, 0},
		{domain.WindowMonthly, 1},
		{domain.WindowAll, 1},
	}
	for _, tt := range tests {
		boards := Build([]domain.Attempt{old}, Query{Window: tt.window, Now: now})
		if got := len(boards["Geo"]); got != tt.want {
			t.Fatalf("window %s: expected %d rows, got %d", tt.window, tt.want, got)
		}
	}
}

func TestInWindowUsesWholeDays(t *testing.T) {
	if !InWindow(now.Add(-7*24*time.Hour-time.Hour), domain.WindowWeekly, now) {
		t.Fatalf("7 days and one hour truncates to 7 days and should be included")
	}
	if InWindow(now.Add(-8*24*time.Hour), domain.WindowWeekly, now) {
		t.Fatalf("8 days should be excluded from weekly")
	}
	if !InWindow(now.Add(time.Hour), domain.WindowWeekly, now) {
		t.Fatalf("future timestamps are within any window")
	}
}

func TestBuildQuizFilter(t *testing.T) {
	attempts := []domain.Attempt{
		attemptScoring("1", "Geo", "alice", 60, now),
		attemptScoring("2", "History", "alice", 60, now),
	}

	if boards := Build(attempts, Query{QuizName: "History", Window: domain.WindowAll, Now: now}); len(boards) != 1 || boards["History"] == nil {
		t.Fatalf("expected only History, got %+v", boards)
	}
	if boards := Build(attempts, Query{QuizName: "all", Window: domain.WindowAll, Now: now}); len(boards) != 2 {
		t.Fatalf("sentinel all should keep every quiz, got %+v", boards)
	}
	if boards := Build(nil, Query{Now: now}); len(boards) != 0 {
		t.Fatalf("expected empty mapping, got %+v", boards)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	attempts := []domain.Attempt{
		attemptScoring("1", "Geo", "carol", 70, now.Add(-time.Hour)),
		attemptScoring("2", "Geo", "alice", 70, now.Add(-time.Hour)),
		attemptScoring("3", "Geo", "bob", 90, now.Add(-2*time.Hour)),
		attemptScoring("4", "History", "bob", 40, now.Add(-3*time.Hour)),
	}
	q := Query{Window: domain.WindowMonthly, Now: now}

	first, err := json.Marshal(Build(attempts, q))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := json.Marshal(Build(attempts, q))
		if string(again) != string(first) {
			t.Fatalf("leaderboard changed between runs:\n%s\n%s", first, again)
		}
	}

	rows := Build(attempts, q)["Geo"]
	if rows[1].Username != "alice" || rows[2].Username != "carol" {
		t.Fatalf("equal score and time should fall back to username, got %+v", rows)
	}
}

func TestBuildSurvivesMalformedAttempt(t *testing.T) {
	attempts := []domain.Attempt{
		{ID: "broken", QuizName: "Geo", Username: "mallory", QuizDone: now},
		attemptScoring("ok", "Geo", "alice", 50, now),
	}
	rows := Build(attempts, Query{Now: now})["Geo"]
	if len(rows) != 2 || rows[1].Username != "mallory" || rows[1].Score != 0 {
		t.Fatalf("malformed attempt should rank with score 0, got %+v", rows)
	}
}

func TestOutranks(t *testing.T) {
	early := domain.ScoredAttempt{Attempt: domain.Attempt{Username: "b", QuizDone: now.Add(-time.Minute)}, Score: 50}
	late := domain.ScoredAttempt{Attempt: domain.Attempt{Username: "a", QuizDone: now}, Score: 50}
	high := domain.ScoredAttempt{Attempt: domain.Attempt{Username: "c", QuizDone: now}, Score: 51}

	if !Outranks(high, early) || Outranks(early, high) {
		t.Fatalf("higher score must win")
	}
	if !Outranks(early, late) || Outranks(late, early) {
		t.Fatalf("earlier completion must win on equal score")
	}
}

func TestQuizNames(t *testing.T) {
	got := QuizNames([]domain.Attempt{{QuizName: "b"}, {QuizName: "a"}, {QuizName: "b"}})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected names %v", got)
	}
}
