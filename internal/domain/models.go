package domain

import (
	"fmt"
	"strings"
	"time"
)

// Quiz is a catalog entry. Questions and Answers are the opaque JSON wire strings.
type Quiz struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	TimeLimit   int    `json:"time"`
	Questions   string `json:"questions"`
	Answers     string `json:"answers"`
}

// Record is an attempt as persisted: the questions and answers snapshots are opaque JSON.
type Record struct {
	ID        string    `json:"id"`
	QuizName  string    `json:"quizName"`
	Username  string    `json:"username"`
	Questions string    `json:"questions"`
	Answers   string    `json:"answers"`
	QuizDone  time.Time `json:"quizDone"`
}

// Attempt is a decoded, immutable quiz submission.
type Attempt struct {
	ID        string
	QuizName  string
	Username  string
	QuizDone  time.Time
	Questions []Question
	Answers   []AnswerEntry
}

// ScoredAttempt pairs an attempt with its recomputed percentage.
type ScoredAttempt struct {
	Attempt
	Score int
}

// LeaderboardRow is one ranked user in a quiz leaderboard.
type LeaderboardRow struct {
	Rank      int       `json:"rank"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	QuizDone  time.Time `json:"quizDone"`
	AttemptID string    `json:"attemptId,omitempty"`
}

// Leaderboard is the ranked view of a single quiz pushed to live subscribers.
type Leaderboard struct {
	QuizName  string           `json:"quizName"`
	Rows      []LeaderboardRow `json:"rows"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ProgressPoint is one entry of a user's score-over-time series.
type ProgressPoint struct {
	Date  time.Time `json:"date"`
	Score int       `json:"score"`
}

// Window restricts a leaderboard to recent attempts.
type Window string

const (
	WindowAll     Window = "all"
	WindowWeekly  Window = "weekly"
	WindowMonthly Window = "monthly"
)

// MaxAgeDays returns the inclusive age limit in whole days; ok is false for WindowAll.
func (w Window) MaxAgeDays() (days int64, ok bool) {
	switch w {
	case WindowWeekly:
		return 7, true
	case WindowMonthly:
		return 30, true
	}
	return 0, false
}

// ParseWindow maps a query value to a Window. Empty input means WindowAll.
func ParseWindow(raw string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(raw))); w {
	case "", WindowAll:
		return WindowAll, nil
	case WindowWeekly, WindowMonthly:
		return w, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidWindow, raw)
}
