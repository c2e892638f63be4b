package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"quiz-results-service/internal/codec"
	"quiz-results-service/internal/domain"
	"quiz-results-service/internal/ranking"
	"quiz-results-service/internal/scoring"
)

// AttemptRepository stores raw attempt records (in-memory, Redis, Postgres).
type AttemptRepository interface {
	Add(ctx context.Context, rec domain.Record) error
	List(ctx context.Context) ([]domain.Record, error)
	ListByUser(ctx context.Context, username string) ([]domain.Record, error)
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Submission is a user's raw answers to one quiz.
type Submission struct {
	QuizID   string
	Username string
	Answers  []byte
}

// SubmissionResult summarizes a recorded attempt.
type SubmissionResult struct {
	AttemptID string           `json:"attemptId"`
	QuizName  string           `json:"quizName"`
	Score     int              `json:"score"`
	Correct   int              `json:"correct"`
	Total     int              `json:"total"`
	QuizDone  time.Time        `json:"quizDone"`
	Anomalies []domain.Anomaly `json:"anomalies,omitempty"`
}

// ResultService records attempts and serves the views derived from them.
// Scores are never stored; every read recomputes them from the attempt snapshots.
type ResultService struct {
	attempts AttemptRepository
	quizzes  QuizRepository
	hub      *Hub
	now      func() time.Time
	log      zerolog.Logger
}

// NewResultService builds a service stamping attempts with the wall clock.
func NewResultService(attempts AttemptRepository, quizzes QuizRepository, log zerolog.Logger) *ResultService {
	return NewResultServiceWithClock(attempts, quizzes, log, time.Now)
}

// NewResultServiceWithClock allows deterministic timestamps in tests.
func NewResultServiceWithClock(attempts AttemptRepository, quizzes QuizRepository, log zerolog.Logger, now func() time.Time) *ResultService {
	return &ResultService{
		attempts: attempts,
		quizzes:  quizzes,
		hub:      NewHub(),
		now:      now,
		log:      log.With().Str("component", "result_service").Logger(),
	}
}

// Submit grades the answers against the quiz's current key and stores the attempt
// with its question and answer snapshots.
func (s *ResultService) Submit(ctx context.Context, sub Submission) (SubmissionResult, error) {
	if sub.Username == "" {
		return SubmissionResult{}, domain.ErrMissingUser
	}
	quiz, err := s.quizzes.GetQuiz(ctx, sub.QuizID)
	if err != nil {
		return SubmissionResult{}, err
	}

	questions := codec.DecodeQuestions(quiz.Questions)
	keys, keyAnomalies := codec.DecodeAnswerKeys(quiz.Answers, questions)
	if len(keyAnomalies) > 0 {
		s.log.Warn().Str("quiz", quiz.ID).Int("anomalies", len(keyAnomalies)).Msg("answer key defaulted")
	}
	submitted, anomalies := codec.DecodeSubmission(sub.Answers, questions)
	entries := scoring.Grade(questions, keys, submitted)

	questionsJSON, err := codec.EncodeQuestions(questions)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("encode questions: %w", err)
	}
	answersJSON, err := codec.EncodeAnswers(entries)
	if err != nil {
		return SubmissionResult{}, fmt.Errorf("encode answers: %w", err)
	}

	rec := domain.Record{
		ID:        uuid.NewString(),
		QuizName:  quiz.Name,
		Username:  sub.Username,
		Questions: questionsJSON,
		Answers:   answersJSON,
		QuizDone:  s.now().UTC(),
	}
	if err := s.attempts.Add(ctx, rec); err != nil {
		return SubmissionResult{}, fmt.Errorf("store attempt: %w", err)
	}

	attempt := domain.Attempt{
		ID:        rec.ID,
		QuizName:  rec.QuizName,
		Username:  rec.Username,
		QuizDone:  rec.QuizDone,
		Questions: questions,
		Answers:   entries,
	}
	result := SubmissionResult{
		AttemptID: rec.ID,
		QuizName:  rec.QuizName,
		Score:     scoring.Score(attempt),
		Correct:   scoring.CountCorrect(attempt),
		Total:     len(questions),
		QuizDone:  rec.QuizDone,
		Anomalies: anomalies,
	}
	s.log.Debug().
		Str("attempt", rec.ID).
		Str("quiz", rec.QuizName).
		Str("user", rec.Username).
		Int("score", result.Score).
		Msg("attempt recorded")

	if s.hub.HasSubscribers(rec.QuizName) {
		if lb, err := s.liveLeaderboard(ctx, rec.QuizName); err == nil {
			s.hub.Publish(lb)
		} else {
			s.log.Warn().Err(err).Str("quiz", rec.QuizName).Msg("leaderboard refresh failed")
		}
	}
	return result, nil
}

// Leaderboard ranks the best attempt of each user per quiz.
func (s *ResultService) Leaderboard(ctx context.Context, quizName string, window domain.Window) (map[string][]domain.LeaderboardRow, error) {
	attempts, err := s.allAttempts(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.Build(attempts, ranking.Query{QuizName: quizName, Window: window, Now: s.now()}), nil
}

// UserResults returns the user's scored attempts, newest first.
func (s *ResultService) UserResults(ctx context.Context, username string) ([]domain.ScoredAttempt, error) {
	attempts, err := s.userAttempts(ctx, username)
	if err != nil {
		return nil, err
	}
	scored := make([]domain.ScoredAttempt, 0, len(attempts))
	for _, a := range attempts {
		scored = append(scored, scoring.ScoreAttempt(a))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].QuizDone.After(scored[j].QuizDone)
	})
	return scored, nil
}

// Progress returns the user's score trend on one quiz.
func (s *ResultService) Progress(ctx context.Context, quizName, username string) ([]domain.ProgressPoint, error) {
	attempts, err := s.userAttempts(ctx, username)
	if err != nil {
		return nil, err
	}
	return ranking.Series(attempts, quizName, username), nil
}

// Review returns the per-question breakdown of one of the user's attempts.
func (s *ResultService) Review(ctx context.Context, attemptID, username string) (domain.ScoredAttempt, []scoring.QuestionReview, error) {
	attempts, err := s.userAttempts(ctx, username)
	if err != nil {
		return domain.ScoredAttempt{}, nil, err
	}
	for _, a := range attempts {
		if a.ID == attemptID {
			return scoring.ScoreAttempt(a), scoring.Review(a), nil
		}
	}
	return domain.ScoredAttempt{}, nil, domain.ErrAttemptNotFound
}

// QuizNames lists quizzes that have at least one attempt.
func (s *ResultService) QuizNames(ctx context.Context) ([]string, error) {
	attempts, err := s.allAttempts(ctx)
	if err != nil {
		return nil, err
	}
	return ranking.QuizNames(attempts), nil
}

// Subscribe returns a channel that receives all-time leaderboard updates for a quiz.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ResultService) Subscribe(ctx context.Context, quizName string) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.liveLeaderboard(ctx, quizName)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(quizName, initial)
	return ch, cancel, nil
}

func (s *ResultService) liveLeaderboard(ctx context.Context, quizName string) (domain.Leaderboard, error) {
	now := s.now()
	attempts, err := s.allAttempts(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	boards := ranking.Build(attempts, ranking.Query{QuizName: quizName, Window: domain.WindowAll, Now: now})
	rows := boards[quizName]
	if rows == nil {
		rows = []domain.LeaderboardRow{}
	}
	return domain.Leaderboard{QuizName: quizName, Rows: rows, UpdatedAt: now}, nil
}

func (s *ResultService) allAttempts(ctx context.Context) ([]domain.Attempt, error) {
	records, err := s.attempts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return s.decode(records), nil
}

func (s *ResultService) userAttempts(ctx context.Context, username string) ([]domain.Attempt, error) {
	if username == "" {
		return nil, domain.ErrMissingUser
	}
	records, err := s.attempts.ListByUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list attempts for %s: %w", username, err)
	}
	return s.decode(records), nil
}

func (s *ResultService) decode(records []domain.Record) []domain.Attempt {
	attempts := make([]domain.Attempt, 0, len(records))
	for _, rec := range records {
		a, anomalies := codec.DecodeAttempt(rec)
		if len(anomalies) > 0 {
			s.log.Debug().Str("attempt", rec.ID).Int("anomalies", len(anomalies)).Msg("attempt decoded with defaults")
		}
		attempts = append(attempts, a)
	}
	return attempts
}
