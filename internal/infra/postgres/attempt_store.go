package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-results-service/internal/domain"
)

// AttemptStore persists attempt records in the results table. The questions and
// answers snapshots are written once and never updated.
type AttemptStore struct {
	pool *pgxpool.Pool
}

func NewAttemptStore(pool *pgxpool.Pool) *AttemptStore {
	return &AttemptStore{pool: pool}
}

const selectResults = `SELECT id, quiz_name, username, questions::text, answers::text, quiz_done FROM results`

func (s *AttemptStore) Add(ctx context.Context, rec domain.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO results (id, quiz_name, username, questions, answers, quiz_done)
		 VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6)`,
		rec.ID, rec.QuizName, rec.Username, rec.Questions, rec.Answers, rec.QuizDone,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (s *AttemptStore) List(ctx context.Context) ([]domain.Record, error) {
	rows, err := s.pool.Query(ctx, selectResults+` ORDER BY quiz_done, id`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	return scanRecords(rows)
}

func (s *AttemptStore) ListByUser(ctx context.Context, username string) ([]domain.Record, error) {
	rows, err := s.pool.Query(ctx, selectResults+` WHERE username=$1 ORDER BY quiz_done, id`, username)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]domain.Record, error) {
	defer rows.Close()
	records := make([]domain.Record, 0)
	for rows.Next() {
		var rec domain.Record
		if err := rows.Scan(&rec.ID, &rec.QuizName, &rec.Username, &rec.Questions, &rec.Answers, &rec.QuizDone); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return records, nil
}
