package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"quiz-results-service/internal/domain"
)

const resultsKey = "results"

// AttemptStore keeps attempt records as JSON in Redis lists:
//
//	RPUSH results {record}
//	RPUSH results:user:{username} {record}
//
// Both pushes run in one MULTI so the lists never diverge.
type AttemptStore struct {
	client *redis.Client
}

func NewAttemptStore(client *redis.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

func (s *AttemptStore) Add(ctx context.Context, rec domain.Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, resultsKey, raw)
		pipe.RPush(ctx, userKey(rec.Username), raw)
		return nil
	})
	return err
}

func (s *AttemptStore) List(ctx context.Context) ([]domain.Record, error) {
	return s.load(ctx, resultsKey)
}

func (s *AttemptStore) ListByUser(ctx context.Context, username string) ([]domain.Record, error) {
	return s.load(ctx, userKey(username))
}

// load skips entries that are not valid JSON records.
func (s *AttemptStore) load(ctx context.Context, key string) ([]domain.Record, error) {
	items, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		var rec domain.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func userKey(username string) string {
	return resultsKey + ":user:" + username
}
