package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"quiz-results-service/internal/domain"
)

func TestAttemptStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewAttemptStore(newClient(mr))
	done := time.Date(2025, 8, 6, 10, 38, 24, 0, time.UTC)

	records := []domain.Record{
		{ID: "1", QuizName: "Geo", Username: "alice", Questions: `[]`, Answers: `[]`, QuizDone: done},
		{ID: "2", QuizName: "Geo", Username: "bob", Questions: `[]`, Answers: `[]`, QuizDone: done},
	}
	for _, rec := range records {
		if err := store.Add(ctx, rec); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if _, err := mr.Lpush(resultsKey, "not json"); err != nil {
		t.Fatalf("lpush: %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected garbage entry to be skipped, got %+v", all)
	}

	mine, err := store.ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != "1" || !mine[0].QuizDone.Equal(done) {
		t.Fatalf("unexpected records for alice: %+v", mine)
	}
}
