package redis

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-results-service/internal/domain"
)

// QuizLoader fetches quiz content from a backing store.
type QuizLoader interface {
	LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// QuizRepository caches quiz rows in Redis and falls back to a loader on cache miss.
// Each quiz is stored as: HSET quiz:{quizID} name .. questions .. answers ..
type QuizRepository struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	group  singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuizRepository(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizRepository {
	return &QuizRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuizRepository) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quiz, ok := r.cached(ctx, quizID); ok {
		return quiz, nil
	}

	v, err, _ := r.group.Do(quizID, func() (interface{}, error) {
		// Another caller may have filled the cache meanwhile.
		if quiz, ok := r.cached(ctx, quizID); ok {
			return quiz, nil
		}
		quiz, err := r.loader.LoadQuiz(ctx, quizID)
		if err != nil {
			return domain.Quiz{}, err
		}
		r.store(ctx, quiz)
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return v.(domain.Quiz), nil
}

// invalidate removes a cached quiz.
func (r *QuizRepository) invalidate(ctx context.Context, quizID string) error {
	return r.client.Del(ctx, quizKey(quizID)).Err()
}

func (r *QuizRepository) cached(ctx context.Context, quizID string) (domain.Quiz, bool) {
	fields, err := r.client.HGetAll(ctx, quizKey(quizID)).Result()
	if err != nil || len(fields) == 0 {
		return domain.Quiz{}, false
	}
	limit, _ := strconv.Atoi(fields["time"])
	return domain.Quiz{
		ID:          quizID,
		Name:        fields["name"],
		Description: fields["description"],
		Category:    fields["category"],
		Difficulty:  fields["difficulty"],
		TimeLimit:   limit,
		Questions:   fields["questions"],
		Answers:     fields["answers"],
	}, true
}

// store writes the quiz best-effort; a failed write only costs a later reload.
func (r *QuizRepository) store(ctx context.Context, quiz domain.Quiz) {
	key := quizKey(quiz.ID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key,
		"name", quiz.Name,
		"description", quiz.Description,
		"category", quiz.Category,
		"difficulty", quiz.Difficulty,
		"time", quiz.TimeLimit,
		"questions", quiz.Questions,
		"answers", quiz.Answers,
	)
	if ttl := r.ttlWithJitter(); ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
	_, _ = pipe.Exec(ctx)
}

func quizKey(quizID string) string {
	return "quiz:" + quizID
}

func (r *QuizRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(int64(r.ttl)/10+1))
}
