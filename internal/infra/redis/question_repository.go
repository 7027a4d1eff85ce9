package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizboard-service/internal/domain"
)

// QuestionLoader fetches the question pool of a difficulty from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, difficulty domain.Difficulty) ([]domain.Question, error)
}

// QuestionRepository caches question pools in Redis and falls back to a loader on cache miss.
// Pools are stored as: HSET questions:{difficulty} {questionID} {question JSON}
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// GetQuestion returns a random cached question of the difficulty, or
// domain.ErrQuestionUnavailable when the pool is empty.
func (r *QuestionRepository) GetQuestion(ctx context.Context, difficulty domain.Difficulty) (domain.Question, error) {
	key := r.key(difficulty)

	cached, err := r.client.HGetAll(ctx, key).Result()
	if err == nil && len(cached) > 0 {
		return r.pick(cached)
	}

	result, err, _ := r.sf.Do(string(difficulty), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		cached, err := r.client.HGetAll(ctx, key).Result()
		if err == nil && len(cached) > 0 {
			return cached, nil
		}

		questions, err := r.loader.LoadQuestions(ctx, difficulty)
		if err != nil {
			return nil, err
		}

		fields := make(map[string]string, len(questions))
		pipe := r.client.Pipeline()
		for _, q := range questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, fmt.Errorf("encode question %s: %w", q.ID, err)
			}
			fields[q.ID] = string(raw)
			pipe.HSet(ctx, key, q.ID, raw)
		}
		if ttl := r.ttlWithJitter(); ttl > 0 && len(fields) > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if len(fields) > 0 {
			// cache write is best-effort; the loaded pool is still served
			_, _ = pipe.Exec(ctx)
		}
		return fields, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return r.pick(result.(map[string]string))
}

func (r *QuestionRepository) pick(pool map[string]string) (domain.Question, error) {
	if len(pool) == 0 {
		return domain.Question{}, domain.ErrQuestionUnavailable
	}
	ids := make([]string, 0, len(pool))
	for id := range pool {
		ids = append(ids, id)
	}
	r.rndMu.Lock()
	id := ids[r.rnd.Intn(len(ids))]
	r.rndMu.Unlock()

	var q domain.Question
	if err := json.Unmarshal([]byte(pool[id]), &q); err != nil {
		return domain.Question{}, fmt.Errorf("decode cached question %s: %w", id, err)
	}
	return q, nil
}

func (r *QuestionRepository) key(difficulty domain.Difficulty) string {
	return "questions:" + string(difficulty)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
