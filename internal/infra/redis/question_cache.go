package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"exam-drill-service/internal/app"
	"exam-drill-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuestionCache stores generated question sets in Redis (one JSON value per
// request key) and falls back to the wrapped generator on a miss.
// Sets are stored as: SET drill:questions:{topic|exam|difficulty|count} <json> EX ttl
type QuestionCache struct {
	client    *redis.Client
	generator app.QuestionGenerator
	ttl       time.Duration
	logger    *zap.Logger
	sf        singleflight.Group
	rndMu     sync.Mutex
	rnd       *rand.Rand
}

func NewQuestionCache(client *redis.Client, generator app.QuestionGenerator, ttl time.Duration, logger *zap.Logger) *QuestionCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionCache{
		client:    client,
		generator: generator,
		ttl:       ttl,
		logger:    logger,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Generate serves a cached set when one is live, otherwise joins or starts
// the upstream call for cfg. Each caller stops waiting when its own ctx ends;
// the upstream call is not cancelled by any single caller.
func (r *QuestionCache) Generate(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	key := r.key(cfg)
	fresh := app.WantsFreshQuestions(ctx)
	if !fresh {
		if questions, ok := r.lookup(ctx, key); ok {
			return questions, nil
		}
	}

	flight := key
	if fresh {
		flight = "fresh|" + key
	}
	ch := r.sf.DoChan(flight, func() (interface{}, error) {
		upstream, cancel := app.DetachedGeneration(ctx)
		defer cancel()

		// Re-check cache in case another instance filled it.
		if !fresh {
			if questions, ok := r.lookup(upstream, key); ok {
				return questions, nil
			}
		}

		questions, err := r.generator.Generate(upstream, cfg)
		if err != nil {
			return nil, err
		}

		if ttl := r.ttlWithJitter(); ttl > 0 {
			data, err := json.Marshal(questions)
			if err == nil {
				err = r.client.Set(upstream, key, data, ttl).Err()
			}
			if err != nil {
				r.logger.Warn("cache question set", zap.String("key", key), zap.Error(err))
			}
		}
		return questions, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return append([]domain.Question(nil), res.Val.([]domain.Question)...), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *QuestionCache) lookup(ctx context.Context, key string) ([]domain.Question, bool) {
	if r.ttl <= 0 {
		return nil, false
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("read cached question set", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (r *QuestionCache) key(cfg domain.QuizConfig) string {
	return "drill:questions:" + cfg.Key()
}

func (r *QuestionCache) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
