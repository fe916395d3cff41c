package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"exam-drill-service/internal/app"
	"exam-drill-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionCache wraps a generator so identical concurrent requests share one
// upstream call. With a positive ttl, generated sets are also reused until they expire.
type QuestionCache struct {
	generator app.QuestionGenerator
	ttl       time.Duration
	clock     func() time.Time
	sf        singleflight.Group
	rnd       *rand.Rand
	rndMu     sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(generator app.QuestionGenerator, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		generator: generator,
		ttl:       ttl,
		clock:     time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:     make(map[string]cachedSet),
	}
}

// Generate serves a cached set when one is live, otherwise joins or starts
// the upstream call for cfg. Each caller stops waiting when its own ctx ends;
// the upstream call is not cancelled by any single caller.
func (r *QuestionCache) Generate(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	key := cfg.Key()
	fresh := app.WantsFreshQuestions(ctx)
	if !fresh {
		if questions, ok := r.lookup(key); ok {
			return questions, nil
		}
	}

	flight := key
	if fresh {
		flight = "fresh|" + key
	}
	ch := r.sf.DoChan(flight, func() (interface{}, error) {
		if !fresh {
			if questions, ok := r.lookup(key); ok {
				return questions, nil
			}
		}

		upstream, cancel := app.DetachedGeneration(ctx)
		defer cancel()
		questions, err := r.generator.Generate(upstream, cfg)
		if err != nil {
			return nil, err
		}

		if r.ttl > 0 {
			r.mu.Lock()
			r.cache[key] = cachedSet{
				questions: questions,
				expiresAt: r.clock().Add(r.ttlWithJitter()),
			}
			r.mu.Unlock()
		}
		return questions, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]domain.Question)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *QuestionCache) lookup(key string) ([]domain.Question, bool) {
	if r.ttl <= 0 {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return clone(entry.questions), true
}

func (r *QuestionCache) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func clone(questions []domain.Question) []domain.Question {
	return append([]domain.Question(nil), questions...)
}

// StaticGenerator serves fixed question sets keyed by topic (useful for tests/demos).
type StaticGenerator struct {
	sets map[string][]domain.Question
}

func NewStaticGenerator(sets map[string][]domain.Question) *StaticGenerator {
	return &StaticGenerator{sets: sets}
}

func (g *StaticGenerator) Generate(_ context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	if questions, ok := g.sets[cfg.Topic]; ok {
		return clone(questions), nil
	}
	return nil, domain.ErrGenerationFailed
}
