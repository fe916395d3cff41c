package redis

import (
	"context"
	"testing"
	"time"

	"exam-drill-service/internal/app"
	"exam-drill-service/internal/domain"
	"exam-drill-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestQuestionCacheStoresInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	gen := &countingGenerator{
		QuestionGenerator: memory.NewStaticGenerator(map[string][]domain.Question{
			"Algebra": sampleSet(),
		}),
	}
	cache := NewQuestionCache(client, gen, time.Minute, nil)

	if _, err := cache.Generate(context.Background(), sampleConfig()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if gen.calls != 1 {
		t.Fatalf("expected generator called once, got %d", gen.calls)
	}
	if !mr.Exists("drill:questions:algebra|GATE|Medium|1") {
		t.Fatalf("expected cached set in redis, keys=%v", mr.Keys())
	}

	// Second call should hit cache, generator not incremented.
	questions, _ := cache.Generate(context.Background(), sampleConfig())
	if gen.calls != 1 {
		t.Fatalf("expected cache hit, generator calls=%d", gen.calls)
	}
	if len(questions) != 1 || questions[0].CorrectAnswer[0] != "4" {
		t.Fatalf("unexpected cached questions %+v", questions)
	}
}

func TestQuestionCachePassesThroughFailures(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewQuestionCache(newClient(mr), memory.NewStaticGenerator(nil), time.Minute, nil)
	if _, err := cache.Generate(context.Background(), sampleConfig()); err != domain.ErrGenerationFailed {
		t.Fatalf("expected generation failure, got %v", err)
	}
	if len(mr.Keys()) != 0 {
		t.Fatalf("failures must not be cached, keys=%v", mr.Keys())
	}
}

func TestQuestionCacheFreshRequestRefreshesRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	gen := &countingGenerator{
		QuestionGenerator: memory.NewStaticGenerator(map[string][]domain.Question{
			"Algebra": sampleSet(),
		}),
	}
	cache := NewQuestionCache(newClient(mr), gen, time.Minute, nil)
	ctx := context.Background()

	_, _ = cache.Generate(ctx, sampleConfig())
	if _, err := cache.Generate(app.WithFreshQuestions(ctx), sampleConfig()); err != nil {
		t.Fatalf("fresh generate: %v", err)
	}
	if gen.calls != 2 {
		t.Fatalf("expected fresh request to bypass redis, got %d calls", gen.calls)
	}
	_, _ = cache.Generate(ctx, sampleConfig())
	if gen.calls != 2 {
		t.Fatalf("expected cache hit after refresh, got %d calls", gen.calls)
	}
}

func TestQuestionCacheWaiterStopsOnOwnContext(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	release := make(chan struct{})
	var upstreamErr error
	done := make(chan struct{})
	gen := generatorFunc(func(ctx context.Context, _ domain.QuizConfig) ([]domain.Question, error) {
		defer close(done)
		select {
		case <-release:
			return sampleSet(), nil
		case <-ctx.Done():
			upstreamErr = ctx.Err()
			return nil, upstreamErr
		}
	})
	cache := NewQuestionCache(newClient(mr), gen, time.Minute, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := cache.Generate(ctx, sampleConfig()); err != context.Canceled {
		t.Fatalf("expected caller cancellation, got %v", err)
	}
	close(release)
	<-done
	if upstreamErr != nil {
		t.Fatalf("upstream call was cancelled with the caller: %v", upstreamErr)
	}
}

type generatorFunc func(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error)

func (f generatorFunc) Generate(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	return f(ctx, cfg)
}

type countingGenerator struct {
	app.QuestionGenerator
	calls int
}

func (g *countingGenerator) Generate(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	g.calls++
	return g.QuestionGenerator.Generate(ctx, cfg)
}

func sampleConfig() domain.QuizConfig {
	return domain.QuizConfig{Topic: "Algebra", ExamType: "GATE", Difficulty: domain.DifficultyMedium, QuestionCount: 1}
}

func sampleSet() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			Type:          domain.QuestionMCQ,
			Text:          "What is 2 + 2?",
			Options:       []string{"3", "4"},
			CorrectAnswer: []string{"4"},
			Explanation:   "2 + 2 = 4",
			Topic:         "Algebra",
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
