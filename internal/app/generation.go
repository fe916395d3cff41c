package app

import (
	"context"
	"time"
)

// SharedGenerationTimeout bounds an upstream generation that several sessions
// may be waiting on.
const SharedGenerationTimeout = 2 * time.Minute

type freshQuestionsKey struct{}

// WithFreshQuestions marks ctx so generation caches skip stored sets and ask
// the upstream generator for a new one.
func WithFreshQuestions(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshQuestionsKey{}, true)
}

// WantsFreshQuestions reports whether ctx was marked by WithFreshQuestions.
func WantsFreshQuestions(ctx context.Context) bool {
	fresh, _ := ctx.Value(freshQuestionsKey{}).(bool)
	return fresh
}

// DetachedGeneration derives the context of a shared upstream call. It keeps
// the values of ctx but not its cancellation, so one waiter giving up does not
// fail the others.
func DetachedGeneration(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), SharedGenerationTimeout)
}
