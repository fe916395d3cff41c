package http

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// LiveCounter reports how many player sessions are live.
type LiveCounter interface {
	CountLive(ctx context.Context) (int, error)
}

type statsPayload struct {
	LiveSessions int `json:"liveSessions"`
}

// StatsHandler serves the live session count.
func StatsHandler(counter LiveCounter, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := counter.CountLive(r.Context())
		if err != nil {
			logger.Warn("count live sessions", zap.Error(err))
			http.Error(w, "stats unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(statsPayload{LiveSessions: n})
	}
}
