package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"exam-drill-service/internal/app"
	"exam-drill-service/internal/domain"
	"exam-drill-service/internal/exam"
	"exam-drill-service/internal/game/gametest"
	"exam-drill-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) (*httptest.Server, *gametest.Scheduler) {
	t.Helper()
	sched := gametest.NewScheduler()
	store := memory.NewSessionStore()
	service := app.NewQuizService(store, app.SessionOptions{
		Generator: memory.NewStaticGenerator(map[string][]domain.Question{"Algebra": sampleSet()}),
		Scheduler: sched,
	})
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", NewWSHandler(service, nil).ServeWS)
	mux.HandleFunc("/exams", CatalogHandler(exam.Default()))
	mux.HandleFunc("/stats", StatsHandler(store, nil))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, sched
}

func dial(t *testing.T, server *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?sessionId=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketQuizFlow(t *testing.T) {
	server, sched := newTestServer(t)
	conn := dial(t, server, "s-1")

	initial := waitForSession(t, conn, func(v domain.SessionView) bool { return true })
	if initial.SessionID != "s-1" || initial.Status != domain.StatusIdle {
		t.Fatalf("expected idle session s-1, got %+v", initial)
	}

	send(t, conn, "start", map[string]any{
		"topic": "Algebra", "examType": "gate", "difficulty": "Easy", "questionCount": 1,
	})
	playing := waitForSession(t, conn, func(v domain.SessionView) bool {
		return v.Status == domain.StatusPlaying && v.Round != nil
	})
	if playing.Config.ExamType != "GATE" || playing.Round.Remaining != 30 {
		t.Fatalf("unexpected playing view %+v", playing)
	}
	if len(playing.Round.Question.CorrectAnswer) != 0 {
		t.Fatalf("correct answer leaked before answering")
	}

	send(t, conn, "select", map[string]any{"option": "4"})
	send(t, conn, "submit", nil)
	answered := waitForSession(t, conn, func(v domain.SessionView) bool {
		return v.Round != nil && v.Round.Answered
	})
	if answered.Round.Score != 160 || !answered.Round.LastAnswer.IsCorrect {
		t.Fatalf("expected 160 points for instant correct answer, got %+v", answered.Round)
	}

	sched.Advance(2500 * time.Millisecond)
	results := waitForSession(t, conn, func(v domain.SessionView) bool { return v.Status == domain.StatusResults })
	if results.Results == nil || results.Results.Correct != 1 || results.Results.Accuracy != 100 {
		t.Fatalf("unexpected results %+v", results.Results)
	}

	send(t, conn, "submit", nil)
	if msg := readUntil(t, conn, "error"); !strings.Contains(msg.Message, "not allowed") {
		t.Fatalf("expected invalid transition error, got %q", msg.Message)
	}

	send(t, conn, "home", nil)
	waitForSession(t, conn, func(v domain.SessionView) bool { return v.Status == domain.StatusIdle && v.Config == nil })
}

func TestWebSocketGenerationFailureReturnsIdle(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "s-2")

	send(t, conn, "start", map[string]any{"topic": "Unknown topic"})
	view := waitForSession(t, conn, func(v domain.SessionView) bool {
		return v.Status == domain.StatusIdle && v.Notice != ""
	})
	if view.Notice != app.GenerationNotice {
		t.Fatalf("unexpected notice %q", view.Notice)
	}
}

func TestWebSocketRejectsBadMessages(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "s-3")

	send(t, conn, "dance", nil)
	if msg := readUntil(t, conn, "error"); msg.Message != errUnsupported.Error() {
		t.Fatalf("expected unsupported error, got %q", msg.Message)
	}
	send(t, conn, "start", map[string]any{"topic": "Algebra", "examType": "IIT"})
	if msg := readUntil(t, conn, "error"); !strings.Contains(msg.Message, "unknown exam type") {
		t.Fatalf("expected unknown exam type, got %q", msg.Message)
	}
	send(t, conn, "start", map[string]any{"topic": "   "})
	if msg := readUntil(t, conn, "error"); msg.Message != domain.ErrInvalidConfig.Error() {
		t.Fatalf("expected invalid config, got %q", msg.Message)
	}
}

func TestCatalogHandlerListsExams(t *testing.T) {
	server, _ := newTestServer(t)
	resp, err := http.Get(server.URL + "/exams")
	if err != nil {
		t.Fatalf("get exams: %v", err)
	}
	defer resp.Body.Close()
	var patterns []exam.Pattern
	if err := json.NewDecoder(resp.Body).Decode(&patterns); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(patterns) != 4 || patterns[0].Code != "GATE" {
		t.Fatalf("unexpected catalog %+v", patterns)
	}
}

func TestStatsHandlerCountsLiveSessions(t *testing.T) {
	server, _ := newTestServer(t)
	conn := dial(t, server, "s-1")
	waitForSession(t, conn, func(v domain.SessionView) bool { return true })

	resp, err := http.Get(server.URL + "/stats")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	defer resp.Body.Close()
	var stats statsPayload
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.LiveSessions != 1 {
		t.Fatalf("expected 1 live session, got %d", stats.LiveSessions)
	}
}

type failingCounter struct{}

func (failingCounter) CountLive(context.Context) (int, error) {
	return 0, errors.New("redis down")
}

func TestStatsHandlerReportsUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	StatsHandler(failingCounter{}, nil)(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	if err := conn.WriteJSON(map[string]any{"type": typ, "payload": payload}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readNext(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	var msg envelope
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg
}

func waitForSession(t *testing.T, conn *websocket.Conn, match func(domain.SessionView) bool) domain.SessionView {
	t.Helper()
	for {
		msg := readNext(t, conn)
		if msg.Type != "session" {
			continue
		}
		var view domain.SessionView
		if err := json.Unmarshal(msg.Payload, &view); err != nil {
			t.Fatalf("decode session: %v", err)
		}
		if match(view) {
			return view
		}
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) errorPayload {
	t.Helper()
	for {
		msg := readNext(t, conn)
		if msg.Type != typ {
			continue
		}
		var payload errorPayload
		_ = json.Unmarshal(msg.Payload, &payload)
		return payload
	}
}

func sampleSet() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			Type:          domain.QuestionMCQ,
			Text:          "What is 2 + 2?",
			Options:       []string{"3", "4", "5"},
			CorrectAnswer: []string{"4"},
			Explanation:   "2 + 2 = 4",
			Topic:         "Algebra",
		},
	}
}
