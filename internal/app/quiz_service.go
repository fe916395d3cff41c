package app

import (
	"context"

	"exam-drill-service/internal/domain"
	"go.uber.org/zap"
)

// SessionRepository abstracts how player sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(id string, create func(id string) *Session) *Session
	Get(id string) (*Session, bool)
	DeleteIfEmpty(id string)
}

// QuizService contains the player-facing quiz use cases.
type QuizService struct {
	sessions SessionRepository
	opts     SessionOptions
}

func NewQuizService(store SessionRepository, opts SessionOptions) *QuizService {
	return &QuizService{sessions: store, opts: opts.withDefaults()}
}

// Open attaches a client to a session, creating an idle one on first use.
func (s *QuizService) Open(_ context.Context, sessionID string) domain.SessionView {
	session := s.sessions.GetOrCreate(sessionID, func(id string) *Session {
		s.opts.Logger.Debug("session created", zap.String("session_id", id))
		return NewSession(id, s.opts)
	})
	session.attach()
	return session.View()
}

// Start requests a generated quiz for the session.
func (s *QuizService) Start(ctx context.Context, sessionID string, cfg domain.QuizConfig) error {
	session, err := s.get(sessionID)
	if err != nil {
		return err
	}
	return session.Start(ctx, cfg)
}

// Restart replays the last configuration from the results screen.
func (s *QuizService) Restart(ctx context.Context, sessionID string) error {
	session, err := s.get(sessionID)
	if err != nil {
		return err
	}
	return session.Restart(ctx)
}

// Home discards the session's quiz and returns it to idle.
func (s *QuizService) Home(_ context.Context, sessionID string) error {
	session, err := s.get(sessionID)
	if err != nil {
		return err
	}
	session.Home()
	return nil
}

// Select picks or toggles an option on the current question.
func (s *QuizService) Select(_ context.Context, sessionID, option string) error {
	session, err := s.get(sessionID)
	if err != nil {
		return err
	}
	return session.Select(option)
}

// Input sets the typed answer of the current NAT question.
func (s *QuizService) Input(_ context.Context, sessionID, text string) error {
	session, err := s.get(sessionID)
	if err != nil {
		return err
	}
	return session.Input(text)
}

// Submit submits the current question.
func (s *QuizService) Submit(_ context.Context, sessionID string) error {
	session, err := s.get(sessionID)
	if err != nil {
		return err
	}
	return session.Submit()
}

// View returns the current snapshot of a session.
func (s *QuizService) View(_ context.Context, sessionID string) (domain.SessionView, error) {
	session, err := s.get(sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

// Subscribe returns a channel that receives session updates.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.SessionView, func(), error) {
	session, err := s.get(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave detaches a client; the last one out tears the session down and drops it.
func (s *QuizService) Leave(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	if session.detach() > 0 {
		return
	}
	session.Close()
	s.sessions.DeleteIfEmpty(sessionID)
	s.opts.Logger.Debug("session closed", zap.String("session_id", sessionID))
}

func (s *QuizService) get(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
