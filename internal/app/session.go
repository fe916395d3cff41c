package app

import (
	"context"
	"sync"
	"time"

	"exam-drill-service/internal/domain"
	"exam-drill-service/internal/exam"
	"exam-drill-service/internal/game"
	"go.uber.org/zap"
)

// GenerationNotice is shown to the player when no quiz could be produced.
const GenerationNotice = "Failed to generate quiz. Please check your connection or try a different topic."

// QuestionGenerator produces the question set for a quiz request.
type QuestionGenerator interface {
	Generate(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error)
}

// SessionOptions carries the collaborators every player session shares.
type SessionOptions struct {
	Generator       QuestionGenerator
	Catalog         *exam.Catalog
	Game            game.Config
	Scheduler       game.Scheduler
	GenerateTimeout time.Duration
	MaxQuestions    int
	Logger          *zap.Logger
	Now             func() time.Time
}

func (o SessionOptions) withDefaults() SessionOptions {
	if o.Catalog == nil {
		o.Catalog = exam.Default()
	}
	if o.Game == (game.Config{}) {
		o.Game = game.DefaultConfig()
	}
	if o.Scheduler == nil {
		o.Scheduler = game.WallClock()
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Session is one player's quiz lifecycle: idle -> loading -> playing -> results.
//
// Lock order is engine -> session: engine hooks take the session lock, so the
// session never calls into its engine while holding s.mu.
type Session struct {
	id   string
	opts SessionOptions

	mu          sync.Mutex
	status      domain.Status
	notice      string
	config      *domain.QuizConfig
	questions   []domain.Question
	answers     []domain.AnswerRecord
	score       float64
	streak      int
	round       *domain.RoundView
	results     *domain.Results
	engine      *game.Engine
	cancelGen   context.CancelFunc
	epoch       uint64
	clients     int
	lastActive  time.Time
	subscribers map[chan domain.SessionView]struct{}
}

// NewSession returns an idle session.
func NewSession(id string, opts SessionOptions) *Session {
	opts = opts.withDefaults()
	return &Session{
		id:          id,
		opts:        opts,
		status:      domain.StatusIdle,
		lastActive:  opts.Now(),
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Start requests a new quiz. Only allowed from idle.
func (s *Session) Start(ctx context.Context, cfg domain.QuizConfig) error {
	cfg = cfg.Normalize()
	if err := cfg.Validate(s.opts.MaxQuestions); err != nil {
		return err
	}
	pattern, err := s.opts.Catalog.Lookup(cfg.ExamType)
	if err != nil {
		return err
	}
	cfg.ExamType = pattern.Code

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.CanStart() {
		return domain.ErrInvalidTransition
	}
	s.beginLoadingLocked(ctx, cfg)
	return nil
}

// Restart replays the last configuration with a newly generated question set.
// Only allowed from results.
func (s *Session) Restart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.status.CanRestart() || s.config == nil {
		return domain.ErrInvalidTransition
	}
	s.beginLoadingLocked(WithFreshQuestions(ctx), *s.config)
	return nil
}

// Home discards everything and returns to idle, cancelling an in-flight
// generation and any pending round tasks.
func (s *Session) Home() {
	s.mu.Lock()
	if !s.status.CanGoHome() {
		s.mu.Unlock()
		return
	}
	engine, cancel := s.resetLocked()
	s.notice = ""
	s.broadcastLocked()
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if engine != nil {
		engine.Stop()
	}
}

// Select forwards an option pick to the running round.
func (s *Session) Select(option string) error {
	engine, err := s.playingEngine()
	if err != nil {
		return err
	}
	engine.Select(option)
	return nil
}

// Input forwards NAT text to the running round.
func (s *Session) Input(text string) error {
	engine, err := s.playingEngine()
	if err != nil {
		return err
	}
	engine.Input(text)
	return nil
}

// Submit submits the current question of the running round.
func (s *Session) Submit() error {
	engine, err := s.playingEngine()
	if err != nil {
		return err
	}
	engine.Submit()
	return nil
}

// View returns the current snapshot.
func (s *Session) View() domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Status returns the current lifecycle status.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsEmpty reports whether no client is attached.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clients == 0
}

// LastActive reports when the session last changed or was touched by a client.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close tears the session down and closes all subscriptions.
func (s *Session) Close() {
	s.Home()
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) attach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients++
	s.lastActive = s.opts.Now()
}

func (s *Session) detach() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients > 0 {
		s.clients--
	}
	return s.clients
}

func (s *Session) playingEngine() (*game.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusPlaying || s.engine == nil {
		return nil, domain.ErrInvalidTransition
	}
	s.lastActive = s.opts.Now()
	return s.engine, nil
}

func (s *Session) beginLoadingLocked(parent context.Context, cfg domain.QuizConfig) {
	// Loading is only entered from idle or results, so there is no engine or generation to release.
	s.resetLocked()

	s.status = domain.StatusLoading
	s.notice = ""
	s.config = &cfg
	epoch := s.epoch

	var (
		ctx       context.Context
		cancelGen context.CancelFunc
	)
	if s.opts.GenerateTimeout > 0 {
		ctx, cancelGen = context.WithTimeout(parent, s.opts.GenerateTimeout)
	} else {
		ctx, cancelGen = context.WithCancel(parent)
	}
	s.cancelGen = cancelGen
	s.broadcastLocked()

	s.opts.Logger.Info("generating quiz",
		zap.String("session_id", s.id),
		zap.String("topic", cfg.Topic),
		zap.String("exam_type", cfg.ExamType),
		zap.String("difficulty", string(cfg.Difficulty)),
		zap.Int("count", cfg.QuestionCount),
	)
	go func() {
		questions, err := s.opts.Generator.Generate(ctx, cfg)
		cancelGen()
		s.onGenerated(epoch, questions, err)
	}()
}

func (s *Session) onGenerated(epoch uint64, questions []domain.Question, err error) {
	s.mu.Lock()
	if epoch != s.epoch || s.status != domain.StatusLoading {
		s.mu.Unlock()
		return
	}
	s.cancelGen = nil
	if err != nil {
		s.failLocked(err)
		s.mu.Unlock()
		return
	}

	engine, err := game.NewEngine(questions, s.opts.Game, s.opts.Scheduler, game.Hooks{
		OnChange: func(v domain.RoundView) { s.onRound(epoch, v) },
		OnComplete: func(answers []domain.AnswerRecord, score float64) {
			s.onComplete(epoch, answers, score)
		},
	})
	if err != nil {
		s.failLocked(err)
		s.mu.Unlock()
		return
	}

	s.status = domain.StatusPlaying
	s.questions = questions
	s.answers = nil
	s.score = 0
	s.streak = 0
	s.round = nil
	s.engine = engine
	s.mu.Unlock()

	s.opts.Logger.Info("quiz started", zap.String("session_id", s.id), zap.Int("questions", len(questions)))
	engine.Start()
}

func (s *Session) onRound(epoch uint64, v domain.RoundView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || s.status != domain.StatusPlaying {
		return
	}
	s.round = &v
	s.score = v.Score
	s.streak = v.Streak
	s.broadcastLocked()
}

func (s *Session) onComplete(epoch uint64, answers []domain.AnswerRecord, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || s.status != domain.StatusPlaying {
		return
	}
	s.status = domain.StatusResults
	s.answers = answers
	s.score = score
	s.round = nil
	s.engine = nil
	results := Summarize(s.questions, answers, score)
	s.results = &results
	s.broadcastLocked()

	s.opts.Logger.Info("quiz finished",
		zap.String("session_id", s.id),
		zap.Float64("score", score),
		zap.Int("correct", results.Correct),
		zap.Int("total", results.Total),
	)
}

func (s *Session) failLocked(err error) {
	s.opts.Logger.Warn("quiz generation failed", zap.String("session_id", s.id), zap.Error(err))
	s.resetLocked()
	s.notice = GenerationNotice
	s.broadcastLocked()
}

// resetLocked clears all per-run state and returns the resources the caller
// must release after unlocking.
func (s *Session) resetLocked() (*game.Engine, context.CancelFunc) {
	engine, cancel := s.engine, s.cancelGen
	s.epoch++
	s.status = domain.StatusIdle
	s.config = nil
	s.questions = nil
	s.answers = nil
	s.score = 0
	s.streak = 0
	s.round = nil
	s.results = nil
	s.engine = nil
	s.cancelGen = nil
	return engine, cancel
}

// Subscribe returns a channel that receives a view after every change.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() {
	s.lastActive = s.opts.Now()
	view := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// Slow reader: drop its oldest pending view so the latest one always lands.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

func (s *Session) snapshotLocked() domain.SessionView {
	view := domain.SessionView{
		SessionID: s.id,
		Status:    s.status,
		Notice:    s.notice,
	}
	if s.config != nil {
		cfg := *s.config
		view.Config = &cfg
	}
	if s.status == domain.StatusPlaying && s.round != nil {
		round := *s.round
		view.Round = &round
	}
	if s.status == domain.StatusResults && s.results != nil {
		results := *s.results
		view.Results = &results
	}
	return view
}
