package game

import (
	"strings"
	"sync"

	"exam-drill-service/internal/domain"
)

// Hooks receive engine events. Both are invoked while the engine lock is held,
// so they must not call back into the engine.
type Hooks struct {
	// OnChange receives a snapshot after every state change.
	OnChange func(domain.RoundView)
	// OnComplete fires exactly once, after the last answer record is appended.
	OnComplete func(answers []domain.AnswerRecord, score float64)
}

// Engine drives a fixed question sequence through countdown, selection,
// submission, scoring and auto-advance.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	sched     Scheduler
	hooks     Hooks
	questions []domain.Question

	index     int
	remaining int
	selection []string
	input     string
	answered  bool
	combo     combo
	score     float64
	streak    int
	answers   []domain.AnswerRecord

	tick    Task
	advance Task
	// epoch is bumped per question and on Stop; callbacks from older epochs are dropped.
	epoch    uint64
	started  bool
	stopped  bool
	finished bool
}

// NewEngine validates the question sequence and returns an engine that has not started ticking yet.
func NewEngine(questions []domain.Question, cfg Config, sched Scheduler, hooks Hooks) (*Engine, error) {
	if len(questions) == 0 {
		return nil, domain.ErrEmptyQuestionSet
	}
	for _, q := range questions {
		if err := domain.CheckPlayable(q); err != nil {
			return nil, err
		}
	}
	if sched == nil {
		sched = WallClock()
	}
	return &Engine{
		cfg:       cfg.withDefaults(),
		sched:     sched,
		hooks:     hooks,
		questions: append([]domain.Question(nil), questions...),
		answers:   make([]domain.AnswerRecord, 0, len(questions)),
	}, nil
}

// Start presents the first question and starts its countdown.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.stopped {
		return
	}
	e.started = true
	e.beginQuestionLocked(0)
	e.notifyLocked()
}

// Stop tears the engine down and cancels every pending task. It is safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return
	}
	e.stopped = true
	e.epoch++
	e.cancelTasksLocked()
}

// Select applies an option pick for MCQ (replace) or MSQ (toggle) questions.
func (e *Engine) Select(option string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.acceptingLocked() {
		return
	}
	q := e.questions[e.index]
	if !q.HasOption(option) {
		return
	}
	switch q.Type {
	case domain.QuestionMCQ:
		e.selection = []string{option}
	case domain.QuestionMSQ:
		e.selection = toggle(e.selection, option)
	default:
		return
	}
	e.notifyLocked()
}

// Input replaces the raw text answer of a NAT question.
func (e *Engine) Input(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.acceptingLocked() || e.questions[e.index].Type != domain.QuestionNAT {
		return
	}
	e.input = text
	e.notifyLocked()
}

// Submit evaluates the current question. Repeated calls are no-ops.
func (e *Engine) Submit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.acceptingLocked() {
		return
	}
	e.submitLocked()
	e.notifyLocked()
}

// Snapshot returns the current round view.
func (e *Engine) Snapshot() domain.RoundView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

func (e *Engine) acceptingLocked() bool {
	return e.started && !e.stopped && !e.finished && !e.answered
}

func (e *Engine) beginQuestionLocked(i int) {
	e.index = i
	e.remaining = e.cfg.TimeLimit
	e.selection = nil
	e.input = ""
	e.answered = false
	e.epoch++
	e.scheduleTickLocked()
}

func (e *Engine) scheduleTickLocked() {
	epoch := e.epoch
	e.tick = e.sched.AfterFunc(e.cfg.TickInterval, func() { e.onTick(epoch) })
}

func (e *Engine) onTick(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.staleLocked(epoch) || e.answered {
		return
	}
	e.tick = nil
	e.remaining--
	if e.remaining <= 0 {
		e.remaining = 0
		e.submitLocked()
	} else {
		e.scheduleTickLocked()
	}
	e.notifyLocked()
}

func (e *Engine) submitLocked() {
	e.answered = true
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}

	q := e.questions[e.index]
	final := append([]string{}, e.selection...)
	if q.Type == domain.QuestionNAT {
		final = []string{strings.TrimSpace(e.input)}
	}
	correct := Evaluate(q, final)

	if correct {
		e.score += awardPoints(e.cfg, e.remaining, e.combo.multiplier(e.cfg))
		e.streak++
		e.combo = e.combo.bump(e.cfg)
	} else {
		e.streak = 0
		e.combo = combo{}
		e.score = penalize(e.cfg, e.score, q.Type)
	}

	e.answers = append(e.answers, domain.AnswerRecord{
		QuestionID:      q.ID,
		SelectedOptions: final,
		IsCorrect:       correct,
		TimeTaken:       e.cfg.TimeLimit - e.remaining,
	})

	epoch := e.epoch
	e.advance = e.sched.AfterFunc(e.cfg.AdvanceDelay, func() { e.onAdvance(epoch) })
}

func (e *Engine) onAdvance(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.staleLocked(epoch) {
		return
	}
	e.advance = nil
	if e.index < len(e.questions)-1 {
		e.beginQuestionLocked(e.index + 1)
		e.notifyLocked()
		return
	}

	e.finished = true
	e.notifyLocked()
	if e.hooks.OnComplete != nil {
		e.hooks.OnComplete(append([]domain.AnswerRecord(nil), e.answers...), e.score)
	}
}

func (e *Engine) staleLocked(epoch uint64) bool {
	return epoch != e.epoch || e.stopped || e.finished
}

func (e *Engine) cancelTasksLocked() {
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
	if e.advance != nil {
		e.advance.Stop()
		e.advance = nil
	}
}

func (e *Engine) notifyLocked() {
	if e.hooks.OnChange != nil {
		e.hooks.OnChange(e.viewLocked())
	}
}

func (e *Engine) viewLocked() domain.RoundView {
	q := e.questions[e.index]
	v := domain.RoundView{
		Index:     e.index,
		Total:     len(e.questions),
		Question:  domain.NewQuestionView(q, e.answered),
		Remaining: e.remaining,
		Score:     e.score,
		Streak:    e.streak,
		Combo:     e.combo.multiplier(e.cfg),
		Selection: append([]string{}, e.selection...),
		Input:     e.input,
		Answered:  e.answered,
		Finished:  e.finished,
	}
	if e.answered && len(e.answers) > 0 {
		last := e.answers[len(e.answers)-1]
		v.LastAnswer = &last
	}
	return v
}

func toggle(selection []string, option string) []string {
	for i, s := range selection {
		if s == option {
			return append(selection[:i:i], selection[i+1:]...)
		}
	}
	return append(selection, option)
}
