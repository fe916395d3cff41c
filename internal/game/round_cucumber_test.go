//go:build cucumber

package game_test

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"exam-drill-service/internal/domain"
	"exam-drill-service/internal/game"
	"exam-drill-service/internal/game/gametest"
)

// TestRoundFeatures executes the round scoring scenarios via godog.
func TestRoundFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "round",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "round.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeScenario wires step definitions for the round feature tests.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &roundState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		*state = roundState{}
		return ctx, nil
	})

	ctx.Step(`^an? (MCQ|MSQ|NAT) question with answer "([^"]*)"$`, state.givenQuestion)
	ctx.Step(`^the round starts$`, state.roundStarts)
	ctx.Step(`^(\d+) time units? pass(?:es)?$`, state.timePasses)
	ctx.Step(`^the player selects "([^"]*)"$`, state.selects)
	ctx.Step(`^the player types "([^"]*)"$`, state.types)
	ctx.Step(`^the player submits$`, state.submits)
	ctx.Step(`^the feedback pause ends$`, state.pauseEnds)
	ctx.Step(`^the score is ([\d.]+)$`, state.scoreIs)
	ctx.Step(`^the streak is (\d+)$`, state.streakIs)
	ctx.Step(`^the combo multiplier is ([\d.]+)$`, state.comboIs)
	ctx.Step(`^the last answer is (correct|incorrect) after (\d+) units$`, state.lastAnswerIs)
	ctx.Step(`^the round is finished with (\d+) answers$`, state.finishedWith)
}

type roundState struct {
	questions []domain.Question
	sched     *gametest.Scheduler
	engine    *game.Engine
	last      domain.RoundView
	answers   []domain.AnswerRecord
	finished  bool
}

func (s *roundState) givenQuestion(kind, answer string) error {
	q := domain.Question{
		ID:            fmt.Sprintf("q%d", len(s.questions)+1),
		Type:          domain.QuestionType(kind),
		Text:          "question",
		CorrectAnswer: strings.Split(answer, ","),
		Explanation:   "because",
	}
	if q.Type != domain.QuestionNAT {
		q.Options = []string{"A", "B", "C", "D"}
	}
	s.questions = append(s.questions, q)
	return nil
}

func (s *roundState) roundStarts() error {
	s.sched = gametest.NewScheduler()
	engine, err := game.NewEngine(s.questions, game.DefaultConfig(), s.sched, game.Hooks{
		OnChange: func(v domain.RoundView) { s.last = v },
		OnComplete: func(answers []domain.AnswerRecord, _ float64) {
			s.answers = answers
			s.finished = true
		},
	})
	if err != nil {
		return err
	}
	s.engine = engine
	engine.Start()
	return nil
}

func (s *roundState) timePasses(units int) error {
	s.sched.Advance(time.Duration(units) * time.Second)
	return nil
}

func (s *roundState) selects(option string) error {
	s.engine.Select(option)
	return nil
}

func (s *roundState) types(text string) error {
	s.engine.Input(text)
	return nil
}

func (s *roundState) submits() error {
	s.engine.Submit()
	return nil
}

func (s *roundState) pauseEnds() error {
	s.sched.Advance(2500 * time.Millisecond)
	return nil
}

func (s *roundState) scoreIs(want float64) error {
	if got := s.engine.Snapshot().Score; !approx(got, want) {
		return fmt.Errorf("expected score %v, got %v", want, got)
	}
	return nil
}

func (s *roundState) streakIs(want int) error {
	if got := s.engine.Snapshot().Streak; got != want {
		return fmt.Errorf("expected streak %d, got %d", want, got)
	}
	return nil
}

func (s *roundState) comboIs(want float64) error {
	if got := s.engine.Snapshot().Combo; !approx(got, want) {
		return fmt.Errorf("expected combo %v, got %v", want, got)
	}
	return nil
}

func (s *roundState) lastAnswerIs(verdict string, units int) error {
	last := s.last.LastAnswer
	if last == nil {
		return fmt.Errorf("no answer recorded yet")
	}
	if last.IsCorrect != (verdict == "correct") || last.TimeTaken != units {
		return fmt.Errorf("unexpected last answer %+v", *last)
	}
	return nil
}

func (s *roundState) finishedWith(n int) error {
	if !s.finished || len(s.answers) != n {
		return fmt.Errorf("expected finished round with %d answers, finished=%v answers=%d", n, s.finished, len(s.answers))
	}
	return nil
}
