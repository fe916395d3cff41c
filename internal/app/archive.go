package app

import (
	"context"

	"exam-drill-service/internal/domain"
	"go.uber.org/zap"
)

// QuestionArchive persists generated sets for later auditing.
type QuestionArchive interface {
	Save(ctx context.Context, cfg domain.QuizConfig, questions []domain.Question) (string, error)
}

// ArchivingGenerator records every successful generation. Archive failures are
// logged and never fail the quiz.
type ArchivingGenerator struct {
	next    QuestionGenerator
	archive QuestionArchive
	logger  *zap.Logger
}

func NewArchivingGenerator(next QuestionGenerator, archive QuestionArchive, logger *zap.Logger) *ArchivingGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchivingGenerator{next: next, archive: archive, logger: logger}
}

func (g *ArchivingGenerator) Generate(ctx context.Context, cfg domain.QuizConfig) ([]domain.Question, error) {
	questions, err := g.next.Generate(ctx, cfg)
	if err != nil {
		return nil, err
	}
	id, err := g.archive.Save(ctx, cfg, questions)
	if err != nil {
		g.logger.Warn("archive question set", zap.String("topic", cfg.Topic), zap.Error(err))
		return questions, nil
	}
	g.logger.Debug("question set archived", zap.String("set_id", id), zap.Int("questions", len(questions)))
	return questions, nil
}
