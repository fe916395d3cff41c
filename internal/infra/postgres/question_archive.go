package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"exam-drill-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ArchivedSet is a generated question set as stored in Postgres.
type ArchivedSet struct {
	ID        string
	Config    domain.QuizConfig
	Questions []domain.Question
	CreatedAt time.Time
}

// QuestionArchive records every generated question set as JSONB.
type QuestionArchive struct {
	pool *pgxpool.Pool
}

func NewQuestionArchive(pool *pgxpool.Pool) *QuestionArchive {
	return &QuestionArchive{pool: pool}
}

// Save stores questions under a new id and returns it.
func (a *QuestionArchive) Save(ctx context.Context, cfg domain.QuizConfig, questions []domain.Question) (string, error) {
	data, err := json.Marshal(questions)
	if err != nil {
		return "", fmt.Errorf("marshal question set: %w", err)
	}
	id := uuid.NewString()
	_, err = a.pool.Exec(ctx,
		`INSERT INTO question_sets (id, topic, exam_type, difficulty, count, data) VALUES ($1, $2, $3, $4, $5, $6::jsonb)`,
		id, cfg.Topic, cfg.ExamType, string(cfg.Difficulty), cfg.QuestionCount, string(data),
	)
	if err != nil {
		return "", fmt.Errorf("insert question set: %w", err)
	}
	return id, nil
}

// Load fetches an archived set by id.
func (a *QuestionArchive) Load(ctx context.Context, id string) (ArchivedSet, error) {
	var (
		set        ArchivedSet
		difficulty string
		raw        []byte
	)
	err := a.pool.QueryRow(ctx,
		`SELECT id::text, topic, exam_type, difficulty, count, data, created_at FROM question_sets WHERE id=$1`, id,
	).Scan(&set.ID, &set.Config.Topic, &set.Config.ExamType, &difficulty, &set.Config.QuestionCount, &raw, &set.CreatedAt)
	if err != nil {
		return ArchivedSet{}, fmt.Errorf("load question set: %w", err)
	}
	set.Config.Difficulty = domain.Difficulty(difficulty)
	if err := json.Unmarshal(raw, &set.Questions); err != nil {
		return ArchivedSet{}, fmt.Errorf("unmarshal question set: %w", err)
	}
	return set, nil
}
