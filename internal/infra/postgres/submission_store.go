package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"quizdesk/internal/domain"
)

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions,alias:s"`

	ID      int64            `bun:"id,pk,autoincrement"`
	Name    string           `bun:"name,notnull"`
	QuizID  string           `bun:"quiz_id,notnull"`
	Score   int              `bun:"score,notnull"`
	Total   int              `bun:"total,notnull"`
	Answers domain.AnswerMap `bun:"answers,type:jsonb,notnull"`
	Time    time.Time        `bun:"time,nullzero,notnull,default:current_timestamp"`
}

func (r submissionRow) toDomain() domain.Submission {
	answers := r.Answers
	if answers == nil {
		answers = domain.AnswerMap{}
	}
	return domain.Submission{
		ID:      r.ID,
		Name:    r.Name,
		QuizID:  r.QuizID,
		Score:   r.Score,
		Total:   r.Total,
		Answers: answers,
		Time:    r.Time.UTC(),
	}
}

// SubmissionStore persists submissions through bun.
type SubmissionStore struct {
	db *bun.DB
}

func NewSubmissionStore(db *bun.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

func (s *SubmissionStore) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	row := &submissionRow{
		Name:    sub.Name,
		QuizID:  sub.QuizID,
		Score:   sub.Score,
		Total:   sub.Total,
		Answers: sub.Answers,
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id, time").Exec(ctx); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	sub.ID = row.ID
	sub.Time = row.Time.UTC()
	return nil
}

func (s *SubmissionStore) ListSubmissions(ctx context.Context) ([]domain.Submission, error) {
	var rows []submissionRow
	if err := s.db.NewSelect().Model(&rows).Order("time DESC", "id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	out := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *SubmissionStore) GetSubmission(ctx context.Context, id int64) (domain.Submission, error) {
	var row submissionRow
	err := s.db.NewSelect().Model(&row).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return domain.Submission{}, fmt.Errorf("get submission: %w", err)
	}
	return row.toDomain(), nil
}
