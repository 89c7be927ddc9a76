package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"quizdesk/internal/domain"
)

// DocumentStore keeps quiz documents as JSONB in the quizzes table.
type DocumentStore struct {
	pool *pgxpool.Pool
}

func NewDocumentStore(pool *pgxpool.Pool) *DocumentStore {
	return &DocumentStore{pool: pool}
}

func (s *DocumentStore) LoadDocument(ctx context.Context, quizID string) ([]byte, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data::text FROM quizzes WHERE id=$1`, quizID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	return raw, nil
}

func (s *DocumentStore) SaveDocument(ctx context.Context, quizID string, raw []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quizzes (id, data, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		quizID, string(raw))
	if err != nil {
		return fmt.Errorf("save quiz: %w", err)
	}
	return nil
}

func (s *DocumentStore) ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, data::text FROM quizzes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []domain.DocumentRecord
	for rows.Next() {
		var rec domain.DocumentRecord
		if err := rows.Scan(&rec.ID, &rec.Raw); err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
