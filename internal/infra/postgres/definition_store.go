package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-proctor-service/internal/domain"
)

// DefinitionStore keeps the quiz definition in a single JSONB row.
// There is one quiz per process, so the table holds at most one row.
type DefinitionStore struct {
	pool *pgxpool.Pool
}

func NewDefinitionStore(pool *pgxpool.Pool) *DefinitionStore {
	return &DefinitionStore{pool: pool}
}

func (s *DefinitionStore) Load(ctx context.Context) (*domain.QuizDefinition, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quiz_definition WHERE id = 1`).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNoDefinition
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz definition: %w", err)
	}
	return domain.ParseDefinition(raw)
}

func (s *DefinitionStore) Save(ctx context.Context, def *domain.QuizDefinition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quiz_definition (id, data, updated_at) VALUES (1, $1, now())
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		data)
	if err != nil {
		return fmt.Errorf("save quiz definition: %w", err)
	}
	return nil
}
