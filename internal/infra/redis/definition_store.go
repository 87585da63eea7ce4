package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"quiz-proctor-service/internal/domain"
)

const definitionKey = "quiz:definition"

// DefinitionStore persists the quiz definition as a JSON value in
// Redis. Selected by config when a Redis address is present; the key
// is written without a TTL since the definition must outlive restarts.
type DefinitionStore struct {
	client *redis.Client
}

func NewDefinitionStore(client *redis.Client) *DefinitionStore {
	return &DefinitionStore{client: client}
}

func (s *DefinitionStore) Load(ctx context.Context) (*domain.QuizDefinition, error) {
	data, err := s.client.Get(ctx, definitionKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNoDefinition
	}
	if err != nil {
		return nil, err
	}
	return domain.ParseDefinition(data)
}

func (s *DefinitionStore) Save(ctx context.Context, def *domain.QuizDefinition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, definitionKey, data, 0).Err()
}
