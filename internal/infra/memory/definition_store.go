package memory

import (
	"context"
	"sync"

	"quiz-proctor-service/internal/domain"
)

// DefinitionStore keeps the definition in process memory only. Useful
// for tests and demos; nothing survives a restart.
type DefinitionStore struct {
	mu  sync.RWMutex
	def *domain.QuizDefinition
}

func NewDefinitionStore() *DefinitionStore {
	return &DefinitionStore{}
}

// NewSeededDefinitionStore starts out holding the given definition.
func NewSeededDefinitionStore(def *domain.QuizDefinition) *DefinitionStore {
	return &DefinitionStore{def: def}
}

func (s *DefinitionStore) Load(_ context.Context) (*domain.QuizDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.def == nil {
		return nil, domain.ErrNoDefinition
	}
	return s.def, nil
}

func (s *DefinitionStore) Save(_ context.Context, def *domain.QuizDefinition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.def = def
	return nil
}
