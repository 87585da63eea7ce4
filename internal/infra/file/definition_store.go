package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"quiz-proctor-service/internal/domain"
)

// DefinitionStore persists the validated quiz definition as UTF-8 JSON
// at a fixed path. This is the default backend: the definition is the
// only durable artifact of the service.
type DefinitionStore struct {
	path string
}

func NewDefinitionStore(path string) *DefinitionStore {
	return &DefinitionStore{path: path}
}

// Load reads and re-validates the stored definition. Stored bytes that
// fail validation surface a ValidationError so callers can fall back.
func (s *DefinitionStore) Load(_ context.Context) (*domain.QuizDefinition, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrNoDefinition
	}
	if err != nil {
		return nil, err
	}
	return domain.ParseDefinition(data)
}

// Save writes via a temp file and rename so a crash mid-write cannot
// leave a truncated definition behind.
func (s *DefinitionStore) Save(_ context.Context, def *domain.QuizDefinition) error {
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
