package domain

import (
	"encoding/json"
	"strings"
)

// ParseDefinition decodes raw UTF-8 JSON into a QuizDefinition and
// validates it. Any violation rejects the whole upload; nothing is
// partially applied.
func ParseDefinition(raw []byte) (*QuizDefinition, error) {
	var def QuizDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, validationf("invalid quiz JSON: %v", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// Validate checks the definition schema.
func (d *QuizDefinition) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return validationf("quiz title is required")
	}
	if d.TimeLimit <= 0 {
		return validationf("timeLimit must be a positive number of seconds")
	}
	if len(d.Questions) == 0 {
		return validationf("quiz must contain at least one question")
	}
	seen := make(map[int]struct{}, len(d.Questions))
	for i, q := range d.Questions {
		if _, ok := seen[q.ID]; ok {
			return validationf("question %d: duplicate id %d", i+1, q.ID)
		}
		seen[q.ID] = struct{}{}
		if strings.TrimSpace(q.Text) == "" {
			return validationf("question %d: question text is required", i+1)
		}
		if len(q.Options) < 2 {
			return validationf("question %d: at least two options are required", i+1)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return validationf("question %d: correctAnswer must index into options", i+1)
		}
		if q.Points <= 0 {
			return validationf("question %d: points must be positive", i+1)
		}
	}
	return nil
}
