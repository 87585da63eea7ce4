package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quiz-proctor-service/internal/domain"
)

// DefinitionStore abstracts where the validated quiz definition is
// persisted (file, Redis, Postgres). Participants and results are never
// persisted; they live and die with the process.
type DefinitionStore interface {
	Load(ctx context.Context) (*domain.QuizDefinition, error)
	Save(ctx context.Context, def *domain.QuizDefinition) error
}

// Service owns the whole quiz session: the loaded definition, the
// participant registry, the phase state machine, and the result set.
// A single mutex guards all four; every operation runs to completion
// under it, so concurrent start/reset/submit calls cannot interleave.
type Service struct {
	store DefinitionStore
	clock func() time.Time

	mu           sync.Mutex
	def          *domain.QuizDefinition
	phase        domain.Phase
	startedAt    time.Time
	current      int
	order        []string
	participants map[string]*domain.Participant
	results      []domain.ResultRecord
}

func NewService(store DefinitionStore) *Service {
	return NewServiceWithClock(store, time.Now)
}

// NewServiceWithClock is test-only for deterministic timestamps.
func NewServiceWithClock(store DefinitionStore, now func() time.Time) *Service {
	return &Service{
		store:        store,
		clock:        now,
		phase:        domain.PhaseIdle,
		participants: make(map[string]*domain.Participant),
	}
}

// Bootstrap loads a previously persisted definition. An empty store or
// stored bytes that no longer validate fall back to the given sample
// definition; a nil fallback leaves the service with no quiz loaded.
func (s *Service) Bootstrap(ctx context.Context, fallback *domain.QuizDefinition) error {
	def, err := s.store.Load(ctx)
	if err != nil {
		var vErr *domain.ValidationError
		if !errors.Is(err, domain.ErrNoDefinition) && !errors.As(err, &vErr) {
			return err
		}
		def = fallback
	}
	s.mu.Lock()
	s.def = def
	s.mu.Unlock()
	return nil
}

// Upload validates and installs a new definition, persisting it through
// the store. Rejected while a session is in progress; the proctor must
// reset first. On success the result set is cleared and every connected
// participant goes back to waiting.
func (s *Service) Upload(ctx context.Context, raw []byte) (*domain.QuizDefinition, error) {
	def, err := domain.ParseDefinition(raw)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.PhaseActive {
		return nil, domain.ErrSessionBusy
	}
	if err := s.store.Save(ctx, def); err != nil {
		return nil, fmt.Errorf("persist quiz definition: %w", err)
	}
	s.def = def
	s.results = nil
	for _, p := range s.participants {
		p.Status = domain.StatusWaiting
	}
	return def, nil
}

// Start begins the session: phase goes active, the question pointer
// rewinds to 0, and every registered participant becomes active.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.def == nil {
		return domain.ErrNoQuizLoaded
	}
	if s.phase == domain.PhaseActive {
		return domain.ErrQuizInProgress
	}
	s.phase = domain.PhaseActive
	s.startedAt = s.clock().UTC()
	s.current = 0
	for _, p := range s.participants {
		p.Status = domain.StatusActive
	}
	return nil
}

// Advance moves the session to the next question and returns the new
// index. At the last question it is a clamped no-op that still
// succeeds, so the proctor can press past the end safely.
func (s *Service) Advance() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseActive {
		return 0, domain.ErrQuizNotActive
	}
	if s.def == nil {
		return 0, domain.ErrNoQuizLoaded
	}
	if s.current < len(s.def.Questions)-1 {
		s.current++
	}
	return s.current, nil
}

// Reset unconditionally returns the session to idle: participants,
// results, start time, and question pointer are all wiped. The
// persisted definition is kept.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = domain.PhaseIdle
	s.startedAt = time.Time{}
	s.current = 0
	s.results = nil
	s.order = nil
	s.participants = make(map[string]*domain.Participant)
}

// Connect registers a new participant. An empty name gets the default
// "Client N" where N is the current registry size + 1; default names
// are best-effort unique, since a reset restarts the count.
func (s *Service) Connect(name string) domain.ConnectInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Client %d", len(s.participants)+1)
	}
	status := domain.StatusWaiting
	if s.phase == domain.PhaseActive {
		status = domain.StatusActive
	}
	p := &domain.Participant{ID: uuid.NewString(), Name: name, Status: status}
	s.participants[p.ID] = p
	s.order = append(s.order, p.ID)

	return domain.ConnectInfo{
		ClientID:        p.ID,
		ClientName:      p.Name,
		QuizData:        s.def,
		TotalClients:    len(s.participants),
		QuizInProgress:  s.phase == domain.PhaseActive,
		StartedAt:       s.startedAtLocked(),
		CurrentQuestion: s.current,
	}
}

// Submit scores an ordered answer sheet for a participant, marks them
// completed, and appends the record to the result set. Answers past the
// last question are ignored. A participant may submit more than once;
// each submission appends a fresh record.
func (s *Service) Submit(clientID string, answers []any) (domain.ResultRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.def == nil {
		return domain.ResultRecord{}, domain.ErrNoQuizLoaded
	}
	p, ok := s.participants[clientID]
	if !ok {
		return domain.ResultRecord{}, domain.ErrParticipantNotFound
	}

	total := len(s.def.Questions)
	correct := 0
	for i, raw := range answers {
		if i >= total {
			break
		}
		if idx, ok := answerIndex(raw); ok && idx == s.def.Questions[i].CorrectAnswer {
			correct++
		}
	}

	record := domain.ResultRecord{
		ClientID:         p.ID,
		ClientName:       p.Name,
		CorrectAnswers:   correct,
		TotalQuestions:   total,
		IncorrectAnswers: total - correct,
		Accuracy:         accuracy(correct, total),
		TimeTaken:        0, // client-reported timing is not trusted
	}
	p.Status = domain.StatusCompleted
	s.results = append(s.results, record)
	return record, nil
}

// Results returns the ranked result set. The stored set is unordered;
// ranking happens on every read.
func (s *Service) Results() []domain.ResultRecord {
	s.mu.Lock()
	records := make([]domain.ResultRecord, len(s.results))
	copy(records, s.results)
	s.mu.Unlock()
	return RankResults(records)
}

// Status reports the polling snapshot.
func (s *Service) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	completed := 0
	for _, p := range s.participants {
		if p.Status == domain.StatusCompleted {
			completed++
		}
	}
	st := domain.SessionStatus{
		Status:           "running",
		QuizInProgress:   s.phase == domain.PhaseActive,
		QuizLoaded:       s.def != nil,
		TotalClients:     len(s.participants),
		CompletedClients: completed,
		StartedAt:        s.startedAtLocked(),
		CurrentQuestion:  s.current,
	}
	if s.def != nil {
		st.QuizTitle = s.def.Title
		st.TotalQuestions = len(s.def.Questions)
	}
	return st
}

// Participants lists participants in registration order.
func (s *Service) Participants() []domain.Participant {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.participants[id])
	}
	return out
}

// Definition returns the loaded definition, if any.
func (s *Service) Definition() (*domain.QuizDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.def, s.def != nil
}

func (s *Service) startedAtLocked() *time.Time {
	if s.startedAt.IsZero() {
		return nil
	}
	t := s.startedAt
	return &t
}

// answerIndex coerces a submitted answer to an option index. JSON
// numbers arrive as float64; numeric strings are accepted. Anything
// else counts as a wrong answer rather than an error.
func answerIndex(v any) (int, bool) {
	switch a := v.(type) {
	case int:
		return a, true
	case float64:
		return int(a), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
