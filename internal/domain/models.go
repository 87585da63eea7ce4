package domain

import "time"

// Phase is the session's coarse lifecycle state. There is no distinct
// completed phase; a finished quiz stays active until the proctor resets.
type Phase string

const (
	PhaseIdle   Phase = "idle"
	PhaseActive Phase = "active"
)

// Participant statuses.
const (
	StatusWaiting   = "waiting"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Question models an MCQ question; correctAnswer indexes into options.
type Question struct {
	ID            int      `json:"id"`
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Points        int      `json:"points"`
}

// QuizDefinition is the proctor-authored quiz content. Immutable once
// loaded; a new upload replaces it wholesale.
type QuizDefinition struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	TimeLimit   int        `json:"timeLimit"`
	Questions   []Question `json:"questions"`
}

// Participant is a connected quiz-taker.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// ResultRecord is the scored outcome of one submission.
type ResultRecord struct {
	ClientID         string `json:"clientId"`
	ClientName       string `json:"clientName"`
	CorrectAnswers   int    `json:"correctAnswers"`
	TotalQuestions   int    `json:"totalQuestions"`
	IncorrectAnswers int    `json:"incorrectAnswers"`
	Accuracy         int    `json:"accuracy"`
	TimeTaken        int    `json:"timeTaken"`

	// Legacy point-based fields. Only ever read back from old stored
	// data; new records never populate them.
	Score    int `json:"score,omitempty"`
	MaxScore int `json:"maxScore,omitempty"`
}

// SessionStatus is the polling snapshot served to clients and the admin panel.
type SessionStatus struct {
	Status           string     `json:"status"`
	QuizInProgress   bool       `json:"quizInProgress"`
	QuizLoaded       bool       `json:"quizLoaded"`
	TotalClients     int        `json:"totalClients"`
	CompletedClients int        `json:"completedClients"`
	QuizTitle        string     `json:"quizTitle,omitempty"`
	TotalQuestions   int        `json:"totalQuestions,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	CurrentQuestion  int        `json:"currentQuestion"`
}

// ConnectInfo is returned to a participant on connect.
type ConnectInfo struct {
	ClientID        string          `json:"clientId"`
	ClientName      string          `json:"clientName"`
	QuizData        *QuizDefinition `json:"quizData"`
	TotalClients    int             `json:"totalClients"`
	QuizInProgress  bool            `json:"quizInProgress"`
	StartedAt       *time.Time      `json:"startedAt,omitempty"`
	CurrentQuestion int             `json:"currentQuestion"`
}
