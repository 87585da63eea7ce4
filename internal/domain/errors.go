package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoQuizLoaded is returned when an operation needs a definition and none is loaded.
	ErrNoQuizLoaded = errors.New("no quiz loaded")
	// ErrQuizInProgress is returned when starting a quiz that is already running.
	ErrQuizInProgress = errors.New("quiz already in progress")
	// ErrQuizNotActive is returned when advancing a quiz that is not running.
	ErrQuizNotActive = errors.New("quiz is not active")
	// ErrSessionBusy is returned when uploading a definition while a session runs.
	ErrSessionBusy = errors.New("cannot replace the quiz while a session is in progress")
	// ErrParticipantNotFound is returned for submissions from unknown clients.
	ErrParticipantNotFound = errors.New("client not found")
	// ErrNoResults is returned when exporting an empty result set.
	ErrNoResults = errors.New("no results available")
	// ErrNoDefinition is returned by definition stores with nothing persisted.
	ErrNoDefinition = errors.New("no quiz definition stored")
)

// ValidationError reports a quiz definition schema violation. The message
// is shown verbatim to the proctor.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
