package kanban

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned by Load when a newer load was requested while
	// this one was in flight. Its response has been discarded.
	ErrSuperseded = errors.New("load superseded by a newer request")
	// ErrNotLoaded is returned when an operation needs a board and none was loaded yet.
	ErrNotLoaded = errors.New("board is not loaded")
)

// LoadError is returned when a board could not be fetched or decoded.
type LoadError struct {
	PipelineID string
	JobID      string
	Err        error
}

func (e *LoadError) Error() string {
	if e.JobID == "" {
		return fmt.Sprintf("load board of pipeline %q: %v", e.PipelineID, e.Err)
	}
	return fmt.Sprintf("load board of pipeline %q, job %q: %v", e.PipelineID, e.JobID, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// MoveError is a move the platform rejected or that never reached it.
type MoveError struct {
	CardID        string
	ApplicationID string
	ToStageID     string
	Err           error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move card %q (application %q) to stage %q: %v", e.CardID, e.ApplicationID, e.ToStageID, e.Err)
}

func (e *MoveError) Unwrap() error { return e.Err }

// ValidationError is a move whose preconditions do not hold on the current board.
type ValidationError struct {
	CardID string
	Reason string
	// Err is set when the move was refused because of a sentinel such as ErrNotLoaded.
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid move of card %q: %s", e.CardID, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(req MoveRequest, format string, args ...any) error {
	return &ValidationError{CardID: req.CardID, Reason: fmt.Sprintf(format, args...)}
}
