// Package event defines the events published by a pipeline board and a
// synchronous bus to deliver them to interested views.
package event

import (
	"fmt"
	"time"
)

// Kind identifies an event variant.
type Kind int

const (
	KindMoved Kind = iota + 1
	KindMoveFailed
	KindReloaded
)

func (k Kind) String() string {
	switch k {
	case KindMoved:
		return "moved"
	case KindMoveFailed:
		return "move_failed"
	case KindReloaded:
		return "reloaded"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is implemented by Moved, MoveFailed and Reloaded.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

type base struct {
	kind Kind
	at   time.Time
}

func (b base) Kind() Kind           { return b.kind }
func (b base) Timestamp() time.Time { return b.at }

func newBase(kind Kind) base {
	return base{kind: kind, at: time.Now()}
}

// Position is a card location: a stage and an index in its card order.
type Position struct {
	StageID string
	Index   int
}

func (p Position) String() string {
	return fmt.Sprintf("%s[%d]", p.StageID, p.Index)
}

// Moved is published once the platform acknowledged a move.
type Moved struct {
	base
	CardID        string
	ApplicationID string
	From          Position
	To            Position
}

func NewMoved(cardID, applicationID string, from, to Position) Moved {
	return Moved{
		base:          newBase(KindMoved),
		CardID:        cardID,
		ApplicationID: applicationID,
		From:          from,
		To:            to,
	}
}

// MoveFailed is published after a rejected move and the reload that followed.
// ReloadErr is set when that reload failed too.
type MoveFailed struct {
	base
	CardID        string
	ApplicationID string
	From          Position
	To            Position
	Err           error
	ReloadErr     error
}

func NewMoveFailed(cardID, applicationID string, from, to Position, err, reloadErr error) MoveFailed {
	return MoveFailed{
		base:          newBase(KindMoveFailed),
		CardID:        cardID,
		ApplicationID: applicationID,
		From:          from,
		To:            to,
		Err:           err,
		ReloadErr:     reloadErr,
	}
}

// ReloadReason says why a board was (re)loaded.
type ReloadReason int

const (
	ReasonInitial ReloadReason = iota
	ReasonManual
	ReasonMoveFailed
	ReasonPoll
)

func (r ReloadReason) String() string {
	switch r {
	case ReasonInitial:
		return "initial"
	case ReasonManual:
		return "manual"
	case ReasonMoveFailed:
		return "move_failed"
	case ReasonPoll:
		return "poll"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Reloaded is published whenever the board state was replaced from the platform.
type Reloaded struct {
	base
	PipelineID string
	JobID      string
	Generation uint64
	Reason     ReloadReason
}

func NewReloaded(pipelineID, jobID string, generation uint64, reason ReloadReason) Reloaded {
	return Reloaded{
		base:       newBase(KindReloaded),
		PipelineID: pipelineID,
		JobID:      jobID,
		Generation: generation,
		Reason:     reason,
	}
}

// Describe returns a one-line human readable summary of e.
func Describe(e Event) string {
	switch ev := e.(type) {
	case Moved:
		return fmt.Sprintf("card %s moved %s -> %s", ev.CardID, ev.From, ev.To)
	case MoveFailed:
		msg := fmt.Sprintf("card %s move %s -> %s failed: %v", ev.CardID, ev.From, ev.To, ev.Err)
		if ev.ReloadErr != nil {
			msg += fmt.Sprintf(" (reload failed: %v)", ev.ReloadErr)
		}
		return msg
	case Reloaded:
		return fmt.Sprintf("board %s reloaded (%s, generation %d)", boardName(ev.PipelineID, ev.JobID), ev.Reason, ev.Generation)
	default:
		return fmt.Sprintf("unknown event %T", e)
	}
}

func boardName(pipelineID, jobID string) string {
	if jobID == "" {
		return pipelineID
	}
	return pipelineID + "/" + jobID
}
