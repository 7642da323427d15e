package kanban

import (
	"fmt"

	"github.com/spigell/pipeboard/internal/event"
)

// CardState is the lifecycle of a card with respect to a move.
type CardState int

const (
	// Settled cards are where the platform last said they are.
	Settled CardState = iota
	// PendingMove cards have been moved locally and wait for the platform acknowledgement.
	PendingMove
	// Reloading cards had their move rejected; the board is being reloaded.
	Reloading
)

func (s CardState) String() string {
	switch s {
	case Settled:
		return "settled"
	case PendingMove:
		return "pending"
	case Reloading:
		return "reloading"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MoveRequest relocates one card to ToIndex of ToStageID.
type MoveRequest struct {
	CardID      string
	FromStageID string
	ToStageID   string
	ToIndex     int
	// Note is sent to the platform along with the move.
	Note string
}

// MoveOutcome says what a Move call did.
type MoveOutcome int

const (
	// MoveApplied moves were applied locally and acknowledged by the platform.
	MoveApplied MoveOutcome = iota
	// MoveNoop moves left the card where it was.
	MoveNoop
	// MoveInvalid moves did not match the board and were ignored.
	MoveInvalid
	// MoveFailed moves were rejected and the board was reloaded.
	MoveFailed
)

func (o MoveOutcome) String() string {
	switch o {
	case MoveApplied:
		return "applied"
	case MoveNoop:
		return "noop"
	case MoveInvalid:
		return "invalid"
	case MoveFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MoveResult reports the outcome of a Move call.
type MoveResult struct {
	Outcome MoveOutcome
	From    event.Position
	To      event.Position
	// Err is a *ValidationError for invalid moves and a *MoveError for failed
	// ones, joined with the reload error when the recovery reload failed too.
	Err error
}
