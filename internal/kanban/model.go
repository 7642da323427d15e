package kanban

import (
	"time"

	"github.com/spigell/pipeboard/internal/event"
)

// Stage is one pipeline phase, e.g. "Applied", "Interview" or "Offer".
type Stage struct {
	ID   string
	Name string
	// CardOrder lists card ids top to bottom.
	CardOrder []string
}

// Card is a candidate application shown on the board.
type Card struct {
	ID string
	// ApplicationID identifies the backing record on the platform.
	ApplicationID string
	CandidateName string
	Email         string
	AppliedAt     time.Time
	// Score is the 0-100 match score, nil until the application is scored.
	Score *float64
}

// Board is the Kanban view of one pipeline, optionally scoped to a job.
// Every card id is listed in exactly one stage.
type Board struct {
	PipelineID string
	JobID      string
	Stages     []Stage
	Cards      map[string]Card
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	if b == nil {
		return nil
	}

	out := &Board{
		PipelineID: b.PipelineID,
		JobID:      b.JobID,
		Stages:     make([]Stage, len(b.Stages)),
		Cards:      make(map[string]Card, len(b.Cards)),
	}

	for i, stage := range b.Stages {
		out.Stages[i] = Stage{
			ID:        stage.ID,
			Name:      stage.Name,
			CardOrder: append([]string(nil), stage.CardOrder...),
		}
	}

	for id, card := range b.Cards {
		if card.Score != nil {
			score := *card.Score
			card.Score = &score
		}
		out.Cards[id] = card
	}

	return out
}

// Stage returns the stage with the given id.
func (b *Board) Stage(id string) (*Stage, bool) {
	idx := b.stageIndex(id)
	if idx < 0 {
		return nil, false
	}
	return &b.Stages[idx], true
}

// Card returns the card with the given id.
func (b *Board) Card(id string) (Card, bool) {
	card, ok := b.Cards[id]
	return card, ok
}

// Locate returns the position of a card on the board.
func (b *Board) Locate(cardID string) (event.Position, bool) {
	for _, stage := range b.Stages {
		for i, id := range stage.CardOrder {
			if id == cardID {
				return event.Position{StageID: stage.ID, Index: i}, true
			}
		}
	}
	return event.Position{}, false
}

// CardIDs returns every card id on the board in stage order.
func (b *Board) CardIDs() []string {
	ids := make([]string, 0, len(b.Cards))
	for _, stage := range b.Stages {
		ids = append(ids, stage.CardOrder...)
	}
	return ids
}

// Len returns the number of cards on the board.
func (b *Board) Len() int {
	n := 0
	for _, stage := range b.Stages {
		n += len(stage.CardOrder)
	}
	return n
}

func (b *Board) stageIndex(id string) int {
	for i, stage := range b.Stages {
		if stage.ID == id {
			return i
		}
	}
	return -1
}

// validateMove checks a move against the board and returns the current
// position of the card.
func (b *Board) validateMove(req MoveRequest) (event.Position, error) {
	from := b.stageIndex(req.FromStageID)
	if from < 0 {
		return event.Position{}, invalid(req, "unknown source stage %q", req.FromStageID)
	}

	to := b.stageIndex(req.ToStageID)
	if to < 0 {
		return event.Position{}, invalid(req, "unknown destination stage %q", req.ToStageID)
	}

	current := indexOf(b.Stages[from].CardOrder, req.CardID)
	if current < 0 {
		return event.Position{}, invalid(req, "card is not in stage %q", req.FromStageID)
	}

	if _, ok := b.Cards[req.CardID]; !ok {
		return event.Position{}, invalid(req, "card is not on the board")
	}

	limit := len(b.Stages[to].CardOrder)
	if from == to {
		limit--
	}
	if req.ToIndex < 0 || req.ToIndex > limit {
		return event.Position{}, invalid(req, "index %d out of range [0, %d]", req.ToIndex, limit)
	}

	return event.Position{StageID: req.FromStageID, Index: current}, nil
}

// applyMove removes the card from its source stage and inserts it into the
// destination stage. The move must have been validated.
func (b *Board) applyMove(req MoveRequest, from event.Position) event.Position {
	src := &b.Stages[b.stageIndex(from.StageID)]
	src.CardOrder = append(src.CardOrder[:from.Index:from.Index], src.CardOrder[from.Index+1:]...)

	dst := &b.Stages[b.stageIndex(req.ToStageID)]
	order := make([]string, 0, len(dst.CardOrder)+1)
	order = append(order, dst.CardOrder[:req.ToIndex]...)
	order = append(order, req.CardID)
	order = append(order, dst.CardOrder[req.ToIndex:]...)
	dst.CardOrder = order

	return event.Position{StageID: req.ToStageID, Index: req.ToIndex}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}
