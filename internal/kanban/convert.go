package kanban

import (
	"fmt"
	"strings"
	"time"

	"github.com/spigell/pipeboard/internal/careers"
)

const (
	minScore = 0
	maxScore = 100
)

// FromPayload builds a board from the platform payload. Column and candidate
// order is kept as the display order.
func FromPayload(pipelineID, jobID string, payload *careers.BoardPayload) (*Board, error) {
	if payload == nil {
		return nil, malformedf("empty payload")
	}

	board := &Board{
		PipelineID: pipelineID,
		JobID:      jobID,
		Stages:     make([]Stage, 0, len(payload.Columns)),
		Cards:      make(map[string]Card),
	}

	stages := make(map[string]struct{}, len(payload.Columns))
	for i, column := range payload.Columns {
		if column == nil {
			return nil, malformedf("column %d is null", i)
		}

		id := strings.TrimSpace(column.ID)
		if id == "" {
			return nil, malformedf("column %d has an empty id", i)
		}
		if _, dup := stages[id]; dup {
			return nil, malformedf("stage %q is listed twice", id)
		}
		stages[id] = struct{}{}

		stage := Stage{
			ID:        id,
			Name:      column.Name,
			CardOrder: make([]string, 0, len(column.Candidates)),
		}

		for j, candidate := range column.Candidates {
			if candidate == nil {
				return nil, malformedf("stage %q card %d is null", id, j)
			}

			card, err := cardFromCandidate(candidate)
			if err != nil {
				return nil, fmt.Errorf("stage %q card %d: %w", id, j, err)
			}
			if _, dup := board.Cards[card.ID]; dup {
				return nil, malformedf("card %q is listed twice", card.ID)
			}

			board.Cards[card.ID] = card
			stage.CardOrder = append(stage.CardOrder, card.ID)
		}

		board.Stages = append(board.Stages, stage)
	}

	return board, nil
}

func cardFromCandidate(c *careers.Candidate) (Card, error) {
	id := strings.TrimSpace(c.ID)
	if id == "" {
		return Card{}, malformedf("empty card id")
	}

	card := Card{
		ID:            id,
		ApplicationID: strings.TrimSpace(c.ApplicationID),
		CandidateName: c.StudentName,
		Email:         c.Email,
	}

	// Cards without a separate application record are moved by their own id.
	if card.ApplicationID == "" {
		card.ApplicationID = id
	}

	if c.AppliedAt != "" {
		if at, err := time.Parse(time.RFC3339, c.AppliedAt); err == nil {
			card.AppliedAt = at
		}
	}

	if c.OverallScore != nil && *c.OverallScore >= minScore && *c.OverallScore <= maxScore {
		score := *c.OverallScore
		card.Score = &score
	}

	return card, nil
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", careers.ErrMalformedBoard, fmt.Sprintf(format, args...))
}
