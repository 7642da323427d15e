// Package render draws a pipeline board for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spigell/pipeboard/internal/kanban"
)

const columnWidth = 28

var (
	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 1).
			Width(columnWidth)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F59E0B"))

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))
)

// StateFunc reports the move state of a card.
type StateFunc func(cardID string) kanban.CardState

// Board renders the stages of b side by side. state may be nil.
func Board(b *kanban.Board, state StateFunc) string {
	if b == nil || len(b.Stages) == 0 {
		return "no stages"
	}

	columns := make([]string, 0, len(b.Stages))
	for _, stage := range b.Stages {
		columns = append(columns, columnStyle.Render(Stage(b, stage, state)))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

// Stage renders the header and the cards of one stage.
func Stage(b *kanban.Board, stage kanban.Stage, state StateFunc) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", stage.Name, len(stage.CardOrder))))

	if len(stage.CardOrder) == 0 {
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render("empty"))
	}

	for _, id := range stage.CardOrder {
		sb.WriteString("\n")
		sb.WriteString(cardLine(b.Cards[id], stateOf(state, id)))
	}

	return sb.String()
}

func cardLine(card kanban.Card, state kanban.CardState) string {
	name := card.CandidateName
	if name == "" {
		name = card.ID
	}

	line := fmt.Sprintf("%s  %s", name, Score(card.Score))
	switch state {
	case kanban.PendingMove:
		return pendingStyle.Render("… " + line)
	case kanban.Reloading:
		return pendingStyle.Render("↻ " + line)
	default:
		return line
	}
}

// Score formats a match score, "-" when the card was not scored yet.
func Score(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *score)
}

func stateOf(state StateFunc, cardID string) kanban.CardState {
	if state == nil {
		return kanban.Settled
	}
	return state(cardID)
}
