package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/pipeboard/internal/kanban"
	"github.com/spigell/pipeboard/internal/render"
)

var moveCmd = &cobra.Command{
	Use:   "move [card-id] [stage-id] [index]",
	Short: "Move a card to a stage of the board",
	Long: `Move a card to a position in a stage and persist the move on the platform.
Missing arguments are chosen interactively. The index defaults to the end of the stage.`,
	Args: cobra.MaximumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		move(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)

	moveCmd.Flags().StringP("note", "n", "", "a note sent to the platform with the move")
}

func move(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	s := newSession(ctx)
	b := s.load(ctx)

	note, _ := cmd.Flags().GetString("note")

	req, err := buildMoveRequest(b, args, promptMoveArgs)
	if err != nil {
		s.logger.Fatal("preparing the move", zap.Error(err))
	}
	req.Note = note

	res := s.board.Move(ctx, req)

	switch res.Outcome {
	case kanban.MoveNoop:
		s.logger.Info("card is already there", zap.String("card_id", req.CardID), zap.Stringer("position", res.To))
	case kanban.MoveInvalid:
		s.logger.Fatal("move does not match the board", zap.Error(res.Err))
	case kanban.MoveFailed:
		printSnapshot(cmd, s)
		s.logger.Fatal("move rejected by the platform, the board was reloaded", zap.Error(res.Err))
	}

	printSnapshot(cmd, s)
}

func printSnapshot(cmd *cobra.Command, s *session) {
	if b, ok := s.board.Snapshot(); ok {
		s.print(cmd.OutOrStdout(), b)
	}
}

// moveArgs asks for arguments that were not given on the command line.
type moveArgs func(b *kanban.Board, cardID, stageID string) (string, string, int, error)

// buildMoveRequest turns positional arguments into a request against b. The
// index defaults to the end of the target stage.
func buildMoveRequest(b *kanban.Board, args []string, ask moveArgs) (kanban.MoveRequest, error) {
	var cardID, stageID string
	index := -1

	if len(args) > 0 {
		cardID = args[0]
	}
	if len(args) > 1 {
		stageID = args[1]
	}
	if len(args) > 2 {
		i, err := strconv.Atoi(args[2])
		if err != nil {
			return kanban.MoveRequest{}, fmt.Errorf("index %q is not a number", args[2])
		}
		index = i
	}

	if len(args) < 2 {
		if ask == nil {
			return kanban.MoveRequest{}, errors.New("card and stage are required")
		}
		var err error
		cardID, stageID, index, err = ask(b, cardID, stageID)
		if err != nil {
			return kanban.MoveRequest{}, err
		}
	}

	from, ok := b.Locate(cardID)
	if !ok {
		return kanban.MoveRequest{}, fmt.Errorf("card %q is not on the board", cardID)
	}

	if index < 0 {
		index = endOf(b, from.StageID, stageID)
	}

	return kanban.MoveRequest{
		CardID:      cardID,
		FromStageID: from.StageID,
		ToStageID:   stageID,
		ToIndex:     index,
	}, nil
}

// endOf is the last valid index of the target stage for a card coming from source.
func endOf(b *kanban.Board, source, target string) int {
	stage, ok := b.Stage(target)
	if !ok {
		return 0
	}
	if source == target {
		return len(stage.CardOrder) - 1
	}
	return len(stage.CardOrder)
}

func promptMoveArgs(b *kanban.Board, cardID, stageID string) (string, string, int, error) {
	if cardID == "" {
		items := make([]string, 0, b.Len())
		for _, stage := range b.Stages {
			for _, id := range stage.CardOrder {
				card, _ := b.Card(id)
				items = append(items, fmt.Sprintf("%s %s / %s / %s", id, card.CandidateName, stage.Name, render.Score(card.Score)))
			}
		}
		if len(items) == 0 {
			return "", "", 0, errors.New("the board has no cards")
		}

		cardPrompt := promptui.Select{
			Label: "Choose a card and press ENTER",
			Items: items,
		}
		_, selected, err := cardPrompt.Run()
		if err != nil {
			return "", "", 0, err
		}
		cardID = strings.Split(selected, " ")[0]
	}

	if stageID == "" {
		items := make([]string, 0, len(b.Stages))
		for _, stage := range b.Stages {
			items = append(items, fmt.Sprintf("%s %s", stage.ID, stage.Name))
		}

		stagePrompt := promptui.Select{
			Label: "Move to stage",
			Items: items,
		}
		_, selected, err := stagePrompt.Run()
		if err != nil {
			return "", "", 0, err
		}
		stageID = strings.Split(selected, " ")[0]
	}

	from, ok := b.Locate(cardID)
	if !ok {
		return "", "", 0, fmt.Errorf("card %q is not on the board", cardID)
	}
	last := endOf(b, from.StageID, stageID)

	indexPrompt := promptui.Prompt{
		Label:   fmt.Sprintf("Position (0-%d)", last),
		Default: strconv.Itoa(last),
		Validate: func(input string) error {
			i, err := strconv.Atoi(input)
			if err != nil {
				return errors.New("not a number")
			}
			if i < 0 || i > last {
				return fmt.Errorf("must be between 0 and %d", last)
			}
			return nil
		},
	}
	input, err := indexPrompt.Run()
	if err != nil {
		return "", "", 0, err
	}
	index, _ := strconv.Atoi(input)

	return cardID, stageID, index, nil
}
