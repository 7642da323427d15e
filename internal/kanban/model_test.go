package kanban

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/spigell/pipeboard/internal/careers"
	"github.com/spigell/pipeboard/internal/event"
)

func testBoard(stages ...Stage) *Board {
	b := &Board{PipelineID: "p1", Cards: make(map[string]Card)}
	for _, stage := range stages {
		for _, id := range stage.CardOrder {
			b.Cards[id] = Card{ID: id, ApplicationID: "app-" + id}
		}
		b.Stages = append(b.Stages, stage)
	}
	return b
}

func stage(id string, cards ...string) Stage {
	return Stage{ID: id, Name: id, CardOrder: cards}
}

func orders(b *Board) map[string][]string {
	out := make(map[string][]string, len(b.Stages))
	for _, s := range b.Stages {
		out[s.ID] = append([]string{}, s.CardOrder...)
	}
	return out
}

func sortedIDs(b *Board) []string {
	ids := b.CardIDs()
	sort.Strings(ids)
	return ids
}

func TestApplyMoveAcrossStages(t *testing.T) {
	b := testBoard(stage("applied", "a", "b", "c"), stage("interview", "x", "y"))
	req := MoveRequest{CardID: "c", FromStageID: "applied", ToStageID: "interview", ToIndex: 0}

	from, err := b.validateMove(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from != (event.Position{StageID: "applied", Index: 2}) {
		t.Fatalf("unexpected source position: %v", from)
	}

	to := b.applyMove(req, from)
	if to != (event.Position{StageID: "interview", Index: 0}) {
		t.Fatalf("unexpected destination position: %v", to)
	}

	want := map[string][]string{
		"applied":   {"a", "b"},
		"interview": {"c", "x", "y"},
	}
	if got := orders(b); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestApplyMoveWithinStage(t *testing.T) {
	tests := []struct {
		name  string
		card  string
		index int
		want  []string
	}{
		{name: "down", card: "a", index: 2, want: []string{"b", "c", "a", "d"}},
		{name: "up", card: "d", index: 0, want: []string{"d", "a", "b", "c"}},
		{name: "to bottom", card: "b", index: 3, want: []string{"a", "c", "d", "b"}},
		{name: "one step", card: "b", index: 2, want: []string{"a", "c", "b", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testBoard(stage("s", "a", "b", "c", "d"))
			req := MoveRequest{CardID: tt.card, FromStageID: "s", ToStageID: "s", ToIndex: tt.index}

			from, err := b.validateMove(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			b.applyMove(req, from)

			if got := b.Stages[0].CardOrder; !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValidateMove(t *testing.T) {
	b := testBoard(stage("applied", "a", "b"), stage("interview", "x"))

	tests := []struct {
		name string
		req  MoveRequest
		ok   bool
	}{
		{name: "valid end of stage", req: MoveRequest{CardID: "a", FromStageID: "applied", ToStageID: "interview", ToIndex: 1}, ok: true},
		{name: "valid same stage last", req: MoveRequest{CardID: "a", FromStageID: "applied", ToStageID: "applied", ToIndex: 1}, ok: true},
		{name: "unknown source", req: MoveRequest{CardID: "a", FromStageID: "nope", ToStageID: "interview"}},
		{name: "unknown destination", req: MoveRequest{CardID: "a", FromStageID: "applied", ToStageID: "nope"}},
		{name: "card not in source", req: MoveRequest{CardID: "x", FromStageID: "applied", ToStageID: "interview"}},
		{name: "unknown card", req: MoveRequest{CardID: "zzz", FromStageID: "applied", ToStageID: "interview"}},
		{name: "negative index", req: MoveRequest{CardID: "a", FromStageID: "applied", ToStageID: "interview", ToIndex: -1}},
		{name: "index past end", req: MoveRequest{CardID: "a", FromStageID: "applied", ToStageID: "interview", ToIndex: 2}},
		{name: "same stage index past end after removal", req: MoveRequest{CardID: "a", FromStageID: "applied", ToStageID: "applied", ToIndex: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.validateMove(tt.req)
			if tt.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.CardID != tt.req.CardID {
				t.Fatalf("unexpected card in error: %q", vErr.CardID)
			}
		})
	}
}

// Random walks over a board must keep every card exactly once.
func TestMovesConserveCards(t *testing.T) {
	b := testBoard(stage("applied", "a", "b", "c"), stage("screening", "d"), stage("offer"))
	want := sortedIDs(b)

	moves := []MoveRequest{
		{CardID: "a", FromStageID: "applied", ToStageID: "offer", ToIndex: 0},
		{CardID: "d", FromStageID: "screening", ToStageID: "offer", ToIndex: 1},
		{CardID: "b", FromStageID: "applied", ToStageID: "applied", ToIndex: 1},
		{CardID: "a", FromStageID: "offer", ToStageID: "screening", ToIndex: 0},
		{CardID: "c", FromStageID: "applied", ToStageID: "screening", ToIndex: 1},
		{CardID: "b", FromStageID: "applied", ToStageID: "offer", ToIndex: 0},
	}

	for i, req := range moves {
		from, err := b.validateMove(req)
		if err != nil {
			t.Fatalf("move %d: unexpected error: %v", i, err)
		}
		b.applyMove(req, from)

		if got := sortedIDs(b); !reflect.DeepEqual(got, want) {
			t.Fatalf("move %d: expected cards %v, got %v", i, want, got)
		}

		seen := make(map[string]string)
		for _, s := range b.Stages {
			for _, id := range s.CardOrder {
				if other, dup := seen[id]; dup {
					t.Fatalf("move %d: card %s in both %s and %s", i, id, other, s.ID)
				}
				seen[id] = s.ID
			}
		}
	}

	want2 := map[string][]string{
		"applied":   {},
		"screening": {"a", "c"},
		"offer":     {"b", "d"},
	}
	if got := orders(b); !reflect.DeepEqual(got, want2) {
		t.Fatalf("expected %v, got %v", want2, got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	score := 50.0
	b := testBoard(stage("applied", "a", "b"))
	b.Cards["a"] = Card{ID: "a", Score: &score}

	clone := b.Clone()
	clone.Stages[0].CardOrder[0] = "changed"
	*clone.Cards["a"].Score = 99
	delete(clone.Cards, "b")

	if b.Stages[0].CardOrder[0] != "a" {
		t.Fatalf("card order shared with clone")
	}
	if *b.Cards["a"].Score != 50 {
		t.Fatalf("score shared with clone")
	}
	if _, ok := b.Cards["b"]; !ok {
		t.Fatalf("cards map shared with clone")
	}
}

func TestLocate(t *testing.T) {
	b := testBoard(stage("applied", "a"), stage("offer", "b", "c"))

	pos, ok := b.Locate("c")
	if !ok || pos != (event.Position{StageID: "offer", Index: 1}) {
		t.Fatalf("unexpected position %v (found=%v)", pos, ok)
	}

	if _, ok := b.Locate("zzz"); ok {
		t.Fatalf("expected unknown card not to be found")
	}
}

func TestFromPayload(t *testing.T) {
	score := 72.0
	outOfRange := 140.0
	payload := &careers.BoardPayload{Columns: []*careers.Column{
		{ID: "applied", Name: "Applied", Candidates: []*careers.Candidate{
			{ID: "c1", ApplicationID: "a1", StudentName: "Ada", AppliedAt: "2024-03-01T10:00:00Z", OverallScore: &score},
			{ID: "c2", StudentName: "Linus", AppliedAt: "yesterday", OverallScore: &outOfRange},
		}},
		{ID: "offer", Name: "Offer", Candidates: []*careers.Candidate{}},
	}}

	b, err := FromPayload("p1", "j1", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if b.PipelineID != "p1" || b.JobID != "j1" {
		t.Fatalf("unexpected identity: %s/%s", b.PipelineID, b.JobID)
	}

	want := map[string][]string{"applied": {"c1", "c2"}, "offer": {}}
	if got := orders(b); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	c1 := b.Cards["c1"]
	if c1.ApplicationID != "a1" || c1.Score == nil || *c1.Score != 72 || c1.AppliedAt.IsZero() {
		t.Fatalf("unexpected card: %+v", c1)
	}

	c2 := b.Cards["c2"]
	if c2.ApplicationID != "c2" {
		t.Fatalf("expected card id as application id fallback, got %q", c2.ApplicationID)
	}
	if c2.Score != nil {
		t.Fatalf("expected out of range score to be dropped")
	}
	if !c2.AppliedAt.IsZero() {
		t.Fatalf("expected unparsable applied_at to be zero")
	}
}

func TestFromPayloadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload *careers.BoardPayload
	}{
		{name: "nil", payload: nil},
		{name: "null column", payload: &careers.BoardPayload{Columns: []*careers.Column{nil}}},
		{name: "empty stage id", payload: &careers.BoardPayload{Columns: []*careers.Column{{ID: " "}}}},
		{name: "duplicate stage", payload: &careers.BoardPayload{Columns: []*careers.Column{{ID: "s"}, {ID: "s"}}}},
		{name: "empty card id", payload: &careers.BoardPayload{Columns: []*careers.Column{
			{ID: "s", Candidates: []*careers.Candidate{{ApplicationID: "a"}}},
		}}},
		{name: "card in two stages", payload: &careers.BoardPayload{Columns: []*careers.Column{
			{ID: "s1", Candidates: []*careers.Candidate{{ID: "c"}}},
			{ID: "s2", Candidates: []*careers.Candidate{{ID: "c"}}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromPayload("p1", "", tt.payload)
			if !errors.Is(err, careers.ErrMalformedBoard) {
				t.Fatalf("expected ErrMalformedBoard, got %v", err)
			}
		})
	}
}
