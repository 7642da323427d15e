package sandbox

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func serve(t *testing.T, s *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRejectsMissingToken(t *testing.T) {
	s := New("secret", DefaultSeed(), zap.NewNop())

	for _, token := range []string{"", "wrong"} {
		rec := serve(t, s, http.MethodGet, "/pipelines/active", token, "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("token %q: expected 401, got %d", token, rec.Code)
		}
	}
}

func TestActivePipeline(t *testing.T) {
	s := New("secret", DefaultSeed(), zap.NewNop())

	rec := serve(t, s, http.MethodGet, "/pipelines/active", "secret", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp pipelineResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := pipelineResponse{ID: "campus", Name: "Campus hiring", Stages: []string{"Applied", "Screening", "Interview", "Offer"}}
	if !reflect.DeepEqual(resp, want) {
		t.Fatalf("expected %+v, got %+v", want, resp)
	}
}

func TestBoardScopedByJob(t *testing.T) {
	s := New("", DefaultSeed(), zap.NewNop())

	tests := []struct {
		path string
		want []string
	}{
		{path: "/pipelines/campus/board", want: []string{"c1", "c2", "c3"}},
		{path: "/pipelines/campus/board/backend", want: []string{"c1", "c2"}},
		{path: "/pipelines/campus/board/frontend", want: []string{"c3"}},
	}

	for _, tt := range tests {
		rec := serve(t, s, http.MethodGet, tt.path, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tt.path, rec.Code)
		}

		var resp boardResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode: %v", tt.path, err)
		}
		if len(resp.Columns) != 4 {
			t.Fatalf("%s: expected 4 columns, got %d", tt.path, len(resp.Columns))
		}

		var got []string
		for _, cand := range resp.Columns[0].Candidates {
			got = append(got, cand.ID)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.path, tt.want, got)
		}
	}
}

func TestEmptyColumnsHaveCandidateLists(t *testing.T) {
	s := New("", DefaultSeed(), zap.NewNop())

	rec := serve(t, s, http.MethodGet, "/pipelines/campus/board", "", "")
	if !strings.Contains(rec.Body.String(), `"id":"offer","name":"Offer","candidates":[]`) {
		t.Fatalf("expected empty candidate list for offer, got %s", rec.Body.String())
	}
}

func TestUnknownPipeline(t *testing.T) {
	s := New("", DefaultSeed(), zap.NewNop())

	rec := serve(t, s, http.MethodGet, "/pipelines/nope/board", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMoveAppendsToTargetColumn(t *testing.T) {
	s := New("", DefaultSeed(), zap.NewNop())

	rec := serve(t, s, http.MethodPost, "/applications/1001/move", "", `{"new_stage_id":"screening","note":"strong CV"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp applicationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID != "1001" || resp.StageID != "screening" || resp.Note != "strong CV" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	order := s.Order("campus")
	if want := []string{"c4", "c1"}; !reflect.DeepEqual(order["screening"], want) {
		t.Fatalf("expected screening %v, got %v", want, order["screening"])
	}
	if want := []string{"c2", "c3"}; !reflect.DeepEqual(order["applied"], want) {
		t.Fatalf("expected applied %v, got %v", want, order["applied"])
	}
}

func TestMoveErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
		code int
	}{
		{name: "unknown application", path: "/applications/9999/move", body: `{"new_stage_id":"offer"}`, code: http.StatusNotFound},
		{name: "unknown stage", path: "/applications/1001/move", body: `{"new_stage_id":"hired"}`, code: http.StatusUnprocessableEntity},
		{name: "missing stage", path: "/applications/1001/move", body: `{}`, code: http.StatusUnprocessableEntity},
		{name: "broken body", path: "/applications/1001/move", body: `{`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New("", DefaultSeed(), zap.NewNop())

			rec := serve(t, s, http.MethodPost, tt.path, "", tt.body)
			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			if !reflect.DeepEqual(s.Order("campus"), New("", DefaultSeed(), nil).Order("campus")) {
				t.Fatalf("board changed by a failed move")
			}
		})
	}
}

func TestFailNextMoves(t *testing.T) {
	s := New("", DefaultSeed(), zap.NewNop())
	s.FailNextMoves(1)

	rec := serve(t, s, http.MethodPost, "/applications/1001/move", "", `{"new_stage_id":"offer"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = serve(t, s, http.MethodPost, "/applications/1001/move", "", `{"new_stage_id":"offer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after the injected failure, got %d", rec.Code)
	}
}

func TestSeedIsCopied(t *testing.T) {
	seed := DefaultSeed()
	s := New("", seed, zap.NewNop())

	serve(t, s, http.MethodPost, "/applications/1001/move", "", `{"new_stage_id":"offer","note":"fast track"}`)

	if got := len(seed.Pipelines[0].Columns[0].Candidates); got != 3 {
		t.Fatalf("seed was modified, applied has %d candidates", got)
	}
	if notes := seed.Pipelines[0].Columns[0].Candidates[0].Notes; len(notes) != 0 {
		t.Fatalf("seed notes modified: %v", notes)
	}
}

func TestAddApplicationGeneratesIDs(t *testing.T) {
	s := New("", DefaultSeed(), zap.NewNop())

	cand, err := s.AddApplication("campus", "offer", Candidate{StudentName: "Barbara Liskov"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cand.ID == "" || cand.ApplicationID == "" || cand.AppliedAt.IsZero() {
		t.Fatalf("expected generated fields, got %+v", cand)
	}
	if got := s.Order("campus")["offer"]; !reflect.DeepEqual(got, []string{cand.ID}) {
		t.Fatalf("unexpected offer column: %v", got)
	}

	if _, err := s.AddApplication("campus", "hired", Candidate{}); err == nil {
		t.Fatalf("expected unknown stage error")
	}
	if _, err := s.AddApplication("nope", "offer", Candidate{}); err == nil {
		t.Fatalf("expected unknown pipeline error")
	}
}
