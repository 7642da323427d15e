package sandbox

import "time"

// Candidate is an application sitting in a sandbox pipeline column.
type Candidate struct {
	ID            string
	ApplicationID string
	JobID         string
	StudentName   string
	Email         string
	AppliedAt     time.Time
	Score         *float64
	// Notes collects the notes sent with moves of this application.
	Notes []string
}

type Column struct {
	ID         string
	Name       string
	Candidates []*Candidate
}

type Pipeline struct {
	ID      string
	Name    string
	Columns []*Column
}

// Seed is the initial content of a sandbox.
type Seed struct {
	ActivePipelineID string
	Pipelines        []*Pipeline
}

func (s Seed) clone() map[string]*Pipeline {
	out := make(map[string]*Pipeline, len(s.Pipelines))
	for _, p := range s.Pipelines {
		cp := &Pipeline{ID: p.ID, Name: p.Name, Columns: make([]*Column, 0, len(p.Columns))}
		for _, c := range p.Columns {
			cc := &Column{ID: c.ID, Name: c.Name, Candidates: make([]*Candidate, 0, len(c.Candidates))}
			for _, cand := range c.Candidates {
				dup := *cand
				dup.Notes = append([]string(nil), cand.Notes...)
				cc.Candidates = append(cc.Candidates, &dup)
			}
			cp.Columns = append(cp.Columns, cc)
		}
		out[p.ID] = cp
	}
	return out
}

func score(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 9, 30, 0, 0, time.UTC)
}

// DefaultSeed is a small campus hiring pipeline with two jobs.
func DefaultSeed() Seed {
	return Seed{
		ActivePipelineID: "campus",
		Pipelines: []*Pipeline{
			{
				ID:   "campus",
				Name: "Campus hiring",
				Columns: []*Column{
					{ID: "applied", Name: "Applied", Candidates: []*Candidate{
						{ID: "c1", ApplicationID: "1001", JobID: "backend", StudentName: "Ada Lovelace", Email: "ada@example.com", AppliedAt: day(1), Score: score(88)},
						{ID: "c2", ApplicationID: "1002", JobID: "backend", StudentName: "Alan Turing", Email: "alan@example.com", AppliedAt: day(2)},
						{ID: "c3", ApplicationID: "1003", JobID: "frontend", StudentName: "Grace Hopper", Email: "grace@example.com", AppliedAt: day(3), Score: score(74)},
					}},
					{ID: "screening", Name: "Screening", Candidates: []*Candidate{
						{ID: "c4", ApplicationID: "1004", JobID: "backend", StudentName: "Edsger Dijkstra", Email: "edsger@example.com", AppliedAt: day(4), Score: score(65)},
					}},
					{ID: "interview", Name: "Interview"},
					{ID: "offer", Name: "Offer"},
				},
			},
		},
	}
}
