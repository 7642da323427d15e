// Package sandbox is an in-memory careers platform serving the pipeline
// endpoints the board client uses. It backs local demos and integration tests.
package sandbox

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Server struct {
	token  string
	logger *zap.Logger
	echo   *echo.Echo

	mu        sync.Mutex
	pipelines map[string]*Pipeline
	active    string
	failMoves int
}

// New creates a sandbox holding a copy of seed. Requests must carry token as a
// bearer token unless token is empty.
func New(token string, seed Seed, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		token:     token,
		logger:    logger,
		pipelines: seed.clone(),
		active:    seed.ActivePipelineID,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}))
	e.Use(middleware.Gzip())
	e.Use(s.authenticate)

	register(e, s)
	s.echo = e

	return s
}

// Handler returns the HTTP handler of the sandbox.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Info("sandbox listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// FailNextMoves makes the next n move requests fail with 503.
func (s *Server) FailNextMoves(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMoves = n
}

// Order returns the card ids of every column of a pipeline.
func (s *Server) Order(pipelineID string) map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pipelines[pipelineID]
	if !ok {
		return nil
	}

	out := make(map[string][]string, len(p.Columns))
	for _, c := range p.Columns {
		ids := make([]string, 0, len(c.Candidates))
		for _, cand := range c.Candidates {
			ids = append(ids, cand.ID)
		}
		out[c.ID] = ids
	}
	return out
}

// AddApplication appends a new application to a column, the way applications
// arrive on the platform. Empty ids are generated.
func (s *Server) AddApplication(pipelineID, stageID string, c Candidate) (Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pipelines[pipelineID]
	if !ok {
		return Candidate{}, errUnknownPipeline
	}
	column := p.column(stageID)
	if column == nil {
		return Candidate{}, errUnknownStage
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ApplicationID == "" {
		c.ApplicationID = uuid.NewString()
	}
	if c.AppliedAt.IsZero() {
		c.AppliedAt = time.Now().UTC()
	}

	column.Candidates = append(column.Candidates, &c)
	return c, nil
}

var (
	errUnknownPipeline    = errors.New("unknown pipeline")
	errUnknownStage       = errors.New("unknown stage")
	errUnknownApplication = errors.New("unknown application")
)

func (p *Pipeline) column(id string) *Column {
	for _, c := range p.Columns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// find returns the pipeline, column and index holding an application.
func (s *Server) find(applicationID string) (*Pipeline, *Column, int) {
	for _, p := range s.pipelines {
		for _, c := range p.Columns {
			for i, cand := range c.Candidates {
				if cand.ApplicationID == applicationID {
					return p, c, i
				}
			}
		}
	}
	return nil, nil, -1
}

// moveApplication moves an application to the end of a column of its pipeline.
func (s *Server) moveApplication(applicationID, stageID, note string) (*Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, from, idx := s.find(applicationID)
	if p == nil {
		return nil, errUnknownApplication
	}

	to := p.column(stageID)
	if to == nil {
		return nil, errUnknownStage
	}

	cand := from.Candidates[idx]
	from.Candidates = append(from.Candidates[:idx:idx], from.Candidates[idx+1:]...)
	to.Candidates = append(to.Candidates, cand)
	if note != "" {
		cand.Notes = append(cand.Notes, note)
	}

	return cand, nil
}

func (s *Server) consumeMoveFailure() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failMoves <= 0 {
		return false
	}
	s.failMoves--
	return true
}
