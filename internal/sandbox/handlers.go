package sandbox

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

type pipelineResponse struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Stages []string `json:"stages"`
}

type boardResponse struct {
	Columns []columnResponse `json:"columns"`
}

type columnResponse struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	Candidates []candidateResponse `json:"candidates"`
}

type candidateResponse struct {
	ID            string   `json:"id"`
	ApplicationID string   `json:"application_id"`
	StudentName   string   `json:"student_name"`
	Email         string   `json:"email"`
	AppliedAt     string   `json:"applied_at"`
	OverallScore  *float64 `json:"overall_score"`
}

type moveRequest struct {
	NewStageID string `json:"new_stage_id"`
	Note       string `json:"note"`
}

type applicationResponse struct {
	ID      string `json:"id"`
	StageID string `json:"stage_id"`
	Note    string `json:"note,omitempty"`
}

func register(e *echo.Echo, s *Server) {
	e.GET("/pipelines/active", s.activePipeline)
	e.GET("/pipelines/:pipeline/board", s.board)
	e.GET("/pipelines/:pipeline/board/:job", s.board)
	e.POST("/applications/:application/move", s.move)
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.token == "" {
			return next(c)
		}

		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token != s.token {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
		}

		return next(c)
	}
}

func (s *Server) activePipeline(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pipelines[s.active]
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "no active pipeline"})
	}

	resp := pipelineResponse{ID: p.ID, Name: p.Name, Stages: make([]string, 0, len(p.Columns))}
	for _, column := range p.Columns {
		resp.Stages = append(resp.Stages, column.Name)
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) board(c echo.Context) error {
	pipelineID := c.Param("pipeline")
	jobID := c.Param("job")

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pipelines[pipelineID]
	if !ok {
		return c.JSON(http.StatusNotFound, errorResponse{Error: errUnknownPipeline.Error()})
	}

	resp := boardResponse{Columns: make([]columnResponse, 0, len(p.Columns))}
	for _, column := range p.Columns {
		col := columnResponse{ID: column.ID, Name: column.Name, Candidates: make([]candidateResponse, 0, len(column.Candidates))}
		for _, cand := range column.Candidates {
			if jobID != "" && cand.JobID != jobID {
				continue
			}
			col.Candidates = append(col.Candidates, candidateResponse{
				ID:            cand.ID,
				ApplicationID: cand.ApplicationID,
				StudentName:   cand.StudentName,
				Email:         cand.Email,
				AppliedAt:     cand.AppliedAt.Format(time.RFC3339),
				OverallScore:  cand.Score,
			})
		}
		resp.Columns = append(resp.Columns, col)
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) move(c echo.Context) error {
	applicationID := c.Param("application")

	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
	}
	if req.NewStageID == "" {
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: "new_stage_id is required"})
	}

	if s.consumeMoveFailure() {
		s.logger.Info("failing move on request", zap.String("application_id", applicationID))
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "move temporarily unavailable"})
	}

	cand, err := s.moveApplication(applicationID, req.NewStageID, req.Note)
	switch {
	case errors.Is(err, errUnknownApplication):
		return c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, errUnknownStage):
		return c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case err != nil:
		return err
	}

	s.logger.Debug("application moved",
		zap.String("application_id", applicationID),
		zap.String("stage_id", req.NewStageID),
	)

	return c.JSON(http.StatusOK, applicationResponse{ID: cand.ApplicationID, StageID: req.NewStageID, Note: req.Note})
}
