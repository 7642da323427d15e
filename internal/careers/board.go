package careers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// BoardPayload is the board as returned by the API: columns in display order,
// each with its candidates in display order.
type BoardPayload struct {
	Columns []*Column `json:"columns"`
}

type Column struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Candidates []*Candidate `json:"candidates"`
}

type Candidate struct {
	ID            string   `json:"id"`
	ApplicationID string   `json:"application_id"`
	StudentName   string   `json:"student_name"`
	Email         string   `json:"email"`
	AppliedAt     string   `json:"applied_at"`
	OverallScore  *float64 `json:"overall_score"`
}

// FetchBoard returns the board of the pipeline. When jobID is set the board is
// scoped to that job.
func (c *Client) FetchBoard(ctx context.Context, pipelineID, jobID string) (*BoardPayload, error) {
	if pipelineID == "" {
		return nil, fmt.Errorf("pipeline id is required")
	}

	path := fmt.Sprintf("/pipelines/%s/board", url.PathEscape(pipelineID))
	if jobID != "" {
		path = fmt.Sprintf("%s/%s", path, url.PathEscape(jobID))
	}

	var raw any
	if err := c.getJSON(ctx, c.url(path), &raw); err != nil {
		return nil, err
	}

	board, err := decodeBoard(raw)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got board",
		zap.String("pipeline_id", pipelineID),
		zap.String("job_id", jobID),
		zap.Int("columns", len(board.Columns)),
	)

	return board, nil
}

// decodeBoard checks the structure of a generic JSON document and decodes it
// into a BoardPayload.
func decodeBoard(raw any) (*BoardPayload, error) {
	doc, ok := raw.(map[string]any)
	if !ok {
		return nil, malformed("expected an object, got %T", raw)
	}

	columnsRaw, ok := doc["columns"]
	if !ok || columnsRaw == nil {
		return nil, malformed("missing columns")
	}

	columns, ok := columnsRaw.([]any)
	if !ok {
		return nil, malformed("columns is %T, not a list", columnsRaw)
	}

	for i, columnRaw := range columns {
		column, ok := columnRaw.(map[string]any)
		if !ok {
			return nil, malformed("column %d is %T, not an object", i, columnRaw)
		}
		if id, ok := column["id"]; !ok || id == nil {
			return nil, malformed("column %d has no id", i)
		}
		candidates, ok := column["candidates"]
		if !ok || candidates == nil {
			return nil, malformed("column %d has no candidates", i)
		}
		if _, ok := candidates.([]any); !ok {
			return nil, malformed("column %d candidates is %T, not a list", i, candidates)
		}
	}

	var board BoardPayload
	cfg := &mapstructure.DecoderConfig{
		Result:           &board,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(doc); err != nil {
		return nil, malformed("%v", err)
	}

	return &board, nil
}
