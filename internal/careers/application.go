package careers

import (
	"context"
	"fmt"
	"net/url"
)

type Application struct {
	ID      string         `json:"id"`
	StageID string         `json:"stage_id"`
	Raw     map[string]any `json:"-"`
}

type moveRequest struct {
	NewStageID string `json:"new_stage_id"`
	Note       string `json:"note,omitempty"`
}

// MoveApplication asks the platform to move the application to the stage.
// The returned application may be empty when the API answers without a body.
func (c *Client) MoveApplication(ctx context.Context, applicationID, stageID, note string) (*Application, error) {
	if applicationID == "" {
		return nil, fmt.Errorf("application id is required")
	}
	if stageID == "" {
		return nil, fmt.Errorf("stage id is required")
	}

	path := fmt.Sprintf("/applications/%s/move", url.PathEscape(applicationID))

	var raw map[string]any
	err := c.postJSON(ctx, c.url(path), &moveRequest{NewStageID: stageID, Note: note}, &raw)
	if err != nil {
		return nil, fmt.Errorf("move application %s to stage %s: %w", applicationID, stageID, err)
	}

	return &Application{
		ID:      valueAsString(raw["id"]),
		StageID: valueAsString(raw["stage_id"]),
		Raw:     raw,
	}, nil
}
