package careers

import (
	"context"
	"fmt"
)

const apiActivePipelinePath = "/pipelines/active"

type Pipeline struct {
	ID   string
	Name string
	Raw  map[string]any
}

// ActivePipeline returns the descriptor of the pipeline currently active for the account.
func (c *Client) ActivePipeline(ctx context.Context) (*Pipeline, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, c.url(apiActivePipelinePath), &raw); err != nil {
		return nil, fmt.Errorf("get active pipeline: %w", err)
	}

	if raw == nil {
		raw = make(map[string]any)
	}

	pipeline := &Pipeline{
		ID:   valueAsString(raw["id"]),
		Name: valueAsString(raw["name"]),
		Raw:  raw,
	}

	if pipeline.ID == "" {
		return nil, fmt.Errorf("get active pipeline: response has no id")
	}

	return pipeline, nil
}

func valueAsString(v any) string {
	if v == nil {
		return ""
	}

	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		// JSON numbers arrive as float64; ids are integral.
		return fmt.Sprintf("%.0f", typed)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
