package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"abaplens/internal/adt"
)

// --------------------- objects.search ---------------------

type objectsSearchTool struct{ host Host }

func newObjectsSearchTool(h Host) *objectsSearchTool { return &objectsSearchTool{host: h} }

func (t *objectsSearchTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "objects.search",
		Description: "Quick-search repository objects by name pattern.",
	}
}

type objectsSearchInput struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results,omitempty"`
}

type objectsSearchOutput struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Results []adt.SearchHit `json:"results"`
}

func (t *objectsSearchTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in objectsSearchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, badInput("objects.search: %v", err)
	}
	if strings.TrimSpace(in.Query) == "" {
		return nil, badInput("objects.search: query required")
	}
	if t.host.Search == nil {
		return nil, fmt.Errorf("objects.search: backend not configured")
	}

	hits, err := t.host.Search.SearchObjects(ctx, in.Query, in.MaxResults)
	if err != nil {
		return nil, fmt.Errorf("objects.search: %w", err)
	}
	if hits == nil {
		hits = []adt.SearchHit{}
	}
	out := objectsSearchOutput{Query: in.Query, Count: len(hits), Results: hits}
	return json.Marshal(out)
}
