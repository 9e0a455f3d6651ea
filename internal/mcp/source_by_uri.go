package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------- source.by_uri ---------------------

type sourceByURITool struct{ host Host }

func newSourceByURITool(h Host) *sourceByURITool { return &sourceByURITool{host: h} }

func (t *sourceByURITool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "source.by_uri",
		Description: "Fetch a source fragment by its raw ADT URI, for following references returned by other tools.",
	}
}

type sourceByURIInput struct {
	URI string `json:"uri"`
}

type sourceByURIOutput struct {
	URI   string   `json:"uri"`
	Lines []string `json:"lines"`
}

func (t *sourceByURITool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in sourceByURIInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, badInput("source.by_uri: %v", err)
	}
	if strings.TrimSpace(in.URI) == "" {
		return nil, badInput("source.by_uri: uri required")
	}
	if t.host.Catalog == nil {
		return nil, fmt.Errorf("source.by_uri: backend not configured")
	}

	lines, err := t.host.Catalog.SourceByURI(ctx, in.URI)
	if err != nil {
		return nil, fmt.Errorf("source.by_uri: %w", err)
	}
	out := sourceByURIOutput{URI: strings.TrimSpace(in.URI), Lines: lines}
	return json.Marshal(out)
}
