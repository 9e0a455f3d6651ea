package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"abaplens/internal/unit"
)

// --------------------- program.source / include.source / class.source ---------------------

// sourceTool serves one kind's plain source accessor; the three registered
// tools differ only in the collection they read from.
type sourceTool struct {
	host Host
	kind unit.Kind
}

func newSourceTool(h Host, kind unit.Kind) *sourceTool {
	return &sourceTool{host: h, kind: kind}
}

func (t *sourceTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        string(t.kind) + ".source",
		Description: fmt.Sprintf("Fetch the source lines of a %s.", t.kind),
	}
}

type sourceReadInput struct {
	Name string `json:"name"`
}

type sourceReadOutput struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Lines []string `json:"lines"`
}

func (t *sourceTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in sourceReadInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, badInput("%s.source: %v", t.kind, err)
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, badInput("%s.source: name required", t.kind)
	}
	if t.host.Source == nil {
		return nil, fmt.Errorf("%s.source: backend not configured", t.kind)
	}

	lines, err := t.host.Source.SourceLines(ctx, unit.Ref{Name: in.Name, Kind: t.kind})
	if err != nil {
		return nil, fmt.Errorf("%s.source: %w", t.kind, err)
	}
	out := sourceReadOutput{
		Name:  strings.ToUpper(strings.TrimSpace(in.Name)),
		Kind:  string(t.kind),
		Lines: lines,
	}
	return json.Marshal(out)
}
