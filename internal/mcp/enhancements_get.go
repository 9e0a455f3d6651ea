package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"abaplens/internal/enhancement"
	"abaplens/internal/unit"
)

// --------------------- enhancements.get ---------------------

type enhancementsGetTool struct{ host Host }

func newEnhancementsGetTool(h Host) *enhancementsGetTool { return &enhancementsGetTool{host: h} }

func (t *enhancementsGetTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "enhancements.get",
		Description: "Analyze enhancement implementations of a unit, optionally across all nested includes.",
	}
}

type enhancementsGetInput struct {
	ObjectName    string `json:"object_name"`
	ObjectType    string `json:"object_type,omitempty"`
	Program       string `json:"program,omitempty"`
	IncludeNested bool   `json:"include_nested,omitempty"`
}

func (t *enhancementsGetTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in enhancementsGetInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, badInput("enhancements.get: %v", err)
	}
	if strings.TrimSpace(in.ObjectName) == "" {
		return nil, badInput("enhancements.get: object_name required")
	}
	if t.host.Aggregator == nil {
		return nil, fmt.Errorf("enhancements.get: aggregator not configured")
	}

	var hint unit.Kind
	if strings.TrimSpace(in.ObjectType) != "" {
		k, err := unit.ParseKind(in.ObjectType)
		if err != nil {
			return nil, fmt.Errorf("enhancements.get: %w", err)
		}
		hint = k
	}

	report, err := t.host.Aggregator.Analyze(ctx, enhancement.Request{
		Object:    in.ObjectName,
		KindHint:  hint,
		Parent:    in.Program,
		Recursive: in.IncludeNested,
	})
	if err != nil {
		return nil, fmt.Errorf("enhancements.get: %w", err)
	}
	return json.Marshal(report)
}
