package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"abaplens/internal/unit"
)

// --------------------- includes.list ---------------------

type includesListTool struct{ host Host }

func newIncludesListTool(h Host) *includesListTool { return &includesListTool{host: h} }

func (t *includesListTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "includes.list",
		Description: "Recursively discover every include referenced by a program or include.",
	}
}

type includesListInput struct {
	ObjectName string `json:"object_name"`
	ObjectType string `json:"object_type"`
}

type includesListOutput struct {
	ObjectName    string   `json:"object_name"`
	ObjectType    string   `json:"object_type"`
	IncludesCount int      `json:"includes_count"`
	Includes      []string `json:"includes"`
}

func (t *includesListTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in includesListInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, badInput("includes.list: %v", err)
	}
	if strings.TrimSpace(in.ObjectName) == "" {
		return nil, badInput("includes.list: object_name required")
	}
	kind, err := unit.ParseKind(in.ObjectType)
	if err != nil {
		return nil, fmt.Errorf("includes.list: %w", err)
	}
	if kind == unit.KindClass {
		return nil, badInput("includes.list: object_type must be program or include")
	}
	if t.host.Includes == nil {
		return nil, fmt.Errorf("includes.list: resolver not configured")
	}

	names, err := t.host.Includes.DiscoverAll(ctx, unit.Ref{Name: in.ObjectName, Kind: kind})
	if err != nil {
		return nil, fmt.Errorf("includes.list: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	out := includesListOutput{
		ObjectName:    strings.ToUpper(strings.TrimSpace(in.ObjectName)),
		ObjectType:    string(kind),
		IncludesCount: len(names),
		Includes:      names,
	}
	return json.Marshal(out)
}
