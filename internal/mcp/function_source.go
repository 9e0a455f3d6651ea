package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// --------------------- function.source ---------------------

type functionSourceTool struct{ host Host }

func newFunctionSourceTool(h Host) *functionSourceTool { return &functionSourceTool{host: h} }

func (t *functionSourceTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "function.source",
		Description: "Fetch the source lines of a function module inside its function group.",
	}
}

type functionSourceInput struct {
	FunctionGroup string `json:"function_group"`
	FunctionName  string `json:"function_name"`
}

type functionSourceOutput struct {
	FunctionGroup string   `json:"function_group"`
	FunctionName  string   `json:"function_name"`
	Lines         []string `json:"lines"`
}

func (t *functionSourceTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in functionSourceInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, badInput("function.source: %v", err)
	}
	if strings.TrimSpace(in.FunctionGroup) == "" || strings.TrimSpace(in.FunctionName) == "" {
		return nil, badInput("function.source: function_group and function_name required")
	}
	if t.host.Catalog == nil {
		return nil, fmt.Errorf("function.source: backend not configured")
	}

	lines, err := t.host.Catalog.FunctionSourceLines(ctx, in.FunctionGroup, in.FunctionName)
	if err != nil {
		return nil, fmt.Errorf("function.source: %w", err)
	}
	out := functionSourceOutput{
		FunctionGroup: strings.ToUpper(strings.TrimSpace(in.FunctionGroup)),
		FunctionName:  strings.ToUpper(strings.TrimSpace(in.FunctionName)),
		Lines:         lines,
	}
	return json.Marshal(out)
}
