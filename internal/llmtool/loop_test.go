package llmtool

import (
	"context"
	"encoding/json"
	"testing"

	"abaplens/internal/mcp"
)

type fakeLLM struct {
	responses []json.RawMessage
}

func (f *fakeLLM) Name() string { return "fake" }
func (f *fakeLLM) Close() error { return nil }
func (f *fakeLLM) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if len(f.responses) == 0 {
		return nil, nil
	}
	out := f.responses[0]
	f.responses = f.responses[1:]
	return out, nil
}

type fakeTools struct {
	specs []mcp.ToolSpec
	calls []string
}

func (f *fakeTools) Specs() []mcp.ToolSpec { return f.specs }
func (f *fakeTools) Call(ctx context.Context, name string, input json.RawMessage) (json.RawMessage, error) {
	f.calls = append(f.calls, name)
	return json.RawMessage(`{"ok":true}`), nil
}

func TestToolLoop_ToolThenFinal(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"includes.list","tool_input":{"object_name":"RM07DOCS","object_type":"program"}}`),
			json.RawMessage(`{"action":"final","final":{"result":"done"}}`),
		},
	}
	tools := &fakeTools{specs: []mcp.ToolSpec{{Name: "includes.list"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 3}
	out, state, err := loop.Run(context.Background(), map[string]any{"x": 1}, DefaultPromptBuilder("base"))
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if state == nil || len(state.ToolResults) != 1 {
		t.Fatalf("expected 1 tool result, got %+v", state)
	}
	if string(out) != `{"result":"done"}` {
		t.Fatalf("unexpected final: %s", string(out))
	}
}

func TestToolLoop_AllowedList(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"program.source","tool_input":{"name":"X"}}`),
		},
	}
	tools := &fakeTools{specs: []mcp.ToolSpec{{Name: "program.source"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 1, Allowed: []string{"includes.list"}}
	_, _, err := loop.Run(context.Background(), nil, DefaultPromptBuilder("base"))
	if err != ErrToolNotAllowed {
		t.Fatalf("expected ErrToolNotAllowed, got %v", err)
	}
}

func TestToolLoop_MaxIterations(t *testing.T) {
	llm := &fakeLLM{
		responses: []json.RawMessage{
			json.RawMessage(`{"action":"tool","tool_name":"includes.list","tool_input":{}}`),
			json.RawMessage(`{"action":"tool","tool_name":"includes.list","tool_input":{}}`),
		},
	}
	tools := &fakeTools{specs: []mcp.ToolSpec{{Name: "includes.list"}}}
	loop := &ToolLoop{LLM: llm, Tools: tools, MaxIters: 1}
	_, _, err := loop.Run(context.Background(), nil, DefaultPromptBuilder("base"))
	if err != ErrMaxIterations {
		t.Fatalf("expected ErrMaxIterations, got %v", err)
	}
}
