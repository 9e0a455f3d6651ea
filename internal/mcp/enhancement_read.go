package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"abaplens/internal/enhancement"
)

// --------------------- enhancement.read ---------------------

type enhancementReadTool struct{ host Host }

func newEnhancementReadTool(h Host) *enhancementReadTool { return &enhancementReadTool{host: h} }

func (t *enhancementReadTool) Spec() ToolSpec {
	return ToolSpec{
		Name:        "enhancement.read",
		Description: "Read one enhancement implementation's source by spot and implementation name.",
	}
}

type enhancementReadInput struct {
	EnhancementSpot string `json:"enhancement_spot"`
	EnhancementName string `json:"enhancement_name"`
}

type enhancementReadOutput struct {
	EnhancementSpot string `json:"enhancement_spot"`
	EnhancementName string `json:"enhancement_name"`
	SourceCode      string `json:"source_code"`
	Parsed          bool   `json:"parsed"`
}

func (t *enhancementReadTool) Call(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in enhancementReadInput
	if err := json.Unmarshal(input, &in); err != nil {
		return nil, badInput("enhancement.read: %v", err)
	}
	if strings.TrimSpace(in.EnhancementSpot) == "" {
		return nil, badInput("enhancement.read: enhancement_spot required")
	}
	if strings.TrimSpace(in.EnhancementName) == "" {
		return nil, badInput("enhancement.read: enhancement_name required")
	}
	if t.host.Enhancements == nil {
		return nil, fmt.Errorf("enhancement.read: backend not configured")
	}

	raw, err := t.host.Enhancements.FetchEnhancementByName(ctx, in.EnhancementSpot, in.EnhancementName)
	if err != nil {
		return nil, fmt.Errorf("enhancement.read: %w", err)
	}
	source, parsed := enhancement.DecodeSource(raw)
	out := enhancementReadOutput{
		EnhancementSpot: in.EnhancementSpot,
		EnhancementName: in.EnhancementName,
		SourceCode:      source,
		Parsed:          parsed,
	}
	return json.Marshal(out)
}
