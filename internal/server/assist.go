package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"abaplens/internal/llmtool"
)

const assistBasePrompt = `You are an assistant for exploring a remote ABAP repository.
Answer the user's question by calling the available tools.
Respond with JSON only: {"action":"tool","tool_name":...,"tool_input":{...}}
to call a tool, or {"action":"final","final":{...}} with your answer.`

type assistRequest struct {
	Question string `json:"question"`
}

type assistResponse struct {
	Result      json.RawMessage      `json:"result"`
	Iterations  int                  `json:"iterations"`
	ToolResults []llmtool.ToolResult `json:"tool_results,omitempty"`
}

// HandleAssist runs the LLM tool loop over the registry.
func (h *Handlers) HandleAssist(w http.ResponseWriter, r *http.Request) {
	if h.Assist == nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Errorf("assist is not configured"))
		return
	}
	var req assistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	input := map[string]string{"question": req.Question}
	final, state, err := h.Assist.Run(r.Context(), input, llmtool.DefaultPromptBuilder(assistBasePrompt))
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	resp := assistResponse{Result: final, Iterations: state.Iterations, ToolResults: state.ToolResults}
	writeJSON(w, http.StatusOK, resp)
}
