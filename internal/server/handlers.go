package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"abaplens/internal/adt"
	"abaplens/internal/archive"
	"abaplens/internal/enhancement"
	"abaplens/internal/llmtool"
	"abaplens/internal/mcp"
	"abaplens/internal/unit"
)

// Handlers carries the wired services behind the HTTP surface. Archive and
// Assist are optional; their routes answer 503 when unconfigured.
type Handlers struct {
	Registry   *mcp.Registry
	Aggregator *enhancement.Aggregator
	Archive    *archive.Store
	Assist     *llmtool.ToolLoop
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, unit.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, enhancement.ErrUnresolvableKind), errors.Is(err, mcp.ErrBadInput):
		return http.StatusBadRequest
	case adt.IsNotFound(err), errors.Is(err, mcp.ErrUnknownTool):
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func (h *Handlers) HandleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": h.Registry.Specs()})
}

func (h *Handlers) HandleCall(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("tool"))
	if name == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("tool name is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("read body: %w", err))
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	out, err := h.Registry.Call(r.Context(), name, body)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out)
}

type analyzeRequest struct {
	ObjectName    string `json:"object_name"`
	ObjectType    string `json:"object_type,omitempty"`
	Program       string `json:"program,omitempty"`
	IncludeNested bool   `json:"include_nested,omitempty"`
	Archive       bool   `json:"archive,omitempty"`
}

type analyzeResponse struct {
	Report     *unit.Report `json:"report"`
	ArchiveKey string       `json:"archive_key,omitempty"`
}

// HandleAnalyze runs an enhancement analysis directly and optionally archives
// the resulting report.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	var hint unit.Kind
	if strings.TrimSpace(req.ObjectType) != "" {
		k, err := unit.ParseKind(req.ObjectType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		hint = k
	}

	report, err := h.Aggregator.Analyze(r.Context(), enhancement.Request{
		Object:    req.ObjectName,
		KindHint:  hint,
		Parent:    req.Program,
		Recursive: req.IncludeNested,
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := analyzeResponse{Report: report}
	if req.Archive {
		if h.Archive == nil {
			writeError(w, http.StatusServiceUnavailable, fmt.Errorf("archive is not configured"))
			return
		}
		key, err := h.Archive.PutReport(r.Context(), report)
		if err != nil {
			log.Printf("archive report for %s: %v", report.Root.Name, err)
		} else {
			resp.ArchiveKey = key
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
