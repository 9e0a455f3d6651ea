package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"abaplens/internal/enhancement"
	"abaplens/internal/include"
	"abaplens/internal/mcp"
	"abaplens/internal/unit"
)

type echoTool struct{}

func (echoTool) Spec() mcp.ToolSpec { return mcp.ToolSpec{Name: "echo"} }

func (echoTool) Call(_ context.Context, input json.RawMessage) (json.RawMessage, error) {
	return json.Marshal(map[string]json.RawMessage{"echo": input})
}

type stubBackend struct {
	kind    unit.Kind
	payload string
}

func (s *stubBackend) Exists(_ context.Context, _ string, kind unit.Kind) (bool, error) {
	return kind == s.kind, nil
}

func (s *stubBackend) ResolveIncludeContext(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

func (s *stubBackend) FetchEnhancementPayload(_ context.Context, _ unit.Ref, _ string) (string, error) {
	return s.payload, nil
}

type stubFetcher struct{}

func (stubFetcher) FetchSourceText(_ context.Context, _ unit.Ref) (string, bool, error) {
	return "", false, nil
}

func testMux() http.Handler {
	payload := "<enh:source>" + base64.StdEncoding.EncodeToString([]byte("ENHANCEMENT 1 zimpl.")) + "</enh:source>"
	agg := enhancement.NewAggregator(
		&stubBackend{kind: unit.KindProgram, payload: payload},
		include.NewResolver(stubFetcher{}), 1)

	reg := mcp.NewRegistry(echoTool{})
	return NewMux(&Handlers{Registry: reg, Aggregator: agg})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestToolsList(t *testing.T) {
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tools", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got struct {
		Tools []mcp.ToolSpec `json:"tools"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Tools) != 1 || got.Tools[0].Name != "echo" {
		t.Errorf("tools = %+v", got.Tools)
	}
}

func TestCallEmptyBodyDefaultsToEmptyObject(t *testing.T) {
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/call/echo", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"echo":{}`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCallBadToolInputIs400(t *testing.T) {
	reg := mcp.NewRegistry()
	mcp.RegisterDefaultTools(reg, mcp.Host{})
	mux := NewMux(&Handlers{Registry: reg})

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"object_type":"program"}`)
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/call/includes.list", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a caller mistake", rec.Code)
	}
}

func TestCallUnknownToolIs404(t *testing.T) {
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/call/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	body := strings.NewReader(`{"object_name":"zmain","object_type":"program"}`)
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var got struct {
		Report *unit.Report `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Report == nil || got.Report.Root.Name != "ZMAIN" || got.Report.UnitsAnalyzed != 1 {
		t.Errorf("report = %+v", got.Report)
	}
}

func TestAnalyzeBadKindIs400(t *testing.T) {
	body := strings.NewReader(`{"object_name":"zmain","object_type":"table"}`)
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyzeUnresolvableIs400(t *testing.T) {
	// The stub only answers for programs; an include hint forces the
	// context-resolution failure path.
	body := strings.NewReader(`{"object_name":"zinc","object_type":"include"}`)
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", body))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeArchiveUnconfiguredIs503(t *testing.T) {
	body := strings.NewReader(`{"object_name":"zmain","object_type":"program","archive":true}`)
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/analyze", body))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAssistUnconfiguredIs503(t *testing.T) {
	body := strings.NewReader(`{"question":"what includes does ZMAIN have?"}`)
	rec := httptest.NewRecorder()
	testMux().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/assist", body))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
