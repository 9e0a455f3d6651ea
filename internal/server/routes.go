package server

import (
	"net/http"
)

func NewMux(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/tools", h.HandleTools)
	mux.HandleFunc("POST /v1/call/{tool}", h.HandleCall)
	mux.HandleFunc("POST /v1/analyze", h.HandleAnalyze)
	mux.HandleFunc("GET /v1/analyze/watch", h.HandleAnalyzeWatch)
	mux.HandleFunc("POST /v1/assist", h.HandleAssist)
	mux.HandleFunc("GET /healthz", h.HandleHealthz)

	return cors(mux)
}
