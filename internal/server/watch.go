package server

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"abaplens/internal/enhancement"
	"abaplens/internal/unit"
)

const (
	watchWSWriteWait = 10 * time.Second
	watchWSPongWait  = 60 * time.Second
	watchWSPingEvery = (watchWSPongWait * 9) / 10
)

var watchWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type watchWSOutbound struct {
	Type    string       `json:"type"`
	Unit    *unit.Result `json:"unit,omitempty"`
	Report  *unit.Report `json:"report,omitempty"`
	Code    string       `json:"code,omitempty"`
	Message string       `json:"message,omitempty"`
}

// HandleAnalyzeWatch streams per-unit results of a recursive analysis over a
// websocket as the fan-out completes, followed by one final report event.
func (h *Handlers) HandleAnalyzeWatch(w http.ResponseWriter, r *http.Request) {
	object := strings.TrimSpace(r.URL.Query().Get("object"))
	if object == "" {
		http.Error(w, "object is required", http.StatusBadRequest)
		return
	}
	var hint unit.Kind
	if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
		k, err := unit.ParseKind(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		hint = k
	}
	nested := true
	if raw := strings.TrimSpace(r.URL.Query().Get("nested")); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			nested = v
		}
	}

	conn, err := watchWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(watchWSPongWait)); err != nil {
		log.Printf("analyze ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchWSPongWait))
	})

	writeCh := make(chan watchWSOutbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(watchWSPingEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case out, ok := <-writeCh:
				if !ok {
					return
				}
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(watchWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader goroutine: the client sends nothing meaningful, but reads keep
	// pong handling alive and surface disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	report, err := h.Aggregator.Analyze(ctx, enhancement.Request{
		Object:    object,
		KindHint:  hint,
		Parent:    strings.TrimSpace(r.URL.Query().Get("program")),
		Recursive: nested,
		Notify: func(res unit.Result) {
			select {
			case writeCh <- watchWSOutbound{Type: "unit", Unit: &res}:
			case <-ctx.Done():
			}
		},
	})
	if err != nil {
		select {
		case writeCh <- watchWSOutbound{Type: "error", Code: "analyze_failed", Message: err.Error()}:
		case <-ctx.Done():
		}
	} else {
		select {
		case writeCh <- watchWSOutbound{Type: "report", Report: report}:
		case <-ctx.Done():
		}
	}

	close(writeCh)
	<-writerDone
}
