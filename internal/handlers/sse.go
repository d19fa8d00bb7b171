package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/sse"
)

const viewerBuffer = 16

// HandleSSE streams a session's notifications to a read-only viewer
func (ctx *Context) HandleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	entry, code, exists := ctx.getSession(r)
	if !exists {
		writeEvent(w, sse.EventSessionClosed, `{"code":"`+code+`"}`)
		flusher.Flush()
		return
	}

	viewerID := r.URL.Query().Get("viewer")
	if viewerID == "" {
		viewerID = uuid.NewString()
	}

	ch := make(chan sse.Message, viewerBuffer)
	entry.Viewers.Add(ch, viewerID)
	defer entry.Viewers.Remove(ch)

	state, err := json.Marshal(entry.Session.State())
	if err == nil {
		writeEvent(w, sse.EventSessionState, string(state))
	}
	flusher.Flush()

	ctx.Logger.Debug("viewer connected", zap.String("session", code), zap.String("viewer", viewerID))

	for {
		select {
		case <-r.Context().Done():
			ctx.Logger.Debug("viewer disconnected", zap.String("session", code), zap.String("viewer", viewerID))
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			writeEvent(w, msg.Event, msg.Data)
			flusher.Flush()
			if msg.Event == sse.EventSessionClosed {
				return
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
