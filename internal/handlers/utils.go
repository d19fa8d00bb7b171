package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/session"
	"github.com/aaronzipp/wargame-turns/internal/sse"
	"github.com/aaronzipp/wargame-turns/internal/store"
)

const snapshotTimeout = 5 * time.Second

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// getSession looks up the hosted session named in the path.
func (ctx *Context) getSession(r *http.Request) (*store.Entry, string, bool) {
	code := strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
	entry, ok := ctx.Sessions.Get(code)
	return entry, code, ok
}

// isParticipant reports whether id is seated in the session.
func isParticipant(s *session.Session, id string) bool {
	for _, p := range s.State().Participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

// host registers s under its code and fans its notifications out to peers,
// viewers, counters and the snapshot store. It reports false, and leaves
// s untouched, when the code is already hosted.
func (ctx *Context) host(s *session.Session) (*store.Entry, bool) {
	code := s.Context().Code
	entry := store.NewEntry(s, sse.NewClients(ctx.Logger.With(zap.String("session", code))))
	entry.Watch(func(n session.Notification) {
		entry.Stats.Record(n)
		entry.Viewers.BroadcastNotification(n)
		if ev, ok := session.EventFor(n); ok {
			ctx.Hub.Broadcast(code, s.Mode(), ev)
		}
		if _, tick := n.(session.ClockTicked); !tick {
			ctx.saveSnapshot(s)
		}
	})
	if !ctx.Sessions.SetIfAbsent(code, entry) {
		entry.Unwatch()
		return nil, false
	}
	return entry, true
}

func (ctx *Context) saveSnapshot(s *session.Session) {
	if ctx.Snapshots == nil {
		return
	}
	c, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()
	if err := ctx.Snapshots.Save(c, s.Snapshot()); err != nil {
		ctx.Logger.Warn("save snapshot failed", zap.String("session", s.Context().Code), zap.Error(err))
	}
}

func (ctx *Context) sessionOptions() session.Options {
	return session.Options{
		Authoritative: true,
		Clock:         ctx.Clock,
		Logger:        ctx.Logger,
	}
}

// joinURL is the websocket address a participant connects to.
func (ctx *Context) joinURL(code string) string {
	base := strings.TrimRight(ctx.PublicURL, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/" + code
}

type sessionView struct {
	models.SessionState
	JoinURL string `json:"joinUrl"`
}

func (ctx *Context) viewOf(s *session.Session) sessionView {
	st := s.State()
	return sessionView{SessionState: st, JoinURL: ctx.joinURL(st.Code)}
}
