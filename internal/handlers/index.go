// Package handlers serves the authority side of networked sessions over
// HTTP, websocket and server-sent events.
package handlers

import (
	"net/http"
	"slices"

	bclock "github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/store"
	"github.com/aaronzipp/wargame-turns/internal/transport/ws"
)

// Context holds shared application dependencies
type Context struct {
	Sessions  *store.SessionStore
	Snapshots *store.SnapshotStore // optional
	Hub       *ws.Hub
	Logger    *zap.Logger
	Clock     bclock.Clock // nil means wall clock

	// PublicURL is the externally reachable base URL used in join links.
	PublicURL   string
	TurnSeconds int
}

// Routes builds the server mux.
func (ctx *Context) Routes() http.Handler {
	if ctx.Logger == nil {
		ctx.Logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", ctx.HandleIndex)
	mux.HandleFunc("POST /sessions", ctx.HandleCreateSession)
	mux.HandleFunc("GET /sessions/{code}", ctx.HandleSessionState)
	mux.HandleFunc("DELETE /sessions/{code}", ctx.HandleCloseSession)
	mux.HandleFunc("POST /sessions/{code}/restore", ctx.HandleRestoreSession)
	mux.HandleFunc("GET /sessions/{code}/snapshot", ctx.HandleSessionSnapshot)
	mux.HandleFunc("GET /sessions/{code}/stats", ctx.HandleStats)
	mux.HandleFunc("GET /sessions/{code}/qr", ctx.HandleQRCode)
	mux.HandleFunc("GET /snapshots", ctx.HandleListSnapshots)
	mux.HandleFunc("GET /ws/{code}", ctx.HandleWebsocket)
	mux.HandleFunc("GET /sse/{code}", ctx.HandleSSE)
	return mux
}

type sessionSummary struct {
	Code    string `json:"code"`
	Viewers int    `json:"viewers"`
	Peers   int    `json:"peers"`
}

// HandleIndex lists the hosted sessions
func (ctx *Context) HandleIndex(w http.ResponseWriter, r *http.Request) {
	codes := ctx.Sessions.Codes()
	slices.Sort(codes)

	out := make([]sessionSummary, 0, len(codes))
	for _, code := range codes {
		entry, ok := ctx.Sessions.Get(code)
		if !ok {
			continue
		}
		out = append(out, sessionSummary{Code: code, Viewers: entry.Viewers.Count(), Peers: ctx.Hub.Count(code)})
	}
	writeJSON(w, http.StatusOK, out)
}
