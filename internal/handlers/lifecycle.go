package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/session"
	"github.com/aaronzipp/wargame-turns/internal/sse"
)

// HandleCloseSession tears a hosted session down and forgets its snapshot
func (ctx *Context) HandleCloseSession(w http.ResponseWriter, r *http.Request) {
	entry, code, ok := ctx.getSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	// Viewers hear about the closure before the session goes away.
	entry.Viewers.Broadcast(sse.EventSessionClosed, `{"code":"`+code+`"}`)
	ctx.Sessions.Delete(code)
	entry.Close()
	ctx.Hub.CloseSession(code)

	if ctx.Snapshots != nil {
		if err := ctx.Snapshots.Delete(r.Context(), code); err != nil {
			ctx.Logger.Warn("delete snapshot failed", zap.String("session", code), zap.Error(err))
		}
	}

	ctx.Logger.Info("session closed", zap.String("session", code))
	w.WriteHeader(http.StatusNoContent)
}

// HandleRestoreSession hosts a session again from its last snapshot
func (ctx *Context) HandleRestoreSession(w http.ResponseWriter, r *http.Request) {
	if ctx.Snapshots == nil {
		writeError(w, http.StatusServiceUnavailable, "snapshots are not configured")
		return
	}
	code := strings.ToUpper(strings.TrimSpace(r.PathValue("code")))
	if ctx.Sessions.Exists(code) {
		writeError(w, http.StatusConflict, "session is already hosted")
		return
	}

	s, err := ctx.restore(r.Context(), code)
	switch {
	case errors.Is(err, errNoSnapshot):
		writeError(w, http.StatusNotFound, "snapshot not found")
	case errors.Is(err, errAlreadyHosted):
		writeError(w, http.StatusConflict, "session is already hosted")
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeJSON(w, http.StatusOK, ctx.viewOf(s))
	}
}

var (
	errNoSnapshot    = errors.New("snapshot not found")
	errAlreadyHosted = errors.New("session is already hosted")
)

func (ctx *Context) restore(c context.Context, code string) (*session.Session, error) {
	snap, found, err := ctx.Snapshots.Load(c, code)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", code, err)
	}
	if !found {
		return nil, errNoSnapshot
	}
	s, err := session.Restore(snap, ctx.sessionOptions())
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", code, err)
	}
	if _, ok := ctx.host(s); !ok {
		s.Dispose()
		return nil, errAlreadyHosted
	}

	ctx.Logger.Info("session restored",
		zap.String("session", code),
		zap.Int64("version", snap.Version),
		zap.Int("turn", snap.Turn.TurnNumber))
	return s, nil
}

// RestoreAll hosts every stored snapshot that is not hosted yet. Broken
// snapshots are logged and skipped.
func (ctx *Context) RestoreAll(c context.Context) (int, error) {
	if ctx.Snapshots == nil {
		return 0, nil
	}
	list, err := ctx.Snapshots.List(c)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, summary := range list {
		if ctx.Sessions.Exists(summary.Code) {
			continue
		}
		if _, err := ctx.restore(c, summary.Code); err != nil {
			ctx.Logger.Warn("skipping snapshot", zap.String("session", summary.Code), zap.Error(err))
			continue
		}
		restored++
	}
	return restored, nil
}

// HandleListSnapshots lists the stored snapshots
func (ctx *Context) HandleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if ctx.Snapshots == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	list, err := ctx.Snapshots.List(r.Context())
	if err != nil {
		ctx.Logger.Error("list snapshots failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not list snapshots")
		return
	}
	writeJSON(w, http.StatusOK, list)
}
