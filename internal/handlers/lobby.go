package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/config"
	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/session"
)

const maxRosterBytes = 1 << 20

// HandleCreateSession hosts a networked session built from the roster the
// lobby hands over.
func (ctx *Context) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var roster config.RosterFile
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRosterBytes)).Decode(&roster); err != nil {
		writeError(w, http.StatusBadRequest, "invalid roster")
		return
	}
	if roster.Mode != "" && roster.Mode != models.ModeNetworked {
		writeError(w, http.StatusBadRequest, "the server only hosts networked sessions")
		return
	}

	cfg := roster.SessionConfig()
	cfg.Mode = models.ModeNetworked
	if cfg.TurnSeconds == 0 {
		cfg.TurnSeconds = ctx.TurnSeconds
	}

	s, err := ctx.hostNew(cfg)
	if errors.Is(err, errCodesExhausted) {
		ctx.Logger.Error("no free session code", zap.Int("attempts", maxCodeAttempts))
		writeError(w, http.StatusServiceUnavailable, "no free session code")
		return
	}
	if err != nil {
		code, _ := apperrors.CodeOf(err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: string(code)})
		return
	}
	ctx.saveSnapshot(s)

	ctx.Logger.Info("session created",
		zap.String("session", cfg.Code),
		zap.Int("participants", len(cfg.Roster)),
		zap.String("director", s.Context().DirectorID))

	writeJSON(w, http.StatusCreated, ctx.viewOf(s))
}

const maxCodeAttempts = 8

var errCodesExhausted = errors.New("no free session code")

// hostNew builds a session under a fresh code and reserves it. A code
// taken between generation and registration is retried with a new one.
func (ctx *Context) hostNew(cfg models.SessionConfig) (*session.Session, error) {
	for range maxCodeAttempts {
		cfg.Code = game.GetUniqueSessionCode(ctx.Sessions)
		s, err := session.New(cfg, ctx.sessionOptions())
		if err != nil {
			return nil, err
		}
		if _, ok := ctx.host(s); ok {
			return s, nil
		}
		s.Dispose()
		ctx.Logger.Debug("session code taken, retrying", zap.String("session", cfg.Code))
	}
	return nil, errCodesExhausted
}

// HandleSessionState returns the read model of a hosted session
func (ctx *Context) HandleSessionState(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := ctx.getSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, ctx.viewOf(entry.Session))
}

// HandleSessionSnapshot returns the full snapshot a joining client mirrors
func (ctx *Context) HandleSessionSnapshot(w http.ResponseWriter, r *http.Request) {
	entry, _, ok := ctx.getSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, entry.Session.Snapshot())
}
