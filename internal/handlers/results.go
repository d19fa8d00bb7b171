package handlers

import (
	"net/http"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/aaronzipp/wargame-turns/internal/store"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024
)

type statsBody struct {
	Code    string          `json:"code"`
	Stats   store.StatsView `json:"stats"`
	Viewers int             `json:"viewers"`
	Peers   int             `json:"peers"`
}

// HandleStats returns the counters of a hosted session
func (ctx *Context) HandleStats(w http.ResponseWriter, r *http.Request) {
	entry, code, ok := ctx.getSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, statsBody{
		Code:    code,
		Stats:   entry.Stats.View(),
		Viewers: entry.Viewers.Count(),
		Peers:   ctx.Hub.Count(code),
	})
}

// HandleQRCode renders the join URL of a session as a PNG
func (ctx *Context) HandleQRCode(w http.ResponseWriter, r *http.Request) {
	_, code, ok := ctx.getSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 64 || n > maxQRSize {
			writeError(w, http.StatusBadRequest, "size must be between 64 and 1024")
			return
		}
		size = n
	}

	png, err := qrcode.Encode(ctx.joinURL(code), qrcode.Medium, size)
	if err != nil {
		ctx.Logger.Error("encode qr code", zap.String("session", code), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not render qr code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
