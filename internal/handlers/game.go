package handlers

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
	"github.com/aaronzipp/wargame-turns/internal/store"
)

var tracer = otel.Tracer("wargame-turns/handlers")

// HandleWebsocket connects a participant to a hosted session. Requests
// arrive on the socket; confirmations go out to every peer of the session
// and rejections only to the sender.
func (ctx *Context) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	entry, code, ok := ctx.getSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	participantID := r.URL.Query().Get("participant")
	if !isParticipant(entry.Session, participantID) {
		writeError(w, http.StatusForbidden, "not a participant of this session")
		return
	}

	logger := ctx.Logger.With(zap.String("session", code), zap.String("participant", participantID))
	logger.Info("participant connecting")

	reqCtx := r.Context()
	err := ctx.Hub.Serve(w, r, code, participantID, func(mode models.Mode, req protocol.Request) protocol.Event {
		return ctx.applyRequest(reqCtx, entry, participantID, mode, req, logger)
	})
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}

// applyRequest runs a client request against the authoritative session.
// The connection's participant replaces whatever actor the payload names.
func (ctx *Context) applyRequest(c context.Context, entry *store.Entry, participantID string, mode models.Mode, req protocol.Request, logger *zap.Logger) protocol.Event {
	_, span := tracer.Start(c, "handlers."+req.Kind(),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("session", entry.Session.Context().Code),
			attribute.String("participant", participantID),
			attribute.String("request_id", req.RequestID()),
		))
	defer span.End()

	if mode != entry.Session.Mode() {
		entry.Stats.RecordRequest(false)
		span.SetStatus(codes.Error, "mode mismatch")
		return rejection(req.RequestID(), apperrors.CodeStaleRemoteEvent, "", "session mode mismatch")
	}

	res, err := entry.Session.Apply(protocol.WithActor(req, participantID))
	if err != nil {
		entry.Stats.RecordRequest(false)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("apply request failed", zap.String("kind", req.Kind()), zap.Error(err))
		code, ok := apperrors.CodeOf(err)
		if !ok {
			code = apperrors.CodeConfiguration
		}
		return rejection(req.RequestID(), code, "", err.Error())
	}

	entry.Stats.RecordRequest(res.Accepted)
	if res.Accepted {
		return nil
	}
	span.SetAttributes(attribute.String("reason", res.Reason))
	return rejection(req.RequestID(), res.Code, res.Reason, res.Message)
}

// rejection builds the reply for a refused request.
func rejection(requestID string, code apperrors.Code, reason, message string) protocol.Event {
	return protocol.OperationRejected{RequestID: requestID, Code: string(code), Reason: reason, Message: message}
}
