package session

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
	"github.com/aaronzipp/wargame-turns/internal/syncadapter"
)

var tracer = otel.Tracer("wargame-turns/session")

// EndTurn passes the active participant's turn.
func (s *Session) EndTurn(ctx context.Context, actor string) (game.Outcome, error) {
	return s.propose(ctx, "EndTurn", actor, func(id string) (protocol.Request, game.Outcome, error) {
		out := s.checkEndTurn(actor)
		return protocol.EndTurn{ID: id, ParticipantID: actor, TurnNumber: s.scheduler.State().TurnNumber}, out, nil
	})
}

// MarkReady flags actor ready for combat once their deployment is valid.
func (s *Session) MarkReady(ctx context.Context, actor string) (game.Outcome, error) {
	return s.propose(ctx, "MarkReady", actor, func(id string) (protocol.Request, game.Outcome, error) {
		out, err := s.checkMarkReady(actor)
		req := protocol.MarkReady{ID: id, ParticipantID: actor}
		if err == nil && out.OK {
			req.Elements = s.source.ElementsOwnedBy(actor)
		}
		return req, out, err
	})
}

// StartCombat lets the director open combat once deployment is complete.
func (s *Session) StartCombat(ctx context.Context, actor string) (game.Outcome, error) {
	return s.propose(ctx, "StartCombat", actor, func(id string) (protocol.Request, game.Outcome, error) {
		return protocol.StartCombat{ID: id, ParticipantID: actor}, s.checkStartCombat(actor), nil
	})
}

// FinalizeSector closes sector definition. Director only.
func (s *Session) FinalizeSector(ctx context.Context, actor string) (game.Outcome, error) {
	return s.propose(ctx, "FinalizeSector", actor, func(id string) (protocol.Request, game.Outcome, error) {
		return protocol.FinalizeSector{ID: id, ParticipantID: actor}, s.phases.CheckFinalizeSector(actor), nil
	})
}

// FinalizeZones closes zone definition. Director only.
func (s *Session) FinalizeZones(ctx context.Context, actor string) (game.Outcome, error) {
	return s.propose(ctx, "FinalizeZones", actor, func(id string) (protocol.Request, game.Outcome, error) {
		return protocol.FinalizeZones{ID: id, ParticipantID: actor}, s.phases.CheckFinalizeZones(actor), nil
	})
}

// CanMarkReady reports whether actor could be marked ready now.
func (s *Session) CanMarkReady(actor string) (game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkMarkReady(actor)
}

// propose validates against the current state, then hands the request to
// the adapter without holding the lock.
func (s *Session) propose(ctx context.Context, name, actor string, build func(id string) (protocol.Request, game.Outcome, error)) (game.Outcome, error) {
	ctx, span := tracer.Start(ctx, "Session."+name)
	defer span.End()
	span.SetAttributes(
		attribute.String("session.code", s.ctx.Code),
		attribute.String("participant", actor),
	)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return game.Outcome{}, apperrors.New(apperrors.CodeTransport, "session disposed")
	}
	req, out, err := build(uuid.NewString())
	s.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return game.Outcome{}, err
	}
	if !out.OK {
		span.SetAttributes(attribute.String("outcome.reason", string(out.Reason)))
		s.ctx.Logger.Debug("operation rejected",
			zap.String("op", name),
			zap.String("participant", actor),
			zap.String("reason", string(out.Reason)))
		return out, nil
	}

	res, err := s.adapter.Propose(ctx, req)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeRemoteRejected) {
			span.SetAttributes(attribute.String("outcome.reason", res.Reason))
			return outcomeOf(res), nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return game.Outcome{}, err
	}
	return outcomeOf(res), nil
}

func outcomeOf(res syncadapter.Result) game.Outcome {
	if res.Accepted {
		return game.Accepted()
	}
	return game.Outcome{Code: res.Code, Reason: game.Reason(res.Reason), Message: res.Message}
}

func resultOf(out game.Outcome) syncadapter.Result {
	return syncadapter.Result{Accepted: out.OK, Code: out.Code, Reason: string(out.Reason), Message: out.Message}
}

func (s *Session) checkEndTurn(actor string) game.Outcome {
	if !s.scheduler.PointerActive() {
		return game.Unauthorized(game.ReasonPhaseMismatch, "no turn is running in "+s.phases.State().String())
	}
	if active := s.scheduler.Active(); active == nil || active.ID != actor {
		return game.Unauthorized(game.ReasonNotActive, "it is not "+actor+"'s turn")
	}
	return game.Accepted()
}

func (s *Session) checkMarkReady(actor string) (game.Outcome, error) {
	out, err := s.gate.CanMarkReady(actor)
	if err != nil || out.Reason == game.ReasonPhaseMismatch || out.Reason == game.ReasonDirectorExcluded {
		return out, err
	}
	if s.scheduler.PointerActive() {
		if active := s.scheduler.Active(); active == nil || active.ID != actor {
			return game.Unauthorized(game.ReasonNotActive, "it is not "+actor+"'s deployment turn"), nil
		}
	}
	return out, nil
}

func (s *Session) checkStartCombat(actor string) game.Outcome {
	if !s.ctx.Roles.IsDirector(actor) {
		return game.Unauthorized(game.ReasonUnauthorized, "only the director may start combat")
	}
	if out := s.phases.CheckStartCombat(); !out.OK {
		return out
	}
	if !s.combatReady() {
		return game.NotReady(game.ReasonParticipantsNotReady, "deployment is not complete")
	}
	return game.Accepted()
}

// combatReady is the deployment to combat condition: everybody ready, or
// in hot-seat play every rotation participant has had a deployment turn.
func (s *Session) combatReady() bool {
	if s.gate.AllReady() {
		return true
	}
	return s.ctx.Mode == models.ModeLocal && s.scheduler.Visited()
}
