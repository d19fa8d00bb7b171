package session

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
	"github.com/aaronzipp/wargame-turns/internal/syncadapter"
)

// Apply executes a request against authoritative state. It implements
// syncadapter.Applier for local sessions and is called directly by the
// authority server for requests arriving from clients.
func (s *Session) Apply(req protocol.Request) (syncadapter.Result, error) {
	s.mu.Lock()
	if !s.authoritative {
		s.mu.Unlock()
		return syncadapter.Result{}, apperrors.New(apperrors.CodeConfiguration, "session is not authoritative")
	}
	if s.disposed {
		s.mu.Unlock()
		return syncadapter.Result{}, apperrors.New(apperrors.CodeTransport, "session disposed")
	}

	var out game.Outcome
	var err error
	switch r := req.(type) {
	case protocol.EndTurn:
		out = s.applyEndTurn(r)
	case protocol.MarkReady:
		out, err = s.applyMarkReady(r)
	case protocol.StartCombat:
		out = s.applyStartCombat(r)
	case protocol.FinalizeSector:
		var change game.PhaseChange
		if change, out = s.phases.FinalizeSector(r.ParticipantID); out.OK {
			s.enterPhase(change, r.ID)
		}
	case protocol.FinalizeZones:
		var change game.PhaseChange
		if change, out = s.phases.FinalizeZones(r.ParticipantID); out.OK {
			s.enterPhase(change, r.ID)
		}
	default:
		err = apperrors.Newf(apperrors.CodeConfiguration, "unsupported request %T", req)
	}
	if err == nil && out.OK {
		s.version++
	}
	s.mu.Unlock()
	s.flush()

	if err != nil {
		return syncadapter.Result{}, err
	}
	if !out.OK {
		s.ctx.Logger.Debug("request rejected",
			zap.String("kind", req.Kind()),
			zap.String("participant", req.Actor()),
			zap.String("reason", string(out.Reason)))
	}
	return resultOf(out), nil
}

func (s *Session) applyEndTurn(r protocol.EndTurn) game.Outcome {
	if out := s.checkEndTurn(r.ParticipantID); !out.OK {
		return out
	}
	if err := s.endTurn(r.ID, r.Forced); err != nil {
		s.ctx.Logger.Error("end turn failed", zap.Error(err))
		return game.Outcome{Code: apperrors.CodeConfiguration, Message: err.Error()}
	}
	return game.Accepted()
}

func (s *Session) applyMarkReady(r protocol.MarkReady) (game.Outcome, error) {
	if s.board != nil && r.Elements != nil {
		s.board.Replace(r.ParticipantID, r.Elements)
	}
	out, err := s.checkMarkReady(r.ParticipantID)
	if err != nil || !out.OK {
		return out, err
	}

	s.gate.SetReady(r.ParticipantID)
	s.emit(ReadinessChanged{RequestID: r.ID, ParticipantID: r.ParticipantID, Ready: true})
	s.ctx.Logger.Info("participant ready", zap.String("participant", r.ParticipantID))

	if s.scheduler.PointerActive() {
		// Hot-seat deployment hands the device to the next participant.
		if err := s.endTurn(r.ID, false); err != nil {
			return game.Outcome{}, err
		}
		return game.Accepted(), nil
	}
	if s.combatReady() {
		s.startCombat(r.ID)
	}
	return game.Accepted(), nil
}

func (s *Session) applyStartCombat(r protocol.StartCombat) game.Outcome {
	if out := s.checkStartCombat(r.ParticipantID); !out.OK {
		return out
	}
	s.startCombat(r.ID)
	return game.Accepted()
}

// endTurn advances the pointer. In combat the clock restarts; in hot-seat
// deployment the combat condition is re-evaluated.
func (s *Session) endTurn(requestID string, forced bool) error {
	outgoing := s.scheduler.Active()
	turn := s.scheduler.State().TurnNumber

	next, err := s.scheduler.Advance()
	if err != nil {
		return err
	}
	s.emit(TurnEnded{RequestID: requestID, ParticipantID: outgoing.ID, TurnNumber: turn, Forced: forced})
	s.ctx.Logger.Info("turn ended",
		zap.String("participant", outgoing.ID),
		zap.Int("turn", turn),
		zap.Bool("forced", forced))

	phase := s.phases.State()
	if phase.Is(models.PhasePreparation, models.SubphaseDeployment) && s.combatReady() {
		s.startCombat(requestID)
		return nil
	}
	if s.phases.RequiresClock() {
		s.startClock()
	}
	s.emit(TurnChanged{RequestID: requestID, ActiveParticipantID: s.scheduler.Active().ID, TurnNumber: next.TurnNumber})
	return nil
}

func (s *Session) startCombat(requestID string) {
	change, out := s.phases.StartCombat()
	if !out.OK {
		return
	}
	s.enterPhase(change, requestID)
}

// enterPhase performs the side effects of a completed transition. Any
// running countdown is stopped first.
func (s *Session) enterPhase(change game.PhaseChange, requestID string) {
	s.stopClock()
	s.scheduler.Configure(change.To)

	switch {
	case change.To.Phase == models.PhaseCombat:
		s.scheduler.Reset()
		s.startClock()
	case change.To.Is(models.PhasePreparation, models.SubphaseDeployment):
		s.scheduler.Reset()
	}

	s.emit(PhaseChanged{RequestID: requestID, From: change.From, To: change.To})
	s.ctx.Logger.Info("phase changed",
		zap.String("phase", string(change.To.Phase)),
		zap.String("subphase", string(change.To.Subphase)))

	if p := s.scheduler.CurrentParticipant(); p != nil {
		s.emit(TurnChanged{RequestID: requestID, ActiveParticipantID: p.ID, TurnNumber: s.scheduler.State().TurnNumber})
	}
}

func (s *Session) startClock() {
	s.countdownGen = s.countdown.Start(s.ctx.TurnSeconds)
	s.scheduler.SetRemaining(s.ctx.TurnSeconds)
}

func (s *Session) stopClock() {
	s.countdown.Stop()
	s.countdownGen = 0
	s.scheduler.SetRemaining(0)
}

func (s *Session) onTick(gen uint64, remaining int) {
	s.mu.Lock()
	if gen != s.countdownGen || s.disposed {
		s.mu.Unlock()
		return
	}
	s.scheduler.SetRemaining(remaining)
	s.emit(ClockTicked{Remaining: remaining})
	s.mu.Unlock()
	s.flush()
}

// onTimeout forces the end of the running turn. Clients of a remote
// authority only display their clock and wait for the authority's event.
func (s *Session) onTimeout(gen uint64) {
	s.mu.Lock()
	if gen != s.countdownGen || s.disposed || !s.authoritative || !s.phases.RequiresClock() {
		s.mu.Unlock()
		return
	}
	s.countdownGen = 0
	if err := s.endTurn(uuid.NewString(), true); err != nil {
		s.ctx.Logger.Error("forced end turn failed", zap.Error(err))
	} else {
		s.version++
	}
	s.mu.Unlock()
	s.flush()
}
