package session

import (
	"go.uber.org/zap"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
)

// Deliver feeds an event received from the remote authority. Stale events
// come back as STALE_REMOTE_EVENT errors and leave the state untouched.
func (s *Session) Deliver(mode models.Mode, ev protocol.Event) error {
	if s.remote == nil {
		return apperrors.New(apperrors.CodeConfiguration, "session has no remote authority")
	}
	return s.remote.Deliver(mode, ev)
}

// ApplyEvent mirrors a confirmed event into local state. It implements
// syncadapter.Mirror and is only reached through Deliver.
func (s *Session) ApplyEvent(ev protocol.Event) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	err := s.applyEvent(ev)
	if err == nil {
		s.version++
	}
	s.mu.Unlock()
	s.flush()
	return err
}

func (s *Session) applyEvent(ev protocol.Event) error {
	switch e := ev.(type) {
	case protocol.PhaseChanged:
		if current := s.phases.State(); e.State().Before(current) {
			return apperrors.Newf(apperrors.CodeStaleRemoteEvent, "phase %s is behind %s", e.State(), current)
		}
		if change, ok := s.phases.Force(e.State()); ok {
			s.enterPhase(change, e.RequestID)
		}
	case protocol.CombatStarted:
		if change, ok := s.phases.Force(models.CombatPhase); ok {
			s.enterPhase(change, e.RequestID)
		}
	case protocol.ParticipantReady:
		if _, err := s.gate.CanMarkReady(e.ParticipantID); err != nil {
			return err
		}
		s.gate.SetReady(e.ParticipantID)
		s.emit(ReadinessChanged{RequestID: e.RequestID, ParticipantID: e.ParticipantID, Ready: true})
	case protocol.TurnEnded:
		// The authority follows up with turnChanged; advancing here keeps
		// the mirror in step when that event is delayed.
		active := s.scheduler.Active()
		if !s.scheduler.PointerActive() || active == nil || active.ID != e.ParticipantID {
			return nil
		}
		return s.endTurn(e.RequestID, e.Forced)
	case protocol.TurnChanged:
		active := s.scheduler.Active()
		if active != nil && active.ID == e.ActiveParticipantID && s.scheduler.State().TurnNumber == e.TurnNumber {
			return nil
		}
		if err := s.scheduler.SetActive(e.ActiveParticipantID, e.TurnNumber); err != nil {
			return err
		}
		if s.phases.RequiresClock() {
			s.startClock()
		}
		s.emit(TurnChanged{RequestID: e.RequestID, ActiveParticipantID: e.ActiveParticipantID, TurnNumber: e.TurnNumber})
	case protocol.OperationRejected:
		s.ctx.Logger.Debug("rejection without pending request", zap.String("request", e.RequestID))
	}
	return nil
}
