package session

import (
	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
)

// Snapshot captures the session state for persistence.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Snapshot{
		Config:       s.config,
		Participants: s.copyParticipants(),
		Phase:        s.phases.State(),
		Turn:         s.scheduler.State(),
		Version:      s.version,
	}
}

// Restore rebuilds a session from a snapshot. The director is resolved
// again from the stored roster. A restored combat resumes its countdown
// with the seconds that were left.
func Restore(snap models.Snapshot, opts Options) (*Session, error) {
	if !snap.Phase.Valid() {
		return nil, apperrors.Newf(apperrors.CodeConfiguration, "invalid phase %s", snap.Phase)
	}
	s, err := New(snap.Config, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byID := make(map[string]models.Participant, len(snap.Participants))
	for _, p := range snap.Participants {
		byID[p.ID] = p
	}
	for _, p := range s.participants {
		if saved, ok := byID[p.ID]; ok {
			p.IsReady = saved.IsReady
			p.HasCompletedDeployment = saved.HasCompletedDeployment
			p.TurnsCompleted = saved.TurnsCompleted
		}
	}

	s.phases.Force(snap.Phase)
	s.scheduler.Configure(snap.Phase)
	if err := s.scheduler.Restore(snap.Turn); err != nil {
		return nil, err
	}
	s.version = snap.Version

	if s.phases.RequiresClock() {
		remaining := snap.Turn.RemainingSeconds
		if remaining <= 0 {
			remaining = s.ctx.TurnSeconds
		}
		s.countdownGen = s.countdown.Start(remaining)
		s.scheduler.SetRemaining(remaining)
	}
	return s, nil
}
