package game

import (
	"go.uber.org/zap"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
)

// TurnScheduler owns turn numbering and the active participant pointer.
// The pointer indexes the full roster and never rests on the director.
// Not safe for concurrent use.
type TurnScheduler struct {
	participants []*models.Participant
	directorID   string
	mode         models.Mode
	phase        models.PhaseState
	turn         models.TurnState
	first        int
	logger       *zap.Logger
}

// NewTurnScheduler builds a scheduler over the session-owned participant
// records. It fails when nobody is left to take turns once the director is
// excluded.
func NewTurnScheduler(participants []*models.Participant, directorID string, mode models.Mode, logger *zap.Logger) (*TurnScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &TurnScheduler{
		participants: participants,
		directorID:   directorID,
		mode:         mode,
		phase:        models.InitialPhase,
		first:        -1,
		logger:       logger,
	}
	for i, p := range participants {
		if !s.skipped(p) {
			s.first = i
			break
		}
	}
	if s.first < 0 {
		return nil, apperrors.WithMetadata(apperrors.CodeConfiguration, "no participant left in turn rotation",
			map[string]string{"director": directorID})
	}
	s.Reset()
	return s, nil
}

// skipped reports whether p sits out of the rotation. The resolved director
// is always excluded; explicit flags are honored too so a roster with
// several flagged participants cannot put one of them on the pointer.
func (s *TurnScheduler) skipped(p *models.Participant) bool {
	return p.ID == s.directorID || p.IsDirector
}

// Configure tells the scheduler which phase the session is in.
func (s *TurnScheduler) Configure(phase models.PhaseState) {
	s.phase = phase
}

// Reset puts the pointer on the first rotation participant at turn 1.
func (s *TurnScheduler) Reset() {
	s.turn.TurnNumber = 1
	s.turn.ActiveIndex = s.first
	s.turn.RemainingSeconds = 0
}

// Advance hands the pointer to the next rotation participant. The outgoing
// participant is credited with a completed turn, and the turn number
// increases whenever the pointer wraps to the first rotation slot.
func (s *TurnScheduler) Advance() (models.TurnState, error) {
	n := len(s.participants)
	if out := s.Active(); out != nil {
		out.TurnsCompleted++
	}

	next := s.turn.ActiveIndex
	for attempts := 0; ; attempts++ {
		if attempts >= n {
			return s.turn, apperrors.New(apperrors.CodeConfiguration, "turn rotation has no eligible participant")
		}
		next = (next + 1) % n
		if !s.skipped(s.participants[next]) {
			break
		}
	}

	if next == s.first {
		s.turn.TurnNumber++
	}
	s.turn.ActiveIndex = next

	s.logger.Debug("turn advanced",
		zap.String("participant", s.participants[next].ID),
		zap.Int("turn", s.turn.TurnNumber))
	return s.turn, nil
}

// Active returns the participant holding the pointer regardless of phase.
func (s *TurnScheduler) Active() *models.Participant {
	if s.turn.ActiveIndex < 0 || s.turn.ActiveIndex >= len(s.participants) {
		return nil
	}
	return s.participants[s.turn.ActiveIndex]
}

// CurrentParticipant returns the participant whose turn it is, or nil when
// no individual pointer applies: sector and zone definition, and
// deployment in networked sessions where everybody deploys at once.
func (s *TurnScheduler) CurrentParticipant() *models.Participant {
	if !s.PointerActive() {
		return nil
	}
	return s.Active()
}

// PointerActive reports whether turns are taken one at a time right now.
func (s *TurnScheduler) PointerActive() bool {
	switch {
	case s.phase.Phase == models.PhaseCombat:
		return true
	case s.phase.Is(models.PhasePreparation, models.SubphaseDeployment):
		return s.mode == models.ModeLocal
	default:
		return false
	}
}

// State returns a copy of the turn state.
func (s *TurnScheduler) State() models.TurnState {
	return s.turn
}

// SetRemaining records the clock reading in the turn state.
func (s *TurnScheduler) SetRemaining(seconds int) {
	s.turn.RemainingSeconds = seconds
}

// Rotation lists the participants that take turns, in roster order.
func (s *TurnScheduler) Rotation() []*models.Participant {
	out := make([]*models.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		if !s.skipped(p) {
			out = append(out, p)
		}
	}
	return out
}

// Visited reports whether every rotation participant has completed at
// least one turn.
func (s *TurnScheduler) Visited() bool {
	for _, p := range s.Rotation() {
		if p.TurnsCompleted < 1 {
			return false
		}
	}
	return true
}

// SetActive applies an authoritative turn change.
func (s *TurnScheduler) SetActive(participantID string, turnNumber int) error {
	for i, p := range s.participants {
		if p.ID != participantID {
			continue
		}
		if s.skipped(p) {
			return apperrors.Newf(apperrors.CodeUnauthorizedAction, "participant %s is not in the rotation", participantID)
		}
		s.turn.ActiveIndex = i
		if turnNumber >= 1 {
			s.turn.TurnNumber = turnNumber
		}
		return nil
	}
	return apperrors.Newf(apperrors.CodeUnknownParticipant, "unknown participant %s", participantID)
}

// Restore loads a persisted turn state.
func (s *TurnScheduler) Restore(turn models.TurnState) error {
	if turn.TurnNumber < 1 {
		return apperrors.New(apperrors.CodeConfiguration, "turn number must be at least 1")
	}
	if turn.ActiveIndex < 0 || turn.ActiveIndex >= len(s.participants) || s.skipped(s.participants[turn.ActiveIndex]) {
		return apperrors.Newf(apperrors.CodeConfiguration, "active index %d is not a rotation slot", turn.ActiveIndex)
	}
	s.turn = turn
	return nil
}
