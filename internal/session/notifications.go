package session

import (
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/protocol"
)

// Notification is a state change reported to subscribers. The set of
// implementations is closed.
type Notification interface {
	Kind() string
	notification()
}

const (
	KindPhaseChanged     = "phaseChanged"
	KindTurnChanged      = "turnChanged"
	KindReadinessChanged = "readinessChanged"
	KindClockTicked      = "clockTicked"
	KindTurnEnded        = "turnEnded"
)

// PhaseChanged reports a phase or subphase transition.
type PhaseChanged struct {
	RequestID string            `json:"requestId,omitempty"`
	From      models.PhaseState `json:"from"`
	To        models.PhaseState `json:"to"`
}

// TurnChanged reports a new active participant or turn number.
type TurnChanged struct {
	RequestID           string `json:"requestId,omitempty"`
	ActiveParticipantID string `json:"activeParticipantId"`
	TurnNumber          int    `json:"turnNumber"`
}

// ReadinessChanged reports a participant flagged ready.
type ReadinessChanged struct {
	RequestID     string `json:"requestId,omitempty"`
	ParticipantID string `json:"participantId"`
	Ready         bool   `json:"ready"`
}

// ClockTicked reports the seconds left in the running turn.
type ClockTicked struct {
	Remaining int `json:"remaining"`
}

// TurnEnded reports the end of a participant's turn. Forced marks turns
// ended by the clock.
type TurnEnded struct {
	RequestID     string `json:"requestId,omitempty"`
	ParticipantID string `json:"participantId"`
	TurnNumber    int    `json:"turnNumber"`
	Forced        bool   `json:"forced"`
}

func (PhaseChanged) Kind() string     { return KindPhaseChanged }
func (TurnChanged) Kind() string      { return KindTurnChanged }
func (ReadinessChanged) Kind() string { return KindReadinessChanged }
func (ClockTicked) Kind() string      { return KindClockTicked }
func (TurnEnded) Kind() string        { return KindTurnEnded }

func (PhaseChanged) notification()     {}
func (TurnChanged) notification()      {}
func (ReadinessChanged) notification() {}
func (ClockTicked) notification()      {}
func (TurnEnded) notification()        {}

// EventFor translates a notification into the event an authority relays
// to its clients. Clock ticks stay local.
func EventFor(n Notification) (protocol.Event, bool) {
	switch n := n.(type) {
	case PhaseChanged:
		if n.To.Phase == models.PhaseCombat {
			return protocol.CombatStarted{RequestID: n.RequestID}, true
		}
		return protocol.PhaseChanged{RequestID: n.RequestID, Phase: n.To.Phase, Subphase: n.To.Subphase}, true
	case TurnChanged:
		return protocol.TurnChanged{RequestID: n.RequestID, ActiveParticipantID: n.ActiveParticipantID, TurnNumber: n.TurnNumber}, true
	case ReadinessChanged:
		return protocol.ParticipantReady{RequestID: n.RequestID, ParticipantID: n.ParticipantID}, true
	case TurnEnded:
		return protocol.TurnEnded{RequestID: n.RequestID, ParticipantID: n.ParticipantID, TurnNumber: n.TurnNumber, Forced: n.Forced}, true
	default:
		return nil, false
	}
}
