// Package protocol defines the messages exchanged with the remote
// authority: outbound requests and inbound confirmation events.
package protocol

import (
	"github.com/aaronzipp/wargame-turns/internal/models"
)

// Request is an outbound proposal. The set of implementations is closed.
type Request interface {
	Kind() string
	RequestID() string
	Actor() string
	request()
}

const (
	KindEndTurn        = "requestEndTurn"
	KindMarkReady      = "requestMarkReady"
	KindStartCombat    = "requestStartCombat"
	KindFinalizeSector = "requestFinalizeSector"
	KindFinalizeZones  = "requestFinalizeZones"
)

// EndTurn asks to pass the turn of ParticipantID.
type EndTurn struct {
	ID            string `json:"requestId"`
	ParticipantID string `json:"participantId"`
	TurnNumber    int    `json:"turnNumber"`
	Forced        bool   `json:"forced,omitempty"`
}

// MarkReady asks to flag ParticipantID ready with its deployed elements.
type MarkReady struct {
	ID            string           `json:"requestId"`
	ParticipantID string           `json:"participantId"`
	Elements      []models.Element `json:"elements"`
}

// StartCombat asks the authority to leave deployment.
type StartCombat struct {
	ID            string `json:"requestId"`
	ParticipantID string `json:"participantId"`
}

// FinalizeSector asks to close sector definition.
type FinalizeSector struct {
	ID            string `json:"requestId"`
	ParticipantID string `json:"participantId"`
}

// FinalizeZones asks to close zone definition.
type FinalizeZones struct {
	ID            string `json:"requestId"`
	ParticipantID string `json:"participantId"`
}

func (EndTurn) Kind() string        { return KindEndTurn }
func (MarkReady) Kind() string      { return KindMarkReady }
func (StartCombat) Kind() string    { return KindStartCombat }
func (FinalizeSector) Kind() string { return KindFinalizeSector }
func (FinalizeZones) Kind() string  { return KindFinalizeZones }

func (r EndTurn) RequestID() string        { return r.ID }
func (r MarkReady) RequestID() string      { return r.ID }
func (r StartCombat) RequestID() string    { return r.ID }
func (r FinalizeSector) RequestID() string { return r.ID }
func (r FinalizeZones) RequestID() string  { return r.ID }

func (r EndTurn) Actor() string        { return r.ParticipantID }
func (r MarkReady) Actor() string      { return r.ParticipantID }
func (r StartCombat) Actor() string    { return r.ParticipantID }
func (r FinalizeSector) Actor() string { return r.ParticipantID }
func (r FinalizeZones) Actor() string  { return r.ParticipantID }

func (EndTurn) request()        {}
func (MarkReady) request()      {}
func (StartCombat) request()    {}
func (FinalizeSector) request() {}
func (FinalizeZones) request()  {}

// WithActor returns a copy of req attributed to participantID. The server
// uses it to pin requests to the connection that sent them.
func WithActor(req Request, participantID string) Request {
	switch r := req.(type) {
	case EndTurn:
		r.ParticipantID = participantID
		return r
	case MarkReady:
		r.ParticipantID = participantID
		elements := make([]models.Element, len(r.Elements))
		for i, e := range r.Elements {
			if e.Owner != "" {
				e.Owner = participantID
			}
			elements[i] = e
		}
		if r.Elements != nil {
			r.Elements = elements
		}
		return r
	case StartCombat:
		r.ParticipantID = participantID
		return r
	case FinalizeSector:
		r.ParticipantID = participantID
		return r
	case FinalizeZones:
		r.ParticipantID = participantID
		return r
	default:
		return req
	}
}

// Event is an inbound confirmation from the authority. The set of
// implementations is closed.
type Event interface {
	Kind() string
	CorrelationID() string
	event()
}

const (
	KindTurnChanged       = "turnChanged"
	KindParticipantReady  = "participantReadyForDeployment"
	KindCombatStarted     = "combatStarted"
	KindTurnEnded         = "turnEnded"
	KindPhaseChanged      = "phaseChanged"
	KindOperationRejected = "operationRejected"
)

// TurnChanged mirrors an authoritative turn change.
type TurnChanged struct {
	RequestID           string `json:"requestId,omitempty"`
	ActiveParticipantID string `json:"activeParticipantId"`
	TurnNumber          int    `json:"turnNumber"`
}

// ParticipantReady mirrors a confirmed readiness.
type ParticipantReady struct {
	RequestID     string `json:"requestId,omitempty"`
	ParticipantID string `json:"participantId"`
}

// CombatStarted mirrors the deployment to combat transition.
type CombatStarted struct {
	RequestID string `json:"requestId,omitempty"`
}

// TurnEnded confirms the end of a participant's turn.
type TurnEnded struct {
	RequestID     string `json:"requestId,omitempty"`
	ParticipantID string `json:"participantId"`
	TurnNumber    int    `json:"turnNumber"`
	Forced        bool   `json:"forced,omitempty"`
}

// PhaseChanged mirrors a preparation step change.
type PhaseChanged struct {
	RequestID string          `json:"requestId,omitempty"`
	Phase     models.Phase    `json:"phase"`
	Subphase  models.Subphase `json:"subphase"`
}

// OperationRejected answers a request the authority refused.
type OperationRejected struct {
	RequestID string `json:"requestId"`
	Code      string `json:"code"`
	Reason    string `json:"reason,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (TurnChanged) Kind() string       { return KindTurnChanged }
func (ParticipantReady) Kind() string  { return KindParticipantReady }
func (CombatStarted) Kind() string     { return KindCombatStarted }
func (TurnEnded) Kind() string         { return KindTurnEnded }
func (PhaseChanged) Kind() string      { return KindPhaseChanged }
func (OperationRejected) Kind() string { return KindOperationRejected }

func (e TurnChanged) CorrelationID() string       { return e.RequestID }
func (e ParticipantReady) CorrelationID() string  { return e.RequestID }
func (e CombatStarted) CorrelationID() string     { return e.RequestID }
func (e TurnEnded) CorrelationID() string         { return e.RequestID }
func (e PhaseChanged) CorrelationID() string      { return e.RequestID }
func (e OperationRejected) CorrelationID() string { return e.RequestID }

func (TurnChanged) event()       {}
func (ParticipantReady) event()  {}
func (CombatStarted) event()     {}
func (TurnEnded) event()         {}
func (PhaseChanged) event()      {}
func (OperationRejected) event() {}

// State returns the phase state carried by the event.
func (e PhaseChanged) State() models.PhaseState {
	return models.PhaseState{Phase: e.Phase, Subphase: e.Subphase}
}
