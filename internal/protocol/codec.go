package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/aaronzipp/wargame-turns/internal/models"
)

// Envelope is the wire frame for both directions.
type Envelope struct {
	Type    string          `json:"type"`
	Mode    models.Mode     `json:"sessionMode"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeRequest frames a request.
func EncodeRequest(mode models.Mode, req Request) ([]byte, error) {
	return encode(req.Kind(), mode, req)
}

// EncodeEvent frames an event.
func EncodeEvent(mode models.Mode, ev Event) ([]byte, error) {
	return encode(ev.Kind(), mode, ev)
}

func encode(kind string, mode models.Mode, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", kind, err)
	}
	return json.Marshal(Envelope{Type: kind, Mode: mode, Payload: payload})
}

// DecodeRequest parses a framed request.
func DecodeRequest(data []byte) (models.Mode, Request, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("decode envelope: %w", err)
	}

	var req Request
	var err error
	switch env.Type {
	case KindEndTurn:
		req, err = decodeAs[EndTurn](env.Payload)
	case KindMarkReady:
		req, err = decodeAs[MarkReady](env.Payload)
	case KindStartCombat:
		req, err = decodeAs[StartCombat](env.Payload)
	case KindFinalizeSector:
		req, err = decodeAs[FinalizeSector](env.Payload)
	case KindFinalizeZones:
		req, err = decodeAs[FinalizeZones](env.Payload)
	default:
		return env.Mode, nil, fmt.Errorf("unknown request type %q", env.Type)
	}
	if err != nil {
		return env.Mode, nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return env.Mode, req, nil
}

// DecodeEvent parses a framed event.
func DecodeEvent(data []byte) (models.Mode, Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", nil, fmt.Errorf("decode envelope: %w", err)
	}

	var ev Event
	var err error
	switch env.Type {
	case KindTurnChanged:
		ev, err = decodeAs[TurnChanged](env.Payload)
	case KindParticipantReady:
		ev, err = decodeAs[ParticipantReady](env.Payload)
	case KindCombatStarted:
		ev, err = decodeAs[CombatStarted](env.Payload)
	case KindTurnEnded:
		ev, err = decodeAs[TurnEnded](env.Payload)
	case KindPhaseChanged:
		ev, err = decodeAs[PhaseChanged](env.Payload)
	case KindOperationRejected:
		ev, err = decodeAs[OperationRejected](env.Payload)
	default:
		return env.Mode, nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	if err != nil {
		return env.Mode, nil, fmt.Errorf("decode %s: %w", env.Type, err)
	}
	return env.Mode, ev, nil
}

func decodeAs[T any](payload json.RawMessage) (T, error) {
	var v T
	if len(payload) == 0 {
		return v, nil
	}
	err := json.Unmarshal(payload, &v)
	return v, err
}
