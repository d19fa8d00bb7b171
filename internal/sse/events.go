package sse

// SSE event type constants
const (
	EventPhaseChanged     = "phase-changed"
	EventTurnChanged      = "turn-changed"
	EventReadinessChanged = "readiness-changed"
	EventClockTicked      = "clock-ticked"
	EventTurnEnded        = "turn-ended"
	EventSessionState     = "session-state"
	EventSessionClosed    = "session-closed"
	EventErrorMessage     = "error-message"
)
