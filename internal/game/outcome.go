package game

import (
	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
)

// Reason is the machine-readable cause of a rejected action.
type Reason string

const (
	ReasonPhaseMismatch        Reason = "phase_mismatch"
	ReasonNoElements           Reason = "no_elements"
	ReasonInvalidElement       Reason = "invalid_element"
	ReasonMissingDependency    Reason = "missing_dependency"
	ReasonUnauthorized         Reason = "unauthorized"
	ReasonNotActive            Reason = "not_active_participant"
	ReasonParticipantsNotReady Reason = "participants_not_ready"
	ReasonDirectorExcluded     Reason = "director_excluded"
)

// Outcome is the structured result of a validated action. Expected
// validation misses are reported here instead of as Go errors.
type Outcome struct {
	OK      bool           `json:"ok"`
	Code    apperrors.Code `json:"code,omitempty"`
	Reason  Reason         `json:"reason,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Accepted is the successful outcome.
func Accepted() Outcome {
	return Outcome{OK: true}
}

// Unauthorized rejects an action the actor may not perform.
func Unauthorized(reason Reason, message string) Outcome {
	return Outcome{Code: apperrors.CodeUnauthorizedAction, Reason: reason, Message: message}
}

// NotReady rejects a readiness request.
func NotReady(reason Reason, message string) Outcome {
	return Outcome{Code: apperrors.CodeReadinessValidation, Reason: reason, Message: message}
}

// Err converts a rejected outcome into an *apperrors.Error.
func (o Outcome) Err() error {
	if o.OK {
		return nil
	}
	return apperrors.WithMetadata(o.Code, o.Message, map[string]string{"reason": string(o.Reason)})
}

// UserMessage returns the user-facing text for a rejected outcome.
func (o Outcome) UserMessage() string {
	if o.OK {
		return ""
	}
	if o.Reason != "" {
		return apperrors.UserMessage(string(o.Reason))
	}
	return apperrors.UserMessage(string(o.Code))
}
