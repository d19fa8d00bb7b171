package game

import (
	"strings"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
)

// ElementSource is the read-only view of the map collaborator.
type ElementSource interface {
	ElementsOwnedBy(participantID string) []models.Element
}

// ValidateElements checks a participant's deployed elements. Networked
// sessions additionally require every element to name its higher echelon.
func ValidateElements(mode models.Mode, elements []models.Element) Outcome {
	if len(elements) == 0 {
		return NotReady(ReasonNoElements, "no elements deployed")
	}
	for _, e := range elements {
		if missing := e.MissingFields(); len(missing) > 0 {
			return NotReady(ReasonInvalidElement, "element "+e.Designation+" is missing "+strings.Join(missing, ", "))
		}
	}
	if mode == models.ModeNetworked {
		for _, e := range elements {
			if !e.HasDependency() {
				return NotReady(ReasonMissingDependency, "element "+e.Designation+" has no dependency")
			}
		}
	}
	return Accepted()
}

// ReadinessGate decides whether participants may be marked ready for
// combat. Not safe for concurrent use.
type ReadinessGate struct {
	participants []*models.Participant
	directorID   string
	mode         models.Mode
	phases       *PhaseController
	source       ElementSource
}

// NewReadinessGate wires the gate to the session records and the map.
func NewReadinessGate(participants []*models.Participant, directorID string, mode models.Mode, phases *PhaseController, source ElementSource) *ReadinessGate {
	return &ReadinessGate{
		participants: participants,
		directorID:   directorID,
		mode:         mode,
		phases:       phases,
		source:       source,
	}
}

func (g *ReadinessGate) lookup(id string) (*models.Participant, error) {
	for _, p := range g.participants {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, apperrors.Newf(apperrors.CodeUnknownParticipant, "unknown participant %s", id)
}

// CanMarkReady reports whether the participant's deployment is complete.
// Expected misses come back as a rejected Outcome; only an unknown id
// produces an error. The director never deploys and is always refused.
func (g *ReadinessGate) CanMarkReady(participantID string) (Outcome, error) {
	if _, err := g.lookup(participantID); err != nil {
		return Outcome{}, err
	}
	if !g.phases.State().Is(models.PhasePreparation, models.SubphaseDeployment) {
		return NotReady(ReasonPhaseMismatch, "readiness is only checked during deployment"), nil
	}
	if participantID == g.directorID {
		return Unauthorized(ReasonDirectorExcluded, "the director does not deploy"), nil
	}
	var elements []models.Element
	if g.source != nil {
		elements = g.source.ElementsOwnedBy(participantID)
	}
	return ValidateElements(g.mode, elements), nil
}

// MarkReady flags the participant ready when CanMarkReady allows it.
func (g *ReadinessGate) MarkReady(participantID string) (bool, error) {
	out, err := g.CanMarkReady(participantID)
	if err != nil || !out.OK {
		return false, err
	}
	g.SetReady(participantID)
	return true, nil
}

// SetReady records a confirmed readiness without validating it.
func (g *ReadinessGate) SetReady(participantID string) bool {
	p, err := g.lookup(participantID)
	if err != nil {
		return false
	}
	changed := !p.IsReady
	p.IsReady = true
	p.HasCompletedDeployment = true
	return changed
}

// AllReady reports whether every participant except the director is ready.
func (g *ReadinessGate) AllReady() bool {
	counted := 0
	for _, p := range g.participants {
		if p.ID == g.directorID {
			continue
		}
		if !p.IsReady {
			return false
		}
		counted++
	}
	return counted > 0
}
