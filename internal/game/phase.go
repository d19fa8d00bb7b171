package game

import (
	"github.com/aaronzipp/wargame-turns/internal/models"
)

// PhaseChange describes a completed transition.
type PhaseChange struct {
	From models.PhaseState
	To   models.PhaseState
}

// PhaseController owns the phase/subphase state machine. It is not safe
// for concurrent use; the owning session serializes access.
type PhaseController struct {
	state models.PhaseState
	roles Roles
}

// NewPhaseController starts a controller in the initial preparation step.
func NewPhaseController(roles Roles) *PhaseController {
	return &PhaseController{state: models.InitialPhase, roles: roles}
}

// State returns the current phase and subphase.
func (c *PhaseController) State() models.PhaseState {
	return c.state
}

// RequiresClock reports whether turns are timed in the current phase.
// Deployment is untimed in both modes.
func (c *PhaseController) RequiresClock() bool {
	return c.state.Phase == models.PhaseCombat
}

// Force sets the state without validation. Used when mirroring an
// authoritative change or restoring a snapshot.
func (c *PhaseController) Force(state models.PhaseState) (PhaseChange, bool) {
	if !state.Valid() || state == c.state {
		return PhaseChange{}, false
	}
	change := PhaseChange{From: c.state, To: state}
	c.state = state
	return change, true
}

// CheckFinalizeSector validates a sector finalization without applying it.
func (c *PhaseController) CheckFinalizeSector(actor string) Outcome {
	return c.checkDirectorStep(actor, models.SubphaseSectorDefinition)
}

// CheckFinalizeZones validates a zone finalization without applying it.
func (c *PhaseController) CheckFinalizeZones(actor string) Outcome {
	return c.checkDirectorStep(actor, models.SubphaseZoneDefinition)
}

// FinalizeSector moves sector definition to zone definition.
func (c *PhaseController) FinalizeSector(actor string) (PhaseChange, Outcome) {
	if out := c.CheckFinalizeSector(actor); !out.OK {
		return PhaseChange{}, out
	}
	return c.move(models.PhaseState{Phase: models.PhasePreparation, Subphase: models.SubphaseZoneDefinition}), Accepted()
}

// FinalizeZones moves zone definition to deployment.
func (c *PhaseController) FinalizeZones(actor string) (PhaseChange, Outcome) {
	if out := c.CheckFinalizeZones(actor); !out.OK {
		return PhaseChange{}, out
	}
	return c.move(models.PhaseState{Phase: models.PhasePreparation, Subphase: models.SubphaseDeployment}), Accepted()
}

// CheckStartCombat validates the deployment to combat transition. The
// caller decides whether the readiness condition holds.
func (c *PhaseController) CheckStartCombat() Outcome {
	if !c.state.Is(models.PhasePreparation, models.SubphaseDeployment) {
		return Unauthorized(ReasonPhaseMismatch, "combat can only start from deployment")
	}
	return Accepted()
}

// StartCombat moves deployment to combat.
func (c *PhaseController) StartCombat() (PhaseChange, Outcome) {
	if out := c.CheckStartCombat(); !out.OK {
		return PhaseChange{}, out
	}
	return c.move(models.CombatPhase), Accepted()
}

func (c *PhaseController) checkDirectorStep(actor string, want models.Subphase) Outcome {
	if !c.state.Is(models.PhasePreparation, want) {
		return Unauthorized(ReasonPhaseMismatch, "not in "+string(want))
	}
	if !c.roles.IsDirector(actor) {
		return Unauthorized(ReasonUnauthorized, "only the director may finalize "+string(want))
	}
	return Accepted()
}

func (c *PhaseController) move(to models.PhaseState) PhaseChange {
	change := PhaseChange{From: c.state, To: to}
	c.state = to
	return change
}
