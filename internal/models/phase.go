package models

// Phase represents the coarse stage of a session
type Phase string

const (
	PhasePreparation Phase = "preparation"
	PhaseCombat      Phase = "combat"
)

// Subphase refines a phase. Preparation walks through sector, zone and
// deployment definition; combat carries the single implicit movement step.
type Subphase string

const (
	SubphaseSectorDefinition Subphase = "sector_definition"
	SubphaseZoneDefinition   Subphase = "zone_definition"
	SubphaseDeployment       Subphase = "deployment"
	SubphaseMovement         Subphase = "movement"
)

// Mode selects where session state is authoritative.
type Mode string

const (
	ModeLocal     Mode = "local"
	ModeNetworked Mode = "networked"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeLocal || m == ModeNetworked
}

// PhaseState is the phase/subphase pair owned by the phase controller.
type PhaseState struct {
	Phase    Phase    `json:"phase"`
	Subphase Subphase `json:"subphase"`
}

// InitialPhase is where every session starts.
var InitialPhase = PhaseState{Phase: PhasePreparation, Subphase: SubphaseSectorDefinition}

// CombatPhase is the terminal phase of an active session.
var CombatPhase = PhaseState{Phase: PhaseCombat, Subphase: SubphaseMovement}

// Valid reports whether the subphase belongs to the phase.
func (s PhaseState) Valid() bool {
	switch s.Phase {
	case PhasePreparation:
		switch s.Subphase {
		case SubphaseSectorDefinition, SubphaseZoneDefinition, SubphaseDeployment:
			return true
		}
	case PhaseCombat:
		return s.Subphase == SubphaseMovement
	}
	return false
}

// Is reports whether the state matches the given phase and subphase.
func (s PhaseState) Is(phase Phase, subphase Subphase) bool {
	return s.Phase == phase && s.Subphase == subphase
}

// DirectorOnly reports whether only the director may act in this state.
func (s PhaseState) DirectorOnly() bool {
	return s.Phase == PhasePreparation &&
		(s.Subphase == SubphaseSectorDefinition || s.Subphase == SubphaseZoneDefinition)
}

// Order ranks the state along the one-way path from sector definition to
// combat. Unknown states rank -1.
func (s PhaseState) Order() int {
	if !s.Valid() {
		return -1
	}
	switch s.Subphase {
	case SubphaseSectorDefinition:
		return 0
	case SubphaseZoneDefinition:
		return 1
	case SubphaseDeployment:
		return 2
	}
	return 3
}

// Before reports whether s comes strictly earlier than other.
func (s PhaseState) Before(other PhaseState) bool {
	return s.Valid() && s.Order() < other.Order()
}

func (s PhaseState) String() string {
	return string(s.Phase) + "/" + string(s.Subphase)
}
