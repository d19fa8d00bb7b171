package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
)

func TestPhaseControllerHappyPath(t *testing.T) {
	c := NewPhaseController(ResolveRoles(scenarioRoster()))
	require.Equal(t, models.InitialPhase, c.State())
	assert.False(t, c.RequiresClock())

	change, out := c.FinalizeSector("A")
	require.True(t, out.OK)
	assert.Equal(t, models.SubphaseSectorDefinition, change.From.Subphase)
	assert.Equal(t, models.SubphaseZoneDefinition, change.To.Subphase)

	_, out = c.FinalizeZones("A")
	require.True(t, out.OK)
	assert.True(t, c.State().Is(models.PhasePreparation, models.SubphaseDeployment))

	_, out = c.StartCombat()
	require.True(t, out.OK)
	assert.Equal(t, models.CombatPhase, c.State())
	assert.True(t, c.RequiresClock())
}

func TestPhaseControllerRejectsNonDirector(t *testing.T) {
	c := NewPhaseController(ResolveRoles(scenarioRoster()))

	for _, actor := range []string{"B", "C", ""} {
		_, out := c.FinalizeSector(actor)
		assert.False(t, out.OK)
		assert.Equal(t, apperrors.CodeUnauthorizedAction, out.Code)
		assert.Equal(t, ReasonUnauthorized, out.Reason)
	}
	assert.Equal(t, models.InitialPhase, c.State())

	err := c.CheckFinalizeSector("B").Err()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorizedAction))
}

func TestPhaseControllerRejectsOutOfOrder(t *testing.T) {
	c := NewPhaseController(ResolveRoles(scenarioRoster()))

	_, out := c.FinalizeZones("A")
	assert.Equal(t, ReasonPhaseMismatch, out.Reason)

	_, out = c.StartCombat()
	assert.Equal(t, ReasonPhaseMismatch, out.Reason)

	_, out = c.FinalizeSector("A")
	require.True(t, out.OK)
	_, out = c.FinalizeSector("A")
	assert.Equal(t, ReasonPhaseMismatch, out.Reason)
	assert.Equal(t, models.SubphaseZoneDefinition, c.State().Subphase)
}

func TestPhaseControllerForce(t *testing.T) {
	c := NewPhaseController(ResolveRoles(scenarioRoster()))

	_, ok := c.Force(models.PhaseState{Phase: models.PhaseCombat, Subphase: models.SubphaseDeployment})
	assert.False(t, ok)

	change, ok := c.Force(models.CombatPhase)
	require.True(t, ok)
	assert.Equal(t, models.InitialPhase, change.From)

	_, ok = c.Force(models.CombatPhase)
	assert.False(t, ok)
}
