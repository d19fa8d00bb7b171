package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
)

func roster(n, director int) []models.Participant {
	out := make([]models.Participant, n)
	for i := range out {
		out[i] = models.Participant{ID: fmt.Sprintf("p%d", i), Team: models.TeamRed}
	}
	if director >= 0 {
		out[director].IsDirector = true
	}
	return out
}

func newScheduler(t *testing.T, r []models.Participant, mode models.Mode) (*TurnScheduler, []*models.Participant) {
	t.Helper()
	ps := pointers(r)
	s, err := NewTurnScheduler(ps, ResolveRoles(r).EffectiveID(), mode, nil)
	require.NoError(t, err)
	return s, ps
}

func TestSchedulerVisitsEveryoneOnce(t *testing.T) {
	for n := 2; n <= 7; n++ {
		for director := 0; director < n; director++ {
			for start := 0; start < n-1; start++ {
				t.Run(fmt.Sprintf("n%d_d%d_s%d", n, director, start), func(t *testing.T) {
					s, _ := newScheduler(t, roster(n, director), models.ModeLocal)
					for range start {
						_, err := s.Advance()
						require.NoError(t, err)
					}

					origin := s.Active().ID
					originTurn := s.State().TurnNumber
					seen := map[string]int{origin: 1}
					for i := 0; i < n-1; i++ {
						_, err := s.Advance()
						require.NoError(t, err)
						p := s.Active()
						require.False(t, p.IsDirector, "pointer landed on director")
						if i < n-2 {
							seen[p.ID]++
						}
					}

					assert.Len(t, seen, n-1)
					for id, count := range seen {
						assert.Equal(t, 1, count, "participant %s", id)
					}
					assert.Equal(t, origin, s.Active().ID)
					assert.Equal(t, originTurn+1, s.State().TurnNumber)
				})
			}
		}
	}
}

func TestSchedulerCreditsOutgoingParticipant(t *testing.T) {
	s, ps := newScheduler(t, scenarioRoster(), models.ModeLocal)
	require.Equal(t, "B", s.Active().ID)

	_, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, 0, ps[0].TurnsCompleted)
	assert.Equal(t, 1, ps[1].TurnsCompleted)
	assert.False(t, s.Visited())

	_, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, 1, ps[2].TurnsCompleted)
	assert.True(t, s.Visited())
}

func TestSchedulerSkipsTemporaryDirector(t *testing.T) {
	r := []models.Participant{
		{ID: "r1", Team: models.TeamRed},
		{ID: "b1", Team: models.TeamBlue},
		{ID: "r2", Team: models.TeamRed},
	}
	s, _ := newScheduler(t, r, models.ModeLocal)

	var order []string
	for range 4 {
		order = append(order, s.Active().ID)
		_, err := s.Advance()
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"r1", "r2", "r1", "r2"}, order)
}

func TestSchedulerEmptyRotation(t *testing.T) {
	r := []models.Participant{{ID: "solo", IsDirector: true}}
	_, err := NewTurnScheduler(pointers(r), "solo", models.ModeLocal, nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfiguration))
}

func TestSchedulerAllFlaggedAfterConstruction(t *testing.T) {
	s, ps := newScheduler(t, roster(3, 0), models.ModeLocal)
	for _, p := range ps {
		p.IsDirector = true
	}

	_, err := s.Advance()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConfiguration))
}

func TestSchedulerCurrentParticipant(t *testing.T) {
	deployment := models.PhaseState{Phase: models.PhasePreparation, Subphase: models.SubphaseDeployment}
	tests := []struct {
		name  string
		mode  models.Mode
		phase models.PhaseState
		want  bool
	}{
		{"local sector", models.ModeLocal, models.InitialPhase, false},
		{"local zones", models.ModeLocal, models.PhaseState{Phase: models.PhasePreparation, Subphase: models.SubphaseZoneDefinition}, false},
		{"local deployment", models.ModeLocal, deployment, true},
		{"networked deployment", models.ModeNetworked, deployment, false},
		{"local combat", models.ModeLocal, models.CombatPhase, true},
		{"networked combat", models.ModeNetworked, models.CombatPhase, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newScheduler(t, scenarioRoster(), tt.mode)
			s.Configure(tt.phase)
			if tt.want {
				require.NotNil(t, s.CurrentParticipant())
				assert.Equal(t, "B", s.CurrentParticipant().ID)
			} else {
				assert.Nil(t, s.CurrentParticipant())
			}
		})
	}
}

func TestSchedulerSetActiveAndRestore(t *testing.T) {
	s, _ := newScheduler(t, scenarioRoster(), models.ModeNetworked)

	require.NoError(t, s.SetActive("C", 4))
	assert.Equal(t, "C", s.Active().ID)
	assert.Equal(t, 4, s.State().TurnNumber)

	err := s.SetActive("A", 5)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorizedAction))
	err = s.SetActive("Z", 5)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnknownParticipant))

	assert.Error(t, s.Restore(models.TurnState{TurnNumber: 2, ActiveIndex: 0}))
	assert.Error(t, s.Restore(models.TurnState{TurnNumber: 0, ActiveIndex: 1}))
	require.NoError(t, s.Restore(models.TurnState{TurnNumber: 2, ActiveIndex: 1, RemainingSeconds: 12}))
	assert.Equal(t, "B", s.Active().ID)

	s.Reset()
	assert.Equal(t, 1, s.State().TurnNumber)
	assert.Equal(t, "B", s.Active().ID)
}
