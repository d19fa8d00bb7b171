package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/session"
)

func deploymentState() models.SessionState {
	return models.SessionState{
		Code:                "OPS001",
		Mode:                models.ModeLocal,
		Phase:               models.PhasePreparation,
		Subphase:            models.SubphaseDeployment,
		TurnNumber:          1,
		ActiveParticipantID: "B",
		DirectorID:          "A",
		Participants: []models.Participant{
			{ID: "A", DisplayName: "Alpha", Team: models.TeamBlue},
			{ID: "B", DisplayName: "Bravo", Team: models.TeamBlue, IsReady: true},
			{ID: "C", Team: models.TeamRed},
		},
	}
}

func TestSessionStateDeployment(t *testing.T) {
	out := SessionState(deploymentState())
	assert.Contains(t, out, "Session OPS001 (local)")
	assert.Contains(t, out, "Preparation / deployment")
	assert.Contains(t, out, "1/2 participants ready")
	assert.Contains(t, out, "Alpha [blue] (director)")
	assert.Contains(t, out, " > Bravo [blue] ready")
	assert.Contains(t, out, "   C [red]\n")
}

func TestSessionStateCombat(t *testing.T) {
	st := deploymentState()
	st.Phase, st.Subphase = models.PhaseCombat, models.SubphaseMovement
	st.TurnNumber = 3
	st.RemainingSeconds = 75
	st.TemporaryDirector = true

	out := SessionState(st)
	assert.Contains(t, out, "Turn 3, 1:15 left")
	assert.Contains(t, out, "(temporary director)")
	assert.NotContains(t, out, "participants ready")
}

func TestNotification(t *testing.T) {
	names := map[string]string{"B": "Bravo"}
	tests := []struct {
		n    session.Notification
		want string
	}{
		{session.PhaseChanged{To: models.CombatPhase}, "Phase: Combat / movement"},
		{session.TurnChanged{ActiveParticipantID: "B", TurnNumber: 2}, "Turn 2: Bravo to act"},
		{session.ReadinessChanged{ParticipantID: "C", Ready: true}, "C is ready"},
		{session.TurnEnded{ParticipantID: "B", Forced: true}, "Bravo ran out of time"},
		{session.TurnEnded{ParticipantID: "B"}, "Bravo ended their turn"},
		{session.ClockTicked{Remaining: 120}, "2:00 left"},
		{session.ClockTicked{Remaining: 9}, "0:09 left"},
		{session.ClockTicked{Remaining: 95}, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Notification(tt.n, names))
	}
}

func TestOutcomeAndError(t *testing.T) {
	assert.Equal(t, "ok", Outcome(game.Accepted()))
	assert.Equal(t, "It is not your turn.",
		Outcome(game.Unauthorized(game.ReasonNotActive, "B is not active")))

	err := apperrors.New(apperrors.CodeTransport, "dial failed")
	assert.Contains(t, Error(err), "Connection to the server failed.")
	assert.Equal(t, "boom", Error(errors.New("boom")))
}
