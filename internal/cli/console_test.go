package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	bclock "github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/session"
)

func hotSeat(t *testing.T) (*console, *session.Session, *bytes.Buffer) {
	t.Helper()
	board := game.NewElementBoard()
	s, err := session.New(models.SessionConfig{
		Code: "HOT001",
		Mode: models.ModeLocal,
		Roster: []models.Participant{
			{ID: "A", DisplayName: "Alpha", Team: models.TeamBlue, IsDirector: true},
			{ID: "B", DisplayName: "Bravo", Team: models.TeamBlue},
			{ID: "C", DisplayName: "Charlie", Team: models.TeamRed},
		},
	}, session.Options{Elements: board, Clock: bclock.NewMock()})
	require.NoError(t, err)
	t.Cleanup(s.Dispose)

	var out bytes.Buffer
	c := newConsole(s, board, &out, s.Actor)
	t.Cleanup(c.watch())
	return c, s, &out
}

func TestConsoleHotSeatToCombat(t *testing.T) {
	c, s, out := hotSeat(t)
	script := strings.Join([]string{
		"sector",
		"zones",
		"ready",
		"deploy infantry 1-1 company HQ",
		"elements",
		"ready",
		"deploy armor 2-1 platoon HQ",
		"ready",
		"end",
		"quit",
		"state",
	}, "\n")

	require.NoError(t, c.run(context.Background(), strings.NewReader(script), nil))

	text := out.String()
	assert.Contains(t, text, "Phase: Preparation / zone definition")
	assert.Contains(t, text, "Phase: Preparation / deployment")
	assert.Contains(t, text, "rejected: Deploy at least one element before marking ready.")
	assert.Contains(t, text, "deployed 1-1 for Bravo")
	assert.Contains(t, text, "infantry 1-1 company under HQ")
	assert.Contains(t, text, "* Bravo is ready")
	assert.Contains(t, text, "* Charlie is ready")
	assert.Contains(t, text, "Phase: Combat / movement")
	assert.Contains(t, text, "* Bravo ended their turn")
	assert.Contains(t, text, "[Alpha] > ")

	st := s.State()
	assert.Equal(t, models.PhaseCombat, st.Phase)
	assert.Equal(t, "C", st.ActiveParticipantID)
	// Input after quit is ignored.
	assert.Equal(t, 1, strings.Count(text, "Session HOT001"))
}

func TestConsoleRejectionsAndUsage(t *testing.T) {
	c, _, out := hotSeat(t)

	c.exec(context.Background(), "end")
	c.exec(context.Background(), "deploy infantry")
	c.exec(context.Background(), "dance")
	assert.False(t, c.exec(context.Background(), ""))
	assert.True(t, c.exec(context.Background(), "QUIT"))

	text := out.String()
	assert.Contains(t, text, "rejected: That action is not available in the current phase.")
	assert.Contains(t, text, "usage: deploy TYPE DESIGNATION MAGNITUDE [DEPENDENCY]")
	assert.Contains(t, text, "unknown command: dance")
}

func TestWebsocketURL(t *testing.T) {
	got, err := websocketURL("https://wargame.example/", "ABC123", "B 1")
	require.NoError(t, err)
	assert.Equal(t, "wss://wargame.example/ws/ABC123?participant=B+1", got)

	got, err = websocketURL("http://localhost:8080", "ABC123", "A")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws/ABC123?participant=A", got)
}
