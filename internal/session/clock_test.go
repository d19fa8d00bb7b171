package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/wargame-turns/internal/models"
)

func TestCombatTimeoutForcesSingleAdvance(t *testing.T) {
	ctx := context.Background()
	cfg := scenarioConfig(models.ModeLocal)
	cfg.TurnSeconds = 30
	s, board, mock := newLocal(t, cfg)
	toDeployment(t, s)
	board.Add(element("B", ""))
	board.Add(element("C", ""))
	for _, id := range []string{"B", "C"} {
		out, err := s.MarkReady(ctx, id)
		require.NoError(t, err)
		require.True(t, out.OK)
	}
	require.Equal(t, "B", s.CurrentParticipant().ID)

	notes := collect(s)
	tickUntil(t, mock, notes, 29)
	assert.Empty(t, notes.turnEnds())
	assert.Equal(t, 1, s.State().RemainingSeconds)

	mock.Add(time.Second)
	require.Eventually(t, func() bool { return len(notes.turnEnds()) == 1 }, time.Second, time.Millisecond)

	ended := notes.turnEnds()[0]
	assert.Equal(t, "B", ended.ParticipantID)
	assert.True(t, ended.Forced)
	assert.Equal(t, "C", s.CurrentParticipant().ID)
	assert.Equal(t, 30, s.State().RemainingSeconds)

	tickUntil(t, mock, notes, 5)
	assert.Len(t, notes.turnEnds(), 1)
	assert.Equal(t, "C", s.CurrentParticipant().ID)
}

func TestVoluntaryEndTurnRestartsClock(t *testing.T) {
	ctx := context.Background()
	cfg := scenarioConfig(models.ModeLocal)
	cfg.TurnSeconds = 30
	s, board, mock := newLocal(t, cfg)
	toDeployment(t, s)
	board.Add(element("B", ""))
	board.Add(element("C", ""))
	for _, id := range []string{"B", "C"} {
		_, err := s.MarkReady(ctx, id)
		require.NoError(t, err)
	}

	notes := collect(s)
	tickUntil(t, mock, notes, 10)
	assert.Equal(t, 20, s.State().RemainingSeconds)

	out, err := s.EndTurn(ctx, "B")
	require.NoError(t, err)
	require.True(t, out.OK)
	assert.Equal(t, 30, s.State().RemainingSeconds)
	assert.False(t, notes.turnEnds()[0].Forced)
}

func TestClockIdleOutsideCombat(t *testing.T) {
	s, _, mock := newLocal(t, scenarioConfig(models.ModeLocal))
	notes := collect(s)
	toDeployment(t, s)

	mock.Add(10 * time.Second)
	time.Sleep(10 * time.Millisecond)
	assert.Zero(t, notes.count(KindClockTicked))
	assert.Zero(t, s.State().RemainingSeconds)
}
