package session

import (
	"sync"
	"testing"
	"time"

	bclock "github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
)

func scenarioConfig(mode models.Mode) models.SessionConfig {
	return models.SessionConfig{
		Code: "TEST01",
		Roster: []models.Participant{
			{ID: "A", DisplayName: "Alpha", Team: models.TeamBlue, IsDirector: true},
			{ID: "B", DisplayName: "Bravo", Team: models.TeamBlue},
			{ID: "C", DisplayName: "Charlie", Team: models.TeamRed},
		},
		TurnSeconds: 300,
		Mode:        mode,
	}
}

func element(owner, dependency string) models.Element {
	return models.Element{
		Type:        "infantry",
		Designation: owner + "-1",
		Magnitude:   "company",
		Owner:       owner,
		Dependency:  dependency,
	}
}

// collector records notifications delivered to a subscriber.
type collector struct {
	mu    sync.Mutex
	notes []Notification
}

func collect(s *Session) *collector {
	c := &collector{}
	s.Subscribe(func(n Notification) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.notes = append(c.notes, n)
	})
	return c
}

func (c *collector) all() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.notes))
	copy(out, c.notes)
	return out
}

func (c *collector) count(kind string) int {
	n := 0
	for _, note := range c.all() {
		if note.Kind() == kind {
			n++
		}
	}
	return n
}

func (c *collector) turnEnds() []TurnEnded {
	var out []TurnEnded
	for _, note := range c.all() {
		if te, ok := note.(TurnEnded); ok {
			out = append(out, te)
		}
	}
	return out
}

func (c *collector) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = nil
}

func newLocal(t *testing.T, cfg models.SessionConfig) (*Session, *game.ElementBoard, *bclock.Mock) {
	t.Helper()
	board := game.NewElementBoard()
	mock := bclock.NewMock()
	s, err := New(cfg, Options{Elements: board, Clock: mock})
	require.NoError(t, err)
	t.Cleanup(s.Dispose)
	return s, board, mock
}

// tickUntil advances the mock clock a second at a time until cond holds.
func tickUntil(t *testing.T, mock *bclock.Mock, c *collector, steps int) {
	t.Helper()
	for i := 0; i < steps; i++ {
		before := c.count(KindClockTicked)
		mock.Add(time.Second)
		require.Eventually(t, func() bool { return c.count(KindClockTicked) > before }, time.Second, time.Millisecond)
	}
}
