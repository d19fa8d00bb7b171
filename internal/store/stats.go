package store

import (
	"sync"

	"github.com/aaronzipp/wargame-turns/internal/session"
)

// StatsView is the JSON shape of a session's counters.
type StatsView struct {
	PhaseChanges int `json:"phaseChanges"`
	TurnsEnded   int `json:"turnsEnded"`
	ForcedTurns  int `json:"forcedTurns"`
	ReadyMarks   int `json:"readyMarks"`
	Requests     int `json:"requests"`
	Rejections   int `json:"rejections"`
	HighestTurn  int `json:"highestTurn"`
}

// Stats counts what happened in a hosted session.
type Stats struct {
	mu   sync.Mutex
	view StatsView
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{}
}

// Record counts a notification.
func (s *Stats) Record(n session.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch n := n.(type) {
	case session.PhaseChanged:
		s.view.PhaseChanges++
	case session.TurnEnded:
		s.view.TurnsEnded++
		if n.Forced {
			s.view.ForcedTurns++
		}
	case session.ReadinessChanged:
		s.view.ReadyMarks++
	case session.TurnChanged:
		s.view.HighestTurn = max(s.view.HighestTurn, n.TurnNumber)
	}
}

// RecordRequest counts a request and whether it was rejected.
func (s *Stats) RecordRequest(accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Requests++
	if !accepted {
		s.view.Rejections++
	}
}

// View returns a copy of the counters.
func (s *Stats) View() StatsView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}
