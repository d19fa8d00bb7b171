// Package render formats session state for the terminal.
package render

import (
	"strconv"
	"strings"

	"github.com/aaronzipp/wargame-turns/internal/clock"
	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/game"
	"github.com/aaronzipp/wargame-turns/internal/models"
	"github.com/aaronzipp/wargame-turns/internal/session"
)

// ParticipantList renders the roster in rotation order with role and
// readiness markers.
func ParticipantList(st models.SessionState) string {
	var b strings.Builder
	b.WriteString("Participants (")
	b.WriteString(strconv.Itoa(len(st.Participants)))
	b.WriteString(")\n")
	for _, p := range st.Participants {
		if p.ID == st.ActiveParticipantID {
			b.WriteString(" > ")
		} else {
			b.WriteString("   ")
		}
		b.WriteString(p.Label())
		b.WriteString(" [")
		b.WriteString(string(p.Team))
		b.WriteString("]")
		if p.ID == st.DirectorID {
			if st.TemporaryDirector {
				b.WriteString(" (temporary director)")
			} else {
				b.WriteString(" (director)")
			}
		} else if p.IsReady {
			b.WriteString(" ready")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ReadyCount renders "ready/total label", leaving the director out of
// the total.
func ReadyCount(st models.SessionState) string {
	ready, total := 0, 0
	for _, p := range st.Participants {
		if p.ID == st.DirectorID {
			continue
		}
		total++
		if p.IsReady {
			ready++
		}
	}
	return strconv.Itoa(ready) + "/" + strconv.Itoa(total) + " participants ready"
}

// SessionState renders the header and roster of a session.
func SessionState(st models.SessionState) string {
	var b strings.Builder
	b.WriteString("Session ")
	b.WriteString(st.Code)
	b.WriteString(" (")
	b.WriteString(string(st.Mode))
	b.WriteString(")\n")
	b.WriteString("Phase: ")
	b.WriteString(PhaseLabel(models.PhaseState{Phase: st.Phase, Subphase: st.Subphase}))
	b.WriteString("\n")
	switch {
	case st.Phase == models.PhaseCombat:
		b.WriteString("Turn ")
		b.WriteString(strconv.Itoa(st.TurnNumber))
		b.WriteString(", ")
		b.WriteString(clock.FormatRemaining(st.RemainingSeconds))
		b.WriteString(" left\n")
	case st.Subphase == models.SubphaseDeployment:
		b.WriteString(ReadyCount(st))
		b.WriteString("\n")
	}
	b.WriteString(ParticipantList(st))
	return b.String()
}

// PhaseLabel is the human name of a phase.
func PhaseLabel(ps models.PhaseState) string {
	switch ps.Subphase {
	case models.SubphaseSectorDefinition:
		return "Preparation / sector definition"
	case models.SubphaseZoneDefinition:
		return "Preparation / zone definition"
	case models.SubphaseDeployment:
		return "Preparation / deployment"
	case models.SubphaseMovement:
		return "Combat / movement"
	}
	return ps.String()
}

// Notification renders a single notification as one line. Clock ticks
// render as an empty string unless a minute boundary or the final ten
// seconds is reached, to keep the terminal readable.
func Notification(n session.Notification, names map[string]string) string {
	label := func(id string) string {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return id
	}

	switch n := n.(type) {
	case session.PhaseChanged:
		return "Phase: " + PhaseLabel(n.To)
	case session.TurnChanged:
		return "Turn " + strconv.Itoa(n.TurnNumber) + ": " + label(n.ActiveParticipantID) + " to act"
	case session.ReadinessChanged:
		return label(n.ParticipantID) + " is ready"
	case session.TurnEnded:
		if n.Forced {
			return label(n.ParticipantID) + " ran out of time"
		}
		return label(n.ParticipantID) + " ended their turn"
	case session.ClockTicked:
		if n.Remaining%60 == 0 || n.Remaining <= 10 {
			return clock.FormatRemaining(n.Remaining) + " left"
		}
		return ""
	}
	return n.Kind()
}

// Outcome renders a rejected action with its user-facing message.
func Outcome(out game.Outcome) string {
	if out.OK {
		return "ok"
	}
	return out.UserMessage()
}

// Error renders an engine error for the terminal.
func Error(err error) string {
	if code, ok := apperrors.CodeOf(err); ok {
		return apperrors.UserMessage(string(code)) + " (" + err.Error() + ")"
	}
	return err.Error()
}
