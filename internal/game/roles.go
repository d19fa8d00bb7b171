package game

import "github.com/aaronzipp/wargame-turns/internal/models"

// Roles is the director resolution for a roster. At most one field is set.
type Roles struct {
	Director          *models.Participant `json:"director,omitempty"`
	TemporaryDirector *models.Participant `json:"temporaryDirector,omitempty"`
}

// ResolveRoles picks the director for a roster. An explicitly flagged
// participant wins; otherwise the first member of the first-acting team is
// elected as temporary director, falling back to the first participant.
// The returned participants are copies; the roster is not modified.
func ResolveRoles(roster []models.Participant) Roles {
	if len(roster) == 0 {
		return Roles{}
	}

	for i := range roster {
		if roster[i].IsDirector {
			p := roster[i]
			return Roles{Director: &p}
		}
	}

	pick := roster[0]
	for i := range roster {
		if roster[i].Team == models.FirstActingTeam {
			pick = roster[i]
			break
		}
	}
	return Roles{TemporaryDirector: &pick}
}

// Effective returns the director in charge, explicit or temporary.
func (r Roles) Effective() *models.Participant {
	if r.Director != nil {
		return r.Director
	}
	return r.TemporaryDirector
}

// EffectiveID returns the id of the director in charge, or "".
func (r Roles) EffectiveID() string {
	if p := r.Effective(); p != nil {
		return p.ID
	}
	return ""
}

// IsDirector reports whether id is the director in charge.
func (r Roles) IsDirector(id string) bool {
	return id != "" && id == r.EffectiveID()
}

// Temporary reports whether the director was elected rather than flagged.
func (r Roles) Temporary() bool {
	return r.Director == nil && r.TemporaryDirector != nil
}

// Resolved reports whether any director was found.
func (r Roles) Resolved() bool {
	return r.Effective() != nil
}
