package models

// Team is the faction a participant plays for.
type Team string

const (
	TeamBlue       Team = "blue"
	TeamRed        Team = "red"
	TeamUnassigned Team = "unassigned"
)

// FirstActingTeam is the team whose first member becomes the temporary
// director when the roster names no explicit director.
const FirstActingTeam = TeamBlue

// ParseTeam maps free-form roster input onto the fixed faction set.
func ParseTeam(s string) (Team, bool) {
	switch Team(s) {
	case TeamBlue, TeamRed:
		return Team(s), true
	case TeamUnassigned, "":
		return TeamUnassigned, true
	default:
		return TeamUnassigned, false
	}
}

// Participant represents a player seated in a session
type Participant struct {
	ID                     string `json:"id" yaml:"id"`
	DisplayName            string `json:"displayName" yaml:"name"`
	Team                   Team   `json:"team" yaml:"team"`
	IsReady                bool   `json:"isReady" yaml:"-"`
	HasCompletedDeployment bool   `json:"hasCompletedDeployment" yaml:"-"`
	TurnsCompleted         int    `json:"turnsCompleted" yaml:"-"`
	// IsDirector is the explicit roster flag. The effective director is
	// resolved once per session and lives in the session context.
	IsDirector bool `json:"isDirector" yaml:"director"`
}

// Label returns the display name, falling back to the id.
func (p *Participant) Label() string {
	if p == nil {
		return ""
	}
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.ID
}
