package models

// SessionConfig is the immutable description handed over by the lobby.
type SessionConfig struct {
	Code        string        `json:"code"`
	Roster      []Participant `json:"roster"`
	TurnSeconds int           `json:"turnSeconds"`
	Mode        Mode          `json:"mode"`
}

// TurnState tracks turn numbering and the active participant pointer.
type TurnState struct {
	TurnNumber       int `json:"turnNumber"`
	ActiveIndex      int `json:"activeIndex"`
	RemainingSeconds int `json:"remainingSeconds"`
}

// SessionState is the read model handed to UI collaborators.
type SessionState struct {
	Code                string        `json:"code"`
	Mode                Mode          `json:"mode"`
	Phase               Phase         `json:"phase"`
	Subphase            Subphase      `json:"subphase"`
	TurnNumber          int           `json:"turnNumber"`
	ActiveParticipantID string        `json:"activeParticipantId,omitempty"`
	RemainingSeconds    int           `json:"remainingSeconds"`
	DirectorID          string        `json:"directorId"`
	TemporaryDirector   bool          `json:"temporaryDirector"`
	Participants        []Participant `json:"participants"`
	Version             int64         `json:"version"`
}

// ReadyFlags maps participant ids to their readiness.
func (s SessionState) ReadyFlags() map[string]bool {
	flags := make(map[string]bool, len(s.Participants))
	for _, p := range s.Participants {
		flags[p.ID] = p.IsReady
	}
	return flags
}

// Snapshot is the serializable shape used for snapshot and restore.
type Snapshot struct {
	Config       SessionConfig `json:"config"`
	Participants []Participant `json:"participants"`
	Phase        PhaseState    `json:"phase"`
	Turn         TurnState     `json:"turn"`
	Version      int64         `json:"version"`
}
