package game

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/aaronzipp/wargame-turns/internal/errors"
	"github.com/aaronzipp/wargame-turns/internal/models"
)

// NormalizeConfig validates a session config and fills defaults. Roster
// entries without an id get a generated one; the turn budget defaults to
// DefaultTurnSeconds and must otherwise lie within the accepted range.
func NormalizeConfig(cfg models.SessionConfig) (models.SessionConfig, error) {
	if len(cfg.Roster) == 0 {
		return cfg, apperrors.New(apperrors.CodeConfiguration, "roster is empty")
	}
	if !cfg.Mode.Valid() {
		return cfg, apperrors.Newf(apperrors.CodeConfiguration, "unknown session mode %q", cfg.Mode)
	}

	switch {
	case cfg.TurnSeconds == 0:
		cfg.TurnSeconds = DefaultTurnSeconds
	case cfg.TurnSeconds < MinTurnSeconds || cfg.TurnSeconds > MaxTurnSeconds:
		return cfg, apperrors.WithMetadata(apperrors.CodeConfiguration, "turn budget out of range",
			map[string]string{"turnSeconds": strconv.Itoa(cfg.TurnSeconds)})
	}

	roster := make([]models.Participant, len(cfg.Roster))
	seen := make(map[string]bool, len(cfg.Roster))
	for i, p := range cfg.Roster {
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if seen[p.ID] {
			return cfg, apperrors.Newf(apperrors.CodeConfiguration, "duplicate participant id %q", p.ID)
		}
		seen[p.ID] = true

		team, ok := models.ParseTeam(string(p.Team))
		if !ok {
			return cfg, apperrors.Newf(apperrors.CodeConfiguration, "participant %s has unknown team %q", p.ID, p.Team)
		}
		p.Team = team
		p.DisplayName = strings.TrimSpace(p.DisplayName)
		roster[i] = p
	}
	cfg.Roster = roster
	return cfg, nil
}
