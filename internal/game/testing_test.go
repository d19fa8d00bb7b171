package game

import (
	"github.com/aaronzipp/wargame-turns/internal/models"
)

// scenarioRoster is A (blue, director), B (blue), C (red).
func scenarioRoster() []models.Participant {
	return []models.Participant{
		{ID: "A", DisplayName: "Alpha", Team: models.TeamBlue, IsDirector: true},
		{ID: "B", DisplayName: "Bravo", Team: models.TeamBlue},
		{ID: "C", DisplayName: "Charlie", Team: models.TeamRed},
	}
}

func pointers(roster []models.Participant) []*models.Participant {
	out := make([]*models.Participant, len(roster))
	for i := range roster {
		p := roster[i]
		out[i] = &p
	}
	return out
}

func validElement(owner string) models.Element {
	return models.Element{
		Type:        "infantry",
		Designation: "1st",
		Magnitude:   "company",
		Owner:       owner,
	}
}
