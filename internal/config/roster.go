package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aaronzipp/wargame-turns/internal/models"
)

// RosterFile is the on-disk shape of a lobby handoff.
type RosterFile struct {
	Code         string               `json:"code" yaml:"code"`
	Mode         models.Mode          `json:"mode" yaml:"mode"`
	TurnSeconds  int                  `json:"turnSeconds" yaml:"turn_seconds"`
	Participants []models.Participant `json:"participants" yaml:"participants"`
}

// SessionConfig converts the file into a session config.
func (f RosterFile) SessionConfig() models.SessionConfig {
	mode := f.Mode
	if mode == "" {
		mode = models.ModeLocal
	}
	return models.SessionConfig{
		Code:        f.Code,
		Roster:      f.Participants,
		TurnSeconds: f.TurnSeconds,
		Mode:        mode,
	}
}

// LoadRoster reads a YAML or JSON roster file. The extension decides the
// format; anything but .json is read as YAML.
func LoadRoster(path string) (RosterFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RosterFile{}, fmt.Errorf("read roster: %w", err)
	}
	return ParseRoster(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// ParseRoster decodes roster bytes.
func ParseRoster(data []byte, isJSON bool) (RosterFile, error) {
	var f RosterFile
	var err error
	if isJSON {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return RosterFile{}, fmt.Errorf("decode roster: %w", err)
	}
	if len(f.Participants) == 0 {
		return RosterFile{}, fmt.Errorf("roster has no participants")
	}
	return f, nil
}
