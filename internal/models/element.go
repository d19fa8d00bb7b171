package models

import "strings"

// Element is the read-only view of a unit placed on the map by a participant.
// The map collaborator owns the element; the engine only inspects the labels
// that deployment readiness depends on.
type Element struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Type        string `json:"type" yaml:"type"`
	Designation string `json:"designation" yaml:"designation"`
	Magnitude   string `json:"magnitude" yaml:"magnitude"`
	Owner       string `json:"owner" yaml:"owner"`
	Dependency  string `json:"dependency,omitempty" yaml:"dependency,omitempty"`
}

// MissingFields lists the mandatory labels that are blank.
func (e Element) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(e.Type) == "" {
		missing = append(missing, "type")
	}
	if strings.TrimSpace(e.Designation) == "" {
		missing = append(missing, "designation")
	}
	if strings.TrimSpace(e.Magnitude) == "" {
		missing = append(missing, "magnitude")
	}
	if strings.TrimSpace(e.Owner) == "" {
		missing = append(missing, "owner")
	}
	return missing
}

// HasDependency reports whether the higher-echelon label is set.
func (e Element) HasDependency() bool {
	return strings.TrimSpace(e.Dependency) != ""
}
