package models

// MNarrativeRequest is the structured input handed to a narrator.
type MNarrativeRequest struct {
	Name      string
	Theme     string
	Ascendant MAngle
	Planets   []MPlanet
	// FreeText is set for perspective interpretations instead of a chart.
	FreeText string
}

type MNarrative struct {
	Section  string  `json:"section"`
	Markdown string  `json:"markdown"`
	HTML     string  `json:"html"`
	Chart    *MChart `json:"chart,omitempty"`
}
